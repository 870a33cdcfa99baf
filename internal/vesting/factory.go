package vesting

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/clone"
)

var (
	ErrInvalidLockParams      = chain.NewError(chain.KindCollaborator, "InvalidTokenLockParameters")
	ErrLockAlreadyInitialized = chain.NewError(chain.KindStateConflict, "TokenLockAlreadyInitialized")
)

// TokenLockCreated is emitted for every lock the factory deploys.
type TokenLockCreated struct {
	TokenLock        common.Address `json:"tokenLock"`
	Token            common.Address `json:"token"`
	Owner            common.Address `json:"owner"`
	Beneficiary      common.Address `json:"beneficiary"`
	ManagedAmount    *big.Int       `json:"managedAmount"`
	StartTime        uint64         `json:"startTime"`
	EndTime          uint64         `json:"endTime"`
	Periods          uint64         `json:"periods"`
	ReleaseStartTime uint64         `json:"releaseStartTime"`
	VestingCliffTime uint64         `json:"vestingCliffTime"`
	Revocable        bool           `json:"revocable"`
	CanDelegate      bool           `json:"canDelegate"`
}

func (TokenLockCreated) EventName() string { return "TokenLockCreated" }

func (e TokenLockCreated) MarshalJSON() ([]byte, error) {
	type plain TokenLockCreated
	return json.Marshal(struct {
		plain
		ManagedAmount string `json:"managedAmount"`
	}{plain(e), chain.Decimal(e.ManagedAmount)})
}

// LockFactory clones the lock implementation once per created lock.
type LockFactory struct {
	address        common.Address
	implementation common.Address
	locks          *clone.Registry[*TokenLock]
	sequence       *chain.Cell[uint64]
}

// DeployFactory deploys a lock factory cloning implementation.
func DeployFactory(call *chain.Call, implementation common.Address) (*LockFactory, error) {
	f, _, err := chain.Deploy(call, func(addr common.Address) *LockFactory {
		return &LockFactory{
			address:        addr,
			implementation: implementation,
			locks:          clone.NewRegistry[*TokenLock](addr),
			sequence:       chain.NewCell[uint64](0),
		}
	})
	return f, err
}

func (f *LockFactory) Address() common.Address        { return f.address }
func (f *LockFactory) Implementation() common.Address { return f.implementation }

// Sequence is the number of locks created so far; it salts the next lock.
func (f *LockFactory) Sequence() uint64 {
	return f.sequence.Get()
}

// IsTokenLock reports whether addr is a lock created by this factory.
func (f *LockFactory) IsTokenLock(addr common.Address) bool {
	return f.locks.Deployed(addr)
}

// CreateTokenLock validates params, deploys a lock clone and returns its
// address.
func (f *LockFactory) CreateTokenLock(call *chain.Call, params LockParams) (common.Address, error) {
	if err := params.Validate(); err != nil {
		return common.Address{}, err
	}

	seq := f.Sequence()
	salt, err := lockSalt(params, seq)
	if err != nil {
		return common.Address{}, err
	}

	lock, addr, err := f.locks.Clone(call, f.implementation, salt)
	if err != nil {
		return common.Address{}, err
	}
	if err := lock.initialize(call, params); err != nil {
		return common.Address{}, err
	}
	f.sequence.Set(call, seq+1)

	call.Emit(f.address, TokenLockCreated{
		TokenLock:        addr,
		Token:            params.Token,
		Owner:            params.Owner,
		Beneficiary:      params.Beneficiary,
		ManagedAmount:    new(big.Int).Set(params.ManagedAmount),
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		Periods:          params.Periods,
		ReleaseStartTime: params.ReleaseStartTime,
		VestingCliffTime: params.VestingCliffTime,
		Revocable:        params.Revocable,
		CanDelegate:      params.CanDelegate,
	})
	return addr, nil
}

// PredictTokenLockAddress returns where the lock for params would be created
// if it were the factory's seq-th lock.
func (f *LockFactory) PredictTokenLockAddress(params LockParams, seq uint64) (common.Address, error) {
	salt, err := lockSalt(params, seq)
	if err != nil {
		return common.Address{}, err
	}
	return f.locks.Predict(f.implementation, salt), nil
}

// Validate rejects parameter combinations no lock can be created with.
func (p LockParams) Validate() error {
	switch {
	case p.Token == (common.Address{}):
		return fmt.Errorf("%w: token is the zero address", ErrInvalidLockParams)
	case p.Beneficiary == (common.Address{}):
		return fmt.Errorf("%w: beneficiary is the zero address", ErrInvalidLockParams)
	case p.ManagedAmount == nil || p.ManagedAmount.Sign() <= 0:
		return fmt.Errorf("%w: managed amount must be positive", ErrInvalidLockParams)
	case p.EndTime <= p.StartTime:
		return fmt.Errorf("%w: end time %d is not after start time %d", ErrInvalidLockParams, p.EndTime, p.StartTime)
	case p.Periods == 0:
		return fmt.Errorf("%w: periods must be positive", ErrInvalidLockParams)
	case p.ReleaseStartTime != 0 && p.ReleaseStartTime >= p.EndTime:
		return fmt.Errorf("%w: release start time must be before end time", ErrInvalidLockParams)
	case p.VestingCliffTime != 0 && (p.VestingCliffTime < p.StartTime || p.VestingCliffTime >= p.EndTime):
		return fmt.Errorf("%w: vesting cliff must fall within the lock period", ErrInvalidLockParams)
	}
	return nil
}

var lockSaltArgs = abi.Arguments{
	{Type: mustType("address")},
	{Type: mustType("address")},
	{Type: mustType("address")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
	{Type: mustType("bool")},
	{Type: mustType("bool")},
	{Type: mustType("uint256")},
}

func lockSalt(p LockParams, seq uint64) (common.Hash, error) {
	encoded, err := lockSaltArgs.Pack(
		p.Token,
		p.Owner,
		p.Beneficiary,
		p.ManagedAmount,
		new(big.Int).SetUint64(p.StartTime),
		new(big.Int).SetUint64(p.EndTime),
		new(big.Int).SetUint64(p.Periods),
		new(big.Int).SetUint64(p.ReleaseStartTime),
		new(big.Int).SetUint64(p.VestingCliffTime),
		p.Revocable,
		p.CanDelegate,
		new(big.Int).SetUint64(seq),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrInvalidLockParams, err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}
