// Package vesting deploys the token locks that hold redeemed airdrop funds
// until their vesting period ends. Release arithmetic is left to the lock
// itself and is not modelled here.
package vesting

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

// LockParams are the immutable parameters of a token lock.
type LockParams struct {
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

// TokenLock is a deployed lock. Only the implementation is deployed with
// template set; clones are initialized exactly once by the lock factory.
type TokenLock struct {
	address     common.Address
	template    bool
	initialized bool
	params      LockParams
}

// DeployImplementation deploys the lock logic every lock clone delegates to.
func DeployImplementation(call *chain.Call) (*TokenLock, error) {
	lock, _, err := chain.Deploy(call, func(addr common.Address) *TokenLock {
		return &TokenLock{address: addr, template: true}
	})
	return lock, err
}

// NewClone returns an uninitialized lock living at address.
func (l *TokenLock) NewClone(address common.Address) *TokenLock {
	return &TokenLock{address: address}
}

func (l *TokenLock) initialize(call *chain.Call, params LockParams) error {
	if l.template || l.initialized {
		return ErrLockAlreadyInitialized
	}
	call.OnRevert(func() {
		l.initialized = false
		l.params = LockParams{}
	})
	l.initialized = true
	l.params = params
	l.params.ManagedAmount = new(big.Int).Set(params.ManagedAmount)
	return nil
}

func (l *TokenLock) Address() common.Address { return l.address }

// Params returns a copy of the lock's parameters.
func (l *TokenLock) Params() LockParams {
	p := l.params
	if p.ManagedAmount != nil {
		p.ManagedAmount = new(big.Int).Set(p.ManagedAmount)
	}
	return p
}

func (l *TokenLock) Token() common.Address       { return l.params.Token }
func (l *TokenLock) Owner() common.Address       { return l.params.Owner }
func (l *TokenLock) Beneficiary() common.Address { return l.params.Beneficiary }
func (l *TokenLock) StartTime() uint64           { return l.params.StartTime }
func (l *TokenLock) EndTime() uint64             { return l.params.EndTime }
func (l *TokenLock) Periods() uint64             { return l.params.Periods }
func (l *TokenLock) ReleaseStartTime() uint64    { return l.params.ReleaseStartTime }
func (l *TokenLock) VestingCliffTime() uint64    { return l.params.VestingCliffTime }
func (l *TokenLock) Revocable() bool             { return l.params.Revocable }
func (l *TokenLock) CanDelegate() bool           { return l.params.CanDelegate }

// ManagedAmount is the amount the lock was created to vest.
func (l *TokenLock) ManagedAmount() *big.Int {
	if l.params.ManagedAmount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(l.params.ManagedAmount)
}
