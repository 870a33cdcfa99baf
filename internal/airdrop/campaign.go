// Package airdrop implements a single Merkle airdrop campaign: a committed
// root of (account, amount) leaves, a redemption window, and an optional
// vesting lock for funds redeemed before the lock end time.
package airdrop

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

var (
	ErrAlreadyInitialized          = chain.NewError(chain.KindStateConflict, "Initializable: contract is already initialized")
	ErrInvalidRedeemWindow         = chain.NewError(chain.KindInputValidation, "StartTimeMustBeBeforeDeadline")
	ErrRedeemerMustBeBeneficiary   = chain.NewError(chain.KindAuthorization, "RedeemerMustBeBeneficiary")
	ErrCannotRedeemBeforeStartTime = chain.NewError(chain.KindTemporal, "CannotRedeemBeforeStartTime")
	ErrCannotRedeemAfterDeadline   = chain.NewError(chain.KindTemporal, "CannotRedeemAfterDeadline")
	ErrLeafAlreadyRedeemed         = chain.NewError(chain.KindStateConflict, "LeafAlreadyRedeemed")
	ErrInvalidMerkleProof          = merkle.ErrInvalidMerkleProof
	ErrInvalidAmount               = chain.NewError(chain.KindInputValidation, "InvalidAmount")
	ErrTokenUnavailable            = chain.NewError(chain.KindCollaborator, "TokenUnavailable")
	ErrTokenLockFactoryUnavailable = chain.NewError(chain.KindCollaborator, "TokenLockFactoryUnavailable")
)

// TokenLedger is the part of the token a campaign pays out through.
type TokenLedger interface {
	TransferFrom(call *chain.Call, from, to common.Address, amount *big.Int) error
}

// LockDeployer creates vesting locks for redeemed funds.
type LockDeployer interface {
	CreateTokenLock(call *chain.Call, params vesting.LockParams) (common.Address, error)
}

// WindowState is where a timestamp falls relative to the redemption window.
type WindowState int

const (
	PreWindow WindowState = iota
	Active
	PostWindow
)

func (s WindowState) String() string {
	switch s {
	case PreWindow:
		return "pre_window"
	case Active:
		return "active"
	default:
		return "post_window"
	}
}

// RedemptionRecord is the result of a successful redemption. TokenLock is the
// zero address when funds were paid out directly.
type RedemptionRecord struct {
	Account   common.Address `json:"account"`
	Amount    *big.Int       `json:"amount"`
	TokenLock common.Address `json:"tokenLock"`
}

// Locked reports whether the funds went into a vesting lock.
func (r RedemptionRecord) Locked() bool {
	return r.TokenLock != (common.Address{})
}

type campaignState struct {
	initialized bool
	params      InitParams
	factory     common.Address
}

// Campaign is one deployed airdrop. The implementation instance is deployed
// with template set and can only be cloned; each clone is initialized once.
type Campaign struct {
	address  common.Address
	template bool
	state    campaignState
	ledger   *ClaimLedger
}

// DeployImplementation deploys the campaign logic clones delegate to.
func DeployImplementation(call *chain.Call) (*Campaign, error) {
	c, _, err := chain.Deploy(call, func(addr common.Address) *Campaign {
		return &Campaign{address: addr, template: true, ledger: NewClaimLedger()}
	})
	return c, err
}

// NewClone returns an uninitialized campaign living at address.
func (c *Campaign) NewClone(address common.Address) *Campaign {
	return &Campaign{address: address, ledger: NewClaimLedger()}
}

// Initialize configures the campaign from initialize call data. The caller
// becomes the campaign's factory.
func (c *Campaign) Initialize(call *chain.Call, initData []byte) error {
	if c.template || c.state.initialized {
		return ErrAlreadyInitialized
	}

	params, err := DecodeInitData(initData)
	if err != nil {
		return err
	}
	if params.StartTime >= params.Deadline {
		return fmt.Errorf("%w: start %d, deadline %d", ErrInvalidRedeemWindow, params.StartTime, params.Deadline)
	}

	prev := c.state
	call.OnRevert(func() { c.state = prev })
	c.state = campaignState{initialized: true, params: params, factory: call.Sender}

	call.Emit(c.address, MerkleTreeSet{
		MerkleTreeIPFSRef: params.MetadataPointer,
		Root:              params.Root,
		StartTime:         params.StartTime,
		Deadline:          params.Deadline,
	})
	return nil
}

// Redeem pays out amount to account if (account, amount) is committed under
// the root and has not been redeemed. Only account itself or the campaign's
// factory may redeem.
func (c *Campaign) Redeem(call *chain.Call, account common.Address, amount *big.Int, proof []common.Hash) (*RedemptionRecord, error) {
	if call.Sender != account && call.Sender != c.state.factory {
		return nil, ErrRedeemerMustBeBeneficiary
	}
	return c.redeem(call, account, amount, proof)
}

func (c *Campaign) redeem(call *chain.Call, account common.Address, amount *big.Int, proof []common.Hash) (*RedemptionRecord, error) {
	p := c.state.params
	now := call.Now()

	switch c.State(now) {
	case PreWindow:
		return nil, ErrCannotRedeemBeforeStartTime
	case PostWindow:
		return nil, ErrCannotRedeemAfterDeadline
	}

	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	leaf := merkle.LeafHash(account, amount)
	if c.ledger.IsRedeemed(leaf) {
		return nil, fmt.Errorf("%w: %s", ErrLeafAlreadyRedeemed, leaf.Hex())
	}
	if err := merkle.VerifyClaim(p.Root, account, amount, proof); err != nil {
		return nil, err
	}

	// The leaf is marked before any value leaves the factory.
	if err := c.ledger.Mark(call, leaf); err != nil {
		return nil, err
	}

	tok, err := chain.Resolve[TokenLedger](call, p.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	self := call.As(c.address)

	var tokenLock common.Address
	recipient := account
	if now < p.LockEndTime {
		locks, err := chain.Resolve[LockDeployer](call, p.TokenLockFactory)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokenLockFactoryUnavailable, err)
		}
		tokenLock, err = locks.CreateTokenLock(self, vesting.LockParams{
			Token:         p.Token,
			Owner:         common.Address{},
			Beneficiary:   account,
			ManagedAmount: new(big.Int).Set(amount),
			StartTime:     p.StartTime,
			EndTime:       p.LockEndTime,
			Periods:       p.Periods,
			Revocable:     false,
			CanDelegate:   true,
		})
		if err != nil {
			return nil, err
		}
		recipient = tokenLock
	}

	if err := tok.TransferFrom(self, c.state.factory, recipient, amount); err != nil {
		return nil, err
	}

	record := &RedemptionRecord{Account: account, Amount: new(big.Int).Set(amount), TokenLock: tokenLock}
	call.Emit(c.address, TokensRedeemed{
		Account:   account,
		TokenLock: tokenLock,
		Amount:    new(big.Int).Set(amount),
	})
	return record, nil
}

// State returns the window state of the campaign at now. Both window
// boundaries are inclusive.
func (c *Campaign) State(now uint64) WindowState {
	switch {
	case now < c.state.params.StartTime:
		return PreWindow
	case now > c.state.params.Deadline:
		return PostWindow
	default:
		return Active
	}
}

func (c *Campaign) Address() common.Address          { return c.address }
func (c *Campaign) Initialized() bool                { return c.state.initialized }
func (c *Campaign) Factory() common.Address          { return c.state.factory }
func (c *Campaign) Params() InitParams               { return c.state.params }
func (c *Campaign) MetadataPointer() string          { return c.state.params.MetadataPointer }
func (c *Campaign) Root() common.Hash                { return c.state.params.Root }
func (c *Campaign) StartTime() uint64                { return c.state.params.StartTime }
func (c *Campaign) Deadline() uint64                 { return c.state.params.Deadline }
func (c *Campaign) LockEndTime() uint64              { return c.state.params.LockEndTime }
func (c *Campaign) Periods() uint64                  { return c.state.params.Periods }
func (c *Campaign) Token() common.Address            { return c.state.params.Token }
func (c *Campaign) TokenLockFactory() common.Address { return c.state.params.TokenLockFactory }

// IsRedeemed reports whether the leaf for (account, amount) was redeemed.
func (c *Campaign) IsRedeemed(account common.Address, amount *big.Int) bool {
	return c.ledger.IsRedeemed(merkle.LeafHash(account, amount))
}

// RedeemedCount returns how many leaves have been redeemed.
func (c *Campaign) RedeemedCount() int {
	return c.ledger.Count()
}
