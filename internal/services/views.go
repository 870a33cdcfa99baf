package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/factory"
	"github.com/cyphera/cyphera-airdrop/internal/token"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

// CampaignView is a snapshot of a campaign.
type CampaignView struct {
	Address          common.Address `json:"address"`
	Factory          common.Address `json:"factory"`
	FromFactory      bool           `json:"fromFactory"`
	MetadataPointer  string         `json:"merkleTreeIPFSRef"`
	Root             common.Hash    `json:"root"`
	StartTime        uint64         `json:"startTime"`
	Deadline         uint64         `json:"deadline"`
	LockEndTime      uint64         `json:"lockEndTime"`
	Periods          uint64         `json:"periods"`
	Token            common.Address `json:"token"`
	TokenLockFactory common.Address `json:"tokenLockFactory"`
	State            string         `json:"state"`
	Redeemed         int            `json:"redeemed"`
	Now              uint64         `json:"now"`
}

// LockView is a snapshot of a token lock and its balance.
type LockView struct {
	Address       common.Address `json:"address"`
	Token         common.Address `json:"token"`
	Owner         common.Address `json:"owner"`
	Beneficiary   common.Address `json:"beneficiary"`
	ManagedAmount *big.Int       `json:"managedAmount"`
	Balance       *big.Int       `json:"balance"`
	StartTime     uint64         `json:"startTime"`
	EndTime       uint64         `json:"endTime"`
	Periods       uint64         `json:"periods"`
	Revocable     bool           `json:"revocable"`
	CanDelegate   bool           `json:"canDelegate"`
}

// DelegateView is an account's current delegate and delegation nonce.
type DelegateView struct {
	Account  common.Address `json:"account"`
	Delegate common.Address `json:"delegate"`
	Nonce    *big.Int       `json:"nonce"`
}

// Campaign returns a snapshot of the initialized campaign at addr.
func (s *AirdropService) Campaign(addr common.Address) (*CampaignView, error) {
	var view *CampaignView
	err := s.chain.View(func(now uint64) error {
		c, err := chain.Lookup[*airdrop.Campaign](s.chain, addr)
		if err != nil || !c.Initialized() {
			return fmt.Errorf("%w: campaign %s", ErrNotFound, addr.Hex())
		}
		f, err := chain.Lookup[*factory.Factory](s.chain, s.deployment.Factory)
		if err != nil {
			return err
		}
		view = &CampaignView{
			Address:          addr,
			Factory:          c.Factory(),
			FromFactory:      f.IsCampaign(addr),
			MetadataPointer:  c.MetadataPointer(),
			Root:             c.Root(),
			StartTime:        c.StartTime(),
			Deadline:         c.Deadline(),
			LockEndTime:      c.LockEndTime(),
			Periods:          c.Periods(),
			Token:            c.Token(),
			TokenLockFactory: c.TokenLockFactory(),
			State:            c.State(now).String(),
			Redeemed:         c.RedeemedCount(),
			Now:              now,
		}
		return nil
	})
	return view, err
}

// IsRedeemed reports whether (account, amount) was redeemed from campaign.
func (s *AirdropService) IsRedeemed(campaign, account common.Address, amount *big.Int) (bool, error) {
	var redeemed bool
	err := s.chain.View(func(uint64) error {
		c, err := chain.Lookup[*airdrop.Campaign](s.chain, campaign)
		if err != nil {
			return fmt.Errorf("%w: campaign %s", ErrNotFound, campaign.Hex())
		}
		redeemed = c.IsRedeemed(account, amount)
		return nil
	})
	return redeemed, err
}

func (s *AirdropService) lookupToken(addr common.Address) (*token.Token, error) {
	if addr == (common.Address{}) {
		addr = s.deployment.Token
	}
	t, err := chain.Lookup[*token.Token](s.chain, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: token %s", ErrNotFound, addr.Hex())
	}
	return t, nil
}

// Balance returns account's balance of tok.
func (s *AirdropService) Balance(tok, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := s.chain.View(func(uint64) error {
		t, err := s.lookupToken(tok)
		if err != nil {
			return err
		}
		balance = t.BalanceOf(account)
		return nil
	})
	return balance, err
}

// Delegate returns account's delegate and next delegation nonce on tok.
func (s *AirdropService) Delegate(tok, account common.Address) (*DelegateView, error) {
	var view *DelegateView
	err := s.chain.View(func(uint64) error {
		t, err := s.lookupToken(tok)
		if err != nil {
			return err
		}
		view = &DelegateView{Account: account, Delegate: t.Delegates(account), Nonce: t.Nonces(account)}
		return nil
	})
	return view, err
}

// Lock returns a snapshot of the token lock at addr.
func (s *AirdropService) Lock(addr common.Address) (*LockView, error) {
	var view *LockView
	err := s.chain.View(func(uint64) error {
		l, err := chain.Lookup[*vesting.TokenLock](s.chain, addr)
		if err != nil || l.Beneficiary() == (common.Address{}) {
			return fmt.Errorf("%w: token lock %s", ErrNotFound, addr.Hex())
		}
		balance := new(big.Int)
		if t, err := chain.Lookup[*token.Token](s.chain, l.Token()); err == nil {
			balance = t.BalanceOf(addr)
		}
		view = &LockView{
			Address:       addr,
			Token:         l.Token(),
			Owner:         l.Owner(),
			Beneficiary:   l.Beneficiary(),
			ManagedAmount: l.ManagedAmount(),
			Balance:       balance,
			StartTime:     l.StartTime(),
			EndTime:       l.EndTime(),
			Periods:       l.Periods(),
			Revocable:     l.Revocable(),
			CanDelegate:   l.CanDelegate(),
		}
		return nil
	})
	return view, err
}
