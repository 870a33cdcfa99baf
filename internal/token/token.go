// Package token is the fungible balance ledger airdrops pay out in. It keeps
// balances, allowances, a single minter and vote delegation with
// signature-based delegateBySig.
package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
)

var (
	ErrInsufficientBalance   = chain.NewError(chain.KindCollaborator, "ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = chain.NewError(chain.KindCollaborator, "ERC20: insufficient allowance")
	ErrZeroAddress           = chain.NewError(chain.KindInputValidation, "ERC20: zero address")
	ErrInvalidAmount         = chain.NewError(chain.KindInputValidation, "ERC20: invalid amount")
	ErrCallerIsNotMinter     = chain.NewError(chain.KindAuthorization, "CallerIsNotMinter")
)

// Config describes a token at deployment.
type Config struct {
	Name   string
	Symbol string
	Minter common.Address
	// SigningDomain is the EIP-712 domain name. It defaults to Name.
	SigningDomain string
}

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Token is a deployed fungible token.
type Token struct {
	address     common.Address
	name        string
	symbol      string
	minter      common.Address
	totalSupply *chain.Cell[*big.Int]
	balances    *chain.Store[common.Address, *big.Int]
	allowances  *chain.Store[allowanceKey, *big.Int]
	delegates   *chain.Store[common.Address, common.Address]
	nonces      *chain.Store[common.Address, uint64]
	authorizer  *delegation.Authorizer
}

// Deploy creates a token at the next CREATE address of call.Sender.
func Deploy(call *chain.Call, cfg Config) (*Token, error) {
	domainName := cfg.SigningDomain
	if domainName == "" {
		domainName = cfg.Name
	}
	chainID := call.Chain().ID()

	t, _, err := chain.Deploy(call, func(addr common.Address) *Token {
		return &Token{
			address:     addr,
			name:        cfg.Name,
			symbol:      cfg.Symbol,
			minter:      cfg.Minter,
			totalSupply: chain.NewCell(new(big.Int)),
			balances:    chain.NewStore[common.Address, *big.Int](),
			allowances:  chain.NewStore[allowanceKey, *big.Int](),
			delegates:   chain.NewStore[common.Address, common.Address](),
			nonces:      chain.NewStore[common.Address, uint64](),
			authorizer: delegation.NewAuthorizer(delegation.Domain{
				Name:              domainName,
				Version:           delegation.DomainVersion,
				ChainID:           chainID,
				VerifyingContract: addr,
			}),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deploy token: %w", err)
	}
	return t, nil
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Minter() common.Address  { return t.minter }

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply.Get())
}

// BalanceOf returns the balance of account.
func (t *Token) BalanceOf(account common.Address) *big.Int {
	if b, ok := t.balances.Get(account); ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances.Get(allowanceKey{owner: owner, spender: spender}); ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

// Domain returns the EIP-712 domain delegation signatures are made under.
func (t *Token) Domain() delegation.Domain {
	return t.authorizer.Domain()
}

// Mint creates amount new tokens for to. Only the minter may mint.
func (t *Token) Mint(call *chain.Call, to common.Address, amount *big.Int) error {
	if call.Sender != t.minter {
		return ErrCallerIsNotMinter
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := validAmount(amount); err != nil {
		return err
	}

	t.totalSupply.Set(call, new(big.Int).Add(t.totalSupply.Get(), amount))
	t.balances.Set(call, to, new(big.Int).Add(t.BalanceOf(to), amount))

	call.Emit(t.address, Transfer{From: common.Address{}, To: to, Value: new(big.Int).Set(amount)})
	return nil
}

// Transfer moves amount from call.Sender to to.
func (t *Token) Transfer(call *chain.Call, to common.Address, amount *big.Int) error {
	return t.transfer(call, call.Sender, to, amount)
}

// Approve lets spender move up to amount of call.Sender's balance.
func (t *Token) Approve(call *chain.Call, spender common.Address, amount *big.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	t.allowances.Set(call, allowanceKey{owner: call.Sender, spender: spender}, new(big.Int).Set(amount))
	call.Emit(t.address, Approval{Owner: call.Sender, Spender: spender, Value: new(big.Int).Set(amount)})
	return nil
}

// TransferFrom moves amount from from to to, spending call.Sender's allowance.
func (t *Token) TransferFrom(call *chain.Call, from, to common.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	key := allowanceKey{owner: from, spender: call.Sender}
	allowed := t.Allowance(from, call.Sender)
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: spender %s allowed %s, needs %s", ErrInsufficientAllowance, call.Sender.Hex(), allowed, amount)
	}
	t.allowances.Set(call, key, allowed.Sub(allowed, amount))
	return t.transfer(call, from, to, amount)
}

func (t *Token) transfer(call *chain.Call, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	balance := t.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from.Hex(), balance, amount)
	}

	t.balances.Set(call, from, balance.Sub(balance, amount))
	t.balances.Set(call, to, new(big.Int).Add(t.BalanceOf(to), amount))

	call.Emit(t.address, Transfer{From: from, To: to, Value: new(big.Int).Set(amount)})
	return nil
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}
