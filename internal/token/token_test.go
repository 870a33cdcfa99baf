package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
)

var (
	minter  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob     = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol   = common.HexToAddress("0x0000000000000000000000000000000000000ca1")
	chainID = big.NewInt(31337)
)

func setup(t *testing.T) (*chain.Chain, *chain.ManualClock, *Token) {
	t.Helper()
	clock := chain.NewManualClock(1_000)
	c := chain.New(chainID, clock)

	var tok *Token
	_, err := c.Execute(context.Background(), minter, func(call *chain.Call) error {
		var err error
		tok, err = Deploy(call, Config{Name: "Hats Token", Symbol: "HAT", Minter: minter, SigningDomain: "hats.finance"})
		return err
	})
	require.NoError(t, err)
	return c, clock, tok
}

func exec(t *testing.T, c *chain.Chain, sender common.Address, fn func(call *chain.Call) error) error {
	t.Helper()
	_, err := c.Execute(context.Background(), sender, fn)
	return err
}

func TestDeploy_Domain(t *testing.T) {
	_, _, tok := setup(t)

	d := tok.Domain()
	assert.Equal(t, "hats.finance", d.Name)
	assert.Equal(t, delegation.DomainVersion, d.Version)
	assert.Equal(t, chainID, d.ChainID)
	assert.Equal(t, tok.Address(), d.VerifyingContract)
	assert.Equal(t, crypto.CreateAddress(minter, 0), tok.Address())
	assert.Equal(t, "HAT", tok.Symbol())
}

func TestMint(t *testing.T) {
	c, _, tok := setup(t)

	require.NoError(t, exec(t, c, minter, func(call *chain.Call) error {
		return tok.Mint(call, bob, big.NewInt(500))
	}))
	assert.Equal(t, big.NewInt(500), tok.BalanceOf(bob))
	assert.Equal(t, big.NewInt(500), tok.TotalSupply())

	err := exec(t, c, bob, func(call *chain.Call) error {
		return tok.Mint(call, bob, big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrCallerIsNotMinter)
	assert.Equal(t, chain.KindAuthorization, chain.KindOf(err))

	err = exec(t, c, minter, func(call *chain.Call) error {
		return tok.Mint(call, common.Address{}, big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrZeroAddress)
}

func TestTransferAndAllowance(t *testing.T) {
	c, _, tok := setup(t)
	require.NoError(t, exec(t, c, minter, func(call *chain.Call) error {
		return tok.Mint(call, bob, big.NewInt(100))
	}))

	tests := []struct {
		name    string
		sender  common.Address
		fn      func(call *chain.Call) error
		wantErr error
	}{
		{
			name:   "transfer",
			sender: bob,
			fn:     func(call *chain.Call) error { return tok.Transfer(call, carol, big.NewInt(10)) },
		},
		{
			name:    "transfer over balance",
			sender:  bob,
			fn:      func(call *chain.Call) error { return tok.Transfer(call, carol, big.NewInt(1_000)) },
			wantErr: ErrInsufficientBalance,
		},
		{
			name:    "negative amount",
			sender:  bob,
			fn:      func(call *chain.Call) error { return tok.Transfer(call, carol, big.NewInt(-1)) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "transferFrom without allowance",
			sender:  carol,
			fn:      func(call *chain.Call) error { return tok.TransferFrom(call, bob, carol, big.NewInt(5)) },
			wantErr: ErrInsufficientAllowance,
		},
		{
			name:   "approve",
			sender: bob,
			fn:     func(call *chain.Call) error { return tok.Approve(call, carol, big.NewInt(20)) },
		},
		{
			name:   "transferFrom within allowance",
			sender: carol,
			fn:     func(call *chain.Call) error { return tok.TransferFrom(call, bob, carol, big.NewInt(15)) },
		},
		{
			name:    "transferFrom over remaining allowance",
			sender:  carol,
			fn:      func(call *chain.Call) error { return tok.TransferFrom(call, bob, carol, big.NewInt(6)) },
			wantErr: ErrInsufficientAllowance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec(t, c, tt.sender, tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Equal(t, big.NewInt(75), tok.BalanceOf(bob))
	assert.Equal(t, big.NewInt(25), tok.BalanceOf(carol))
	assert.Equal(t, big.NewInt(5), tok.Allowance(bob, carol))
	assert.Equal(t, big.NewInt(100), tok.TotalSupply())
}

func TestDelegateBySig(t *testing.T) {
	c, clock, tok := setup(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	holder := crypto.PubkeyToAddress(key.PublicKey)

	msg := delegation.Message{Delegatee: carol, Nonce: tok.Nonces(holder), Expiry: big.NewInt(2_000)}
	sig, err := delegation.Sign(key, tok.Domain(), msg)
	require.NoError(t, err)

	receipt, err := c.Execute(context.Background(), bob, func(call *chain.Call) error {
		signer, err := tok.DelegateBySig(call, delegation.Request{Message: msg, Signature: sig, ExpectedSigner: holder})
		assert.Equal(t, holder, signer)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, carol, tok.Delegates(holder))
	assert.Equal(t, big.NewInt(1), tok.Nonces(holder))
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, DelegateChanged{Delegator: holder, FromDelegate: common.Address{}, ToDelegate: carol}, receipt.Logs[0].Event)

	t.Run("replay is rejected", func(t *testing.T) {
		err := exec(t, c, bob, func(call *chain.Call) error {
			_, err := tok.DelegateBySig(call, delegation.Request{Message: msg, Signature: sig})
			return err
		})
		assert.ErrorIs(t, err, delegation.ErrInvalidNonce)
		assert.Equal(t, big.NewInt(1), tok.Nonces(holder))
	})

	t.Run("expired is rejected without consuming the nonce", func(t *testing.T) {
		next := delegation.Message{Delegatee: bob, Nonce: tok.Nonces(holder), Expiry: big.NewInt(2_000)}
		sig, err := delegation.Sign(key, tok.Domain(), next)
		require.NoError(t, err)

		clock.Set(2_001)
		err = exec(t, c, bob, func(call *chain.Call) error {
			_, err := tok.DelegateBySig(call, delegation.Request{Message: next, Signature: sig})
			return err
		})
		assert.ErrorIs(t, err, delegation.ErrSignatureExpired)
		assert.Equal(t, big.NewInt(1), tok.Nonces(holder))
		assert.Equal(t, carol, tok.Delegates(holder))
	})
}

func TestDelegate(t *testing.T) {
	c, _, tok := setup(t)
	require.NoError(t, exec(t, c, bob, func(call *chain.Call) error {
		return tok.Delegate(call, carol)
	}))
	assert.Equal(t, carol, tok.Delegates(bob))
}
