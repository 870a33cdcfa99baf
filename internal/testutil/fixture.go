// Package testutil builds a fully deployed airdrop environment on an
// in-process chain for package tests.
package testutil

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/factory"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/token"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

const (
	Genesis         uint64 = 1_700_000_000
	MetadataPointer        = "QmSUXfYsk9HgrMBa7tgp3MBm8FGwDF9hnVaR9C1PMoFdS3"
	Periods         uint64 = 90
	Day                    = 24 * time.Hour
)

var recipientKeys = []string{
	"c5e8f61d1ab959b397eecc0a37a6517b8e67a0e7cf1f4bce5591f3ed80199122",
	"d49743deccbccc5dc7baa8e69e5be03298da8688a15dd202e20f15d5e0e9a9fb",
	"23c601ae397441f3ef6f1075dcb0031ff17fb079837beadaf3c84d96c6f3e569",
	"ee9d129c1997549ee09c0757af5939b2483d80ad649a0eda68e8b0357ad11131",
	"87630b2d1de0fbd5044eb6891b3d9d98c34c8d310c852f98550ba774480e47cc",
	"275cc4a2bfd4f612625204a20a2280ab53a6da2d14860c47a9f5affe58ad86d4",
}

var (
	Owner     = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	Outsider  = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	Delegatee = common.HexToAddress("0x000000000000000000000000000000000000de1e")
	ChainID   = big.NewInt(31337)
)

// Recipient is one entitled account with its signing key.
type Recipient struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
	Amount  *big.Int
}

// Recipients returns the fixed recipient set. Amounts differ per recipient.
func Recipients(t testing.TB) []Recipient {
	t.Helper()
	out := make([]Recipient, len(recipientKeys))
	for i, hexKey := range recipientKeys {
		key, err := crypto.HexToECDSA(hexKey)
		require.NoError(t, err)
		amount := new(big.Int).Mul(big.NewInt(int64(i+1)*1000), big.NewInt(1e18))
		out[i] = Recipient{Key: key, Address: crypto.PubkeyToAddress(key.PublicKey), Amount: amount}
	}
	return out
}

// Env is a deployed token, lock factory, campaign implementation and airdrop
// factory, with the factory owned by Owner.
type Env struct {
	Chain        *chain.Chain
	Clock        *chain.ManualClock
	Token        *token.Token
	LockImpl     *vesting.TokenLock
	LockFactory  *vesting.LockFactory
	CampaignImpl *airdrop.Campaign
	Factory      *factory.Factory
	Recipients   []Recipient
	Tree         *merkle.Tree
	Total        *big.Int
}

// NewEnv deploys the contracts at Genesis. Sinks receive committed events.
func NewEnv(t testing.TB, sinks ...chain.Sink) *Env {
	t.Helper()

	clock := chain.NewManualClock(Genesis)
	opts := make([]chain.Option, 0, len(sinks))
	for _, s := range sinks {
		opts = append(opts, chain.WithSink(s))
	}
	env := &Env{
		Chain:      chain.New(ChainID, clock, opts...),
		Clock:      clock,
		Recipients: Recipients(t),
		Total:      new(big.Int),
	}

	entitlements := make([]merkle.Entitlement, len(env.Recipients))
	for i, r := range env.Recipients {
		entitlements[i] = merkle.Entitlement{Account: r.Address, Amount: r.Amount}
		env.Total.Add(env.Total, r.Amount)
	}
	tree, err := merkle.NewTreeFromEntitlements(entitlements)
	require.NoError(t, err)
	env.Tree = tree

	env.Exec(t, Owner, func(call *chain.Call) error {
		var err error
		if env.Token, err = token.Deploy(call, token.Config{
			Name:          "Hats Token",
			Symbol:        "HAT",
			Minter:        Owner,
			SigningDomain: "hats.finance",
		}); err != nil {
			return err
		}
		if env.LockImpl, err = vesting.DeployImplementation(call); err != nil {
			return err
		}
		if env.LockFactory, err = vesting.DeployFactory(call, env.LockImpl.Address()); err != nil {
			return err
		}
		if env.CampaignImpl, err = airdrop.DeployImplementation(call); err != nil {
			return err
		}
		env.Factory, err = factory.Deploy(call, env.Token.Address())
		return err
	})

	return env
}

// Exec runs fn as sender and fails the test if the call reverts.
func (e *Env) Exec(t testing.TB, sender common.Address, fn func(call *chain.Call) error) *chain.Receipt {
	t.Helper()
	receipt, err := e.Chain.Execute(context.Background(), sender, fn)
	require.NoError(t, err)
	return receipt
}

// Try runs fn as sender and returns its error.
func (e *Env) Try(sender common.Address, fn func(call *chain.Call) error) error {
	_, err := e.Chain.Execute(context.Background(), sender, fn)
	return err
}

// InitParams returns campaign parameters over the fixture tree. The window
// opens 7 days after Genesis and closes a year later; locks end 14 days after
// Genesis unless withLock is false.
func (e *Env) InitParams(withLock bool) airdrop.InitParams {
	p := airdrop.InitParams{
		MetadataPointer:  MetadataPointer,
		Root:             e.Tree.Root(),
		StartTime:        At(7 * Day),
		Deadline:         At((7 + 365) * Day),
		Periods:          Periods,
		Token:            e.Token.Address(),
		TokenLockFactory: e.LockFactory.Address(),
	}
	if withLock {
		p.LockEndTime = At(14 * Day)
	}
	return p
}

// CreateCampaign creates and funds a campaign for params and returns its
// address.
func (e *Env) CreateCampaign(t testing.TB, params airdrop.InitParams) common.Address {
	t.Helper()
	initData, err := airdrop.EncodeInitData(params)
	require.NoError(t, err)

	var addr common.Address
	e.Exec(t, Owner, func(call *chain.Call) error {
		var err error
		addr, err = e.Factory.CreateCampaign(call, e.CampaignImpl.Address(), initData, e.Token.Address(), e.Total)
		if err != nil {
			return err
		}
		return e.Token.Mint(call, e.Factory.Address(), e.Total)
	})
	return addr
}

// Campaign returns the campaign deployed at addr.
func (e *Env) Campaign(t testing.TB, addr common.Address) *airdrop.Campaign {
	t.Helper()
	c, err := chain.Lookup[*airdrop.Campaign](e.Chain, addr)
	require.NoError(t, err)
	return c
}

// Proof returns the proof for r.
func (e *Env) Proof(t testing.TB, r Recipient) []common.Hash {
	t.Helper()
	proof, err := e.Tree.ProofFor(r.Address, r.Amount)
	require.NoError(t, err)
	return proof
}

// At returns the timestamp d after Genesis.
func At(d time.Duration) uint64 {
	return Genesis + uint64(d/time.Second)
}

// OpenWindow moves the clock to the start of the fixture window.
func (e *Env) OpenWindow() {
	e.Clock.Set(At(7 * Day))
}
