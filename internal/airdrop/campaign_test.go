package airdrop_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/testutil"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

func redeem(env *testutil.Env, c *airdrop.Campaign, sender common.Address, r testutil.Recipient, proof []common.Hash) (*airdrop.RedemptionRecord, *chain.Receipt, error) {
	var record *airdrop.RedemptionRecord
	receipt, err := env.Chain.Execute(context.Background(), sender, func(call *chain.Call) error {
		var err error
		record, err = c.Redeem(call, r.Address, r.Amount, proof)
		return err
	})
	return record, receipt, err
}

func TestInitData_RoundTrip(t *testing.T) {
	env := testutil.NewEnv(t)
	params := env.InitParams(true)

	data, err := airdrop.EncodeInitData(params)
	require.NoError(t, err)

	decoded, err := airdrop.DecodeInitData(data)
	require.NoError(t, err)
	assert.Equal(t, params, decoded)

	_, err = airdrop.DecodeInitData(data[:3])
	assert.ErrorIs(t, err, airdrop.ErrInvalidInitData)

	bad := append([]byte{0xde, 0xad, 0xbe, 0xef}, data[4:]...)
	_, err = airdrop.DecodeInitData(bad)
	assert.ErrorIs(t, err, airdrop.ErrInvalidInitData)

	_, err = airdrop.DecodeInitData(data[:40])
	assert.ErrorIs(t, err, airdrop.ErrInvalidInitData)
}

func TestInitialize(t *testing.T) {
	env := testutil.NewEnv(t)
	addr := env.CreateCampaign(t, env.InitParams(true))
	c := env.Campaign(t, addr)

	assert.True(t, c.Initialized())
	assert.Equal(t, env.Factory.Address(), c.Factory())
	assert.Equal(t, env.Tree.Root(), c.Root())
	assert.Equal(t, testutil.MetadataPointer, c.MetadataPointer())
	assert.Equal(t, testutil.Periods, c.Periods())
	assert.Equal(t, env.LockFactory.Address(), c.TokenLockFactory())

	t.Run("cannot initialize twice", func(t *testing.T) {
		data, err := airdrop.EncodeInitData(env.InitParams(false))
		require.NoError(t, err)

		err = env.Try(testutil.Owner, func(call *chain.Call) error {
			return c.Initialize(call, data)
		})
		assert.ErrorIs(t, err, airdrop.ErrAlreadyInitialized)
		assert.Equal(t, chain.KindStateConflict, chain.KindOf(err))
		assert.Equal(t, env.Factory.Address(), c.Factory())
		assert.NotZero(t, c.LockEndTime())
	})

	t.Run("implementation cannot be initialized", func(t *testing.T) {
		data, err := airdrop.EncodeInitData(env.InitParams(true))
		require.NoError(t, err)

		err = env.Try(testutil.Owner, func(call *chain.Call) error {
			return env.CampaignImpl.Initialize(call, data)
		})
		assert.ErrorIs(t, err, airdrop.ErrAlreadyInitialized)
	})
}

func TestInitialize_EmitsMerkleTreeSet(t *testing.T) {
	env := testutil.NewEnv(t)
	params := env.InitParams(true)
	data, err := airdrop.EncodeInitData(params)
	require.NoError(t, err)

	clone := env.CampaignImpl.NewClone(common.HexToAddress("0xc10e"))
	receipt := env.Exec(t, testutil.Owner, func(call *chain.Call) error {
		return clone.Initialize(call, data)
	})

	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, airdrop.MerkleTreeSet{
		MerkleTreeIPFSRef: params.MetadataPointer,
		Root:              params.Root,
		StartTime:         params.StartTime,
		Deadline:          params.Deadline,
	}, receipt.Logs[0].Event)
	assert.Equal(t, testutil.Owner, clone.Factory())
}

func TestInitialize_RejectsInvertedWindow(t *testing.T) {
	env := testutil.NewEnv(t)
	params := env.InitParams(true)
	params.Deadline = params.StartTime
	data, err := airdrop.EncodeInitData(params)
	require.NoError(t, err)

	clone := env.CampaignImpl.NewClone(common.HexToAddress("0xc10e"))
	err = env.Try(testutil.Owner, func(call *chain.Call) error {
		return clone.Initialize(call, data)
	})
	assert.ErrorIs(t, err, airdrop.ErrInvalidRedeemWindow)
	assert.False(t, clone.Initialized())
}

func TestRedeem_Window(t *testing.T) {
	tests := []struct {
		name    string
		at      uint64
		wantErr error
	}{
		{name: "before start", at: testutil.At(7*testutil.Day) - 1, wantErr: airdrop.ErrCannotRedeemBeforeStartTime},
		{name: "at start", at: testutil.At(7 * testutil.Day)},
		{name: "at deadline", at: testutil.At((7 + 365) * testutil.Day)},
		{name: "after deadline", at: testutil.At((7+365)*testutil.Day) + 1, wantErr: airdrop.ErrCannotRedeemAfterDeadline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(false)))
			r := env.Recipients[0]

			env.Clock.Set(tt.at)
			_, _, err := redeem(env, c, r.Address, r, env.Proof(t, r))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, chain.KindTemporal, chain.KindOf(err))
				assert.False(t, c.IsRedeemed(r.Address, r.Amount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, r.Amount, env.Token.BalanceOf(r.Address))
		})
	}
}

func TestRedeem_State(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(true)))

	assert.Equal(t, airdrop.PreWindow, c.State(c.StartTime()-1))
	assert.Equal(t, airdrop.Active, c.State(c.StartTime()))
	assert.Equal(t, airdrop.Active, c.State(c.Deadline()))
	assert.Equal(t, airdrop.PostWindow, c.State(c.Deadline()+1))
	assert.Equal(t, "active", airdrop.Active.String())
}

func TestRedeem_AllLocked(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(true)))
	env.OpenWindow()

	for _, r := range env.Recipients {
		record, receipt, err := redeem(env, c, r.Address, r, env.Proof(t, r))
		require.NoError(t, err)
		require.True(t, record.Locked())

		lock, err := chain.Lookup[*vesting.TokenLock](env.Chain, record.TokenLock)
		require.NoError(t, err)
		assert.True(t, env.LockFactory.IsTokenLock(record.TokenLock))
		assert.Equal(t, r.Address, lock.Beneficiary())
		assert.Equal(t, r.Amount, lock.ManagedAmount())
		assert.Equal(t, env.Token.Address(), lock.Token())
		assert.Equal(t, c.StartTime(), lock.StartTime())
		assert.Equal(t, c.LockEndTime(), lock.EndTime())
		assert.Equal(t, testutil.Periods, lock.Periods())
		assert.Equal(t, common.Address{}, lock.Owner())
		assert.False(t, lock.Revocable())
		assert.True(t, lock.CanDelegate())

		assert.Equal(t, r.Amount, env.Token.BalanceOf(record.TokenLock))
		assert.Zero(t, env.Token.BalanceOf(r.Address).Sign())

		last := receipt.Logs[len(receipt.Logs)-1]
		assert.Equal(t, airdrop.TokensRedeemed{Account: r.Address, TokenLock: record.TokenLock, Amount: r.Amount}, last.Event)
		assert.Equal(t, c.Address(), last.Address)
	}

	assert.Zero(t, env.Token.BalanceOf(env.Factory.Address()).Sign())
	assert.Equal(t, len(env.Recipients), c.RedeemedCount())
}

func TestRedeem_AllWithoutLock(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(false)))
	env.OpenWindow()

	for _, r := range env.Recipients {
		record, receipt, err := redeem(env, c, r.Address, r, env.Proof(t, r))
		require.NoError(t, err)
		assert.False(t, record.Locked())
		assert.Equal(t, r.Amount, env.Token.BalanceOf(r.Address))

		for _, l := range receipt.Logs {
			assert.NotEqual(t, "TokenLockCreated", l.Name())
		}
	}

	assert.Zero(t, env.Token.BalanceOf(env.Factory.Address()).Sign())
	assert.Zero(t, env.LockFactory.Sequence())
}

func TestRedeem_LockStopsAfterLockEndTime(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(true)))
	env.OpenWindow()

	first, second := env.Recipients[0], env.Recipients[1]
	record, _, err := redeem(env, c, first.Address, first, env.Proof(t, first))
	require.NoError(t, err)
	assert.True(t, record.Locked())

	env.Clock.Set(c.LockEndTime() - 1)
	record, _, err = redeem(env, c, second.Address, second, env.Proof(t, second))
	require.NoError(t, err)
	assert.True(t, record.Locked())

	env.Clock.Set(c.LockEndTime())
	third := env.Recipients[2]
	record, _, err = redeem(env, c, third.Address, third, env.Proof(t, third))
	require.NoError(t, err)
	assert.False(t, record.Locked())
	assert.Equal(t, third.Amount, env.Token.BalanceOf(third.Address))

	env.Clock.Advance(30 * testutil.Day)
	fourth := env.Recipients[3]
	record, _, err = redeem(env, c, fourth.Address, fourth, env.Proof(t, fourth))
	require.NoError(t, err)
	assert.False(t, record.Locked())
	assert.Equal(t, uint64(2), env.LockFactory.Sequence())
}

func TestRedeem_Rejections(t *testing.T) {
	env := testutil.NewEnv(t)
	c := env.Campaign(t, env.CreateCampaign(t, env.InitParams(true)))
	env.OpenWindow()
	r := env.Recipients[0]
	proof := env.Proof(t, r)

	t.Run("cannot redeem for another account", func(t *testing.T) {
		_, _, err := redeem(env, c, testutil.Outsider, r, proof)
		assert.ErrorIs(t, err, airdrop.ErrRedeemerMustBeBeneficiary)
		assert.Equal(t, chain.KindAuthorization, chain.KindOf(err))
	})

	t.Run("invalid proof", func(t *testing.T) {
		_, _, err := redeem(env, c, r.Address, r, env.Proof(t, env.Recipients[1]))
		assert.ErrorIs(t, err, airdrop.ErrInvalidMerkleProof)
		assert.Equal(t, chain.KindProof, chain.KindOf(err))
	})

	t.Run("wrong amount", func(t *testing.T) {
		wrong := r
		wrong.Amount = new(big.Int).Add(r.Amount, big.NewInt(1))
		_, _, err := redeem(env, c, r.Address, wrong, proof)
		assert.ErrorIs(t, err, airdrop.ErrInvalidMerkleProof)
	})

	t.Run("zero amount", func(t *testing.T) {
		zero := r
		zero.Amount = new(big.Int)
		_, _, err := redeem(env, c, r.Address, zero, proof)
		assert.ErrorIs(t, err, airdrop.ErrInvalidMerkleProof)
	})

	t.Run("not in committed set", func(t *testing.T) {
		stranger := testutil.Recipient{Address: testutil.Outsider, Amount: big.NewInt(1)}
		_, _, err := redeem(env, c, stranger.Address, stranger, proof)
		assert.ErrorIs(t, err, airdrop.ErrInvalidMerkleProof)
	})

	assert.False(t, c.IsRedeemed(r.Address, r.Amount))

	t.Run("cannot redeem twice", func(t *testing.T) {
		_, _, err := redeem(env, c, r.Address, r, proof)
		require.NoError(t, err)

		_, _, err = redeem(env, c, r.Address, r, proof)
		assert.ErrorIs(t, err, airdrop.ErrLeafAlreadyRedeemed)
		assert.Equal(t, chain.KindStateConflict, chain.KindOf(err))

		_, _, err = redeem(env, c, r.Address, r, nil)
		assert.ErrorIs(t, err, airdrop.ErrLeafAlreadyRedeemed)
	})
}

func TestRedeem_UnderfundedFactoryRevertsMark(t *testing.T) {
	env := testutil.NewEnv(t)
	initData, err := airdrop.EncodeInitData(env.InitParams(false))
	require.NoError(t, err)

	var addr common.Address
	env.Exec(t, testutil.Owner, func(call *chain.Call) error {
		var err error
		addr, err = env.Factory.CreateCampaign(call, env.CampaignImpl.Address(), initData, env.Token.Address(), env.Total)
		return err
	})
	c := env.Campaign(t, addr)
	env.OpenWindow()

	r := env.Recipients[0]
	_, _, err = redeem(env, c, r.Address, r, env.Proof(t, r))
	require.Error(t, err)
	assert.Equal(t, chain.KindCollaborator, chain.KindOf(err))
	assert.False(t, c.IsRedeemed(r.Address, r.Amount))
}

func TestRedemptionRecord_Locked(t *testing.T) {
	assert.False(t, airdrop.RedemptionRecord{}.Locked())
	assert.True(t, airdrop.RedemptionRecord{TokenLock: common.HexToAddress("0x01")}.Locked())
}
