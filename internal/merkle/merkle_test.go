package merkle

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

func entitlements(n int) []Entitlement {
	out := make([]Entitlement, n)
	for i := range out {
		out[i] = Entitlement{
			Account: common.BigToAddress(big.NewInt(int64(0x1000 + i))),
			Amount:  big.NewInt(int64((i + 1) * 100)),
		}
	}
	return out
}

func TestLeafHash_MatchesPackedEncoding(t *testing.T) {
	account := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	amount := big.NewInt(25_000)

	packed := make([]byte, 0, 52)
	packed = append(packed, account.Bytes()...)
	packed = append(packed, common.LeftPadBytes(amount.Bytes(), 32)...)

	assert.Equal(t, crypto.Keccak256Hash(packed), LeafHash(account, amount))
	assert.Equal(t, LeafHash(account, new(big.Int)), LeafHash(account, nil))
	assert.NotEqual(t, LeafHash(account, amount), LeafHash(account, big.NewInt(25_001)))
}

func TestLeafHash_DoesNotMutateAmount(t *testing.T) {
	amount := big.NewInt(7)
	LeafHash(common.Address{}, amount)
	assert.Equal(t, int64(7), amount.Int64())
}

func TestHashPair_IsOrderIndependent(t *testing.T) {
	a := crypto.Keccak256Hash([]byte("a"))
	b := crypto.Keccak256Hash([]byte("b"))
	assert.Equal(t, hashPair(a, b), hashPair(b, a))
}

func TestTree_EveryLeafVerifies(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 7, 8, 13} {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			ents := entitlements(n)
			tree, err := NewTreeFromEntitlements(ents)
			require.NoError(t, err)

			for _, e := range ents {
				proof, err := tree.ProofFor(e.Account, e.Amount)
				require.NoError(t, err)
				assert.True(t, Verify(proof, tree.Root(), e.Leaf()))
				assert.NoError(t, VerifyClaim(tree.Root(), e.Account, e.Amount, proof))
			}
		})
	}
}

func TestTree_SingleLeafRootIsLeaf(t *testing.T) {
	ents := entitlements(1)
	tree, err := NewTreeFromEntitlements(ents)
	require.NoError(t, err)

	assert.Equal(t, ents[0].Leaf(), tree.Root())
	proof, err := tree.ProofFor(ents[0].Account, ents[0].Amount)
	require.NoError(t, err)
	assert.Empty(t, proof)
}

func TestTree_OddNodeIsPromoted(t *testing.T) {
	ents := entitlements(3)
	tree, err := NewTreeFromEntitlements(ents)
	require.NoError(t, err)

	l := tree.Leaves()
	want := hashPair(hashPair(l[0], l[1]), l[2])
	assert.Equal(t, want, tree.Root())

	proof, err := tree.Proof(l[2])
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{hashPair(l[0], l[1])}, proof)
}

func TestTree_Errors(t *testing.T) {
	_, err := NewTree(nil)
	assert.ErrorIs(t, err, ErrEmptyTree)
	assert.Equal(t, chain.KindInputValidation, chain.KindOf(err))

	tree, err := NewTreeFromEntitlements(entitlements(4))
	require.NoError(t, err)
	_, err = tree.ProofFor(common.HexToAddress("0xdead"), big.NewInt(1))
	assert.ErrorIs(t, err, ErrLeafNotFound)
}

func TestVerifyClaim_Rejects(t *testing.T) {
	ents := entitlements(6)
	tree, err := NewTreeFromEntitlements(ents)
	require.NoError(t, err)
	target := ents[2]
	proof, err := tree.ProofFor(target.Account, target.Amount)
	require.NoError(t, err)

	tampered := append([]common.Hash(nil), proof...)
	tampered[0][0] ^= 0xff

	tests := []struct {
		name    string
		account common.Address
		amount  *big.Int
		proof   []common.Hash
	}{
		{name: "wrong amount", account: target.Account, amount: big.NewInt(1), proof: proof},
		{name: "zero amount", account: target.Account, amount: big.NewInt(0), proof: proof},
		{name: "other account", account: ents[3].Account, amount: target.Amount, proof: proof},
		{name: "tampered proof", account: target.Account, amount: target.Amount, proof: tampered},
		{name: "empty proof", account: target.Account, amount: target.Amount, proof: nil},
		{name: "truncated proof", account: target.Account, amount: target.Amount, proof: proof[:1]},
		{name: "extra element", account: target.Account, amount: target.Amount, proof: append(append([]common.Hash(nil), proof...), common.Hash{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyClaim(tree.Root(), tt.account, tt.amount, tt.proof)
			assert.ErrorIs(t, err, ErrInvalidMerkleProof)
			assert.Equal(t, chain.KindProof, chain.KindOf(err))
		})
	}
}
