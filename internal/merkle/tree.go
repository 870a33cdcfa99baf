package merkle

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

var (
	ErrEmptyTree    = chain.NewError(chain.KindInputValidation, "EmptyMerkleTree")
	ErrLeafNotFound = chain.NewError(chain.KindInputValidation, "LeafNotInTree")
)

// Tree is a sorted-pair Merkle tree. Leaves keep their input order and an odd
// node at the end of a layer is promoted unchanged.
type Tree struct {
	layers [][]common.Hash
	index  map[common.Hash]int
}

// Entitlement is one committed (account, amount) pair.
type Entitlement struct {
	Account common.Address
	Amount  *big.Int
}

// Leaf returns the entitlement's leaf hash.
func (e Entitlement) Leaf() common.Hash {
	return LeafHash(e.Account, e.Amount)
}

// NewTree builds a tree over already hashed leaves.
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	base := make([]common.Hash, len(leaves))
	copy(base, leaves)

	t := &Tree{
		layers: [][]common.Hash{base},
		index:  make(map[common.Hash]int, len(base)),
	}
	for i, leaf := range base {
		if _, seen := t.index[leaf]; !seen {
			t.index[leaf] = i
		}
	}

	for layer := base; len(layer) > 1; {
		next := make([]common.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, hashPair(layer[i], layer[i+1]))
		}
		t.layers = append(t.layers, next)
		layer = next
	}

	return t, nil
}

// NewTreeFromEntitlements hashes each entitlement and builds the tree.
func NewTreeFromEntitlements(entitlements []Entitlement) (*Tree, error) {
	leaves := make([]common.Hash, len(entitlements))
	for i, e := range entitlements {
		leaves[i] = e.Leaf()
	}
	return NewTree(leaves)
}

// Root returns the committed digest.
func (t *Tree) Root() common.Hash {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

// Leaves returns the leaf layer.
func (t *Tree) Leaves() []common.Hash {
	out := make([]common.Hash, len(t.layers[0]))
	copy(out, t.layers[0])
	return out
}

// Proof returns the sibling path for leaf.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	idx, ok := t.index[leaf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLeafNotFound, leaf.Hex())
	}

	proof := make([]common.Hash, 0, len(t.layers)-1)
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := idx ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		idx /= 2
	}
	return proof, nil
}

// ProofFor returns the proof of an (account, amount) entitlement.
func (t *Tree) ProofFor(account common.Address, amount *big.Int) ([]common.Hash, error) {
	return t.Proof(LeafHash(account, amount))
}
