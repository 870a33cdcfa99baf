// Package merkle commits (account, amount) entitlements to a single root and
// verifies membership proofs against it.
//
// Pairs are hashed in sorted order, which matches OpenZeppelin's MerkleProof
// and merkletreejs built with sortPairs, so proofs need no position bits.
package merkle

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

var ErrInvalidMerkleProof = chain.NewError(chain.KindProof, "InvalidMerkleProof")

// LeafHash is keccak256(abi.encodePacked(account, amount)).
func LeafHash(account common.Address, amount *big.Int) common.Hash {
	word := new(big.Int)
	if amount != nil {
		word.Set(amount)
	}
	return crypto.Keccak256Hash(account.Bytes(), math.U256Bytes(word))
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// ProcessProof folds proof into leaf and returns the resulting root.
func ProcessProof(proof []common.Hash, leaf common.Hash) common.Hash {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed
}

// Verify reports whether proof links leaf to root.
func Verify(proof []common.Hash, root, leaf common.Hash) bool {
	return ProcessProof(proof, leaf) == root
}

// VerifyClaim checks that (account, amount) is committed under root.
func VerifyClaim(root common.Hash, account common.Address, amount *big.Int, proof []common.Hash) error {
	if !Verify(proof, root, LeafHash(account, amount)) {
		return fmt.Errorf("%w: account %s amount %s", ErrInvalidMerkleProof, account.Hex(), amount)
	}
	return nil
}
