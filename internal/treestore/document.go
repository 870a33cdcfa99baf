// Package treestore builds distributable claim documents for a Merkle tree
// and archives them in S3, keyed by root, so claimants can fetch their proofs
// from the metadata pointer a campaign is created with.
package treestore

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/merkle"
)

// Claim is one entitlement with the proof that redeems it.
type Claim struct {
	Account common.Address `json:"account"`
	Amount  string         `json:"amount"`
	Leaf    common.Hash    `json:"leaf"`
	Proof   []common.Hash  `json:"proof"`
}

// Document is the published form of a tree.
type Document struct {
	Root   common.Hash `json:"root"`
	Total  string      `json:"total"`
	Claims []Claim     `json:"claims"`
}

// BuildDocument commits entitlements to a tree and collects every proof, in
// input order.
func BuildDocument(entitlements []merkle.Entitlement) (*Document, error) {
	tree, err := merkle.NewTreeFromEntitlements(entitlements)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	doc := &Document{Root: tree.Root(), Claims: make([]Claim, len(entitlements))}
	for i, e := range entitlements {
		proof, err := tree.ProofFor(e.Account, e.Amount)
		if err != nil {
			return nil, fmt.Errorf("entitlement %d: %w", i, err)
		}
		doc.Claims[i] = Claim{
			Account: e.Account,
			Amount:  e.Amount.String(),
			Leaf:    e.Leaf(),
			Proof:   proof,
		}
		total.Add(total, e.Amount)
	}
	doc.Total = total.String()
	return doc, nil
}

// ClaimsFor returns every claim held by account. An account may appear with
// more than one amount.
func (d *Document) ClaimsFor(account common.Address) []Claim {
	var out []Claim
	for _, c := range d.Claims {
		if c.Account == account {
			out = append(out, c)
		}
	}
	return out
}

// Verify checks every claim against the root.
func (d *Document) Verify() error {
	for i, c := range d.Claims {
		amount, ok := new(big.Int).SetString(c.Amount, 10)
		if !ok {
			return fmt.Errorf("claim %d: invalid amount %q", i, c.Amount)
		}
		if err := merkle.VerifyClaim(d.Root, c.Account, amount, c.Proof); err != nil {
			return fmt.Errorf("claim %d for %s: %w", i, c.Account.Hex(), err)
		}
	}
	return nil
}

// Key is the object key a document with root is stored under.
func Key(prefix string, root common.Hash) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + root.Hex() + ".json"
}
