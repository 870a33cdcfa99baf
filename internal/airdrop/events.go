package airdrop

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

type MerkleTreeSet struct {
	MerkleTreeIPFSRef string      `json:"merkleTreeIPFSRef"`
	Root              common.Hash `json:"root"`
	StartTime         uint64      `json:"startTime"`
	Deadline          uint64      `json:"deadline"`
}

func (MerkleTreeSet) EventName() string { return "MerkleTreeSet" }

// TokensRedeemed carries the zero address as TokenLock when no lock was
// created.
type TokensRedeemed struct {
	Account   common.Address `json:"account"`
	TokenLock common.Address `json:"tokenLock"`
	Amount    *big.Int       `json:"amount"`
}

func (TokensRedeemed) EventName() string { return "TokensRedeemed" }

func (e TokensRedeemed) MarshalJSON() ([]byte, error) {
	type plain TokensRedeemed
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(e), chain.Decimal(e.Amount)})
}
