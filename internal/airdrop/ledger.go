package airdrop

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

// ClaimLedger records which leaves of a campaign have been redeemed. It only
// grows and is never iterated.
type ClaimLedger struct {
	redeemed *chain.Store[common.Hash, struct{}]
}

func NewClaimLedger() *ClaimLedger {
	return &ClaimLedger{redeemed: chain.NewStore[common.Hash, struct{}]()}
}

// IsRedeemed reports whether leaf has been claimed.
func (l *ClaimLedger) IsRedeemed(leaf common.Hash) bool {
	return l.redeemed.Has(leaf)
}

// Mark claims leaf, failing if it was already claimed.
func (l *ClaimLedger) Mark(call *chain.Call, leaf common.Hash) error {
	if l.redeemed.Has(leaf) {
		return fmt.Errorf("%w: %s", ErrLeafAlreadyRedeemed, leaf.Hex())
	}
	l.redeemed.Set(call, leaf, struct{}{})
	return nil
}

// Count returns the number of redeemed leaves.
func (l *ClaimLedger) Count() int {
	return l.redeemed.Len()
}
