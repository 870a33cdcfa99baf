package token

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

type Transfer struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value"`
}

func (Transfer) EventName() string { return "Transfer" }

func (e Transfer) MarshalJSON() ([]byte, error) {
	type plain Transfer
	return json.Marshal(struct {
		plain
		Value string `json:"value"`
	}{plain(e), chain.Decimal(e.Value)})
}

type Approval struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Value   *big.Int       `json:"value"`
}

func (Approval) EventName() string { return "Approval" }

func (e Approval) MarshalJSON() ([]byte, error) {
	type plain Approval
	return json.Marshal(struct {
		plain
		Value string `json:"value"`
	}{plain(e), chain.Decimal(e.Value)})
}

type DelegateChanged struct {
	Delegator    common.Address `json:"delegator"`
	FromDelegate common.Address `json:"fromDelegate"`
	ToDelegate   common.Address `json:"toDelegate"`
}

func (DelegateChanged) EventName() string { return "DelegateChanged" }
