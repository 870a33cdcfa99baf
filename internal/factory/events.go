package factory

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

type CampaignCreated struct {
	Campaign    common.Address `json:"campaign"`
	InitData    hexutil.Bytes  `json:"initData"`
	Token       common.Address `json:"token"`
	TotalAmount *big.Int       `json:"totalAmount"`
}

func (CampaignCreated) EventName() string { return "CampaignCreated" }

func (e CampaignCreated) MarshalJSON() ([]byte, error) {
	type plain CampaignCreated
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"totalAmount"`
	}{plain(e), chain.Decimal(e.TotalAmount)})
}

type TokensWithdrawn struct {
	Owner  common.Address `json:"owner"`
	Amount *big.Int       `json:"amount"`
}

func (TokensWithdrawn) EventName() string { return "TokensWithdrawn" }

func (e TokensWithdrawn) MarshalJSON() ([]byte, error) {
	type plain TokensWithdrawn
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(e), chain.Decimal(e.Amount)})
}
