package handlers

import (
	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/services"
)

type HealthResponse struct {
	Status  string `json:"status"`
	ChainID string `json:"chainId,omitempty"`
}

type DeploymentResponse struct {
	ChainID string `json:"chainId"`
	services.Deployment
}

// InitParamsRequest is the JSON form of a campaign's initialize payload.
type InitParamsRequest struct {
	MetadataPointer  string `json:"merkleTreeIPFSRef"`
	Root             string `json:"root" binding:"required"`
	StartTime        uint64 `json:"startTime"`
	Deadline         uint64 `json:"deadline"`
	LockEndTime      uint64 `json:"lockEndTime"`
	Periods          uint64 `json:"periods"`
	Token            string `json:"token" binding:"required"`
	TokenLockFactory string `json:"tokenLockFactory"`
}

type InitDataResponse struct {
	InitData string `json:"initData"`
}

// CreateCampaignRequest carries either raw initData or params to encode.
type CreateCampaignRequest struct {
	Implementation string             `json:"implementation"`
	InitData       string             `json:"initData"`
	Params         *InitParamsRequest `json:"params"`
	Token          string             `json:"token"`
	TotalAmount    string             `json:"totalAmount" binding:"required"`
}

type CreateCampaignResponse struct {
	Address  string `json:"address"`
	InitData string `json:"initData"`
}

type PredictCampaignRequest struct {
	Implementation string             `json:"implementation"`
	InitData       string             `json:"initData"`
	Params         *InitParamsRequest `json:"params"`
}

type AddressResponse struct {
	Address string `json:"address"`
}

type RedeemRequest struct {
	Account string   `json:"account"`
	Amount  string   `json:"amount" binding:"required"`
	Proof   []string `json:"proof"`
}

// BatchRedeemRequest mirrors the factory's parallel arrays.
type BatchRedeemRequest struct {
	Campaigns []string   `json:"campaigns"`
	Amounts   []string   `json:"amounts"`
	Proofs    [][]string `json:"proofs"`
}

type BatchRedeemDelegateRequest struct {
	BatchRedeemRequest
	Delegatee string `json:"delegatee" binding:"required"`
	Nonce     string `json:"nonce" binding:"required"`
	Expiry    string `json:"expiry" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type RedemptionResponse struct {
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	TokenLock string `json:"tokenLock,omitempty"`
	Locked    bool   `json:"locked"`
}

func newRedemptionResponse(r *airdrop.RedemptionRecord) RedemptionResponse {
	resp := RedemptionResponse{
		Account: r.Account.Hex(),
		Amount:  amountString(r.Amount),
		Locked:  r.Locked(),
	}
	if r.Locked() {
		resp.TokenLock = r.TokenLock.Hex()
	}
	return resp
}

func newRedemptionResponses(records []*airdrop.RedemptionRecord) []RedemptionResponse {
	out := make([]RedemptionResponse, len(records))
	for i, r := range records {
		out[i] = newRedemptionResponse(r)
	}
	return out
}

type WithdrawRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount" binding:"required"`
}

type MintRequest struct {
	To     string `json:"to" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type BalanceResponse struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type DelegateResponse struct {
	Account  string `json:"account"`
	Delegate string `json:"delegate"`
	Nonce    string `json:"nonce"`
}

type LockResponse struct {
	Address       string `json:"address"`
	Token         string `json:"token"`
	Owner         string `json:"owner"`
	Beneficiary   string `json:"beneficiary"`
	ManagedAmount string `json:"managedAmount"`
	Balance       string `json:"balance"`
	StartTime     uint64 `json:"startTime"`
	EndTime       uint64 `json:"endTime"`
	Periods       uint64 `json:"periods"`
	Revocable     bool   `json:"revocable"`
	CanDelegate   bool   `json:"canDelegate"`
}

func newLockResponse(v *services.LockView) LockResponse {
	return LockResponse{
		Address:       v.Address.Hex(),
		Token:         v.Token.Hex(),
		Owner:         v.Owner.Hex(),
		Beneficiary:   v.Beneficiary.Hex(),
		ManagedAmount: amountString(v.ManagedAmount),
		Balance:       amountString(v.Balance),
		StartTime:     v.StartTime,
		EndTime:       v.EndTime,
		Periods:       v.Periods,
		Revocable:     v.Revocable,
		CanDelegate:   v.CanDelegate,
	}
}

type RedeemedResponse struct {
	Campaign string `json:"campaign"`
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	Redeemed bool   `json:"redeemed"`
}

type EntitlementRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

type MerkleProofsRequest struct {
	Entitlements []EntitlementRequest `json:"entitlements" binding:"required"`
}

type MerkleProofsResponse struct {
	Root   string                `json:"root"`
	Claims []MerkleClaimResponse `json:"claims"`
}

type MerkleClaimResponse struct {
	Account string   `json:"account"`
	Amount  string   `json:"amount"`
	Leaf    string   `json:"leaf"`
	Proof   []string `json:"proof"`
}
