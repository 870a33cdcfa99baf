package handlers

import (
	"context"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
	"github.com/cyphera/cyphera-airdrop/internal/events"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/services"
)

// AirdropService is the part of services.AirdropService the handlers use.
type AirdropService interface {
	Deployment() services.Deployment
	ChainID() *big.Int
	CreateCampaign(ctx context.Context, caller common.Address, params services.CreateCampaignParams) (common.Address, *chain.Receipt, error)
	PredictCampaignAddress(implementation common.Address, initData []byte) (common.Address, error)
	Redeem(ctx context.Context, caller, campaign, account common.Address, amount *big.Int, proof []common.Hash) (*airdrop.RedemptionRecord, error)
	RedeemBatch(ctx context.Context, caller common.Address, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash) ([]*airdrop.RedemptionRecord, error)
	RedeemAndDelegate(ctx context.Context, caller common.Address, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash, msg delegation.Message, sig delegation.Signature) ([]*airdrop.RedemptionRecord, error)
	Withdraw(ctx context.Context, caller, tok common.Address, amount *big.Int) error
	Mint(ctx context.Context, caller, to common.Address, amount *big.Int) error
	BuildTree(entitlements []merkle.Entitlement) (common.Hash, [][]common.Hash, error)
	Events(ctx context.Context, q events.Query) ([]events.Record, error)
	Campaign(addr common.Address) (*services.CampaignView, error)
	IsRedeemed(campaign, account common.Address, amount *big.Int) (bool, error)
	Balance(tok, account common.Address) (*big.Int, error)
	Delegate(tok, account common.Address) (*services.DelegateView, error)
	Lock(addr common.Address) (*services.LockView, error)
}

// AirdropHandler serves the campaign, redemption and token routes.
type AirdropHandler struct {
	service AirdropService
}

func NewAirdropHandler(service AirdropService) *AirdropHandler {
	return &AirdropHandler{service: service}
}

// GetDeployment godoc
// @Summary      Deployed contracts
// @Tags         deployment
// @Produce      json
// @Success      200  {object}  DeploymentResponse
// @Router       /deployment [get]
func (h *AirdropHandler) GetDeployment(c *gin.Context) {
	sendSuccess(c, http.StatusOK, DeploymentResponse{
		ChainID:    h.service.ChainID().String(),
		Deployment: h.service.Deployment(),
	})
}

// EncodeInitData godoc
// @Summary      Encode campaign initialize data
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        params  body      InitParamsRequest  true  "Campaign parameters"
// @Success      200     {object}  InitDataResponse
// @Failure      400     {object}  ErrorResponse
// @Router       /campaigns/init-data [post]
func (h *AirdropHandler) EncodeInitData(c *gin.Context) {
	var req InitParamsRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	data, err := encodeInitParams(&req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, InitDataResponse{InitData: hexutil.Encode(data)})
}

// CreateCampaign godoc
// @Summary      Create a campaign
// @Description  Clones the campaign implementation, initializes it and approves its total amount. Factory owner only.
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        campaign  body      CreateCampaignRequest  true  "Campaign"
// @Success      201       {object}  CreateCampaignResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /campaigns [post]
func (h *AirdropHandler) CreateCampaign(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	var req CreateCampaignRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}

	params, err := h.createParams(&req)
	if err != nil {
		sendError(c, err)
		return
	}
	addr, _, err := h.service.CreateCampaign(c.Request.Context(), caller, params)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, CreateCampaignResponse{
		Address:  addr.Hex(),
		InitData: hexutil.Encode(params.InitData),
	})
}

func (h *AirdropHandler) createParams(req *CreateCampaignRequest) (services.CreateCampaignParams, error) {
	var (
		params services.CreateCampaignParams
		err    error
	)
	if params.Implementation, err = parseOptionalAddress("implementation", req.Implementation); err != nil {
		return params, err
	}
	if params.Token, err = parseOptionalAddress("token", req.Token); err != nil {
		return params, err
	}
	if params.TotalAmount, err = parseAmount("totalAmount", req.TotalAmount); err != nil {
		return params, err
	}
	params.InitData, err = initDataOf(req.InitData, req.Params)
	return params, err
}

// PredictCampaign godoc
// @Summary      Predict a campaign address
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        campaign  body      PredictCampaignRequest  true  "Campaign"
// @Success      200       {object}  AddressResponse
// @Failure      400       {object}  ErrorResponse
// @Router       /campaigns/predict [post]
func (h *AirdropHandler) PredictCampaign(c *gin.Context) {
	var req PredictCampaignRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	impl, err := parseOptionalAddress("implementation", req.Implementation)
	if err != nil {
		sendError(c, err)
		return
	}
	initData, err := initDataOf(req.InitData, req.Params)
	if err != nil {
		sendError(c, err)
		return
	}
	addr, err := h.service.PredictCampaignAddress(impl, initData)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, AddressResponse{Address: addr.Hex()})
}

// GetCampaign godoc
// @Summary      Get a campaign
// @Tags         campaigns
// @Produce      json
// @Param        address  path      string  true  "Campaign address"
// @Success      200      {object}  services.CampaignView
// @Failure      404      {object}  ErrorResponse
// @Router       /campaigns/{address} [get]
func (h *AirdropHandler) GetCampaign(c *gin.Context) {
	addr, err := parseAddress("address", c.Param("address"))
	if err != nil {
		sendError(c, err)
		return
	}
	view, err := h.service.Campaign(addr)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, view)
}

// IsRedeemed godoc
// @Summary      Check a redemption
// @Tags         campaigns
// @Produce      json
// @Param        address  path      string  true  "Campaign address"
// @Param        account  query     string  true  "Account"
// @Param        amount   query     string  true  "Entitled amount"
// @Success      200      {object}  RedeemedResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /campaigns/{address}/redeemed [get]
func (h *AirdropHandler) IsRedeemed(c *gin.Context) {
	campaign, err := parseAddress("address", c.Param("address"))
	if err != nil {
		sendError(c, err)
		return
	}
	account, err := parseAddress("account", c.Query("account"))
	if err != nil {
		sendError(c, err)
		return
	}
	amount, err := parseAmount("amount", c.Query("amount"))
	if err != nil {
		sendError(c, err)
		return
	}
	redeemed, err := h.service.IsRedeemed(campaign, account, amount)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, RedeemedResponse{
		Campaign: campaign.Hex(),
		Account:  account.Hex(),
		Amount:   amount.String(),
		Redeemed: redeemed,
	})
}

// Redeem godoc
// @Summary      Redeem from one campaign
// @Description  The account defaults to the caller.
// @Tags         redemptions
// @Accept       json
// @Produce      json
// @Param        address  path      string         true  "Campaign address"
// @Param        claim    body      RedeemRequest  true  "Claim"
// @Success      200      {object}  RedemptionResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /campaigns/{address}/redeem [post]
func (h *AirdropHandler) Redeem(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	campaign, err := parseAddress("address", c.Param("address"))
	if err != nil {
		sendError(c, err)
		return
	}
	var req RedeemRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}

	account := caller
	if req.Account != "" {
		if account, err = parseAddress("account", req.Account); err != nil {
			sendError(c, err)
			return
		}
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		sendError(c, err)
		return
	}
	proof, err := parseProof("proof", req.Proof)
	if err != nil {
		sendError(c, err)
		return
	}

	record, err := h.service.Redeem(c.Request.Context(), caller, campaign, account, amount, proof)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, newRedemptionResponse(record))
}

// RedeemBatch godoc
// @Summary      Redeem from several campaigns
// @Tags         redemptions
// @Accept       json
// @Produce      json
// @Param        claims  body  BatchRedeemRequest  true  "Index-aligned campaigns, amounts and proofs"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /redeem/batch [post]
func (h *AirdropHandler) RedeemBatch(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	var req BatchRedeemRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	campaigns, amounts, proofs, err := parseBatch(&req)
	if err != nil {
		sendError(c, err)
		return
	}

	records, err := h.service.RedeemBatch(c.Request.Context(), caller, campaigns, amounts, proofs)
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, newRedemptionResponses(records))
}

// RedeemAndDelegate godoc
// @Summary      Redeem from several campaigns and delegate by signature
// @Tags         redemptions
// @Accept       json
// @Produce      json
// @Param        claims  body  BatchRedeemDelegateRequest  true  "Claims and signed delegation"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /redeem/batch/delegate [post]
func (h *AirdropHandler) RedeemAndDelegate(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	var req BatchRedeemDelegateRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	campaigns, amounts, proofs, err := parseBatch(&req.BatchRedeemRequest)
	if err != nil {
		sendError(c, err)
		return
	}
	msg, sig, err := parseDelegation(&req)
	if err != nil {
		sendError(c, err)
		return
	}

	records, err := h.service.RedeemAndDelegate(c.Request.Context(), caller, campaigns, amounts, proofs, msg, sig)
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, newRedemptionResponses(records))
}

// Withdraw godoc
// @Summary      Withdraw tokens held by the factory
// @Tags         factory
// @Accept       json
// @Produce      json
// @Param        withdrawal  body  WithdrawRequest  true  "Token and amount"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /withdraw [post]
func (h *AirdropHandler) Withdraw(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	var req WithdrawRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	tok, err := parseOptionalAddress("token", req.Token)
	if err != nil {
		sendError(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		sendError(c, err)
		return
	}
	if err := h.service.Withdraw(c.Request.Context(), caller, tok, amount); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Mint godoc
// @Summary      Mint the airdrop token
// @Tags         tokens
// @Accept       json
// @Param        mint  body  MintRequest  true  "Recipient and amount"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tokens/mint [post]
func (h *AirdropHandler) Mint(c *gin.Context) {
	caller, err := callerOf(c)
	if err != nil {
		sendError(c, err)
		return
	}
	var req MintRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		sendError(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		sendError(c, err)
		return
	}
	if err := h.service.Mint(c.Request.Context(), caller, to, amount); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBalance godoc
// @Summary      Token balance
// @Tags         tokens
// @Produce      json
// @Param        address  path      string  true  "Token address"
// @Param        account  path      string  true  "Account"
// @Success      200      {object}  BalanceResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /tokens/{address}/balances/{account} [get]
func (h *AirdropHandler) GetBalance(c *gin.Context) {
	tok, account, err := tokenAndAccount(c)
	if err != nil {
		sendError(c, err)
		return
	}
	balance, err := h.service.Balance(tok, account)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, BalanceResponse{
		Token:   tok.Hex(),
		Account: account.Hex(),
		Balance: amountString(balance),
	})
}

// GetDelegate godoc
// @Summary      Current delegate and delegation nonce
// @Tags         tokens
// @Produce      json
// @Param        address  path      string  true  "Token address"
// @Param        account  path      string  true  "Account"
// @Success      200      {object}  DelegateResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /tokens/{address}/delegates/{account} [get]
func (h *AirdropHandler) GetDelegate(c *gin.Context) {
	tok, account, err := tokenAndAccount(c)
	if err != nil {
		sendError(c, err)
		return
	}
	view, err := h.service.Delegate(tok, account)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, DelegateResponse{
		Account:  view.Account.Hex(),
		Delegate: view.Delegate.Hex(),
		Nonce:    amountString(view.Nonce),
	})
}

// GetLock godoc
// @Summary      Get a token lock
// @Tags         locks
// @Produce      json
// @Param        address  path      string  true  "Lock address"
// @Success      200      {object}  LockResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /locks/{address} [get]
func (h *AirdropHandler) GetLock(c *gin.Context) {
	addr, err := parseAddress("address", c.Param("address"))
	if err != nil {
		sendError(c, err)
		return
	}
	view, err := h.service.Lock(addr)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, newLockResponse(view))
}

// BuildProofs godoc
// @Summary      Build a Merkle tree
// @Description  Returns the root and one proof per entitlement, in request order.
// @Tags         merkle
// @Accept       json
// @Produce      json
// @Param        entitlements  body      MerkleProofsRequest  true  "Entitlements"
// @Success      200           {object}  MerkleProofsResponse
// @Failure      400           {object}  ErrorResponse
// @Router       /merkle/proofs [post]
func (h *AirdropHandler) BuildProofs(c *gin.Context) {
	var req MerkleProofsRequest
	if err := bind(c, &req); err != nil {
		sendError(c, err)
		return
	}
	entitlements := make([]merkle.Entitlement, len(req.Entitlements))
	for i, e := range req.Entitlements {
		account, err := parseAddress("account", e.Account)
		if err != nil {
			sendError(c, err)
			return
		}
		amount, err := parseAmount("amount", e.Amount)
		if err != nil {
			sendError(c, err)
			return
		}
		entitlements[i] = merkle.Entitlement{Account: account, Amount: amount}
	}

	root, proofs, err := h.service.BuildTree(entitlements)
	if err != nil {
		sendError(c, err)
		return
	}
	resp := MerkleProofsResponse{Root: root.Hex(), Claims: make([]MerkleClaimResponse, len(entitlements))}
	for i, e := range entitlements {
		resp.Claims[i] = MerkleClaimResponse{
			Account: e.Account.Hex(),
			Amount:  e.Amount.String(),
			Leaf:    e.Leaf().Hex(),
			Proof:   hashStrings(proofs[i]),
		}
	}
	sendSuccess(c, http.StatusOK, resp)
}

// ListEvents godoc
// @Summary      List committed events
// @Tags         events
// @Produce      json
// @Param        contract  query     string  false  "Emitting contract"
// @Param        name      query     string  false  "Event name"
// @Param        after     query     int     false  "Only events after this log index"
// @Param        limit     query     int     false  "Maximum number of events"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  ErrorResponse
// @Router       /events [get]
func (h *AirdropHandler) ListEvents(c *gin.Context) {
	q, err := parseEventQuery(c)
	if err != nil {
		sendError(c, err)
		return
	}
	records, err := h.service.Events(c.Request.Context(), q)
	if err != nil {
		sendError(c, err)
		return
	}
	sendList(c, records)
}

func parseEventQuery(c *gin.Context) (events.Query, error) {
	var q events.Query
	if s := c.Query("contract"); s != "" {
		addr, err := parseAddress("contract", s)
		if err != nil {
			return q, err
		}
		q.Contract = &addr
	}
	q.Name = c.Query("name")
	if s := c.Query("after"); s != "" {
		after, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, badRequest("after %q is not a log index", s)
		}
		q.AfterIndex = &after
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return q, badRequest("limit %q is not a non-negative integer", s)
		}
		q.Limit = limit
	}
	return q, nil
}

func tokenAndAccount(c *gin.Context) (common.Address, common.Address, error) {
	tok, err := parseAddress("address", c.Param("address"))
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	account, err := parseAddress("account", c.Param("account"))
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return tok, account, nil
}

// initDataOf returns raw hex initData when given, otherwise encodes params.
func initDataOf(raw string, params *InitParamsRequest) ([]byte, error) {
	switch {
	case raw != "":
		data, err := hexutil.Decode(raw)
		if err != nil {
			return nil, badRequest("initData is not hex: %v", err)
		}
		return data, nil
	case params != nil:
		return encodeInitParams(params)
	default:
		return nil, badRequest("one of initData or params is required")
	}
}

func encodeInitParams(req *InitParamsRequest) ([]byte, error) {
	root, err := parseHash("root", req.Root)
	if err != nil {
		return nil, err
	}
	tok, err := parseAddress("token", req.Token)
	if err != nil {
		return nil, err
	}
	lockFactory, err := parseOptionalAddress("tokenLockFactory", req.TokenLockFactory)
	if err != nil {
		return nil, err
	}
	return airdrop.EncodeInitData(airdrop.InitParams{
		MetadataPointer:  req.MetadataPointer,
		Root:             root,
		StartTime:        req.StartTime,
		Deadline:         req.Deadline,
		LockEndTime:      req.LockEndTime,
		Periods:          req.Periods,
		Token:            tok,
		TokenLockFactory: lockFactory,
	})
}

// parseBatch decodes the parallel arrays without checking their lengths; the
// factory rejects mismatches.
func parseBatch(req *BatchRedeemRequest) ([]common.Address, []*big.Int, [][]common.Hash, error) {
	campaigns, err := parseAddresses("campaigns", req.Campaigns)
	if err != nil {
		return nil, nil, nil, err
	}
	amounts, err := parseAmounts("amounts", req.Amounts)
	if err != nil {
		return nil, nil, nil, err
	}
	proofs, err := parseProofs("proofs", req.Proofs)
	if err != nil {
		return nil, nil, nil, err
	}
	return campaigns, amounts, proofs, nil
}

func parseDelegation(req *BatchRedeemDelegateRequest) (delegation.Message, delegation.Signature, error) {
	delegatee, err := parseAddress("delegatee", req.Delegatee)
	if err != nil {
		return delegation.Message{}, delegation.Signature{}, err
	}
	nonce, err := parseAmount("nonce", req.Nonce)
	if err != nil {
		return delegation.Message{}, delegation.Signature{}, err
	}
	expiry, err := parseAmount("expiry", req.Expiry)
	if err != nil {
		return delegation.Message{}, delegation.Signature{}, err
	}
	sig, err := delegation.ParseSignature(req.Signature)
	if err != nil {
		return delegation.Message{}, delegation.Signature{}, badRequest("signature: %v", err)
	}
	return delegation.Message{Delegatee: delegatee, Nonce: nonce, Expiry: expiry}, sig, nil
}
