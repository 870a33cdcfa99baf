// Package services exposes the airdrop engine to the API and binaries. Each
// method is one atomic ledger call or one read-only view.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
	"github.com/cyphera/cyphera-airdrop/internal/events"
	"github.com/cyphera/cyphera-airdrop/internal/factory"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/token"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

// ErrNotFound is returned by views when nothing of the requested kind lives
// at an address.
var ErrNotFound = errors.New("not found")

// Deployment is the set of contracts the service drives.
type Deployment struct {
	Token                  common.Address `json:"token"`
	LockImplementation     common.Address `json:"lockImplementation"`
	LockFactory            common.Address `json:"lockFactory"`
	CampaignImplementation common.Address `json:"campaignImplementation"`
	Factory                common.Address `json:"factory"`
}

// AirdropService drives a deployed factory, token and lock factory.
type AirdropService struct {
	chain      *chain.Chain
	deployment Deployment
	store      events.Store
	log        *logger.StructuredLogger
}

// NewAirdropService wraps an existing deployment. store may be nil, in which
// case Events reads the ledger's own log.
func NewAirdropService(c *chain.Chain, d Deployment, store events.Store) *AirdropService {
	return &AirdropService{
		chain:      c,
		deployment: d,
		store:      store,
		log:        logger.NewStructuredLogger(logger.ComponentAirdrop),
	}
}

// BootstrapParams describes the contracts deployed by Bootstrap.
type BootstrapParams struct {
	Owner common.Address
	Token token.Config
}

// Bootstrap deploys the token, the lock implementation and factory, the
// campaign implementation and the airdrop factory in one call sent by
// params.Owner.
func Bootstrap(ctx context.Context, c *chain.Chain, params BootstrapParams, store events.Store) (*AirdropService, error) {
	var d Deployment
	_, err := c.Execute(ctx, params.Owner, func(call *chain.Call) error {
		tok, err := token.Deploy(call, params.Token)
		if err != nil {
			return err
		}
		lockImpl, err := vesting.DeployImplementation(call)
		if err != nil {
			return err
		}
		lockFactory, err := vesting.DeployFactory(call, lockImpl.Address())
		if err != nil {
			return err
		}
		campaignImpl, err := airdrop.DeployImplementation(call)
		if err != nil {
			return err
		}
		f, err := factory.Deploy(call, tok.Address())
		if err != nil {
			return err
		}
		d = Deployment{
			Token:                  tok.Address(),
			LockImplementation:     lockImpl.Address(),
			LockFactory:            lockFactory.Address(),
			CampaignImplementation: campaignImpl.Address(),
			Factory:                f.Address(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap airdrop contracts: %w", err)
	}

	s := NewAirdropService(c, d, store)
	s.log.WithFields(map[string]interface{}{
		"owner":   params.Owner.Hex(),
		"token":   d.Token.Hex(),
		"factory": d.Factory.Hex(),
	}).Info("Airdrop contracts deployed")
	return s, nil
}

func (s *AirdropService) Deployment() Deployment {
	return s.deployment
}

// ChainID returns the id signatures must be bound to.
func (s *AirdropService) ChainID() *big.Int {
	return s.chain.ID()
}

// execute runs fn as caller and logs the outcome under operation.
func (s *AirdropService) execute(ctx context.Context, operation string, caller common.Address, fn func(call *chain.Call) error) (*chain.Receipt, error) {
	var receipt *chain.Receipt
	err := s.log.WithCaller(caller.Hex()).LogOperation(operation, func() error {
		var err error
		receipt, err = s.chain.Execute(ctx, caller, fn)
		return err
	})
	return receipt, err
}

func (s *AirdropService) resolveFactory(call *chain.Call) (*factory.Factory, error) {
	return chain.Resolve[*factory.Factory](call, s.deployment.Factory)
}

// CreateCampaignParams are the inputs of CreateCampaign. Zero Implementation
// and Token default to the deployment's.
type CreateCampaignParams struct {
	Implementation common.Address
	InitData       []byte
	Token          common.Address
	TotalAmount    *big.Int
}

// CreateCampaign clones and initializes a campaign as caller, who must own
// the factory.
func (s *AirdropService) CreateCampaign(ctx context.Context, caller common.Address, params CreateCampaignParams) (common.Address, *chain.Receipt, error) {
	impl := params.Implementation
	if impl == (common.Address{}) {
		impl = s.deployment.CampaignImplementation
	}
	tok := params.Token
	if tok == (common.Address{}) {
		tok = s.deployment.Token
	}

	var addr common.Address
	receipt, err := s.execute(ctx, "create_campaign", caller, func(call *chain.Call) error {
		f, err := s.resolveFactory(call)
		if err != nil {
			return err
		}
		addr, err = f.CreateCampaign(call, impl, params.InitData, tok, params.TotalAmount)
		return err
	})
	if err != nil {
		return common.Address{}, nil, err
	}
	return addr, receipt, nil
}

// PredictCampaignAddress returns where CreateCampaign would deploy initData.
func (s *AirdropService) PredictCampaignAddress(implementation common.Address, initData []byte) (common.Address, error) {
	if implementation == (common.Address{}) {
		implementation = s.deployment.CampaignImplementation
	}
	var addr common.Address
	err := s.chain.View(func(uint64) error {
		f, err := chain.Lookup[*factory.Factory](s.chain, s.deployment.Factory)
		if err != nil {
			return err
		}
		addr = f.PredictCampaignAddress(implementation, initData)
		return nil
	})
	return addr, err
}

// Redeem redeems directly against campaign as caller.
func (s *AirdropService) Redeem(ctx context.Context, caller, campaign, account common.Address, amount *big.Int, proof []common.Hash) (*airdrop.RedemptionRecord, error) {
	var record *airdrop.RedemptionRecord
	_, err := s.execute(ctx, "redeem", caller, func(call *chain.Call) error {
		c, err := chain.Resolve[*airdrop.Campaign](call, campaign)
		if err != nil {
			return err
		}
		record, err = c.Redeem(call, account, amount, proof)
		return err
	})
	return record, err
}

// RedeemBatch redeems caller's entitlement in every listed campaign through
// the factory, atomically. The three slices are index-aligned.
func (s *AirdropService) RedeemBatch(ctx context.Context, caller common.Address, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash) ([]*airdrop.RedemptionRecord, error) {
	return s.redeemBatch(ctx, caller, "redeem_batch", func(call *chain.Call, f *factory.Factory) ([]*airdrop.RedemptionRecord, error) {
		return f.RedeemMultipleCampaigns(call, campaigns, amounts, proofs)
	})
}

// RedeemAndDelegate is RedeemBatch followed by a signed delegation of
// caller's votes, in the same atomic call.
func (s *AirdropService) RedeemAndDelegate(ctx context.Context, caller common.Address, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash, msg delegation.Message, sig delegation.Signature) ([]*airdrop.RedemptionRecord, error) {
	return s.redeemBatch(ctx, caller, "redeem_and_delegate", func(call *chain.Call, f *factory.Factory) ([]*airdrop.RedemptionRecord, error) {
		return f.RedeemAndDelegateMultipleCampaigns(call, campaigns, amounts, proofs, msg, sig)
	})
}

func (s *AirdropService) redeemBatch(ctx context.Context, caller common.Address, operation string, fn func(call *chain.Call, f *factory.Factory) ([]*airdrop.RedemptionRecord, error)) ([]*airdrop.RedemptionRecord, error) {
	var records []*airdrop.RedemptionRecord
	_, err := s.execute(ctx, operation, caller, func(call *chain.Call) error {
		f, err := s.resolveFactory(call)
		if err != nil {
			return err
		}
		records, err = fn(call, f)
		return err
	})
	return records, err
}

// Withdraw moves amount of tok from the factory to its owner.
func (s *AirdropService) Withdraw(ctx context.Context, caller, tok common.Address, amount *big.Int) error {
	if tok == (common.Address{}) {
		tok = s.deployment.Token
	}
	_, err := s.execute(ctx, "withdraw_tokens", caller, func(call *chain.Call) error {
		f, err := s.resolveFactory(call)
		if err != nil {
			return err
		}
		return f.WithdrawTokens(call, tok, amount)
	})
	return err
}

// Mint mints the deployment token to to. Only the token minter may call it.
func (s *AirdropService) Mint(ctx context.Context, caller, to common.Address, amount *big.Int) error {
	_, err := s.execute(ctx, "mint", caller, func(call *chain.Call) error {
		tok, err := chain.Resolve[*token.Token](call, s.deployment.Token)
		if err != nil {
			return err
		}
		return tok.Mint(call, to, amount)
	})
	return err
}

// BuildTree commits entitlements to a Merkle tree and returns the root with
// one proof per entitlement, in input order.
func (s *AirdropService) BuildTree(entitlements []merkle.Entitlement) (common.Hash, [][]common.Hash, error) {
	tree, err := merkle.NewTreeFromEntitlements(entitlements)
	if err != nil {
		return common.Hash{}, nil, err
	}
	proofs := make([][]common.Hash, len(entitlements))
	for i, e := range entitlements {
		if proofs[i], err = tree.ProofFor(e.Account, e.Amount); err != nil {
			return common.Hash{}, nil, err
		}
	}
	return tree.Root(), proofs, nil
}

// Events lists committed events matching q, from the store when one is
// configured.
func (s *AirdropService) Events(ctx context.Context, q events.Query) ([]events.Record, error) {
	if s.store != nil {
		return s.store.List(ctx, q)
	}

	all, err := events.NewRecords(s.chain.ID().Int64(), s.chain.Logs())
	if err != nil {
		return nil, err
	}
	out := make([]events.Record, 0)
	for _, r := range all {
		if !q.Matches(r) {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}
