// Package factory deploys airdrop campaigns as deterministic clones, funds
// them from its own token balance and redeems across several campaigns in
// one atomic call.
package factory

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/clone"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
)

var (
	ErrCallerIsNotOwner               = chain.NewError(chain.KindAuthorization, "Ownable: caller is not the owner")
	ErrCampaignInitializationFailed   = chain.NewError(chain.KindCollaborator, "CampaignInitializationFailed")
	ErrRedeemDataArraysLengthMismatch = chain.NewError(chain.KindInputValidation, "RedeemDataArraysLengthMismatch")
	ErrContractIsNotCampaign          = chain.NewError(chain.KindProvenance, "ContractIsNotCampaign")
	ErrTokenUnavailable               = chain.NewError(chain.KindCollaborator, "TokenUnavailable")
)

// Token is the ledger surface the factory funds campaigns through.
type Token interface {
	Approve(call *chain.Call, spender common.Address, amount *big.Int) error
	Transfer(call *chain.Call, to common.Address, amount *big.Int) error
}

// VotesToken accepts signed delegations.
type VotesToken interface {
	DelegateBySig(call *chain.Call, req delegation.Request) (common.Address, error)
}

// Redemption is one entry of a batch.
type Redemption struct {
	Campaign common.Address
	Amount   *big.Int
	Proof    []common.Hash
}

// Factory owns the funding pool shared by every campaign it creates.
type Factory struct {
	address   common.Address
	owner     common.Address
	token     common.Address
	campaigns *clone.Registry[*airdrop.Campaign]
}

// Deploy creates a factory owned by call.Sender whose delegations go to
// token.
func Deploy(call *chain.Call, token common.Address) (*Factory, error) {
	owner := call.Sender
	f, _, err := chain.Deploy(call, func(addr common.Address) *Factory {
		return &Factory{
			address:   addr,
			owner:     owner,
			token:     token,
			campaigns: clone.NewRegistry[*airdrop.Campaign](addr),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deploy factory: %w", err)
	}
	return f, nil
}

func (f *Factory) Address() common.Address { return f.address }
func (f *Factory) Owner() common.Address   { return f.owner }
func (f *Factory) Token() common.Address   { return f.token }

// IsCampaign reports whether addr is a campaign this factory created.
func (f *Factory) IsCampaign(addr common.Address) bool {
	return f.campaigns.Deployed(addr)
}

// Campaigns returns the number of campaigns created.
func (f *Factory) Campaigns() int {
	return f.campaigns.Len()
}

func (f *Factory) onlyOwner(call *chain.Call) error {
	if call.Sender != f.owner {
		return fmt.Errorf("%w: %s", ErrCallerIsNotOwner, call.Sender.Hex())
	}
	return nil
}

// CampaignSalt is the CREATE2 salt of the campaign created from initData.
func CampaignSalt(initData []byte) common.Hash {
	return crypto.Keccak256Hash(initData)
}

// PredictCampaignAddress returns where CreateCampaign would place the clone
// for implementation and initData.
func (f *Factory) PredictCampaignAddress(implementation common.Address, initData []byte) common.Address {
	return f.campaigns.Predict(implementation, CampaignSalt(initData))
}

// CreateCampaign clones implementation, forwards initData to the clone and
// approves it to draw totalAmount of token from the factory. initData is not
// interpreted here.
func (f *Factory) CreateCampaign(call *chain.Call, implementation common.Address, initData []byte, token common.Address, totalAmount *big.Int) (common.Address, error) {
	if err := f.onlyOwner(call); err != nil {
		return common.Address{}, err
	}

	campaign, addr, err := f.campaigns.Clone(call, implementation, CampaignSalt(initData))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrCampaignInitializationFailed, err)
	}
	self := call.As(f.address)
	if err := campaign.Initialize(self, initData); err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrCampaignInitializationFailed, err)
	}

	tok, err := chain.Resolve[Token](call, token)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	if err := tok.Approve(self, addr, totalAmount); err != nil {
		return common.Address{}, err
	}

	call.Emit(f.address, CampaignCreated{
		Campaign:    addr,
		InitData:    append(hexutil.Bytes(nil), initData...),
		Token:       token,
		TotalAmount: new(big.Int).Set(totalAmount),
	})
	return addr, nil
}

// RedeemMultipleCampaigns redeems every entry for call.Sender in order. Any
// failing entry fails the whole batch.
func (f *Factory) RedeemMultipleCampaigns(call *chain.Call, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash) ([]*airdrop.RedemptionRecord, error) {
	batch, err := zipBatch(campaigns, amounts, proofs)
	if err != nil {
		return nil, err
	}
	return f.redeemBatch(call, batch)
}

// RedeemAndDelegateMultipleCampaigns redeems the batch and then applies one
// signed delegation on the factory's token. The signature must come from the
// redeeming account.
func (f *Factory) RedeemAndDelegateMultipleCampaigns(call *chain.Call, campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash, msg delegation.Message, sig delegation.Signature) ([]*airdrop.RedemptionRecord, error) {
	batch, err := zipBatch(campaigns, amounts, proofs)
	if err != nil {
		return nil, err
	}
	records, err := f.redeemBatch(call, batch)
	if err != nil {
		return nil, err
	}

	votes, err := chain.Resolve[VotesToken](call, f.token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	if _, err := votes.DelegateBySig(call.As(f.address), delegation.Request{
		Message:        msg,
		Signature:      sig,
		ExpectedSigner: call.Sender,
	}); err != nil {
		return nil, err
	}
	return records, nil
}

func zipBatch(campaigns []common.Address, amounts []*big.Int, proofs [][]common.Hash) ([]Redemption, error) {
	if len(campaigns) != len(amounts) || len(campaigns) != len(proofs) {
		return nil, fmt.Errorf("%w: %d campaigns, %d amounts, %d proofs",
			ErrRedeemDataArraysLengthMismatch, len(campaigns), len(amounts), len(proofs))
	}
	batch := make([]Redemption, len(campaigns))
	for i := range campaigns {
		batch[i] = Redemption{Campaign: campaigns[i], Amount: amounts[i], Proof: proofs[i]}
	}
	return batch, nil
}

func (f *Factory) redeemBatch(call *chain.Call, batch []Redemption) ([]*airdrop.RedemptionRecord, error) {
	account := call.Sender
	self := call.As(f.address)

	records := make([]*airdrop.RedemptionRecord, 0, len(batch))
	for i, r := range batch {
		if !f.IsCampaign(r.Campaign) {
			return nil, fmt.Errorf("%w: entry %d, %s", ErrContractIsNotCampaign, i, r.Campaign.Hex())
		}
		campaign, err := chain.Resolve[*airdrop.Campaign](call, r.Campaign)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrContractIsNotCampaign, err)
		}
		record, err := campaign.Redeem(self, account, r.Amount, r.Proof)
		if err != nil {
			return nil, fmt.Errorf("redeem entry %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// WithdrawTokens sends amount of token from the factory to the owner.
func (f *Factory) WithdrawTokens(call *chain.Call, token common.Address, amount *big.Int) error {
	if err := f.onlyOwner(call); err != nil {
		return err
	}
	tok, err := chain.Resolve[Token](call, token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	if err := tok.Transfer(call.As(f.address), f.owner, amount); err != nil {
		return err
	}
	call.Emit(f.address, TokensWithdrawn{Owner: f.owner, Amount: new(big.Int).Set(amount)})
	return nil
}
