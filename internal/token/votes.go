package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/delegation"
)

// Delegates returns who account has delegated its votes to.
func (t *Token) Delegates(account common.Address) common.Address {
	d, _ := t.delegates.Get(account)
	return d
}

// Nonces returns the next delegation nonce of owner.
func (t *Token) Nonces(owner common.Address) *big.Int {
	n, _ := t.nonces.Get(owner)
	return new(big.Int).SetUint64(n)
}

// Delegate assigns call.Sender's votes to delegatee.
func (t *Token) Delegate(call *chain.Call, delegatee common.Address) error {
	t.delegate(call, call.Sender, delegatee)
	return nil
}

// DelegateBySig records a delegation authorized by an EIP-712 signature. The
// signer's nonce is consumed only when the signature is accepted.
func (t *Token) DelegateBySig(call *chain.Call, req delegation.Request) (common.Address, error) {
	signer, err := t.authorizer.Authorize(call.Now(), req, t.Nonces)
	if err != nil {
		return common.Address{}, err
	}

	n, _ := t.nonces.Get(signer)
	t.nonces.Set(call, signer, n+1)
	t.delegate(call, signer, req.Message.Delegatee)

	return signer, nil
}

func (t *Token) delegate(call *chain.Call, delegator, delegatee common.Address) {
	current := t.Delegates(delegator)
	t.delegates.Set(call, delegator, delegatee)
	call.Emit(t.address, DelegateChanged{Delegator: delegator, FromDelegate: current, ToDelegate: delegatee})
}
