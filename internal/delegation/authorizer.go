// Package delegation verifies EIP-712 signed delegation messages.
//
// A holder signs Delegation(address delegatee,uint256 nonce,uint256 expiry)
// under the token's domain. The token only records the delegation after
// Authorize has accepted the signature.
package delegation

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

var (
	ErrSignatureExpired = chain.NewError(chain.KindTemporal, "SignatureExpired")
	ErrInvalidSignature = chain.NewError(chain.KindCollaborator, "InvalidSignature")
	ErrInvalidNonce     = chain.NewError(chain.KindStateConflict, "InvalidNonce")
	ErrSignerMismatch   = chain.NewError(chain.KindAuthorization, "SignerIsNotRedeemer")
)

const (
	DomainVersion = "1"
	PrimaryType   = "Delegation"
)

// Domain binds signatures to one token on one chain.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Message is the signed delegation.
type Message struct {
	Delegatee common.Address
	Nonce     *big.Int
	Expiry    *big.Int
}

// TypedData returns the EIP-712 document for msg under d.
func (d Domain) TypedData(msg Message) apitypes.TypedData {
	version := d.Version
	if version == "" {
		version = DomainVersion
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			PrimaryType: {
				{Name: "delegatee", Type: "address"},
				{Name: "nonce", Type: "uint256"},
				{Name: "expiry", Type: "uint256"},
			},
		},
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           version,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(d.ChainID)),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"delegatee": msg.Delegatee.Hex(),
			"nonce":     bigOrZero(msg.Nonce).String(),
			"expiry":    bigOrZero(msg.Expiry).String(),
		},
	}
}

// Hash returns the EIP-712 digest that is signed.
func (d Domain) Hash(msg Message) (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(d.TypedData(msg))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash delegation: %w", err)
	}
	return common.BytesToHash(digest), nil
}

// Authorizer validates delegation signatures for one domain.
type Authorizer struct {
	domain Domain
}

func NewAuthorizer(domain Domain) *Authorizer {
	return &Authorizer{domain: domain}
}

// Domain returns the domain signatures are checked against.
func (a *Authorizer) Domain() Domain {
	return a.domain
}

// Request is a delegation submitted for authorization.
type Request struct {
	Message   Message
	Signature Signature
	// ExpectedSigner, when set, must equal the recovered signer.
	ExpectedSigner common.Address
}

// Authorize checks expiry, recovers the signer and checks its nonce. It
// returns the signer and never changes state.
func (a *Authorizer) Authorize(now uint64, req Request, nonceOf func(common.Address) *big.Int) (common.Address, error) {
	expiry := bigOrZero(req.Message.Expiry)
	if new(big.Int).SetUint64(now).Cmp(expiry) > 0 {
		return common.Address{}, fmt.Errorf("%w: expiry %s is before %d", ErrSignatureExpired, expiry, now)
	}

	signer, err := a.Recover(req.Message, req.Signature)
	if err != nil {
		return common.Address{}, err
	}

	if current := nonceOf(signer); bigOrZero(req.Message.Nonce).Cmp(current) != 0 {
		return common.Address{}, fmt.Errorf("%w: got %s, expected %s", ErrInvalidNonce, bigOrZero(req.Message.Nonce), current)
	}

	if req.ExpectedSigner != (common.Address{}) && signer != req.ExpectedSigner {
		return common.Address{}, fmt.Errorf("%w: signer %s, expected %s", ErrSignerMismatch, signer.Hex(), req.ExpectedSigner.Hex())
	}

	return signer, nil
}

// Recover returns the address that produced sig over msg.
func (a *Authorizer) Recover(msg Message, sig Signature) (common.Address, error) {
	digest, err := a.domain.Hash(msg)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	v := sig.V
	if v >= 27 {
		v -= 27
	}
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: malformed v, r or s", ErrInvalidSignature)
	}

	raw := make([]byte, crypto.SignatureLength)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = v

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces the signature a wallet would return for msg under domain.
func Sign(key *ecdsa.PrivateKey, domain Domain, msg Message) (Signature, error) {
	digest, err := domain.Hash(msg)
	if err != nil {
		return Signature{}, err
	}
	raw, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign delegation: %w", err)
	}
	return SignatureFromBytes(raw)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
