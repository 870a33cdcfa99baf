package delegation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signature holds the v, r, s components of a secp256k1 signature. V is
// either 0/1 or 27/28.
type Signature struct {
	V byte
	R [32]byte
	S [32]byte
}

// SignatureFromBytes parses a 65 byte r || s || v signature.
func SignatureFromBytes(raw []byte) (Signature, error) {
	if len(raw) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(raw))
	}
	var sig Signature
	copy(sig.R[:], raw[0:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	if sig.V < 27 {
		sig.V += 27
	}
	return sig, nil
}

// ParseSignature decodes a 0x-prefixed 65 byte hex signature.
func ParseSignature(s string) (Signature, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return SignatureFromBytes(raw)
}

// Bytes returns r || s || v.
func (s Signature) Bytes() []byte {
	out := make([]byte, 0, crypto.SignatureLength)
	out = append(out, s.R[:]...)
	out = append(out, s.S[:]...)
	return append(out, s.V)
}

// Hex returns the 0x-prefixed encoding of Bytes.
func (s Signature) Hex() string {
	return hexutil.Encode(s.Bytes())
}
