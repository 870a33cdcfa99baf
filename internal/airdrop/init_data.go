package airdrop

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

var ErrInvalidInitData = chain.NewError(chain.KindInputValidation, "InvalidInitializationData")

const initializeABI = `[{
	"type": "function",
	"name": "initialize",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "_merkleTreeIPFSRef", "type": "string"},
		{"name": "_root", "type": "bytes32"},
		{"name": "_startTime", "type": "uint256"},
		{"name": "_deadline", "type": "uint256"},
		{"name": "_lockEndTime", "type": "uint256"},
		{"name": "_periods", "type": "uint256"},
		{"name": "_token", "type": "address"},
		{"name": "_tokenLockFactory", "type": "address"}
	],
	"outputs": []
}]`

var campaignABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(initializeABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// InitParams configure a campaign clone.
type InitParams struct {
	MetadataPointer  string         `json:"metadataPointer"`
	Root             common.Hash    `json:"root"`
	StartTime        uint64         `json:"startTime"`
	Deadline         uint64         `json:"deadline"`
	LockEndTime      uint64         `json:"lockEndTime"`
	Periods          uint64         `json:"periods"`
	Token            common.Address `json:"token"`
	TokenLockFactory common.Address `json:"tokenLockFactory"`
}

// EncodeInitData returns the initialize call data for p.
func EncodeInitData(p InitParams) ([]byte, error) {
	data, err := campaignABI.Pack("initialize",
		p.MetadataPointer,
		[32]byte(p.Root),
		new(big.Int).SetUint64(p.StartTime),
		new(big.Int).SetUint64(p.Deadline),
		new(big.Int).SetUint64(p.LockEndTime),
		new(big.Int).SetUint64(p.Periods),
		p.Token,
		p.TokenLockFactory,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInitData, err)
	}
	return data, nil
}

// DecodeInitData parses initialize call data.
func DecodeInitData(data []byte) (InitParams, error) {
	method := campaignABI.Methods["initialize"]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return InitParams{}, fmt.Errorf("%w: unknown selector", ErrInvalidInitData)
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return InitParams{}, fmt.Errorf("%w: %w", ErrInvalidInitData, err)
	}
	if len(values) != len(method.Inputs) {
		return InitParams{}, fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidInitData, len(method.Inputs), len(values))
	}

	var p InitParams
	var ok bool
	if p.MetadataPointer, ok = values[0].(string); !ok {
		return InitParams{}, fmt.Errorf("%w: metadata pointer", ErrInvalidInitData)
	}
	root, ok := values[1].([32]byte)
	if !ok {
		return InitParams{}, fmt.Errorf("%w: root", ErrInvalidInitData)
	}
	p.Root = common.Hash(root)

	times := []*uint64{&p.StartTime, &p.Deadline, &p.LockEndTime, &p.Periods}
	for i, dst := range times {
		v, ok := values[2+i].(*big.Int)
		if !ok || !v.IsUint64() {
			return InitParams{}, fmt.Errorf("%w: %s out of range", ErrInvalidInitData, method.Inputs[2+i].Name)
		}
		*dst = v.Uint64()
	}

	if p.Token, ok = values[6].(common.Address); !ok {
		return InitParams{}, fmt.Errorf("%w: token", ErrInvalidInitData)
	}
	if p.TokenLockFactory, ok = values[7].(common.Address); !ok {
		return InitParams{}, fmt.Errorf("%w: token lock factory", ErrInvalidInitData)
	}
	return p, nil
}
