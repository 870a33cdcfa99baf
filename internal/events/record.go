// Package events moves committed ledger events out of the process. A
// Dispatcher fans them out to publishers (Postgres, SQS, a Redis stream,
// operator email) and an Indexer drains the SQS queue back into Postgres.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
)

// Record is the serialized form of a committed chain.Log.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	ChainID   int64           `json:"chainId"`
	Index     uint64          `json:"index"`
	Contract  common.Address  `json:"contract"`
	Name      string          `json:"name"`
	Timestamp uint64          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewRecord encodes one log.
func NewRecord(chainID int64, l chain.Log) (Record, error) {
	if l.Event == nil {
		return Record{}, fmt.Errorf("log %d has no event", l.Index)
	}
	payload, err := json.Marshal(l.Event)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal %s: %w", l.Event.EventName(), err)
	}
	return Record{
		ID:        l.ID,
		ChainID:   chainID,
		Index:     l.Index,
		Contract:  l.Address,
		Name:      l.Event.EventName(),
		Timestamp: l.Timestamp,
		Payload:   payload,
	}, nil
}

// NewRecords encodes logs in order.
func NewRecords(chainID int64, logs []chain.Log) ([]Record, error) {
	out := make([]Record, 0, len(logs))
	for _, l := range logs {
		r, err := NewRecord(chainID, l)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Publisher ships encoded records somewhere outside the ledger.
type Publisher interface {
	Publish(ctx context.Context, records []Record) error
}

// Query filters stored records. Zero values match everything.
type Query struct {
	Contract   *common.Address
	Name       string
	AfterIndex *uint64
	Limit      int
}

// Matches reports whether r passes every filter of q except Limit.
func (q Query) Matches(r Record) bool {
	if q.Contract != nil && r.Contract != *q.Contract {
		return false
	}
	if q.Name != "" && r.Name != q.Name {
		return false
	}
	if q.AfterIndex != nil && r.Index <= *q.AfterIndex {
		return false
	}
	return true
}

// Store is a Publisher that can be queried back.
type Store interface {
	Publisher
	List(ctx context.Context, q Query) ([]Record, error)
}
