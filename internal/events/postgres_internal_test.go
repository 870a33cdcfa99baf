package events

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	contract := common.HexToAddress("0x7070")
	after := uint64(41)

	tests := []struct {
		name     string
		query    Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no filters",
			query:    Query{},
			wantSQL:  "SELECT id, chain_id, log_index, contract, event_name, block_time, payload FROM chain_events ORDER BY log_index ASC LIMIT $1",
			wantArgs: []any{defaultListLimit},
		},
		{
			name:  "all filters",
			query: Query{Contract: &contract, Name: "TokensRedeemed", AfterIndex: &after, Limit: 5},
			wantSQL: "SELECT id, chain_id, log_index, contract, event_name, block_time, payload FROM chain_events" +
				" WHERE contract = $1 AND event_name = $2 AND log_index > $3 ORDER BY log_index ASC LIMIT $4",
			wantArgs: []any{contract.Hex(), "TokensRedeemed", int64(41), 5},
		},
		{
			name:     "name only",
			query:    Query{Name: "Transfer"},
			wantSQL:  "SELECT id, chain_id, log_index, contract, event_name, block_time, payload FROM chain_events WHERE event_name = $1 ORDER BY log_index ASC LIMIT $2",
			wantArgs: []any{"Transfer", defaultListLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildListQuery(tt.query)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
