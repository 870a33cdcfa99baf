package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/cyphera/cyphera-airdrop/internal/events/migrations"
)

const defaultListLimit = 100

// DBTX is the part of pgxpool.Pool the store uses.
type DBTX interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore indexes records in the chain_events table.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPool connects to dsn and verifies the connection.
func OpenPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database config")
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "unable to reach database")
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations through pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "failed to set migration dialect")
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

// Publish implements Publisher. Records already stored are skipped.
func (s *PostgresStore) Publish(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO chain_events (id, chain_id, log_index, contract, event_name, block_time, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT DO NOTHING`,
			r.ID, r.ChainID, int64(r.Index), r.Contract.Hex(), r.Name, int64(r.Timestamp), []byte(r.Payload),
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()
	for i := range records {
		if _, err := results.Exec(); err != nil {
			return errors.Wrapf(err, "failed to insert event %s", records[i].ID)
		}
	}
	return nil
}

// List implements Store, returning records in log order.
func (s *PostgresStore) List(ctx context.Context, q Query) ([]Record, error) {
	sql, args := buildListQuery(q)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			r         Record
			index     int64
			contract  string
			timestamp int64
			payload   []byte
		)
		if err := row.Scan(&r.ID, &r.ChainID, &index, &contract, &r.Name, &timestamp, &payload); err != nil {
			return Record{}, err
		}
		r.Index = uint64(index)
		r.Contract = common.HexToAddress(contract)
		r.Timestamp = uint64(timestamp)
		r.Payload = payload
		return r, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan events")
	}
	return records, nil
}

func buildListQuery(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.Contract != nil {
		args = append(args, q.Contract.Hex())
		where = append(where, fmt.Sprintf("contract = $%d", len(args)))
	}
	if q.Name != "" {
		args = append(args, q.Name)
		where = append(where, fmt.Sprintf("event_name = $%d", len(args)))
	}
	if q.AfterIndex != nil {
		args = append(args, int64(*q.AfterIndex))
		where = append(where, fmt.Sprintf("log_index > $%d", len(args)))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	var b strings.Builder
	b.WriteString("SELECT id, chain_id, log_index, contract, event_name, block_time, payload FROM chain_events")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY log_index ASC LIMIT $%d", len(args))
	return b.String(), args
}
