package events

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultStreamMaxLen caps the stream when NewRedisStreamPublisher gets 0.
const DefaultStreamMaxLen = 100_000

// StreamAPI is the part of a redis client the stream publisher uses.
type StreamAPI interface {
	TxPipeline() redis.Pipeliner
}

// RedisStreamPublisher appends records to a Redis stream, one entry per
// record, so consumers can follow new events with XREAD.
type RedisStreamPublisher struct {
	client StreamAPI
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client StreamAPI, stream string, maxLen int64) *RedisStreamPublisher {
	if maxLen <= 0 {
		maxLen = DefaultStreamMaxLen
	}
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "unable to reach redis")
	}
	return client, nil
}

// Publish implements Publisher. A batch is appended in one MULTI/EXEC.
func (p *RedisStreamPublisher) Publish(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pipe := p.client.TxPipeline()
	for _, r := range records {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: streamValues(r),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to append %d events to stream %s", len(records), p.stream)
	}
	return nil
}

func streamValues(r Record) map[string]interface{} {
	return map[string]interface{}{
		"id":        r.ID.String(),
		"chain_id":  strconv.FormatInt(r.ChainID, 10),
		"index":     strconv.FormatUint(r.Index, 10),
		"contract":  r.Contract.Hex(),
		"name":      r.Name,
		"timestamp": strconv.FormatUint(r.Timestamp, 10),
		"payload":   string(r.Payload),
	}
}
