package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// maxSQSBatch is the SendMessageBatch entry limit.
const maxSQSBatch = 10

// SQSAPI is the subset of the SQS client the publisher needs.
type SQSAPI interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// RetryConfig controls the exponential backoff around each SQS batch.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig is used when NewSQSPublisher gets a zero RetryConfig.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      5,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxElapsedTime:  30 * time.Second,
}

// SQSPublisher sends records to an SQS queue, one message per record.
type SQSPublisher struct {
	client    SQSAPI
	queueURL  string
	batchSize int
	retry     RetryConfig
}

func NewSQSPublisher(client SQSAPI, queueURL string, batchSize int, retry RetryConfig) *SQSPublisher {
	if batchSize <= 0 || batchSize > maxSQSBatch {
		batchSize = maxSQSBatch
	}
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig
	}
	return &SQSPublisher{client: client, queueURL: queueURL, batchSize: batchSize, retry: retry}
}

// Publish implements Publisher. Entries SQS reports as failed are resent
// until the retry budget runs out.
func (p *SQSPublisher) Publish(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.sendBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *SQSPublisher) sendBatch(ctx context.Context, records []Record) error {
	entries, err := buildEntries(records)
	if err != nil {
		return err
	}

	operation := func() error {
		out, err := p.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(p.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return errors.Wrap(err, "failed to send message batch to SQS")
		}
		if len(out.Failed) == 0 {
			return nil
		}

		failed := make(map[string]bool, len(out.Failed))
		for _, f := range out.Failed {
			failed[aws.ToString(f.Id)] = true
			if f.SenderFault {
				return backoff.Permanent(errors.Errorf("SQS rejected entry %s: %s", aws.ToString(f.Id), aws.ToString(f.Message)))
			}
		}
		remaining := entries[:0:0]
		for _, e := range entries {
			if failed[aws.ToString(e.Id)] {
				remaining = append(remaining, e)
			}
		}
		entries = remaining
		logger.Log.Warn("SQS batch partially failed, retrying",
			zap.Int("failed", len(entries)),
			zap.String("queue_url", p.queueURL),
		)
		return errors.Errorf("%d SQS entries failed", len(entries))
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = p.retry.InitialInterval
	expBackoff.MaxInterval = p.retry.MaxInterval
	expBackoff.MaxElapsedTime = p.retry.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, p.retry.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return errors.Wrapf(err, "failed to publish %d events", len(records))
	}
	return nil
}

func buildEntries(records []Record) ([]types.SendMessageBatchRequestEntry, error) {
	entries := make([]types.SendMessageBatchRequestEntry, 0, len(records))
	for i, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal event %s", r.ID)
		}
		entries = append(entries, types.SendMessageBatchRequestEntry{
			Id:          aws.String(strconv.Itoa(i)),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"EventName": {
					DataType:    aws.String("String"),
					StringValue: aws.String(r.Name),
				},
				"Contract": {
					DataType:    aws.String("String"),
					StringValue: aws.String(r.Contract.Hex()),
				},
				"ChainID": {
					DataType:    aws.String("Number"),
					StringValue: aws.String(strconv.FormatInt(r.ChainID, 10)),
				},
			},
		})
	}
	return entries, nil
}

// DecodeRecord parses the body of a message written by SQSPublisher.
func DecodeRecord(body string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Record{}, errors.Wrap(err, "failed to decode event message")
	}
	if r.Name == "" {
		return Record{}, errors.New("event message has no name")
	}
	return r, nil
}
