package events

import (
	"context"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// Indexer consumes SQS messages written by SQSPublisher and hands the
// records to its publishers, usually a PostgresStore.
type Indexer struct {
	publishers []Publisher
	log        *logger.StructuredLogger
}

func NewIndexer(publishers ...Publisher) *Indexer {
	return &Indexer{
		publishers: publishers,
		log:        logger.NewStructuredLogger(logger.ComponentIndexer),
	}
}

// HandleSQSEvent indexes one Lambda batch. Messages that cannot be decoded or
// stored are returned as batch item failures so SQS redelivers them and
// eventually moves them to the dead-letter queue.
func (ix *Indexer) HandleSQSEvent(ctx context.Context, event lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
	var resp lambdaevents.SQSEventResponse
	records := make([]Record, 0, len(event.Records))
	messageIDs := make([]string, 0, len(event.Records))

	for _, msg := range event.Records {
		r, err := DecodeRecord(msg.Body)
		if err != nil {
			ix.log.WithFields(map[string]interface{}{
				"message_id": msg.MessageId,
				"error":      err.Error(),
			}).Warn("Undecodable event message")
			logger.Debug("Message dump", zap.String("message", spew.Sdump(msg)))
			resp.BatchItemFailures = append(resp.BatchItemFailures, lambdaevents.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
			continue
		}
		records = append(records, r)
		messageIDs = append(messageIDs, msg.MessageId)
	}
	if len(records) == 0 {
		return resp, nil
	}

	for _, p := range ix.publishers {
		if err := p.Publish(ctx, records); err != nil {
			ix.log.Error("Failed to index event batch", err)
			for _, id := range messageIDs {
				resp.BatchItemFailures = append(resp.BatchItemFailures, lambdaevents.SQSBatchItemFailure{ItemIdentifier: id})
			}
			return resp, nil
		}
	}

	ix.log.WithField("records", len(records)).Info("Indexed event batch")
	return resp, nil
}
