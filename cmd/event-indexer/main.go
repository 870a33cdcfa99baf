// Command event-indexer is an SQS-triggered Lambda that writes airdrop events
// published by the API into Postgres.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/config"
	"github.com/cyphera/cyphera-airdrop/internal/events"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

func main() {
	logger.InitLogger(os.Getenv("STAGE"))
	defer logger.Sync()

	indexer, err := newIndexer(context.Background())
	if err != nil {
		logger.Fatal("Failed to create event indexer", zap.Error(err))
	}
	lambda.Start(indexer.HandleSQSEvent)
}

func newIndexer(ctx context.Context) (*events.Indexer, error) {
	cfg, err := config.LoadIndexer()
	if err != nil {
		return nil, err
	}

	pool, err := events.OpenPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.AutoMigrate {
		if err := events.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	logger.Info("Event indexer ready", zap.String("stage", cfg.Stage))
	return events.NewIndexer(events.NewPostgresStore(pool)), nil
}
