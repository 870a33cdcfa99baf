package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/constants"
)

// LogSink writes every committed event to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish implements chain.Sink.
func (s *LogSink) Publish(_ context.Context, logs []chain.Log) error {
	for _, l := range logs {
		s.logger.Info("Event emitted",
			zap.String(constants.EventNameAttribute, l.Event.EventName()),
			zap.String(constants.ContractAttribute, l.Address.Hex()),
			zap.Uint64("log_index", l.Index),
			zap.Uint64("timestamp", l.Timestamp),
			zap.Any("event", l.Event),
		)
	}
	return nil
}
