package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogComponent represents different system components for filtering
type LogComponent string

const (
	ComponentAPI        LogComponent = "api"
	ComponentChain      LogComponent = "chain"
	ComponentAirdrop    LogComponent = "airdrop"
	ComponentFactory    LogComponent = "factory"
	ComponentEvents     LogComponent = "events"
	ComponentMiddleware LogComponent = "middleware"
	ComponentServer     LogComponent = "server"
	ComponentIndexer    LogComponent = "indexer"
	ComponentTreeStore  LogComponent = "treestore"
)

// LogContext holds structured context information for logs
type LogContext struct {
	Caller        string
	CorrelationID string
	Component     LogComponent
	Operation     string
	Duration      time.Duration
	Fields        map[string]interface{}
}

// StructuredLogger provides enhanced logging with structured context
type StructuredLogger struct {
	logger  *zap.Logger
	context LogContext
}

// NewStructuredLogger creates a new structured logger for a specific component.
// It writes to the global Log as it is at the time of each call.
func NewStructuredLogger(component LogComponent) *StructuredLogger {
	return &StructuredLogger{
		context: LogContext{Component: component, Fields: make(map[string]interface{})},
	}
}

// WithLogger returns a copy writing to l instead of the global Log.
func (sl *StructuredLogger) WithLogger(l *zap.Logger) *StructuredLogger {
	n := sl.clone()
	n.logger = l
	return n
}

func (sl *StructuredLogger) base() *zap.Logger {
	if sl.logger != nil {
		return sl.logger
	}
	return Log
}

// Zap returns a plain zap logger carrying the component field.
func (sl *StructuredLogger) Zap() *zap.Logger {
	return sl.base().With(zap.String("component", string(sl.context.Component)))
}

// WithField adds a field to the log context
func (sl *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	n := sl.clone()
	n.context.Fields[key] = value
	return n
}

// WithFields adds multiple fields to the log context
func (sl *StructuredLogger) WithFields(fields map[string]interface{}) *StructuredLogger {
	n := sl.clone()
	for k, v := range fields {
		n.context.Fields[k] = v
	}
	return n
}

// WithCaller adds the calling address to the log context
func (sl *StructuredLogger) WithCaller(caller string) *StructuredLogger {
	n := sl.clone()
	n.context.Caller = caller
	return n
}

// WithCorrelationID adds correlation ID to the log context
func (sl *StructuredLogger) WithCorrelationID(correlationID string) *StructuredLogger {
	n := sl.clone()
	n.context.CorrelationID = correlationID
	return n
}

// WithOperation adds operation name to the log context
func (sl *StructuredLogger) WithOperation(operation string) *StructuredLogger {
	n := sl.clone()
	n.context.Operation = operation
	return n
}

// WithDuration adds duration to the log context
func (sl *StructuredLogger) WithDuration(duration time.Duration) *StructuredLogger {
	n := sl.clone()
	n.context.Duration = duration
	return n
}

func (sl *StructuredLogger) clone() *StructuredLogger {
	fields := make(map[string]interface{}, len(sl.context.Fields))
	for k, v := range sl.context.Fields {
		fields[k] = v
	}
	ctx := sl.context
	ctx.Fields = fields
	return &StructuredLogger{logger: sl.logger, context: ctx}
}

func (sl *StructuredLogger) buildFields() []zapcore.Field {
	fields := make([]zapcore.Field, 0, len(sl.context.Fields)+5)
	if sl.context.Component != "" {
		fields = append(fields, zap.String("component", string(sl.context.Component)))
	}
	if sl.context.Caller != "" {
		fields = append(fields, zap.String("caller_address", sl.context.Caller))
	}
	if sl.context.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", sl.context.CorrelationID))
	}
	if sl.context.Operation != "" {
		fields = append(fields, zap.String("operation", sl.context.Operation))
	}
	if sl.context.Duration > 0 {
		fields = append(fields, zap.Duration("duration", sl.context.Duration))
	}
	for key, value := range sl.context.Fields {
		fields = append(fields, zap.Any(key, value))
	}
	return fields
}

// Debug logs a debug message with structured context
func (sl *StructuredLogger) Debug(msg string) {
	sl.base().Debug(msg, sl.buildFields()...)
}

// Info logs an info message with structured context
func (sl *StructuredLogger) Info(msg string) {
	sl.base().Info(msg, sl.buildFields()...)
}

// Warn logs a warning message with structured context
func (sl *StructuredLogger) Warn(msg string) {
	sl.base().Warn(msg, sl.buildFields()...)
}

// Error logs an error message with structured context
func (sl *StructuredLogger) Error(msg string, err error) {
	fields := sl.buildFields()
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	sl.base().Error(msg, fields...)
}

// LogOperation logs the start and end of an operation with timing
func (sl *StructuredLogger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	opLogger := sl.WithOperation(operation)
	opLogger.Debug("Operation started")

	err := fn()
	finalLogger := opLogger.WithDuration(time.Since(start))
	if err != nil {
		finalLogger.WithField("error", err.Error()).Warn("Operation failed")
	} else {
		finalLogger.Info("Operation completed")
	}
	return err
}

// LogHTTPRequest logs HTTP request details
func (sl *StructuredLogger) LogHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	sl.WithFields(map[string]interface{}{
		"http_method": method,
		"http_path":   path,
		"http_status": statusCode,
	}).WithDuration(duration).Info("HTTP request processed")
}
