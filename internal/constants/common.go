package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment  = "prod"
	DevEnvironment   = "dev"
	LocalEnvironment = "local"
	TestEnvironment  = "test"

	// Service name attached to production logs
	ServiceName = "cyphera-airdrop"
)

// HTTP
const (
	CorrelationIDHeader = "X-Correlation-ID"
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	HealthPath          = "/health"
	APIVersionPrefix    = "/api/v1"
)

// Context keys set by middleware
const (
	CallerAddressKey = "callerAddress"
	CorrelationIDKey = "correlationID"
)

// Event delivery
const (
	EventNameAttribute    = "event_name"
	ContractAttribute     = "contract"
	DefaultEventBatchSize = 10
)
