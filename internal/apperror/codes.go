package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Venue discovery errors
const (
	CodeDiscoveryHTTPFailed  Code = "DISCOVERY_HTTP_FAILED"
	CodeDiscoveryParseFailed Code = "DISCOVERY_PARSE_FAILED"
	CodeDiscoveryCircuitOpen Code = "DISCOVERY_CIRCUIT_OPEN"
)

// Websocket connector errors
const (
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"
	CodeWebSocketFrameDropped    Code = "WEBSOCKET_FRAME_DROPPED"
)

// Order book / quote errors
const (
	CodeInvalidOrderbook  Code = "INVALID_ORDERBOOK"
	CodeUnroutableSymbol  Code = "UNROUTABLE_SYMBOL"
	CodeInvalidQuoteField Code = "INVALID_QUOTE_FIELD"
)

// Arbitrage engine errors
const (
	CodeProfitOverCap       Code = "PROFIT_OVER_CAP"
	CodeHysteresisKeyUnset  Code = "HYSTERESIS_KEY_UNSET"
	CodeEngineComputeFailed Code = "ENGINE_COMPUTE_FAILED"
)

// Supervisor errors
const (
	CodeSupervisorReconfigureFailed Code = "SUPERVISOR_RECONFIGURE_FAILED"
	CodeUnknownVenue                Code = "UNKNOWN_VENUE"
)

// Circuit breaker errors
const (
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
