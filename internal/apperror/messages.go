package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeDiscoveryHTTPFailed:  "Venue discovery HTTP call failed",
	CodeDiscoveryParseFailed: "Venue discovery response could not be parsed",
	CodeDiscoveryCircuitOpen: "Venue discovery circuit breaker is open",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",
	CodeWebSocketFrameDropped:    "Inbound frame dropped",

	CodeInvalidOrderbook:  "Invalid orderbook data",
	CodeUnroutableSymbol:  "Venue symbol could not be mapped to a canonical pair",
	CodeInvalidQuoteField: "Quote field could not be coerced to a finite number",

	CodeProfitOverCap:       "Computed profit exceeded the sanity cap",
	CodeHysteresisKeyUnset:  "Hysteresis key observed before initialization",
	CodeEngineComputeFailed: "Arbitrage engine compute pass failed",

	CodeSupervisorReconfigureFailed: "Supervisor reconfiguration failed",
	CodeUnknownVenue:                "Unknown venue name in configuration",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
