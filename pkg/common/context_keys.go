package common

type contextKey string

const (
	RequestIdKey       contextKey = "request_id"
	ApiKeyContextKey   contextKey = "api_key"
	ApiKeyIdContextKey contextKey = "api_key_id"
	LatencyContextKey  contextKey = "__execution_time"
)
