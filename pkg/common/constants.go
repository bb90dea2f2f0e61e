package common

import "time"

const (
	ApiKeyCacheTTL = 5 * time.Minute
	ResultCacheTTL = 10 * time.Minute

	RequestIDHeader = "X-Request-Id"
	ApiKeyHeader    = "X-API-Key"

	ToolGuardModelName   = "tool_guard"
	PromptGuardModelName = "prompt_guard"
)
