package constants

import "github.com/go-playground/validator/v10"

type ContextKey string

const (
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	TenantIDKey ContextKey = "tenantID"
	UserKey     ContextKey = "user"
	LoggerKey   ContextKey = "logger"
	ParamsKey   ContextKey = "params"
)

// Validate is the shared validator instance DTOs run their struct tags
// through.
var Validate = validator.New()
