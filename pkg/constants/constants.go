package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	TxKey        ContextKey = "tx"
	PoolKey      ContextKey = "pool"
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	RequestStart ContextKey = "requestStart"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())
