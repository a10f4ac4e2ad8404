package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "DEALERSTOCK"

const (
	AppEnvDev     = "development"
	AppEnvStaging = "staging"
	AppEnvProd    = "production"
	AppEnvTest    = "test"
)

var validAppEnvs = []string{AppEnvDev, AppEnvStaging, AppEnvProd, AppEnvTest}

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv     = "DEALERSTOCK_APP_ENV"
	EnvServerPort = "DEALERSTOCK_SERVER_PORT"
	EnvDBDSN      = "DEALERSTOCK_DB_DSN"
	EnvRedisURL   = "DEALERSTOCK_REDIS_URL"
)
