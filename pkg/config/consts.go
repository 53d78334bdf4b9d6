package config

// EnvPrefix is passed to envconfig; individual tags carry the full names.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STORELOOM_DB_DSN"
	EnvDBHost = "STORELOOM_DB_HOST"
	EnvDBUser = "STORELOOM_DB_USER"
	EnvDBName = "STORELOOM_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
