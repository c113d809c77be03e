package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified names.
const EnvPrefix = "PRICEWISE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PRICEWISE_DB_DSN"
	EnvDBHost = "PRICEWISE_DB_HOST"
	EnvDBUser = "PRICEWISE_DB_USER"
	EnvDBName = "PRICEWISE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
