package config

// Environment variable names shared between Load and the legacy DSN
// assembly error messages.
const (
	EnvPrefix = "TRIPMATE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDBDSN  = "TRIPMATE_DB_DSN"
	EnvDBHost = "TRIPMATE_DB_HOST"
	EnvDBUser = "TRIPMATE_DB_USER"
	EnvDBName = "TRIPMATE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
