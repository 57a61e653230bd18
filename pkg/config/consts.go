package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without one.
const EnvPrefix = "SCRAPLOOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "SCRAPLOOP_DB_DSN"
	EnvDBHost = "SCRAPLOOP_DB_HOST"
	EnvDBUser = "SCRAPLOOP_DB_USER"
	EnvDBName = "SCRAPLOOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
