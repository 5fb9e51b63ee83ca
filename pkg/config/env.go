package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STRIDEWEAR_DB_DSN"
	EnvDBHost = "STRIDEWEAR_DB_HOST"
	EnvDBUser = "STRIDEWEAR_DB_USER"
	EnvDBName = "STRIDEWEAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
