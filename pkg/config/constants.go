package config

const (
	EnvPrefix = "gerai"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "GERAI_APP_ENV"
	EnvAppPort  = "GERAI_APP_PORT"
	EnvLogLevel = "GERAI_LOG_LEVEL"

	EnvDBDSN  = "GERAI_DB_DSN"
	EnvDBHost = "GERAI_DB_HOST"
	EnvDBUser = "GERAI_DB_USER"
	EnvDBName = "GERAI_DB_NAME"

	EnvRedisURL = "GERAI_REDIS_URL"

	EnvGCPProjectID = "GERAI_GCP_PROJECT_ID"

	EnvPubSubOrdersTopic        = "GERAI_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSubscription = "GERAI_PUBSUB_ORDERS_SUBSCRIPTION"
)

// legacyDBEnvVars are the discrete connection variables accepted when
// GERAI_DB_DSN is not set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
