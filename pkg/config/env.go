package config

const (
	EnvPrefix = "STUDIOSITE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	AdminClaimPolicyFallback = "fallback"
	AdminClaimPolicyEither   = "either"
)

const (
	EnvAppEnv           = "STUDIOSITE_APP_ENV"
	EnvPort             = "STUDIOSITE_APP_PORT"
	EnvMongoURI         = "STUDIOSITE_MONGO_URI"
	EnvMongoDatabase    = "STUDIOSITE_MONGO_DATABASE"
	EnvRedisURL         = "STUDIOSITE_REDIS_URL"
	EnvSessionSecret    = "STUDIOSITE_SESSION_SECRET"
	EnvFirebaseProject  = "STUDIOSITE_FIREBASE_PROJECT_ID"
	EnvFirebaseAPIKey   = "STUDIOSITE_FIREBASE_API_KEY"
	EnvAdminSecret      = "STUDIOSITE_ADMIN_SECRET"
	EnvAdminClaimPolicy = "STUDIOSITE_AUTHZ_ADMIN_CLAIM_POLICY"
	EnvPubSubMailTopic  = "STUDIOSITE_PUBSUB_MAIL_TOPIC"
	EnvResetTokenTTL    = "STUDIOSITE_PASSWORD_RESET_TOKEN_TTL"
)
