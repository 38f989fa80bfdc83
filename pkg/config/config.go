package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrMissingSessionSecret is returned when production starts without a session secret.
var ErrMissingSessionSecret = errors.New("session secret is required in production")

// devSessionSecret signs session cookies outside production when no secret is configured.
const devSessionSecret = "studiosite-dev-session-secret-do-not-use-in-prod"

type Config struct {
	App           AppConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Session       SessionConfig
	Firebase      FirebaseConfig
	Admin         AdminConfig
	Authz         AuthzConfig
	AuthRateLimit AuthRateLimitConfig
	PasswordReset PasswordResetConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Authz.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STUDIOSITE_APP_ENV" required:"true"`
	Port         string `envconfig:"STUDIOSITE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STUDIOSITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STUDIOSITE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STUDIOSITE_LOG_FORMAT" default:"json"`
	FrontendURL  string `envconfig:"STUDIOSITE_FRONTEND_URL" default:"http://localhost:3000"`
	// CORSOrigins is comma separated.
	CORSOrigins []string `envconfig:"STUDIOSITE_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI            string        `envconfig:"STUDIOSITE_MONGO_URI" required:"true"`
	Database       string        `envconfig:"STUDIOSITE_MONGO_DATABASE" default:"studiosite"`
	ConnectTimeout time.Duration `envconfig:"STUDIOSITE_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"STUDIOSITE_MONGO_MAX_POOL_SIZE" default:"50"`
	// AutoIndex creates missing indexes at API startup. Disable it when cmd/migrate runs as a deploy step.
	AutoIndex bool `envconfig:"STUDIOSITE_MONGO_AUTO_INDEX" default:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STUDIOSITE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"STUDIOSITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STUDIOSITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STUDIOSITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STUDIOSITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STUDIOSITE_REDIS_WRITE_TIMEOUT" default:"5s"`
	// IdempotencyTTL is how long responses to Idempotency-Key requests are replayed.
	IdempotencyTTL time.Duration `envconfig:"STUDIOSITE_IDEMPOTENCY_TTL" default:"24h"`
}

type SessionConfig struct {
	Secret string `envconfig:"STUDIOSITE_SESSION_SECRET"`
	Issuer string `envconfig:"STUDIOSITE_SESSION_ISSUER" default:"studiosite"`
}

// ResolveSecret returns the signing secret for session cookies. The second
// return value reports whether the development fallback was used.
func (s SessionConfig) ResolveSecret(app AppConfig) (string, bool, error) {
	if secret := strings.TrimSpace(s.Secret); secret != "" {
		return secret, false, nil
	}
	if app.IsProd() {
		return "", false, ErrMissingSessionSecret
	}
	return devSessionSecret, true, nil
}

type FirebaseConfig struct {
	ProjectID       string        `envconfig:"STUDIOSITE_FIREBASE_PROJECT_ID" required:"true"`
	CredentialsFile string        `envconfig:"STUDIOSITE_FIREBASE_CREDENTIALS_FILE"`
	CredentialsJSON string        `envconfig:"STUDIOSITE_FIREBASE_CREDENTIALS_JSON"`
	WebAPIKey       string        `envconfig:"STUDIOSITE_FIREBASE_API_KEY"`
	VerifyTimeout   time.Duration `envconfig:"STUDIOSITE_FIREBASE_VERIFY_TIMEOUT" default:"5s"`
}

type AdminConfig struct {
	Secret string `envconfig:"STUDIOSITE_ADMIN_SECRET"`
}

type AuthzConfig struct {
	AdminClaimPolicy string `envconfig:"STUDIOSITE_AUTHZ_ADMIN_CLAIM_POLICY" default:"fallback"`
}

func (a AuthzConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.AdminClaimPolicy)) {
	case AdminClaimPolicyFallback, AdminClaimPolicyEither:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvAdminClaimPolicy, AdminClaimPolicyFallback, AdminClaimPolicyEither)
	}
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ResetWindow        time.Duration `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_RESET_WINDOW" default:"15m"`
	ResetEmailLimit    int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_RESET_EMAIL_LIMIT" default:"3"`
	ResetIPLimit       int           `envconfig:"STUDIOSITE_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"10"`
}

type PasswordResetConfig struct {
	TokenTTL time.Duration `envconfig:"STUDIOSITE_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STUDIOSITE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"STUDIOSITE_GCP_CREDENTIALS_JSON"`
}

// PubSubConfig controls mail dispatch. An empty MailTopic routes mail requests to the log.
type PubSubConfig struct {
	MailTopic string `envconfig:"STUDIOSITE_PUBSUB_MAIL_TOPIC"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.MailTopic) != ""
}
