package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minProductionIterations = 100000
)

type Config struct {
	Port          string `env:"PORT,            default=8080"`
	Env           string `env:"ENV,             default=development"`
	LogLevel      string `env:"LOG_LEVEL,       default=info"`
	BaseURL       string `env:"BASE_URL,        default=https://ksalp.ch"`
	TrustProxy    bool   `env:"TRUST_PROXY,     default=false"`
	StoreDriver   string `env:"STORE_DRIVER,    default=postgres"`
	AccessLogPath string `env:"ACCESS_LOG_PATH"`

	Session      SessionConfig
	Hash         HashConfig
	Registration RegistrationConfig
	Gate         GateConfig
	Postgres     PostgresConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	Mail         MailConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,            default=2400h"`
	CookieMaxAge time.Duration `env:"SESSION_COOKIE_MAX_AGE, default=2208h"`
	DelayMin     time.Duration `env:"SIGNIN_DELAY_MIN,       default=100ms"`
	DelayMax     time.Duration `env:"SIGNIN_DELAY_MAX,       default=400ms"`
	MaxAttempts  int           `env:"SIGNIN_MAX_ATTEMPTS,    default=10"`
	Window       time.Duration `env:"SIGNIN_WINDOW,          default=15m"`
}

type HashConfig struct {
	// Peppers are base64url encoded.
	Pepper1    string `env:"HASH_PEPPER_1"`
	Pepper2    string `env:"HASH_PEPPER_2"`
	Iterations int    `env:"HASH_ITERATIONS, default=600000"`
}

type RegistrationConfig struct {
	AllowedDomains []string      `env:"ALLOWED_EMAIL_DOMAINS, default=@sluz.ch,@ksalp.ch"`
	TTL            time.Duration `env:"REGISTRATION_TTL,      default=15m"`
}

type GateConfig struct {
	InitialScore int   `env:"GATE_INITIAL_SCORE,  default=2"`
	MaxBodyBytes int64 `env:"GATE_MAX_BODY_BYTES, default=2097152"`
}

type PostgresConfig struct {
	DSN          string `env:"DATABASE_URL,      default=postgres://localhost:5432/portal?sslmode=disable"`
	MaxOpenConns int    `env:"DATABASE_MAX_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portal"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MailConfig struct {
	Provider             string `env:"MAIL_PROVIDER,          default=log"`
	From                 string `env:"MAIL_FROM,              default=noreply@ksalp.ch"`
	ReplyTo              string `env:"MAIL_REPLY_TO,          default=info@ksalp.ch"`
	SMTPHost             string `env:"SMTP_HOST"`
	SMTPPort             int    `env:"SMTP_PORT,              default=587"`
	SMTPUsername         string `env:"SMTP_USERNAME"`
	SMTPPassword         string `env:"SMTP_PASSWORD"`
	SMTPTLSMode          string `env:"SMTP_TLS_MODE,          default=starttls"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// Load reads a .env file when present, then the process environment, and
// validates the result.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "postgres", "mongo":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be postgres or mongo, got %q", c.StoreDriver))
	}
	switch c.Mail.Provider {
	case "log", "smtp", "postmark":
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER must be log, smtp or postmark, got %q", c.Mail.Provider))
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.Session.DelayMin > c.Session.DelayMax {
		errs = append(errs, errors.New("SIGNIN_DELAY_MIN must not exceed SIGNIN_DELAY_MAX"))
	}
	if c.Hash.Iterations < 1 {
		errs = append(errs, errors.New("HASH_ITERATIONS must be positive"))
	}
	if c.IsProduction() && c.Hash.Iterations < minProductionIterations {
		errs = append(errs, fmt.Errorf("HASH_ITERATIONS must be at least %d in production", minProductionIterations))
	}
	if _, _, err := c.Hash.Peppers(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Registration.AllowedDomains) == 0 {
		errs = append(errs, errors.New("ALLOWED_EMAIL_DOMAINS must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Peppers decodes both peppers. Padding is optional.
func (h HashConfig) Peppers() ([]byte, []byte, error) {
	p1, err := decodePepper("HASH_PEPPER_1", h.Pepper1)
	if err != nil {
		return nil, nil, err
	}
	p2, err := decodePepper("HASH_PEPPER_2", h.Pepper2)
	if err != nil {
		return nil, nil, err
	}
	return p1, p2, nil
}

func decodePepper(name, v string) ([]byte, error) {
	if v == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(v, "="))
	if err != nil {
		return nil, fmt.Errorf("%s is not base64url: %w", name, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	return b, nil
}
