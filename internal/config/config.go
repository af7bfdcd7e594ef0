// Package config loads the application configuration from defaults,
// command-line flags, a .env file and environment variables (in that
// order of increasing priority) and validates the result.
package config

import (
	"encoding/base64"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`

	AuthCookieName string `env:"AUTH_COOKIE_NAME" validate:"required"`

	// AuthSigningSecretKey is the base64-encoded HMAC key used to sign
	// session tokens.
	AuthSigningSecretKey string `env:"AUTH_SIGNING_SECRET_KEY" validate:"required,base64url"`

	// AuthTokenTTL is the validity of the bearer token returned by login.
	AuthTokenTTL time.Duration `env:"AUTH_TOKEN_TTL"`

	// AuthCookieTTL is the validity of the browser-session cookie set by login.
	AuthCookieTTL time.Duration `env:"AUTH_COOKIE_TTL"`

	BcryptCost int `env:"BCRYPT_COST" validate:"min=4,max=31"`
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// SigningSecret decodes the configured base64 signing key into raw bytes.
func (c *Config) SigningSecret() ([]byte, error) {
	return base64.URLEncoding.DecodeString(c.AuthSigningSecretKey)
}

// InitOption configures the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag registration.
// Tests use it to avoid flag redefinition across packages.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds the configuration: defaults, then flags, then the .env file,
// then environment variables. The result is validated before being returned.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:             ":8080",
		LogLevel:            "info",
		DBFileName:          "",
		DatabaseDSN:         "",
		DBConnectionTimeout: 10 * time.Second,
		MigrationsDir:       "./cmd/ainotes/migrations",
		AuthCookieName:      "ainotes_session",
		// development fallback, override in production
		AuthSigningSecretKey: "c3VwZXItc2VjcmV0LWFpbm90ZXMta2V5LWNoYW5nZS1tZQ==",
		AuthTokenTTL:         7 * 24 * time.Hour,
		AuthCookieTTL:        30 * 24 * time.Hour,
		BcryptCost:           12,
	}
	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DBFileName, "f", cfg.DBFileName, "JSON file name with database")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "A string with the database connection details")
		flag.StringVar(&cfg.MigrationsDir, "m", cfg.MigrationsDir, "directory with goose migrations")
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		cfg.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		cfg.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		cfg.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		cfg.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		cfg.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		cfg.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.AuthCookieName != "" {
		cfg.AuthCookieName = valuesFromEnv.AuthCookieName
	}

	if valuesFromEnv.AuthSigningSecretKey != "" {
		cfg.AuthSigningSecretKey = valuesFromEnv.AuthSigningSecretKey
	}

	if valuesFromEnv.AuthTokenTTL != 0 {
		cfg.AuthTokenTTL = valuesFromEnv.AuthTokenTTL
	}

	if valuesFromEnv.AuthCookieTTL != 0 {
		cfg.AuthCookieTTL = valuesFromEnv.AuthCookieTTL
	}

	if valuesFromEnv.BcryptCost != 0 {
		cfg.BcryptCost = valuesFromEnv.BcryptCost
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
