package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/edgard/letterbot/internal/errs"
)

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "LETTERBOT"

// envBindings lists keys that may come from the environment. The bare names
// are kept for deployments that only set TOKEN and CONNECTION_STRING.
var envBindings = map[string][]string{
	"telegram.token":            {"LETTERBOT_TELEGRAM_TOKEN", "TOKEN"},
	"telegram.greeting_sticker": {"LETTERBOT_TELEGRAM_GREETING_STICKER"},
	"database.path":             {"LETTERBOT_DATABASE_PATH", "CONNECTION_STRING"},
	"logger.level":              {"LETTERBOT_LOGGER_LEVEL"},
	"logger.json":               {"LETTERBOT_LOGGER_JSON"},
	"letters.timezone":          {"LETTERBOT_LETTERS_TIMEZONE"},
	"scheduler.timezone":        {"LETTERBOT_SCHEDULER_TIMEZONE"},
	"metrics.enabled":           {"LETTERBOT_METRICS_ENABLED"},
	"metrics.address":           {"LETTERBOT_METRICS_ADDRESS"},
}

// LoadConfig loads configuration in this order of precedence (highest first):
//  1. environment variables (a .env file next to the binary is loaded first)
//  2. the YAML file at path, which may be missing
//  3. built-in defaults
//
// The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, errs.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to bind env for %s", key), err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
		}
		slog.Info("Configuration file not found, using defaults and environment", "path", path)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errs.NewConfigError("invalid configuration", err)
	}
	if !strings.Contains(c.Messages.LetterLine, "%d") || !strings.Contains(c.Messages.LetterLine, "%s") {
		return errs.NewConfigError("invalid configuration", errors.New("messages.letter_line must contain %d and %s"))
	}
	return nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
