// Package config manages application configuration from environment
// variables, an optional .env file, a YAML config file and default values.
package config

import (
	"time"
)

// Config defines the application configuration. Values can be set through
// config.yaml or environment variables prefixed with LETTERBOT_
// (e.g. LETTERBOT_TELEGRAM_TOKEN, LETTERBOT_DATABASE_PATH).
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Letters   LettersConfig   `mapstructure:"letters"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	About     AboutConfig     `mapstructure:"about"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and Telegram specific settings.
type TelegramConfig struct {
	Token           string         `mapstructure:"token"            validate:"required"`
	GreetingSticker string         `mapstructure:"greeting_sticker"`
	RequestTimeout  time.Duration  `mapstructure:"request_timeout"  validate:"min=1s,max=5m"`
	Commands        CommandsConfig `mapstructure:"commands"`
}

// CommandsConfig holds the descriptions shown in the bot command menu.
type CommandsConfig struct {
	Start     string `mapstructure:"start"      validate:"required"`
	NewLetter string `mapstructure:"new_letter" validate:"required"`
	Check     string `mapstructure:"check"      validate:"required"`
	About     string `mapstructure:"about"      validate:"required"`
}

// DatabaseConfig points at the SQLite letter store.
type DatabaseConfig struct {
	Path             string        `mapstructure:"path"              validate:"required"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=1s,max=5m"`
}

// LettersConfig controls how delivery dates are computed and letters are sent.
type LettersConfig struct {
	// Timezone in which delivery day keys are computed and compared.
	Timezone        string `mapstructure:"timezone"         validate:"required,timezone"`
	SendConcurrency int    `mapstructure:"send_concurrency" validate:"min=1,max=30"`
}

// SchedulerConfig holds the scheduled task definitions.
type SchedulerConfig struct {
	// Timezone the cron schedules are evaluated in. Empty means server local time.
	Timezone string                `mapstructure:"timezone" validate:"omitempty,timezone"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"    validate:"dive"`
}

// TaskConfig enables a scheduled task and sets its cron schedule (with seconds).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-facing text and button label.
type MessagesConfig struct {
	Greeting     string `mapstructure:"greeting"      validate:"required"` // {name} is replaced with the user's first name
	WritePrompt  string `mapstructure:"write_prompt"  validate:"required"`
	TextOnly     string `mapstructure:"text_only"     validate:"required"`
	ChooseDelay  string `mapstructure:"choose_delay"  validate:"required"`
	Cancelled    string `mapstructure:"cancelled"     validate:"required"`
	SavedSix     string `mapstructure:"saved_six"     validate:"required"`
	SavedNine    string `mapstructure:"saved_nine"    validate:"required"`
	SavedYear    string `mapstructure:"saved_year"    validate:"required"`
	SaveFailed   string `mapstructure:"save_failed"   validate:"required"`
	NoLetters    string `mapstructure:"no_letters"    validate:"required"`
	LetterLine   string `mapstructure:"letter_line"   validate:"required"` // fmt format: index, date
	AllDeleted   string `mapstructure:"all_deleted"   validate:"required"`
	GeneralError string `mapstructure:"general_error" validate:"required"`

	ButtonWriteLetter  string `mapstructure:"button_write_letter"  validate:"required"`
	ButtonCheckLetters string `mapstructure:"button_check_letters" validate:"required"`
	ButtonSixMonths    string `mapstructure:"button_six_months"    validate:"required"`
	ButtonNineMonths   string `mapstructure:"button_nine_months"   validate:"required"`
	ButtonYear         string `mapstructure:"button_year"          validate:"required"`
	ButtonCancel       string `mapstructure:"button_cancel"        validate:"required"`
	ButtonClearHistory string `mapstructure:"button_clear_history" validate:"required"`
}

// AboutConfig is the static /about reply.
type AboutConfig struct {
	Text  string       `mapstructure:"text"  validate:"required"`
	Links []LinkConfig `mapstructure:"links" validate:"dive"`
}

// LinkConfig is a URL button shown under the /about reply.
type LinkConfig struct {
	Text string `mapstructure:"text" validate:"required"`
	URL  string `mapstructure:"url"  validate:"required,url"`
}

// Location returns the time zone letters are scheduled in.
func (c LettersConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Location returns the time zone cron schedules run in.
func (c SchedulerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
