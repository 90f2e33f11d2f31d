package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"

	DefaultDBPath             = "letters.db"
	DefaultDBOperationTimeout = 15 * time.Second

	DefaultTelegramRequestTimeout = 30 * time.Second

	DefaultLettersTimezone  = "Europe/Moscow"
	DefaultSendConcurrency  = 4
	DefaultDeliverySchedule = "0 0 12 * * *" // daily at 12:00 server time
	DefaultVacuumSchedule   = "0 0 4 * * 0"  // Sundays at 04:00

	DefaultMetricsAddress = ":9090"

	// Task names, matching the keys under scheduler.tasks.
	TaskLetterDelivery = "letter_delivery"
	TaskSQLMaintenance = "sql_maintenance"
)

// DefaultMessages holds the user-facing texts used when config.yaml has none.
var DefaultMessages = MessagesConfig{
	Greeting:     "Привет, {name}! 👋\nНапиши письмо самому себе, и я верну его тебе через полгода, девять месяцев или год.",
	WritePrompt:  "Напиши письмо ответом на это сообщение ✍️",
	TextOnly:     "Поддерживаются только текстовые письма 😔",
	ChooseDelay:  "Укажи, через какое время напомнить тебе о письме ⏳",
	Cancelled:    "Действие отменено",
	SavedSix:     "Письмо сохранено 📬 Увидимся через 6 месяцев!",
	SavedNine:    "Письмо сохранено 📬 Увидимся через 9 месяцев!",
	SavedYear:    "Письмо сохранено 📬 Увидимся через год!",
	SaveFailed:   "Не удалось сохранить письмо 😔 Попробуй выбрать срок ещё раз.",
	NoLetters:    "У тебя пока нет запланированных писем 📭",
	LetterLine:   "%d - Будет доставлено: %s",
	AllDeleted:   "История очищена 🗑",
	GeneralError: "Что-то пошло не так. Попробуй позже.",

	ButtonWriteLetter:  "Написать письмо ✉",
	ButtonCheckLetters: "Проверить существующие письма",
	ButtonSixMonths:    "Через 6 месяцев",
	ButtonNineMonths:   "Через 9 месяцев",
	ButtonYear:         "Через год",
	ButtonCancel:       "Отмена ❌",
	ButtonClearHistory: "Очистить историю",
}

// DefaultCommands holds the command menu descriptions.
var DefaultCommands = CommandsConfig{
	Start:     "Начальное приветствие",
	NewLetter: "Отправить новое письмо",
	Check:     "Проверить наличие существующих писем",
	About:     "О сервисе",
}

// DefaultAbout is the static /about reply.
var DefaultAbout = AboutConfig{
	Text: "Письмо в будущее: напиши себе сегодня, и бот вернёт письмо в выбранный день.",
	Links: []LinkConfig{
		{Text: "Без сменки 🌿", URL: "https://t.me/bezsmenki"},
		{Text: "IDUNNO 👨🏻‍💻", URL: "https://t.me/Z3NT0N"},
	},
}

// Default returns a configuration populated with every default value.
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{Level: DefaultLogLevel},
		Telegram: TelegramConfig{
			RequestTimeout: DefaultTelegramRequestTimeout,
			Commands:       DefaultCommands,
		},
		Database: DatabaseConfig{
			Path:             DefaultDBPath,
			OperationTimeout: DefaultDBOperationTimeout,
		},
		Letters: LettersConfig{
			Timezone:        DefaultLettersTimezone,
			SendConcurrency: DefaultSendConcurrency,
		},
		Scheduler: SchedulerConfig{
			Tasks: map[string]TaskConfig{
				TaskLetterDelivery: {Enabled: true, Schedule: DefaultDeliverySchedule},
				TaskSQLMaintenance: {Enabled: true, Schedule: DefaultVacuumSchedule},
			},
		},
		Metrics: MetricsConfig{Address: DefaultMetricsAddress},
		Messages: DefaultMessages,
		About: AboutConfig{
			Text:  DefaultAbout.Text,
			Links: append([]LinkConfig(nil), DefaultAbout.Links...),
		},
	}
}
