package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	SMTP      SMTPConfig      `mapstructure:"smtp"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SMTPConfig contains the settings for the outbound mail sink.
type SMTPConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"required,email"`
}

// SchedulerConfig holds the wall-clock run times for the background loops,
// each as "HH:MM" in the server's local time. The reminder time is the
// operator-facing knob; the rollover and overdue passes default to shortly
// after midnight so lagging tasks are nudged before the working day starts.
type SchedulerConfig struct {
	ReminderTime string `mapstructure:"reminder_time" validate:"required"`
	RolloverTime string `mapstructure:"rollover_time" validate:"required"`
	OverdueTime  string `mapstructure:"overdue_time"  validate:"required"`
}
