// Package config reads application configuration from the environment.
//
// Every setting has a default so the binary runs with no configuration at
// all. A .env file, when present, is loaded by the CLI before Load is called.
package config

import (
	"os"
	"strconv"

	"github.com/tidebook/accounts-engine/logger"
)

// Config is the full application configuration.
type Config struct {
	Port           int    // LEDGER_PORT
	DBPath         string // LEDGER_DB
	BackupDir      string // LEDGER_BACKUP_DIR
	BackupInterval int    // LEDGER_BACKUP_HOURS (0 disables the scheduled job)
	LogLevel       string // LEDGER_LOG_LEVEL
	LogFormat      string // LEDGER_LOG_FORMAT
}

// Load builds a Config from environment variables with defaults.
func Load() Config {
	return Config{
		Port:           envInt("LEDGER_PORT", 8080),
		DBPath:         envStr("LEDGER_DB", "accounts.db"),
		BackupDir:      envStr("LEDGER_BACKUP_DIR", "Backups"),
		BackupInterval: envInt("LEDGER_BACKUP_HOURS", 24),
		LogLevel:       envStr("LEDGER_LOG_LEVEL", "info"),
		LogFormat:      envStr("LEDGER_LOG_FORMAT", "console"),
	}
}

// LoggerConfig projects the logging settings.
func (c Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat, Output: "stderr"}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
