// Package config defines the command-line flags and resolves them, together
// with environment variables and an optional TOML file, into a Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var (
	configFile string
	tomlSrc    = altsrc.NewStringPtrSourcer(&configFile)
)

// Config is the resolved configuration of every command.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Uploads  UploadConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
	APIURL      string // base URL the web views use to reach the REST API
}

// LogConfig selects log level, format and an optional log file.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	File   string // optional, receives all levels
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret   string        // empty: generated once and stored in the database
	TokenExpiry time.Duration // 0: tokens never expire
}

// UploadConfig controls where photos are stored and how they are resized.
type UploadConfig struct {
	Dir          string
	MaxDimension int // 0: store photos verbatim
}

// SMTPConfig holds the mail relay settings for found notifications.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether credentials are configured for sending mail.
func (c SMTPConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

// NotifyConfig bounds delivery attempts per notification.
type NotifyConfig struct {
	Attempts int
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// one exists. Variables already set in the environment win. A file that
// cannot be parsed is logged and skipped.
func LoadDotEnv() {
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("ignoring .env file", "error", err)
	}
}

// loadDotEnv loads path, treating a missing file as empty.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// NewFromCLI builds a Config from the resolved flags of cmd and applies
// derived defaults.
func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			CORSOrigins: cmd.StringSlice("cors-origins"),
			APIURL:      cmd.String("api-url"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
			File:   cmd.String("log-file"),
		},
		Database: DatabaseConfig{
			Path: cmd.String("database"),
		},
		Auth: AuthConfig{
			JWTSecret:   cmd.String("jwt-secret"),
			TokenExpiry: cmd.Duration("token-expiry"),
		},
		Uploads: UploadConfig{
			Dir:          cmd.String("upload-dir"),
			MaxDimension: int(cmd.Int("upload-max-dimension")),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("email-user"),
			Password: cmd.String("email-pass"),
			From:     cmd.String("email-from"),
		},
		Notify: NotifyConfig{
			Attempts: int(cmd.Int("notify-attempts")),
		},
	}

	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills settings derived from other settings.
func applyDefaults(cfg *Config) {
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.Notify.Attempts < 1 {
		cfg.Notify.Attempts = 1
	}
	if cfg.Server.APIURL == "" {
		cfg.Server.APIURL = buildAPIURL(cfg.Server.Host, cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
}

// buildAPIURL returns the loopback URL of the REST API served by this process.
func buildAPIURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// sources creates a value source chain combining an env var and a TOML key.
func sources(envKey, tomlKey string) cli.ValueSourceChain {
	chain := cli.EnvVars(envKey)
	chain.Chain = append(chain.Chain, toml.TOML(tomlKey, tomlSrc))
	return chain
}

// ConfigFlag is the path of the optional TOML file. It must be registered
// on the root command so the file is known before other flags resolve.
func ConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Value:       "config.toml",
		Usage:       "Path to configuration file (ignored if missing)",
		Destination: &configFile,
		Sources:     cli.EnvVars("CONFIG"),
	}
}

// DatabaseFlag is shared by every command that opens the database.
func DatabaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Value:   "lostfound.sqlite3",
		Usage:   "SQLite database path",
		Sources: sources("DATABASE_PATH", "database.path"),
	}
}

// LogFlags configure logging for every command.
func LogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level: debug, info, warn, error",
			Sources: sources("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format: text, json",
			Sources: sources("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write all log records to this file",
			Sources: sources("LOG_FILE", "log.file"),
		},
	}
}

// Flags returns the flags of the serve command.
func Flags() []cli.Flag {
	flags := []cli.Flag{
		// Server
		&cli.StringFlag{
			Name:    "host",
			Usage:   "Host to bind to (empty: all interfaces)",
			Sources: sources("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   5000,
			Usage:   "Port to listen on",
			Sources: sources("PORT", "server.port"),
		},
		&cli.StringSliceFlag{
			Name:    "cors-origins",
			Value:   []string{"*"},
			Usage:   "Origins allowed to call the API",
			Sources: sources("CORS_ALLOWED_ORIGINS", "server.cors_origins"),
		},
		&cli.StringFlag{
			Name:    "api-url",
			Usage:   "Base URL the web views use to reach the API (default: http://localhost:<port>)",
			Sources: sources("API_URL", "web.api_url"),
		},

		DatabaseFlag(),

		// Authentication
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Token signing secret (empty: generated and stored in the database)",
			Sources: sources("JWT_SECRET", "auth.jwt_secret"),
		},
		&cli.DurationFlag{
			Name:    "token-expiry",
			Usage:   "Token lifetime, e.g. 24h (0: tokens never expire)",
			Sources: sources("TOKEN_EXPIRY", "auth.token_expiry"),
		},

		// Uploads
		&cli.StringFlag{
			Name:    "upload-dir",
			Value:   "uploads",
			Usage:   "Directory for uploaded photos",
			Sources: sources("UPLOAD_DIR", "uploads.dir"),
		},
		&cli.IntFlag{
			Name:    "upload-max-dimension",
			Usage:   "Downscale JPEG/PNG photos to this many pixels per side (0: store verbatim)",
			Sources: sources("UPLOAD_MAX_DIMENSION", "uploads.max_dimension"),
		},

		// Mail
		&cli.StringFlag{
			Name:    "smtp-host",
			Value:   "smtp.gmail.com",
			Usage:   "SMTP relay host",
			Sources: sources("SMTP_HOST", "smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP relay port",
			Sources: sources("SMTP_PORT", "smtp.port"),
		},
		&cli.StringFlag{
			Name:    "email-user",
			Usage:   "SMTP username (empty: notifications are only logged)",
			Sources: sources("EMAIL_USER", "smtp.username"),
		},
		&cli.StringFlag{
			Name:    "email-pass",
			Usage:   "SMTP password",
			Sources: sources("EMAIL_PASS", "smtp.password"),
		},
		&cli.StringFlag{
			Name:    "email-from",
			Usage:   "Sender address (default: email-user)",
			Sources: sources("EMAIL_FROM", "smtp.from"),
		},
		&cli.IntFlag{
			Name:    "notify-attempts",
			Value:   1,
			Usage:   "Delivery attempts per found-item notification",
			Sources: sources("NOTIFY_ATTEMPTS", "notify.attempts"),
		},
	}
	return append(flags, LogFlags()...)
}
