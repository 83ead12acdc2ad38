package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestBuildAPIURL(t *testing.T) {
	tests := []struct {
		host     string
		port     int
		expected string
	}{
		{"", 5000, "http://localhost:5000"},
		{"0.0.0.0", 8080, "http://localhost:8080"},
		{"::", 8080, "http://localhost:8080"},
		{"127.0.0.1", 5000, "http://127.0.0.1:5000"},
		{"::1", 5000, "http://[::1]:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildAPIURL(tt.host, tt.port))
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("fills derived values", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: 5000},
			SMTP:   SMTPConfig{Username: "office@college.edu"},
		}
		applyDefaults(cfg)

		assert.Equal(t, "office@college.edu", cfg.SMTP.From)
		assert.Equal(t, 1, cfg.Notify.Attempts)
		assert.Equal(t, "http://localhost:5000", cfg.Server.APIURL)
		assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	})

	t.Run("does not override existing values", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: 5000, APIURL: "http://api:9000", CORSOrigins: []string{"https://a.example"}},
			SMTP:   SMTPConfig{Username: "u", From: "noreply@college.edu"},
			Notify: NotifyConfig{Attempts: 3},
		}
		applyDefaults(cfg)

		assert.Equal(t, "noreply@college.edu", cfg.SMTP.From)
		assert.Equal(t, 3, cfg.Notify.Attempts)
		assert.Equal(t, "http://api:9000", cfg.Server.APIURL)
		assert.Equal(t, []string{"https://a.example"}, cfg.Server.CORSOrigins)
	})
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.False(t, SMTPConfig{Username: "u"}.Enabled())
	assert.True(t, SMTPConfig{Username: "u", Password: "p"}.Enabled())
}

func TestFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range Flags() {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{
		"host", "port", "database", "jwt-secret", "token-expiry",
		"upload-dir", "smtp-host", "email-user", "email-pass",
		"notify-attempts", "cors-origins", "api-url", "log-level",
	} {
		assert.True(t, flagNames[name], "should have %s flag", name)
	}
}

func run(t *testing.T, args []string, check func(cfg *Config)) {
	t.Helper()
	app := &cli.Command{
		Name:  "test",
		Flags: append([]cli.Flag{ConfigFlag()}, Flags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			check(NewFromCLI(cmd))
			return nil
		},
	}
	require.NoError(t, app.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestNewFromCLIDefaults(t *testing.T) {
	run(t, []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, func(cfg *Config) {
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "lostfound.sqlite3", cfg.Database.Path)
		assert.Equal(t, "uploads", cfg.Uploads.Dir)
		assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, time.Duration(0), cfg.Auth.TokenExpiry)
		assert.Equal(t, 1, cfg.Notify.Attempts)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "http://localhost:5000", cfg.Server.APIURL)
	})
}

func TestNewFromCLIWithCustomValues(t *testing.T) {
	args := []string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--port", "9000",
		"--token-expiry", "24h",
		"--email-user", "office@college.edu",
		"--notify-attempts", "3",
	}
	run(t, args, func(cfg *Config) {
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiry)
		assert.Equal(t, "office@college.edu", cfg.SMTP.From)
		assert.Equal(t, 3, cfg.Notify.Attempts)
		assert.Equal(t, "http://localhost:9000", cfg.Server.APIURL)
	})
}

func TestNewFromCLIEnvironment(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "from-env")

	run(t, []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, func(cfg *Config) {
		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	})
}

func TestNewFromCLITOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 6000

[uploads]
dir = "/var/lib/lostfound/uploads"

[smtp]
username = "office@college.edu"
password = "secret"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	run(t, []string{"--config", path}, func(cfg *Config) {
		assert.Equal(t, 6000, cfg.Server.Port)
		assert.Equal(t, "/var/lib/lostfound/uploads", cfg.Uploads.Dir)
		assert.True(t, cfg.SMTP.Enabled())
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		require.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
	})

	t.Run("sets unset variables", func(t *testing.T) {
		const key = "LOSTFOUND_DOTENV_TEST"
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))

		path := filepath.Join(dir, "valid.env")
		require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))
		require.NoError(t, loadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv(key))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.env")
		require.NoError(t, os.WriteFile(path, []byte("EMAIL_PASS=\"unterminated\n"), 0o644))
		require.Error(t, loadDotEnv(path))
	})
}
