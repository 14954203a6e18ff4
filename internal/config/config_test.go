package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RECORDS_BASE_URL", "http://backend:3000")
	t.Setenv("WHATSAPP_TOKEN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://backend:3000", cfg.Records.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Records.Timeout)
	assert.Equal(t, 15, cfg.Reminders.WindowDays)
	assert.False(t, cfg.Reminders.FlagOverdue)
	assert.Equal(t, 3*time.Second, cfg.Flow.DismissAfter)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "RECORDS_BASE_URL=https://api.example.test\n" +
		"REMINDER_WINDOW_DAYS=30\n" +
		"REMINDER_FLAG_OVERDUE=true\n" +
		"FLOW_DISMISS_AFTER=5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, key := range []string{"RECORDS_BASE_URL", "REMINDER_WINDOW_DAYS", "REMINDER_FLAG_OVERDUE", "FLOW_DISMISS_AFTER"} {
		key := key
		prev, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test", cfg.Records.BaseURL)
	assert.Equal(t, 30, cfg.Reminders.WindowDays)
	assert.True(t, cfg.Reminders.FlagOverdue)
	assert.Equal(t, 5*time.Second, cfg.Flow.DismissAfter)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad window", func(t *testing.T) {
		t.Setenv("REMINDER_WINDOW_DAYS", "quinze")
		_, err := Load(filepath.Join(t.TempDir(), "none.env"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("FLOW_PROMPT_EXPIRY", "soon")
		_, err := Load(filepath.Join(t.TempDir(), "none.env"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Records:   RecordsConfig{BaseURL: "http://localhost:3000"},
			Reporting: ReportingConfig{ReminderCron: "0 7 * * *", SnapshotCron: "0 1 1 * *", Timezone: "UTC"},
			Reminders: ReminderConfig{WindowDays: 15},
		}
	}

	require.NoError(t, valid().Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := valid()
	cfg.Records.BaseURL = "localhost:3000"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.WhatsApp = WhatsAppConfig{AccessToken: "token", PhoneNumberID: "123", VerifyToken: "verify"}
	assert.EqualError(t, cfg.Validate(), "WHATSAPP_GROUP_ID must be provided")

	cfg = valid()
	cfg.Reporting.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Reminders.WindowDays = 0
	assert.Error(t, cfg.Validate())
}
