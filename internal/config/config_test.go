package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "REPORT_CRON_SCHEDULE",
		"TIMEZONE", "FARM_OWNER_ID", "REPORT_SOON_DAYS", "PREGNANCY_DAYS", "FATTENING_DAYS",
		"MONGODB_URI", "MONGODB_DB_NAME", "SETTINGS_PATH", "STORAGE_DRIVER",
	} {
		t.Setenv(key, "")
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# test\n"), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 7 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, 7, cfg.Reporting.SoonDays)
	assert.Equal(t, lifecycle.DefaultDurations(), cfg.Lifecycle.Defaults)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.Equal(t, DriverMongoDB, cfg.MongoDB.Driver)

	loc, err := cfg.Reporting.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Bangkok", loc.String())
}

func TestLoadMemoryDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.MongoDB.Driver)
}

func TestLoadRejectsUnknownDriverAndTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := Load(emptyEnvFile(t))
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load(emptyEnvFile(t))
	require.Error(t, err)
}

func TestLoadDurationOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREGNANCY_DAYS", "116")
	t.Setenv("FATTENING_DAYS", "150")

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Durations{PregnancyDays: 116, FatteningDays: 150}, cfg.Lifecycle.Defaults)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREGNANCY_DAYS", "abc")
	_, err := Load(emptyEnvFile(t))
	assert.Error(t, err)

	t.Setenv("PREGNANCY_DAYS", "200")
	_, err = Load(emptyEnvFile(t))
	assert.ErrorIs(t, err, lifecycle.ErrDurationOutOfRange)
}

func TestValidateWhatsAppRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHATSAPP_TOKEN", "token")

	_, err := Load(emptyEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHATSAPP_PHONE_NUMBER_ID")

	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("META_VERIFY_TOKEN", "verify")
	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)
	assert.True(t, cfg.WhatsApp.Enabled())
}

func TestValidateSheetsRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet")

	_, err := Load(emptyEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS_PATH")
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
