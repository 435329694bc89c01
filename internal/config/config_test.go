package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.CalendarID)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}, cfg.Slots)
	assert.Equal(t, 45, cfg.DurationMinutes)
	assert.Equal(t, []string{"10:00", "14:00"}, cfg.FallbackSlots)
	assert.Equal(t, 3, cfg.MaxResults)
	assert.Equal(t, "America/New_York", cfg.TimeZone)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECEPTIONIST_CALENDAR_ID", "clinic@group.calendar.google.com")
	t.Setenv("RECEPTIONIST_SLOTS", "08:00,09:30,11:00")
	t.Setenv("RECEPTIONIST_MAX_RESULTS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clinic@group.calendar.google.com", cfg.CalendarID)
	assert.Equal(t, []string{"08:00", "09:30", "11:00"}, cfg.Slots)
	assert.Equal(t, 2, cfg.MaxResults)
}

// The secrets have no default value, so they only reach the Config if
// their env vars are bound explicitly.
func TestLoad_SecretsFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECEPTIONIST_GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("RECEPTIONIST_WEBHOOK_SECRET", "test-webhook-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-gemini-key", cfg.GeminiAPIKey)
	assert.Equal(t, "test-webhook-secret", cfg.WebhookSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
calendar_id: front-desk@example.com
time_zone: Europe/Berlin
slots:
  - "08:30"
  - "10:30"
duration_minutes: 30
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receptionist.yaml"), content, 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "front-desk@example.com", cfg.CalendarID)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
	assert.Equal(t, []string{"08:30", "10:30"}, cfg.Slots)
	assert.Equal(t, 30, cfg.DurationMinutes)
	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"10:00", "14:00"}, cfg.FallbackSlots)
}

func TestValidate(t *testing.T) {
	valid := Config{
		CalendarID:      "primary",
		TimeZone:        "UTC",
		Slots:           []string{"09:00"},
		FallbackSlots:   []string{"10:00"},
		DurationMinutes: 45,
		MaxResults:      3,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty calendar id", mutate: func(c *Config) { c.CalendarID = "" }, wantErr: true},
		{name: "no slots", mutate: func(c *Config) { c.Slots = nil }, wantErr: true},
		{name: "no fallback", mutate: func(c *Config) { c.FallbackSlots = nil }, wantErr: true},
		{name: "zero duration", mutate: func(c *Config) { c.DurationMinutes = 0 }, wantErr: true},
		{name: "zero max results", mutate: func(c *Config) { c.MaxResults = 0 }, wantErr: true},
		{name: "empty time zone", mutate: func(c *Config) { c.TimeZone = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
