package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all clinic deployment settings.
type Config struct {
	// CalendarID is the Google Calendar the clinic books into.
	CalendarID string `mapstructure:"calendar_id"`

	// CredentialsFile is the path to the Google service account key.
	CredentialsFile string `mapstructure:"credentials_file"`

	// TimeZone is the clinic's IANA time zone (e.g. "America/New_York").
	TimeZone string `mapstructure:"time_zone"`

	// Slots is the ordered grid of bookable times ("HH:MM").
	Slots []string `mapstructure:"slots"`

	// DurationMinutes is the appointment length.
	DurationMinutes int `mapstructure:"duration_minutes"`

	// FallbackSlots are suggested when availability cannot be computed.
	FallbackSlots []string `mapstructure:"fallback_slots"`

	// MaxResults caps how many free slots are offered per query.
	MaxResults int `mapstructure:"max_results"`

	// KnowledgeBaseFile is the clinic info text injected into the
	// assistant's system prompt.
	KnowledgeBaseFile string `mapstructure:"knowledge_base_file"`

	// GeminiAPIKey authenticates the conversational model. Optional; the
	// scheduling tools work without it.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// WebhookSecret, when set, must match the X-Webhook-Secret header on
	// inbound tool calls.
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// Load reads configuration from receptionist.yaml (if present) and
// RECEPTIONIST_* environment variables, applying defaults for everything the
// deployment does not override.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("receptionist")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("RECEPTIONIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("calendar_id", "primary")
	v.SetDefault("credentials_file", "credentials.json")
	v.SetDefault("time_zone", "America/New_York")
	v.SetDefault("slots", []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"})
	v.SetDefault("duration_minutes", 45)
	v.SetDefault("fallback_slots", []string{"10:00", "14:00"})
	v.SetDefault("max_results", 3)
	v.SetDefault("knowledge_base_file", "knowledge_base.txt")

	// AutomaticEnv only resolves keys viper already knows about; the secrets
	// have no default, so bind them explicitly or their env vars are ignored.
	if err := v.BindEnv("gemini_api_key"); err != nil {
		return Config{}, fmt.Errorf("failed to bind gemini_api_key: %w", err)
	}
	if err := v.BindEnv("webhook_secret"); err != nil {
		return Config{}, fmt.Errorf("failed to bind webhook_secret: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; environment and defaults carry it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env vars deliver lists as comma-separated strings.
	cfg.Slots = splitIfSingle(cfg.Slots)
	cfg.FallbackSlots = splitIfSingle(cfg.FallbackSlots)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the parts of the configuration that would otherwise fail
// deep inside the engines.
func (c *Config) Validate() error {
	if c.CalendarID == "" {
		return fmt.Errorf("calendar_id must not be empty")
	}
	if len(c.Slots) == 0 {
		return fmt.Errorf("slots must not be empty")
	}
	if len(c.FallbackSlots) == 0 {
		return fmt.Errorf("fallback_slots must not be empty")
	}
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", c.DurationMinutes)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.TimeZone == "" {
		return fmt.Errorf("time_zone must not be empty")
	}
	return nil
}

func splitIfSingle(values []string) []string {
	if len(values) != 1 || !strings.Contains(values[0], ",") {
		return values
	}
	parts := strings.Split(values[0], ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
