// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/mind"
	"github.com/keshon/mahiro/internal/storage"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`
	StoragePath   string `env:"STORAGE_PATH"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"mahiro"`

	AIProvider    string        `env:"AI_PROVIDER" envDefault:"mistral"`
	AIBaseURL     string        `env:"AI_BASE_URL"`
	AIAPIKey      string        `env:"AI_API_KEY"`
	AIModel       string        `env:"AI_MODEL" envDefault:"mistral-small-latest"`
	AITemperature float64       `env:"AI_TEMPERATURE" envDefault:"0.85"`
	AIMaxTokens   int           `env:"AI_MAX_TOKENS" envDefault:"500"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	AIRPS         float64       `env:"AI_RPS" envDefault:"1"`
	AIMaxAttempts int           `env:"AI_MAX_ATTEMPTS" envDefault:"3"`

	HistoryLimit     int           `env:"HISTORY_LIMIT" envDefault:"20"`
	FactsLimit       int           `env:"FACTS_LIMIT" envDefault:"50"`
	TrustIncrement   float64       `env:"TRUST_INCREMENT" envDefault:"0.05"`
	MaxTrust         float64       `env:"MAX_TRUST" envDefault:"1.0"`
	Cooldown         time.Duration `env:"COOLDOWN" envDefault:"2s"`
	MaxPerMinute     int           `env:"MAX_PER_MINUTE" envDefault:"10"`
	MaxPerDay        int           `env:"MAX_PER_DAY" envDefault:"100"`
	RandomMoodChance float64       `env:"RANDOM_MOOD_CHANCE" envDefault:"0.05"`
	Timezone         string        `env:"TIMEZONE" envDefault:"Local"`
	PersonaFile      string        `env:"PERSONA_FILE"`

	ImagesEnabled   bool    `env:"IMAGES_ENABLED" envDefault:"true"`
	ImagesDir       string  `env:"IMAGES_DIR" envDefault:"images"`
	ImageSendChance float64 `env:"IMAGE_SEND_CHANCE" envDefault:"0.15"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`

	AdminUserIDs     []string `env:"ADMIN_USER_IDS" envSeparator:","`
	BlacklistUserIDs []string `env:"BLACKLIST_USER_IDS" envSeparator:","`
	WhitelistEnabled bool     `env:"WHITELIST_ENABLED" envDefault:"false"`
	WhitelistUserIDs []string `env:"WHITELIST_USER_IDS" envSeparator:","`

	location *time.Location
}

// New loads .env (if present) and the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StorageDriver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite, storage.DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of memory, file, sqlite, redis", c.StorageDriver))
	}
	if c.MaxTrust <= 0 || c.MaxTrust > 1 {
		errs = append(errs, fmt.Errorf("MAX_TRUST must be in (0,1], got %v", c.MaxTrust))
	}
	if c.TrustIncrement <= 0 {
		errs = append(errs, fmt.Errorf("TRUST_INCREMENT must be positive, got %v", c.TrustIncrement))
	}
	if c.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("COOLDOWN must not be negative"))
	}
	if c.ImageSendChance < 0 || c.ImageSendChance > 1 {
		errs = append(errs, fmt.Errorf("IMAGE_SEND_CHANCE must be in [0,1], got %v", c.ImageSendChance))
	}
	if c.RandomMoodChance < 0 || c.RandomMoodChance > 1 {
		errs = append(errs, fmt.Errorf("RANDOM_MOOD_CHANCE must be in [0,1], got %v", c.RandomMoodChance))
	}
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	c.location = loc
	c.AdminUserIDs = cleanIDs(c.AdminUserIDs)
	c.BlacklistUserIDs = cleanIDs(c.BlacklistUserIDs)
	c.WhitelistUserIDs = cleanIDs(c.WhitelistUserIDs)
	return errors.Join(errs...)
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func cleanIDs(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Location is the zone used for time-of-day and daily counters.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// IsAdmin reports whether userID may run admin commands.
func (c *Config) IsAdmin(userID string) bool {
	return slices.Contains(c.AdminUserIDs, userID)
}

// Access is the yes/no gate applied before the engine sees a message.
// Blacklist wins; with the whitelist on, only listed users and admins pass.
func (c *Config) Access(userID string) bool {
	if slices.Contains(c.BlacklistUserIDs, userID) {
		return false
	}
	if !c.WhitelistEnabled {
		return true
	}
	return c.IsAdmin(userID) || slices.Contains(c.WhitelistUserIDs, userID)
}

// MindSettings maps the limits onto engine settings.
func (c *Config) MindSettings() mind.Settings {
	s := mind.DefaultSettings()
	s.HistoryLimit = c.HistoryLimit
	s.FactsLimit = c.FactsLimit
	s.TrustIncrement = c.TrustIncrement
	s.MaxTrust = c.MaxTrust
	s.Cooldown = c.Cooldown
	s.MaxPerMinute = c.MaxPerMinute
	s.MaxPerDay = c.MaxPerDay
	s.RandomMoodChance = c.RandomMoodChance
	s.Location = c.Location()
	return s
}

// StorageOptions selects the durable store.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:        c.StorageDriver,
		Path:          c.StoragePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

// AIOptions configures the generation client.
func (c *Config) AIOptions() ai.Options {
	return ai.Options{
		Provider:    c.AIProvider,
		Endpoint:    c.AIBaseURL,
		APIKey:      c.AIAPIKey,
		Model:       c.AIModel,
		Temperature: c.AITemperature,
		MaxTokens:   c.AIMaxTokens,
		Timeout:     c.AITimeout,
		RPS:         c.AIRPS,
		MaxAttempts: c.AIMaxAttempts,
	}
}
