package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment
type Config struct {
	Webhooks map[string][]string // vertical -> endpoints, in fetch order

	WebhookTimeout time.Duration
	WebhookRetries int

	TimeZone       string
	SettingsDBPath string
	CacheDir       string
	CacheTTL       time.Duration

	ServerAddr   string
	AdminAPIKey  string
	CORSOrigins  []string
	VerticalFile string
}

// LoadConfig loads envFile (if present) into the environment and builds a Config.
// A missing .env file is not an error; the process environment is used as is.
func LoadConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		LogDebug("No %s file found, using process environment", envFile)
	}

	timeout, err := strconv.Atoi(getEnv("WEBHOOK_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("error parsing WEBHOOK_TIMEOUT: %w", err)
	}

	retries, err := strconv.Atoi(getEnv("WEBHOOK_RETRIES", "2"))
	if err != nil {
		return nil, fmt.Errorf("error parsing WEBHOOK_RETRIES: %w", err)
	}

	ttl, err := strconv.Atoi(getEnv("DASHBOARD_CACHE_TTL", "10"))
	if err != nil {
		return nil, fmt.Errorf("error parsing DASHBOARD_CACHE_TTL: %w", err)
	}

	dataDir := defaultDataDir()

	cfg := &Config{
		Webhooks: map[string][]string{
			VerticalSalud:  nonEmpty(os.Getenv("SALUD_WEBHOOK_URL"), os.Getenv("SALUD_APPOINTMENTS_WEBHOOK_URL")),
			VerticalComida: nonEmpty(os.Getenv("COMIDA_WEBHOOK_URL"), os.Getenv("COMIDA_ORDERS_WEBHOOK_URL")),
		},
		WebhookTimeout: time.Duration(timeout) * time.Second,
		WebhookRetries: retries,
		TimeZone:       getEnv("DASHBOARD_TIMEZONE", "UTC"),
		SettingsDBPath: getEnv("DASHBOARD_DB", filepath.Join(dataDir, "settings.db")),
		CacheDir:       getEnv("DASHBOARD_CACHE_DIR", filepath.Join(dataDir, "cache")),
		CacheTTL:       time.Duration(ttl) * time.Minute,
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		VerticalFile:   os.Getenv("VERTICAL_CONFIG"),
	}

	return cfg, nil
}

// Endpoints returns the configured webhook endpoints for a vertical
func (c *Config) Endpoints(vertical string) ([]string, error) {
	endpoints := c.Webhooks[vertical]
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no webhook configured for vertical %s (set %s_WEBHOOK_URL)", vertical, strings.ToUpper(vertical))
	}
	return endpoints, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chat-dashboard"
	}
	return filepath.Join(home, ".chat-dashboard")
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitList(s string) []string {
	return nonEmpty(strings.Split(s, ",")...)
}
