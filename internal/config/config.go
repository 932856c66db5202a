package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	BotToken         string
	AdminIDs         []int64
	StorageChannelID int64

	HTTPAddr      string
	PublicBaseURL string

	// StoreBackend selects persistence: "file", "sqlite" or "mysql".
	StoreBackend string
	StorePath    string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string

	ZarinPalMerchantID string
	ZarinPalSandbox    bool

	// AdminAPIKey guards the admin dashboard login endpoint.
	AdminAPIKey string

	LeaderboardSize int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		BotToken:           os.Getenv("BOT_TOKEN"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		StoreBackend:       getEnv("STORE_BACKEND", "file"),
		StorePath:          getEnv("STORE_PATH", "data/store.json"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             getEnv("DB_NAME", "playlist_bot"),
		ZarinPalMerchantID: os.Getenv("ZARINPAL_MERCHANT_ID"),
		ZarinPalSandbox:    getEnvBool("ZARINPAL_SANDBOX", true),
		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),
		LeaderboardSize:    getEnvInt("LEADERBOARD_SIZE", 10),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	channelID, err := strconv.ParseInt(os.Getenv("STORAGE_CHANNEL_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("STORAGE_CHANNEL_ID is required and must be a chat id: %w", err)
	}
	cfg.StorageChannelID = channelID

	cfg.AdminIDs, err = parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case "file", "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be file, sqlite or mysql, got %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// IsAdmin reports whether the user id is in the configured admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS entry %q is not a user id: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, value, fallback)
		return fallback
	}
	return b
}
