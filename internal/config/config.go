// internal/config/config.go
//
// Environment-backed configuration for both binaries. `.env` loading is the
// caller's concern (godotenv in main); this package only reads the process
// environment with sensible defaults.

package config

import (
	"os"
	"strconv"
	"time"
)

// Client holds configuration for the terminal client.
type Client struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	PrefsPath      string // empty means the per-user default location
}

// Server holds configuration for the backend.
type Server struct {
	Port          string
	DBPath        string
	JWTSecret     string
	AdminUser     string
	AdminPassHash string // bcrypt hash; empty disables the admin surface
}

// LoadClient reads client configuration from the environment.
func LoadClient() Client {
	return Client{
		APIBaseURL:     getEnv("API_URL", "http://127.0.0.1:12527"),
		RequestTimeout: getDuration("API_TIMEOUT", 10*time.Second),
		PrefsPath:      os.Getenv("PREFS_PATH"),
	}
}

// LoadServer reads backend configuration from the environment.
func LoadServer() Server {
	return Server{
		Port:          getEnv("PORT", "12527"),
		DBPath:        getEnv("DB_PATH", "./data/ranking.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getDuration parses k as seconds; falls back to def on absence or junk.
func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
