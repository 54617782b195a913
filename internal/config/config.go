package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIBaseURL = "http://localhost:5000/api/v1"

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string

	// Backend REST API. Empty means demo mode.
	APIBaseURL string
	APITimeout time.Duration
	DemoMode   bool

	// StorageQuota caps the bytes one session may keep in local storage.
	StorageQuota int
	CacheTTL     time.Duration
	JWTSecret    string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using process environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "souqnest.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./souqnest.log"
	}

	apiURL := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	demo := apiURL == "" || strings.EqualFold(os.Getenv("DEMO_MODE"), "true")
	if apiURL == "" {
		apiURL = DefaultAPIBaseURL
	}

	cfg := Config{
		Port:         port,
		DBDSN:        dsn,
		LogFile:      logFile,
		APIBaseURL:   apiURL,
		APITimeout:   duration("API_TIMEOUT", 10*time.Second),
		DemoMode:     demo,
		StorageQuota: integer("STORAGE_QUOTA_BYTES", 5<<20),
		CacheTTL:     duration("CACHE_TTL", 30*time.Second),
		JWTSecret:    os.Getenv("JWT_SECRET"),
	}
	if cfg.JWTSecret == "" && cfg.DemoMode {
		cfg.JWTSecret = "souqnest-demo-secret"
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s API_BASE_URL=%s DEMO_MODE=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.APIBaseURL, cfg.DemoMode)
	return cfg
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func integer(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
