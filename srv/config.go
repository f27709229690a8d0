package srv

import (
	"os"
	"strconv"
	"time"

	"github.com/opd-ai/bookforge/logger"
)

type Config struct {
	Port             int
	DatabaseDriver   string
	DatabaseDSN      string
	JWTSecret        string
	JWTTTL           time.Duration
	UploadsDir       string
	ClaudeAPIKey     string
	HordeAPIKey      string
	LogMode          string
	RateLimit        int
	AIRateLimit      int
	OutlineCacheTTL  time.Duration
	TLSCert          string
	TLSKey           string
	MaxUploadBytes   int64
	ClaudeMaxRetries int
	ShutdownTimeout  time.Duration
	DraftTimeout     time.Duration
}

// LoadConfig reads the server configuration from the environment.
func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:             getEnvAsInt("PORT", 5000, log),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "sqlite", log),
		DatabaseDSN:      getEnv("DATABASE_DSN", "bookforge.db", log),
		JWTSecret:        getEnv("JWT_SECRET", "", log),
		JWTTTL:           time.Duration(getEnvAsInt("JWT_TTL_HOURS", 168, log)) * time.Hour,
		UploadsDir:       getEnv("UPLOADS_DIR", "uploads", log),
		ClaudeAPIKey:     getEnv("CLAUDE_API_KEY", "", log),
		HordeAPIKey:      getEnv("HORDE_API_KEY", "", log),
		LogMode:          getEnv("LOG_MODE", "", log),
		RateLimit:        getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100, log),
		AIRateLimit:      getEnvAsInt("AI_RATE_LIMIT_PER_MINUTE", 10, log),
		OutlineCacheTTL:  time.Duration(getEnvAsInt("OUTLINE_CACHE_MINUTES", 60, log)) * time.Minute,
		TLSCert:          getEnv("TLS_CERT", "", log),
		TLSKey:           getEnv("TLS_KEY", "", log),
		MaxUploadBytes:   int64(getEnvAsInt("MAX_UPLOAD_MB", 5, log)) << 20,
		ClaudeMaxRetries: 3,
		ShutdownTimeout:  10 * time.Second,
		DraftTimeout:     time.Duration(getEnvAsInt("DRAFT_TIMEOUT_MINUTES", 30, log)) * time.Minute,
	}
}

func getEnv(key, defaultVal string, log *logger.Logger) string {
	log = logger.OrNop(log).With("env_var", key)
	val, ok := os.LookupEnv(key)
	if !ok {
		log.Debug("environment variable not found, using default", "default", defaultVal)
		return defaultVal
	}
	log.Debug("environment variable found")
	return val
}

func getEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	log = logger.OrNop(log).With("env_var", key)
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		log.Warn("environment variable is not an int, using default", "value", valStr, "default", defaultVal)
		return defaultVal
	}
	return i
}
