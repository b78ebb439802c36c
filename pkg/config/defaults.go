// Package config provides centralized default values for FlipKraft
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Session Cache Configuration
	MaxSessions     int
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// Database Configuration
	DBDriver                 string
	DBPath                   string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// SSE Configuration
	MaxSessionConnections       int
	SSEHeartbeatIntervalSeconds int

	// Dashboard Websocket
	DashboardTickInterval time.Duration

	// Collaborator Configuration
	KnowledgeBasePath   string
	EngagementConfigPath string
	GeminiAPIKey        string
	GeminiModel         string
	AnswerTimeout       time.Duration

	// Admin / Auth
	JWTSecret         string
	AdminPasswordHash string
	TokenTTL          time.Duration

	// Lead Notifications
	SalesNotifyEmail string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Session Cache
	MaxSessions = getEnvInt("MAX_SESSIONS", 5000)
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 4)) * time.Hour
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "leads.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// SSE
	MaxSessionConnections = getEnvInt("MAX_SESSION_CONNECTIONS", 3)
	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)

	// Dashboard Websocket
	DashboardTickInterval = getEnvDuration("DASHBOARD_TICK_INTERVAL", 15*time.Second)

	// Collaborators
	KnowledgeBasePath = getEnvString("KNOWLEDGE_BASE_PATH", "KnowledgeBase/kb.json")
	EngagementConfigPath = getEnvString("ENGAGEMENT_CONFIG_PATH", "config/engagement.json")
	GeminiAPIKey = getEnvString("GEMINI_API_KEY", "")
	GeminiModel = getEnvString("GEMINI_MODEL", "gemini-2.5-flash")
	AnswerTimeout = getEnvDuration("ANSWER_TIMEOUT", 30*time.Second)

	// Admin / Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	// Lead Notifications
	SalesNotifyEmail = getEnvString("SALES_NOTIFY_EMAIL", "")
}
