package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Redis (session snapshot cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka (reminder dispatch)
	KafkaBrokers       []string
	KafkaReminderTopic string
	RemindersViaKafka  bool

	// Cohort defaults
	DefaultCohortSize int
	MaxCohortSize     int
	UnitVisitValue    float64
	HighRiskLeadDays  int
	ProfilePath       string

	// Sessions
	SessionTTL          time.Duration
	SessionCacheEnabled bool
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaReminderTopic: getEnv("KAFKA_REMINDER_TOPIC", "mediinsight.reminders"),
		RemindersViaKafka:  getBoolEnv("REMINDERS_VIA_KAFKA", false),

		DefaultCohortSize: getIntEnv("DEFAULT_COHORT_SIZE", 500),
		MaxCohortSize:     getIntEnv("MAX_COHORT_SIZE", 50000),
		UnitVisitValue:    getFloatEnv("UNIT_VISIT_VALUE", 150),
		HighRiskLeadDays:  getIntEnv("HIGH_RISK_LEAD_DAYS", 5),
		ProfilePath:       getEnv("COHORT_PROFILE_PATH", ""),

		SessionTTL:          getDuration("SESSION_TTL", 12*time.Hour),
		SessionCacheEnabled: getBoolEnv("SESSION_CACHE_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
