package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort string

	// Variant selects the deployment behavior: base, dbe or hh.
	Variant string

	EventStoreURL   string
	EventStoreToken string
	HTTPRetries     int

	GooglePlacesAPIKey string

	MongoURI  string
	RedisAddr string

	WebhookJWTSecret string

	StudyMessageDelay time.Duration

	LookupDir string
}

func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		Variant:            getEnv("DEPLOYMENT_VARIANT", "base"),
		EventStoreURL:      os.Getenv("EVENTSTORE_URL"),
		EventStoreToken:    os.Getenv("EVENTSTORE_TOKEN"),
		HTTPRetries:        getEnvInt("HTTP_RETRIES", 3),
		GooglePlacesAPIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		WebhookJWTSecret:   os.Getenv("WEBHOOK_JWT_SECRET"),
		StudyMessageDelay:  time.Duration(getEnvInt("STUDY_A_MESSAGE_DELAY", 120)) * time.Second,
		LookupDir:          getEnv("LOOKUP_DIR", "data/lookup_tables"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
