package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// JWT Configuration
	JWTSecret string
	AuthUsers map[string]string // username -> plain password, hashed at start-up
	// Storage
	StoreDriver string // memory, sqlite or postgres
	SQLitePath  string
	PostgresDSN string
	// Custody rules
	ContainerTickInterval   time.Duration
	TemperatureTickInterval time.Duration
	PickupWindow            time.Duration
	NearExpiryWindow        time.Duration
	MaxVersionRetries       int
	// Temperature thresholds
	TempMaxC       float64
	TempMinC       float64
	HumidityMaxPct float64
	HumidityMinPct float64
	SimulateSensor bool
	SensorUnits    []string
	// Rooms
	RoomsFile      string
	RoomCapacities string // room:capacity,room:capacity
	// Redis Configuration (optional - for alert listing cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int  // Cache TTL in seconds
	UseCache      bool // Whether to use cache (Redis) or not
	// Kafka Configuration
	UseKafka               bool
	KafkaBrokers           []string
	KafkaTopicContainers   string
	KafkaTopicReservations string
	KafkaTopicMonitoring   string
	KafkaClientID          string
	KafkaGroupID           string
	KafkaAcks              string
	KafkaRetries           int
	// Listener processing
	MaxRetries      int
	RetryDelayMs    int
	DeadLetterQueue bool
	DLQTopic        string
	ListenerPort    string
	// HTTP
	RateLimitPerMinute int
	// Archive (optional)
	ArchiveCron       string
	ArchiveS3Bucket   string
	ArchiveS3Region   string
	ArchiveS3Endpoint string
	// Push notifications (optional)
	FCMCredentialsFile string
	FCMTopic           string
}

func Load() *Config {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		// JWT Configuration
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),
		AuthUsers: ParsePairs(getEnv("AUTH_USERS", "admin:admin123,nurse:nurse123")),
		// Storage
		StoreDriver: getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", "./lactacare.db"),
		PostgresDSN: getEnv("POSTGRES_DSN", "postgres://localhost/lactacare?sslmode=disable"),
		// Custody rules
		ContainerTickInterval:   getEnvAsDuration("CONTAINER_TICK_INTERVAL", time.Minute),
		TemperatureTickInterval: getEnvAsDuration("TEMPERATURE_TICK_INTERVAL", 30*time.Second),
		PickupWindow:            time.Duration(getEnvAsInt("PICKUP_WINDOW_HOURS", 24)) * time.Hour,
		NearExpiryWindow:        time.Duration(getEnvAsInt("NEAR_EXPIRY_WINDOW_HOURS", 48)) * time.Hour,
		MaxVersionRetries:       getEnvAsInt("MAX_VERSION_RETRIES", 3),
		// Temperature thresholds
		TempMaxC:       getEnvAsFloat("TEMP_MAX_C", 6.0),
		TempMinC:       getEnvAsFloat("TEMP_MIN_C", 1.0),
		HumidityMaxPct: getEnvAsFloat("HUMIDITY_MAX_PCT", 95),
		HumidityMinPct: getEnvAsFloat("HUMIDITY_MIN_PCT", 70),
		SimulateSensor: getEnvAsBool("SIMULATE_SENSORS", false),
		SensorUnits:    splitList(getEnv("SENSOR_UNITS", "fridge-1,freezer-1")),
		// Rooms
		RoomsFile:      getEnv("ROOMS_FILE", ""),
		RoomCapacities: getEnv("ROOM_CAPACITIES", "sala-1:2,sala-2:3"),
		// Redis Configuration (optional)
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 30),
		UseCache:      getEnvAsBool("USE_CACHE", false),
		// Kafka Configuration (optional)
		UseKafka:               getEnvAsBool("USE_KAFKA", false),
		KafkaBrokers:           splitList(getEnv("KAFKA_BROKERS", "localhost:9093")),
		KafkaTopicContainers:   getEnv("KAFKA_TOPIC_CONTAINERS", "lactacare.containers"),
		KafkaTopicReservations: getEnv("KAFKA_TOPIC_RESERVATIONS", "lactacare.reservations"),
		KafkaTopicMonitoring:   getEnv("KAFKA_TOPIC_MONITORING", "lactacare.monitoring"),
		KafkaClientID:          getEnv("KAFKA_CLIENT_ID", "lactacare-api"),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "lactacare-listener"),
		KafkaAcks:              getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:           getEnvAsInt("KAFKA_RETRIES", 3),
		// Listener processing
		MaxRetries:      getEnvAsInt("MAX_RETRIES", 3),
		RetryDelayMs:    getEnvAsInt("RETRY_DELAY_MS", 100),
		DeadLetterQueue: getEnvAsBool("DEAD_LETTER_QUEUE", true),
		DLQTopic:        getEnv("DLQ_TOPIC", "lactacare.dlq"),
		ListenerPort:    getEnv("LISTENER_PORT", "8081"),
		// HTTP
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 600),
		// Archive
		ArchiveCron:       getEnv("ARCHIVE_CRON", "0 3 * * *"),
		ArchiveS3Bucket:   getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchiveS3Region:   getEnv("ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Endpoint: getEnv("ARCHIVE_S3_ENDPOINT", ""),
		// Push notifications
		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
		FCMTopic:           getEnv("FCM_TOPIC", "lactario-staff"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := time.ParseDuration(value)
	if err != nil || result <= 0 {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParsePairs parses "a:1,b:2" into a map, skipping malformed entries
func ParsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, item := range splitList(s) {
		key, value, ok := strings.Cut(item, ":")
		if !ok || key == "" {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}
