package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"HelmetMonitorAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MQTT     MQTTConfig
	Notify   NotifyConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

// StorageConfig selects and configures the alert store. Backend "memory"
// keeps everything in-process and is intended for development and tests;
// "postgres" is the production store.
type StorageConfig struct {
	Backend         string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type MQTTConfig struct {
	Enabled        bool
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	TelemetryTopic string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

// NotifyConfig configures the outbound emergency channel. When disabled,
// dispatches are logged and reported as failed results without ever
// blocking alert persistence.
type NotifyConfig struct {
	Enabled      bool
	SlackToken   string
	SlackChannel string
	SendTimeout  time.Duration
}

type SecurityConfig struct {
	AuthEnabled        bool
	JWTSecret          string
	JWTExpirationHours int
	DeviceKeyHash      string
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level     logger.Level
	FilePath  string
	UseColors bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server:   loadServerConfig(),
		Storage:  loadStorageConfig(),
		MQTT:     loadMQTTConfig(),
		Notify:   loadNotifyConfig(),
		Security: loadSecurityConfig(),
		Logging:  loadLoggingConfig(),
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:         getEnv("STORAGE_BACKEND", "postgres"),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "helmet_admin"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "helmet_monitor"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Enabled:        getEnvAsBool("MQTT_ENABLED", false),
		Broker:         getEnv("MQTT_BROKER", "localhost"),
		Port:           getEnvAsInt("MQTT_PORT", 1883),
		ClientID:       getEnv("MQTT_CLIENT_ID", "helmet-backend"),
		Username:       getEnv("MQTT_USERNAME", ""),
		Password:       getEnv("MQTT_PASSWORD", ""),
		TelemetryTopic: getEnv("MQTT_TELEMETRY_TOPIC", "helmets/+/telemetry"),
		QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
		KeepAlive:      getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
		ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
		AutoReconnect:  getEnvAsBool("MQTT_AUTO_RECONNECT", true),
	}
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Enabled:      getEnvAsBool("NOTIFY_ENABLED", false),
		SlackToken:   getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannel: getEnv("SLACK_ALERT_CHANNEL", "#helmet-alerts"),
		SendTimeout:  getEnvAsDuration("NOTIFY_SEND_TIMEOUT", "10s"),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		AuthEnabled:        getEnvAsBool("AUTH_ENABLED", false),
		JWTSecret:          getEnv("JWT_SECRET", "helmet_monitor_secret_change_in_production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		DeviceKeyHash:      getEnv("DEVICE_KEY_HASH", ""),
		CORSAllowedOrigins: strings.Split(origins, ","),
		CORSAllowedMethods: strings.Split(methods, ","),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		FilePath:  getEnv("LOG_FILE_PATH", ""),
		UseColors: getEnvAsBool("LOG_USE_COLORS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Database,
		c.Storage.SSLMode,
	)
}

func (c *Config) Validate() error {
	var errors []string

	if c.Storage.Backend != "postgres" && c.Storage.Backend != "memory" {
		errors = append(errors, "STORAGE_BACKEND must be postgres or memory")
	}

	if c.Storage.Backend == "postgres" && c.Storage.Password == "" {
		errors = append(errors, "DB_PASSWORD cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.MQTT.Enabled && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if c.Notify.Enabled && c.Notify.SlackToken == "" {
		errors = append(errors, "SLACK_BOT_TOKEN cannot be empty when NOTIFY_ENABLED is true")
	}

	if c.Security.AuthEnabled && c.Security.DeviceKeyHash == "" {
		errors = append(errors, "DEVICE_KEY_HASH cannot be empty when AUTH_ENABLED is true")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║           Helmet Monitor - Configuration                 ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Storage:         %s", c.Storage.Backend)
	if c.Storage.Backend == "postgres" {
		fmt.Printf(" (%s:%d/%s)", c.Storage.Host, c.Storage.Port, c.Storage.Database)
	}
	fmt.Println()
	if c.MQTT.Enabled {
		fmt.Printf("MQTT Broker:     %s:%d\n", c.MQTT.Broker, c.MQTT.Port)
	}
	fmt.Printf("Notifications:   enabled=%v channel=%s\n", c.Notify.Enabled, c.Notify.SlackChannel)
	fmt.Println("──────────────────────────────────────────────────────────")
}
