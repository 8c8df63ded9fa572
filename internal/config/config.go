package config

import (
	"os"
	"strconv"
)

type Config struct {
	// HTTP
	HTTPPort string

	// MQTT
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string

	// Postgres
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int32

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Pipeline
	SaveQueueSize int

	// The wearable this deployment monitors; queries without an explicit
	// device fall back to this id.
	DefaultDeviceID string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "3000"),
		MQTTBroker:      getEnv("MQTT_BROKER", "tcp://broker.hivemq.com:1883"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "SeniorCare_Backend"),
		MQTTTopic:       getEnv("MQTT_TOPIC", "seniorcare/monitor/data"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "seniorcare_user"),
		DBPassword:      getEnv("DB_PASSWORD", "seniorcare_password"),
		DBName:          getEnv("DB_NAME", "seniorcare"),
		DBMaxConns:      int32(getEnvInt("DB_MAX_CONNS", 10)),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SaveQueueSize:   getEnvInt("SAVE_QUEUE_SIZE", 256),
		DefaultDeviceID: getEnv("DEFAULT_DEVICE_ID", "ESP32_SeniorCare_001"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
