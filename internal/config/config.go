package config

import "os"

type MotorQuoteConfig struct {
	Port          string
	PostgresCfg   PostgresConfig
	RedisCfg      RedisConfig
	MinioCfg      MinioConfig
	RabbitMQCfg   RabbitMQConfig
	VehicleAPICfg VehicleAPIConfig
	AddressAPICfg AddressAPIConfig
	InsurerAPICfg InsurerAPIConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

// VehicleAPIConfig points at the registration lookup provider.
type VehicleAPIConfig struct {
	BaseURL string
	APIKey  string
}

// AddressAPIConfig points at the address suggestion/validation provider.
type AddressAPIConfig struct {
	BaseURL string
	APIKey  string
}

// InsurerAPIConfig points at the external quote submission API.
type InsurerAPIConfig struct {
	BaseURL string
	APIKey  string
}

func New() *MotorQuoteConfig {
	return &MotorQuoteConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "motor_quote"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "ap-southeast-2"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		VehicleAPICfg: VehicleAPIConfig{
			BaseURL: getEnvOrDefault("VEHICLE_API_URL", "https://api.bluefla.me/vehicle/v2"),
			APIKey:  getEnvOrDefault("VEHICLE_API_KEY", ""),
		},
		AddressAPICfg: AddressAPIConfig{
			BaseURL: getEnvOrDefault("ADDRESS_API_URL", "https://kleber.datatoolscloud.net.au/KleberWebService"),
			APIKey:  getEnvOrDefault("ADDRESS_API_KEY", ""),
		},
		InsurerAPICfg: InsurerAPIConfig{
			BaseURL: getEnvOrDefault("INSURER_API_URL", "https://quote.partner-insurer.com.au/api/v1"),
			APIKey:  getEnvOrDefault("INSURER_API_KEY", ""),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
