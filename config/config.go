package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage: "memory" keeps everything in-process, "mongo" uses DATABASE_URL.
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration. An empty address disables caching and reminders.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	MatchCacheTTL time.Duration `mapstructure:"MATCH_CACHE_TTL"`
	ReminderLead  time.Duration `mapstructure:"REMINDER_LEAD"`

	// Payments.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CMIGatewayURL       string `mapstructure:"CMI_GATEWAY_URL"`
	BankRIB             string `mapstructure:"BANK_RIB"`

	// Google / Firebase.
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	FirebaseCredentialsFile  string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Cloudinary.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Photo storage: "cloudinary" or "gcs". Empty disables photo uploads.
	PhotoStore    string `mapstructure:"PHOTO_STORE"`
	StorageBucket string `mapstructure:"STORAGE_BUCKET"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Every key needs a default so that Unmarshal picks up its environment variable.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_TTL", "72h")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("STORE_DRIVER", "memory")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "m3allem")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("MATCH_CACHE_TTL", "5m")
	viper.SetDefault("REMINDER_LEAD", "1h")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("CMI_GATEWAY_URL", "https://payment.cmi.co.ma/fim/est3Dgate")
	viper.SetDefault("BANK_RIB", "")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("PHOTO_STORE", "cloudinary")
	viper.SetDefault("STORAGE_BUCKET", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

func UseMongo() bool {
	return AppConfig.StoreDriver == "mongo"
}
