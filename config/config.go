package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB      int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB       int    `mapstructure:"REDIS_LOCK_DB"`
	RedisSweepQueueDB int    `mapstructure:"REDIS_SWEEP_QUEUE_DB"`

	// Stripe checkout.
	StripeKey          string `mapstructure:"STRIPE_KEY"`
	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL"`
	Currency           string `mapstructure:"CURRENCY"`

	// Slot scheduling window.
	SlotDaysAhead       int  `mapstructure:"SLOT_DAYS_AHEAD"`
	SlotBucketMinutes   int  `mapstructure:"SLOT_BUCKET_MINUTES"`
	SlotDayStartMinute  int  `mapstructure:"SLOT_DAY_START_MINUTE"`
	SlotDayEndMinute    int  `mapstructure:"SLOT_DAY_END_MINUTE"`
	SlotExcludeWeekends bool `mapstructure:"SLOT_EXCLUDE_WEEKENDS"`
	SlotDefaultCapacity int  `mapstructure:"SLOT_DEFAULT_CAPACITY"`

	// Pricing.
	TaxRatePercent float64 `mapstructure:"TAX_RATE_PERCENT"`
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

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_SWEEP_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/collection/checkout/return")
	viper.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/collection/checkout/cancelled")
	viper.SetDefault("SLOT_DAYS_AHEAD", 14)
	viper.SetDefault("SLOT_BUCKET_MINUTES", 120)
	viper.SetDefault("SLOT_DAY_START_MINUTE", 480) // 8:00 AM
	viper.SetDefault("SLOT_DAY_END_MINUTE", 1020)  // 5:00 PM
	viper.SetDefault("SLOT_EXCLUDE_WEEKENDS", true)
	viper.SetDefault("SLOT_DEFAULT_CAPACITY", 4)
	viper.SetDefault("TAX_RATE_PERCENT", 3.0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SlotConfig is the slot-generation window handed to the scheduling service.
type SlotConfig struct {
	DaysAhead       int
	BucketMinutes   int
	DayStartMinute  int
	DayEndMinute    int
	ExcludeWeekends bool
	DefaultCapacity int
}

// SlotSettings returns the slot window derived from the loaded config.
func SlotSettings() SlotConfig {
	return SlotConfig{
		DaysAhead:       AppConfig.SlotDaysAhead,
		BucketMinutes:   AppConfig.SlotBucketMinutes,
		DayStartMinute:  AppConfig.SlotDayStartMinute,
		DayEndMinute:    AppConfig.SlotDayEndMinute,
		ExcludeWeekends: AppConfig.SlotExcludeWeekends,
		DefaultCapacity: AppConfig.SlotDefaultCapacity,
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
