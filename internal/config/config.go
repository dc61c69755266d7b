package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Wheel     WheelConfig
	Scheduler SchedulerConfig
	Rewards   RewardsConfig
	Mail      MailConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// WheelConfig holds instant-win wheel configuration
type WheelConfig struct {
	CooldownMinutes int
}

// SchedulerConfig holds draw scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes  int
	CancelGraceHours int
}

// RewardsConfig holds the earning-source amounts
type RewardsConfig struct {
	WelcomeBonus        int64
	ReferralBonus       int64
	RefereeBonus        int64
	DailyBonusBase      int64
	DailyBonusPerStreak int64
	DailyBonusMax       int64
	DailyAdLimit        int64
	TaskExperience      int64
	SurveyExperience    int64
	AdExperience        int64
}

// MailConfig holds winner-notification email configuration
type MailConfig struct {
	MockMailer bool
	SMTPHost   string
	SMTPPort   int
	Username   string
	Password   string
	From       string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; environment variables cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "prize-platform")
	viper.SetDefault("JWT.Secret", "change-me")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60)
	viper.SetDefault("Wheel.CooldownMinutes", 60)
	viper.SetDefault("Scheduler.IntervalMinutes", 60)
	viper.SetDefault("Scheduler.CancelGraceHours", 72)
	viper.SetDefault("Rewards.WelcomeBonus", 10)
	viper.SetDefault("Rewards.ReferralBonus", 20)
	viper.SetDefault("Rewards.RefereeBonus", 10)
	viper.SetDefault("Rewards.DailyBonusBase", 2)
	viper.SetDefault("Rewards.DailyBonusPerStreak", 1)
	viper.SetDefault("Rewards.DailyBonusMax", 10)
	viper.SetDefault("Rewards.DailyAdLimit", 20)
	viper.SetDefault("Rewards.TaskExperience", 10)
	viper.SetDefault("Rewards.SurveyExperience", 15)
	viper.SetDefault("Rewards.AdExperience", 5)
	viper.SetDefault("Mail.MockMailer", true)
	viper.SetDefault("Mail.SMTPPort", 587)
	viper.SetDefault("Mail.From", "draws@prize-platform.local")
	viper.SetDefault("LogLevel", "info")
}
