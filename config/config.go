package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Auth         Auth
	Redis        Redis
	RabbitMQ     RabbitMQ
	SkillTest    SkillTest
	Log          Log
	GeminiApiKey string `json:"-"`
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string `json:"-"`
	Name     string
	SSLMode  string
}

type Auth struct {
	JWTSecret string `json:"-"`
}

type Redis struct {
	Addr     string
	Password string `json:"-"`
	DB       int
	// PremiumTTL bounds how long a cached premium flag is trusted.
	PremiumTTL time.Duration
}

type RabbitMQ struct {
	URL      string `json:"-"`
	Exchange string
}

// SkillTest holds the knobs of the proctored assessment engine.
type SkillTest struct {
	FreeAttemptLimit   int
	ViolationThreshold int
	PassPercentage     float64
	// SubmitGrace is added to an attempt's time limit before a submission
	// is considered late and the attempt is reaped.
	SubmitGrace    time.Duration
	ReaperSchedule string
}

type Log struct {
	Level  string
	Pretty bool
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_PREMIUM_TTL", "5m")
	viper.SetDefault("RABBITMQ_EXCHANGE", "skilltest.events")
	viper.SetDefault("SKILLTEST_FREE_ATTEMPT_LIMIT", 2)
	viper.SetDefault("SKILLTEST_VIOLATION_THRESHOLD", 3)
	viper.SetDefault("SKILLTEST_PASS_PERCENTAGE", 60.0)
	viper.SetDefault("SKILLTEST_SUBMIT_GRACE", "2m")
	viper.SetDefault("SKILLTEST_REAPER_SCHEDULE", "@every 1m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.PremiumTTL = viper.GetDuration("REDIS_PREMIUM_TTL")

	config.RabbitMQ.URL = viper.GetString("RABBITMQ_URL")
	config.RabbitMQ.Exchange = viper.GetString("RABBITMQ_EXCHANGE")

	config.SkillTest.FreeAttemptLimit = viper.GetInt("SKILLTEST_FREE_ATTEMPT_LIMIT")
	config.SkillTest.ViolationThreshold = viper.GetInt("SKILLTEST_VIOLATION_THRESHOLD")
	config.SkillTest.PassPercentage = viper.GetFloat64("SKILLTEST_PASS_PERCENTAGE")
	config.SkillTest.SubmitGrace = viper.GetDuration("SKILLTEST_SUBMIT_GRACE")
	config.SkillTest.ReaperSchedule = viper.GetString("SKILLTEST_REAPER_SCHEDULE")

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.Pretty = viper.GetBool("LOG_PRETTY")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}

// Default returns the configuration used when no environment is present.
// Tests build on it.
func Default() *Config {
	return &Config{
		Server: Server{Port: "8080"},
		SkillTest: SkillTest{
			FreeAttemptLimit:   2,
			ViolationThreshold: 3,
			PassPercentage:     60,
			SubmitGrace:        2 * time.Minute,
			ReaperSchedule:     "@every 1m",
		},
		Redis: Redis{PremiumTTL: 5 * time.Minute},
		Log:   Log{Level: "info"},
	}
}
