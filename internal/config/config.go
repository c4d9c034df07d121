package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseDSN    string `env:"DATABASE_URI"`
	MigrationsDir  string `env:"MIGRATIONS_DIR"`
	JWTUserSecret  string `env:"JWT_USER_SECRET"`
	AdminToken     string `env:"ADMIN_TOKEN"`
	PromptPayID    string `env:"PROMPTPAY_ID"`
	MaxTopupAmount string `env:"MAX_TOPUP_AMOUNT"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, в проде переменные приходят из окружения.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.PromptPayID == "" {
		return nil, errors.New("promptpay id is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	flag.StringVar(&flagConfig.JWTUserSecret, "j", "", "JWT secret for user tokens")
	flag.StringVar(&flagConfig.AdminToken, "t", "", "Operator token for admin routes")
	flag.StringVar(&flagConfig.PromptPayID, "p", "", "PromptPay payee identifier (phone, national id or e-wallet)")
	flag.StringVar(&flagConfig.MaxTopupAmount, "max", "100000", "Maximum topup amount in THB")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	return &Config{
		RunAddress:     defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress),
		DatabaseDSN:    defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		MigrationsDir:  defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir),
		JWTUserSecret:  defaultIfBlank(envConfig.JWTUserSecret, flagsConfig.JWTUserSecret),
		AdminToken:     defaultIfBlank(envConfig.AdminToken, flagsConfig.AdminToken),
		PromptPayID:    defaultIfBlank(envConfig.PromptPayID, flagsConfig.PromptPayID),
		MaxTopupAmount: defaultIfBlank(envConfig.MaxTopupAmount, flagsConfig.MaxTopupAmount),
	}
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
