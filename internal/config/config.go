package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	CoinloreURL         string // ticker feed base URL; default public Coinlore API
	TickerBatchLimit    int    // page size for the batch ticker call
	RefreshSchedule     string // cron spec for the periodic portfolio refresh; empty disables it
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	coinloreURL := viper.GetString("COINLORE_URL")
	if coinloreURL == "" {
		coinloreURL = "https://api.coinlore.net/api"
	}
	limit := viper.GetInt("TICKER_BATCH_LIMIT")
	if limit <= 0 {
		limit = 100
	}
	schedule := viper.GetString("REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = "@every 10m"
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		RedisURL:            viper.GetString("REDIS_URL"),
		CoinloreURL:         coinloreURL,
		TickerBatchLimit:    limit,
		RefreshSchedule:     schedule,
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
	}, nil
}
