package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ProviderConfig struct {
	BaseURL     string
	TokenURL    string
	APIKey      string
	HTTPTimeout time.Duration
}

type BackendConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
}

type SessionConfig struct {
	// Backend selects the durable session store: "sqlite" or "redis".
	Backend            string
	SQLitePath         string
	RedisURL           string
	RevalidateInterval time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Provider         ProviderConfig
	Backend          BackendConfig
	Session          SessionConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("STUDYHUB")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("provider.baseurl", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("provider.tokenurl", "https://securetoken.googleapis.com/v1/token")
	v.SetDefault("provider.httptimeout", "15s")

	v.SetDefault("backend.baseurl", "http://localhost:5000/api")
	v.SetDefault("backend.httptimeout", "15s")

	v.SetDefault("session.backend", "sqlite")
	v.SetDefault("session.sqlitepath", "data/session.db")
	v.SetDefault("session.revalidateinterval", "0")
}
