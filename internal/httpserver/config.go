package httpserver

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the HTTP server's runtime configuration.
type Config struct {
	Addr        string
	LogLevel    string
	DefaultSeed int64
}

// LoadConfig resolves a Config from (in priority order) a
// HYBRIDSIM_-prefixed environment variable, an optional config file, then a
// built-in default — viper's standard layered resolution. No command-line
// flags are bound; the caller's --config flag only names the config file.
func LoadConfig(configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HYBRIDSIM")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("default_seed", int64(1))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("httpserver: read config file %s: %w", configFile, err)
		}
	}

	return Config{
		Addr:        v.GetString("addr"),
		LogLevel:    v.GetString("log_level"),
		DefaultSeed: v.GetInt64("default_seed"),
	}, nil
}
