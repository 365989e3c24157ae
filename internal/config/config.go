package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Media    MediaConfig    `mapstructure:"media"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig holds the event store location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MediaConfig holds where attached files are copied to
type MediaConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig holds the local API settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, an optional config.yaml in path or
// ~/.timelines, and TIMELINES_* environment variables, in increasing priority.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(HomeDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("TIMELINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// HomeDir is the default location of the database, media and config file
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".timelines")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(HomeDir(), "timelines.db"))
	v.SetDefault("media.dir", filepath.Join(HomeDir(), "media"))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
