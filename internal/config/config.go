// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Data struct {
		Path string `mapstructure:"path"` // Directory for favicons and other stored files
	} `mapstructure:"data"`
	Sync struct {
		Interval int    `mapstructure:"interval"`  // Minutes between scheduled syncs, 0 disables
		PageSize int    `mapstructure:"page_size"` // Items fetched per batch from the source
		Source   string `mapstructure:"source"`    // Registered source id, empty disables syncing
		FeedURL  string `mapstructure:"feed_url"`  // Endpoint for the jsonfeed source
	} `mapstructure:"sync"`
	SSE struct {
		PollIntervalMs      int `mapstructure:"poll_interval_ms"`
		HeartbeatIntervalMs int `mapstructure:"heartbeat_interval_ms"`
	} `mapstructure:"sse"`
	Backup struct {
		Path  string `mapstructure:"path"`
		Watch bool   `mapstructure:"watch"` // Watch the backup path for dropped import files
	} `mapstructure:"backup"`
}

// Defaults returns a Config populated with the same defaults Load uses,
// without touching the filesystem or environment. Handy for tests.
func Defaults() *Config {
	var c Config
	c.Port = 8080
	c.Database.Path = "./x-bookmarker.db"
	c.Data.Path = "./data"
	c.Sync.PageSize = 50
	c.SSE.PollIntervalMs = 1000
	c.SSE.HeartbeatIntervalMs = 30000
	c.Backup.Path = "./backups"
	return &c
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "XBM_" prefix.
	// e.g., XBM_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("XBM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./x-bookmarker.db")
	viper.SetDefault("data.path", "./data")
	viper.SetDefault("sync.interval", 0)
	viper.SetDefault("sync.page_size", 50)
	viper.SetDefault("sync.source", "")
	viper.SetDefault("sync.feed_url", "")
	viper.SetDefault("sse.poll_interval_ms", 1000)
	viper.SetDefault("sse.heartbeat_interval_ms", 30000)
	viper.SetDefault("backup.path", "./backups")
	viper.SetDefault("backup.watch", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
