package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config is the top-level messwatch configuration.
type Config struct {
	Database   Database   `mapstructure:"database"`
	Timezone   string     `mapstructure:"timezone"`
	Classifier Classifier `mapstructure:"classifier"`
	Limits     Limits     `mapstructure:"limits"`
	Server     Server     `mapstructure:"server"`
	Output     Output     `mapstructure:"output"`
	LogLevel   string     `mapstructure:"log_level"`
}

// Database selects and addresses the feedback source.
type Database struct {
	// Driver is mongodb, sqlite or postgres.
	Driver string `mapstructure:"driver"`

	// URI and Name address MongoDB.
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`

	// Path is the SQLite file.
	Path string `mapstructure:"path"`

	// DSN is the PostgreSQL connection string.
	DSN string `mapstructure:"dsn"`

	Timeout time.Duration `mapstructure:"timeout"`
}

// Classifier configures comment classification.
type Classifier struct {
	Mode string `mapstructure:"mode"`
}

// Limits caps narrative list lengths.
type Limits struct {
	Insights        int `mapstructure:"insights"`
	Actions         int `mapstructure:"actions"`
	Alerts          int `mapstructure:"alerts"`
	Recommendations int `mapstructure:"recommendations"`
	Issues          int `mapstructure:"issues"`
	Highlights      int `mapstructure:"highlights"`
	MealComments    int `mapstructure:"meal_comments"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies MESSWATCH_* environment overrides and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.driver", DefaultDatabase.Driver)
	v.SetDefault("database.uri", DefaultDatabase.URI)
	v.SetDefault("database.name", DefaultDatabase.Name)
	v.SetDefault("database.path", DefaultDatabase.Path)
	v.SetDefault("database.dsn", DefaultDatabase.DSN)
	v.SetDefault("database.timeout", DefaultDatabase.Timeout)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("classifier.mode", DefaultClassifierMode)
	v.SetDefault("limits.insights", DefaultLimits.Insights)
	v.SetDefault("limits.actions", DefaultLimits.Actions)
	v.SetDefault("limits.alerts", DefaultLimits.Alerts)
	v.SetDefault("limits.recommendations", DefaultLimits.Recommendations)
	v.SetDefault("limits.issues", DefaultLimits.Issues)
	v.SetDefault("limits.highlights", DefaultLimits.Highlights)
	v.SetDefault("limits.meal_comments", DefaultLimits.MealComments)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.allowed_origins", DefaultServer.AllowedOrigins)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Deployments of the feedback portal export MONGODB_URI.
	if err := v.BindEnv("database.uri", EnvPrefix+"_DATABASE_URI", "MONGODB_URI"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mongodb", "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	switch c.Classifier.Mode {
	case "presence", "mentions":
	default:
		return fmt.Errorf("classifier.mode: unsupported mode %q", c.Classifier.Mode)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// DBPath returns the full path to the default SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
