// Package config provides configuration loading and defaults for messwatch.
package config

import "time"

// DefaultConfigDir is the default location for messwatch configuration.
const DefaultConfigDir = "~/.config/messwatch"

// DefaultDBName is the filename of the local SQLite database.
const DefaultDBName = "messwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. MESSWATCH_DATABASE_DRIVER.
const EnvPrefix = "MESSWATCH"

// DefaultDatabase uses the local SQLite file. The MongoDB settings apply
// once the driver is switched to mongodb.
var DefaultDatabase = Database{
	Driver:  "sqlite",
	URI:     "mongodb://localhost:27017/hostel-food-analysis",
	Path:    DefaultConfigDir + "/" + DefaultDBName,
	Timeout: 10 * time.Second,
}

// DefaultTimezone is where the mess operates; it defines calendar days.
const DefaultTimezone = "Asia/Kolkata"

// DefaultClassifierMode reports one finding per matched category.
const DefaultClassifierMode = "presence"

// DefaultLimits caps the narrative lists of each report.
var DefaultLimits = Limits{
	Insights:        4,
	Actions:         4,
	Alerts:          5,
	Recommendations: 5,
	Issues:          5,
	Highlights:      3,
	MealComments:    2,
}

// DefaultServer holds the HTTP defaults.
var DefaultServer = Server{
	Addr:           ":8080",
	AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}

// DefaultLogLevel is the logrus level used without --verbose.
const DefaultLogLevel = "info"
