// Package config loads the skyalert configuration from a TOML file,
// applies defaults, merges secrets from the environment and validates
// the result. The CLI surface (postcode, radius, favourites) overrides
// the file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
type Config struct {
	Monitor       MonitorConfig       `toml:"monitor"`       // Polling loop settings
	ADSB          ADSBConfig          `toml:"adsb"`          // Aircraft state source settings
	Geocode       GeocodeConfig       `toml:"geocode"`       // Postcode resolution settings
	Notifications NotificationsConfig `toml:"notifications"` // Push notification settings
	Server        ServerConfig        `toml:"server"`        // Status API settings
	Logging       LoggingConfig       `toml:"logging"`       // Application logging settings
}

// MonitorConfig contains the polling loop configuration
type MonitorConfig struct {
	Postcode       string  `toml:"postcode"`         // Monitored ground location (usually set via CLI)
	RadiusKm       float64 `toml:"radius_km"`        // Alert radius around the monitored point in km
	IntervalSecs   int     `toml:"interval_seconds"` // Seconds between polling cycles
	FavouritesPath string  `toml:"favourites_path"`  // Optional favourites file (one token per line)

	// Bounding box sent to the state provider. Covers the whole service
	// region on purpose; radius filtering is client-side.
	BBoxLatMin float64 `toml:"bbox_lamin"`
	BBoxLatMax float64 `toml:"bbox_lamax"`
	BBoxLonMin float64 `toml:"bbox_lomin"`
	BBoxLonMax float64 `toml:"bbox_lomax"`
}

// ADSBConfig contains the OpenSky state source configuration
type ADSBConfig struct {
	BaseURL             string `toml:"base_url"`                // API base URL (empty = public OpenSky)
	TokenURL            string `toml:"token_url"`               // OAuth2 token endpoint (empty = OpenSky default)
	RequestTimeoutSecs  int    `toml:"request_timeout_seconds"` // HTTP timeout per state fetch
	ClientID            string `toml:"-"`                       // From OPENSKY_CLIENT_ID
	ClientSecret        string `toml:"-"`                       // From OPENSKY_CLIENT_SECRET
	TrackingURLTemplate string `toml:"tracking_url_template"`   // Alert link, %s = identifier
}

// GeocodeConfig contains the postcode resolution configuration
type GeocodeConfig struct {
	BaseURL            string `toml:"base_url"`                // API base URL (empty = public postcodes.io)
	RequestTimeoutSecs int    `toml:"request_timeout_seconds"` // HTTP timeout per lookup
}

// NotificationsConfig contains push notification configuration.
// Credentials come from the environment; notifications are silently
// skipped when the token or user key is absent.
type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Title   string `toml:"title"` // Notification title
	Token   string `toml:"-"`     // From PUSHOVER_TOKEN
	UserKey string `toml:"-"`     // From PUSHOVER_USER
}

// ServerConfig contains the status HTTP API configuration
type ServerConfig struct {
	Enabled          bool   `toml:"enabled"`
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"`
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", or "error"
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // Persistent log file path ("" disables)
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			RadiusKm:     15,
			IntervalSecs: 120,
			// UK-wide coverage, matching the service's home region
			BBoxLatMin: 49.5,
			BBoxLatMax: 61.0,
			BBoxLonMin: -9.0,
			BBoxLonMax: 2.0,
		},
		ADSB: ADSBConfig{
			RequestTimeoutSecs:  15,
			TrackingURLTemplate: "https://globe.adsbexchange.com/?icao=%s",
		},
		Geocode: GeocodeConfig{
			RequestTimeoutSecs: 10,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Title:   "Aircraft Alert",
		},
		Server: ServerConfig{
			Enabled:          true,
			Host:             "127.0.0.1",
			Port:             8090,
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 15,
			IdleTimeoutSecs:  60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "logs/skyalert.log",
		},
	}
}

// Load loads the configuration from the specified file path on top of
// the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple
// locations in order of preference. The CLI must work without any file,
// so when nothing is found the defaults are returned rather than an
// error.
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,
		"configs/config.toml",
		"config.toml",
	}

	for _, path := range searchPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			return config, nil
		}
		// A path the user asked for explicitly must exist.
		if path == preferredPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	}

	config := Default()
	config.applyEnv()
	return config, nil
}

// applyEnv merges secrets from the environment
func (c *Config) applyEnv() {
	c.ADSB.ClientID = os.Getenv("OPENSKY_CLIENT_ID")
	c.ADSB.ClientSecret = os.Getenv("OPENSKY_CLIENT_SECRET")
	c.Notifications.Token = os.Getenv("PUSHOVER_TOKEN")
	c.Notifications.UserKey = os.Getenv("PUSHOVER_USER")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Monitor.Postcode == "" {
		return fmt.Errorf("postcode is required")
	}
	if c.Monitor.RadiusKm <= 0 {
		return fmt.Errorf("invalid radius: %f km", c.Monitor.RadiusKm)
	}
	if c.Monitor.IntervalSecs <= 0 {
		return fmt.Errorf("invalid polling interval: %d", c.Monitor.IntervalSecs)
	}
	if c.Monitor.BBoxLatMin >= c.Monitor.BBoxLatMax {
		return fmt.Errorf("bbox_lamin must be less than bbox_lamax")
	}
	if c.Monitor.BBoxLonMin >= c.Monitor.BBoxLonMax {
		return fmt.Errorf("bbox_lomin must be less than bbox_lomax")
	}

	if c.ADSB.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("invalid adsb request timeout: %d", c.ADSB.RequestTimeoutSecs)
	}
	if c.ADSB.TrackingURLTemplate == "" {
		return fmt.Errorf("tracking_url_template cannot be empty")
	}
	if c.Geocode.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("invalid geocode request timeout: %d", c.Geocode.RequestTimeoutSecs)
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", c.Server.Port)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
