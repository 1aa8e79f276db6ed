package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/ahinestrog/railway/internal/station"
)

type Config struct {
	DataDir  string   `toml:"data_dir"`
	Stations []string `toml:"stations"`
	Driver   string   `toml:"sqlite_driver"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	CacheSize   int    `toml:"cache_size"`
	MetricsFile string `toml:"metrics_file"`

	// Events are disabled while RabbitURL is empty.
	RabbitURL      string `toml:"rabbitmq_url"`
	EventsExchange string `toml:"events_exchange"`
}

func Default() Config {
	return Config{
		DataDir:        "./data",
		Stations:       []string{"station1.db", "station2.db"},
		Driver:         station.DriverModernc,
		LogLevel:       "info",
		LogFormat:      "console",
		CacheSize:      128,
		EventsExchange: "railway.events",
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then a .env file and the environment.
// Callers apply their own overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.DataDir = getenv("RAILWAY_DATA_DIR", cfg.DataDir)
	if v := os.Getenv("RAILWAY_STATIONS"); v != "" {
		cfg.Stations = splitList(v)
	}
	cfg.Driver = getenv("RAILWAY_SQLITE_DRIVER", cfg.Driver)
	cfg.LogLevel = getenv("RAILWAY_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("RAILWAY_LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsFile = getenv("RAILWAY_METRICS_FILE", cfg.MetricsFile)
	cfg.RabbitURL = getenv("RABBITMQ_URL", cfg.RabbitURL)
	cfg.EventsExchange = getenv("RAILWAY_EVENTS_EXCHANGE", cfg.EventsExchange)
	if v := os.Getenv("RAILWAY_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("RAILWAY_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = n
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Stations) == 0 {
		return errors.New("config: at least one station is required")
	}
	seen := map[string]bool{}
	for _, s := range c.Stations {
		if s == "" {
			return errors.New("config: empty station name")
		}
		if seen[s] {
			return fmt.Errorf("config: duplicate station %q", s)
		}
		seen[s] = true
	}
	if !station.ValidDriver(c.Driver) {
		return fmt.Errorf("config: unknown sqlite driver %q", c.Driver)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config: cache size must be >= 0, got %d", c.CacheSize)
	}
	return nil
}

// Stores opens nothing; it only names the station stores in scan order.
func (c Config) Stores() []*station.Store {
	out := make([]*station.Store, 0, len(c.Stations))
	for _, name := range c.Stations {
		out = append(out, station.New(c.DataDir, name, c.Driver))
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
