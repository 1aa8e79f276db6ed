package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RAILWAY_DATA_DIR", "RAILWAY_STATIONS", "RAILWAY_SQLITE_DRIVER", "RAILWAY_LOG_LEVEL",
		"RAILWAY_LOG_FORMAT", "RAILWAY_METRICS_FILE", "RABBITMQ_URL", "RAILWAY_EVENTS_EXCHANGE",
		"RAILWAY_CACHE_SIZE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("got %+v, want defaults %+v", cfg, Default())
	}
	stores := cfg.Stores()
	if len(stores) != 2 || stores[0].Name() != "station1.db" || stores[1].Name() != "station2.db" {
		t.Fatalf("unexpected stores %v", stores)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "railway.toml")
	body := `
data_dir = "/var/lib/railway"
stations = ["north.db", "south.db", "east.db"]
sqlite_driver = "sqlite3"
cache_size = 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RAILWAY_DATA_DIR", "/tmp/override")
	t.Setenv("RAILWAY_CACHE_SIZE", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/override" {
		t.Errorf("env should win over file, data dir = %q", cfg.DataDir)
	}
	if want := []string{"north.db", "south.db", "east.db"}; !reflect.DeepEqual(cfg.Stations, want) {
		t.Errorf("stations = %v, want %v", cfg.Stations, want)
	}
	if cfg.Driver != "sqlite3" || cfg.CacheSize != 0 {
		t.Errorf("driver=%q cache=%d", cfg.Driver, cfg.CacheSize)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RAILWAY_STATIONS=a.db, b.db\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := []string{"a.db", "b.db"}; !reflect.DeepEqual(cfg.Stations, want) {
		t.Fatalf("stations = %v, want %v", cfg.Stations, want)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"no stations", func(c *Config) { c.Stations = nil }},
		{"duplicate station", func(c *Config) { c.Stations = []string{"a.db", "a.db"} }},
		{"empty station", func(c *Config) { c.Stations = []string{""} }},
		{"bad driver", func(c *Config) { c.Driver = "postgres" }},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mod(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
