package station

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverModernc is the pure Go engine and the default.
	DriverModernc = "sqlite"
	// DriverMattn is the cgo engine.
	DriverMattn = "sqlite3"
)

// ValidDriver reports whether name is one of the supported sqlite drivers.
func ValidDriver(name string) bool {
	return name == DriverModernc || name == DriverMattn
}

// Store is one station database file. It keeps no handle open: every
// operation opens its own connection and releases it before returning.
type Store struct {
	name   string
	path   string
	driver string
}

// New returns the store named name inside dir.
func New(dir, name, driver string) *Store {
	if driver == "" {
		driver = DriverModernc
	}
	return &Store{name: name, path: filepath.Join(dir, name), driver: driver}
}

func (s *Store) Name() string { return s.name }
func (s *Store) Path() string { return s.path }

// Stat returns the size in bytes of the store file.
func (s *Store) Stat() (int64, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (s *Store) open() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, err
	}
	var dsn string
	switch s.driver {
	case DriverModernc:
		dsn = s.path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	case DriverMattn:
		dsn = s.path + "?_busy_timeout=5000&_foreign_keys=on"
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", s.driver)
	}
	db, err := sql.Open(s.driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
