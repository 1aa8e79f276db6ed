package station

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// RequiredTrainColumns is the column set an existing trains table must have
// for the store to be kept.
var RequiredTrainColumns = []string{
	"train_id", "name", "source", "destination",
	"sl_seats", "ac3a_seats", "ac2a_seats", "h1_seats", "general_seats",
}

const schema = `
CREATE TABLE IF NOT EXISTS trains(
  train_id      INTEGER PRIMARY KEY AUTOINCREMENT,
  name          TEXT NOT NULL,
  source        TEXT NOT NULL,
  destination   TEXT NOT NULL,
  sl_seats      INTEGER NOT NULL,
  ac3a_seats    INTEGER NOT NULL,
  ac2a_seats    INTEGER NOT NULL,
  h1_seats      INTEGER NOT NULL,
  general_seats INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets(
  ticket_id      INTEGER PRIMARY KEY AUTOINCREMENT,
  train_id       INTEGER NOT NULL,
  passenger_name TEXT NOT NULL,
  seat_class     TEXT NOT NULL,
  seats_booked   INTEGER NOT NULL,
  FOREIGN KEY(train_id) REFERENCES trains(train_id)
);
`

// SchemaError means an existing store file does not carry the trains columns
// this program reads and writes.
type SchemaError struct {
	Store   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("store %s: trains table missing columns %s", e.Store, strings.Join(e.Missing, ","))
}

// Initialize validates an existing store file and creates the tables when
// absent. A file that cannot be read as a database, or whose trains table
// lacks a required column, is deleted and recreated empty; rebuilt reports
// that this happened. Rows held by a rebuilt store are lost.
func (s *Store) Initialize(ctx context.Context) (rebuilt bool, err error) {
	_, err = os.Stat(s.path)
	switch {
	case err == nil:
		if verr := s.validate(ctx); verr != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			var se *SchemaError
			if errors.As(verr, &se) {
				log.Warn().Str("store", s.name).Strs("missing", se.Missing).Msg("schema mismatch, rebuilding store")
			} else {
				log.Warn().Str("store", s.name).Err(verr).Msg("store unreadable, rebuilding store")
			}
			if err := s.discard(); err != nil {
				return false, fmt.Errorf("store %s: discard: %w", s.name, err)
			}
			rebuilt = true
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("store %s: %w", s.name, err)
	}

	db, err := s.open()
	if err != nil {
		return rebuilt, fmt.Errorf("store %s: open: %w", s.name, err)
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return rebuilt, fmt.Errorf("store %s: migrate: %w", s.name, err)
	}
	return rebuilt, nil
}

func (s *Store) validate(ctx context.Context) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `PRAGMA table_info(trains)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	have := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, c := range RequiredTrainColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Store: s.name, Missing: missing}
	}
	return nil
}

// discard removes the store file along with any journal left beside it.
func (s *Store) discard() error {
	for _, p := range []string{s.path, s.path + "-journal", s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
