package station

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type seatQuery struct {
	get string
	dec string
}

// Counter statements per class, built from the fixed column table only.
var seatQueries = func() map[SeatClass]seatQuery {
	m := make(map[SeatClass]seatQuery, len(SeatClasses))
	for _, c := range SeatClasses {
		col := c.Column()
		m[c] = seatQuery{
			get: `SELECT ` + col + ` FROM trains WHERE train_id=?`,
			dec: `UPDATE trains SET ` + col + ` = ` + col + ` - ? WHERE train_id=? AND ` + col + ` >= ?`,
		}
	}
	return m
}()

const trainColumns = `train_id,name,source,destination,sl_seats,ac3a_seats,ac2a_seats,h1_seats,general_seats`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrain(sc scanner) (Train, error) {
	var t Train
	err := sc.Scan(&t.ID, &t.Name, &t.Source, &t.Destination,
		&t.Seats.SL, &t.Seats.AC3A, &t.Seats.AC2A, &t.Seats.H1, &t.Seats.General)
	return t, err
}

// InsertTrain adds a train and returns the id this store assigned to it.
func (s *Store) InsertTrain(ctx context.Context, in TrainInput) (int64, error) {
	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `
INSERT INTO trains(name,source,destination,sl_seats,ac3a_seats,ac2a_seats,h1_seats,general_seats)
VALUES(?,?,?,?,?,?,?,?)`,
		in.Name, in.Source, in.Destination,
		in.Seats.SL, in.Seats.AC3A, in.Seats.AC2A, in.Seats.H1, in.Seats.General)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) Trains(ctx context.Context) ([]Train, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY train_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Train
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Train returns ErrNotFound when the id is unknown to this store.
func (s *Store) Train(ctx context.Context, id int64) (Train, error) {
	db, err := s.open()
	if err != nil {
		return Train{}, err
	}
	defer db.Close()

	t, err := scanTrain(db.QueryRowContext(ctx, `SELECT `+trainColumns+` FROM trains WHERE train_id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Train{}, ErrNotFound
	}
	return t, err
}

func (s *Store) Tickets(ctx context.Context) ([]Ticket, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
SELECT ticket_id,train_id,passenger_name,seat_class,seats_booked
FROM tickets ORDER BY ticket_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var (
			t     Ticket
			class string
		)
		if err := rows.Scan(&t.ID, &t.TrainID, &t.Passenger, &class, &t.SeatsBooked); err != nil {
			return nil, err
		}
		t.SeatClass = SeatClass(class)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Book takes seats from the class counter of a train and records the
// ticket, both in one local transaction. booked is false, with nothing
// written, when the train is missing or the counter is below seats.
func (s *Store) Book(ctx context.Context, trainID int64, class SeatClass, passenger string, seats int) (ticket Ticket, booked bool, err error) {
	q, ok := seatQueries[class]
	if !ok {
		return Ticket{}, false, fmt.Errorf("%w: %q", ErrUnknownSeatClass, string(class))
	}
	if seats <= 0 {
		return Ticket{}, false, fmt.Errorf("seats must be > 0, got %d", seats)
	}
	db, err := s.open()
	if err != nil {
		return Ticket{}, false, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Ticket{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var avail int
	err = tx.QueryRowContext(ctx, q.get, trainID).Scan(&avail)
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	if avail < seats {
		return Ticket{}, false, nil
	}

	res, err := tx.ExecContext(ctx, q.dec, seats, trainID, seats)
	if err != nil {
		return Ticket{}, false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Ticket{}, false, err
	} else if n == 0 {
		return Ticket{}, false, nil
	}

	res, err = tx.ExecContext(ctx, `
INSERT INTO tickets(train_id,passenger_name,seat_class,seats_booked)
VALUES(?,?,?,?)`, trainID, passenger, string(class), seats)
	if err != nil {
		return Ticket{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Ticket{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Ticket{}, false, err
	}
	return Ticket{ID: id, TrainID: trainID, Passenger: passenger, SeatClass: class, SeatsBooked: seats}, true, nil
}
