package station

// Seats holds the five per-class counters of a train.
type Seats struct {
	SL      int
	AC3A    int
	AC2A    int
	H1      int
	General int
}

// Negative reports whether any counter is below zero.
func (s Seats) Negative() bool {
	return s.SL < 0 || s.AC3A < 0 || s.AC2A < 0 || s.H1 < 0 || s.General < 0
}

// Train is one row of the trains table of a single store.
type Train struct {
	ID          int64
	Name        string
	Source      string
	Destination string
	Seats       Seats
}

// SameAs compares everything but the id.
func (t Train) SameAs(o Train) bool {
	return t.Name == o.Name && t.Source == o.Source && t.Destination == o.Destination && t.Seats == o.Seats
}

// TrainInput is what a store needs to create a train; the id is assigned by
// the store itself.
type TrainInput struct {
	Name        string
	Source      string
	Destination string
	Seats       Seats
}

// Ticket is one row of the tickets table of a single store.
type Ticket struct {
	ID          int64
	TrainID     int64
	Passenger   string
	SeatClass   SeatClass
	SeatsBooked int
}
