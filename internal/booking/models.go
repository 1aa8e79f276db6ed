package booking

import (
	"strings"

	"github.com/ahinestrog/railway/internal/station"
)

type AddTrainRequest struct {
	Name        string
	Source      string
	Destination string
	Seats       station.Seats
}

// StoreID is the id one store assigned to a fanned-out row.
type StoreID struct {
	Store string `json:"store"`
	ID    int64  `json:"id"`
}

type AddTrainResult struct {
	Train station.Train
	IDs   []StoreID
	// Aligned is false when the stores handed out different ids for the
	// same train. Nothing corrects this; it is reported so callers notice.
	Aligned bool
}

type BookingRequest struct {
	TrainID        int64
	Passengers     []string
	SeatsPerPerson int
	SeatClass      string
}

// BookedTicket is a ticket row together with the store that holds it.
type BookedTicket struct {
	Store  string
	Ticket station.Ticket
}

// BookingResult lists the tickets committed by a BookTickets call. On
// failure it still carries what was committed before the failing passenger.
type BookingResult struct {
	RequestID string
	TrainID   int64
	Class     station.SeatClass
	Tickets   []BookedTicket
}

// ParsePassengers splits the comma separated passenger field of the
// booking form, trimming names and dropping blank ones.
func ParsePassengers(field string) []string {
	return cleanNames(strings.Split(field, ","))
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
