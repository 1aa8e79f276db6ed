package booking

import "context"

const (
	EventTrainAdded    = "railway.train.added"
	EventTicketBooked  = "railway.ticket.booked"
	EventBookingFailed = "railway.booking.failed"
)

// Events receives domain events. A nil Events disables publishing.
type Events interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type TrainAdded struct {
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	IDs         []StoreID `json:"ids"`
	Aligned     bool      `json:"aligned"`
}

type TicketBooked struct {
	RequestID   string `json:"request_id"`
	Store       string `json:"store"`
	TicketID    int64  `json:"ticket_id"`
	TrainID     int64  `json:"train_id"`
	Passenger   string `json:"passenger"`
	SeatClass   string `json:"seat_class"`
	SeatsBooked int    `json:"seats_booked"`
}

type BookingFailed struct {
	RequestID string `json:"request_id"`
	TrainID   int64  `json:"train_id"`
	Passenger string `json:"passenger"`
	SeatClass string `json:"seat_class"`
	Committed int    `json:"committed"`
}
