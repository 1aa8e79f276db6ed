// Package booking is the inventory and booking service over the station
// replica set.
//
// Every store holds a full copy of the trains and tickets tables. Writes fan
// out to all stores with no transaction spanning them, so the replicas can
// drift apart: a store that fails mid fan-out, or one rebuilt on initialize,
// no longer lines up with the others. AddTrain and Audit report such drift;
// nothing repairs it.
//
// GetTrain is served from an LRU cache that every write purges. Initialize
// also purges it, so the cache only pays off for a Service that lives across
// many calls; a one-shot CLI run starts cold every time.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/railway/internal/metrics"
	"github.com/ahinestrog/railway/internal/station"
)

type Service struct {
	stores  []*station.Store
	events  Events
	metrics *metrics.Metrics
	trains  *lru.Cache[int64, station.Train]
}

type Option func(*Service) error

func WithEvents(e Events) Option {
	return func(s *Service) error {
		s.events = e
		return nil
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) error {
		s.metrics = m
		return nil
	}
}

// WithCacheSize sizes the train lookup cache used by GetTrain; 0 disables it.
func WithCacheSize(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			s.trains = nil
			return nil
		}
		c, err := lru.New[int64, station.Train](n)
		if err != nil {
			return err
		}
		s.trains = c
		return nil
	}
}

// NewService takes the stores in their fixed scan order.
func NewService(stores []*station.Store, opts ...Option) (*Service, error) {
	if len(stores) == 0 {
		return nil, errors.New("booking: at least one store is required")
	}
	s := &Service{stores: stores}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Service) Stores() []*station.Store { return s.stores }

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("event", key).Msg("publish failed")
	}
}

func (s *Service) invalidate() {
	if s.trains != nil {
		s.trains.Purge()
	}
}

// Initialize validates every store, rebuilding the ones whose schema does
// not match. Rebuilds are logged, never returned.
func (s *Service) Initialize(ctx context.Context) error {
	defer s.invalidate()
	for _, st := range s.stores {
		start := time.Now()
		rebuilt, err := st.Initialize(ctx)
		s.metrics.ObserveStoreOp(st.Name(), "initialize", start)
		if err != nil {
			return err
		}
		if rebuilt {
			s.metrics.StoreRebuilt(st.Name())
			log.Warn().Str("store", st.Name()).Msg("store rebuilt empty; its train ids no longer line up with the other stores")
		}
	}
	return nil
}

// AddTrain writes the same train into every store. A store failing midway
// leaves the row in the stores before it.
func (s *Service) AddTrain(ctx context.Context, req AddTrainRequest) (*AddTrainResult, error) {
	in := station.TrainInput{
		Name:        strings.TrimSpace(req.Name),
		Source:      strings.TrimSpace(req.Source),
		Destination: strings.TrimSpace(req.Destination),
		Seats:       req.Seats,
	}
	switch {
	case in.Name == "":
		return nil, &ValidationError{Field: "name", Reason: "required"}
	case in.Source == "":
		return nil, &ValidationError{Field: "source", Reason: "required"}
	case in.Destination == "":
		return nil, &ValidationError{Field: "destination", Reason: "required"}
	case in.Seats.Negative():
		return nil, &ValidationError{Field: "seats", Reason: "counts must be >= 0"}
	}
	defer s.invalidate()

	res := &AddTrainResult{Aligned: true}
	for _, st := range s.stores {
		start := time.Now()
		id, err := st.InsertTrain(ctx, in)
		s.metrics.ObserveStoreOp(st.Name(), "insert_train", start)
		if err != nil {
			return res, fmt.Errorf("add train to %s: %w", st.Name(), err)
		}
		if len(res.IDs) > 0 && res.IDs[0].ID != id {
			res.Aligned = false
		}
		res.IDs = append(res.IDs, StoreID{Store: st.Name(), ID: id})
	}
	res.Train = station.Train{
		ID:          res.IDs[0].ID,
		Name:        in.Name,
		Source:      in.Source,
		Destination: in.Destination,
		Seats:       in.Seats,
	}
	s.metrics.TrainAdded()

	if res.Aligned {
		log.Info().Str("train", in.Name).Int64("id", res.Train.ID).Msg("train added")
	} else {
		log.Warn().Str("train", in.Name).Interface("ids", res.IDs).Msg("train added under different ids per store")
	}

	s.publish(ctx, EventTrainAdded, TrainAdded{
		Name:        in.Name,
		Source:      in.Source,
		Destination: in.Destination,
		IDs:         res.IDs,
		Aligned:     res.Aligned,
	})
	return res, nil
}

// ListTrains merges the trains of all stores in store order, keeping the
// first row seen for each id.
func (s *Service) ListTrains(ctx context.Context) ([]station.Train, error) {
	seen := map[int64]bool{}
	var out []station.Train
	for _, st := range s.stores {
		start := time.Now()
		trains, err := st.Trains(ctx)
		s.metrics.ObserveStoreOp(st.Name(), "list_trains", start)
		if err != nil {
			return nil, fmt.Errorf("list trains in %s: %w", st.Name(), err)
		}
		for _, t := range trains {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
			if s.trains != nil {
				s.trains.Add(t.ID, t)
			}
		}
	}
	return out, nil
}

// ListTickets merges tickets the same way ListTrains merges trains. Ticket
// ids are per store, so a later store's ticket sharing an id with an
// earlier one is hidden.
func (s *Service) ListTickets(ctx context.Context) ([]station.Ticket, error) {
	seen := map[int64]bool{}
	var out []station.Ticket
	for _, st := range s.stores {
		start := time.Now()
		tickets, err := st.Tickets(ctx)
		s.metrics.ObserveStoreOp(st.Name(), "list_tickets", start)
		if err != nil {
			return nil, fmt.Errorf("list tickets in %s: %w", st.Name(), err)
		}
		for _, t := range tickets {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// GetTrain returns the train from the first store that has it.
func (s *Service) GetTrain(ctx context.Context, id int64) (station.Train, error) {
	if s.trains != nil {
		if t, ok := s.trains.Get(id); ok {
			return t, nil
		}
	}
	for _, st := range s.stores {
		t, err := st.Train(ctx, id)
		if errors.Is(err, station.ErrNotFound) {
			continue
		}
		if err != nil {
			return station.Train{}, fmt.Errorf("get train from %s: %w", st.Name(), err)
		}
		if s.trains != nil {
			s.trains.Add(id, t)
		}
		return t, nil
	}
	return station.Train{}, station.ErrNotFound
}

// BookTickets books SeatsPerPerson seats of one class for each passenger in
// turn. Every store is offered every passenger: each store whose counter
// covers the request is decremented and gets its own ticket row, and the
// scan goes on after the first success. A passenger no store can seat ends
// the call with an InsufficientSeatsError; passengers before it stay booked
// and are listed in the returned result.
func (s *Service) BookTickets(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	names := cleanNames(req.Passengers)
	if len(names) == 0 {
		return nil, &ValidationError{Field: "passengers", Reason: "at least one passenger name is required"}
	}
	if req.SeatsPerPerson <= 0 {
		return nil, &ValidationError{Field: "seats", Reason: "seats to book must be positive"}
	}
	class, err := station.ParseSeatClass(req.SeatClass)
	if err != nil {
		return nil, &ValidationError{Field: "seat class", Reason: err.Error(), Err: err}
	}
	defer s.invalidate()

	res := &BookingResult{
		RequestID: uuid.NewString(),
		TrainID:   req.TrainID,
		Class:     class,
	}
	logger := log.With().Str("request", res.RequestID).Int64("train", req.TrainID).Str("class", class.String()).Logger()

	for _, name := range names {
		satisfied := false
		for _, st := range s.stores {
			start := time.Now()
			ticket, ok, err := st.Book(ctx, req.TrainID, class, name, req.SeatsPerPerson)
			s.metrics.ObserveStoreOp(st.Name(), "book", start)
			if err != nil {
				s.metrics.BookingFailed("store_error")
				return res, fmt.Errorf("book %s in %s: %w", name, st.Name(), err)
			}
			if !ok {
				logger.Debug().Str("store", st.Name()).Str("passenger", name).Msg("store cannot seat passenger")
				continue
			}
			satisfied = true
			res.Tickets = append(res.Tickets, BookedTicket{Store: st.Name(), Ticket: ticket})
			s.metrics.TicketBooked(st.Name(), class.String(), req.SeatsPerPerson)
			logger.Info().Str("store", st.Name()).Str("passenger", name).Int64("ticket", ticket.ID).
				Int("seats", req.SeatsPerPerson).Msg("ticket booked")
			s.publish(ctx, EventTicketBooked, TicketBooked{
				RequestID:   res.RequestID,
				Store:       st.Name(),
				TicketID:    ticket.ID,
				TrainID:     req.TrainID,
				Passenger:   name,
				SeatClass:   class.String(),
				SeatsBooked: req.SeatsPerPerson,
			})
		}
		if !satisfied {
			s.metrics.BookingFailed("insufficient_seats")
			logger.Warn().Str("passenger", name).Int("committed", len(res.Tickets)).Msg("not enough seats")
			s.publish(ctx, EventBookingFailed, BookingFailed{
				RequestID: res.RequestID,
				TrainID:   req.TrainID,
				Passenger: name,
				SeatClass: class.String(),
				Committed: len(res.Tickets),
			})
			return res, &InsufficientSeatsError{Passenger: name, Class: class, TrainID: req.TrainID}
		}
	}
	return res, nil
}
