// Package metrics holds the prometheus instruments of the booking service.
// The CLI is short lived, so instead of serving /metrics the registry is
// written to a node exporter textfile after every command.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "railway_"

type Metrics struct {
	TrainsAdded     prometheus.Counter
	TicketsBooked   *prometheus.CounterVec
	SeatsBooked     *prometheus.CounterVec
	BookingFailures *prometheus.CounterVec
	StoreRebuilds   *prometheus.CounterVec
	StoreOpSeconds  *prometheus.HistogramVec
}

func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrainsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "trains_added_total",
			Help: "Trains added through the fan-out write",
		}),
		TicketsBooked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "tickets_booked_total",
				Help: "Ticket rows written, per store and seat class",
			},
			[]string{"store", "class"},
		),
		SeatsBooked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "seats_booked_total",
				Help: "Seats taken from class counters, per store and seat class",
			},
			[]string{"store", "class"},
		),
		BookingFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "booking_failures_total",
				Help: "Booking calls that failed, by reason",
			},
			[]string{"reason"},
		),
		StoreRebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "store_rebuilds_total",
				Help: "Stores discarded and recreated on initialize",
			},
			[]string{"store"},
		),
		StoreOpSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "store_op_seconds",
				Help:    "Duration of single store operations, connection open and close included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store", "op"},
		),
	}

	registry.MustRegister(
		m.TrainsAdded,
		m.TicketsBooked,
		m.SeatsBooked,
		m.BookingFailures,
		m.StoreRebuilds,
		m.StoreOpSeconds,
	)
	return m
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) TrainAdded() {
	if m == nil {
		return
	}
	m.TrainsAdded.Inc()
}

func (m *Metrics) TicketBooked(store, class string, seats int) {
	if m == nil {
		return
	}
	m.TicketsBooked.WithLabelValues(store, class).Inc()
	m.SeatsBooked.WithLabelValues(store, class).Add(float64(seats))
}

func (m *Metrics) BookingFailed(reason string) {
	if m == nil {
		return
	}
	m.BookingFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) StoreRebuilt(store string) {
	if m == nil {
		return
	}
	m.StoreRebuilds.WithLabelValues(store).Inc()
}

// ObserveStoreOp is meant to be deferred: defer m.ObserveStoreOp(store, op, time.Now()).
func (m *Metrics) ObserveStoreOp(store, op string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreOpSeconds.WithLabelValues(store, op).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps everything g gathers to path in the text exposition
// format, replacing the file atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
