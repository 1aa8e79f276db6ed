package booking

import (
	"fmt"

	"github.com/ahinestrog/railway/internal/station"
)

// ValidationError rejects a request before any store is touched.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientSeatsError means no store could seat the passenger. It is also
// what an unknown train id produces.
type InsufficientSeatsError struct {
	Passenger string
	Class     station.SeatClass
	TrainID   int64
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("not enough seats for %s in %s on train %d (or invalid train id)", e.Passenger, e.Class, e.TrainID)
}
