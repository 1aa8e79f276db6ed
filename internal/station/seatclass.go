package station

import (
	"errors"
	"fmt"
	"strings"
)

// SeatClass is the display label of one of the five fixed seat classes.
type SeatClass string

const (
	Sleeper    SeatClass = "SL"
	AC3Tier    SeatClass = "AC 3A"
	AC2Tier    SeatClass = "AC 2A"
	FirstClass SeatClass = "H1"
	General    SeatClass = "General"
)

var ErrUnknownSeatClass = errors.New("unknown seat class")

// SeatClasses lists the classes in menu order.
var SeatClasses = []SeatClass{Sleeper, AC3Tier, AC2Tier, FirstClass, General}

// keyed by the normalized label: lowercase, no spaces
var seatClassByKey = map[string]SeatClass{
	"sl":      Sleeper,
	"ac3a":    AC3Tier,
	"ac2a":    AC2Tier,
	"h1":      FirstClass,
	"general": General,
}

// ParseSeatClass maps a user supplied label ("AC 3A", "ac3a", "sl", ...) to
// its seat class. Labels outside the fixed set are rejected.
func ParseSeatClass(label string) (SeatClass, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "")
	c, ok := seatClassByKey[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeatClass, label)
	}
	return c, nil
}

// Column is the trains counter column backing the class.
func (c SeatClass) Column() string {
	switch c {
	case Sleeper:
		return "sl_seats"
	case AC3Tier:
		return "ac3a_seats"
	case AC2Tier:
		return "ac2a_seats"
	case FirstClass:
		return "h1_seats"
	case General:
		return "general_seats"
	}
	return ""
}

func (c SeatClass) String() string { return string(c) }
