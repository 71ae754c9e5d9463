package submax

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRecordStream      = errors.New("record stream is empty")
	ErrInsufficientLapMarkers = errors.New("insufficient lap markers")
	ErrNoValidWindow          = errors.New("no valid test window found")
	ErrInvalidLapMarker       = errors.New("lap marker ends before it starts")
	ErrRecordsOutOfOrder      = errors.New("records are not sorted by timestamp")
	ErrInvalidTargetHR        = errors.New("target heart rate must be positive")
	ErrUnknownMode            = errors.New("unknown test mode")
)

// ProtocolError is a validation failure with a message the athlete can act on.
type ProtocolError struct {
	Mode Mode
	Err  error
	Hint string
}

func (e *ProtocolError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s test: %v", e.Mode, e.Err)
	}
	return fmt.Sprintf("%s test: %v: %s", e.Mode, e.Err, e.Hint)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func protocolErr(mode Mode, err error) *ProtocolError {
	return &ProtocolError{Mode: mode, Err: err, Hint: hintFor(mode, err)}
}

func hintFor(mode Mode, err error) string {
	switch {
	case errors.Is(err, ErrEmptyRecordStream):
		return "file contains no record data"
	case errors.Is(err, ErrInsufficientLapMarkers):
		return "file does not contain three lap presses for the test miles"
	case errors.Is(err, ErrNoValidWindow):
		return "no 30-minute window held the target heart rate band without stopping; re-record the test"
	case errors.Is(err, ErrInvalidLapMarker):
		return "a test lap ends before it starts; check the device clock and re-record"
	case errors.Is(err, ErrRecordsOutOfOrder):
		return "record timestamps go backwards"
	case errors.Is(err, ErrInvalidTargetHR):
		return "provide a target heart rate (170 - age for the bike test)"
	case errors.Is(err, ErrUnknownMode):
		return fmt.Sprintf("mode %q is not one of bike or run", mode)
	}
	return ""
}
