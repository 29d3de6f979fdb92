package match

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is matched by every *InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid match format")
	// ErrLogIntegrity is matched by every *LogIntegrityError.
	ErrLogIntegrity = errors.New("point log integrity violation")
)

// InvalidFormatError reports a MatchFormat that fails its invariants.
type InvalidFormatError struct {
	Field  string
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid match format: %s %s", e.Field, e.Reason)
}

func (e *InvalidFormatError) Is(target error) bool { return target == ErrInvalidFormat }

// LogIntegrityError reports a point log with gaps, duplicates, a
// non-monotonic point number or a malformed entry. Index is the offending
// position in the log.
type LogIntegrityError struct {
	Index       int
	PointNumber int
	Reason      string
}

func (e *LogIntegrityError) Error() string {
	return fmt.Sprintf("point log integrity: entry %d (point %d): %s", e.Index, e.PointNumber, e.Reason)
}

func (e *LogIntegrityError) Is(target error) bool { return target == ErrLogIntegrity }

// ValidateLog checks that point numbers start at 1 and increase by exactly
// one, and that every entry names a valid winner and server.
func ValidateLog(points []PointEvent) error {
	for i, p := range points {
		if err := ValidateNext(i, prevNumber(points, i), p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNext checks a single entry appended at index i after a point
// numbered prev (0 when the log is empty).
func ValidateNext(i, prev int, p PointEvent) error {
	want := prev + 1
	switch {
	case p.PointNumber == prev && i > 0:
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: "duplicate point number"}
	case p.PointNumber < want:
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: fmt.Sprintf("point number not increasing, expected %d", want)}
	case p.PointNumber > want:
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: fmt.Sprintf("gap in point numbers, expected %d", want)}
	}
	if !p.Winner.Valid() {
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: fmt.Sprintf("invalid winner %q", p.Winner)}
	}
	if !p.Server.Valid() {
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: fmt.Sprintf("invalid server %q", p.Server)}
	}
	if !p.Outcome.Valid() {
		return &LogIntegrityError{Index: i, PointNumber: p.PointNumber, Reason: fmt.Sprintf("unknown outcome %q", p.Outcome)}
	}
	return nil
}

func prevNumber(points []PointEvent, i int) int {
	if i == 0 {
		return 0
	}
	return points[i-1].PointNumber
}
