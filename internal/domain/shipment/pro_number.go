package shipment

import (
	"fmt"
	"strconv"
)

const (
	MinProYear     = 2000
	MaxProYear     = 9999
	MaxProSequence = 999
)

var (
	ErrInvalidProNumber     = newError("INVALID_PRO_NUMBER", "PRO number must be a 4-digit year followed by a 3-digit sequence")
	ErrProSequenceExhausted = newError("PRO_SEQUENCE_EXHAUSTED", "No PRO numbers left for this year")
)

// ProNumber is the shipment tracking identifier: a 4-digit year plus a
// 3-digit sequence, rendered without separator (2026001).
type ProNumber struct {
	Year     int
	Sequence int
}

// NewProNumber builds a PRO number from its parts
func NewProNumber(year, sequence int) (ProNumber, error) {
	if year < MinProYear || year > MaxProYear {
		return ProNumber{}, ErrInvalidProNumber
	}
	if sequence < 1 {
		return ProNumber{}, ErrInvalidProNumber
	}
	if sequence > MaxProSequence {
		return ProNumber{}, ErrProSequenceExhausted
	}
	return ProNumber{Year: year, Sequence: sequence}, nil
}

// ParseProNumber parses exactly seven digits
func ParseProNumber(s string) (ProNumber, error) {
	if len(s) != 7 {
		return ProNumber{}, ErrInvalidProNumber
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ProNumber{}, ErrInvalidProNumber
		}
	}
	year, _ := strconv.Atoi(s[:4])
	seq, _ := strconv.Atoi(s[4:])
	pro, err := NewProNumber(year, seq)
	if err != nil {
		return ProNumber{}, ErrInvalidProNumber
	}
	return pro, nil
}

// Next returns the following PRO number in the same year
func (p ProNumber) Next() (ProNumber, error) {
	return NewProNumber(p.Year, p.Sequence+1)
}

// FirstProNumber returns sequence 001 of the given year
func FirstProNumber(year int) (ProNumber, error) {
	return NewProNumber(year, 1)
}

// IsZero reports whether p was never set
func (p ProNumber) IsZero() bool {
	return p.Year == 0 && p.Sequence == 0
}

func (p ProNumber) String() string {
	return fmt.Sprintf("%04d%03d", p.Year, p.Sequence)
}
