package shipment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// ContainerSize is the ISO size/type shorthand of a container
type ContainerSize string

const (
	ContainerSize20GP ContainerSize = "20GP"
	ContainerSize40GP ContainerSize = "40GP"
	ContainerSize40HC ContainerSize = "40HC"
	ContainerSize45HC ContainerSize = "45HC"
	ContainerSize20RF ContainerSize = "20RF"
	ContainerSize40RF ContainerSize = "40RF"
)

// IsValid reports whether s is a supported size. Empty is allowed.
func (s ContainerSize) IsValid() bool {
	switch s {
	case "", ContainerSize20GP, ContainerSize40GP, ContainerSize40HC, ContainerSize45HC, ContainerSize20RF, ContainerSize40RF:
		return true
	}
	return false
}

var (
	ErrInvalidContainerNumber = newError("INVALID_CONTAINER_NUMBER", "Container number must be 4 letters and 7 digits with a valid check digit")
	ErrInvalidSealNumber      = newError("INVALID_SEAL_NUMBER", "Seal number cannot exceed 50 characters")
	ErrInvalidContainerSize   = newError("INVALID_CONTAINER_SIZE", "Unsupported container size")
	ErrDuplicateContainer     = newError("DUPLICATE_CONTAINER", "Container is already on this shipment")
	ErrContainerNotFound      = shared.NewDomainError(shared.CodeNotFound, "Container not found")
)

// Container is a box travelling under a shipment
type Container struct {
	ID              uuid.UUID
	ContainerNumber string
	SealNumber      string
	Size            ContainerSize
}

// NewContainer validates and normalises a container
func NewContainer(number, seal string, size ContainerSize) (Container, error) {
	normalized, err := NormalizeContainerNumber(number)
	if err != nil {
		return Container{}, err
	}
	seal = strings.ToUpper(strings.TrimSpace(seal))
	if len(seal) > 50 {
		return Container{}, ErrInvalidSealNumber
	}
	if !size.IsValid() {
		return Container{}, ErrInvalidContainerSize
	}
	return Container{
		ID:              uuid.New(),
		ContainerNumber: normalized,
		SealNumber:      seal,
		Size:            size,
	}, nil
}

// NormalizeContainerNumber upper-cases the number, strips separators and
// verifies the ISO 6346 check digit.
func NormalizeContainerNumber(s string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r == ' ' || r == '-' || r == '/' {
			continue
		}
		b.WriteRune(r)
	}
	n := b.String()
	if len(n) != 11 {
		return "", ErrInvalidContainerNumber
	}
	for i := 0; i < 4; i++ {
		if n[i] < 'A' || n[i] > 'Z' {
			return "", ErrInvalidContainerNumber
		}
	}
	for i := 4; i < 11; i++ {
		if n[i] < '0' || n[i] > '9' {
			return "", ErrInvalidContainerNumber
		}
	}
	if containerCheckDigit(n[:10]) != int(n[10]-'0') {
		return "", ErrInvalidContainerNumber
	}
	return n, nil
}

// letterValues maps A-Z to ISO 6346 values: counting up from 10 and
// skipping multiples of 11.
var letterValues = func() [26]int {
	var t [26]int
	v := 10
	for i := range t {
		if v%11 == 0 {
			v++
		}
		t[i] = v
		v++
	}
	return t
}()

// containerCheckDigit computes the ISO 6346 check digit of the first ten
// characters.
func containerCheckDigit(s string) int {
	sum := 0
	weight := 1
	for i := 0; i < len(s); i++ {
		c := s[i]
		v := int(c - '0')
		if c >= 'A' && c <= 'Z' {
			v = letterValues[c-'A']
		}
		sum += v * weight
		weight *= 2
	}
	return sum % 11 % 10
}
