package shipment

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

const maxRemarkLength = 2000

var (
	ErrInvalidRemark       = newError("INVALID_REMARK", "Remark must be between 1 and 2000 characters")
	ErrRemarkNotFound      = shared.NewDomainError(shared.CodeNotFound, "Remark not found")
	ErrRemarkAuthorOnly    = shared.NewDomainError(shared.CodeForbidden, "Only the author can change this remark")
	ErrRemarkWrongShipment = shared.NewDomainError(shared.CodeNotFound, "Remark does not belong to this shipment")
)

// Remark is a free-text note a department leaves on a shipment
type Remark struct {
	shared.BaseEntity
	ShipmentID uuid.UUID
	ProNumber  ProNumber
	Department shared.Department
	AuthorID   uuid.UUID
	AuthorName string
	Body       string
}

// NewRemark creates a remark authored by actor
func NewRemark(s *Shipment, body string, actor shared.Actor) (*Remark, error) {
	body, err := normalizeRemark(body)
	if err != nil {
		return nil, err
	}
	return &Remark{
		BaseEntity: shared.NewBaseEntity(),
		ShipmentID: s.ID,
		ProNumber:  s.ProNumber,
		Department: actor.Department,
		AuthorID:   actor.UserID,
		AuthorName: actor.Username,
		Body:       body,
	}, nil
}

// Edit replaces the body; only the author or an admin may do so
func (r *Remark) Edit(body string, actor shared.Actor) error {
	if !r.CanModify(actor) {
		return ErrRemarkAuthorOnly
	}
	body, err := normalizeRemark(body)
	if err != nil {
		return err
	}
	r.Body = body
	r.Touch()
	return nil
}

// CanModify reports whether actor may edit or delete the remark
func (r *Remark) CanModify(actor shared.Actor) bool {
	return actor.IsAdmin || actor.UserID == r.AuthorID
}

func normalizeRemark(body string) (string, error) {
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n == 0 || n > maxRemarkLength {
		return "", ErrInvalidRemark
	}
	return body, nil
}
