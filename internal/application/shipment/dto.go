package shipment

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shipment"
)

// ContainerInput is a container as submitted by a client
type ContainerInput struct {
	ContainerNumber string `json:"container_number" binding:"required,max=20"`
	SealNumber      string `json:"seal_number" binding:"max=50"`
	Size            string `json:"size" binding:"omitempty,oneof=20GP 40GP 40HC 45HC 20RF 40RF"`
}

// CreateShipmentRequest opens a new PRO. Year defaults to the current year.
type CreateShipmentRequest struct {
	Year         int              `json:"year" binding:"omitempty,min=2000,max=9999"`
	CustomerName string           `json:"customer_name" binding:"required,max=200"`
	Origin       string           `json:"origin" binding:"max=200"`
	Destination  string           `json:"destination" binding:"max=200"`
	Notes        string           `json:"notes" binding:"max=2000"`
	Containers   []ContainerInput `json:"containers" binding:"omitempty,dive"`
}

// UpdateShipmentRequest replaces the descriptive fields. When Version is
// set it must match the stored version.
type UpdateShipmentRequest struct {
	CustomerName string `json:"customer_name" binding:"required,max=200"`
	Origin       string `json:"origin" binding:"max=200"`
	Destination  string `json:"destination" binding:"max=200"`
	Notes        string `json:"notes" binding:"max=2000"`
	Version      *int   `json:"version"`
}

// UpdateTruckingStatusRequest moves the trucking leg forward
type UpdateTruckingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING SCHEDULED DISPATCHED IN_TRANSIT DELIVERED"`
}

// RemarkRequest adds or edits a remark
type RemarkRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// ListShipmentsInput contains filters for listing shipments
type ListShipmentsInput struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Search         string
	Status         string
	TruckingStatus string
	Year           int
}

// ContainerResponse is a container in API responses
type ContainerResponse struct {
	ID              uuid.UUID `json:"id"`
	ContainerNumber string    `json:"container_number"`
	SealNumber      string    `json:"seal_number"`
	Size            string    `json:"size,omitempty"`
}

// ShipmentResponse is a shipment in API responses
type ShipmentResponse struct {
	ID             uuid.UUID           `json:"id"`
	ProNumber      string              `json:"pro_number"`
	Year           int                 `json:"year"`
	Sequence       int                 `json:"sequence"`
	CustomerName   string              `json:"customer_name"`
	Origin         string              `json:"origin"`
	Destination    string              `json:"destination"`
	Notes          string              `json:"notes"`
	Status         string              `json:"status"`
	TruckingStatus string              `json:"trucking_status"`
	Containers     []ContainerResponse `json:"containers"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	Version        int                 `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// RemarkResponse is a remark in API responses
type RemarkResponse struct {
	ID         uuid.UUID `json:"id"`
	ShipmentID uuid.UUID `json:"shipment_id"`
	ProNumber  string    `json:"pro_number"`
	Department string    `json:"department"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToContainerResponse converts a domain container
func ToContainerResponse(c shipment.Container) ContainerResponse {
	return ContainerResponse{
		ID:              c.ID,
		ContainerNumber: c.ContainerNumber,
		SealNumber:      c.SealNumber,
		Size:            string(c.Size),
	}
}

// ToShipmentResponse converts a domain shipment
func ToShipmentResponse(s *shipment.Shipment) ShipmentResponse {
	containers := make([]ContainerResponse, len(s.Containers))
	for i, c := range s.Containers {
		containers[i] = ToContainerResponse(c)
	}
	return ShipmentResponse{
		ID:             s.ID,
		ProNumber:      s.ProNumber.String(),
		Year:           s.ProNumber.Year,
		Sequence:       s.ProNumber.Sequence,
		CustomerName:   s.Details.CustomerName,
		Origin:         s.Details.Origin,
		Destination:    s.Details.Destination,
		Notes:          s.Details.Notes,
		Status:         string(s.Status),
		TruckingStatus: string(s.TruckingStatus),
		Containers:     containers,
		CreatedBy:      s.CreatedBy,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ToRemarkResponse converts a domain remark
func ToRemarkResponse(r *shipment.Remark) RemarkResponse {
	return RemarkResponse{
		ID:         r.ID,
		ShipmentID: r.ShipmentID,
		ProNumber:  r.ProNumber.String(),
		Department: string(r.Department),
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
