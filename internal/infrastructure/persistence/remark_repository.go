package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRemarkRepository implements RemarkRepository using GORM
type GormRemarkRepository struct {
	db *gorm.DB
}

// NewGormRemarkRepository creates a new GormRemarkRepository
func NewGormRemarkRepository(db *gorm.DB) *GormRemarkRepository {
	return &GormRemarkRepository{db: db}
}

// Create inserts a remark
func (r *GormRemarkRepository) Create(ctx context.Context, remark *shipment.Remark) error {
	return translate(r.db.WithContext(ctx).Create(models.RemarkModelFromDomain(remark)).Error, nil, nil)
}

// Update saves the remark body
func (r *GormRemarkRepository) Update(ctx context.Context, remark *shipment.Remark) error {
	result := r.db.WithContext(ctx).
		Model(&models.RemarkModel{}).
		Where("id = ?", remark.ID).
		Updates(map[string]any{
			"body":       remark.Body,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shipment.ErrRemarkNotFound
	}
	return nil
}

// Delete removes a remark by ID
func (r *GormRemarkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RemarkModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shipment.ErrRemarkNotFound
	}
	return nil
}

// FindByID finds a remark by ID
func (r *GormRemarkRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Remark, error) {
	var model models.RemarkModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, shipment.ErrRemarkNotFound, nil)
	}
	return model.ToDomain(), nil
}

// ListByShipment returns the shipment's remarks, oldest first
func (r *GormRemarkRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*shipment.Remark, error) {
	var rows []models.RemarkModel
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	remarks := make([]*shipment.Remark, len(rows))
	for i := range rows {
		remarks[i] = rows[i].ToDomain()
	}
	return remarks, nil
}

var _ shipment.RemarkRepository = (*GormRemarkRepository)(nil)
