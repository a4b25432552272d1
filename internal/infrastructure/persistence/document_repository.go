package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func preloadContent(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") })
}

// FindByID finds a document with its fields and items
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := preloadContent(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, document.ErrDocumentNotFound, nil)
	}
	return model.ToDomain(), nil
}

// FindByShipment returns every document of a shipment ordered by type
func (r *GormDocumentRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*document.Document, error) {
	var rows []models.DocumentModel
	if err := preloadContent(r.db.WithContext(ctx)).
		Where("shipment_id = ?", shipmentID).
		Order("type ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(rows), nil
}

// FindByShipmentAndType finds the shipment's document of type t
func (r *GormDocumentRepository) FindByShipmentAndType(ctx context.Context, shipmentID uuid.UUID, t document.Type) (*document.Document, error) {
	var model models.DocumentModel
	if err := preloadContent(r.db.WithContext(ctx)).
		Where("shipment_id = ? AND type = ?", shipmentID, t).
		First(&model).Error; err != nil {
		return nil, translate(err, document.ErrDocumentNotFound, nil)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of documents without their items
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter document.Filter) ([]*document.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{})
	if filter.Search != "" {
		search := escapeLike(filter.Search)
		query = query.Where("pro_number LIKE ? OR file_name ILIKE ?", search+"%", "%"+search+"%")
	}
	if filter.ShipmentID != nil {
		query = query.Where("shipment_id = ?", *filter.ShipmentID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var rows []models.DocumentModel
	if err := paginate(query.Order(sortField+" "+sortOrder), filter.Filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return documentsToDomain(rows), total, nil
}

// Create inserts the document with its fields and items
func (r *GormDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	model := models.DocumentModelFromDomain(d)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return translate(err, nil, document.ErrDocumentExists)
		}
		return insertContent(tx, model)
	})
}

// Update saves the document when its version matches and replaces its content
func (r *GormDocumentRepository) Update(ctx context.Context, d *document.Document) error {
	model := models.DocumentModelFromDomain(d)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.DocumentModel{}).
			Where("id = ? AND version = ?", d.ID, d.Version).
			Updates(map[string]any{
				"status":           model.Status,
				"file_name":        model.FileName,
				"storage_key":      model.StorageKey,
				"content_type":     model.ContentType,
				"file_size":        model.FileSize,
				"verified_by":      model.VerifiedBy,
				"verified_by_name": model.VerifiedByName,
				"verified_at":      model.VerifiedAt,
				"rejection_reason": model.RejectionReason,
				"updated_at":       time.Now(),
				"version":          d.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errConcurrentModification
		}
		if err := deleteContent(tx, d.ID); err != nil {
			return err
		}
		return insertContent(tx, model)
	})
	if err != nil {
		return err
	}
	d.Version++
	return nil
}

// Delete removes a document and its content
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteContent(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return document.ErrDocumentNotFound
		}
		return nil
	})
}

// CountByShipment counts the documents of a shipment
func (r *GormDocumentRepository) CountByShipment(ctx context.Context, shipmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("shipment_id = ?", shipmentID).
		Count(&count).Error
	return count, err
}

// CountByStatus counts documents per review status
func (r *GormDocumentRepository) CountByStatus(ctx context.Context) (map[document.Status]int64, error) {
	rows, err := r.countGrouped(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[document.Status]int64, len(rows))
	for _, row := range rows {
		counts[document.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// CountByType counts documents per document type
func (r *GormDocumentRepository) CountByType(ctx context.Context) (map[document.Type]int64, error) {
	rows, err := r.countGrouped(ctx, "type")
	if err != nil {
		return nil, err
	}
	counts := make(map[document.Type]int64, len(rows))
	for _, row := range rows {
		counts[document.Type(row.Status)] = row.Count
	}
	return counts, nil
}

// countGrouped counts rows grouped by column, which must be a trusted literal
func (r *GormDocumentRepository) countGrouped(ctx context.Context, column string) ([]statusCount, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Select(column + " AS status, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func insertContent(tx *gorm.DB, model *models.DocumentModel) error {
	if len(model.Fields) > 0 {
		if err := tx.Create(&model.Fields).Error; err != nil {
			return err
		}
	}
	if len(model.Items) > 0 {
		if err := tx.Create(&model.Items).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteContent(tx *gorm.DB, documentID uuid.UUID) error {
	if err := tx.Where("document_id = ?", documentID).Delete(&models.DocumentFieldModel{}).Error; err != nil {
		return err
	}
	return tx.Where("document_id = ?", documentID).Delete(&models.DocumentItemModel{}).Error
}

func documentsToDomain(rows []models.DocumentModel) []*document.Document {
	docs := make([]*document.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs
}

var _ document.Repository = (*GormDocumentRepository)(nil)
