package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// proLockNamespace is the first key of the advisory lock that serialises
// PRO allocation; the second key is the year.
const proLockNamespace = 0x50524f

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) withContainers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Containers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a shipment by ID with its containers
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.withContainers(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, shipment.ErrShipmentNotFound, nil)
	}
	return model.ToDomain(), nil
}

// FindByProNumber finds a shipment by its PRO number
func (r *GormShipmentRepository) FindByProNumber(ctx context.Context, pro shipment.ProNumber) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.withContainers(ctx).Where("pro_number = ?", pro.String()).First(&model).Error; err != nil {
		return nil, translate(err, shipment.ErrShipmentNotFound, nil)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of shipments and the total count matching the filter
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shipment.Filter) ([]*shipment.Shipment, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, ShipmentSortFields, "pro_number")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var rows []models.ShipmentModel
	err := paginate(query.Order(sortField+" "+sortOrder), filter.Filter).
		Preload("Containers", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	shipments := make([]*shipment.Shipment, len(rows))
	for i := range rows {
		shipments[i] = rows[i].ToDomain()
	}
	return shipments, total, nil
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shipment.Filter) *gorm.DB {
	if filter.Search != "" {
		search := escapeLike(filter.Search)
		query = query.Where("pro_number LIKE ? OR customer_name ILIKE ?", search+"%", "%"+search+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TruckingStatus != nil {
		query = query.Where("trucking_status = ?", *filter.TruckingStatus)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}
	return query
}

// Create allocates the next PRO number for year under a transaction-scoped
// advisory lock and inserts the shipment built for it.
func (r *GormShipmentRepository) Create(ctx context.Context, year int, build func(shipment.ProNumber) (*shipment.Shipment, error)) (*shipment.Shipment, error) {
	var created *shipment.Shipment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", proLockNamespace, year).Error; err != nil {
			return err
		}

		var last sql.NullInt64
		if err := tx.Model(&models.ShipmentModel{}).
			Where("year = ?", year).
			Select("MAX(sequence)").
			Scan(&last).Error; err != nil {
			return err
		}

		pro, err := shipment.NewProNumber(year, int(last.Int64)+1)
		if err != nil {
			return err
		}

		s, err := build(pro)
		if err != nil {
			return err
		}

		model := models.ShipmentModelFromDomain(s)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return translate(err, nil, nil)
		}
		if len(model.Containers) > 0 {
			if err := tx.Create(&model.Containers).Error; err != nil {
				return translate(err, nil, nil)
			}
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update saves the shipment and replaces its containers when the version matches
func (r *GormShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND version = ?", s.ID, s.Version).
			Updates(map[string]any{
				"customer_name":   model.CustomerName,
				"origin":          model.Origin,
				"destination":     model.Destination,
				"notes":           model.Notes,
				"status":          model.Status,
				"trucking_status": model.TruckingStatus,
				"updated_at":      time.Now(),
				"version":         s.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errConcurrentModification
		}

		if err := tx.Where("shipment_id = ?", s.ID).Delete(&models.ContainerModel{}).Error; err != nil {
			return err
		}
		if len(model.Containers) > 0 {
			if err := tx.Create(&model.Containers).Error; err != nil {
				return translate(err, nil, nil)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Version++
	return nil
}

type statusCount struct {
	Status string
	Count  int64
}

// CountByTruckingStatus counts open shipments per trucking status
func (r *GormShipmentRepository) CountByTruckingStatus(ctx context.Context) (map[shipment.TruckingStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Select("trucking_status AS status, COUNT(*) AS count").
		Where("status = ?", shipment.StatusOpen).
		Group("trucking_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[shipment.TruckingStatus]int64, len(rows))
	for _, row := range rows {
		counts[shipment.TruckingStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// CountByStatus counts shipments per lifecycle status
func (r *GormShipmentRepository) CountByStatus(ctx context.Context) (map[shipment.Status]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[shipment.Status]int64, len(rows))
	for _, row := range rows {
		counts[shipment.Status(row.Status)] = row.Count
	}
	return counts, nil
}

var _ shipment.ShipmentRepository = (*GormShipmentRepository)(nil)
