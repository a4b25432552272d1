package persistence

import (
	"context"

	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxActionLogBatch = 1000

// GormActionLogRepository implements audit.Repository using GORM
type GormActionLogRepository struct {
	db *gorm.DB
}

// NewGormActionLogRepository creates a new GormActionLogRepository
func NewGormActionLogRepository(db *gorm.DB) *GormActionLogRepository {
	return &GormActionLogRepository{db: db}
}

// Append inserts the entry and reads back its sequence number
func (r *GormActionLogRepository) Append(ctx context.Context, entry *audit.ActionLog) error {
	model, err := models.ActionLogModelFromDomain(entry)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "seq"}}}).
		Create(model).Error; err != nil {
		return translate(err, nil, nil)
	}
	entry.Seq = model.Seq
	return nil
}

// FindAll lists entries newest first
func (r *GormActionLogRepository) FindAll(ctx context.Context, filter audit.Filter) ([]*audit.ActionLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActionLogModel{})
	if filter.ProNumber != "" {
		query = query.Where("pro_number = ?", filter.ProNumber)
	}
	if filter.Search != "" {
		search := "%" + escapeLike(filter.Search) + "%"
		query = query.Where("description ILIKE ? OR target_label ILIKE ? OR username ILIKE ?", search, search, search)
	}
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.TargetType != nil {
		query = query.Where("target_type = ?", *filter.TargetType)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ActionLogModel
	if err := paginate(query.Order("seq DESC"), filter.Filter).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return actionLogsToDomain(rows), total, nil
}

// ListAfter returns entries with seq greater than after, oldest first
func (r *GormActionLogRepository) ListAfter(ctx context.Context, after int64, limit int) ([]*audit.ActionLog, error) {
	var rows []models.ActionLogModel
	if err := r.db.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(clampLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return actionLogsToDomain(rows), nil
}

// Recent returns the newest entries, newest first
func (r *GormActionLogRepository) Recent(ctx context.Context, limit int) ([]*audit.ActionLog, error) {
	var rows []models.ActionLogModel
	if err := r.db.WithContext(ctx).
		Order("seq DESC").
		Limit(clampLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return actionLogsToDomain(rows), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxActionLogBatch {
		return maxActionLogBatch
	}
	return limit
}

func actionLogsToDomain(rows []models.ActionLogModel) []*audit.ActionLog {
	logs := make([]*audit.ActionLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs
}

var _ audit.Repository = (*GormActionLogRepository)(nil)
