package repository

import (
	"context"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdjustmentRepository interface {
	Create(ctx context.Context, adj *model.StockAdjustment) error
	Update(ctx context.Context, adj *model.StockAdjustment) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockAdjustment, error)
	List(ctx context.Context, status string, page, limit int) ([]model.StockAdjustment, int64, error)
}

type adjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepository{db: db}
}

func (r *adjustmentRepository) Create(ctx context.Context, adj *model.StockAdjustment) error {
	return GetDB(ctx, r.db).Create(adj).Error
}

func (r *adjustmentRepository) Update(ctx context.Context, adj *model.StockAdjustment) error {
	return GetDB(ctx, r.db).Save(adj).Error
}

// FindByIDForUpdate locks the adjustment so confirm and reject cannot race.
func (r *adjustmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockAdjustment, error) {
	var adj model.StockAdjustment
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&adj).Error; err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *adjustmentRepository) List(ctx context.Context, status string, page, limit int) ([]model.StockAdjustment, int64, error) {
	var adjs []model.StockAdjustment
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockAdjustment{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&adjs).Error; err != nil {
		return nil, 0, err
	}

	return adjs, total, nil
}
