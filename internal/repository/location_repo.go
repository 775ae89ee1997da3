package repository

import (
	"context"

	"warehouse/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepository interface {
	Upsert(ctx context.Context, loc *model.Location) error
	Get(ctx context.Context, locationCode string) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Upsert(ctx context.Context, loc *model.Location) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_available", "updated_at"}),
	}).Create(loc).Error
}

func (r *locationRepository) Get(ctx context.Context, locationCode string) (*model.Location, error) {
	var loc model.Location
	if err := GetDB(ctx, r.db).First(&loc, "location_code = ?", locationCode).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) List(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	if err := GetDB(ctx, r.db).Order("location_code asc").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}
