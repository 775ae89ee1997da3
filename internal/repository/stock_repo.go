package repository

import (
	"context"
	"time"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockFilter narrows List queries. NamePrefix matches the uppercased name.
type StockFilter struct {
	NamePrefix   string
	Barcode      string
	LocationCode string
	Status       string
}

type StockRepository interface {
	Create(ctx context.Context, entry *model.StockEntry) error
	Update(ctx context.Context, entry *model.StockEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockEntry, error)
	FindByBarcode(ctx context.Context, barcode string) ([]model.StockEntry, error)
	FindAtLocation(ctx context.Context, barcode, locationCode, shelfNumber string) ([]model.StockEntry, error)
	FindByMergeKey(ctx context.Context, key model.MergeKey) (*model.StockEntry, error)
	List(ctx context.Context, filter StockFilter, page, limit int) ([]model.StockEntry, int64, error)
	ListAll(ctx context.Context) ([]model.StockEntry, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, at time.Time) error
	DeleteZeroQuantityByBarcode(ctx context.Context, barcode string, excludeID uuid.UUID) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Create(ctx context.Context, entry *model.StockEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *stockRepository) Update(ctx context.Context, entry *model.StockEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *stockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.StockEntry{}).Error
}

func (r *stockRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByIDForUpdate locks the row for the remainder of the transaction so
// read-modify-write quantity paths cannot interleave.
func (r *stockRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepository) FindByBarcode(ctx context.Context, barcode string) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	if err := GetDB(ctx, r.db).Where("barcode = ?", barcode).
		Order("last_updated desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAtLocation resolves rows by the job-item identity (barcode, location, shelf),
// locked for update, oldest first so deductions drain the oldest row.
func (r *stockRepository) FindAtLocation(ctx context.Context, barcode, locationCode, shelfNumber string) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("barcode = ? AND location_code = ? AND shelf_number = ?", barcode, locationCode, shelfNumber).
		Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *stockRepository) FindByMergeKey(ctx context.Context, key model.MergeKey) (*model.StockEntry, error) {
	var entry model.StockEntry
	if err := GetDB(ctx, r.db).
		Where("name = ? AND asin = ? AND barcode = ? AND location_code = ? AND shelf_number = ?",
			key.Name, key.ASIN, key.Barcode, key.LocationCode, key.ShelfNumber).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepository) List(ctx context.Context, filter StockFilter, page, limit int) ([]model.StockEntry, int64, error) {
	var entries []model.StockEntry
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockEntry{})
	if filter.NamePrefix != "" {
		db = db.Where("name LIKE ?", filter.NamePrefix+"%")
	}
	if filter.Barcode != "" {
		db = db.Where("barcode = ?", filter.Barcode)
	}
	if filter.LocationCode != "" {
		db = db.Where("location_code = ?", filter.LocationCode)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("last_updated desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *stockRepository) ListAll(ctx context.Context) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	if err := GetDB(ctx, r.db).Order("name asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *stockRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.StockEntry{}).Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "last_updated": at}).Error
}

// DeleteZeroQuantityByBarcode removes emptied rows that share a barcode with a
// freshly added row ("hidden products" left behind by earlier deductions).
func (r *stockRepository) DeleteZeroQuantityByBarcode(ctx context.Context, barcode string, excludeID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("barcode = ? AND quantity = 0 AND id <> ?", barcode, excludeID).
		Delete(&model.StockEntry{}).Error
}
