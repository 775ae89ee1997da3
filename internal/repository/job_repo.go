package repository

import (
	"context"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	CreateItem(ctx context.Context, item *model.JobItem) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, page, limit int) ([]model.Job, int64, error)
	SetItemVerified(ctx context.Context, jobID uuid.UUID, barcode string, verified bool) (int64, error)
	UpdateItem(ctx context.Context, item *model.JobItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	FindItem(ctx context.Context, jobID uuid.UUID, barcode, locationCode, shelfNumber string) (*model.JobItem, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Create(job).Error
}

func (r *jobRepository) CreateItem(ctx context.Context, item *model.JobItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *jobRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	if err := GetDB(ctx, r.db).Preload("Items").First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Job{}).Where("id = ?", id).Update("status", status).Error
}

func (r *jobRepository) Update(ctx context.Context, job *model.Job) error {
	return GetDB(ctx, r.db).Omit("Items").Save(job).Error
}

func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("job_id = ?", id).Delete(&model.JobItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Job{}).Error
}

func (r *jobRepository) List(ctx context.Context, status string, page, limit int) ([]model.Job, int64, error) {
	var jobs []model.Job
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Job{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Items").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// SetItemVerified patches only the verified column of the matching item rows,
// so concurrent toggles on different items of the same job never clobber each
// other. Returns the number of rows touched.
func (r *jobRepository) SetItemVerified(ctx context.Context, jobID uuid.UUID, barcode string, verified bool) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.JobItem{}).
		Where("job_id = ? AND barcode = ?", jobID, barcode).
		Update("verified", verified)
	return res.RowsAffected, res.Error
}

func (r *jobRepository) UpdateItem(ctx context.Context, item *model.JobItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *jobRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", itemID).Delete(&model.JobItem{}).Error
}

func (r *jobRepository) FindItem(ctx context.Context, jobID uuid.UUID, barcode, locationCode, shelfNumber string) (*model.JobItem, error) {
	var item model.JobItem
	if err := GetDB(ctx, r.db).
		Where("job_id = ? AND barcode = ? AND location_code = ? AND shelf_number = ?",
			jobID, barcode, locationCode, shelfNumber).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
