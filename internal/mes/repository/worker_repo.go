package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// WorkerRepository 工人仓库
type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// ListByTenant 查询租户全部工人
func (r *WorkerRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Worker, error) {
	var items []entity.Worker
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找工人
func (r *WorkerRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Worker, error) {
	var w entity.Worker
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// FindByIDs 批量查找工人
func (r *WorkerRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]entity.Worker, error) {
	var items []entity.Worker
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&items).Error
	return items, err
}

// Create 创建工人
func (r *WorkerRepository) Create(ctx context.Context, w *entity.Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// Update 更新工人
func (r *WorkerRepository) Update(ctx context.Context, w *entity.Worker) error {
	return r.db.WithContext(ctx).Save(w).Error
}

// Delete 删除工人
func (r *WorkerRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Worker{}).Error
}
