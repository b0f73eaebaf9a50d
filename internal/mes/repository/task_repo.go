package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// TaskRepository 任务仓库
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByTenant 查询租户全部任务
func (r *TaskRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Task, error) {
	var items []entity.Task
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找任务
func (r *TaskRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	var t entity.Task
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ExistsOpenForMaterial 某物料是否已有未完成的采购缺口任务
func (r *TaskRepository) ExistsOpenForMaterial(ctx context.Context, tenantID, materialID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("tenant_id = ? AND material_id = ? AND status = ?", tenantID, materialID, entity.TaskStatusOpen).
		Count(&count).Error
	return count > 0, err
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update 更新任务
func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// Delete 删除任务
func (r *TaskRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Task{}).Error
}
