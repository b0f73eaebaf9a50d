package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// ListByTenant 查询租户全部供应商
func (r *SupplierRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Supplier, error) {
	var items []entity.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找供应商
func (r *SupplierRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create 创建供应商
func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Update 更新供应商
func (r *SupplierRepository) Update(ctx context.Context, s *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete 删除供应商
func (r *SupplierRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Supplier{}).Error
}
