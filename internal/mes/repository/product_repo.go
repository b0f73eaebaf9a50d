package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// ProductRepository 产品仓库
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListByTenant 查询租户全部产品
func (r *ProductRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Product, error) {
	var items []entity.Product
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListByProject 查询项目下的产品
func (r *ProductRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]entity.Product, error) {
	var items []entity.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找产品
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDs 批量查找产品
func (r *ProductRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]entity.Product, error) {
	var items []entity.Product
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&items).Error
	return items, err
}

// Create 创建产品
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update 更新产品
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// UpdateStatus 只更新产品状态
func (r *ProductRepository) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}

// UpdateMaterialCost 写回重算后的物料成本
func (r *ProductRepository) UpdateMaterialCost(ctx context.Context, tenantID, id string, cost float64) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("material_cost", cost).Error
}

// Delete 删除产品及其物料、子行项（级联）
func (r *ProductRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var materialIDs []string
		if err := tx.Model(&entity.ProductMaterial{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, id).
			Pluck("id", &materialIDs).Error; err != nil {
			return err
		}
		if len(materialIDs) > 0 {
			if err := tx.Where("tenant_id = ? AND material_id IN ?", tenantID, materialIDs).Delete(&entity.GlassItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tenant_id = ? AND material_id IN ?", tenantID, materialIDs).Delete(&entity.AluDoorItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tenant_id = ? AND product_id = ?", tenantID, id).Delete(&entity.ProductMaterial{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Product{}).Error
	})
}
