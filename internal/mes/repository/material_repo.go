package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// MaterialRepository 产品物料仓库
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// ListByTenant 查询租户全部物料
func (r *MaterialRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.ProductMaterial, error) {
	var items []entity.ProductMaterial
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListByProduct 查询产品下的物料
func (r *MaterialRepository) ListByProduct(ctx context.Context, tenantID, productID string) ([]entity.ProductMaterial, error) {
	var items []entity.ProductMaterial
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// ListUnordered 未订购物料清单（可加入新订单的候选）。
// 已到终态或已挂单的物料不在其中
func (r *MaterialRepository) ListUnordered(ctx context.Context, tenantID string) ([]entity.ProductMaterial, error) {
	var items []entity.ProductMaterial
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND order_id IS NULL", tenantID, entity.MaterialStatusNotOrdered).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找物料
func (r *MaterialRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.ProductMaterial, error) {
	var m entity.ProductMaterial
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByIDs 批量查找物料
func (r *MaterialRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]entity.ProductMaterial, error) {
	var items []entity.ProductMaterial
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&items).Error
	return items, err
}

// Create 创建物料
func (r *MaterialRepository) Create(ctx context.Context, m *entity.ProductMaterial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Update 更新物料
func (r *MaterialRepository) Update(ctx context.Context, m *entity.ProductMaterial) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete 删除物料及其子行项
func (r *MaterialRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND material_id = ?", tenantID, id).Delete(&entity.GlassItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND material_id = ?", tenantID, id).Delete(&entity.AluDoorItem{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.ProductMaterial{}).Error
	})
}

// === 玻璃/铝框门子行项 ===

// ListGlassByTenant 查询租户全部玻璃子行项
func (r *MaterialRepository) ListGlassByTenant(ctx context.Context, tenantID string) ([]entity.GlassItem, error) {
	var items []entity.GlassItem
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListAluDoorByTenant 查询租户全部铝框门子行项
func (r *MaterialRepository) ListAluDoorByTenant(ctx context.Context, tenantID string) ([]entity.AluDoorItem, error) {
	var items []entity.AluDoorItem
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// CreateGlassItem 创建玻璃子行项
func (r *MaterialRepository) CreateGlassItem(ctx context.Context, g *entity.GlassItem) error {
	return r.db.WithContext(ctx).Create(g).Error
}

// CreateAluDoorItem 创建铝框门子行项
func (r *MaterialRepository) CreateAluDoorItem(ctx context.Context, a *entity.AluDoorItem) error {
	return r.db.WithContext(ctx).Create(a).Error
}
