package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll 分页查询项目列表
func (r *ProjectRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	var items []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR client_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// ListByTenant 查询租户全部项目（图装配用）
func (r *ProjectRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Project, error) {
	var items []entity.Project
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	var p entity.Project
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// UpdateStatus 只更新项目状态
func (r *ProjectRepository) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Project{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}

// Delete 删除项目及其产品、物料、子行项、报价（级联）
func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productIDs []string
		if err := tx.Model(&entity.Product{}).
			Where("tenant_id = ? AND project_id = ?", tenantID, id).
			Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			var materialIDs []string
			if err := tx.Model(&entity.ProductMaterial{}).
				Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs).
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
			if err := tx.Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs).Delete(&entity.ProductMaterial{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tenant_id = ? AND project_id = ?", tenantID, id).Delete(&entity.Product{}).Error; err != nil {
			return err
		}

		var offerIDs []string
		if err := tx.Model(&entity.Offer{}).
			Where("tenant_id = ? AND project_id = ?", tenantID, id).
			Pluck("id", &offerIDs).Error; err != nil {
			return err
		}
		if len(offerIDs) > 0 {
			var offerProductIDs []string
			if err := tx.Model(&entity.OfferProduct{}).
				Where("tenant_id = ? AND offer_id IN ?", tenantID, offerIDs).
				Pluck("id", &offerProductIDs).Error; err != nil {
				return err
			}
			if len(offerProductIDs) > 0 {
				if err := tx.Where("tenant_id = ? AND offer_product_id IN ?", tenantID, offerProductIDs).Delete(&entity.OfferExtra{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("tenant_id = ? AND offer_id IN ?", tenantID, offerIDs).Delete(&entity.OfferProduct{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tenant_id = ? AND project_id = ?", tenantID, id).Delete(&entity.Offer{}).Error; err != nil {
			return err
		}

		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Project{}).Error
	})
}
