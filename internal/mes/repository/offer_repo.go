package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// OfferRepository 报价单仓库
type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// ListByTenant 查询租户全部报价单
func (r *OfferRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Offer, error) {
	var items []entity.Offer
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListByProject 查询项目下的全部报价单（含本次驳回判定所需的兄弟快照）
func (r *OfferRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]entity.Offer, error) {
	var items []entity.Offer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND project_id = ?", tenantID, projectID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByID 根据ID查找报价单
func (r *OfferRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	var o entity.Offer
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Create 创建报价单
func (r *OfferRepository) Create(ctx context.Context, o *entity.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// Update 更新报价单
func (r *OfferRepository) Update(ctx context.Context, o *entity.Offer) error {
	head := *o
	head.Products = nil
	return r.db.WithContext(ctx).Save(&head).Error
}

// UpdateStatus 只更新报价单状态
func (r *OfferRepository) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	return r.db.WithContext(ctx).Model(&entity.Offer{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}

// === 报价产品行与附加项 ===

// ListProductsByTenant 查询租户全部报价产品行
func (r *OfferRepository) ListProductsByTenant(ctx context.Context, tenantID string) ([]entity.OfferProduct, error) {
	var items []entity.OfferProduct
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListExtrasByTenant 查询租户全部报价附加项
func (r *OfferRepository) ListExtrasByTenant(ctx context.Context, tenantID string) ([]entity.OfferExtra, error) {
	var items []entity.OfferExtra
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// ListProductsByOffer 查询报价单下的产品行
func (r *OfferRepository) ListProductsByOffer(ctx context.Context, tenantID, offerID string) ([]entity.OfferProduct, error) {
	var items []entity.OfferProduct
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND offer_id = ?", tenantID, offerID).
		Find(&items).Error
	return items, err
}

// CreateProduct 创建报价产品行
func (r *OfferRepository) CreateProduct(ctx context.Context, p *entity.OfferProduct) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateExtra 创建报价附加项
func (r *OfferRepository) CreateExtra(ctx context.Context, e *entity.OfferExtra) error {
	return r.db.WithContext(ctx).Create(e).Error
}
