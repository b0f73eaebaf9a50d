package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// OrderRepository 采购订单仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindAll 分页查询订单列表（含行项）
func (r *OrderRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_no ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.ListItems(ctx, tenantID, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// ListByTenant 查询租户全部订单（图装配用，不带行项）
func (r *OrderRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&orders).Error
	return orders, err
}

// FindByID 根据ID查找订单（含行项）
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.ListItems(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Create 创建订单及行项
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := o.Items
		o.Items = nil
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		o.Items = items
		return nil
	})
}

// Update 更新订单头
func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	head := *o
	head.Items = nil
	return r.db.WithContext(ctx).Save(&head).Error
}

// Delete 删除订单及行项
func (r *OrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND order_id = ?", tenantID, id).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.Order{}).Error
	})
}

// === 行项 ===

// ListItems 查询订单行项
func (r *OrderRepository) ListItems(ctx context.Context, tenantID, orderID string) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// ListAllItems 查询租户全部订单行项（图装配用）
func (r *OrderRepository) ListAllItems(ctx context.Context, tenantID string) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// FindItemByID 查找订单行项
func (r *OrderRepository) FindItemByID(ctx context.Context, tenantID, itemID string) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItem 更新订单行项
func (r *OrderRepository) UpdateItem(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItems 批量删除订单行项
func (r *OrderRepository) DeleteItems(ctx context.Context, tenantID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, itemIDs).
		Delete(&entity.OrderItem{}).Error
}

// UpdateTotalAmount 写回重算后的订单总额
func (r *OrderRepository) UpdateTotalAmount(ctx context.Context, tenantID, id string, total float64) error {
	return r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("total_amount", total).Error
}
