package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

// WorkOrderRepository 工单仓库
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// FindAll 分页查询工单列表（含行项）
func (r *WorkOrderRepository) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	var orders []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{}).Where("tenant_id = ?", tenantID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("wo_no ILIKE ?", "%"+search+"%")
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

// ListByTenant 查询租户全部工单（图装配用，不带行项）
func (r *WorkOrderRepository) ListByTenant(ctx context.Context, tenantID string) ([]entity.WorkOrder, error) {
	var orders []entity.WorkOrder
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&orders).Error
	return orders, err
}

// FindByID 根据ID查找工单（含行项）
func (r *WorkOrderRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&wo).Error
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
	wo.Items = items
	return &wo, nil
}

// Create 创建工单及行项
func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := wo.Items
		wo.Items = nil
		if err := tx.Create(wo).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		wo.Items = items
		return nil
	})
}

// Update 更新工单头
func (r *WorkOrderRepository) Update(ctx context.Context, wo *entity.WorkOrder) error {
	head := *wo
	head.Items = nil
	return r.db.WithContext(ctx).Save(&head).Error
}

// Delete 删除工单及行项
func (r *WorkOrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND work_order_id = ?", tenantID, id).Delete(&entity.WorkOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&entity.WorkOrder{}).Error
	})
}

// === 行项 ===

// ListItems 查询工单行项
func (r *WorkOrderRepository) ListItems(ctx context.Context, tenantID, workOrderID string) ([]entity.WorkOrderItem, error) {
	var items []entity.WorkOrderItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND work_order_id = ?", tenantID, workOrderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// ListAllItems 查询租户全部工单行项（图装配用）
func (r *WorkOrderRepository) ListAllItems(ctx context.Context, tenantID string) ([]entity.WorkOrderItem, error) {
	var items []entity.WorkOrderItem
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&items).Error
	return items, err
}

// FindItemByID 查找工单行项
func (r *WorkOrderRepository) FindItemByID(ctx context.Context, tenantID, itemID string) (*entity.WorkOrderItem, error) {
	var item entity.WorkOrderItem
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItem 更新工单行项
func (r *WorkOrderRepository) UpdateItem(ctx context.Context, item *entity.WorkOrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// === 工时记录 ===

// WorkLogExists 是否已存在同 (worker, item, date) 的工时记录
func (r *WorkOrderRepository) WorkLogExists(ctx context.Context, tenantID, workerID, itemID, logDate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WorkLog{}).
		Where("tenant_id = ? AND worker_id = ? AND work_order_item_id = ? AND log_date = ?",
			tenantID, workerID, itemID, logDate).
		Count(&count).Error
	return count > 0, err
}

// CreateWorkLog 创建工时记录
func (r *WorkOrderRepository) CreateWorkLog(ctx context.Context, wl *entity.WorkLog) error {
	return r.db.WithContext(ctx).Create(wl).Error
}

// ListWorkLogs 查询工单行项的工时记录
func (r *WorkOrderRepository) ListWorkLogs(ctx context.Context, tenantID, itemID string) ([]entity.WorkLog, error) {
	var logs []entity.WorkLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND work_order_item_id = ?", tenantID, itemID).
		Order("log_date ASC").
		Find(&logs).Error
	return logs, err
}
