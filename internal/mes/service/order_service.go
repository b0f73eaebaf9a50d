package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"go.uber.org/zap"
)

// 删除订单时未收货物料的处置策略
const (
	OrderDisposalRevert       = "revert"        // 物料退回 not_ordered
	OrderDisposalMarkReceived = "mark_received" // 物料直接标记 received
)

// OrderService 采购订单服务。发货、收货、回退均为级联操作：
// 失败不回滚已生效步骤，记录后停止，重试幂等
type OrderService struct {
	orderRepo    *repository.OrderRepository
	materialRepo *repository.MaterialRepository
	productRepo  *repository.ProductRepository
	projectRepo  *repository.ProjectRepository
	materialSvc  *MaterialService
	logger       *zap.Logger
}

func NewOrderService(orderRepo *repository.OrderRepository, materialRepo *repository.MaterialRepository,
	productRepo *repository.ProductRepository, projectRepo *repository.ProjectRepository,
	materialSvc *MaterialService, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		projectRepo:  projectRepo,
		materialSvc:  materialSvc,
		logger:       logger,
	}
}

// CreateOrderRequest 创建订单请求。物料按（名称, 单位）合并为行项
type CreateOrderRequest struct {
	SupplierID  *string  `json:"supplier_id"`
	MaterialIDs []string `json:"material_ids" binding:"required,min=1"`
	Notes       string   `json:"notes"`
}

// DeleteItemsResult 删除行项的结果。已收货行项不可删除，单独列出
type DeleteItemsResult struct {
	Deleted        int      `json:"deleted"`
	SkippedItems   []string `json:"skipped_items"`
	RemainingItems int      `json:"remaining_items"`
}

// Create 创建草稿订单。选中的物料被订单预占（写入 OrderID），
// 同名同单位物料合并为一个行项：数量相加、预期单价相加，零数量行丢弃
func (s *OrderService) Create(ctx context.Context, tenantID, userID string, req *CreateOrderRequest) (*entity.Order, error) {
	materials, err := s.materialRepo.FindByIDs(ctx, tenantID, req.MaterialIDs)
	if err != nil {
		return nil, fmt.Errorf("查询物料失败: %w", err)
	}
	if len(materials) != len(req.MaterialIDs) {
		return nil, fmt.Errorf("%w: 部分物料不存在", ErrValidation)
	}
	for _, m := range materials {
		if m.Status != entity.MaterialStatusNotOrdered {
			return nil, fmt.Errorf("%w: 物料 %s 状态为 %s，不可再次下单", ErrValidation, m.Name, m.Status)
		}
		if m.OrderID != nil {
			return nil, fmt.Errorf("%w: 物料 %s 已在其他订单中", ErrValidation, m.Name)
		}
	}

	// 按（名称, 单位）合并，保持首次出现顺序
	type line struct {
		name, unit  string
		quantity    float64
		price       float64
		materialIDs []string
	}
	var keys []string
	lines := make(map[string]*line)
	for _, m := range materials {
		key := m.Name + "\x00" + m.Unit
		l, ok := lines[key]
		if !ok {
			l = &line{name: m.Name, unit: m.Unit}
			lines[key] = l
			keys = append(keys, key)
		}
		l.quantity += m.Quantity
		l.price += m.UnitPrice
		l.materialIDs = append(l.materialIDs, m.ID)
	}

	order := &entity.Order{
		ID:         newID(),
		TenantID:   tenantID,
		OrderNo:    generateNo("PO"),
		SupplierID: req.SupplierID,
		Status:     entity.OrderStatusDraft,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}
	var total float64
	for _, key := range keys {
		l := lines[key]
		if l.quantity <= 0 {
			continue
		}
		order.Items = append(order.Items, entity.OrderItem{
			ID:            newID(),
			TenantID:      tenantID,
			OrderID:       order.ID,
			MaterialIDs:   l.materialIDs,
			Name:          l.name,
			Unit:          l.unit,
			Quantity:      l.quantity,
			ExpectedPrice: l.price,
			Status:        entity.OrderItemStatusOrdered,
		})
		total += l.quantity * l.price
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: 没有可下单的物料", ErrValidation)
	}
	order.TotalAmount = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	for _, m := range materials {
		m := m
		m.OrderID = &order.ID
		if err := s.materialRepo.Update(ctx, &m); err != nil {
			return nil, fmt.Errorf("预占物料失败: %w", err)
		}
	}
	return order, nil
}

// FindAll 分页查询订单，状态字段返回派生展示值
func (s *OrderService) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, tenantID, page, pageSize, filters)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Status = orders[i].DerivedStatus()
	}
	return orders, total, nil
}

// Get 查询订单详情，状态字段返回派生展示值
func (s *OrderService) Get(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	o.Status = o.DerivedStatus()
	return o, nil
}

// Send 发出订单：物料 → ordered、产品 → materials_ordered、
// 项目推进 in_production，最后订单头 → sent。
// 订单头放在末步，级联中途失败时订单仍为 draft，可直接重发
func (s *OrderService) Send(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.OrderCanTransition(order.Status, entity.OrderStatusSent) {
		return nil, fmt.Errorf("%w: 订单不能从 %s 转为 %s", ErrInvalidTransition, order.Status, entity.OrderStatusSent)
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: 订单没有行项，不能发出", ErrValidation)
	}

	productIDs := make(map[string]bool)
	c := NewCascade(s.logger, "order.send")

	err = c.Step("物料置为已订购", func() error {
		for _, item := range order.Items {
			for _, mid := range item.MaterialIDs {
				m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
				if err != nil {
					return err
				}
				productIDs[m.ProductID] = true
				if m.Status == entity.MaterialStatusOrdered && m.OrderID != nil && *m.OrderID == orderID {
					continue // 重试
				}
				if m.Status != entity.MaterialStatusNotOrdered {
					return fmt.Errorf("物料 %s 状态为 %s，无法订购", m.Name, m.Status)
				}
				m.Status = entity.MaterialStatusOrdered
				m.OrderID = &orderID
				m.OrderedQty = m.Quantity
				if err := s.materialRepo.Update(ctx, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	projectIDs := make(map[string]bool)
	err = c.Step("产品置为备料中", func() error {
		for pid := range productIDs {
			p, err := s.productRepo.FindByID(ctx, tenantID, pid)
			if err != nil {
				return err
			}
			projectIDs[p.ProjectID] = true
			if p.Status == entity.ProductStatusWaiting {
				if err := s.productRepo.UpdateStatus(ctx, tenantID, pid, entity.ProductStatusMaterialsOrdered); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.Step("项目推进生产中", func() error {
		for pid := range projectIDs {
			if err := promoteProject(ctx, s.projectRepo, tenantID, pid, entity.ProjectStatusInProduction); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.Step("订单置为已发出", func() error {
		now := time.Now()
		order.Status = entity.OrderStatusSent
		order.SentAt = &now
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiveItems 收货。itemIDs 为空表示整单收货。
// 行项 → received，对应物料 → received，产品备料完成时升 materials_ready，
// 全部行项收货后订单头 → received
func (s *OrderService) ReceiveItems(ctx context.Context, tenantID, orderID string, itemIDs []string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusSent {
		return nil, fmt.Errorf("%w: 只有已发出的订单可以收货，当前状态 %s", ErrInvalidTransition, order.Status)
	}

	known := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		known[item.ID] = true
	}
	targets := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: 行项 %s 不属于该订单", ErrValidation, id)
		}
		targets[id] = true
	}

	now := time.Now()
	productIDs := make(map[string]bool)
	c := NewCascade(s.logger, "order.receive")

	err = c.Step("行项与物料收货", func() error {
		for i := range order.Items {
			item := &order.Items[i]
			if len(targets) > 0 && !targets[item.ID] {
				continue
			}
			if item.Status == entity.OrderItemStatusReceived {
				continue // 重试
			}
			item.Status = entity.OrderItemStatusReceived
			item.ReceivedAt = &now
			if err := s.orderRepo.UpdateItem(ctx, item); err != nil {
				return err
			}
			for _, mid := range item.MaterialIDs {
				m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
				if err != nil {
					return err
				}
				productIDs[m.ProductID] = true
				if entity.MaterialIsTerminal(m.Status) {
					continue
				}
				m.Status = entity.MaterialStatusReceived
				m.ReceivedAt = &now
				if err := s.materialRepo.Update(ctx, m); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.Step("产品备料完成检查", func() error {
		for pid := range productIDs {
			if err := s.materialSvc.maybePromoteProduct(ctx, tenantID, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.Step("订单整单收货检查", func() error {
		allReceived := true
		for _, item := range order.Items {
			if item.Status != entity.OrderItemStatusReceived {
				allReceived = false
				break
			}
		}
		if allReceived && entity.OrderCanTransition(order.Status, entity.OrderStatusReceived) {
			order.Status = entity.OrderStatusReceived
			return s.orderRepo.Update(ctx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = order.DerivedStatus()
	return order, nil
}

// EditItemQuantities 调整行项数量（0, 99999]。已收货行项不可调整。
// 订单已发出时，数量差额均摊回该行项的各来源物料的已订数量
func (s *OrderService) EditItemQuantities(ctx context.Context, tenantID, orderID string, changes map[string]float64) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	itemsByID := make(map[string]*entity.OrderItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	for itemID, qty := range changes {
		item, ok := itemsByID[itemID]
		if !ok {
			return nil, fmt.Errorf("%w: 行项 %s 不属于该订单", ErrValidation, itemID)
		}
		if item.Status == entity.OrderItemStatusReceived {
			return nil, fmt.Errorf("%w: 行项 %s 已收货，不可调整数量", ErrValidation, item.Name)
		}
		if qty <= 0 || qty > 99999 {
			return nil, fmt.Errorf("%w: 行项 %s 数量必须在 (0, 99999] 内", ErrValidation, item.Name)
		}
	}

	for itemID, qty := range changes {
		item := itemsByID[itemID]
		delta := qty - item.Quantity
		if delta == 0 {
			continue
		}
		item.Quantity = qty
		if err := s.orderRepo.UpdateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("更新行项失败: %w", err)
		}
		if order.Status == entity.OrderStatusSent && len(item.MaterialIDs) > 0 {
			share := delta / float64(len(item.MaterialIDs))
			for _, mid := range item.MaterialIDs {
				m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
				if err != nil {
					return nil, err
				}
				m.OrderedQty += share
				if err := s.materialRepo.Update(ctx, m); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := s.RecalculateTotal(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, orderID)
}

// DeleteItems 删除订单行项。已收货行项拒绝删除并列入 SkippedItems；
// 其余行项的来源物料退回 not_ordered 并解除预占
func (s *OrderService) DeleteItems(ctx context.Context, tenantID, orderID string, itemIDs []string) (*DeleteItemsResult, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[string]*entity.OrderItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	result := &DeleteItemsResult{SkippedItems: []string{}}
	var deletable []string
	for _, id := range itemIDs {
		item, ok := itemsByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: 行项 %s 不属于该订单", ErrValidation, id)
		}
		if item.Status == entity.OrderItemStatusReceived {
			result.SkippedItems = append(result.SkippedItems, item.Name)
			continue
		}
		deletable = append(deletable, id)
	}

	for _, id := range deletable {
		item := itemsByID[id]
		for _, mid := range item.MaterialIDs {
			m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			if entity.MaterialIsTerminal(m.Status) {
				continue
			}
			m.Status = entity.MaterialStatusNotOrdered
			m.OrderID = nil
			m.OrderedQty = 0
			if err := s.materialRepo.Update(ctx, m); err != nil {
				return nil, fmt.Errorf("物料退回失败: %w", err)
			}
		}
	}
	if err := s.orderRepo.DeleteItems(ctx, tenantID, deletable); err != nil {
		return nil, fmt.Errorf("删除行项失败: %w", err)
	}
	if err := s.RecalculateTotal(ctx, tenantID, orderID); err != nil {
		return nil, err
	}

	result.Deleted = len(deletable)
	result.RemainingItems = len(order.Items) - len(deletable)
	return result, nil
}

// Delete 删除订单。policy 决定未收货物料的去向：
// revert 退回 not_ordered，mark_received 直接标记收货
func (s *OrderService) Delete(ctx context.Context, tenantID, orderID, policy string) error {
	if policy != OrderDisposalRevert && policy != OrderDisposalMarkReceived {
		return fmt.Errorf("%w: 未知处置策略 %s", ErrValidation, policy)
	}
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	now := time.Now()
	productIDs := make(map[string]bool)
	for _, item := range order.Items {
		for _, mid := range item.MaterialIDs {
			m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return err
			}
			productIDs[m.ProductID] = true
			if entity.MaterialIsTerminal(m.Status) {
				m.OrderID = nil
				if err := s.materialRepo.Update(ctx, m); err != nil {
					return err
				}
				continue
			}
			switch policy {
			case OrderDisposalRevert:
				m.Status = entity.MaterialStatusNotOrdered
				m.OrderID = nil
				m.OrderedQty = 0
			case OrderDisposalMarkReceived:
				m.Status = entity.MaterialStatusReceived
				m.ReceivedAt = &now
				m.OrderID = nil
			}
			if err := s.materialRepo.Update(ctx, m); err != nil {
				return fmt.Errorf("物料处置失败: %w", err)
			}
		}
	}
	if policy == OrderDisposalMarkReceived {
		for pid := range productIDs {
			if err := s.materialSvc.maybePromoteProduct(ctx, tenantID, pid); err != nil {
				return err
			}
		}
	}
	return s.orderRepo.Delete(ctx, tenantID, orderID)
}

// RevertToDraft 将已发出/已收货订单回退为草稿。
// 未收货物料重置为 not_ordered 并解除预占，已收货物料保持不变
func (s *OrderService) RevertToDraft(ctx context.Context, tenantID, orderID string) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.OrderCanTransition(order.Status, entity.OrderStatusDraft) {
		return nil, fmt.Errorf("%w: 订单不能从 %s 回退为 %s", ErrInvalidTransition, order.Status, entity.OrderStatusDraft)
	}

	for _, item := range order.Items {
		if item.Status == entity.OrderItemStatusReceived {
			continue
		}
		for _, mid := range item.MaterialIDs {
			m, err := s.materialRepo.FindByID(ctx, tenantID, mid)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			if entity.MaterialIsTerminal(m.Status) {
				continue
			}
			if m.Status == entity.MaterialStatusOrdered {
				m.Status = entity.MaterialStatusNotOrdered
			}
			m.OrderedQty = 0
			if err := s.materialRepo.Update(ctx, m); err != nil {
				return nil, fmt.Errorf("物料回退失败: %w", err)
			}
		}
	}

	order.Status = entity.OrderStatusDraft
	order.SentAt = nil
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("订单回退失败: %w", err)
	}
	return order, nil
}

// RecalculateTotal 重算订单总额 Σ(数量 × 预期单价)，幂等
func (s *OrderService) RecalculateTotal(ctx context.Context, tenantID, orderID string) error {
	items, err := s.orderRepo.ListItems(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	var total float64
	for _, item := range items {
		total += item.Quantity * item.ExpectedPrice
	}
	return s.orderRepo.UpdateTotalAmount(ctx, tenantID, orderID, total)
}
