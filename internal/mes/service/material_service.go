package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// MaterialService 产品物料服务
type MaterialService struct {
	materialRepo *repository.MaterialRepository
	productRepo  *repository.ProductRepository
}

func NewMaterialService(materialRepo *repository.MaterialRepository, productRepo *repository.ProductRepository) *MaterialService {
	return &MaterialService{materialRepo: materialRepo, productRepo: productRepo}
}

// CreateMaterialRequest 创建物料请求
type CreateMaterialRequest struct {
	ProductID  string  `json:"product_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Unit       string  `json:"unit"`
	Quantity   float64 `json:"quantity" binding:"required"`
	UnitPrice  float64 `json:"unit_price"`
	Essential  bool    `json:"essential"`
	SupplierID *string `json:"supplier_id"`
	Notes      string  `json:"notes"`
}

// UpdateMaterialRequest 更新物料请求
type UpdateMaterialRequest struct {
	Name       *string  `json:"name"`
	Unit       *string  `json:"unit"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	Essential  *bool    `json:"essential"`
	SupplierID *string  `json:"supplier_id"`
	Notes      *string  `json:"notes"`
}

// Create 创建物料，初始状态 not_ordered，同步重算产品物料成本
func (s *MaterialService) Create(ctx context.Context, tenantID string, req *CreateMaterialRequest) (*entity.ProductMaterial, error) {
	if _, err := s.productRepo.FindByID(ctx, tenantID, req.ProductID); err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: 物料数量必须大于0", ErrValidation)
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	m := &entity.ProductMaterial{
		ID:         newID(),
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		Name:       req.Name,
		Unit:       unit,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		TotalPrice: req.Quantity * req.UnitPrice,
		Status:     entity.MaterialStatusNotOrdered,
		Essential:  req.Essential,
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
	}
	if err := s.materialRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("创建物料失败: %w", err)
	}
	if err := s.RecalculateProductCost(ctx, tenantID, req.ProductID); err != nil {
		return nil, err
	}
	return m, nil
}

// Update 更新物料。已挂单物料的数量与单价在订单行项上调整，此处拒绝
func (s *MaterialService) Update(ctx context.Context, tenantID, id string, req *UpdateMaterialRequest) (*entity.ProductMaterial, error) {
	m, err := s.materialRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	priceChanged := false
	if req.Quantity != nil || req.UnitPrice != nil {
		if m.Status != entity.MaterialStatusNotOrdered || m.OrderID != nil {
			return nil, fmt.Errorf("%w: 已下单物料的数量与单价请在订单行项上调整", ErrValidation)
		}
		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				return nil, fmt.Errorf("%w: 物料数量必须大于0", ErrValidation)
			}
			m.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			m.UnitPrice = *req.UnitPrice
		}
		m.TotalPrice = m.Quantity * m.UnitPrice
		priceChanged = true
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Unit != nil {
		m.Unit = *req.Unit
	}
	if req.Essential != nil {
		m.Essential = *req.Essential
	}
	if req.SupplierID != nil {
		m.SupplierID = req.SupplierID
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}
	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("更新物料失败: %w", err)
	}
	if priceChanged {
		if err := s.RecalculateProductCost(ctx, tenantID, m.ProductID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetStatus 手工推进物料状态（received → on_stock / in_use / installed 等），
// 进入终态时检查产品是否备料完成
func (s *MaterialService) SetStatus(ctx context.Context, tenantID, id, status string) (*entity.ProductMaterial, error) {
	m, err := s.materialRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if m.Status == status {
		return m, nil
	}
	if !entity.MaterialCanTransition(m.Status, status) {
		return nil, fmt.Errorf("%w: 物料不能从 %s 转为 %s", ErrInvalidTransition, m.Status, status)
	}
	m.Status = status
	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("更新物料状态失败: %w", err)
	}
	if entity.MaterialIsTerminal(status) {
		if err := s.maybePromoteProduct(ctx, tenantID, m.ProductID); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Delete 删除物料并重算产品成本
func (s *MaterialService) Delete(ctx context.Context, tenantID, id string) error {
	m, err := s.materialRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if m.Status == entity.MaterialStatusOrdered {
		return fmt.Errorf("%w: 物料已在采购订单中，请先从订单移除", ErrValidation)
	}
	if err := s.materialRepo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("删除物料失败: %w", err)
	}
	return s.RecalculateProductCost(ctx, tenantID, m.ProductID)
}

// ListByProduct 查询产品下的物料
func (s *MaterialService) ListByProduct(ctx context.Context, tenantID, productID string) ([]entity.ProductMaterial, error) {
	return s.materialRepo.ListByProduct(ctx, tenantID, productID)
}

// ListUnordered 未订购物料清单（建单候选）
func (s *MaterialService) ListUnordered(ctx context.Context, tenantID string) ([]entity.ProductMaterial, error) {
	return s.materialRepo.ListUnordered(ctx, tenantID)
}

// AddGlassItem 为物料添加玻璃子行项
func (s *MaterialService) AddGlassItem(ctx context.Context, tenantID, materialID string, g *entity.GlassItem) (*entity.GlassItem, error) {
	if _, err := s.materialRepo.FindByID(ctx, tenantID, materialID); err != nil {
		return nil, err
	}
	if g.WidthMM <= 0 || g.HeightMM <= 0 {
		return nil, fmt.Errorf("%w: 玻璃尺寸必须大于0", ErrValidation)
	}
	g.ID = newID()
	g.TenantID = tenantID
	g.MaterialID = materialID
	if g.Quantity <= 0 {
		g.Quantity = 1
	}
	if err := s.materialRepo.CreateGlassItem(ctx, g); err != nil {
		return nil, fmt.Errorf("创建玻璃子行项失败: %w", err)
	}
	return g, nil
}

// AddAluDoorItem 为物料添加铝框门子行项
func (s *MaterialService) AddAluDoorItem(ctx context.Context, tenantID, materialID string, a *entity.AluDoorItem) (*entity.AluDoorItem, error) {
	if _, err := s.materialRepo.FindByID(ctx, tenantID, materialID); err != nil {
		return nil, err
	}
	if a.WidthMM <= 0 || a.HeightMM <= 0 {
		return nil, fmt.Errorf("%w: 门框尺寸必须大于0", ErrValidation)
	}
	a.ID = newID()
	a.TenantID = tenantID
	a.MaterialID = materialID
	if a.Quantity <= 0 {
		a.Quantity = 1
	}
	if err := s.materialRepo.CreateAluDoorItem(ctx, a); err != nil {
		return nil, fmt.Errorf("创建铝框门子行项失败: %w", err)
	}
	return a, nil
}

// RecalculateProductCost 重算产品物料成本（各物料 TotalPrice 之和），幂等
func (s *MaterialService) RecalculateProductCost(ctx context.Context, tenantID, productID string) error {
	materials, err := s.materialRepo.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	var cost float64
	for _, m := range materials {
		cost += m.TotalPrice
	}
	return s.productRepo.UpdateMaterialCost(ctx, tenantID, productID, cost)
}

// maybePromoteProduct 产品全部物料到达终态时，从备料态升为 materials_ready
func (s *MaterialService) maybePromoteProduct(ctx context.Context, tenantID, productID string) error {
	materials, err := s.materialRepo.ListByProduct(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		return nil
	}
	for _, m := range materials {
		if !entity.MaterialIsTerminal(m.Status) {
			return nil
		}
	}
	p, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if p.Status != entity.ProductStatusWaiting && p.Status != entity.ProductStatusMaterialsOrdered {
		return nil
	}
	return s.productRepo.UpdateStatus(ctx, tenantID, productID, entity.ProductStatusMaterialsReady)
}
