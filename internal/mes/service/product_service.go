package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// ProductService 产品服务
type ProductService struct {
	productRepo *repository.ProductRepository
	projectRepo *repository.ProjectRepository
}

func NewProductService(productRepo *repository.ProductRepository, projectRepo *repository.ProjectRepository) *ProductService {
	return &ProductService{productRepo: productRepo, projectRepo: projectRepo}
}

// CreateProductRequest 创建产品请求
type CreateProductRequest struct {
	ProjectID string  `json:"project_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Notes     string  `json:"notes"`
}

// UpdateProductRequest 更新产品请求
type UpdateProductRequest struct {
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Notes    *string  `json:"notes"`
}

// Create 创建产品，初始状态 waiting
func (s *ProductService) Create(ctx context.Context, tenantID string, req *CreateProductRequest) (*entity.Product, error) {
	if _, err := s.projectRepo.FindByID(ctx, tenantID, req.ProjectID); err != nil {
		return nil, fmt.Errorf("项目不存在: %w", err)
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	p := &entity.Product{
		ID:        newID(),
		TenantID:  tenantID,
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Quantity:  qty,
		Unit:      unit,
		Status:    entity.ProductStatusWaiting,
		Notes:     req.Notes,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return p, nil
}

// ListByProject 查询项目下的产品
func (s *ProductService) ListByProject(ctx context.Context, tenantID, projectID string) ([]entity.Product, error) {
	return s.productRepo.ListByProject(ctx, tenantID, projectID)
}

// Get 查询产品
func (s *ProductService) Get(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return s.productRepo.FindByID(ctx, tenantID, id)
}

// Update 更新产品基本信息，状态由备料与生产级联驱动
func (s *ProductService) Update(ctx context.Context, tenantID, id string, req *UpdateProductRequest) (*entity.Product, error) {
	p, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: 产品数量必须大于0", ErrValidation)
		}
		p.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}
	return p, nil
}

// Delete 删除产品及其物料
func (s *ProductService) Delete(ctx context.Context, tenantID, id string) error {
	p, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("删除产品失败: %w", err)
	}
	// 删除后项目进度可能发生变化
	return syncProjectStatus(ctx, s.projectRepo, s.productRepo, tenantID, p.ProjectID)
}
