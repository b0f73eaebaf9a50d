package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// SupplierService 供应商服务
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
}

func NewSupplierService(supplierRepo *repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// UpdateSupplierRequest 更新供应商请求
type UpdateSupplierRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// Create 创建供应商
func (s *SupplierService) Create(ctx context.Context, tenantID string, req *CreateSupplierRequest) (*entity.Supplier, error) {
	sup := &entity.Supplier{
		ID:       newID(),
		TenantID: tenantID,
		Name:     req.Name,
		Contact:  req.Contact,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Notes:    req.Notes,
	}
	if err := s.supplierRepo.Create(ctx, sup); err != nil {
		return nil, fmt.Errorf("创建供应商失败: %w", err)
	}
	return sup, nil
}

// List 查询租户全部供应商
func (s *SupplierService) List(ctx context.Context, tenantID string) ([]entity.Supplier, error) {
	return s.supplierRepo.ListByTenant(ctx, tenantID)
}

// Get 查询供应商
func (s *SupplierService) Get(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, tenantID, id)
}

// Update 更新供应商
func (s *SupplierService) Update(ctx context.Context, tenantID, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	sup, err := s.supplierRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.Contact != nil {
		sup.Contact = *req.Contact
	}
	if req.Phone != nil {
		sup.Phone = *req.Phone
	}
	if req.Email != nil {
		sup.Email = *req.Email
	}
	if req.Address != nil {
		sup.Address = *req.Address
	}
	if req.Notes != nil {
		sup.Notes = *req.Notes
	}
	if err := s.supplierRepo.Update(ctx, sup); err != nil {
		return nil, fmt.Errorf("更新供应商失败: %w", err)
	}
	return sup, nil
}

// Delete 删除供应商
func (s *SupplierService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.supplierRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, tenantID, id)
}
