package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// ProjectService 项目服务
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	productRepo *repository.ProductRepository
	offerRepo   *repository.OfferRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository, productRepo *repository.ProductRepository, offerRepo *repository.OfferRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, productRepo: productRepo, offerRepo: offerRepo}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name          string     `json:"name" binding:"required"`
	ClientName    string     `json:"client_name" binding:"required"`
	ClientContact string     `json:"client_contact"`
	Address       string     `json:"address"`
	Deadline      *time.Time `json:"deadline"`
	Notes         string     `json:"notes"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Name          *string    `json:"name"`
	ClientName    *string    `json:"client_name"`
	ClientContact *string    `json:"client_contact"`
	Address       *string    `json:"address"`
	Deadline      *time.Time `json:"deadline"`
	Notes         *string    `json:"notes"`
}

// Create 创建项目，初始状态 draft
func (s *ProjectService) Create(ctx context.Context, tenantID, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	p := &entity.Project{
		ID:            newID(),
		TenantID:      tenantID,
		Name:          req.Name,
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		Address:       req.Address,
		Status:        entity.ProjectStatusDraft,
		Deadline:      req.Deadline,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建项目失败: %w", err)
	}
	return p, nil
}

// FindAll 分页查询项目
func (s *ProjectService) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	return s.projectRepo.FindAll(ctx, tenantID, page, pageSize, filters)
}

// Get 查询项目详情（装配产品与报价）
func (s *ProjectService) Get(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListByProject(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	offers, err := s.offerRepo.ListByProject(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	p.Products = products
	p.Offers = offers
	return p, nil
}

// Update 更新项目基本信息，状态不经此处变更
func (s *ProjectService) Update(ctx context.Context, tenantID, id string, req *UpdateProjectRequest) (*entity.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.ClientName != nil {
		p.ClientName = *req.ClientName
	}
	if req.ClientContact != nil {
		p.ClientContact = *req.ClientContact
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Deadline != nil {
		p.Deadline = req.Deadline
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新项目失败: %w", err)
	}
	return p, nil
}

// UpdateStatus 显式变更项目状态，非法转移直接拒绝
func (s *ProjectService) UpdateStatus(ctx context.Context, tenantID, id, status string) (*entity.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Status == status {
		return p, nil
	}
	if !entity.ProjectCanTransition(p.Status, status) {
		return nil, fmt.Errorf("%w: 项目不能从 %s 转为 %s", ErrInvalidTransition, p.Status, status)
	}
	if err := s.projectRepo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return nil, fmt.Errorf("更新项目状态失败: %w", err)
	}
	p.Status = status
	return p, nil
}

// Delete 删除项目（级联删除产品、物料、报价）
func (s *ProjectService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.projectRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, tenantID, id)
}

// Promote 单调推进项目状态。项目已领先于目标状态、或转移不可达
// （如 cancelled/completed）时静默跳过，级联中多次触发也只推进一次
func (s *ProjectService) Promote(ctx context.Context, tenantID, projectID, target string) error {
	return promoteProject(ctx, s.projectRepo, tenantID, projectID, target)
}

// SyncStatus 依据产品进度重算项目状态：任一产品进入工序链则 in_production，
// 全部产品 ready 则 completed。只前进不后退
func (s *ProjectService) SyncStatus(ctx context.Context, tenantID, projectID string) error {
	return syncProjectStatus(ctx, s.projectRepo, s.productRepo, tenantID, projectID)
}

// promoteProject 带单调性与转移表双重守卫的项目状态推进
func promoteProject(ctx context.Context, projectRepo *repository.ProjectRepository, tenantID, projectID, target string) error {
	p, err := projectRepo.FindByID(ctx, tenantID, projectID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}
	if entity.ProjectRank(p.Status) >= entity.ProjectRank(target) {
		return nil
	}
	if !entity.ProjectCanTransition(p.Status, target) {
		return nil
	}
	return projectRepo.UpdateStatus(ctx, tenantID, projectID, target)
}

// prepStatuses 产品的备料阶段状态（尚未进入工序链）
var prepStatuses = map[string]bool{
	entity.ProductStatusWaiting:           true,
	entity.ProductStatusMaterialsOrdered:  true,
	entity.ProductStatusMaterialsReady:    true,
	entity.ProductStatusWaitingProduction: true,
}

func syncProjectStatus(ctx context.Context, projectRepo *repository.ProjectRepository, productRepo *repository.ProductRepository, tenantID, projectID string) error {
	products, err := productRepo.ListByProject(ctx, tenantID, projectID)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	allReady := true
	anyStarted := false
	for _, p := range products {
		if p.Status != entity.ProductStatusReady {
			allReady = false
		}
		if !prepStatuses[p.Status] {
			anyStarted = true
		}
	}
	switch {
	case allReady:
		return promoteProject(ctx, projectRepo, tenantID, projectID, entity.ProjectStatusCompleted)
	case anyStarted:
		return promoteProject(ctx, projectRepo, tenantID, projectID, entity.ProjectStatusInProduction)
	}
	return nil
}
