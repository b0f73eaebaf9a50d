package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// WorkerService 工人服务
type WorkerService struct {
	workerRepo *repository.WorkerRepository
	attendance *RedisAttendance
}

func NewWorkerService(workerRepo *repository.WorkerRepository, attendance *RedisAttendance) *WorkerService {
	return &WorkerService{workerRepo: workerRepo, attendance: attendance}
}

// CreateWorkerRequest 创建工人请求
type CreateWorkerRequest struct {
	Name      string  `json:"name" binding:"required"`
	Phone     string  `json:"phone"`
	DailyRate float64 `json:"daily_rate"`
}

// UpdateWorkerRequest 更新工人请求
type UpdateWorkerRequest struct {
	Name      *string  `json:"name"`
	Phone     *string  `json:"phone"`
	DailyRate *float64 `json:"daily_rate"`
	Active    *bool    `json:"active"`
}

// Create 创建工人
func (s *WorkerService) Create(ctx context.Context, tenantID string, req *CreateWorkerRequest) (*entity.Worker, error) {
	if req.DailyRate < 0 {
		return nil, fmt.Errorf("%w: 日薪不能为负", ErrValidation)
	}
	w := &entity.Worker{
		ID:        newID(),
		TenantID:  tenantID,
		Name:      req.Name,
		Phone:     req.Phone,
		DailyRate: req.DailyRate,
		Active:    true,
	}
	if err := s.workerRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("创建工人失败: %w", err)
	}
	return w, nil
}

// List 查询租户全部工人
func (s *WorkerService) List(ctx context.Context, tenantID string) ([]entity.Worker, error) {
	return s.workerRepo.ListByTenant(ctx, tenantID)
}

// Get 查询工人
func (s *WorkerService) Get(ctx context.Context, tenantID, id string) (*entity.Worker, error) {
	return s.workerRepo.FindByID(ctx, tenantID, id)
}

// Update 更新工人。日薪调整只影响之后的工时记录
func (s *WorkerService) Update(ctx context.Context, tenantID, id string, req *UpdateWorkerRequest) (*entity.Worker, error) {
	w, err := s.workerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Phone != nil {
		w.Phone = *req.Phone
	}
	if req.DailyRate != nil {
		if *req.DailyRate < 0 {
			return nil, fmt.Errorf("%w: 日薪不能为负", ErrValidation)
		}
		w.DailyRate = *req.DailyRate
	}
	if req.Active != nil {
		w.Active = *req.Active
	}
	if err := s.workerRepo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("更新工人失败: %w", err)
	}
	return w, nil
}

// Delete 删除工人
func (s *WorkerService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.workerRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.workerRepo.Delete(ctx, tenantID, id)
}

// CheckIn 记录工人当日打卡状态
func (s *WorkerService) CheckIn(ctx context.Context, tenantID, id, status string) error {
	if _, err := s.workerRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.attendance.CheckIn(ctx, tenantID, id, status)
}

// Availability 查询工人当日是否可参与生产（开工门禁同源）
func (s *WorkerService) Availability(ctx context.Context, tenantID, id string) (bool, string, error) {
	if _, err := s.workerRepo.FindByID(ctx, tenantID, id); err != nil {
		return false, "", err
	}
	return s.attendance.CanStart(ctx, tenantID, id)
}
