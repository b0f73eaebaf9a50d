package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// TaskService 任务服务。采购缺口任务由工单排期自动生成，
// 这里提供人工建任务与办结
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// Create 创建任务
func (s *TaskService) Create(ctx context.Context, tenantID, userID string, req *CreateTaskRequest) (*entity.Task, error) {
	priority := req.Priority
	if priority == "" {
		priority = entity.TaskPriorityNormal
	}
	if priority != entity.TaskPriorityNormal && priority != entity.TaskPriorityHigh {
		return nil, fmt.Errorf("%w: 未知优先级 %s", ErrValidation, priority)
	}
	t := &entity.Task{
		ID:          newID(),
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      entity.TaskStatusOpen,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}
	if err := s.taskRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	return t, nil
}

// List 查询租户全部任务
func (s *TaskService) List(ctx context.Context, tenantID string) ([]entity.Task, error) {
	return s.taskRepo.ListByTenant(ctx, tenantID)
}

// Complete 办结任务
func (s *TaskService) Complete(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	t, err := s.taskRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == entity.TaskStatusDone {
		return t, nil
	}
	t.Status = entity.TaskStatusDone
	if err := s.taskRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("办结任务失败: %w", err)
	}
	return t, nil
}

// Delete 删除任务
func (s *TaskService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.taskRepo.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, tenantID, id)
}
