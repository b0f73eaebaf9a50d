package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"go.uber.org/zap"
)

// WorkOrderService 生产工单服务。开工是全有或全无的门禁操作：
// 任何一项检查失败都不产生写入
type WorkOrderService struct {
	woRepo       *repository.WorkOrderRepository
	productRepo  *repository.ProductRepository
	materialRepo *repository.MaterialRepository
	projectRepo  *repository.ProjectRepository
	workerRepo   *repository.WorkerRepository
	taskRepo     *repository.TaskRepository
	attendance   AttendanceChecker
	logger       *zap.Logger
}

func NewWorkOrderService(woRepo *repository.WorkOrderRepository, productRepo *repository.ProductRepository,
	materialRepo *repository.MaterialRepository, projectRepo *repository.ProjectRepository,
	workerRepo *repository.WorkerRepository, taskRepo *repository.TaskRepository,
	attendance AttendanceChecker, logger *zap.Logger) *WorkOrderService {
	return &WorkOrderService{
		woRepo:       woRepo,
		productRepo:  productRepo,
		materialRepo: materialRepo,
		projectRepo:  projectRepo,
		workerRepo:   workerRepo,
		taskRepo:     taskRepo,
		attendance:   attendance,
		logger:       logger,
	}
}

// WorkOrderItemRequest 工单行项请求
type WorkOrderItemRequest struct {
	ProductID   string               `json:"product_id" binding:"required"`
	Assignments entity.AssignmentMap `json:"assignments"`
	Value       float64              `json:"value"`
}

// CreateWorkOrderRequest 创建工单请求
type CreateWorkOrderRequest struct {
	Steps []string               `json:"steps"`
	Items []WorkOrderItemRequest `json:"items" binding:"required,min=1"`
	Notes string                 `json:"notes"`
}

// Create 创建工单。产品须已备料完成（materials_ready），
// 加入工单后转 waiting_for_production。未指定工序链时使用默认工序
func (s *WorkOrderService) Create(ctx context.Context, tenantID, userID string, req *CreateWorkOrderRequest) (*entity.WorkOrder, error) {
	steps := req.Steps
	if len(steps) == 0 {
		steps = entity.DefaultProductionSteps
	}

	wo := &entity.WorkOrder{
		ID:        newID(),
		TenantID:  tenantID,
		WONo:      generateNo("WO"),
		Status:    entity.WorkOrderStatusWaiting,
		Steps:     steps,
		Notes:     req.Notes,
		CreatedBy: userID,
	}

	for _, ir := range req.Items {
		p, err := s.productRepo.FindByID(ctx, tenantID, ir.ProductID)
		if err != nil {
			return nil, fmt.Errorf("产品不存在: %w", err)
		}
		if p.Status != entity.ProductStatusMaterialsReady && p.Status != entity.ProductStatusWaitingProduction {
			return nil, fmt.Errorf("%w: 产品 %s 尚未备料完成（当前 %s）", ErrValidation, p.Name, p.Status)
		}
		wo.Items = append(wo.Items, entity.WorkOrderItem{
			ID:          newID(),
			TenantID:    tenantID,
			WorkOrderID: wo.ID,
			ProductID:   ir.ProductID,
			Status:      entity.WorkOrderItemStatusWaiting,
			Assignments: ir.Assignments,
			Value:       ir.Value,
		})
	}

	if err := s.woRepo.Create(ctx, wo); err != nil {
		return nil, fmt.Errorf("创建工单失败: %w", err)
	}
	for _, item := range wo.Items {
		if err := s.productRepo.UpdateStatus(ctx, tenantID, item.ProductID, entity.ProductStatusWaitingProduction); err != nil {
			return nil, err
		}
	}
	return wo, nil
}

// FindAll 分页查询工单
func (s *WorkOrderService) FindAll(ctx context.Context, tenantID string, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	return s.woRepo.FindAll(ctx, tenantID, page, pageSize, filters)
}

// Get 查询工单详情
func (s *WorkOrderService) Get(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error) {
	return s.woRepo.FindByID(ctx, tenantID, id)
}

// Schedule 排期工单，同时扫描各产品的必备物料：
// 未就绪且无在办任务的，生成高优先级采购缺口任务
func (s *WorkOrderService) Schedule(ctx context.Context, tenantID, id string, start, end *time.Time) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != entity.WorkOrderStatusScheduled && !entity.WorkOrderCanTransition(wo.Status, entity.WorkOrderStatusScheduled) {
		return nil, fmt.Errorf("%w: 工单不能从 %s 转为 %s", ErrInvalidTransition, wo.Status, entity.WorkOrderStatusScheduled)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: 计划结束时间早于开始时间", ErrValidation)
	}

	wo.ScheduledStart = start
	wo.ScheduledEnd = end
	wo.Status = entity.WorkOrderStatusScheduled
	if err := s.woRepo.Update(ctx, wo); err != nil {
		return nil, fmt.Errorf("排期工单失败: %w", err)
	}

	for _, item := range wo.Items {
		materials, err := s.materialRepo.ListByProduct(ctx, tenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			if !m.Essential || entity.MaterialIsEssentialReady(m.Status) {
				continue
			}
			exists, err := s.taskRepo.ExistsOpenForMaterial(ctx, tenantID, m.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
			mid := m.ID
			task := &entity.Task{
				ID:          newID(),
				TenantID:    tenantID,
				Title:       fmt.Sprintf("采购缺口：%s", m.Name),
				Description: fmt.Sprintf("工单 %s 计划开工，必备物料 %s 尚未到料（当前 %s）", wo.WONo, m.Name, m.Status),
				Priority:    entity.TaskPriorityHigh,
				Status:      entity.TaskStatusOpen,
				MaterialID:  &mid,
				WorkOrderID: &wo.ID,
				DueDate:     start,
			}
			if err := s.taskRepo.Create(ctx, task); err != nil {
				return nil, fmt.Errorf("创建采购缺口任务失败: %w", err)
			}
		}
	}
	return wo, nil
}

// Start 开工。先完成全部检查（计划时间、必备物料到料、人员考勤），
// 全部通过后才写入：工单 in_progress、行项 in_progress、
// 产品进入首道工序、项目推进生产中
func (s *WorkOrderService) Start(ctx context.Context, tenantID, id string) (*entity.WorkOrder, error) {
	wo, err := s.woRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !entity.WorkOrderCanTransition(wo.Status, entity.WorkOrderStatusInProgress) {
		return nil, fmt.Errorf("%w: 工单不能从 %s 转为 %s", ErrInvalidTransition, wo.Status, entity.WorkOrderStatusInProgress)
	}
	if len(wo.Items) == 0 {
		return nil, fmt.Errorf("%w: 工单没有行项，不能开工", ErrValidation)
	}
	if wo.ScheduledStart != nil && time.Now().Before(*wo.ScheduledStart) {
		return nil, fmt.Errorf("%w: 未到计划开工时间 %s", ErrValidation, wo.ScheduledStart.Format("2006-01-02 15:04"))
	}

	// 检查阶段：无任何写入
	projectIDs := make(map[string]bool)
	for _, item := range wo.Items {
		p, err := s.productRepo.FindByID(ctx, tenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		projectIDs[p.ProjectID] = true

		materials, err := s.materialRepo.ListByProduct(ctx, tenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, m := range materials {
			if m.Essential && !entity.MaterialIsEssentialReady(m.Status) {
				missing = append(missing, m.Name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: 产品 %s 的必备物料未到料：%s", ErrValidation, p.Name, strings.Join(missing, "、"))
		}
	}

	if err := s.checkAttendance(ctx, tenantID, wo); err != nil {
		return nil, err
	}

	// 写入阶段
	now := time.Now()
	c := NewCascade(s.logger, "workorder.start")

	err = c.Step("行项开工", func() error {
		for i := range wo.Items {
			item := &wo.Items[i]
			if item.Status != entity.WorkOrderItemStatusWaiting {
				continue // 重试
			}
			item.Status = entity.WorkOrderItemStatusInProgress
			if err := s.woRepo.UpdateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.Step("产品进入首道工序", func() error {
		for _, item := range wo.Items {
			if err := s.productRepo.UpdateStatus(ctx, tenantID, item.ProductID, wo.Steps[0]); err != nil {
				return err
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

	err = c.Step("工单置为进行中", func() error {
		wo.Status = entity.WorkOrderStatusInProgress
		wo.StartedAt = &now
		return s.woRepo.Update(ctx, wo)
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// checkAttendance 校验工单全部分配人员（含帮工）当日可用，
// 第一个不可用的人即中止并点名
func (s *WorkOrderService) checkAttendance(ctx context.Context, tenantID string, wo *entity.WorkOrder) error {
	seen := make(map[string]bool)
	for _, item := range wo.Items {
		for _, assign := range item.Assignments {
			ids := append(append([]string{}, assign.WorkerIDs...), assign.HelperIDs...)
			for _, wid := range ids {
				if seen[wid] {
					continue
				}
				seen[wid] = true
				ok, reason, err := s.attendance.CanStart(ctx, tenantID, wid)
				if err != nil {
					return err
				}
				if !ok {
					name := wid
					if w, err := s.workerRepo.FindByID(ctx, tenantID, wid); err == nil {
						name = w.Name
					}
					return fmt.Errorf("%w: 工人 %s 今日不可用（%s）", ErrValidation, name, reason)
				}
			}
		}
	}
	return nil
}

// CompleteItemStep 完成行项的一道工序。工序必须按工单工序链顺序完成；
// 产品推进到下一工序，末道工序完成后产品 ready、行项 done，
// 全部行项完成后工单 completed 并重算项目状态
func (s *WorkOrderService) CompleteItemStep(ctx context.Context, tenantID, itemID, step string) (*entity.WorkOrderItem, error) {
	item, err := s.woRepo.FindItemByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	wo, err := s.woRepo.FindByID(ctx, tenantID, item.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo.Status != entity.WorkOrderStatusInProgress {
		return nil, fmt.Errorf("%w: 工单当前状态 %s，不能报工", ErrInvalidTransition, wo.Status)
	}
	if item.Status == entity.WorkOrderItemStatusDone {
		return nil, fmt.Errorf("%w: 行项已完工", ErrValidation)
	}

	stepIdx := -1
	for i, st := range wo.Steps {
		if st == step {
			stepIdx = i
			break
		}
	}
	if stepIdx < 0 {
		return nil, fmt.Errorf("%w: 工序 %s 不在该工单的工序链中", ErrValidation, step)
	}

	// 行项状态记录已推进到的最远工序，只允许完成紧随其后的一道
	expected := 0
	if item.Status != entity.WorkOrderItemStatusInProgress {
		for i, st := range wo.Steps {
			if st == item.Status {
				expected = i + 1
				break
			}
		}
	}
	if stepIdx != expected {
		return nil, fmt.Errorf("%w: 工序须按顺序完成，下一道应为 %s", ErrValidation, wo.Steps[expected])
	}

	next := entity.NextProductStep(wo.Steps, step)
	item.Status = step
	if next == entity.ProductStatusReady {
		item.Status = entity.WorkOrderItemStatusDone
	}
	if err := s.woRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("更新行项失败: %w", err)
	}
	if err := s.productRepo.UpdateStatus(ctx, tenantID, item.ProductID, next); err != nil {
		return nil, err
	}

	// 整单完工检查
	items, err := s.woRepo.ListItems(ctx, tenantID, wo.ID)
	if err != nil {
		return nil, err
	}
	allDone := true
	for _, it := range items {
		if it.Status != entity.WorkOrderItemStatusDone {
			allDone = false
			break
		}
	}
	if allDone {
		now := time.Now()
		wo.Status = entity.WorkOrderStatusCompleted
		wo.CompletedAt = &now
		if err := s.woRepo.Update(ctx, wo); err != nil {
			return nil, err
		}
	}

	p, err := s.productRepo.FindByID(ctx, tenantID, item.ProductID)
	if err != nil {
		return nil, err
	}
	if err := syncProjectStatus(ctx, s.projectRepo, s.productRepo, tenantID, p.ProjectID); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete 删除工单。policy 决定产品去向：
// completed 标记 ready，waiting 退回 waiting_for_production
func (s *WorkOrderService) Delete(ctx context.Context, tenantID, id, policy string) error {
	if policy != entity.WODisposalCompleted && policy != entity.WODisposalWaiting {
		return fmt.Errorf("%w: 未知处置策略 %s", ErrValidation, policy)
	}
	wo, err := s.woRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	target := entity.ProductStatusWaitingProduction
	if policy == entity.WODisposalCompleted {
		target = entity.ProductStatusReady
	}
	projectIDs := make(map[string]bool)
	for _, item := range wo.Items {
		p, err := s.productRepo.FindByID(ctx, tenantID, item.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return err
		}
		projectIDs[p.ProjectID] = true
		if err := s.productRepo.UpdateStatus(ctx, tenantID, item.ProductID, target); err != nil {
			return err
		}
	}
	if err := s.woRepo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("删除工单失败: %w", err)
	}
	if policy == entity.WODisposalCompleted {
		for pid := range projectIDs {
			if err := syncProjectStatus(ctx, s.projectRepo, s.productRepo, tenantID, pid); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddWorkLog 记录工时。同一工人同一行项同一天只记一次，
// 日薪取自工人档案快照，行项人工成本随之重算
func (s *WorkOrderService) AddWorkLog(ctx context.Context, tenantID, itemID, workerID, logDate string) (*entity.WorkLog, error) {
	if _, err := time.Parse("2006-01-02", logDate); err != nil {
		return nil, fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD", ErrValidation)
	}
	item, err := s.woRepo.FindItemByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	worker, err := s.workerRepo.FindByID(ctx, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	exists, err := s.woRepo.WorkLogExists(ctx, tenantID, workerID, itemID, logDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: 工人 %s 当日工时已记录", ErrValidation, worker.Name)
	}

	wl := &entity.WorkLog{
		ID:              newID(),
		TenantID:        tenantID,
		WorkerID:        workerID,
		WorkOrderItemID: itemID,
		LogDate:         logDate,
		DailyRate:       worker.DailyRate,
	}
	if err := s.woRepo.CreateWorkLog(ctx, wl); err != nil {
		return nil, fmt.Errorf("记录工时失败: %w", err)
	}

	// 重算行项人工成本
	logs, err := s.woRepo.ListWorkLogs(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	var cost float64
	for _, l := range logs {
		cost += l.DailyRate
	}
	item.LaborCost = cost
	if err := s.woRepo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return wl, nil
}

// ListWorkLogs 查询行项工时记录
func (s *WorkOrderService) ListWorkLogs(ctx context.Context, tenantID, itemID string) ([]entity.WorkLog, error) {
	return s.woRepo.ListWorkLogs(ctx, tenantID, itemID)
}
