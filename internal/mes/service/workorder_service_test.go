package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func seedWorkOrderFixture(t *testing.T, env *testEnv) *entity.WorkOrder {
	t.Helper()
	ctx := context.Background()
	env.seedProject(t, "proj-wo", entity.ProjectStatusApproved)
	env.seedProduct(t, "prod-wo", "proj-wo", entity.ProductStatusMaterialsReady)
	env.seedMaterial(t, "mat-wo", "prod-wo", "板材", "pcs", 2, 10, true, entity.MaterialStatusReceived)
	env.seedWorker(t, "worker-1", "张三", 300)
	env.seedWorker(t, "worker-2", "李四", 280)

	wo, err := env.workOrder.Create(ctx, testTenant, "test-user", &CreateWorkOrderRequest{
		Items: []WorkOrderItemRequest{{
			ProductID: "prod-wo",
			Assignments: entity.AssignmentMap{
				"cutting": {WorkerIDs: []string{"worker-1"}, HelperIDs: []string{"worker-2"}},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Create work order failed: %v", err)
	}
	return wo
}

// 创建工单：产品转 waiting_for_production，未备料的产品被拒绝
func TestWorkOrderCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)

	if wo.Status != entity.WorkOrderStatusWaiting {
		t.Fatalf("expected waiting, got %s", wo.Status)
	}
	if len(wo.Steps) != len(entity.DefaultProductionSteps) {
		t.Fatalf("expected default steps, got %v", wo.Steps)
	}
	if p := env.productByID(t, "prod-wo"); p.Status != entity.ProductStatusWaitingProduction {
		t.Fatalf("expected product waiting_for_production, got %s", p.Status)
	}

	env.seedProduct(t, "prod-raw", "proj-wo", entity.ProductStatusWaiting)
	_, err := env.workOrder.Create(ctx, testTenant, "test-user", &CreateWorkOrderRequest{
		Items: []WorkOrderItemRequest{{ProductID: "prod-raw"}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unready product, got %v", err)
	}
}

// 排期：必备物料未到料且无在办任务时生成采购缺口任务，重复排期不重复生成
func TestWorkOrderScheduleCreatesGapTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)
	env.seedMaterial(t, "mat-gap", "prod-wo", "五金件", "set", 1, 50, true, entity.MaterialStatusOrdered)

	start := time.Now().Add(-time.Hour)
	end := start.Add(48 * time.Hour)
	if _, err := env.workOrder.Schedule(ctx, testTenant, wo.ID, &start, &end); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	var tasks []entity.Task
	env.db.Where("tenant_id = ? AND material_id = ?", testTenant, "mat-gap").Find(&tasks)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 gap task, got %d", len(tasks))
	}
	if tasks[0].Priority != entity.TaskPriorityHigh {
		t.Fatalf("expected high priority, got %s", tasks[0].Priority)
	}
	if !strings.Contains(tasks[0].Title, "五金件") {
		t.Fatalf("expected material name in title, got %s", tasks[0].Title)
	}

	// 重复排期不再生成
	if _, err := env.workOrder.Schedule(ctx, testTenant, wo.ID, &start, &end); err != nil {
		t.Fatalf("Re-schedule failed: %v", err)
	}
	env.db.Where("tenant_id = ? AND material_id = ?", testTenant, "mat-gap").Find(&tasks)
	if len(tasks) != 1 {
		t.Fatalf("expected gap task not duplicated, got %d", len(tasks))
	}

	// 结束早于开始被拒绝
	bad := start.Add(-time.Hour)
	if _, err := env.workOrder.Schedule(ctx, testTenant, wo.ID, &start, &bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// 未到计划开工时间不可开工
func TestWorkOrderStartBeforeScheduledTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)

	start := time.Now().Add(24 * time.Hour)
	if _, err := env.workOrder.Schedule(ctx, testTenant, wo.ID, &start, nil); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := env.workOrder.Start(ctx, testTenant, wo.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for future start, got %v", err)
	}
}

// 必备物料未到料时开工被拒绝并点名，且无任何写入
func TestWorkOrderStartBlockedByMissingMaterial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)
	env.seedMaterial(t, "mat-missing", "prod-wo", "玻璃", "m2", 3, 80, true, entity.MaterialStatusOrdered)

	_, err := env.workOrder.Start(ctx, testTenant, wo.ID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "玻璃") {
		t.Fatalf("expected missing material named, got %v", err)
	}

	// 检查失败不产生写入
	got, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	if got.Status != entity.WorkOrderStatusWaiting {
		t.Fatalf("expected work order untouched, got %s", got.Status)
	}
	if p := env.productByID(t, "prod-wo"); p.Status != entity.ProductStatusWaitingProduction {
		t.Fatalf("expected product untouched, got %s", p.Status)
	}
}

// 分配人员（含帮工）缺勤时开工被拒绝并点名，且无任何写入
func TestWorkOrderStartBlockedByAbsentWorker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)
	env.attendance.absent["worker-2"] = "请假"

	_, err := env.workOrder.Start(ctx, testTenant, wo.ID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "李四") || !strings.Contains(err.Error(), "请假") {
		t.Fatalf("expected worker named with reason, got %v", err)
	}

	got, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	if got.Status != entity.WorkOrderStatusWaiting {
		t.Fatalf("expected work order untouched, got %s", got.Status)
	}
	for _, item := range got.Items {
		if item.Status != entity.WorkOrderItemStatusWaiting {
			t.Fatalf("expected item untouched, got %s", item.Status)
		}
	}
}

// 开工级联：行项 in_progress、产品进入首道工序、项目 in_production、工单 in_progress
func TestWorkOrderStartCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)

	started, err := env.workOrder.Start(ctx, testTenant, wo.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Status != entity.WorkOrderStatusInProgress {
		t.Fatalf("expected in_progress, got %s", started.Status)
	}
	if started.StartedAt == nil {
		t.Fatal("expected started_at set")
	}

	got, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	for _, item := range got.Items {
		if item.Status != entity.WorkOrderItemStatusInProgress {
			t.Fatalf("expected item in_progress, got %s", item.Status)
		}
	}
	if p := env.productByID(t, "prod-wo"); p.Status != wo.Steps[0] {
		t.Fatalf("expected product in first step %s, got %s", wo.Steps[0], p.Status)
	}
	if p := env.projectByID(t, "proj-wo"); p.Status != entity.ProjectStatusInProduction {
		t.Fatalf("expected project in_production, got %s", p.Status)
	}
}

// 报工必须按工序链顺序；末道工序完成后行项 done、产品 ready、
// 工单 completed、项目 completed
func TestWorkOrderCompleteItemStepChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)
	if _, err := env.workOrder.Start(ctx, testTenant, wo.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	got, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	itemID := got.Items[0].ID

	// 跳过首道工序直接报第二道被拒绝
	if _, err := env.workOrder.CompleteItemStep(ctx, testTenant, itemID, wo.Steps[1]); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for out-of-order step, got %v", err)
	}
	// 不在工序链中的工序被拒绝
	if _, err := env.workOrder.CompleteItemStep(ctx, testTenant, itemID, "polishing"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown step, got %v", err)
	}

	for i, step := range wo.Steps {
		item, err := env.workOrder.CompleteItemStep(ctx, testTenant, itemID, step)
		if err != nil {
			t.Fatalf("CompleteItemStep %s failed: %v", step, err)
		}
		last := i == len(wo.Steps)-1
		if last {
			if item.Status != entity.WorkOrderItemStatusDone {
				t.Fatalf("expected item done, got %s", item.Status)
			}
		} else {
			if item.Status != step {
				t.Fatalf("expected item status %s, got %s", step, item.Status)
			}
			if p := env.productByID(t, "prod-wo"); p.Status != wo.Steps[i+1] {
				t.Fatalf("expected product in %s, got %s", wo.Steps[i+1], p.Status)
			}
		}
	}

	if p := env.productByID(t, "prod-wo"); p.Status != entity.ProductStatusReady {
		t.Fatalf("expected product ready, got %s", p.Status)
	}
	final, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	if final.Status != entity.WorkOrderStatusCompleted {
		t.Fatalf("expected work order completed, got %s", final.Status)
	}
	if final.CompletedAt == nil {
		t.Fatal("expected completed_at set")
	}
	if p := env.projectByID(t, "proj-wo"); p.Status != entity.ProjectStatusCompleted {
		t.Fatalf("expected project completed, got %s", p.Status)
	}

	// 已完工行项不可再报工
	if _, err := env.workOrder.CompleteItemStep(ctx, testTenant, itemID, wo.Steps[0]); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on completed work order, got %v", err)
	}
}

// 工时记录：同人同行项同日只记一次，人工成本 = Σ日薪快照
func TestWorkOrderAddWorkLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)
	if _, err := env.workOrder.Start(ctx, testTenant, wo.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	got, _ := env.workOrder.Get(ctx, testTenant, wo.ID)
	itemID := got.Items[0].ID

	if _, err := env.workOrder.AddWorkLog(ctx, testTenant, itemID, "worker-1", "bad-date"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bad date, got %v", err)
	}

	wl, err := env.workOrder.AddWorkLog(ctx, testTenant, itemID, "worker-1", "2026-08-25")
	if err != nil {
		t.Fatalf("AddWorkLog failed: %v", err)
	}
	if wl.DailyRate != 300 {
		t.Fatalf("expected daily rate snapshot 300, got %v", wl.DailyRate)
	}

	// 同日重复记录被拒绝
	if _, err := env.workOrder.AddWorkLog(ctx, testTenant, itemID, "worker-1", "2026-08-25"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate log, got %v", err)
	}

	// 不同工人、不同日期可继续记录，人工成本累加
	if _, err := env.workOrder.AddWorkLog(ctx, testTenant, itemID, "worker-2", "2026-08-25"); err != nil {
		t.Fatalf("AddWorkLog failed: %v", err)
	}
	if _, err := env.workOrder.AddWorkLog(ctx, testTenant, itemID, "worker-1", "2026-08-26"); err != nil {
		t.Fatalf("AddWorkLog failed: %v", err)
	}

	var item entity.WorkOrderItem
	if err := env.db.Where("tenant_id = ? AND id = ?", testTenant, itemID).First(&item).Error; err != nil {
		t.Fatalf("Failed to load item: %v", err)
	}
	if item.LaborCost != 880 {
		t.Fatalf("expected labor cost 880, got %v", item.LaborCost)
	}

	logs, err := env.workOrder.ListWorkLogs(ctx, testTenant, itemID)
	if err != nil {
		t.Fatalf("ListWorkLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}
}

// 删除工单的产品处置策略
func TestWorkOrderDeletePolicies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wo := seedWorkOrderFixture(t, env)

	if err := env.workOrder.Delete(ctx, testTenant, wo.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown policy, got %v", err)
	}

	if err := env.workOrder.Delete(ctx, testTenant, wo.ID, entity.WODisposalCompleted); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if p := env.productByID(t, "prod-wo"); p.Status != entity.ProductStatusReady {
		t.Fatalf("expected product ready, got %s", p.Status)
	}
	// 所有产品就绪后项目完工
	if p := env.projectByID(t, "proj-wo"); p.Status != entity.ProjectStatusCompleted {
		t.Fatalf("expected project completed, got %s", p.Status)
	}
}
