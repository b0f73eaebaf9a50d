package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"go.uber.org/zap"
)

// 业务图装配：项目树、订单、工单全部挂接，且只含本租户数据
func TestGraphAssemble(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphSvc := NewGraphService(env.repos, zap.NewNop())

	env.seedProject(t, "proj-g", entity.ProjectStatusApproved)
	env.seedProduct(t, "prod-g", "proj-g", entity.ProductStatusWaiting)
	env.seedMaterial(t, "mat-g", "prod-g", "玻璃", "m2", 2, 80, false, entity.MaterialStatusNotOrdered)
	env.seedOffer(t, "offer-g", "proj-g", entity.OfferStatusAccepted)
	if _, err := env.material.AddGlassItem(ctx, testTenant, "mat-g", &entity.GlassItem{WidthMM: 600, HeightMM: 800}); err != nil {
		t.Fatalf("AddGlassItem failed: %v", err)
	}
	if _, err := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: []string{"mat-g"}}); err != nil {
		t.Fatalf("Create order failed: %v", err)
	}

	// 其他租户的数据不得混入
	other := &entity.Project{ID: "proj-other", TenantID: "tenant-other", Name: "别家项目", ClientName: "别家客户", Status: entity.ProjectStatusDraft}
	if err := env.db.Create(other).Error; err != nil {
		t.Fatalf("Failed to seed other tenant project: %v", err)
	}

	g, err := graphSvc.Assemble(ctx, testTenant)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(g.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(g.Projects))
	}
	p := g.Projects[0]
	if len(p.Products) != 1 || len(p.Offers) != 1 {
		t.Fatalf("expected 1 product and 1 offer attached, got %d/%d", len(p.Products), len(p.Offers))
	}
	if len(p.Products[0].Materials) != 1 {
		t.Fatalf("expected 1 material attached, got %d", len(p.Products[0].Materials))
	}
	if len(p.Products[0].Materials[0].GlassItems) != 1 {
		t.Fatalf("expected 1 glass item attached, got %d", len(p.Products[0].Materials[0].GlassItems))
	}
	if len(g.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(g.Orders))
	}
	if len(g.Orders[0].Items) != 1 {
		t.Fatalf("expected 1 order item attached, got %d", len(g.Orders[0].Items))
	}
}

// 无子记录的父实体：子集合必须是空数组而非 null
func TestGraphAssembleChildlessParents(t *testing.T) {
	env := newTestEnv(t)
	graphSvc := NewGraphService(env.repos, zap.NewNop())

	// 项目无报价、产品无物料的一侧，物料无玻璃/铝框门子行项
	env.seedProject(t, "proj-bare", entity.ProjectStatusDraft)
	env.seedProduct(t, "prod-bare", "proj-bare", entity.ProductStatusWaiting)
	env.seedMaterial(t, "mat-bare", "prod-bare", "封边条", "m", 5, 1, false, entity.MaterialStatusNotOrdered)

	// 无行项的订单与工单直接落库
	order := &entity.Order{ID: "ord-bare", TenantID: testTenant, OrderNo: "PO-TEST-bare", Status: entity.OrderStatusDraft}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	wo := &entity.WorkOrder{ID: "wo-bare", TenantID: testTenant, WONo: "WO-TEST-bare", Status: entity.WorkOrderStatusWaiting, Steps: entity.DefaultProductionSteps}
	if err := env.db.Create(wo).Error; err != nil {
		t.Fatalf("Failed to seed work order: %v", err)
	}

	g, err := graphSvc.Assemble(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(g.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(g.Projects))
	}
	p := g.Projects[0]
	if p.Offers == nil {
		t.Error("expected empty offers slice, got nil")
	}
	if p.Products == nil {
		t.Fatal("expected products slice, got nil")
	}
	if len(p.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(p.Products))
	}
	if p.Products[0].Materials == nil {
		t.Fatal("expected materials slice, got nil")
	}
	m := p.Products[0].Materials[0]
	if m.GlassItems == nil || m.AluDoorItems == nil {
		t.Error("expected empty glass/alu-door slices, got nil")
	}
	if len(g.Orders) != 1 || g.Orders[0].Items == nil {
		t.Error("expected order with empty items slice, got nil")
	}
	if len(g.WorkOrders) != 1 || g.WorkOrders[0].Items == nil {
		t.Error("expected work order with empty items slice, got nil")
	}

	// 序列化结果不得出现 null 子集合
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{"products", "offers", "materials", "glass_items", "alu_door_items", "extras", "items"} {
		if strings.Contains(string(raw), `"`+key+`":null`) {
			t.Errorf("expected %q collection as empty array, got null", key)
		}
	}
}

// 空租户返回空图而非 nil 切片
func TestGraphAssembleEmptyTenant(t *testing.T) {
	env := newTestEnv(t)
	graphSvc := NewGraphService(env.repos, zap.NewNop())

	g, err := graphSvc.Assemble(context.Background(), "tenant-empty")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if g.Projects == nil || g.Orders == nil || g.WorkOrders == nil || g.Suppliers == nil || g.Workers == nil || g.Tasks == nil {
		t.Fatal("expected empty slices, got nil")
	}
	if len(g.Projects) != 0 {
		t.Fatalf("expected no projects, got %d", len(g.Projects))
	}

	if _, err := graphSvc.Assemble(context.Background(), ""); !errors.Is(err, ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}
