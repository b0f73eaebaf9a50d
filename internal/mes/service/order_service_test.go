package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func seedOrderFixture(t *testing.T, env *testEnv) (productID string, materialIDs []string) {
	t.Helper()
	env.seedProject(t, "proj-ord", entity.ProjectStatusApproved)
	env.seedProduct(t, "prod-ord", "proj-ord", entity.ProductStatusWaiting)
	env.seedMaterial(t, "mat-board-a", "prod-ord", "板材", "pcs", 3, 2, true, entity.MaterialStatusNotOrdered)
	env.seedMaterial(t, "mat-board-b", "prod-ord", "板材", "pcs", 5, 3, true, entity.MaterialStatusNotOrdered)
	env.seedMaterial(t, "mat-edge", "prod-ord", "封边条", "m", 10, 1, false, entity.MaterialStatusNotOrdered)
	return "prod-ord", []string{"mat-board-a", "mat-board-b", "mat-edge"}
}

// 同名同单位物料合并为一个行项：数量相加、预期单价相加
func TestOrderCreateGroupsMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, err := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 grouped items, got %d", len(order.Items))
	}

	var board *entity.OrderItem
	for i := range order.Items {
		if order.Items[i].Name == "板材" {
			board = &order.Items[i]
		}
	}
	if board == nil {
		t.Fatal("expected grouped item 板材")
	}
	if board.Quantity != 8 {
		t.Fatalf("expected merged quantity 8, got %v", board.Quantity)
	}
	if board.ExpectedPrice != 5 {
		t.Fatalf("expected merged price 5, got %v", board.ExpectedPrice)
	}
	if len(board.MaterialIDs) != 2 {
		t.Fatalf("expected 2 source materials, got %d", len(board.MaterialIDs))
	}

	// 总额 = 8*5 + 10*1
	if order.TotalAmount != 50 {
		t.Fatalf("expected total 50, got %v", order.TotalAmount)
	}

	// 物料被订单预占，不再出现在未订购清单
	unordered, err := env.material.ListUnordered(ctx, testTenant)
	if err != nil {
		t.Fatalf("ListUnordered failed: %v", err)
	}
	if len(unordered) != 0 {
		t.Fatalf("expected no unordered materials after reservation, got %d", len(unordered))
	}

	// 已预占的物料不可再次建单
	if _, err := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs[:1]}); err == nil {
		t.Fatal("expected error when ordering reserved material")
	}
}

// 发出订单级联：物料 ordered、产品 materials_ordered、项目 in_production
func TestOrderSendCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID, materialIDs := seedOrderFixture(t, env)

	order, err := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sent, err := env.order.Send(ctx, testTenant, order.ID)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.Status != entity.OrderStatusSent {
		t.Fatalf("expected order sent, got %s", sent.Status)
	}
	if sent.SentAt == nil {
		t.Fatal("expected sent_at to be set")
	}

	for _, mid := range materialIDs {
		m := env.materialByID(t, mid)
		if m.Status != entity.MaterialStatusOrdered {
			t.Fatalf("expected material %s ordered, got %s", mid, m.Status)
		}
		if m.OrderedQty != m.Quantity {
			t.Fatalf("expected ordered_qty %v, got %v", m.Quantity, m.OrderedQty)
		}
	}

	if p := env.productByID(t, productID); p.Status != entity.ProductStatusMaterialsOrdered {
		t.Fatalf("expected product materials_ordered, got %s", p.Status)
	}
	if p := env.projectByID(t, "proj-ord"); p.Status != entity.ProjectStatusInProduction {
		t.Fatalf("expected project in_production, got %s", p.Status)
	}

	// 重复发出被拒绝
	if _, err := env.order.Send(ctx, testTenant, order.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// 整单收货：物料 received、产品 materials_ready、订单 received
func TestOrderReceiveAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	if _, err := env.order.Send(ctx, testTenant, order.ID); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	received, err := env.order.ReceiveItems(ctx, testTenant, order.ID, nil)
	if err != nil {
		t.Fatalf("ReceiveItems failed: %v", err)
	}
	if received.Status != entity.OrderStatusReceived {
		t.Fatalf("expected order received, got %s", received.Status)
	}

	for _, mid := range materialIDs {
		m := env.materialByID(t, mid)
		if m.Status != entity.MaterialStatusReceived {
			t.Fatalf("expected material %s received, got %s", mid, m.Status)
		}
		if m.ReceivedAt == nil {
			t.Fatalf("expected received_at set on material %s", mid)
		}
	}
	if p := env.productByID(t, productID); p.Status != entity.ProductStatusMaterialsReady {
		t.Fatalf("expected product materials_ready, got %s", p.Status)
	}
}

// 部分收货：订单持久化状态保持 sent，展示状态为 partially_received
func TestOrderPartialReceiveDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	env.order.Send(ctx, testTenant, order.ID)

	got, _ := env.order.Get(ctx, testTenant, order.ID)
	result, err := env.order.ReceiveItems(ctx, testTenant, order.ID, []string{got.Items[0].ID})
	if err != nil {
		t.Fatalf("ReceiveItems failed: %v", err)
	}
	if result.Status != entity.OrderStatusPartiallyReceived {
		t.Fatalf("expected derived partially_received, got %s", result.Status)
	}

	// 持久化状态从不写 partially_received
	var row entity.Order
	env.db.Where("tenant_id = ? AND id = ?", testTenant, order.ID).First(&row)
	if row.Status != entity.OrderStatusSent {
		t.Fatalf("expected persisted status sent, got %s", row.Status)
	}

	// 不属于该订单的行项拒绝收货
	if _, err := env.order.ReceiveItems(ctx, testTenant, order.ID, []string{"no-such-item"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown item id, got %v", err)
	}
}

// 已发出订单调整行项数量：差额均摊回各来源物料的已订数量
func TestOrderEditQuantitiesSplitsDelta(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	env.order.Send(ctx, testTenant, order.ID)

	got, _ := env.order.Get(ctx, testTenant, order.ID)
	var board *entity.OrderItem
	for i := range got.Items {
		if got.Items[i].Name == "板材" {
			board = &got.Items[i]
		}
	}

	// 8 → 4，差额 -4 均摊到两个来源物料，各 -2
	updated, err := env.order.EditItemQuantities(ctx, testTenant, order.ID, map[string]float64{board.ID: 4})
	if err != nil {
		t.Fatalf("EditItemQuantities failed: %v", err)
	}

	if m := env.materialByID(t, "mat-board-a"); m.OrderedQty != 1 {
		t.Fatalf("expected ordered_qty 1, got %v", m.OrderedQty)
	}
	if m := env.materialByID(t, "mat-board-b"); m.OrderedQty != 3 {
		t.Fatalf("expected ordered_qty 3, got %v", m.OrderedQty)
	}

	// 总额重算：4*5 + 10*1
	if updated.TotalAmount != 30 {
		t.Fatalf("expected total 30, got %v", updated.TotalAmount)
	}

	// 数量边界校验
	if _, err := env.order.EditItemQuantities(ctx, testTenant, order.ID, map[string]float64{board.ID: 0}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero qty, got %v", err)
	}
	if _, err := env.order.EditItemQuantities(ctx, testTenant, order.ID, map[string]float64{board.ID: 100000}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for qty > 99999, got %v", err)
	}
}

// 删除行项：已收货行项被跳过，未收货行项的物料退回 not_ordered
func TestOrderDeleteItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	env.order.Send(ctx, testTenant, order.ID)

	got, _ := env.order.Get(ctx, testTenant, order.ID)
	var board, edge *entity.OrderItem
	for i := range got.Items {
		switch got.Items[i].Name {
		case "板材":
			board = &got.Items[i]
		case "封边条":
			edge = &got.Items[i]
		}
	}

	// 先收货封边条
	if _, err := env.order.ReceiveItems(ctx, testTenant, order.ID, []string{edge.ID}); err != nil {
		t.Fatalf("ReceiveItems failed: %v", err)
	}

	result, err := env.order.DeleteItems(ctx, testTenant, order.ID, []string{board.ID, edge.ID})
	if err != nil {
		t.Fatalf("DeleteItems failed: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", result.Deleted)
	}
	if len(result.SkippedItems) != 1 || result.SkippedItems[0] != "封边条" {
		t.Fatalf("expected 封边条 skipped, got %v", result.SkippedItems)
	}
	if result.RemainingItems != 1 {
		t.Fatalf("expected 1 remaining item, got %d", result.RemainingItems)
	}

	// 板材来源物料退回 not_ordered 并解除预占
	for _, mid := range []string{"mat-board-a", "mat-board-b"} {
		m := env.materialByID(t, mid)
		if m.Status != entity.MaterialStatusNotOrdered {
			t.Fatalf("expected material %s not_ordered, got %s", mid, m.Status)
		}
		if m.OrderID != nil {
			t.Fatalf("expected material %s released from order", mid)
		}
	}
	// 已收货物料不受影响
	if m := env.materialByID(t, "mat-edge"); m.Status != entity.MaterialStatusReceived {
		t.Fatalf("expected mat-edge still received, got %s", m.Status)
	}
}

// 删除订单：mark_received 策略将未收货物料直接标记收货
func TestOrderDeleteMarkReceived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})
	env.order.Send(ctx, testTenant, order.ID)

	if err := env.order.Delete(ctx, testTenant, order.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown policy, got %v", err)
	}

	if err := env.order.Delete(ctx, testTenant, order.ID, OrderDisposalMarkReceived); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, mid := range materialIDs {
		m := env.materialByID(t, mid)
		if m.Status != entity.MaterialStatusReceived {
			t.Fatalf("expected material %s received, got %s", mid, m.Status)
		}
	}
	if p := env.productByID(t, productID); p.Status != entity.ProductStatusMaterialsReady {
		t.Fatalf("expected product materials_ready, got %s", p.Status)
	}
}

// 订单回退草稿：未收货物料重置，已收货物料保持
func TestOrderRevertToDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})

	// 草稿不可回退
	if _, err := env.order.RevertToDraft(ctx, testTenant, order.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	env.order.Send(ctx, testTenant, order.ID)
	got, _ := env.order.Get(ctx, testTenant, order.ID)
	var edge *entity.OrderItem
	for i := range got.Items {
		if got.Items[i].Name == "封边条" {
			edge = &got.Items[i]
		}
	}
	env.order.ReceiveItems(ctx, testTenant, order.ID, []string{edge.ID})

	reverted, err := env.order.RevertToDraft(ctx, testTenant, order.ID)
	if err != nil {
		t.Fatalf("RevertToDraft failed: %v", err)
	}
	if reverted.Status != entity.OrderStatusDraft {
		t.Fatalf("expected draft, got %s", reverted.Status)
	}
	if reverted.SentAt != nil {
		t.Fatal("expected sent_at cleared")
	}

	for _, mid := range []string{"mat-board-a", "mat-board-b"} {
		if m := env.materialByID(t, mid); m.Status != entity.MaterialStatusNotOrdered {
			t.Fatalf("expected material %s reset to not_ordered, got %s", mid, m.Status)
		}
	}
	if m := env.materialByID(t, "mat-edge"); m.Status != entity.MaterialStatusReceived {
		t.Fatalf("expected received material untouched, got %s", m.Status)
	}
}

// 总额重算幂等
func TestOrderRecalculateTotalIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, materialIDs := seedOrderFixture(t, env)

	order, _ := env.order.Create(ctx, testTenant, "test-user", &CreateOrderRequest{MaterialIDs: materialIDs})

	if err := env.order.RecalculateTotal(ctx, testTenant, order.ID); err != nil {
		t.Fatalf("RecalculateTotal failed: %v", err)
	}
	first, _ := env.order.Get(ctx, testTenant, order.ID)
	if err := env.order.RecalculateTotal(ctx, testTenant, order.ID); err != nil {
		t.Fatalf("RecalculateTotal failed: %v", err)
	}
	second, _ := env.order.Get(ctx, testTenant, order.ID)

	if first.TotalAmount != second.TotalAmount || first.TotalAmount != 50 {
		t.Fatalf("expected stable total 50, got %v then %v", first.TotalAmount, second.TotalAmount)
	}
}
