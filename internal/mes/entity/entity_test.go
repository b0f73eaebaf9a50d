package entity

import "testing"

func TestProjectTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ProjectStatusDraft, ProjectStatusOffered, true},
		{ProjectStatusDraft, ProjectStatusInProduction, true},
		{ProjectStatusOffered, ProjectStatusApproved, true},
		{ProjectStatusOffered, ProjectStatusInProduction, false},
		{ProjectStatusApproved, ProjectStatusCancelled, false},
		{ProjectStatusInProduction, ProjectStatusCompleted, true},
		{ProjectStatusCompleted, ProjectStatusDraft, false},
		{ProjectStatusCancelled, ProjectStatusDraft, false},
	}
	for _, c := range cases {
		if got := ProjectCanTransition(c.from, c.to); got != c.want {
			t.Errorf("ProjectCanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestProjectRank(t *testing.T) {
	order := []string{
		ProjectStatusDraft,
		ProjectStatusOffered,
		ProjectStatusApproved,
		ProjectStatusInProduction,
		ProjectStatusCompleted,
	}
	for i := 1; i < len(order); i++ {
		if ProjectRank(order[i-1]) >= ProjectRank(order[i]) {
			t.Errorf("expected rank(%s) < rank(%s)", order[i-1], order[i])
		}
	}
	if ProjectRank(ProjectStatusCancelled) != -1 {
		t.Errorf("expected cancelled rank -1, got %d", ProjectRank(ProjectStatusCancelled))
	}
	if ProjectRank("bogus") != -1 {
		t.Errorf("expected unknown status rank -1, got %d", ProjectRank("bogus"))
	}
}

func TestMaterialTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{MaterialStatusNotOrdered, MaterialStatusOrdered, true},
		{MaterialStatusNotOrdered, MaterialStatusReceived, true},
		{MaterialStatusNotOrdered, MaterialStatusInUse, false},
		{MaterialStatusOrdered, MaterialStatusNotOrdered, true}, // 订单行项删除的退回路径
		{MaterialStatusReceived, MaterialStatusOnStock, true},
		{MaterialStatusReceived, MaterialStatusNotOrdered, false},
		{MaterialStatusOnStock, MaterialStatusInstalled, true},
		{MaterialStatusInstalled, MaterialStatusInUse, false},
	}
	for _, c := range cases {
		if got := MaterialCanTransition(c.from, c.to); got != c.want {
			t.Errorf("MaterialCanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}

	for _, s := range []string{MaterialStatusReceived, MaterialStatusOnStock, MaterialStatusInUse, MaterialStatusInstalled} {
		if !MaterialIsTerminal(s) {
			t.Errorf("expected %s terminal", s)
		}
	}
	if MaterialIsTerminal(MaterialStatusOrdered) {
		t.Error("expected ordered not terminal")
	}
	if !MaterialIsEssentialReady(MaterialStatusOnStock) || MaterialIsEssentialReady(MaterialStatusInUse) {
		t.Error("essential-ready should be received/on_stock only")
	}
}

func TestNextProductStep(t *testing.T) {
	steps := []string{"cutting", "edging", "assembly"}
	if got := NextProductStep(steps, "cutting"); got != "edging" {
		t.Errorf("expected edging, got %s", got)
	}
	if got := NextProductStep(steps, "assembly"); got != ProductStatusReady {
		t.Errorf("expected ready after last step, got %s", got)
	}
	if got := NextProductStep(steps, "polishing"); got != ProductStatusReady {
		t.Errorf("expected ready for unknown step, got %s", got)
	}

	m := NextStepMap(DefaultProductionSteps)
	if len(m) != len(DefaultProductionSteps) {
		t.Errorf("expected %d entries, got %d", len(DefaultProductionSteps), len(m))
	}
	if m[DefaultProductionSteps[len(DefaultProductionSteps)-1]] != ProductStatusReady {
		t.Error("expected last default step to map to ready")
	}
}

func TestAllOffersNegative(t *testing.T) {
	offers := func(statuses ...string) []Offer {
		var out []Offer
		for i, s := range statuses {
			out = append(out, Offer{ID: string(rune('a' + i)), Status: s})
		}
		return out
	}

	// 空列表不判定为全负向
	if AllOffersNegative(nil, "") {
		t.Error("expected false for empty offers")
	}
	if !AllOffersNegative(offers(OfferStatusRejected, OfferStatusExpired), "") {
		t.Error("expected true when all negative")
	}
	if AllOffersNegative(offers(OfferStatusRejected, OfferStatusSent), "") {
		t.Error("expected false with a pending sibling")
	}
	// 本次正在驳回的报价按已驳回处理
	if !AllOffersNegative(offers(OfferStatusSent, OfferStatusRejected), "a") {
		t.Error("expected true when pending offer is the only non-negative one")
	}
	// superseded 不参与判定
	if !AllOffersNegative(offers(OfferStatusSuperseded, OfferStatusRejected), "") {
		t.Error("expected superseded to be skipped")
	}
	if AllOffersNegative(offers(OfferStatusAccepted, OfferStatusRejected), "") {
		t.Error("expected false when one offer accepted")
	}
}

func TestOfferTransitions(t *testing.T) {
	if !OfferCanTransition(OfferStatusDraft, OfferStatusSent) {
		t.Error("draft → sent should be allowed")
	}
	if !OfferCanTransition(OfferStatusDraft, OfferStatusSuperseded) {
		t.Error("draft → superseded should be allowed")
	}
	if OfferCanTransition(OfferStatusDraft, OfferStatusAccepted) {
		t.Error("draft → accepted should be rejected")
	}
	for _, terminal := range []string{OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired, OfferStatusSuperseded} {
		if OfferCanTransition(terminal, OfferStatusSent) {
			t.Errorf("%s should be terminal", terminal)
		}
	}
}

func TestOrderDerivedStatus(t *testing.T) {
	o := &Order{Status: OrderStatusSent, Items: []OrderItem{
		{Status: OrderItemStatusOrdered},
		{Status: OrderItemStatusReceived},
	}}
	if got := o.DerivedStatus(); got != OrderStatusPartiallyReceived {
		t.Errorf("expected partially_received, got %s", got)
	}

	o.Items[0].Status = OrderItemStatusReceived
	if got := o.DerivedStatus(); got != OrderStatusSent {
		t.Errorf("expected sent when all items received but order not closed, got %s", got)
	}

	o.Status = OrderStatusDraft
	if got := o.DerivedStatus(); got != OrderStatusDraft {
		t.Errorf("expected draft passthrough, got %s", got)
	}

	empty := &Order{Status: OrderStatusSent}
	if got := empty.DerivedStatus(); got != OrderStatusSent {
		t.Errorf("expected sent for empty order, got %s", got)
	}
}

func TestWorkOrderTransitions(t *testing.T) {
	if !WorkOrderCanTransition(WorkOrderStatusWaiting, WorkOrderStatusInProgress) {
		t.Error("waiting → in_progress should be allowed (scheduling optional)")
	}
	if !WorkOrderCanTransition(WorkOrderStatusScheduled, WorkOrderStatusWaiting) {
		t.Error("scheduled → waiting should be allowed")
	}
	if WorkOrderCanTransition(WorkOrderStatusCompleted, WorkOrderStatusInProgress) {
		t.Error("completed should be terminal")
	}
}
