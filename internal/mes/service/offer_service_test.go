package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// 总额 = Σ(数量 × 单价) + Σ附加项
func TestOfferCreateTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusDraft)

	offer, err := env.offer.Create(ctx, testTenant, "test-user", &CreateOfferRequest{
		ProjectID: "proj-offer",
		Products: []OfferProductRequest{
			{Name: "衣柜", Quantity: 2, Unit: "pcs", UnitPrice: 1500, Extras: []OfferExtraRequest{
				{Name: "送货安装", Price: 200},
			}},
			{Name: "书桌", UnitPrice: 800}, // 数量缺省为 1
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// 2*1500 + 200 + 1*800
	if offer.TotalAmount != 4000 {
		t.Fatalf("expected total 4000, got %v", offer.TotalAmount)
	}
	if len(offer.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(offer.Products))
	}

	got, err := env.offer.Get(ctx, testTenant, offer.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != entity.OfferStatusDraft {
		t.Fatalf("expected draft, got %s", got.Status)
	}
}

// 发出报价单推进项目到 offered
func TestOfferSendPromotesProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusDraft)
	o := env.seedOffer(t, "offer-1", "proj-offer", entity.OfferStatusDraft)

	sent, err := env.offer.Send(ctx, testTenant, o.ID)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.Status != entity.OfferStatusSent {
		t.Fatalf("expected sent, got %s", sent.Status)
	}
	if sent.SentAt == nil {
		t.Fatal("expected sent_at set")
	}
	if p := env.projectByID(t, "proj-offer"); p.Status != entity.ProjectStatusOffered {
		t.Fatalf("expected project offered, got %s", p.Status)
	}

	// 重复发出被拒绝
	if _, err := env.offer.Send(ctx, testTenant, o.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// 接受报价单：项目 approved，未决兄弟报价转 superseded
func TestOfferAcceptSupersedesSiblings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusOffered)
	env.seedOffer(t, "offer-a", "proj-offer", entity.OfferStatusSent)
	env.seedOffer(t, "offer-b", "proj-offer", entity.OfferStatusSent)
	env.seedOffer(t, "offer-c", "proj-offer", entity.OfferStatusDraft)
	env.seedOffer(t, "offer-d", "proj-offer", entity.OfferStatusRejected)

	accepted, err := env.offer.Accept(ctx, testTenant, "offer-a")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if accepted.Status != entity.OfferStatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
	if accepted.DecidedAt == nil {
		t.Fatal("expected decided_at set")
	}

	check := func(id, want string) {
		var o entity.Offer
		if err := env.db.Where("tenant_id = ? AND id = ?", testTenant, id).First(&o).Error; err != nil {
			t.Fatalf("Failed to load offer %s: %v", id, err)
		}
		if o.Status != want {
			t.Fatalf("expected offer %s %s, got %s", id, want, o.Status)
		}
	}
	check("offer-b", entity.OfferStatusSuperseded)
	check("offer-c", entity.OfferStatusSuperseded)
	// 已驳回的不受影响
	check("offer-d", entity.OfferStatusRejected)

	if p := env.projectByID(t, "proj-offer"); p.Status != entity.ProjectStatusApproved {
		t.Fatalf("expected project approved, got %s", p.Status)
	}
}

// 驳回最后一份未决报价：未批准的项目转 cancelled
func TestOfferRejectLastCancelsProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusOffered)
	env.seedOffer(t, "offer-a", "proj-offer", entity.OfferStatusSent)
	env.seedOffer(t, "offer-b", "proj-offer", entity.OfferStatusExpired)

	rejected, err := env.offer.Reject(ctx, testTenant, "offer-a")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != entity.OfferStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if p := env.projectByID(t, "proj-offer"); p.Status != entity.ProjectStatusCancelled {
		t.Fatalf("expected project cancelled, got %s", p.Status)
	}
}

// 仍有未决报价时，驳回不取消项目
func TestOfferRejectWithPendingSiblingKeepsProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusOffered)
	env.seedOffer(t, "offer-a", "proj-offer", entity.OfferStatusSent)
	env.seedOffer(t, "offer-b", "proj-offer", entity.OfferStatusSent)

	if _, err := env.offer.Reject(ctx, testTenant, "offer-a"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if p := env.projectByID(t, "proj-offer"); p.Status != entity.ProjectStatusOffered {
		t.Fatalf("expected project still offered, got %s", p.Status)
	}
}

// 已批准的项目不因报价过期而取消
func TestOfferExpireDoesNotCancelApprovedProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedProject(t, "proj-offer", entity.ProjectStatusApproved)
	env.seedOffer(t, "offer-a", "proj-offer", entity.OfferStatusSent)

	expired, err := env.offer.MarkExpired(ctx, testTenant, "offer-a")
	if err != nil {
		t.Fatalf("MarkExpired failed: %v", err)
	}
	if expired.Status != entity.OfferStatusExpired {
		t.Fatalf("expected expired, got %s", expired.Status)
	}
	if p := env.projectByID(t, "proj-offer"); p.Status != entity.ProjectStatusApproved {
		t.Fatalf("expected project still approved, got %s", p.Status)
	}
}
