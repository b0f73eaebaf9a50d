package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// OfferService 报价单服务
type OfferService struct {
	offerRepo   *repository.OfferRepository
	projectRepo *repository.ProjectRepository
	projectSvc  *ProjectService
}

func NewOfferService(offerRepo *repository.OfferRepository, projectRepo *repository.ProjectRepository, projectSvc *ProjectService) *OfferService {
	return &OfferService{offerRepo: offerRepo, projectRepo: projectRepo, projectSvc: projectSvc}
}

// OfferExtraRequest 报价附加项
type OfferExtraRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price"`
}

// OfferProductRequest 报价产品行
type OfferProductRequest struct {
	Name      string              `json:"name" binding:"required"`
	Quantity  float64             `json:"quantity"`
	Unit      string              `json:"unit"`
	UnitPrice float64             `json:"unit_price"`
	Extras    []OfferExtraRequest `json:"extras"`
}

// CreateOfferRequest 创建报价单请求
type CreateOfferRequest struct {
	ProjectID  string                `json:"project_id" binding:"required"`
	ValidUntil *time.Time            `json:"valid_until"`
	Notes      string                `json:"notes"`
	Products   []OfferProductRequest `json:"products" binding:"required,min=1"`
}

// Create 创建报价单，总额 = Σ(数量 × 单价) + Σ附加项
func (s *OfferService) Create(ctx context.Context, tenantID, userID string, req *CreateOfferRequest) (*entity.Offer, error) {
	if _, err := s.projectRepo.FindByID(ctx, tenantID, req.ProjectID); err != nil {
		return nil, fmt.Errorf("项目不存在: %w", err)
	}

	offer := &entity.Offer{
		ID:         newID(),
		TenantID:   tenantID,
		ProjectID:  req.ProjectID,
		OfferNo:    generateNo("OF"),
		Status:     entity.OfferStatusDraft,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}

	var total float64
	var products []entity.OfferProduct
	for _, pr := range req.Products {
		qty := pr.Quantity
		if qty <= 0 {
			qty = 1
		}
		unit := pr.Unit
		if unit == "" {
			unit = "pcs"
		}
		op := entity.OfferProduct{
			ID:        newID(),
			TenantID:  tenantID,
			OfferID:   offer.ID,
			Name:      pr.Name,
			Quantity:  qty,
			Unit:      unit,
			UnitPrice: pr.UnitPrice,
		}
		total += qty * pr.UnitPrice
		for _, ex := range pr.Extras {
			op.Extras = append(op.Extras, entity.OfferExtra{
				ID:             newID(),
				TenantID:       tenantID,
				OfferProductID: op.ID,
				Name:           ex.Name,
				Price:          ex.Price,
			})
			total += ex.Price
		}
		products = append(products, op)
	}
	offer.TotalAmount = total

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("创建报价单失败: %w", err)
	}
	for i := range products {
		extras := products[i].Extras
		products[i].Extras = nil
		if err := s.offerRepo.CreateProduct(ctx, &products[i]); err != nil {
			return nil, fmt.Errorf("创建报价产品行失败: %w", err)
		}
		for j := range extras {
			if err := s.offerRepo.CreateExtra(ctx, &extras[j]); err != nil {
				return nil, fmt.Errorf("创建报价附加项失败: %w", err)
			}
		}
		products[i].Extras = extras
	}
	offer.Products = products
	return offer, nil
}

// Get 查询报价单（装配产品行）
func (s *OfferService) Get(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	products, err := s.offerRepo.ListProductsByOffer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	o.Products = products
	return o, nil
}

// ListByProject 查询项目下的报价单
func (s *OfferService) ListByProject(ctx context.Context, tenantID, projectID string) ([]entity.Offer, error) {
	return s.offerRepo.ListByProject(ctx, tenantID, projectID)
}

// Send 发出报价单，项目推进 offered
func (s *OfferService) Send(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !entity.OfferCanTransition(o.Status, entity.OfferStatusSent) {
		return nil, fmt.Errorf("%w: 报价单不能从 %s 转为 %s", ErrInvalidTransition, o.Status, entity.OfferStatusSent)
	}
	now := time.Now()
	o.Status = entity.OfferStatusSent
	o.SentAt = &now
	if err := s.offerRepo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("发出报价单失败: %w", err)
	}
	if err := s.projectSvc.Promote(ctx, tenantID, o.ProjectID, entity.ProjectStatusOffered); err != nil {
		return nil, err
	}
	return o, nil
}

// Accept 接受报价单：项目推进 approved，
// 同项目其余未决报价（draft/sent）转 superseded
func (s *OfferService) Accept(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !entity.OfferCanTransition(o.Status, entity.OfferStatusAccepted) {
		return nil, fmt.Errorf("%w: 报价单不能从 %s 转为 %s", ErrInvalidTransition, o.Status, entity.OfferStatusAccepted)
	}
	now := time.Now()
	o.Status = entity.OfferStatusAccepted
	o.DecidedAt = &now
	if err := s.offerRepo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("接受报价单失败: %w", err)
	}

	siblings, err := s.offerRepo.ListByProject(ctx, tenantID, o.ProjectID)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.ID == o.ID {
			continue
		}
		if entity.OfferCanTransition(sib.Status, entity.OfferStatusSuperseded) {
			if err := s.offerRepo.UpdateStatus(ctx, tenantID, sib.ID, entity.OfferStatusSuperseded); err != nil {
				return nil, err
			}
		}
	}

	if err := s.projectSvc.Promote(ctx, tenantID, o.ProjectID, entity.ProjectStatusApproved); err != nil {
		return nil, err
	}
	return o, nil
}

// Reject 驳回报价单。若项目全部报价均已负向终止且项目尚未批准，
// 项目转 cancelled
func (s *OfferService) Reject(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	return s.closeNegative(ctx, tenantID, id, entity.OfferStatusRejected)
}

// MarkExpired 将已发出的报价单标记为过期，级联规则与驳回一致
func (s *OfferService) MarkExpired(ctx context.Context, tenantID, id string) (*entity.Offer, error) {
	return s.closeNegative(ctx, tenantID, id, entity.OfferStatusExpired)
}

// closeNegative 负向终止报价单。兄弟快照在写入前读取，
// 本单以 pendingRejectID 形式参与判定，避免读到自己未提交的状态
func (s *OfferService) closeNegative(ctx context.Context, tenantID, id, target string) (*entity.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !entity.OfferCanTransition(o.Status, target) {
		return nil, fmt.Errorf("%w: 报价单不能从 %s 转为 %s", ErrInvalidTransition, o.Status, target)
	}

	siblings, err := s.offerRepo.ListByProject(ctx, tenantID, o.ProjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o.Status = target
	o.DecidedAt = &now
	if err := s.offerRepo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("更新报价单失败: %w", err)
	}

	if entity.AllOffersNegative(siblings, o.ID) {
		p, err := s.projectRepo.FindByID(ctx, tenantID, o.ProjectID)
		if err != nil {
			return nil, err
		}
		if entity.ProjectCanTransition(p.Status, entity.ProjectStatusCancelled) {
			if err := s.projectRepo.UpdateStatus(ctx, tenantID, o.ProjectID, entity.ProjectStatusCancelled); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}
