package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// OfferHandler 报价单处理器
type OfferHandler struct {
	svc *service.OfferService
}

func NewOfferHandler(svc *service.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

// Create 创建报价单
// POST /api/v1/mes/offers
func (h *OfferHandler) Create(c *gin.Context) {
	var req service.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	o, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, o)
}

// Get 报价单详情
// GET /api/v1/mes/offers/:id
func (h *OfferHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// ListByProject 项目下报价单列表
// GET /api/v1/mes/projects/:id/offers
func (h *OfferHandler) ListByProject(c *gin.Context) {
	items, err := h.svc.ListByProject(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		InternalError(c, "获取报价单列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Send 发出报价单
// POST /api/v1/mes/offers/:id/send
func (h *OfferHandler) Send(c *gin.Context) {
	o, err := h.svc.Send(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Accept 接受报价单（项目批准，其余报价作废）
// POST /api/v1/mes/offers/:id/accept
func (h *OfferHandler) Accept(c *gin.Context) {
	o, err := h.svc.Accept(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Reject 驳回报价单
// POST /api/v1/mes/offers/:id/reject
func (h *OfferHandler) Reject(c *gin.Context) {
	o, err := h.svc.Reject(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// MarkExpired 标记报价单过期
// POST /api/v1/mes/offers/:id/expire
func (h *OfferHandler) MarkExpired(c *gin.Context) {
	o, err := h.svc.MarkExpired(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}
