package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 采购订单处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List 订单列表
// GET /api/v1/mes/orders?status=xxx&supplier_id=xxx&search=xxx
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"supplier_id": c.Query("supplier_id"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.FindAll(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取订单列表失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Create 创建订单（同名同单位物料合并为行项）
// POST /api/v1/mes/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
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

// Get 订单详情
// GET /api/v1/mes/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Send 发出订单（级联：物料、产品、项目）
// POST /api/v1/mes/orders/:id/send
func (h *OrderHandler) Send(c *gin.Context) {
	o, err := h.svc.Send(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Receive 收货。item_ids 为空表示整单收货
// POST /api/v1/mes/orders/:id/receive
func (h *OrderHandler) Receive(c *gin.Context) {
	var req struct {
		ItemIDs []string `json:"item_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	o, err := h.svc.ReceiveItems(c.Request.Context(), GetTenantID(c), c.Param("id"), req.ItemIDs)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// EditQuantities 批量调整行项数量
// PUT /api/v1/mes/orders/:id/items/quantities
func (h *OrderHandler) EditQuantities(c *gin.Context) {
	var req struct {
		Quantities map[string]float64 `json:"quantities" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	o, err := h.svc.EditItemQuantities(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Quantities)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// DeleteItems 删除行项。已收货行项会被跳过并在结果中列出，
// 调用方据 remaining_items 决定是否继续删除整单
// DELETE /api/v1/mes/orders/:id/items
func (h *OrderHandler) DeleteItems(c *gin.Context) {
	var req struct {
		ItemIDs []string `json:"item_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.svc.DeleteItems(c.Request.Context(), GetTenantID(c), c.Param("id"), req.ItemIDs)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}

// RevertToDraft 订单回退为草稿
// POST /api/v1/mes/orders/:id/revert
func (h *OrderHandler) RevertToDraft(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if !req.Confirm {
		BadRequest(c, "回退会重置未收货物料，需确认后操作")
		return
	}

	o, err := h.svc.RevertToDraft(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Delete 删除订单，policy 指定未收货物料的处置（revert / mark_received）
// DELETE /api/v1/mes/orders/:id?policy=revert
func (h *OrderHandler) Delete(c *gin.Context) {
	policy := c.Query("policy")
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id"), policy); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
