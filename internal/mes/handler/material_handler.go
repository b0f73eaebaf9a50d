package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// MaterialHandler 产品物料处理器
type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Create 创建物料
// POST /api/v1/mes/materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	m, err := h.svc.Create(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, m)
}

// ListByProduct 产品下物料列表
// GET /api/v1/mes/products/:id/materials
func (h *MaterialHandler) ListByProduct(c *gin.Context) {
	items, err := h.svc.ListByProduct(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		InternalError(c, "获取物料列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// ListUnordered 未订购物料清单（建单候选）
// GET /api/v1/mes/materials/unordered
func (h *MaterialHandler) ListUnordered(c *gin.Context) {
	items, err := h.svc.ListUnordered(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取未订购物料失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Update 更新物料
// PUT /api/v1/mes/materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	m, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, m)
}

// SetStatus 手工推进物料状态（入库/领用/安装）
// PUT /api/v1/mes/materials/:id/status
func (h *MaterialHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	m, err := h.svc.SetStatus(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, m)
}

// Delete 删除物料
// DELETE /api/v1/mes/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// AddGlassItem 添加玻璃子行项
// POST /api/v1/mes/materials/:id/glass-items
func (h *MaterialHandler) AddGlassItem(c *gin.Context) {
	var req entity.GlassItem
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	g, err := h.svc.AddGlassItem(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, g)
}

// AddAluDoorItem 添加铝框门子行项
// POST /api/v1/mes/materials/:id/alu-door-items
func (h *MaterialHandler) AddAluDoorItem(c *gin.Context) {
	var req entity.AluDoorItem
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	a, err := h.svc.AddAluDoorItem(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, a)
}
