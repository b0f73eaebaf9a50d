package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// SupplierHandler 供应商处理器
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// List 供应商列表
// GET /api/v1/mes/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取供应商列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Create 创建供应商
// POST /api/v1/mes/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.Create(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, s)
}

// Get 供应商详情
// GET /api/v1/mes/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, s)
}

// Update 更新供应商
// PUT /api/v1/mes/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	s, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, s)
}

// Delete 删除供应商
// DELETE /api/v1/mes/suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
