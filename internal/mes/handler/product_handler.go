package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 产品处理器
type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create 创建产品
// POST /api/v1/mes/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, p)
}

// ListByProject 项目下产品列表
// GET /api/v1/mes/projects/:id/products
func (h *ProductHandler) ListByProject(c *gin.Context) {
	items, err := h.svc.ListByProject(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		InternalError(c, "获取产品列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Get 产品详情
// GET /api/v1/mes/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// Update 更新产品
// PUT /api/v1/mes/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, p)
}

// Delete 删除产品
// DELETE /api/v1/mes/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
