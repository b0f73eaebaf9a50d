package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// WorkerHandler 工人处理器
type WorkerHandler struct {
	svc *service.WorkerService
}

func NewWorkerHandler(svc *service.WorkerService) *WorkerHandler {
	return &WorkerHandler{svc: svc}
}

// List 工人列表
// GET /api/v1/mes/workers
func (h *WorkerHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取工人列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Create 创建工人
// POST /api/v1/mes/workers
func (h *WorkerHandler) Create(c *gin.Context) {
	var req service.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	w, err := h.svc.Create(c.Request.Context(), GetTenantID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, w)
}

// Get 工人详情
// GET /api/v1/mes/workers/:id
func (h *WorkerHandler) Get(c *gin.Context) {
	w, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, w)
}

// Update 更新工人
// PUT /api/v1/mes/workers/:id
func (h *WorkerHandler) Update(c *gin.Context) {
	var req service.UpdateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	w, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, w)
}

// Delete 删除工人
// DELETE /api/v1/mes/workers/:id
func (h *WorkerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// CheckIn 工人当日打卡（present / absent / leave）
// POST /api/v1/mes/workers/:id/check-in
func (h *WorkerHandler) CheckIn(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.CheckIn(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Status); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Availability 查询工人当日可用性
// GET /api/v1/mes/workers/:id/availability
func (h *WorkerHandler) Availability(c *gin.Context) {
	available, reason, err := h.svc.Availability(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"available": available,
		"reason":    reason,
	})
}
