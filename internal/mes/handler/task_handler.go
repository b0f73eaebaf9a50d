package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List 任务列表
// GET /api/v1/mes/tasks
func (h *TaskHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), GetTenantID(c))
	if err != nil {
		InternalError(c, "获取任务列表失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Create 创建任务
// POST /api/v1/mes/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	t, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, t)
}

// Complete 办结任务
// POST /api/v1/mes/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	t, err := h.svc.Complete(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, t)
}

// Delete 删除任务
// DELETE /api/v1/mes/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
