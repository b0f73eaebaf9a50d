package handler

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// WorkOrderHandler 生产工单处理器
type WorkOrderHandler struct {
	svc *service.WorkOrderService
}

func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

// List 工单列表
// GET /api/v1/mes/work-orders?status=xxx&search=xxx
func (h *WorkOrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.FindAll(c.Request.Context(), GetTenantID(c), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取工单列表失败: "+err.Error())
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

// Create 创建工单
// POST /api/v1/mes/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, wo)
}

// Get 工单详情
// GET /api/v1/mes/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	wo, err := h.svc.Get(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// Schedule 排期工单（并生成采购缺口任务）
// POST /api/v1/mes/work-orders/:id/schedule
func (h *WorkOrderHandler) Schedule(c *gin.Context) {
	var req struct {
		ScheduledStart *time.Time `json:"scheduled_start"`
		ScheduledEnd   *time.Time `json:"scheduled_end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wo, err := h.svc.Schedule(c.Request.Context(), GetTenantID(c), c.Param("id"), req.ScheduledStart, req.ScheduledEnd)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// Start 开工（门禁：计划时间、必备物料、人员考勤）
// POST /api/v1/mes/work-orders/:id/start
func (h *WorkOrderHandler) Start(c *gin.Context) {
	wo, err := h.svc.Start(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// CompleteItemStep 完成行项的一道工序
// POST /api/v1/mes/work-order-items/:id/complete-step
func (h *WorkOrderHandler) CompleteItemStep(c *gin.Context) {
	var req struct {
		Step string `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.CompleteItemStep(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Step)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, item)
}

// AddWorkLog 记录工时
// POST /api/v1/mes/work-order-items/:id/work-logs
func (h *WorkOrderHandler) AddWorkLog(c *gin.Context) {
	var req struct {
		WorkerID string `json:"worker_id" binding:"required"`
		LogDate  string `json:"log_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wl, err := h.svc.AddWorkLog(c.Request.Context(), GetTenantID(c), c.Param("id"), req.WorkerID, req.LogDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, wl)
}

// ListWorkLogs 行项工时记录
// GET /api/v1/mes/work-order-items/:id/work-logs
func (h *WorkOrderHandler) ListWorkLogs(c *gin.Context) {
	logs, err := h.svc.ListWorkLogs(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		InternalError(c, "获取工时记录失败: "+err.Error())
		return
	}
	Success(c, logs)
}

// Delete 删除工单，policy 指定产品处置（completed / waiting）
// DELETE /api/v1/mes/work-orders/:id?policy=waiting
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	policy := c.Query("policy")
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id"), policy); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
