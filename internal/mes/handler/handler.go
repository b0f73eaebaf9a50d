package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// Handlers MES处理器集合
type Handlers struct {
	Graph     *GraphHandler
	Project   *ProjectHandler
	Product   *ProductHandler
	Material  *MaterialHandler
	Order     *OrderHandler
	Offer     *OfferHandler
	WorkOrder *WorkOrderHandler
	Worker    *WorkerHandler
	Supplier  *SupplierHandler
	Task      *TaskHandler
}

// NewHandlers 创建MES处理器集合
func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Graph:     NewGraphHandler(svcs.Graph),
		Project:   NewProjectHandler(svcs.Project),
		Product:   NewProductHandler(svcs.Product),
		Material:  NewMaterialHandler(svcs.Material),
		Order:     NewOrderHandler(svcs.Order),
		Offer:     NewOfferHandler(svcs.Offer),
		WorkOrder: NewWorkOrderHandler(svcs.WorkOrder),
		Worker:    NewWorkerHandler(svcs.Worker),
		Supplier:  NewSupplierHandler(svcs.Supplier),
		Task:      NewTaskHandler(svcs.Task),
	}
}

// RegisterRoutes 注册MES路由
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	graph := rg.Group("/graph")
	{
		graph.GET("", h.Graph.GetGraph)
	}

	projects := rg.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.PUT("/:id/status", h.Project.UpdateStatus)
		projects.DELETE("/:id", h.Project.Delete)
		projects.GET("/:id/products", h.Product.ListByProject)
		projects.GET("/:id/offers", h.Offer.ListByProject)
	}

	products := rg.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.GET("/:id/materials", h.Material.ListByProduct)
	}

	materials := rg.Group("/materials")
	{
		materials.GET("/unordered", h.Material.ListUnordered)
		materials.POST("", h.Material.Create)
		materials.PUT("/:id", h.Material.Update)
		materials.PUT("/:id/status", h.Material.SetStatus)
		materials.DELETE("/:id", h.Material.Delete)
		materials.POST("/:id/glass-items", h.Material.AddGlassItem)
		materials.POST("/:id/alu-door-items", h.Material.AddAluDoorItem)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/send", h.Order.Send)
		orders.POST("/:id/receive", h.Order.Receive)
		orders.PUT("/:id/items/quantities", h.Order.EditQuantities)
		orders.DELETE("/:id/items", h.Order.DeleteItems)
		orders.POST("/:id/revert", h.Order.RevertToDraft)
		orders.DELETE("/:id", h.Order.Delete)
	}

	offers := rg.Group("/offers")
	{
		offers.POST("", h.Offer.Create)
		offers.GET("/:id", h.Offer.Get)
		offers.POST("/:id/send", h.Offer.Send)
		offers.POST("/:id/accept", h.Offer.Accept)
		offers.POST("/:id/reject", h.Offer.Reject)
		offers.POST("/:id/expire", h.Offer.MarkExpired)
	}

	workOrders := rg.Group("/work-orders")
	{
		workOrders.GET("", h.WorkOrder.List)
		workOrders.POST("", h.WorkOrder.Create)
		workOrders.GET("/:id", h.WorkOrder.Get)
		workOrders.POST("/:id/schedule", h.WorkOrder.Schedule)
		workOrders.POST("/:id/start", h.WorkOrder.Start)
		workOrders.DELETE("/:id", h.WorkOrder.Delete)
	}

	woItems := rg.Group("/work-order-items")
	{
		woItems.POST("/:id/complete-step", h.WorkOrder.CompleteItemStep)
		woItems.POST("/:id/work-logs", h.WorkOrder.AddWorkLog)
		woItems.GET("/:id/work-logs", h.WorkOrder.ListWorkLogs)
	}

	workers := rg.Group("/workers")
	{
		workers.GET("", h.Worker.List)
		workers.POST("", h.Worker.Create)
		workers.GET("/:id", h.Worker.Get)
		workers.PUT("/:id", h.Worker.Update)
		workers.DELETE("/:id", h.Worker.Delete)
		workers.POST("/:id/check-in", h.Worker.CheckIn)
		workers.GET("/:id/availability", h.Worker.Availability)
	}

	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
	}

	tasks := rg.Group("/tasks")
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.POST("/:id/complete", h.Task.Complete)
		tasks.DELETE("/:id", h.Task.Delete)
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail 按错误类别映射响应：校验/非法转移 → 40000，
// 记录不存在 → 40400，其余 → 50000。业务失败不产生任何状态变更
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrTenantRequired):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetTenantID 取JWT中的租户标识，所有数据访问都以此隔离
func GetTenantID(c *gin.Context) string {
	tenantID, _ := c.Get("tenant_id")
	if id, ok := tenantID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
