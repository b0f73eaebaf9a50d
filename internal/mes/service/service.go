package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 业务错误。处理器据此映射为 4xxxx 响应码，业务失败不改变任何状态
var (
	ErrTenantRequired    = errors.New("tenant id required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

// Services 服务集合
type Services struct {
	Graph     *GraphService
	Project   *ProjectService
	Product   *ProductService
	Material  *MaterialService
	Order     *OrderService
	Offer     *OfferService
	WorkOrder *WorkOrderService
	Worker    *WorkerService
	Supplier  *SupplierService
	Task      *TaskService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *Services {
	attendance := NewRedisAttendance(rdb)

	projectSvc := NewProjectService(repos.Project, repos.Product, repos.Offer)
	materialSvc := NewMaterialService(repos.Material, repos.Product)
	offerSvc := NewOfferService(repos.Offer, repos.Project, projectSvc)
	orderSvc := NewOrderService(repos.Order, repos.Material, repos.Product, repos.Project, materialSvc, logger)
	workOrderSvc := NewWorkOrderService(repos.WorkOrder, repos.Product, repos.Material, repos.Project, repos.Worker, repos.Task, attendance, logger)

	return &Services{
		Graph:     NewGraphService(repos, logger),
		Project:   projectSvc,
		Product:   NewProductService(repos.Product, repos.Project),
		Material:  materialSvc,
		Order:     orderSvc,
		Offer:     offerSvc,
		WorkOrder: workOrderSvc,
		Worker:    NewWorkerService(repos.Worker, attendance),
		Supplier:  NewSupplierService(repos.Supplier),
		Task:      NewTaskService(repos.Task),
	}
}

// newID 生成32位实体ID
func newID() string {
	return uuid.New().String()[:32]
}

// generateNo 生成单据编号：日期前缀 + 随机后缀。
// 不保证全局唯一，预期单量下碰撞概率可忽略
func generateNo(prefix string) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}
