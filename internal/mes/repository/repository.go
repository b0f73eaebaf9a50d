package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Project   *ProjectRepository
	Product   *ProductRepository
	Material  *MaterialRepository
	Order     *OrderRepository
	Offer     *OfferRepository
	WorkOrder *WorkOrderRepository
	Worker    *WorkerRepository
	Supplier  *SupplierRepository
	Task      *TaskRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:   NewProjectRepository(db),
		Product:   NewProductRepository(db),
		Material:  NewMaterialRepository(db),
		Order:     NewOrderRepository(db),
		Offer:     NewOfferRepository(db),
		WorkOrder: NewWorkOrderRepository(db),
		Worker:    NewWorkerRepository(db),
		Supplier:  NewSupplierRepository(db),
		Task:      NewTaskRepository(db),
	}
}
