package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testTenant = testutil.TestTenantID

// stubAttendance 测试用考勤：absent 中的工人不可用
type stubAttendance struct {
	absent map[string]string
}

func (s *stubAttendance) CanStart(_ context.Context, _, workerID string) (bool, string, error) {
	if reason, ok := s.absent[workerID]; ok {
		return false, reason, nil
	}
	return true, "", nil
}

type testEnv struct {
	db         *gorm.DB
	repos      *repository.Repositories
	attendance *stubAttendance

	project   *ProjectService
	product   *ProductService
	material  *MaterialService
	order     *OrderService
	offer     *OfferService
	workOrder *WorkOrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()
	att := &stubAttendance{absent: map[string]string{}}

	projectSvc := NewProjectService(repos.Project, repos.Product, repos.Offer)
	materialSvc := NewMaterialService(repos.Material, repos.Product)
	orderSvc := NewOrderService(repos.Order, repos.Material, repos.Product, repos.Project, materialSvc, logger)
	offerSvc := NewOfferService(repos.Offer, repos.Project, projectSvc)
	woSvc := NewWorkOrderService(repos.WorkOrder, repos.Product, repos.Material, repos.Project,
		repos.Worker, repos.Task, att, logger)

	return &testEnv{
		db:         db,
		repos:      repos,
		attendance: att,
		project:    projectSvc,
		product:    NewProductService(repos.Product, repos.Project),
		material:   materialSvc,
		order:      orderSvc,
		offer:      offerSvc,
		workOrder:  woSvc,
	}
}

func (e *testEnv) seedProject(t *testing.T, id, status string) *entity.Project {
	t.Helper()
	p := &entity.Project{
		ID:         id,
		TenantID:   testTenant,
		Name:       "测试项目-" + id,
		ClientName: "测试客户",
		Status:     status,
	}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	return p
}

func (e *testEnv) seedProduct(t *testing.T, id, projectID, status string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        id,
		TenantID:  testTenant,
		ProjectID: projectID,
		Name:      "测试产品-" + id,
		Quantity:  1,
		Unit:      "pcs",
		Status:    status,
	}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

func (e *testEnv) seedMaterial(t *testing.T, id, productID, name, unit string, qty, price float64, essential bool, status string) *entity.ProductMaterial {
	t.Helper()
	m := &entity.ProductMaterial{
		ID:         id,
		TenantID:   testTenant,
		ProductID:  productID,
		Name:       name,
		Unit:       unit,
		Quantity:   qty,
		UnitPrice:  price,
		TotalPrice: qty * price,
		Status:     status,
		Essential:  essential,
	}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return m
}

func (e *testEnv) seedWorker(t *testing.T, id, name string, rate float64) *entity.Worker {
	t.Helper()
	w := &entity.Worker{
		ID:        id,
		TenantID:  testTenant,
		Name:      name,
		DailyRate: rate,
		Active:    true,
	}
	if err := e.db.Create(w).Error; err != nil {
		t.Fatalf("Failed to seed worker: %v", err)
	}
	return w
}

func (e *testEnv) seedOffer(t *testing.T, id, projectID, status string) *entity.Offer {
	t.Helper()
	o := &entity.Offer{
		ID:        id,
		TenantID:  testTenant,
		ProjectID: projectID,
		OfferNo:   "OF-TEST-" + id,
		Status:    status,
	}
	if err := e.db.Create(o).Error; err != nil {
		t.Fatalf("Failed to seed offer: %v", err)
	}
	return o
}

func (e *testEnv) materialByID(t *testing.T, id string) *entity.ProductMaterial {
	t.Helper()
	var m entity.ProductMaterial
	if err := e.db.Where("tenant_id = ? AND id = ?", testTenant, id).First(&m).Error; err != nil {
		t.Fatalf("Failed to load material %s: %v", id, err)
	}
	return &m
}

func (e *testEnv) productByID(t *testing.T, id string) *entity.Product {
	t.Helper()
	var p entity.Product
	if err := e.db.Where("tenant_id = ? AND id = ?", testTenant, id).First(&p).Error; err != nil {
		t.Fatalf("Failed to load product %s: %v", id, err)
	}
	return &p
}

func (e *testEnv) projectByID(t *testing.T, id string) *entity.Project {
	t.Helper()
	var p entity.Project
	if err := e.db.Where("tenant_id = ? AND id = ?", testTenant, id).First(&p).Error; err != nil {
		t.Fatalf("Failed to load project %s: %v", id, err)
	}
	return &p
}
