package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"go.uber.org/zap"
)

// Graph 租户全量业务图：项目树（产品→物料→子行项、报价→产品行→附加项）
// 加上订单、工单、供应商、工人、任务。所有关联在内存中按ID索引装配，
// 库表之间无外键
type Graph struct {
	Projects   []entity.Project   `json:"projects"`
	Orders     []entity.Order     `json:"orders"`
	WorkOrders []entity.WorkOrder `json:"work_orders"`
	Suppliers  []entity.Supplier  `json:"suppliers"`
	Workers    []entity.Worker    `json:"workers"`
	Tasks      []entity.Task      `json:"tasks"`
}

// orEmpty 子集合为空时返回空切片而非 nil，序列化恒为 []
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func emptyGraph() *Graph {
	return &Graph{
		Projects:   []entity.Project{},
		Orders:     []entity.Order{},
		WorkOrders: []entity.WorkOrder{},
		Suppliers:  []entity.Supplier{},
		Workers:    []entity.Worker{},
		Tasks:      []entity.Task{},
	}
}

// GraphService 业务图装配器
type GraphService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewGraphService(repos *repository.Repositories, logger *zap.Logger) *GraphService {
	return &GraphService{repos: repos, logger: logger}
}

// Assemble 装配租户业务图。各集合并发拉取，任一失败则整体失败并返回空图，
// 绝不返回半装配的图
func (s *GraphService) Assemble(ctx context.Context, tenantID string) (*Graph, error) {
	if tenantID == "" {
		return emptyGraph(), ErrTenantRequired
	}

	var (
		projects      []entity.Project
		products      []entity.Product
		materials     []entity.ProductMaterial
		glassItems    []entity.GlassItem
		aluDoorItems  []entity.AluDoorItem
		offers        []entity.Offer
		offerProducts []entity.OfferProduct
		offerExtras   []entity.OfferExtra
		orders        []entity.Order
		orderItems    []entity.OrderItem
		workOrders    []entity.WorkOrder
		woItems       []entity.WorkOrderItem
		suppliers     []entity.Supplier
		workers       []entity.Worker
		tasks         []entity.Task
	)

	fetches := []func() error{
		func() (err error) { projects, err = s.repos.Project.ListByTenant(ctx, tenantID); return },
		func() (err error) { products, err = s.repos.Product.ListByTenant(ctx, tenantID); return },
		func() (err error) { materials, err = s.repos.Material.ListByTenant(ctx, tenantID); return },
		func() (err error) { glassItems, err = s.repos.Material.ListGlassByTenant(ctx, tenantID); return },
		func() (err error) { aluDoorItems, err = s.repos.Material.ListAluDoorByTenant(ctx, tenantID); return },
		func() (err error) { offers, err = s.repos.Offer.ListByTenant(ctx, tenantID); return },
		func() (err error) { offerProducts, err = s.repos.Offer.ListProductsByTenant(ctx, tenantID); return },
		func() (err error) { offerExtras, err = s.repos.Offer.ListExtrasByTenant(ctx, tenantID); return },
		func() (err error) { orders, err = s.repos.Order.ListByTenant(ctx, tenantID); return },
		func() (err error) { orderItems, err = s.repos.Order.ListAllItems(ctx, tenantID); return },
		func() (err error) { workOrders, err = s.repos.WorkOrder.ListByTenant(ctx, tenantID); return },
		func() (err error) { woItems, err = s.repos.WorkOrder.ListAllItems(ctx, tenantID); return },
		func() (err error) { suppliers, err = s.repos.Supplier.ListByTenant(ctx, tenantID); return },
		func() (err error) { workers, err = s.repos.Worker.ListByTenant(ctx, tenantID); return },
		func() (err error) { tasks, err = s.repos.Task.ListByTenant(ctx, tenantID); return },
	}

	errs := make([]error, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func(i int, fetch func() error) {
			defer wg.Done()
			errs[i] = fetch()
		}(i, fetch)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.logger.Error("graph assembly failed", zap.String("tenant_id", tenantID), zap.Error(err))
			return emptyGraph(), fmt.Errorf("装配业务图失败: %w", err)
		}
	}

	// 子行项挂到物料
	glassByMaterial := make(map[string][]entity.GlassItem, len(glassItems))
	for _, g := range glassItems {
		glassByMaterial[g.MaterialID] = append(glassByMaterial[g.MaterialID], g)
	}
	aluByMaterial := make(map[string][]entity.AluDoorItem, len(aluDoorItems))
	for _, a := range aluDoorItems {
		aluByMaterial[a.MaterialID] = append(aluByMaterial[a.MaterialID], a)
	}
	materialsByProduct := make(map[string][]entity.ProductMaterial, len(materials))
	for _, m := range materials {
		m.GlassItems = orEmpty(glassByMaterial[m.ID])
		m.AluDoorItems = orEmpty(aluByMaterial[m.ID])
		materialsByProduct[m.ProductID] = append(materialsByProduct[m.ProductID], m)
	}

	// 产品挂物料，按项目分组
	productsByProject := make(map[string][]entity.Product, len(products))
	for _, p := range products {
		p.Materials = orEmpty(materialsByProduct[p.ID])
		productsByProject[p.ProjectID] = append(productsByProject[p.ProjectID], p)
	}

	// 报价树
	extrasByOfferProduct := make(map[string][]entity.OfferExtra, len(offerExtras))
	for _, e := range offerExtras {
		extrasByOfferProduct[e.OfferProductID] = append(extrasByOfferProduct[e.OfferProductID], e)
	}
	offerProductsByOffer := make(map[string][]entity.OfferProduct, len(offerProducts))
	for _, op := range offerProducts {
		op.Extras = orEmpty(extrasByOfferProduct[op.ID])
		offerProductsByOffer[op.OfferID] = append(offerProductsByOffer[op.OfferID], op)
	}
	offersByProject := make(map[string][]entity.Offer, len(offers))
	for _, o := range offers {
		o.Products = orEmpty(offerProductsByOffer[o.ID])
		offersByProject[o.ProjectID] = append(offersByProject[o.ProjectID], o)
	}

	for i := range projects {
		projects[i].Products = orEmpty(productsByProject[projects[i].ID])
		projects[i].Offers = orEmpty(offersByProject[projects[i].ID])
	}

	// 订单与工单行项
	orderItemsByOrder := make(map[string][]entity.OrderItem, len(orderItems))
	for _, it := range orderItems {
		orderItemsByOrder[it.OrderID] = append(orderItemsByOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = orEmpty(orderItemsByOrder[orders[i].ID])
	}
	woItemsByWO := make(map[string][]entity.WorkOrderItem, len(woItems))
	for _, it := range woItems {
		woItemsByWO[it.WorkOrderID] = append(woItemsByWO[it.WorkOrderID], it)
	}
	for i := range workOrders {
		workOrders[i].Items = orEmpty(woItemsByWO[workOrders[i].ID])
	}

	return &Graph{
		Projects:   orEmpty(projects),
		Orders:     orEmpty(orders),
		WorkOrders: orEmpty(workOrders),
		Suppliers:  orEmpty(suppliers),
		Workers:    orEmpty(workers),
		Tasks:      orEmpty(tasks),
	}, nil
}
