package entity

import "time"

// 物料状态
const (
	MaterialStatusNotOrdered = "not_ordered"
	MaterialStatusOrdered    = "ordered"
	MaterialStatusReceived   = "received"
	MaterialStatusOnStock    = "on_stock"
	MaterialStatusInUse      = "in_use"
	MaterialStatusInstalled  = "installed"
)

// materialTransitions 物料状态转移表。ordered → not_ordered 是删除订单行项的退回路径
var materialTransitions = map[string][]string{
	MaterialStatusNotOrdered: {MaterialStatusOrdered, MaterialStatusReceived},
	MaterialStatusOrdered:    {MaterialStatusReceived, MaterialStatusNotOrdered},
	MaterialStatusReceived:   {MaterialStatusOnStock, MaterialStatusInUse, MaterialStatusInstalled},
	MaterialStatusOnStock:    {MaterialStatusInUse, MaterialStatusInstalled},
	MaterialStatusInUse:      {MaterialStatusInstalled},
	MaterialStatusInstalled:  {},
}

// MaterialCanTransition 校验物料状态转移是否合法
func MaterialCanTransition(from, to string) bool {
	for _, s := range materialTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// MaterialIsTerminal 终态（received/on_stock/in_use/installed）：
// 产品全部物料到达终态时升为 materials_ready，且不再出现在未订购清单中
func MaterialIsTerminal(status string) bool {
	switch status {
	case MaterialStatusReceived, MaterialStatusOnStock, MaterialStatusInUse, MaterialStatusInstalled:
		return true
	}
	return false
}

// MaterialIsEssentialReady 必备物料就绪态（received/on_stock），生产开工门槛
func MaterialIsEssentialReady(status string) bool {
	return status == MaterialStatusReceived || status == MaterialStatusOnStock
}

// ProductMaterial 产品物料行项（订购与收货的基本单元）
type ProductMaterial struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;index"`
	ProductID   string     `json:"product_id" gorm:"size:32;not null;index"`
	Name        string     `json:"name" gorm:"size:200;not null"`
	Unit        string     `json:"unit" gorm:"size:20;default:pcs"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitPrice   float64    `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	TotalPrice  float64    `json:"total_price" gorm:"type:decimal(15,2);default:0"`
	Status      string     `json:"status" gorm:"size:20;not null;default:not_ordered"`
	Essential   bool       `json:"essential" gorm:"default:false"`
	SupplierID  *string    `json:"supplier_id" gorm:"size:32"`
	OrderID     *string    `json:"order_id" gorm:"size:32;index"`
	OrderedQty  float64    `json:"ordered_qty" gorm:"type:decimal(10,2);default:0"`
	ReceivedAt  *time.Time `json:"received_at"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联（内存装配）
	GlassItems   []GlassItem   `json:"glass_items" gorm:"-"`
	AluDoorItems []AluDoorItem `json:"alu_door_items" gorm:"-"`
}

func (ProductMaterial) TableName() string {
	return "mes_product_materials"
}

// GlassItem 玻璃子行项
type GlassItem struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID   string    `json:"tenant_id" gorm:"size:32;not null;index"`
	MaterialID string    `json:"material_id" gorm:"size:32;not null;index"`
	WidthMM    float64   `json:"width_mm" gorm:"type:decimal(10,2)"`
	HeightMM   float64   `json:"height_mm" gorm:"type:decimal(10,2)"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(10,2);default:1"`
	GlassType  string    `json:"glass_type" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (GlassItem) TableName() string {
	return "mes_glass_items"
}

// AluDoorItem 铝框门子行项
type AluDoorItem struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID   string    `json:"tenant_id" gorm:"size:32;not null;index"`
	MaterialID string    `json:"material_id" gorm:"size:32;not null;index"`
	WidthMM    float64   `json:"width_mm" gorm:"type:decimal(10,2)"`
	HeightMM   float64   `json:"height_mm" gorm:"type:decimal(10,2)"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(10,2);default:1"`
	Profile    string    `json:"profile" gorm:"size:100"`
	FillType   string    `json:"fill_type" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (AluDoorItem) TableName() string {
	return "mes_alu_door_items"
}
