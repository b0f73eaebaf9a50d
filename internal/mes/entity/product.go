package entity

import "time"

// 产品状态：备料链 waiting → materials_ordered → materials_ready，
// 之后由工单的工序链驱动（如 cutting → edging → ... → ready）
const (
	ProductStatusWaiting           = "waiting"
	ProductStatusMaterialsOrdered  = "materials_ordered"
	ProductStatusMaterialsReady    = "materials_ready"
	ProductStatusWaitingProduction = "waiting_for_production"
	ProductStatusReady             = "ready"
)

// 默认工序链（工单未定义工序时使用）
var DefaultProductionSteps = []string{"cutting", "edging", "drilling", "assembly"}

// NextStepMap 由工序链构建「完成当前工序 → 下一工序」查找表，末道工序映射到 ready
func NextStepMap(steps []string) map[string]string {
	m := make(map[string]string, len(steps))
	for i, s := range steps {
		if i+1 < len(steps) {
			m[s] = steps[i+1]
		} else {
			m[s] = ProductStatusReady
		}
	}
	return m
}

// NextProductStep 查下一工序名，无映射时默认 ready
func NextProductStep(steps []string, completed string) string {
	if next, ok := NextStepMap(steps)[completed]; ok {
		return next
	}
	return ProductStatusReady
}

// Product 产品（项目下的制造单元）
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID     string    `json:"tenant_id" gorm:"size:32;not null;index"`
	ProjectID    string    `json:"project_id" gorm:"size:32;not null;index"`
	Name         string    `json:"name" gorm:"size:200;not null"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(10,2);default:1"`
	Unit         string    `json:"unit" gorm:"size:20;default:pcs"`
	Status       string    `json:"status" gorm:"size:32;not null;default:waiting"`
	MaterialCost float64   `json:"material_cost" gorm:"type:decimal(15,2);default:0"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联（内存装配）
	Materials []ProductMaterial `json:"materials" gorm:"-"`
}

func (Product) TableName() string {
	return "mes_products"
}
