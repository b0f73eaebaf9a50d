package entity

import "time"

// 采购订单状态。partially_received 只是派生标签，不落库
const (
	OrderStatusDraft             = "draft"
	OrderStatusSent              = "sent"
	OrderStatusReceived          = "received"
	OrderStatusPartiallyReceived = "partially_received"
)

// orderTransitions 订单状态转移表。sent/received → draft 是回退路径，
// 回退会把未收货物料重置为 not_ordered，需调用方确认
var orderTransitions = map[string][]string{
	OrderStatusDraft:    {OrderStatusSent},
	OrderStatusSent:     {OrderStatusReceived, OrderStatusDraft},
	OrderStatusReceived: {OrderStatusDraft},
}

// OrderCanTransition 校验订单状态转移是否合法
func OrderCanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 订单行项状态
const (
	OrderItemStatusOrdered  = "ordered"
	OrderItemStatusReceived = "received"
)

// Order 采购订单
type Order struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;index"`
	OrderNo     string     `json:"order_no" gorm:"size:32;not null;index"`
	SupplierID  *string    `json:"supplier_id" gorm:"size:32;index"`
	Status      string     `json:"status" gorm:"size:20;not null;default:draft"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	SentAt      *time.Time `json:"sent_at"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联（内存装配）
	Items []OrderItem `json:"items" gorm:"-"`
}

func (Order) TableName() string {
	return "mes_orders"
}

// DerivedStatus 派生展示状态：部分收货时返回 partially_received，永不持久化
func (o *Order) DerivedStatus() string {
	if o.Status != OrderStatusSent || len(o.Items) == 0 {
		return o.Status
	}
	received := 0
	for _, it := range o.Items {
		if it.Status == OrderItemStatusReceived {
			received++
		}
	}
	if received > 0 && received < len(o.Items) {
		return OrderStatusPartiallyReceived
	}
	return o.Status
}

// OrderItem 订单行项。同名同单位的物料在下单时合并，MaterialIDs 记录全部来源物料
type OrderItem struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID      string     `json:"tenant_id" gorm:"size:32;not null;index"`
	OrderID       string     `json:"order_id" gorm:"size:32;not null;index"`
	MaterialIDs   StringList `json:"material_ids" gorm:"type:jsonb"`
	Name          string     `json:"name" gorm:"size:200;not null"`
	Unit          string     `json:"unit" gorm:"size:20;default:pcs"`
	Quantity      float64    `json:"quantity" gorm:"type:decimal(10,2);not null"`
	ExpectedPrice float64    `json:"expected_price" gorm:"type:decimal(12,4);default:0"`
	Status        string     `json:"status" gorm:"size:20;not null;default:ordered"`
	ReceivedAt    *time.Time `json:"received_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "mes_order_items"
}
