package entity

import "time"

// 报价单状态
const (
	OfferStatusDraft      = "draft"
	OfferStatusSent       = "sent"
	OfferStatusAccepted   = "accepted"
	OfferStatusRejected   = "rejected"
	OfferStatusExpired    = "expired"
	OfferStatusSuperseded = "superseded"
)

// offerTransitions 报价单状态转移表。接受一份报价时，同项目其余报价转 superseded
var offerTransitions = map[string][]string{
	OfferStatusDraft:    {OfferStatusSent, OfferStatusSuperseded},
	OfferStatusSent:     {OfferStatusAccepted, OfferStatusRejected, OfferStatusExpired, OfferStatusSuperseded},
	OfferStatusAccepted: {},
	OfferStatusRejected: {},
	OfferStatusExpired:  {},
	OfferStatusSuperseded: {},
}

// OfferCanTransition 校验报价单状态转移是否合法
func OfferCanTransition(from, to string) bool {
	for _, s := range offerTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OfferIsNegative 终止负向态（rejected/expired）。
// 项目是否转 cancelled 由全部报价是否负向决定
func OfferIsNegative(status string) bool {
	return status == OfferStatusRejected || status == OfferStatusExpired
}

// AllOffersNegative 判断项目全部报价是否都已负向终止。
// pendingRejectID 为本次正在驳回、尚未落库的报价——按已驳回处理，
// 避免级联中读到自己未提交的写入
func AllOffersNegative(offers []Offer, pendingRejectID string) bool {
	if len(offers) == 0 {
		return false
	}
	for _, o := range offers {
		if o.ID == pendingRejectID {
			continue
		}
		if o.Status == OfferStatusSuperseded {
			continue
		}
		if !OfferIsNegative(o.Status) {
			return false
		}
	}
	return true
}

// Offer 报价单
type Offer struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;index"`
	ProjectID   string     `json:"project_id" gorm:"size:32;not null;index"`
	OfferNo     string     `json:"offer_no" gorm:"size:32;not null;index"`
	Status      string     `json:"status" gorm:"size:20;not null;default:draft"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	ValidUntil  *time.Time `json:"valid_until"`
	SentAt      *time.Time `json:"sent_at"`
	DecidedAt   *time.Time `json:"decided_at"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联（内存装配）
	Products []OfferProduct `json:"products" gorm:"-"`
}

func (Offer) TableName() string {
	return "mes_offers"
}

// OfferProduct 报价产品行
type OfferProduct struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string    `json:"tenant_id" gorm:"size:32;not null;index"`
	OfferID   string    `json:"offer_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(10,2);default:1"`
	Unit      string    `json:"unit" gorm:"size:20;default:pcs"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联（内存装配）
	Extras []OfferExtra `json:"extras" gorm:"-"`
}

func (OfferProduct) TableName() string {
	return "mes_offer_products"
}

// OfferExtra 报价附加项（配件、运输等）
type OfferExtra struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID       string    `json:"tenant_id" gorm:"size:32;not null;index"`
	OfferProductID string    `json:"offer_product_id" gorm:"size:32;not null;index"`
	Name           string    `json:"name" gorm:"size:200;not null"`
	Price          float64   `json:"price" gorm:"type:decimal(12,2);default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (OfferExtra) TableName() string {
	return "mes_offer_extras"
}
