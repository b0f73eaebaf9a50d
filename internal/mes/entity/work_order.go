package entity

import "time"

// 工单状态
const (
	WorkOrderStatusWaiting    = "waiting"
	WorkOrderStatusScheduled  = "scheduled"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
)

// workOrderTransitions 工单状态转移表，scheduled 可选
var workOrderTransitions = map[string][]string{
	WorkOrderStatusWaiting:    {WorkOrderStatusScheduled, WorkOrderStatusInProgress},
	WorkOrderStatusScheduled:  {WorkOrderStatusInProgress, WorkOrderStatusWaiting},
	WorkOrderStatusInProgress: {WorkOrderStatusCompleted},
	WorkOrderStatusCompleted:  {},
}

// WorkOrderCanTransition 校验工单状态转移是否合法
func WorkOrderCanTransition(from, to string) bool {
	for _, s := range workOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// 工单行项状态：waiting → in_progress → 各工序名 → done
const (
	WorkOrderItemStatusWaiting    = "waiting"
	WorkOrderItemStatusInProgress = "in_progress"
	WorkOrderItemStatusDone       = "done"
)

// 工单删除时产品的处置策略
const (
	WODisposalCompleted = "completed" // 产品标记 ready
	WODisposalWaiting   = "waiting"   // 产品退回 waiting_for_production
)

// WorkOrder 生产工单
type WorkOrder struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID       string     `json:"tenant_id" gorm:"size:32;not null;index"`
	WONo           string     `json:"wo_no" gorm:"size:32;not null;index"`
	Status         string     `json:"status" gorm:"size:20;not null;default:waiting"`
	Steps          StringList `json:"steps" gorm:"type:jsonb"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	Notes          string     `json:"notes" gorm:"type:text"`
	CreatedBy      string     `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// 关联（内存装配）
	Items []WorkOrderItem `json:"items" gorm:"-"`
}

func (WorkOrder) TableName() string {
	return "mes_work_orders"
}

// WorkOrderItem 工单行项（单个产品的生产跟踪）。
// Status 记录已推进到的最远工序
type WorkOrderItem struct {
	ID          string        `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string        `json:"tenant_id" gorm:"size:32;not null;index"`
	WorkOrderID string        `json:"work_order_id" gorm:"size:32;not null;index"`
	ProductID   string        `json:"product_id" gorm:"size:32;not null;index"`
	Status      string        `json:"status" gorm:"size:32;not null;default:waiting"`
	Assignments AssignmentMap `json:"assignments" gorm:"type:jsonb"`
	Value       float64       `json:"value" gorm:"type:decimal(15,2);default:0"`
	LaborCost   float64       `json:"labor_cost" gorm:"type:decimal(15,2);default:0"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (WorkOrderItem) TableName() string {
	return "mes_work_order_items"
}

// WorkLog 工时记录，每 (worker, item, date) 最多一条
type WorkLog struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID        string    `json:"tenant_id" gorm:"size:32;not null;index"`
	WorkerID        string    `json:"worker_id" gorm:"size:32;not null;index"`
	WorkOrderItemID string    `json:"work_order_item_id" gorm:"size:32;not null;index"`
	LogDate         string    `json:"log_date" gorm:"size:10;not null"` // YYYY-MM-DD
	DailyRate       float64   `json:"daily_rate" gorm:"type:decimal(12,2);default:0"`
	CreatedAt       time.Time `json:"created_at"`
}

func (WorkLog) TableName() string {
	return "mes_work_logs"
}
