package entity

import "time"

// 任务状态与优先级
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"

	TaskPriorityNormal = "normal"
	TaskPriorityHigh   = "high"
)

// Task 任务。工单排期时对未就绪的必备物料自动生成高优任务，
// 在计划开工日前暴露采购缺口
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;index"`
	Title       string     `json:"title" gorm:"size:256;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:normal"`
	Status      string     `json:"status" gorm:"size:16;not null;default:open"`
	MaterialID  *string    `json:"material_id" gorm:"size:32;index"`
	WorkOrderID *string    `json:"work_order_id" gorm:"size:32;index"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "mes_tasks"
}
