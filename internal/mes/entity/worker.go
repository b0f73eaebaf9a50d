package entity

import "time"

// Worker 工人
type Worker struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	TenantID  string    `json:"tenant_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Phone     string    `json:"phone" gorm:"size:50"`
	DailyRate float64   `json:"daily_rate" gorm:"type:decimal(12,2);default:0"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Worker) TableName() string {
	return "mes_workers"
}
