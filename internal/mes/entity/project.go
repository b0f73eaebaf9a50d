package entity

import "time"

// 项目状态
const (
	ProjectStatusDraft        = "draft"
	ProjectStatusOffered      = "offered"
	ProjectStatusApproved     = "approved"
	ProjectStatusInProduction = "in_production"
	ProjectStatusCompleted    = "completed"
	ProjectStatusCancelled    = "cancelled"
)

// projectTransitions 项目状态转移表 (当前状态 → 允许的下一状态)
var projectTransitions = map[string][]string{
	ProjectStatusDraft:        {ProjectStatusOffered, ProjectStatusApproved, ProjectStatusInProduction, ProjectStatusCancelled},
	ProjectStatusOffered:      {ProjectStatusApproved, ProjectStatusCancelled},
	ProjectStatusApproved:     {ProjectStatusInProduction, ProjectStatusCompleted},
	ProjectStatusInProduction: {ProjectStatusCompleted},
	ProjectStatusCompleted:    {},
	ProjectStatusCancelled:    {},
}

// ProjectCanTransition 校验项目状态转移是否合法
func ProjectCanTransition(from, to string) bool {
	for _, s := range projectTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// projectRank 项目状态推进度，项目状态只能随子实体状态单调前进
var projectRank = map[string]int{
	ProjectStatusDraft:        0,
	ProjectStatusOffered:      1,
	ProjectStatusApproved:     2,
	ProjectStatusInProduction: 3,
	ProjectStatusCompleted:    4,
}

// ProjectRank 返回状态推进度（cancelled 无推进度，返回 -1）
func ProjectRank(status string) int {
	if r, ok := projectRank[status]; ok {
		return r
	}
	return -1
}

// Project 项目（客户委托）
type Project struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	TenantID      string     `json:"tenant_id" gorm:"size:32;not null;index"`
	Name          string     `json:"name" gorm:"size:200;not null"`
	ClientName    string     `json:"client_name" gorm:"size:200;not null"`
	ClientContact string     `json:"client_contact" gorm:"size:200"`
	Address       string     `json:"address" gorm:"size:500"`
	Status        string     `json:"status" gorm:"size:20;not null;default:draft"`
	Deadline      *time.Time `json:"deadline"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// 关联（内存装配，库表无外键）
	Products []Product `json:"products" gorm:"-"`
	Offers   []Offer   `json:"offers" gorm:"-"`
}

func (Project) TableName() string {
	return "mes_projects"
}
