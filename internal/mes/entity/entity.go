package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB JSONB类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// StringList JSONB字符串数组（合并行项的物料ID、工单工序等）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringList: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// StepAssignment 单道工序的人员分配
type StepAssignment struct {
	WorkerIDs []string `json:"worker_ids"`
	HelperIDs []string `json:"helper_ids"`
}

// AssignmentMap 工序名 → 人员分配
type AssignmentMap map[string]StepAssignment

func (m AssignmentMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]StepAssignment{})
	}
	return json.Marshal(m)
}

func (m *AssignmentMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan AssignmentMap: %v", value)
	}
	return json.Unmarshal(bytes, m)
}
