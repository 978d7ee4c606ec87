package model

import "time"

// Incident 单条事件记录（来自外部持久化层）
type Incident struct {
	ID          string     `json:"id" yaml:"id"`
	Type        string     `json:"type" yaml:"type"`         // 事件类别
	Severity    string     `json:"severity" yaml:"severity"` // 严重程度
	StudentID   string     `json:"student_id" yaml:"student_id"`
	StudentName string     `json:"student_name,omitempty" yaml:"student_name"`
	ReporterID  string     `json:"reporter_id,omitempty" yaml:"reporter_id"` // 上报人，可为空
	Description string     `json:"description,omitempty" yaml:"description"`
	Date        *time.Time `json:"date,omitempty" yaml:"date"`
}

// Subject 单个学生报告的主体
type Subject struct {
	ID   string
	Name string
}

// LabelCount 类别计数
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// EntityCount 实体计数（学生或上报人）
type EntityCount struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Generation 一次生成调用的原始结果
type Generation struct {
	Text      string
	Target    string // 实际应答的目标
	Truncated bool   // 是否触发了长度上限
	Duration  time.Duration
}

// Scope 报告范围
type Scope string

const (
	ScopeStudent     Scope = "student"
	ScopeInstitution Scope = "institution"
)
