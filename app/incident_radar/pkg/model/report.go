package model

import "time"

// Report 结构化报告
type Report struct {
	ID              string    `json:"id"`
	Scope           Scope     `json:"scope"`
	SubjectID       string    `json:"subject_id,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Alerts          string    `json:"alerts,omitempty"`
	Patterns        string    `json:"patterns,omitempty"`
	Strengths       string    `json:"strengths,omitempty"`
	RiskFactors     string    `json:"risk_factors,omitempty"`
	Recommendations string    `json:"recommendations,omitempty"`
	FollowUp        string    `json:"follow_up,omitempty"`
	Composite       string    `json:"composite"`
	Truncated       bool      `json:"truncated"`
	Targets         []string  `json:"targets,omitempty"`
	Error           string    `json:"error,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Field 返回段落对应字段的指针
func (r *Report) Field(s Section) *string {
	switch s {
	case SectionSummary:
		return &r.Summary
	case SectionAlerts:
		return &r.Alerts
	case SectionPatterns:
		return &r.Patterns
	case SectionStrengths:
		return &r.Strengths
	case SectionRiskFactors:
		return &r.RiskFactors
	case SectionRecommendations:
		return &r.Recommendations
	case SectionFollowUp:
		return &r.FollowUp
	}
	return nil
}

// SetFields 按段落批量写入字段
func (r *Report) SetFields(fields map[Section]string) {
	for sec, body := range fields {
		if f := r.Field(sec); f != nil {
			*f = body
		}
	}
}

// Fields 以段落为键导出非空字段
func (r *Report) Fields() map[Section]string {
	out := make(map[Section]string, len(Sections))
	for _, sec := range Sections {
		if v := *r.Field(sec); v != "" {
			out[sec] = v
		}
	}
	return out
}
