package domain

import (
	"time"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

// Section 报告中的一个非空段落
type Section struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Body  string `json:"body"`
}

// Report 报告领域对象
type Report struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Sections    []Section `json:"sections"`
	Composite   string    `json:"composite"`
	Truncated   bool      `json:"truncated"`
	Targets     []string  `json:"targets,omitempty"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt string    `json:"generated_at"`
}

// FromModel 按规范顺序展开非空段落
func FromModel(r *model.Report) *Report {
	out := &Report{
		ID:          r.ID,
		Scope:       string(r.Scope),
		SubjectID:   r.SubjectID,
		Sections:    []Section{},
		Composite:   r.Composite,
		Truncated:   r.Truncated,
		Targets:     r.Targets,
		Error:       r.Error,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
	}
	for _, sec := range model.Sections {
		if body := *r.Field(sec); body != "" {
			out.Sections = append(out.Sections, Section{Key: sec.String(), Label: sec.Label(), Body: body})
		}
	}
	return out
}
