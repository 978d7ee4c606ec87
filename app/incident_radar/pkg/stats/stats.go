package stats

import (
	"sort"
	"strings"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

const (
	// OtherType 未知或缺失类别的归档标签
	OtherType = "other"
	// DefaultSeverity 未知或缺失严重程度的归档标签
	DefaultSeverity = "moderate"

	AtRiskThreshold  = 5
	AtRiskLimit      = 10
	PositiveLimit    = 10
	OutlierLimit     = 5
	OutlierThreshold = 1.5
)

// Taxonomy 类别与严重程度的取值范围
type Taxonomy struct {
	KnownTypes      []string
	KnownSeverities []string
	PositiveType    string
}

// DefaultTaxonomy 默认取值范围
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		KnownTypes:      []string{"ausencia", "tardanza", "conducta", "academico", "convivencia", "salud", "positivo"},
		KnownSeverities: []string{"low", "moderate", "high", "critical"},
		PositiveType:    "positivo",
	}
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(id string) {
	if _, ok := c.counts[id]; !ok {
		c.order = append(c.order, id)
	}
	c.counts[id]++
}

// ranked 过滤后按数量降序排列，数量相同时保持首次出现顺序
func (c *counter) ranked(keep func(int) bool, limit int) []model.EntityCount {
	out := make([]model.EntityCount, 0)
	for _, id := range c.order {
		if n := c.counts[id]; keep(n) {
			out = append(out, model.EntityCount{ID: id, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Build 遍历一次事件列表，生成统计快照
func Build(incidents []model.Incident, tax Taxonomy) model.Snapshot {
	snap := model.Snapshot{
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	knownTypes := toSet(tax.KnownTypes)
	knownSeverities := toSet(tax.KnownSeverities)
	positive := normalizeLabel(tax.PositiveType)

	students := newCounter()
	reporters := newCounter()
	positives := newCounter()

	for _, inc := range incidents {
		snap.Total++

		typ := bucket(inc.Type, knownTypes, OtherType)
		snap.ByType[typ]++
		snap.BySeverity[bucket(inc.Severity, knownSeverities, DefaultSeverity)]++

		if id := strings.TrimSpace(inc.StudentID); id != "" {
			students.add(id)
			if positive != "" && typ == positive {
				positives.add(id)
			}
		}
		if id := strings.TrimSpace(inc.ReporterID); id != "" {
			reporters.add(id)
		}
	}

	snap.Students = students.order
	snap.Reporters = reporters.order
	snap.AtRisk = students.ranked(func(n int) bool { return n >= AtRiskThreshold }, AtRiskLimit)
	snap.Positive = positives.ranked(func(n int) bool { return n > 0 }, PositiveLimit)
	snap.OutlierReporters = outliers(snap.Total, reporters)
	return snap
}

func outliers(total int, reporters *counter) []model.EntityCount {
	if len(reporters.order) == 0 {
		return nil
	}
	mean := float64(total) / float64(len(reporters.order))
	if mean == 0 {
		return nil
	}
	return reporters.ranked(func(n int) bool { return float64(n) > OutlierThreshold*mean }, OutlierLimit)
}

func bucket(raw string, known map[string]struct{}, sentinel string) string {
	label := normalizeLabel(raw)
	if label == "" {
		return sentinel
	}
	if len(known) > 0 {
		if _, ok := known[label]; !ok {
			return sentinel
		}
	}
	return label
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = normalizeLabel(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
