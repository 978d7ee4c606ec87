package model

import "sort"

// Snapshot 一次报告请求对应的统计快照，构建后不再修改
type Snapshot struct {
	Total            int            `json:"total"`
	ByType           map[string]int `json:"by_type"`
	BySeverity       map[string]int `json:"by_severity"`
	Students         []string       `json:"students"`  // 按首次出现顺序去重
	Reporters        []string       `json:"reporters"` // 按首次出现顺序去重
	AtRisk           []EntityCount  `json:"at_risk"`
	Positive         []EntityCount  `json:"positive"`
	OutlierReporters []EntityCount  `json:"outlier_reporters"`
}

// TypeBreakdown 按数量降序、标签升序返回类别分布
func (s Snapshot) TypeBreakdown() []LabelCount {
	return breakdown(s.ByType)
}

// SeverityBreakdown 按数量降序、标签升序返回严重程度分布
func (s Snapshot) SeverityBreakdown() []LabelCount {
	return breakdown(s.BySeverity)
}

// SeverePercent 指定严重程度占总数的百分比
func (s Snapshot) SeverePercent(labels ...string) float64 {
	if s.Total == 0 {
		return 0
	}
	n := 0
	for _, l := range labels {
		n += s.BySeverity[l]
	}
	return float64(n) * 100 / float64(s.Total)
}

func breakdown(m map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(m))
	for label, count := range m {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
