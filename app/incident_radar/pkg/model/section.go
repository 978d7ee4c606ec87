package model

// Section 报告中的命名段落
type Section int

const (
	SectionSummary Section = iota + 1
	SectionAlerts
	SectionPatterns
	SectionStrengths
	SectionRiskFactors
	SectionRecommendations
	SectionFollowUp
)

// Sections 规范顺序
var Sections = []Section{
	SectionSummary,
	SectionAlerts,
	SectionPatterns,
	SectionStrengths,
	SectionRiskFactors,
	SectionRecommendations,
	SectionFollowUp,
}

var sectionNames = map[Section]string{
	SectionSummary:         "SUMMARY",
	SectionAlerts:          "ALERTS",
	SectionPatterns:        "PATTERNS",
	SectionStrengths:       "STRENGTHS",
	SectionRiskFactors:     "RISK_FACTORS",
	SectionRecommendations: "RECOMMENDATIONS",
	SectionFollowUp:        "FOLLOWUP",
}

// 报告中展示的标签
var sectionLabels = map[Section]string{
	SectionSummary:         "RESUMEN",
	SectionAlerts:          "ALERTAS",
	SectionPatterns:        "ANÁLISIS DE PATRONES",
	SectionStrengths:       "FORTALEZAS Y ÁREAS DE MEJORA",
	SectionRiskFactors:     "FACTORES DE RIESGO",
	SectionRecommendations: "RECOMENDACIONES",
	SectionFollowUp:        "PLAN DE SEGUIMIENTO",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Label 返回规范标签
func (s Section) Label() string {
	return sectionLabels[s]
}

// Index 返回规范顺序中的位置，未知段落返回 -1
func (s Section) Index() int {
	for i, sec := range Sections {
		if sec == s {
			return i
		}
	}
	return -1
}

// ParseSection 解析段落名称
func ParseSection(name string) (Section, bool) {
	for sec, n := range sectionNames {
		if n == name {
			return sec, true
		}
	}
	return 0, false
}
