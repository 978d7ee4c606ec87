package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

const (
	// DefaultDescriptionBudget 每条事件描述保留的最大字符数
	DefaultDescriptionBudget = 60
	// DefaultMaxDescriptions 单个学生提示词中最多列出的事件描述数
	DefaultMaxDescriptions = 15
	ellipsis               = "…"
)

// Prompt 一次生成调用的指令
type Prompt struct {
	// Section 3 次调用路径中该指令负责的段落；合并指令为零值
	Section model.Section
	System  string
	User    string
}

// Options 渲染选项
type Options struct {
	DescriptionBudget int
	MaxDescriptions   int
	// SevereLabels 计入严重比例的严重程度标签
	SevereLabels []string
}

func (o Options) withDefaults() Options {
	if o.DescriptionBudget <= 0 {
		o.DescriptionBudget = DefaultDescriptionBudget
	}
	if o.MaxDescriptions <= 0 {
		o.MaxDescriptions = DefaultMaxDescriptions
	}
	if len(o.SevereLabels) == 0 {
		o.SevereLabels = []string{"high", "critical"}
	}
	return o
}

const systemPrompt = `Eres un orientador escolar que redacta informes breves y objetivos en español.
Responde solo con texto plano. No uses asteriscos, guiones bajos, almohadillas, tablas ni ningún otro formato markdown.`

// studentSections 单个学生报告要求的段落，顺序即输出顺序
var studentSections = []model.Section{
	model.SectionSummary,
	model.SectionPatterns,
	model.SectionStrengths,
	model.SectionRiskFactors,
	model.SectionRecommendations,
	model.SectionFollowUp,
}

// StudentSections 返回单个学生报告期望的段落
func StudentSections() []model.Section {
	return append([]model.Section(nil), studentSections...)
}

// InstitutionSections 返回全校报告 3 次调用各自负责的段落
func InstitutionSections() []model.Section {
	return []model.Section{model.SectionSummary, model.SectionAlerts, model.SectionRecommendations}
}

// RenderStudent 渲染单个学生的合并指令
func RenderStudent(subject model.Subject, snap model.Snapshot, incidents []model.Incident, opts Options) Prompt {
	opts = opts.withDefaults()
	name := subject.Name
	if name == "" {
		name = subject.ID
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analiza los incidentes registrados del estudiante %s (ID %s).\n\n", name, subject.ID)
	sb.WriteString("Datos:\n")
	fmt.Fprintf(&sb, "- Total de incidentes: %d\n", snap.Total)
	fmt.Fprintf(&sb, "- Por tipo: %s\n", formatBreakdown(snap.TypeBreakdown()))
	fmt.Fprintf(&sb, "- Por severidad: %s\n", formatBreakdown(snap.SeverityBreakdown()))

	if lines := describe(incidents, opts); len(lines) > 0 {
		sb.WriteString("\nRegistros:\n")
		for _, line := range lines {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	sb.WriteString("\nRedacta el informe con exactamente estas secciones, en este orden. ")
	sb.WriteString("Cada sección empieza en una línea nueva con su título en mayúsculas seguido de dos puntos:\n")
	for _, sec := range studentSections {
		fmt.Fprintf(&sb, "%s:\n", sec.Label())
	}
	sb.WriteString("\nCada sección tiene como máximo tres oraciones. ")
	sb.WriteString("En RECOMENDACIONES escribe una lista numerada con una acción por línea.")

	return Prompt{System: systemPrompt, User: sb.String()}
}

// RenderInstitution 渲染全校报告的 3 条独立指令：摘要、预警、建议。
// 每条只包含该段落需要的统计数据
func RenderInstitution(snap model.Snapshot, opts Options) [3]Prompt {
	opts = opts.withDefaults()
	return [3]Prompt{
		single(model.SectionSummary, summaryBody(snap)),
		single(model.SectionAlerts, alertsBody(snap, opts)),
		single(model.SectionRecommendations, recommendationsBody(snap)),
	}
}

func single(sec model.Section, body string) Prompt {
	var sb strings.Builder
	sb.WriteString(body)
	fmt.Fprintf(&sb, "\nResponde únicamente con el contenido de la sección %s. ", sec.Label())
	sb.WriteString("No repitas el título de la sección ni agregues otras secciones.")
	return Prompt{Section: sec, System: systemPrompt, User: sb.String()}
}

func summaryBody(snap model.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("Escribe un resumen general de la convivencia escolar en un párrafo de máximo cuatro oraciones.\n\n")
	sb.WriteString("Datos:\n")
	fmt.Fprintf(&sb, "- Total de incidentes: %d\n", snap.Total)
	fmt.Fprintf(&sb, "- Estudiantes involucrados: %d\n", len(snap.Students))
	fmt.Fprintf(&sb, "- Docentes que reportaron: %d\n", len(snap.Reporters))
	fmt.Fprintf(&sb, "- Por tipo: %s\n", formatBreakdown(snap.TypeBreakdown()))
	fmt.Fprintf(&sb, "- Por severidad: %s\n", formatBreakdown(snap.SeverityBreakdown()))
	return sb.String()
}

func alertsBody(snap model.Snapshot, opts Options) string {
	var sb strings.Builder
	sb.WriteString("Escribe las alertas tempranas que requieren atención inmediata, una por línea.\n\n")
	sb.WriteString("Estudiantes en riesgo (número de incidentes):\n")
	writeEntities(&sb, snap.AtRisk)
	sb.WriteString("Docentes con volumen de reportes atípico:\n")
	writeEntities(&sb, snap.OutlierReporters)
	fmt.Fprintf(&sb, "Porcentaje de incidentes de severidad %s: %.1f%%\n",
		strings.Join(opts.SevereLabels, " o "), snap.SeverePercent(opts.SevereLabels...))
	return sb.String()
}

func recommendationsBody(snap model.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("Escribe recomendaciones concretas para el equipo directivo como lista numerada, una acción por línea.\n\n")
	sb.WriteString("Datos agregados:\n")
	fmt.Fprintf(&sb, "- Total de incidentes: %d\n", snap.Total)
	fmt.Fprintf(&sb, "- Estudiantes involucrados: %d\n", len(snap.Students))
	fmt.Fprintf(&sb, "- Estudiantes en riesgo: %d\n", len(snap.AtRisk))
	fmt.Fprintf(&sb, "- Estudiantes con reconocimientos positivos: %d\n", len(snap.Positive))
	return sb.String()
}

func writeEntities(sb *strings.Builder, list []model.EntityCount) {
	if len(list) == 0 {
		sb.WriteString("- ninguno\n")
		return
	}
	for _, e := range list {
		fmt.Fprintf(sb, "- %s: %d\n", e.ID, e.Count)
	}
}

func formatBreakdown(list []model.LabelCount) string {
	if len(list) == 0 {
		return "sin datos"
	}
	parts := make([]string, 0, len(list))
	for _, lc := range list {
		parts = append(parts, fmt.Sprintf("%s %d", lc.Label, lc.Count))
	}
	return strings.Join(parts, ", ")
}

// describe 按输入顺序列出最多 MaxDescriptions 条非空描述
func describe(incidents []model.Incident, opts Options) []string {
	var lines []string
	for _, inc := range incidents {
		if len(lines) >= opts.MaxDescriptions {
			break
		}
		desc := Truncate(inc.Description, opts.DescriptionBudget)
		if desc == "" {
			continue
		}
		prefix := ""
		if inc.Date != nil {
			prefix = inc.Date.Format(time.DateOnly) + " "
		}
		lines = append(lines, fmt.Sprintf("%s%s/%s: %s", prefix, inc.Type, inc.Severity, desc))
	}
	return lines
}

// Truncate 折叠空白后按字符截断，超出时追加省略号
func Truncate(s string, budget int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if budget <= 0 || len(runes) <= budget {
		return s
	}
	return strings.TrimRight(string(runes[:budget]), " ") + ellipsis
}
