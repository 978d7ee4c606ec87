package extract

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/logger"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/metrics"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

const (
	// FallbackSummary 叙述段落缺失时的通用说明
	FallbackSummary = "No fue posible generar el resumen automático en este momento. Revise los registros de incidentes directamente."
	// FallbackRecommendation 建议段落缺失时的通用转介语
	FallbackRecommendation = "Se recomienda revisar los casos con el equipo de orientación escolar y dar seguimiento a los estudiantes involucrados."
)

// Options 抽取选项
type Options struct {
	// Expected 期望出现的段落，为空表示全部
	Expected []model.Section
	// Truncated 生成端是否报告了长度截断
	Truncated bool
}

type draft struct {
	raw      string
	text     string
	expected []model.Section
	fields   map[model.Section]string
	spans    map[model.Section][]span
	signal   bool

	truncated bool
}

func (d *draft) expects(sec model.Section) bool {
	for _, s := range d.expected {
		if s == sec {
			return true
		}
	}
	return false
}

type step struct {
	name string
	run  func(*draft) bool
}

// 顺序相关，逐步修改 draft
var pipeline = []step{
	{"locate", locateSections},
	{"alerts_bleed", repairAlertsBleed},
	{"normalize", normalizeFields},
	{"truncation", markTruncation},
	{"global_fallback", applyGlobalFallback},
	{"relineate", relineateRecommendations},
}

// Locate 按标题切分原文，返回每个期望段落的正文（可能为空）
func Locate(raw string, expected []model.Section) map[model.Section]string {
	d := newDraft(raw, Options{Expected: expected})
	locateSections(d)
	return d.fields
}

// Build 运行完整抽取流水线，从不返回错误
func Build(raw string, opts Options) *model.Report {
	d := newDraft(raw, opts)
	for _, st := range pipeline {
		if st.run(d) && st.name != "locate" {
			logger.Log.Debugf("抽取步骤 [%s] 已生效", st.name)
			metrics.ExtractionSteps.WithLabelValues(st.name).Inc()
		}
	}

	report := &model.Report{
		Truncated:   d.truncated,
		GeneratedAt: time.Now().UTC(),
	}
	report.SetFields(d.fields)
	report.Composite = Composite(d.fields, raw)
	return report
}

// Composite 按规范顺序拼接非空段落；全部为空时返回原文
func Composite(fields map[model.Section]string, raw string) string {
	var parts []string
	for _, sec := range model.Sections {
		if body := fields[sec]; body != "" {
			parts = append(parts, sec.Label()+"\n"+body)
		}
	}
	if len(parts) == 0 {
		return raw
	}
	return strings.Join(parts, "\n\n")
}

func newDraft(raw string, opts Options) *draft {
	expected := opts.Expected
	if len(expected) == 0 {
		expected = model.Sections
	}
	return &draft{
		raw:      raw,
		text:     norm.NFC.String(raw),
		expected: expected,
		fields:   make(map[model.Section]string, len(expected)),
		spans:    make(map[model.Section][]span, len(expected)),
		signal:   opts.Truncated,
	}
}

func locateSections(d *draft) bool {
	for _, sec := range d.expected {
		spans := locate(d.text, sec)
		d.spans[sec] = spans
		var parts []string
		for _, sp := range spans {
			if body := sectionBody(d.text, sp); body != "" {
				parts = append(parts, body)
			}
		}
		if len(parts) > 1 {
			logger.Log.Debugf("段落 [%s] 出现 %d 次，正文已合并", sec, len(parts))
		}
		d.fields[sec] = strings.Join(parts, "\n")
	}
	return true
}

// sectionBody 截取正文；句中标题前的逗号、分号不属于正文
func sectionBody(text string, sp span) string {
	body := strings.TrimSpace(text[sp.body:sp.end])
	if sp.inline {
		body = trimBullet(body)
	}
	if sp.end < len(text) {
		body = strings.TrimSpace(strings.TrimRight(body, ",;"))
	}
	return body
}

func normalizeFields(d *draft) bool {
	changed := false
	for sec, body := range d.fields {
		if n := Normalize(body); n != body {
			d.fields[sec] = n
			changed = true
		}
	}
	return changed
}

func markTruncation(d *draft) bool {
	d.truncated = d.signal &&
		(d.fields[model.SectionSummary] == "" || d.fields[model.SectionRecommendations] == "")
	return d.truncated
}

// applyGlobalFallback 叙述与建议都为空时用原文兜底；有叙述但缺建议时补通用建议
func applyGlobalFallback(d *draft) bool {
	applied := false
	if d.fields[model.SectionSummary] == "" && d.fields[model.SectionRecommendations] == "" &&
		strings.TrimSpace(d.raw) != "" && d.expects(model.SectionSummary) {
		if rest := d.unlocated(); rest != "" {
			d.fields[model.SectionSummary] = rest
			applied = true
		}
	}
	if d.hasContent() && d.fields[model.SectionRecommendations] == "" &&
		d.expects(model.SectionRecommendations) {
		d.fields[model.SectionRecommendations] = FallbackRecommendation
		applied = true
	}
	return applied
}

func (d *draft) hasContent() bool {
	for _, body := range d.fields {
		if body != "" {
			return true
		}
	}
	return false
}

// unlocated 返回原文中未被任何已定位段落覆盖的部分，避免内容在字段间重复
func (d *draft) unlocated() string {
	var spans []span
	for sec, located := range d.spans {
		if d.fields[sec] != "" {
			spans = append(spans, located...)
		}
	}
	if len(spans) == 0 {
		return Normalize(d.text)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].head < spans[j].head })

	var sb strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.head > pos {
			sb.WriteString(d.text[pos:sp.head])
			sb.WriteByte('\n')
		}
		if sp.end > pos {
			pos = sp.end
		}
	}
	sb.WriteString(d.text[pos:])
	return Normalize(sb.String())
}

func relineateRecommendations(d *draft) bool {
	body := d.fields[model.SectionRecommendations]
	if out := Relineate(body); out != body {
		d.fields[model.SectionRecommendations] = out
		return true
	}
	return false
}
