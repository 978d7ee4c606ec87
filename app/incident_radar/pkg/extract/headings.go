package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

// headingTable 段落 -> 同义标题。重音变体由 synonymPattern 自动生成
var headingTable = []struct {
	section  model.Section
	synonyms []string
}{
	{model.SectionSummary, []string{"RESUMEN EJECUTIVO", "RESUMEN GENERAL", "RESUMEN"}},
	{model.SectionAlerts, []string{"ALERTAS INTELIGENTES", "ALERTAS TEMPRANAS", "ALERTAS", "ALERTA"}},
	{model.SectionPatterns, []string{"ANÁLISIS DE PATRONES", "PATRONES DETECTADOS", "PATRONES"}},
	{model.SectionStrengths, []string{"FORTALEZAS Y ÁREAS DE MEJORA", "FORTALEZAS Y DEBILIDADES", "FORTALEZAS", "ÁREAS DE MEJORA"}},
	{model.SectionRiskFactors, []string{"FACTORES DE RIESGO", "RIESGOS"}},
	{model.SectionRecommendations, []string{"RECOMENDACIONES ESPECÍFICAS", "RECOMENDACIONES", "RECOMENDACIÓN", "RECOM."}},
	{model.SectionFollowUp, []string{"PLAN DE SEGUIMIENTO", "SEGUIMIENTO"}},
}

type heading struct {
	section model.Section
	// strict 只匹配位于行首或句首的标题，冒号可选（无冒号时需独占一行）
	strict *regexp.Regexp
	// bare 行首全大写标题，无冒号，正文紧随同一行
	bare *regexp.Regexp
	// loose 匹配任意位置后接冒号、首字母大写的标题
	loose *regexp.Regexp
	// followers 按规范顺序可能紧随其后的段落
	followers []model.Section
	// preceding 规范顺序中位于其前的段落，乱序输出时同样作为终止标题
	preceding []model.Section
}

func (h *heading) closers() []model.Section {
	return append(append([]model.Section(nil), h.followers...), h.preceding...)
}

// patterns 按优先级排列，同一位置的匹配取靠前者
func (h *heading) patterns() []*regexp.Regexp {
	return []*regexp.Regexp{h.strict, h.bare, h.loose}
}

const emphasis = `(?:[*_]{1,2})?`

const listPrefix = `(?:#{1,6}[ \t]*)?(?:\d{1,2}[.)][ \t]*)?`

var headings = buildHeadings()

func buildHeadings() map[model.Section]*heading {
	out := make(map[model.Section]*heading, len(headingTable))
	for _, row := range headingTable {
		alt := alternation(row.synonyms, caseAny)
		h := &heading{
			section: row.section,
			strict: regexp.MustCompile(`(?im)(?:^|[.!?;]\s+)[ \t]*(` +
				listPrefix + emphasis + alt + emphasis +
				`[ \t]*(?::[ \t]*` + emphasis + `|` + emphasis + `[ \t]*$))`),
			bare: regexp.MustCompile(`(?m)^[ \t]*(` + listPrefix + emphasis +
				alternation(row.synonyms, caseUpper) + emphasis + `)[ \t]+\S`),
			loose: regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(` + emphasis +
				alternation(row.synonyms, caseCapital) + emphasis + `[ \t]*:)`),
		}
		idx := row.section.Index()
		for _, sec := range model.Sections {
			switch {
			case sec.Index() > idx:
				h.followers = append(h.followers, sec)
			case sec.Index() < idx:
				h.preceding = append(h.preceding, sec)
			}
		}
		out[row.section] = h
	}
	return out
}

// 同义词的大小写匹配方式
const (
	caseAny     = iota // 由外层 (?i) 决定
	caseUpper          // 仅全大写
	caseCapital        // 首字母大写，其余不区分大小写
)

// alternation 长的同义词优先，避免 "RESUMEN" 抢先匹配 "RESUMEN EJECUTIVO"
func alternation(synonyms []string, mode int) string {
	sorted := append([]string(nil), synonyms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	parts := make([]string, 0, len(sorted))
	for _, s := range sorted {
		if mode != caseCapital {
			parts = append(parts, synonymPattern(s))
			continue
		}
		r, size := utf8.DecodeRuneInString(strings.ToUpper(s))
		parts = append(parts, synonymPattern(string(r))+"(?i:"+synonymPattern(strings.ToUpper(s)[size:])+")")
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

var accentFold = map[rune]string{
	'A': "[AÁ]", 'Á': "[AÁ]",
	'E': "[EÉ]", 'É': "[EÉ]",
	'I': "[IÍ]", 'Í': "[IÍ]",
	'O': "[OÓ]", 'Ó': "[OÓ]",
	'U': "[UÚÜ]", 'Ú': "[UÚÜ]", 'Ü': "[UÚÜ]",
}

// synonymPattern 把同义词转为忽略重音、空白宽松的正则片段
func synonymPattern(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r == ' ':
			sb.WriteString(`\s+`)
		case accentFold[r] != "":
			sb.WriteString(accentFold[r])
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return sb.String()
}

// span 标题与正文在文本中的位置
type span struct {
	head   int  // 标题起点
	body   int  // 正文起点
	end    int  // 正文终点
	inline bool // 句中冒号标题
}

// find 返回 from 之后该标题最早的一次出现
func (h *heading) find(text string, from int) (span, bool) {
	var best span
	found := false
	rest := text[from:]
	for _, re := range h.patterns() {
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil {
			continue
		}
		if head := from + loc[2]; !found || head < best.head {
			best = span{head: head, body: from + loc[3], inline: re == h.loose}
			found = true
		}
	}
	return best, found
}

// locate 返回段落的每次出现：正文从标题后开始，到下一个终止标题（含本段标题）或文本末尾结束
func locate(text string, sec model.Section) []span {
	h, ok := headings[sec]
	if !ok {
		return nil
	}
	stops := append(h.closers(), sec)
	var out []span
	for from := 0; from < len(text); {
		sp, ok := h.find(text, from)
		if !ok {
			break
		}
		sp.end = len(text)
		if next := firstHeading(text, sp.body, stops); next >= 0 {
			sp.end = next
		}
		out = append(out, sp)
		from = sp.end
	}
	return out
}

// firstHeading 返回 from 之后 sections 中任一标题最早出现的位置，未找到返回 -1
func firstHeading(text string, from int, sections []model.Section) int {
	best := -1
	for _, sec := range sections {
		sp, ok := headings[sec].find(text, from)
		if ok && (best < 0 || sp.head < best) {
			best = sp.head
		}
	}
	return best
}

// othersThan 规范顺序中除 skip 以外的段落
func othersThan(skip model.Section) []model.Section {
	out := make([]model.Section, 0, len(model.Sections)-1)
	for _, sec := range model.Sections {
		if sec != skip {
			out = append(out, sec)
		}
	}
	return out
}

// StripHeading 去掉文本开头重复输出的本段标题
func StripHeading(text string, sec model.Section) string {
	text = strings.TrimSpace(text)
	h, ok := headings[sec]
	if !ok {
		return text
	}
	sp, ok := h.find(text, 0)
	if !ok || sp.head != 0 {
		return text
	}
	return strings.TrimSpace(text[sp.body:])
}
