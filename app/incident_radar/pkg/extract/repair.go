package extract

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

var leadingBullet = regexp.MustCompile(`^(?:[-•*]|\d{1,2}[.)])\s+`)

// 摘要末尾残留的 ALERTAS 标题：首字母大写带冒号（可跟同行内容）、强调包裹、独占最后一行，
// 或句末全大写（正文里的小写 "alertas" 不受影响）
var residualAlerts = func() []*regexp.Regexp {
	synonyms := synonymsOf(model.SectionAlerts)
	alt := alternation(synonyms, caseAny)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(` + emphasis + alternation(synonyms, caseCapital) + emphasis + `[ \t]*:[^\n]*)$`),
		regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])((?:\*\*|__)` + alt + `(?:\*\*|__)[ \t]*)$`),
		regexp.MustCompile(`(?i)(?:^|\n)[ \t]*((?:#{1,6}[ \t]*)?` + emphasis + alt + emphasis + `[ \t]*)$`),
		regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(` + alt + `[ \t]*)$`),
	}
}()

func synonymsOf(sec model.Section) []string {
	for _, row := range headingTable {
		if row.section == sec {
			return row.synonyms
		}
	}
	return nil
}

// splitBleed 在 body 中查找串入的 sec 段落，返回其正文与剥离后的 body
func splitBleed(body string, sec model.Section) (found string, rest string, ok bool) {
	loc := headings[sec].loose.FindStringSubmatchIndex(body)
	if loc == nil {
		return "", body, false
	}
	head, start := loc[2], loc[1]
	end := len(body)
	if next := firstHeading(body, start, othersThan(sec)); next >= 0 {
		end = next
	}
	found = trimBullet(body[start:end])
	return found, stripSpan(body, head, end), true
}

// stripSpan 删除 [head, end) 区间。先尝试从标题前紧邻的分隔符处删除，
// 否则从标题处删除，取能缩短文本的结果
func stripSpan(body string, head, end int) string {
	orig := strings.TrimSpace(body)
	tail := body[end:]

	before := strings.TrimRight(body[:head], " \t\r\n")
	if n := len(before); n > 0 && strings.ContainsAny(before[n-1:], ",;:") {
		if out := joinTrimmed(before[:n-1], tail); len(out) < len(orig) {
			return out
		}
	}
	if out := joinTrimmed(body[:head], tail); len(out) < len(orig) {
		return out
	}
	return orig
}

func joinTrimmed(head, tail string) string {
	head = strings.TrimSpace(head)
	tail = strings.TrimSpace(tail)
	switch {
	case head == "":
		return tail
	case tail == "":
		return head
	}
	return head + "\n" + tail
}

func trimBullet(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(leadingBullet.ReplaceAllString(s, ""))
}

// stripResidualAlerts 删除摘要末尾残留的 ALERTAS 标题
func stripResidualAlerts(summary string) string {
	for {
		changed := false
		for _, re := range residualAlerts {
			loc := re.FindStringSubmatchIndex(summary)
			if loc == nil {
				continue
			}
			summary = strings.TrimRight(summary[:loc[2]], " \t\r\n,;:–-")
			changed = true
		}
		if !changed {
			return summary
		}
	}
}

// repairAlertsBleed 修复 ALERTAS 串入 RESUMEN 的情况
func repairAlertsBleed(d *draft) bool {
	summary, hasSummary := d.fields[model.SectionSummary]
	if !hasSummary {
		return false
	}
	applied := false

	if d.fields[model.SectionAlerts] == "" {
		if alerts, rest, ok := splitBleed(summary, model.SectionAlerts); ok && alerts != "" {
			d.fields[model.SectionAlerts] = alerts
			summary = rest
			applied = true
		} else if alerts := alertsFromRaw(d.text); alerts != "" {
			d.fields[model.SectionAlerts] = alerts
			// 原文兜底找到的内容可能仍留在其他字段中
			for _, sec := range model.Sections {
				body := d.fields[sec]
				if sec == model.SectionAlerts || !strings.Contains(body, alerts) {
					continue
				}
				if found, rest, ok := splitBleed(body, model.SectionAlerts); ok && found == alerts {
					d.fields[sec] = rest
				}
			}
			summary = d.fields[model.SectionSummary]
			applied = true
		}
	}

	cleaned := stripResidualAlerts(summary)
	if cleaned != d.fields[model.SectionSummary] {
		d.fields[model.SectionSummary] = cleaned
		applied = true
	}
	return applied
}

// alertsFromRaw 在整段原文中查找 ALERTAS 标题
func alertsFromRaw(text string) string {
	loc := headings[model.SectionAlerts].loose.FindStringSubmatchIndex(text)
	if loc == nil {
		return ""
	}
	start := loc[1]
	end := len(text)
	if next := firstHeading(text, start, othersThan(model.SectionAlerts)); next >= 0 {
		end = next
	}
	return trimBullet(text[start:end])
}
