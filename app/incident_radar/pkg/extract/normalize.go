package extract

import (
	"regexp"
	"strings"
)

// 非贪婪匹配，同一行相邻的强调片段不会被合并
var markupRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*([^\n]+?)\*\*`), "$1"},
	{regexp.MustCompile(`__([^\n]+?)__`), "$1"},
	{regexp.MustCompile(`\*([^\s*](?:[^*\n]*?[^\s*])?)\*`), "$1"},
	{regexp.MustCompile(`\b_([^\s_](?:[^_\n]*?[^\s_])?)_\b`), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`), ""},
}

// Normalize 去除强调与标题标记。重复执行直到不再变化，因此是幂等的
func Normalize(s string) string {
	for {
		next := s
		for _, rule := range markupRules {
			next = rule.re.ReplaceAllString(next, rule.repl)
		}
		next = strings.TrimSpace(next)
		if next == s {
			return next
		}
		s = next
	}
}

var (
	numberedMarker = regexp.MustCompile(`(?:^|\s)(\d{1,2}[.)])\s+`)
	bulletMarker   = regexp.MustCompile(`(?:^|\s)([-•*])\s+`)
	sentenceBreak  = regexp.MustCompile(`([.!?])\s+(\p{Lu})`)
)

// Relineate 把单行建议拆成每行一条：编号 > 项目符号 > 句子边界
func Relineate(s string) string {
	if s == "" || strings.Contains(s, "\n") {
		return s
	}
	if out, ok := splitAtMarkers(s, numberedMarker); ok {
		return out
	}
	if out, ok := splitAtMarkers(s, bulletMarker); ok {
		return out
	}
	if sentenceBreak.MatchString(s) {
		return sentenceBreak.ReplaceAllString(s, "$1\n$2")
	}
	return s
}

func splitAtMarkers(s string, re *regexp.Regexp) (string, bool) {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) < 2 {
		return "", false
	}
	lines := make([]string, 0, len(locs)+1)
	if lead := strings.TrimSpace(s[:locs[0][2]]); lead != "" {
		lines = append(lines, lead)
	}
	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][2]
		}
		if line := strings.TrimSpace(s[loc[2]:end]); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), true
}
