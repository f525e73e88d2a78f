package parser

import (
	"regexp"
	"strings"
)

// typeKeywords are the CAPL type names used as a heuristic that a piece of
// text is a syntax form rather than prose or a navigation link.
var typeKeywords = []string{"byte", "word", "int", "dword", "qword", "char"}

// codeSpanRe extracts inline code spans from a bullet line.
var codeSpanRe = regexp.MustCompile("`([^`]+)`")

// bracketRe finds the first bracketed token on a line, non-greedy so nested
// brackets resolve to the innermost content.
var bracketRe = regexp.MustCompile(`\[(.*?)\]`)

// syntaxStrategy is one named heuristic for recognizing syntax forms outside
// fenced code blocks. Strategies are evaluated in priority order; the first
// one that claims the line wins, even when it extracts nothing.
type syntaxStrategy struct {
	name    string
	extract func(line string) (forms []string, ok bool)
}

// syntaxStrategies in documented priority order: inline code spans on a
// bullet, bare bullets with a type hint, then the bracketed-link heuristic.
var syntaxStrategies = []syntaxStrategy{
	{name: "inline-code", extract: inlineCodeForms},
	{name: "bare-bullet", extract: bareBulletForms},
	{name: "bracketed-link", extract: bracketedForms},
}

func containsTypeKeyword(s string) bool {
	for _, kw := range typeKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// looksLikeCode reports whether a span resembles a syntax form rather than
// prose: a type keyword, a call, or a member access.
func looksLikeCode(s string) bool {
	return containsTypeKeyword(s) || strings.Contains(s, "(") || strings.Contains(s, ".")
}

// inlineCodeForms claims bullet lines carrying inline code spans and keeps
// every span that looks like code.
func inlineCodeForms(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "-") || !strings.Contains(line, "`") {
		return nil, false
	}
	var forms []string
	for _, m := range codeSpanRe.FindAllStringSubmatch(line, -1) {
		if looksLikeCode(m[1]) {
			forms = append(forms, strings.TrimSpace(m[1]))
		}
	}
	return forms, true
}

// bareBulletForms claims bullet lines without code spans that still look like
// syntax: they mention a type keyword or carry angle-bracketed placeholders.
func bareBulletForms(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "-") {
		return nil, false
	}
	if !containsTypeKeyword(line) && !(strings.Contains(line, "<") && strings.Contains(line, ">")) {
		return nil, true // claimed as a bullet, nothing extractable
	}
	clean := strings.Trim(trimmed, "- ")
	clean = strings.Trim(clean, "`")
	if clean == "" {
		return nil, true
	}
	return []string{clean}, true
}

// bracketedForms takes the first [...] token on a non-bullet line and accepts
// it only when it resembles code: parentheses, a dot, or a type keyword.
// Plain navigation links fail the heuristic and are ignored.
func bracketedForms(line string) ([]string, bool) {
	m := bracketRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	text := strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "`"))
	if text == "" {
		return nil, true
	}
	if looksLikeCode(text) {
		return []string{text}, true
	}
	return nil, true
}
