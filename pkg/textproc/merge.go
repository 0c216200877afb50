package textproc

import (
	"strings"
	"unicode/utf8"
)

// MergeShortParagraphs 合并过短的段落，修复过度切分
// 以空行为界遍历段落：长度不足minLength的段落并入当前累积段，
// 达到minLength的段落先输出累积段再另起新段。只重组、不丢弃文本。
func MergeShortParagraphs(text string, minLength int) string {
	blocks := strings.Split(strings.TrimSpace(text), "\n\n")
	var merged []string
	current := ""

	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)

		if utf8.RuneCountInString(trimmed) < minLength && current != "" {
			// 并入前一段
			current += " " + trimmed
		} else {
			if current != "" {
				merged = append(merged, strings.TrimSpace(current))
			}
			current = trimmed
		}
	}

	if current != "" {
		merged = append(merged, strings.TrimSpace(current))
	}

	return strings.Join(merged, "\n\n")
}
