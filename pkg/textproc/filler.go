package textproc

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fillerToken 描述一个已知的VAD填充词及其在两个检测阶段的重复阈值
// 单片段判定阈值较低，用于装配前的保守筛查；全文清扫阈值较高，
// 在完整文本可见后做最终清理
type fillerToken struct {
	Token       string // 填充词原文
	SegmentReps int    // 单片段判定所需的最少重复次数
	SweepReps   int    // 全文清扫判定所需的最少重复次数
}

// FillerTokens 是两个检测阶段共用的填充词表
var FillerTokens = []fillerToken{
	{Token: "you...", SegmentReps: 3, SweepReps: 6},
	{Token: "uh...", SegmentReps: 3, SweepReps: 6},
}

// 点号串判定：整段/整块由5个以上连续点号构成时视为VAD噪声
const dotRunThreshold = 5

var (
	segmentFillerRe *regexp.Regexp
	sweepFillerRe   *regexp.Regexp
	dotRunRe        = regexp.MustCompile(fmt.Sprintf(`^\.{%d,}$`, dotRunThreshold))
)

func init() {
	segmentFillerRe = buildFillerPattern(func(t fillerToken) int { return t.SegmentReps })
	sweepFillerRe = buildFillerPattern(func(t fillerToken) int { return t.SweepReps })
}

// buildFillerPattern 根据填充词表构造"纯重复"匹配模式
// 重复之间允许穿插空白字符
func buildFillerPattern(reps func(fillerToken) int) *regexp.Regexp {
	var alts []string
	for _, t := range FillerTokens {
		alts = append(alts, fmt.Sprintf(`^(?:\s*%s\s*){%d,}$`, regexp.QuoteMeta(t.Token), reps(t)))
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}

// IsGarbageSegment 判定单个识别片段是否为VAD噪声
// 噪声片段会被静默丢弃，这是正常流程而非错误
func IsGarbageSegment(text string) bool {
	trimmed := strings.TrimSpace(text)

	// 空片段或过短的碎片
	if utf8.RuneCountInString(trimmed) < 2 {
		return true
	}

	// 纯填充词重复
	if segmentFillerRe.MatchString(trimmed) {
		return true
	}

	// 连续点号
	return dotRunRe.MatchString(trimmed)
}

// SweepTranscript 对已拼接的完整文本做最后一遍清扫
// 以空行为界逐块检查，丢弃纯填充词块和过短的残余碎片
// 该操作是幂等的：对已清理的文本再次执行不产生变化
func SweepTranscript(text string) string {
	blocks := strings.Split(strings.TrimSpace(text), "\n\n")
	var cleaned []string

	for _, block := range blocks {
		trimmed := strings.TrimSpace(block)

		if utf8.RuneCountInString(trimmed) < 3 {
			continue
		}

		if sweepFillerRe.MatchString(trimmed) {
			continue
		}

		if dotRunRe.MatchString(trimmed) {
			continue
		}

		cleaned = append(cleaned, trimmed)
	}

	return strings.Join(cleaned, "\n\n")
}
