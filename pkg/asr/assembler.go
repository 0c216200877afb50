package asr

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/textproc"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// 时长低于该值的片段视为VAD误切分，直接丢弃
const minSegmentDuration = 0.1

// 每接受若干片段后向运行时发出一次资源回收提示
// 针对60分钟以上的长输入，只是建议性的管理操作，不影响正确性
const reclaimInterval = 10

// Assembler 将原始片段流装配为转写文档
// 单次遍历同时产出纯文本和字幕两个视图：
// 字幕保持片段原始边界，纯文本在流结束后做清扫与合并
type Assembler struct {
	MergeMinLength int
	reporter       *ProgressReporter
	reclaim        func()
}

// NewAssembler 创建装配器
// reporter可以为nil，此时不报告进度
func NewAssembler(mergeMinLength int, reporter *ProgressReporter) *Assembler {
	return &Assembler{
		MergeMinLength: mergeMinLength,
		reporter:       reporter,
		reclaim:        func() { runtime.GC() },
	}
}

// SetReclaimHint 替换周期性资源回收动作（测试用）
func (a *Assembler) SetReclaimHint(fn func()) {
	a.reclaim = fn
}

// Assemble 消费片段流，返回转写文档和保留的片段数
// 字段不完整、过短或被判定为VAD噪声的片段被静默跳过，
// 这是预期中的正常流程而不是错误
func (a *Assembler) Assemble(stream *SegmentStream, totalDuration float64) (*models.TranscriptDocument, int, error) {
	var fullText []string
	var entries []models.SubtitleEntry
	index := 1
	accepted := 0

	for seg := range stream.Segments() {
		// 引擎输出可能缺失起止时间，跳过而非报错
		if !seg.Valid() {
			continue
		}

		if seg.Duration() < minSegmentDuration {
			continue
		}

		text := strings.TrimSpace(seg.Text)
		if textproc.IsGarbageSegment(text) {
			utils.Debug("跳过噪声片段: %.50s", text)
			continue
		}

		fullText = append(fullText, text)
		entries = append(entries, models.SubtitleEntry{
			Index: index,
			Start: *seg.Start,
			End:   *seg.End,
			Text:  text,
		})
		index++
		accepted++

		if accepted%reclaimInterval == 0 && a.reclaim != nil {
			a.reclaim()
		}

		// 50-95区间按已处理的时间位置线性推进，95以上留给收尾阶段
		// 总时长未知时该阶段不推进
		if totalDuration > 0 && a.reporter != nil {
			percent := 50 + int((*seg.End/totalDuration)*45)
			if percent > 95 {
				percent = 95
			}
			a.reporter.Report(percent, fmt.Sprintf("处理片段 %d... (%.1f/%.1fs)", index, *seg.End, totalDuration))
		}
	}

	if err := stream.Err(); err != nil {
		return nil, 0, err
	}

	if a.reporter != nil {
		a.reporter.Report(95, "清理残留噪声...")
	}

	// 先清扫再合并：清扫必须在未合并的段落边界上识别整块噪声
	text := strings.Join(fullText, "\n\n")
	text = textproc.SweepTranscript(text)
	text = textproc.MergeShortParagraphs(text, a.MergeMinLength)

	doc := &models.TranscriptDocument{
		Text:     text,
		Subtitle: entries,
	}

	return doc, accepted, nil
}
