package models

// RawSegment 表示识别引擎输出的一个原始片段
// 起止时间为可选字段：引擎输出可能缺失，缺失的片段在装配阶段被跳过
type RawSegment struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Valid 判断片段字段是否完整
func (s *RawSegment) Valid() bool {
	return s.Start != nil && s.End != nil
}

// Duration 返回片段时长（秒），字段不完整时返回0
func (s *RawSegment) Duration() float64 {
	if !s.Valid() {
		return 0
	}
	return *s.End - *s.Start
}

// SubtitleEntry 表示字幕文件中的一个条目，序号从1开始连续递增
type SubtitleEntry struct {
	Index int     // 条目序号（1-based）
	Start float64 // 开始时间（秒）
	End   float64 // 结束时间（秒）
	Text  string  // 文本内容
}

// TranscriptDocument 装配器的最终输出：纯文本和字幕两个视图
// 字幕条目保持原始片段边界，纯文本经过清理与合并，两者刻意不对称
type TranscriptDocument struct {
	Text     string          // 段落间以空行分隔的纯文本
	Subtitle []SubtitleEntry // 按时间顺序排列的字幕条目
}
