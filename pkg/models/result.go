package models

// TranscriptResult 一次转写任务的完整结果
type TranscriptResult struct {
	Document     TranscriptDocument `json:"-"`
	Language     string             `json:"language"`      // 检测到的语言
	Duration     float64            `json:"duration"`      // 音频总时长（秒）
	Device       string             `json:"device"`        // 使用的设备（cuda/cpu）
	ComputeType  string             `json:"compute_type"`  // 计算精度（float16/int8）
	SegmentCount int                `json:"segment_count"` // 保留下来的片段数
}

// JobResult 单个文件处理的统计信息
type JobResult struct {
	JobID         string            `json:"job_id"`          // 任务ID
	FilePath      string            `json:"file_path"`       // 处理的文件路径
	OutputFiles   map[string]string `json:"output_files"`    // 输出文件路径（txt/srt/json）
	SegmentCount  int               `json:"segment_count"`   // 识别的文本段数
	DurationMs    int64             `json:"duration_ms"`     // 音频时长（毫秒）
	ProcessTimeMs int64             `json:"process_time_ms"` // 处理时间（毫秒）
	Success       bool              `json:"success"`
	Error         error             `json:"-"`
}
