package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// TranscriptSegment 表示JSON输出中的一个字幕片段
type TranscriptSegment struct {
	Start float64 `json:"start"` // 开始时间（秒）
	End   float64 `json:"end"`   // 结束时间（秒）
	Text  string  `json:"text"`  // 该段文字
}

// TranscriptExport 表示整个转录结果的JSON结构
type TranscriptExport struct {
	Language string              `json:"language,omitempty"` // 检测语言（如 "zh"、"en"）
	Device   string              `json:"device,omitempty"`   // 识别所用设备
	Duration float64             `json:"duration"`           // 音频总时长（秒）
	FullText string              `json:"full_text"`          // 清理合并后的完整文本
	Segments []TranscriptSegment `json:"segments"`           // 分段结构，适合前端显示时间轴字幕等
}

// JSONExporter 负责将转写结果导出为JSON文件
type JSONExporter struct {
	OutputFolder string
}

// NewJSONExporter 创建一个新的JSON导出器
func NewJSONExporter(outputFolder string) *JSONExporter {
	return &JSONExporter{
		OutputFolder: outputFolder,
	}
}

// GenerateJSONContent 根据转写结果生成TranscriptExport结构
func (e *JSONExporter) GenerateJSONContent(result *models.TranscriptResult) TranscriptExport {
	out := TranscriptExport{
		Language: result.Language,
		Device:   result.Device,
		Duration: result.Duration,
		FullText: result.Document.Text,
		Segments: make([]TranscriptSegment, 0, len(result.Document.Subtitle)),
	}

	for _, entry := range result.Document.Subtitle {
		out.Segments = append(out.Segments, TranscriptSegment{
			Start: entry.Start,
			End:   entry.End,
			Text:  entry.Text,
		})
	}

	return out
}

// ExportJSON 导出JSON格式文件
func (e *JSONExporter) ExportJSON(result *models.TranscriptResult, filename string) (string, error) {
	baseName := filepath.Base(filename)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	outputFile := filepath.Join(e.OutputFolder, fmt.Sprintf("%s.json", baseName))

	if err := utils.SaveJSONFile(outputFile, e.GenerateJSONContent(result)); err != nil {
		return "", fmt.Errorf("写入JSON文件失败: %w", err)
	}

	utils.Info("已导出JSON文件: %s", outputFile)
	return outputFile, nil
}
