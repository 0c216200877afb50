package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// SRTExporter 负责将字幕条目导出为SRT字幕文件
type SRTExporter struct {
	OutputFolder string
}

// NewSRTExporter 创建一个新的SRT导出器
func NewSRTExporter(outputFolder string) *SRTExporter {
	return &SRTExporter{
		OutputFolder: outputFolder,
	}
}

// GenerateSRTContent 生成SRT格式内容
// 条目边界与识别片段一一对应，不做合并，保证时间轴对齐
func (e *SRTExporter) GenerateSRTContent(entries []models.SubtitleEntry) string {
	var srtLines []string

	for _, entry := range entries {
		srtLines = append(srtLines, fmt.Sprintf("%d", entry.Index))
		srtLines = append(srtLines, fmt.Sprintf("%s --> %s",
			FormatTimecode(entry.Start), FormatTimecode(entry.End)))
		srtLines = append(srtLines, entry.Text)
		srtLines = append(srtLines, "") // 空行分隔
	}

	return strings.Join(srtLines, "\n")
}

// ExportSRT 导出SRT格式字幕文件
func (e *SRTExporter) ExportSRT(entries []models.SubtitleEntry, filename string) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	baseName := filepath.Base(filename)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	outputFile := filepath.Join(e.OutputFolder, fmt.Sprintf("%s.srt", baseName))

	srtContent := e.GenerateSRTContent(entries)

	if err := os.WriteFile(outputFile, []byte(srtContent), 0644); err != nil {
		return "", fmt.Errorf("写入SRT文件失败: %w", err)
	}

	utils.Info("已导出SRT字幕: %s", outputFile)
	return outputFile, nil
}
