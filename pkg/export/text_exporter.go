package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// TextExporter 负责将清理后的转写文本导出为纯文本文件
type TextExporter struct {
	OutputFolder string
}

// NewTextExporter 创建一个新的文本导出器
func NewTextExporter(outputFolder string) *TextExporter {
	return &TextExporter{
		OutputFolder: outputFolder,
	}
}

// ExportText 导出纯文本转写结果
// 内容为UTF-8编码、段落间以空行分隔的文本，末尾不追加结构化标记
func (e *TextExporter) ExportText(text string, filename string) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	baseName := filepath.Base(filename)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	outputFile := filepath.Join(e.OutputFolder, fmt.Sprintf("%s.txt", baseName))

	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("写入文本文件失败: %w", err)
	}

	utils.Info("已导出文本转写: %s", outputFile)
	return outputFile, nil
}
