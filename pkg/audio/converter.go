package audio

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// ProgressCallback 是转换进度回调函数类型
// 底层工具不提供中间进度，只保证开始时0、完成时100
type ProgressCallback func(percent int, message string)

// Converter 音频转换器：调用外部ffmpeg做容器到音频的提取
type Converter struct {
	OutputFolder string
}

// NewConverter 创建音频转换器
func NewConverter(outputFolder string) *Converter {
	os.MkdirAll(outputFolder, 0755)
	return &Converter{
		OutputFolder: outputFolder,
	}
}

// OutputPathFor 返回输入文件对应的转换输出路径
func (c *Converter) OutputPathFor(inputPath string) string {
	baseName := filepath.Base(inputPath)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	return filepath.Join(c.OutputFolder, baseName+".mp3")
}

// Convert 将视频/容器文件转换为适合识别的单声道16kHz MP3
// ffmpeg缺失或非零退出为致命错误，错误信息携带工具的诊断输出
func (c *Converter) Convert(inputPath, outputPath string, callback ProgressCallback) error {
	if !utils.CheckFFmpeg() {
		return fmt.Errorf("未检测到FFmpeg，无法转换文件")
	}

	if callback != nil {
		callback(0, "准备转换")
	}

	utils.Info("转换: %s → %s", inputPath, outputPath)

	cmd := exec.Command("ffmpeg", buildConvertArgs(inputPath, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		return fmt.Errorf("FFmpeg转换失败: %s: %w", diag, err)
	}

	if callback != nil {
		callback(100, "转换完成")
	}

	utils.Info("转换完成: %s", outputPath)
	return nil
}

// buildConvertArgs 构造ffmpeg参数：去视频流、libmp3lame、16kHz单声道
func buildConvertArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	}
}

// GetAudioDuration 通过ffprobe获取音频总时长（秒）
func GetAudioDuration(audioPath string) (float64, error) {
	if !utils.CheckFFprobe() {
		return 0, fmt.Errorf("未检测到ffprobe，无法获取音频时长")
	}

	cmd := exec.Command(
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("获取音频时长失败: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("解析音频时长失败: %w", err)
	}

	return duration, nil
}
