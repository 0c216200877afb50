package asr

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	_ "embed"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

//go:embed assets/faster_whisper.py
var helperScript []byte

// 辅助脚本在引擎拒绝调优参数时以该退出码结束
const exitUnsupportedOption = 3

// WhisperModel 通过faster-whisper执行识别的模型句柄
// 引擎作为子进程运行，以NDJSON流式返回元数据和片段
type WhisperModel struct {
	modelPath    string
	device       string
	computeType  string
	downloadRoot string
	python       string
}

// NewWhisperLoader 返回faster-whisper模型加载器
// downloadRoot为模型下载/缓存目录
// 加载时校验python环境中faster-whisper可用，引擎缺失是致命错误
func NewWhisperLoader(downloadRoot string) ModelLoader {
	return func(modelPath, device, computeType string) (Model, error) {
		python := os.Getenv("WHISPER_PY")
		if python == "" {
			python = "python3"
		}

		check := exec.Command(python, "-c", "import faster_whisper")
		if err := check.Run(); err != nil {
			return nil, fmt.Errorf("faster-whisper未安装或python环境不可用: %w", err)
		}

		return &WhisperModel{
			modelPath:    modelPath,
			device:       device,
			computeType:  computeType,
			downloadRoot: downloadRoot,
			python:       python,
		}, nil
	}
}

// helperLine 辅助脚本输出的一行NDJSON
type helperLine struct {
	Type     string   `json:"type"` // info或segment
	Language string   `json:"language,omitempty"`
	Duration float64  `json:"duration,omitempty"`
	Start    *float64 `json:"start,omitempty"`
	End      *float64 `json:"end,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// writeHelperScript 把内嵌的辅助脚本写入独立临时文件
// 并发进程各写各的，互不覆盖
func writeHelperScript() (string, error) {
	file, err := os.CreateTemp("", "whisper_helper_*.py")
	if err != nil {
		return "", fmt.Errorf("创建辅助脚本失败: %w", err)
	}

	if _, err := file.Write(helperScript); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("写入辅助脚本失败: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("写入辅助脚本失败: %w", err)
	}

	return file.Name(), nil
}

// Transcribe 实现Model接口
// 返回的流在后台协程中持续填充；引擎拒绝高级参数时返回ErrUnsupportedOption
func (m *WhisperModel) Transcribe(ctx context.Context, audioPath, language string, opts TuningOptions) (*SegmentStream, *RecognitionInfo, error) {
	scriptPath, err := writeHelperScript()
	if err != nil {
		return nil, nil, err
	}

	args := m.buildArgs(scriptPath, audioPath, language, opts)
	cmd := exec.CommandContext(ctx, m.python, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.Remove(scriptPath)
		return nil, nil, fmt.Errorf("创建输出管道失败: %w", err)
	}

	if err := cmd.Start(); err != nil {
		os.Remove(scriptPath)
		return nil, nil, fmt.Errorf("启动识别引擎失败: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// 第一行必须是info元数据；引擎在产出任何片段前校验参数，
	// 参数被拒时进程直接以专用退出码结束
	info, err := m.readInfo(scanner, cmd, &stderr)
	if err != nil {
		os.Remove(scriptPath)
		return nil, nil, err
	}

	stream := NewSegmentStream(32)
	go func() {
		defer os.Remove(scriptPath)

		for scanner.Scan() {
			var line helperLine
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				utils.Debug("忽略无法解析的引擎输出: %s", scanner.Text())
				continue
			}
			if line.Type != "segment" {
				continue
			}
			stream.Send(models.RawSegment{
				Text:  line.Text,
				Start: line.Start,
				End:   line.End,
			})
		}

		waitErr := cmd.Wait()
		if waitErr != nil {
			diag := strings.TrimSpace(stderr.String())
			stream.Close(fmt.Errorf("识别引擎异常退出: %s: %w", diag, waitErr))
			return
		}
		stream.Close(scanner.Err())
	}()

	return stream, info, nil
}

// readInfo 读取并解析流的首行元数据
func (m *WhisperModel) readInfo(scanner *bufio.Scanner, cmd *exec.Cmd, stderr *bytes.Buffer) (*RecognitionInfo, error) {
	if !scanner.Scan() {
		// 没有任何输出就结束了，检查退出码
		waitErr := cmd.Wait()
		if exitErr, ok := waitErr.(*exec.ExitError); ok && exitErr.ExitCode() == exitUnsupportedOption {
			return nil, ErrUnsupportedOption
		}
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = "无输出"
		}
		return nil, fmt.Errorf("识别引擎启动失败: %s", diag)
	}

	var line helperLine
	if err := json.Unmarshal(scanner.Bytes(), &line); err != nil || line.Type != "info" {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("无法解析引擎元数据: %s", scanner.Text())
	}

	return &RecognitionInfo{Language: line.Language, Duration: line.Duration}, nil
}

// buildArgs 把调优参数转换为辅助脚本的命令行参数
func (m *WhisperModel) buildArgs(scriptPath, audioPath, language string, opts TuningOptions) []string {
	args := []string{
		scriptPath,
		"--audio", audioPath,
		"--model", m.modelPath,
		"--device", m.device,
		"--compute-type", m.computeType,
		"--download-root", m.downloadRoot,
		"--beam-size", strconv.Itoa(opts.BeamSize),
		"--temperature", strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
	}

	if language != "" {
		args = append(args, "--language", language)
	}

	if opts.VADFilter {
		args = append(args, "--vad-filter")
	}

	if !opts.Advanced {
		return append(args, "--reduced")
	}

	args = append(args,
		"--best-of", strconv.Itoa(opts.BestOf),
		"--chunk-length", strconv.Itoa(opts.ChunkLength),
		"--compression-ratio-threshold", strconv.FormatFloat(opts.CompressionRatioThreshold, 'f', -1, 64),
		"--log-prob-threshold", strconv.FormatFloat(opts.LogProbThreshold, 'f', -1, 64),
		"--no-speech-threshold", strconv.FormatFloat(opts.NoSpeechThreshold, 'f', -1, 64),
		"--language-detection-threshold", strconv.FormatFloat(opts.LanguageDetectionThreshold, 'f', -1, 64),
	)

	if !opts.ConditionOnPreviousText {
		args = append(args, "--no-condition-on-previous-text")
	}

	if opts.VAD != nil {
		args = append(args,
			"--vad-threshold", strconv.FormatFloat(opts.VAD.Threshold, 'f', -1, 64),
			"--min-silence-duration-ms", strconv.Itoa(opts.VAD.MinSilenceDurationMs),
			"--min-speech-duration-ms", strconv.Itoa(opts.VAD.MinSpeechDurationMs),
			"--max-speech-duration-s", strconv.FormatFloat(opts.VAD.MaxSpeechDurationS, 'f', -1, 64),
		)
	}

	return args
}
