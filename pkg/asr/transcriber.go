package asr

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/audio"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// Transcriber 转写编排器：解析设备与精度、取用缓存模型、
// 以固定调优参数调用识别引擎并驱动装配器
type Transcriber struct {
	Cache  *ModelCache
	Config *models.Config

	// 引擎未报告时长时通过ffprobe兜底
	probeDuration func(string) (float64, error)
}

// NewTranscriber 创建编排器
func NewTranscriber(cache *ModelCache, config *models.Config) *Transcriber {
	return &Transcriber{
		Cache:         cache,
		Config:        config,
		probeDuration: audio.GetAudioDuration,
	}
}

// ResolveDevice 根据加速器可用性选择设备与计算精度
func ResolveDevice() (device, computeType string) {
	if utils.CheckGPUAvailable() {
		return "cuda", "float16"
	}
	return "cpu", "int8"
}

// Transcribe 对单个音频文件执行完整的转写流程
// 进度通过callback按既定里程碑报告：0初始化、10模型加载、30识别开始、
// 50-95按时间位置推进、95收尾、100完成，百分比单调不减
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, callback ProgressCallback) (*models.TranscriptResult, error) {
	reporter := NewProgressReporter(callback, 64)
	defer reporter.Close()

	reporter.Report(0, "正在初始化...")

	device, computeType := ResolveDevice()
	utils.DetectSystem()

	modelName := t.Config.ModelName
	reporter.Report(10, fmt.Sprintf("加载 %s 模型...", modelName))

	model, err := t.Cache.Get(modelName, device, computeType)
	if err != nil {
		return nil, utils.NewError("加载识别模型失败", err)
	}

	reporter.Report(30, "开始识别（过滤VAD噪声）...")
	utils.Info("转写: %s", audioPath)
	utils.Info("语言: %s", languageLabel(t.Config.Language))

	stream, info, err := model.Transcribe(ctx, audioPath, t.Config.Language, DefaultTuning())
	if errors.Is(err, ErrUnsupportedOption) {
		// 可恢复的降级：引擎版本不支持完整参数集时重试一次
		utils.Warn("引擎拒绝高级调优参数，使用降级参数重试...")
		stream, info, err = model.Transcribe(ctx, audioPath, t.Config.Language, FallbackTuning())
	}
	if err != nil {
		return nil, utils.NewError("识别失败", err)
	}

	reporter.Report(50, fmt.Sprintf("检测到语言: %s", info.Language))
	utils.Info("检测到语言: %s", info.Language)

	totalDuration := info.Duration
	if totalDuration <= 0 && t.probeDuration != nil {
		// 没有时长就无法推进50-95阶段，向ffprobe要一个
		if probed, probeErr := t.probeDuration(audioPath); probeErr == nil {
			totalDuration = probed
		} else {
			utils.Debug("探测音频时长失败: %v", probeErr)
		}
	}

	assembler := NewAssembler(t.Config.MergeMinLength, reporter)
	doc, count, err := assembler.Assemble(stream, totalDuration)
	if err != nil {
		return nil, utils.NewError("装配转写结果失败", err)
	}

	reporter.Report(100, "转写完成")

	utils.Info("转写完成: %d 个片段，总时长 %s", count, utils.FormatTimeDuration(totalDuration))

	return &models.TranscriptResult{
		Document:     *doc,
		Language:     info.Language,
		Duration:     totalDuration,
		Device:       device,
		ComputeType:  computeType,
		SegmentCount: count,
	}, nil
}

func languageLabel(language string) string {
	if language == "" {
		return "自动检测"
	}
	return language
}
