package asr

import (
	"context"
	"errors"
	"sync"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
)

// ProgressCallback 是进度回调函数，用于通知识别过程的进度
// percent在单个任务内单调不减，最终到达100
type ProgressCallback func(percent int, message string)

// ErrUnsupportedOption 表示识别引擎拒绝了高级调优参数
// 编排器捕获该错误后使用降级参数集重试一次
var ErrUnsupportedOption = errors.New("识别引擎不支持的调优参数")

// RecognitionInfo 是识别引擎返回的任务元数据
type RecognitionInfo struct {
	Language string  `json:"language"` // 检测到的语言
	Duration float64 `json:"duration"` // 音频总时长（秒）
}

// VADOptions 语音活动检测参数
type VADOptions struct {
	Threshold            float64 // 语音概率阈值
	MinSilenceDurationMs int     // 切分前的最小静音间隔
	MinSpeechDurationMs  int     // 最小语音时长
	MaxSpeechDurationS   float64 // 单段语音时长上限，约束长输入的内存和延迟
}

// TuningOptions 识别调优参数集
// Advanced为false时表示降级档位，仅保留基础参数
type TuningOptions struct {
	BeamSize                   int
	BestOf                     int
	Temperature                float64
	ChunkLength                int
	VADFilter                  bool
	VAD                        *VADOptions
	ConditionOnPreviousText    bool
	CompressionRatioThreshold  float64
	LogProbThreshold           float64
	NoSpeechThreshold          float64
	LanguageDetectionThreshold float64
	Advanced                   bool
}

// DefaultTuning 返回针对VAD噪声和重复循环调优的完整参数集
// 禁用跨块的上文条件化是抑制重复扩散最关键的一项
func DefaultTuning() TuningOptions {
	return TuningOptions{
		BeamSize:    2,
		BestOf:      1,
		Temperature: 0.0,
		ChunkLength: 15,
		VADFilter:   true,
		VAD: &VADOptions{
			Threshold:            0.4,
			MinSilenceDurationMs: 3000,
			MinSpeechDurationMs:  100,
			MaxSpeechDurationS:   240,
		},
		ConditionOnPreviousText:    false,
		CompressionRatioThreshold:  2.0,
		LogProbThreshold:           -0.5,
		NoSpeechThreshold:          0.6,
		LanguageDetectionThreshold: 0.5,
		Advanced:                   true,
	}
}

// FallbackTuning 返回降级参数集，在引擎拒绝完整参数时使用
func FallbackTuning() TuningOptions {
	return TuningOptions{
		BeamSize:    2,
		Temperature: 0.0,
		VADFilter:   true,
		Advanced:    false,
	}
}

// Model 是已加载的识别模型句柄，构造成本高，由ModelCache共享复用
type Model interface {
	// Transcribe 对音频执行识别，返回惰性片段流和任务元数据
	Transcribe(ctx context.Context, audioPath, language string, opts TuningOptions) (*SegmentStream, *RecognitionInfo, error)
}

// ModelLoader 构造模型句柄
// modelPath为本地模型目录或模型名称（由引擎自行下载）
type ModelLoader func(modelPath, device, computeType string) (Model, error)

// SegmentStream 是识别片段的惰性流
// 生产者推送片段并以Close收尾，消费者遍历Segments后检查Err
type SegmentStream struct {
	ch   chan models.RawSegment
	mu   sync.Mutex
	err  error
	once sync.Once
}

// NewSegmentStream 创建片段流
func NewSegmentStream(buffer int) *SegmentStream {
	return &SegmentStream{
		ch: make(chan models.RawSegment, buffer),
	}
}

// Segments 返回片段通道，流结束后通道关闭
func (s *SegmentStream) Segments() <-chan models.RawSegment {
	return s.ch
}

// Send 推送一个片段（生产者调用）
func (s *SegmentStream) Send(seg models.RawSegment) {
	s.ch <- seg
}

// Close 结束流并记录可能的错误（生产者调用）
func (s *SegmentStream) Close(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.ch)
	})
}

// Err 返回流结束时记录的错误，须在通道关闭后调用
func (s *SegmentStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
