package controller

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/ccp-p/whisper-transcribe-cli/internal/ui"
	"github.com/ccp-p/whisper-transcribe-cli/internal/watcher"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/asr"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/audio"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/export"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/scanner"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// PipelineController 流水线控制器，协调各个组件工作：
// 扫描/监听媒体文件 → 按需转换 → 识别转写 → 导出结果
type PipelineController struct {
	Config *models.Config

	ProgressManager *ui.ProgressManager

	Scanner      *scanner.MediaScanner
	Converter    *audio.Converter
	Transcriber  *asr.Transcriber
	TextExporter *export.TextExporter
	SRTExporter  *export.SRTExporter
	JSONExporter *export.JSONExporter

	errorHandler *utils.ErrorHandler

	ctx        context.Context
	cancelFunc context.CancelFunc

	// 状态数据
	Stats struct {
		StartTime       time.Time
		TotalFiles      int
		SuccessfulFiles int
		FailedFiles     int
	}

	TempDir   string
	processed map[string]bool
	cleanup   []func()
	mu        sync.Mutex
}

// NewPipelineController 创建流水线控制器
func NewPipelineController(configFile string, logLevel string, logFile string) (*PipelineController, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pc := &PipelineController{
		Config:     models.NewDefaultConfig(),
		ctx:        ctx,
		cancelFunc: cancel,
		processed:  make(map[string]bool),
	}

	if err := utils.InitLogger(logLevel, logFile); err != nil {
		cancel()
		return nil, fmt.Errorf("初始化日志失败: %v", err)
	}

	if configFile != "" {
		if err := pc.Config.LoadFromFile(configFile); err != nil {
			utils.Warn("配置加载失败: %v，将使用默认配置", err)
		}
	}

	pc.ProgressManager = ui.NewProgressManager(pc.Config.ShowProgress)

	tempDir, err := os.MkdirTemp("", "whisper-transcribe")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("创建临时目录失败: %v", err)
	}
	pc.TempDir = tempDir
	pc.addCleanup(func() { os.RemoveAll(tempDir) })

	pc.initComponents()
	pc.setupSignalHandlers()

	return pc, nil
}

// ReloadComponents 配置在构造之后被修改时（如命令行覆盖），重建依赖配置的组件
func (pc *PipelineController) ReloadComponents() {
	pc.initComponents()
	pc.ProgressManager = ui.NewProgressManager(pc.Config.ShowProgress)
}

// 初始化所有组件
func (pc *PipelineController) initComponents() {
	pc.Scanner = scanner.NewMediaScanner()
	pc.Converter = audio.NewConverter(pc.TempDir)

	cache := asr.NewModelCache(pc.Config.ModelCacheDir, asr.NewWhisperLoader(pc.Config.ModelCacheDir))
	pc.Transcriber = asr.NewTranscriber(cache, pc.Config)

	pc.TextExporter = export.NewTextExporter(pc.Config.OutputFolder)
	pc.SRTExporter = export.NewSRTExporter(pc.Config.OutputFolder)
	pc.JSONExporter = export.NewJSONExporter(pc.Config.OutputFolder)

	pc.errorHandler = utils.NewErrorHandler(pc.Config.MaxRetries, pc.Config.RetryDelay)
}

// ProcessMedia 扫描媒体目录并处理所有文件
func (pc *PipelineController) ProcessMedia() ([]models.JobResult, error) {
	pc.Stats.StartTime = time.Now()

	files, err := pc.Scanner.ScanDirectory(pc.Config.MediaFolder)
	if err != nil {
		return nil, utils.NewError("扫描媒体目录失败", err)
	}

	pc.mu.Lock()
	files = pc.Scanner.FilterNewFiles(files, pc.processed)
	pc.mu.Unlock()

	var results []models.JobResult
	for i, file := range files {
		fmt.Printf("\n[%d/%d] 处理文件: %s (%s)\n",
			i+1, len(files), file.Name, utils.FormatFileSize(file.Size))

		result := pc.ProcessFile(file.Path)
		results = append(results, result)
		pc.reportJobResult(&result)
	}

	pc.updateStats(results)
	return results, nil
}

// ProcessFile 通过完整流水线处理单个媒体文件
func (pc *PipelineController) ProcessFile(filePath string) models.JobResult {
	jobID := uuid.New().String()[:8]
	startTime := time.Now()

	result := models.JobResult{
		JobID:       jobID,
		FilePath:    filePath,
		OutputFiles: make(map[string]string),
	}

	pc.mu.Lock()
	pc.processed[filePath] = true
	pc.mu.Unlock()

	audioPath, err := pc.prepareAudio(filePath, jobID)
	if err != nil {
		result.Error = err
		return result
	}

	progressID := "transcribe_" + jobID
	pc.ProgressManager.CreateProgressBar(progressID, 100,
		fmt.Sprintf("转写 %s", filepath.Base(filePath)), "准备中")

	transcript, err := pc.Transcriber.Transcribe(pc.ctx, audioPath, func(percent int, message string) {
		pc.ProgressManager.UpdateProgressBar(progressID, percent, message)
	})
	if err != nil {
		pc.ProgressManager.CompleteProgressBar(progressID, "失败")
		result.Error = err
		return result
	}
	pc.ProgressManager.CompleteProgressBar(progressID, "完成")

	// 任务失败时不写任何输出文件；走到这里装配已经完成
	if err := pc.exportResults(transcript, filePath, &result); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.SegmentCount = transcript.SegmentCount
	result.DurationMs = int64(transcript.Duration * 1000)
	result.ProcessTimeMs = time.Since(startTime).Milliseconds()
	return result
}

// prepareAudio 视频文件先经ffmpeg提取音频，音频文件直接透传
func (pc *PipelineController) prepareAudio(filePath, jobID string) (string, error) {
	isAudio, isVideo := pc.Scanner.IsMedia(filePath)

	if isAudio {
		return filePath, nil
	}

	if !isVideo {
		return "", fmt.Errorf("不支持的文件类型: %s", filepath.Ext(filePath))
	}

	if !pc.Config.ProcessVideo {
		return "", fmt.Errorf("视频处理已禁用，跳过: %s", filepath.Base(filePath))
	}

	outputPath := pc.Converter.OutputPathFor(filePath)
	progressID := "convert_" + jobID
	pc.ProgressManager.CreateProgressBar(progressID, 100,
		fmt.Sprintf("提取 %s", filepath.Base(filePath)), "准备中")

	err := pc.errorHandler.Retry("音频转换", func() error {
		return pc.Converter.Convert(filePath, outputPath, func(percent int, message string) {
			pc.ProgressManager.UpdateProgressBar(progressID, percent, message)
		})
	})
	if err != nil {
		pc.ProgressManager.CompleteProgressBar(progressID, "失败")
		return "", err
	}

	pc.ProgressManager.CompleteProgressBar(progressID, "提取完成")
	return outputPath, nil
}

// exportResults 写出全部配置的输出格式
func (pc *PipelineController) exportResults(transcript *models.TranscriptResult, filePath string, result *models.JobResult) error {
	textPath, err := pc.TextExporter.ExportText(transcript.Document.Text, filePath)
	if err != nil {
		return err
	}
	result.OutputFiles["txt"] = textPath

	if pc.Config.ExportSRT && len(transcript.Document.Subtitle) > 0 {
		srtPath, err := pc.SRTExporter.ExportSRT(transcript.Document.Subtitle, filePath)
		if err != nil {
			return utils.NewError("导出SRT字幕失败", err)
		}
		result.OutputFiles["srt"] = srtPath
	}

	if pc.Config.ExportJSON {
		jsonPath, err := pc.JSONExporter.ExportJSON(transcript, filePath)
		if err != nil {
			return utils.NewError("导出JSON文件失败", err)
		}
		result.OutputFiles["json"] = jsonPath
	}

	return nil
}

// HandleNewMedia 实现watcher.MediaHandler，监听模式下处理新文件
func (pc *PipelineController) HandleNewMedia(filePath string) {
	result := pc.ProcessFile(filePath)
	pc.reportJobResult(&result)

	pc.mu.Lock()
	if result.Success {
		pc.Stats.SuccessfulFiles++
	} else {
		pc.Stats.FailedFiles++
	}
	pc.Stats.TotalFiles++
	pc.mu.Unlock()
}

// StartWatchMode 启动监听模式，阻塞直到收到取消信号
func (pc *PipelineController) StartWatchMode() error {
	os.MkdirAll(pc.Config.MediaFolder, 0755)
	os.MkdirAll(pc.Config.OutputFolder, 0755)

	extensions := append([]string{}, pc.Scanner.AudioExtensions...)
	extensions = append(extensions, pc.Scanner.VideoExtensions...)

	stopMonitor, err := watcher.StartMediaFolderMonitoring(pc.Config.MediaFolder, extensions, pc)
	if err != nil {
		return err
	}
	pc.addCleanup(stopMonitor)

	color.Cyan("监听模式已启动，等待新的媒体文件... (Ctrl+C 退出)")
	<-pc.ctx.Done()
	return nil
}

func (pc *PipelineController) reportJobResult(result *models.JobResult) {
	if result.Success {
		color.Green("处理成功: %s", filepath.Base(result.FilePath))
		for format, path := range result.OutputFiles {
			fmt.Printf("  %s: %s\n", format, path)
		}
		fmt.Printf("片段数: %d | 音频时长: %s | 处理用时: %s\n",
			result.SegmentCount,
			utils.FormatTimeDuration(float64(result.DurationMs)/1000),
			utils.FormatTimeDuration(float64(result.ProcessTimeMs)/1000))
	} else {
		color.Red("处理失败: %s - %v", filepath.Base(result.FilePath), result.Error)
	}
}

func (pc *PipelineController) updateStats(results []models.JobResult) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	for _, result := range results {
		pc.Stats.TotalFiles++
		if result.Success {
			pc.Stats.SuccessfulFiles++
		} else {
			pc.Stats.FailedFiles++
		}
	}
}

// PrintSummary 打印处理统计
func (pc *PipelineController) PrintSummary() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	fmt.Println("\n--------------------")
	fmt.Printf("共处理 %d 个文件：成功 %d，失败 %d\n",
		pc.Stats.TotalFiles, pc.Stats.SuccessfulFiles, pc.Stats.FailedFiles)
	if !pc.Stats.StartTime.IsZero() {
		fmt.Printf("总用时: %s\n", utils.FormatTimeDuration(time.Since(pc.Stats.StartTime).Seconds()))
	}
	pc.errorHandler.PrintErrorStats()
}

func (pc *PipelineController) addCleanup(fn func()) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cleanup = append(pc.cleanup, fn)
}

// setupSignalHandlers 注册信号处理，收到中断时触发清理
func (pc *PipelineController) setupSignalHandlers() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		utils.Info("收到中断信号，正在退出...")
		pc.cancelFunc()
	}()
}

// Close 执行全部清理动作
func (pc *PipelineController) Close() {
	pc.cancelFunc()

	pc.mu.Lock()
	cleanups := make([]func(), len(pc.cleanup))
	copy(cleanups, pc.cleanup)
	pc.cleanup = nil
	pc.mu.Unlock()

	// 后注册的先清理
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
