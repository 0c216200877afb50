package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/whisper-transcribe-cli/internal/controller"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

var (
	mediaDir   = flag.String("input", "", "媒体文件目录")
	outputDir  = flag.String("output", "", "输出目录")
	configFile = flag.String("config", "", "配置文件路径")
	modelName  = flag.String("model", "", "识别模型名称 (如 turbo, large-v3)")
	language   = flag.String("language", "", "指定语言代码，留空自动检测")
	watchMode  = flag.Bool("watch", false, "监听模式，持续处理新文件")
	noSRT      = flag.Bool("no-srt", false, "不生成SRT字幕文件")
	logLevel   = flag.String("log-level", "info", "日志级别 (debug, info, warn, error)")
	logFile    = flag.String("log-file", "", "日志文件路径")
)

func main() {
	// 解析命令行参数
	flag.Parse()

	if _, err := logrus.ParseLevel(*logLevel); err != nil {
		*logLevel = "info"
	}

	// 打印欢迎信息
	printWelcome()

	// 创建控制器（内部完成日志初始化与配置加载）
	ctrl, err := controller.NewPipelineController(*configFile, *logLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	applyFlagOverrides(ctrl)

	// 检查ffmpeg是否可用
	if !checkDependencies() {
		logrus.Fatal("缺少必要的依赖项，无法继续")
	}

	os.MkdirAll(ctrl.Config.MediaFolder, 0755)
	os.MkdirAll(ctrl.Config.OutputFolder, 0755)

	// 监听模式：先处理存量文件，再持续监听
	if *watchMode || ctrl.Config.WatchMode {
		if _, err := ctrl.ProcessMedia(); err != nil {
			logrus.Errorf("处理存量文件失败: %v", err)
		}
		if err := ctrl.StartWatchMode(); err != nil {
			logrus.Fatalf("启动监听模式失败: %v", err)
		}
		ctrl.PrintSummary()
		return
	}

	// 批处理模式
	results, err := ctrl.ProcessMedia()
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	if len(results) == 0 {
		logrus.Info("没有找到媒体文件，程序退出")
		return
	}

	ctrl.PrintSummary()
	fmt.Println("\n所有文件处理完成!")
}

func printWelcome() {
	fmt.Println()
	color.Cyan("================================")
	color.Cyan("   语音转写工具 - Go 实现版本   ")
	color.Cyan("================================")
	fmt.Println()
}

func checkDependencies() bool {
	fmt.Print("检查系统依赖... ")

	if !utils.CheckFFmpeg() {
		color.Red("失败")
		logrus.Error("未检测到FFmpeg，请确保FFmpeg已安装并添加到系统路径")
		return false
	}

	color.Green("通过")

	info := utils.DetectSystem()
	if info.GPUAvailable {
		fmt.Printf("检测到GPU: %s，将使用CUDA加速\n", info.GPUName)
	} else {
		fmt.Println("未检测到GPU，将使用CPU模式")
	}
	return true
}

// applyFlagOverrides 命令行参数优先于配置文件
func applyFlagOverrides(ctrl *controller.PipelineController) {
	if *mediaDir != "" {
		ctrl.Config.MediaFolder = *mediaDir
	}
	if *outputDir != "" {
		ctrl.Config.OutputFolder = *outputDir
	}
	if *modelName != "" {
		ctrl.Config.ModelName = *modelName
	}
	if *language != "" {
		ctrl.Config.Language = *language
	}
	if *noSRT {
		ctrl.Config.ExportSRT = false
	}

	if err := ctrl.Config.Validate(); err != nil {
		logrus.Fatalf("配置无效: %v", err)
	}

	ctrl.ReloadComponents()
}
