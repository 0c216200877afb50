package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config 表示应用程序的配置
type Config struct {
	MediaFolder    string  `json:"media_folder"`     // 媒体文件所在文件夹
	OutputFolder   string  `json:"output_folder"`    // 输出结果文件夹
	TempDir        string  `json:"temp_dir"`         // 临时目录
	ModelName      string  `json:"model_name"`       // 识别模型名称
	ModelCacheDir  string  `json:"model_cache_dir"`  // 本地模型缓存目录
	Language       string  `json:"language"`         // 目标语言代码，空字符串表示自动检测
	MaxRetries     int     `json:"max_retries"`      // 转换失败最大重试次数
	RetryDelay     float64 `json:"retry_delay"`      // 重试延迟（秒）
	MergeMinLength int     `json:"merge_min_length"` // 短段落合并的最小长度
	ExportSRT      bool    `json:"export_srt"`       // 是否导出SRT字幕文件
	ExportJSON     bool    `json:"export_json"`      // 是否导出JSON文件
	ShowProgress   bool    `json:"show_progress"`    // 显示进度条
	ProcessVideo   bool    `json:"process_video"`    // 处理视频文件（先提取音频）
	WatchMode      bool    `json:"watch_mode"`       // 是否启用监听模式
	LogLevel       string  `json:"log_level"`        // 日志级别
	LogFile        string  `json:"log_file"`         // 日志文件
}

// ConfigValidationError 表示配置验证错误
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	msg := fmt.Sprintf("配置验证错误: %s - %s", e.Field, e.Message)
	logrus.Error(msg)
	return msg
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "whisper")
	}

	return &Config{
		MediaFolder:    "./media",
		OutputFolder:   "./output",
		TempDir:        "",
		ModelName:      "turbo",
		ModelCacheDir:  cacheDir,
		Language:       "",
		MaxRetries:     3,
		RetryDelay:     1.0,
		MergeMinLength: 15,
		ExportSRT:      true,
		ExportJSON:     false,
		ShowProgress:   true,
		ProcessVideo:   true,
		WatchMode:      false,
		LogLevel:       "INFO",
		LogFile:        "",
	}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if err := ensureDirExists(c.MediaFolder); err != nil {
		return &ConfigValidationError{"MediaFolder", err.Error()}
	}

	if err := ensureDirExists(c.OutputFolder); err != nil {
		return &ConfigValidationError{"OutputFolder", err.Error()}
	}

	if c.ModelName == "" {
		return &ConfigValidationError{"ModelName", "模型名称不能为空"}
	}

	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return &ConfigValidationError{"MaxRetries", "必须在1-10之间"}
	}

	if c.RetryDelay < 0.1 || c.RetryDelay > 10.0 {
		return &ConfigValidationError{"RetryDelay", "必须在0.1-10.0秒之间"}
	}

	if c.MergeMinLength < 1 || c.MergeMinLength > 100 {
		return &ConfigValidationError{"MergeMinLength", "必须在1-100之间"}
	}

	return nil
}

// LoadFromFile 从文件加载配置
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("读取配置文件失败: %v", err)
		return err
	}

	err = json.Unmarshal(data, c)
	if err != nil {
		logrus.Errorf("解析配置文件失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// SaveToFile 保存配置到文件
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logrus.Errorf("创建目录失败: %v", err)
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return err
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		logrus.Errorf("写入配置文件失败: %v", err)
		return err
	}

	return nil
}

// Update 批量更新配置
func (c *Config) Update(updates map[string]interface{}) error {
	// 保存当前配置用于回滚
	tempConfig := *c

	// 将更新序列化为JSON再反序列化到结构体中
	updateBytes, err := json.Marshal(updates)
	if err != nil {
		logrus.Errorf("序列化更新数据失败: %v", err)
		return err
	}

	err = json.Unmarshal(updateBytes, c)
	if err != nil {
		*c = tempConfig
		logrus.Errorf("应用配置更新失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		*c = tempConfig
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// Reset 重置为默认配置
func (c *Config) Reset() {
	defaultConfig := NewDefaultConfig()
	*c = *defaultConfig
}

// 确保目录存在，如果不存在则创建
func ensureDirExists(path string) error {
	if path == "" {
		return nil // 空路径视为可选
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}

	return nil
}
