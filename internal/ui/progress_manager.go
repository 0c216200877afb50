package ui

import (
	"sync"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// ProgressManager 管理多个进度条
type ProgressManager struct {
	progressBars map[string]*ProgressBar
	mutex        sync.Mutex
	enabled      bool
}

// NewProgressManager 创建新的进度管理器
func NewProgressManager(enabled bool) *ProgressManager {
	return &ProgressManager{
		progressBars: make(map[string]*ProgressBar),
		enabled:      enabled,
	}
}

// CreateProgressBar 创建并注册一个新的进度条
func (pm *ProgressManager) CreateProgressBar(id string, total int, prefix string, suffix string) *ProgressBar {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	// 如果已经存在同名进度条，先完成它
	if bar, exists := pm.progressBars[id]; exists {
		bar.Complete("已被替换")
	}

	if !pm.enabled {
		return nil
	}

	// 第一个进度条出现时终端交给进度条，日志转入文件
	if len(pm.progressBars) == 0 {
		utils.EnableTerminalProgress()
	}

	bar := NewProgressBar(total, prefix, suffix)
	pm.progressBars[id] = bar
	return bar
}

// UpdateProgressBar 更新进度条
func (pm *ProgressManager) UpdateProgressBar(id string, current int, suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bar, exists := pm.progressBars[id]
	pm.mutex.Unlock()

	if exists {
		bar.Update(current, suffix)
	}
}

// CompleteProgressBar 完成进度条
func (pm *ProgressManager) CompleteProgressBar(id string, suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bar, exists := pm.progressBars[id]
	pm.mutex.Unlock()

	if exists {
		bar.Complete(suffix)
		pm.RemoveProgressBar(id)
	}
}

// RemoveProgressBar 移除进度条
func (pm *ProgressManager) RemoveProgressBar(id string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	delete(pm.progressBars, id)

	// 最后一个进度条结束后日志恢复到终端
	if len(pm.progressBars) == 0 {
		utils.DisableTerminalProgress()
	}
}

// CloseAll 完成所有进度条
func (pm *ProgressManager) CloseAll(suffix string) {
	if !pm.enabled {
		return
	}

	pm.mutex.Lock()
	bars := make([]*ProgressBar, 0, len(pm.progressBars))
	for _, bar := range pm.progressBars {
		bars = append(bars, bar)
	}
	pm.progressBars = make(map[string]*ProgressBar)
	pm.mutex.Unlock()

	for _, bar := range bars {
		bar.Complete(suffix)
	}

	if len(bars) > 0 {
		utils.DisableTerminalProgress()
	}
}
