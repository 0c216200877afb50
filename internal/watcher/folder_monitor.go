package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// MediaHandler 处理监听到的新媒体文件
type MediaHandler interface {
	HandleNewMedia(filePath string)
}

// FolderMonitor 监控文件夹中新出现的媒体文件
// 文件在ffmpeg或浏览器写入过程中会触发多次事件，
// 用去抖定时器等待文件稳定后再交给处理器
type FolderMonitor struct {
	watcher        *fsnotify.Watcher
	folderPath     string
	fileExtensions []string
	handler        MediaHandler
	debounceTime   time.Duration
	pendingFiles   map[string]*time.Timer
	mutex          sync.Mutex
	stopChan       chan struct{}
	stopOnce       sync.Once
}

// NewFolderMonitor 创建新的文件夹监控器
func NewFolderMonitor(folderPath string, extensions []string, handler MediaHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &FolderMonitor{
		watcher:        watcher,
		folderPath:     folderPath,
		fileExtensions: extensions,
		handler:        handler,
		debounceTime:   debounceTime,
		pendingFiles:   make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start 开始监控文件夹
func (m *FolderMonitor) Start() error {
	if err := os.MkdirAll(m.folderPath, 0755); err != nil {
		return fmt.Errorf("创建文件夹失败: %w", err)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("添加监控文件夹失败: %w", err)
	}

	go m.watchLoop()

	utils.Info("开始监控文件夹: %s", m.folderPath)
	return nil
}

// Stop 停止监控
func (m *FolderMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.watcher.Close()
		utils.Info("停止监控文件夹: %s", m.folderPath)

		m.mutex.Lock()
		defer m.mutex.Unlock()
		for _, timer := range m.pendingFiles {
			timer.Stop()
		}
	})
}

// watchLoop 监控循环
func (m *FolderMonitor) watchLoop() {
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("监控文件夹时出错: %v", err)
		}
	}
}

// 处理文件事件
func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	// 只处理创建和写入事件
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if !m.matchExtension(event.Name) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// 重置去抖定时器
	if timer, exists := m.pendingFiles[event.Name]; exists {
		timer.Stop()
	}

	path := event.Name
	m.pendingFiles[path] = time.AfterFunc(m.debounceTime, func() {
		m.mutex.Lock()
		delete(m.pendingFiles, path)
		m.mutex.Unlock()

		utils.Info("检测到新媒体文件: %s", filepath.Base(path))
		m.handler.HandleNewMedia(path)
	})
}

func (m *FolderMonitor) matchExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range m.fileExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// StartMediaFolderMonitoring 启动媒体目录监控，返回停止函数
func StartMediaFolderMonitoring(folderPath string, extensions []string, handler MediaHandler) (func(), error) {
	monitor, err := NewFolderMonitor(folderPath, extensions, handler, 2*time.Second)
	if err != nil {
		return nil, err
	}

	if err := monitor.Start(); err != nil {
		return nil, err
	}

	return monitor.Stop, nil
}
