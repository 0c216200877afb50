package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger(utils.LogLevelQuiet, "")
	os.Exit(m.Run())
}

// recordingHandler 记录收到的文件路径
type recordingHandler struct {
	mu    sync.Mutex
	files []string
	seen  chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{seen: make(chan string, 8)}
}

func (h *recordingHandler) HandleNewMedia(filePath string) {
	h.mu.Lock()
	h.files = append(h.files, filePath)
	h.mu.Unlock()
	h.seen <- filePath
}

func TestFolderMonitorDetectsNewMedia(t *testing.T) {
	tempDir := t.TempDir()
	handler := newRecordingHandler()

	monitor, err := NewFolderMonitor(tempDir, []string{".mp3"}, handler, 50*time.Millisecond)
	assert.NoError(t, err)
	assert.NoError(t, monitor.Start())
	defer monitor.Stop()

	// 写入一个匹配扩展名的文件
	mediaPath := filepath.Join(tempDir, "new_audio.mp3")
	assert.NoError(t, os.WriteFile(mediaPath, []byte("data"), 0644))

	select {
	case got := <-handler.seen:
		assert.Equal(t, mediaPath, got)
	case <-time.After(3 * time.Second):
		t.Fatal("超时：未收到新媒体文件通知")
	}
}

func TestFolderMonitorIgnoresOtherExtensions(t *testing.T) {
	tempDir := t.TempDir()
	handler := newRecordingHandler()

	monitor, err := NewFolderMonitor(tempDir, []string{".mp3"}, handler, 50*time.Millisecond)
	assert.NoError(t, err)
	assert.NoError(t, monitor.Start())
	defer monitor.Stop()

	assert.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("data"), 0644))

	select {
	case got := <-handler.seen:
		t.Fatalf("不应收到非媒体文件通知: %s", got)
	case <-time.After(300 * time.Millisecond):
		// 预期：无通知
	}
}

func TestFolderMonitorStopIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	monitor, err := NewFolderMonitor(tempDir, []string{".mp3"}, newRecordingHandler(), 50*time.Millisecond)
	assert.NoError(t, err)
	assert.NoError(t, monitor.Start())

	monitor.Stop()
	monitor.Stop() // 重复停止不应panic
}
