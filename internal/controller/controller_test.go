package controller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/export"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error", "")
	os.Exit(m.Run())
}

func newTestController(t *testing.T) *PipelineController {
	t.Helper()

	pc, err := NewPipelineController("", "error", "")
	assert.NoError(t, err)
	t.Cleanup(pc.Close)

	pc.Config.MediaFolder = t.TempDir()
	pc.Config.OutputFolder = t.TempDir()
	pc.ReloadComponents()
	return pc
}

func TestNewPipelineControllerDefaults(t *testing.T) {
	pc := newTestController(t)

	assert.NotNil(t, pc.Config)
	assert.NotNil(t, pc.Scanner)
	assert.NotNil(t, pc.Transcriber)
	assert.DirExists(t, pc.TempDir)
}

func TestPrepareAudioPassthrough(t *testing.T) {
	pc := newTestController(t)

	audioPath := filepath.Join(pc.Config.MediaFolder, "talk.mp3")
	assert.NoError(t, os.WriteFile(audioPath, []byte("data"), 0644))

	got, err := pc.prepareAudio(audioPath, "job1")
	assert.NoError(t, err)
	assert.Equal(t, audioPath, got)
}

func TestPrepareAudioRejectsUnsupported(t *testing.T) {
	pc := newTestController(t)

	_, err := pc.prepareAudio(filepath.Join(pc.Config.MediaFolder, "notes.txt"), "job1")
	assert.Error(t, err)
}

func TestPrepareAudioVideoDisabled(t *testing.T) {
	pc := newTestController(t)
	pc.Config.ProcessVideo = false

	_, err := pc.prepareAudio(filepath.Join(pc.Config.MediaFolder, "clip.mp4"), "job1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "视频处理已禁用")
}

func TestProcessFileFailureWritesNoOutput(t *testing.T) {
	pc := newTestController(t)

	// 不支持的扩展名在流水线最前端失败，输出目录必须保持干净
	badPath := filepath.Join(pc.Config.MediaFolder, "notes.txt")
	assert.NoError(t, os.WriteFile(badPath, []byte("data"), 0644))

	result := pc.ProcessFile(badPath)
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
	assert.Empty(t, result.OutputFiles)
	assert.NotEmpty(t, result.JobID)

	entries, err := os.ReadDir(pc.Config.OutputFolder)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportResultsSRTFailurePropagates(t *testing.T) {
	pc := newTestController(t)

	// 输出目录位置被一个普通文件占据，SRT写入必然失败
	blocked := filepath.Join(t.TempDir(), "occupied")
	assert.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))
	pc.SRTExporter = export.NewSRTExporter(blocked)

	transcript := &models.TranscriptResult{
		Document: models.TranscriptDocument{
			Text: "你好世界",
			Subtitle: []models.SubtitleEntry{
				{Index: 1, Start: 0, End: 1.5, Text: "你好世界"},
			},
		},
	}

	result := models.JobResult{OutputFiles: make(map[string]string)}
	err := pc.exportResults(transcript, "talk.mp3", &result)

	// 字幕文件是主要交付物，写入失败必须让任务失败而不是降级成功
	assert.Error(t, err)
	assert.NotContains(t, result.OutputFiles, "srt")
}

func TestProcessMediaSkipsProcessedFiles(t *testing.T) {
	pc := newTestController(t)

	audioPath := filepath.Join(pc.Config.MediaFolder, "talk.mp3")
	assert.NoError(t, os.WriteFile(audioPath, []byte("data"), 0644))

	pc.mu.Lock()
	pc.processed[audioPath] = true
	pc.mu.Unlock()

	results, err := pc.ProcessMedia()
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestCloseRemovesTempDir(t *testing.T) {
	pc, err := NewPipelineController("", "error", "")
	assert.NoError(t, err)

	tempDir := pc.TempDir
	assert.DirExists(t, tempDir)

	pc.Close()
	assert.NoDirExists(t, tempDir)
}
