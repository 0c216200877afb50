package export

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/models"
	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger(utils.LogLevelQuiet, "")
	os.Exit(m.Run())
}

func TestGenerateSRTContent(t *testing.T) {
	entries := []models.SubtitleEntry{
		{Index: 1, Start: 0, End: 2.5, Text: "第一句话"},
		{Index: 2, Start: 2.5, End: 5, Text: "第二句话"},
	}

	exporter := NewSRTExporter(t.TempDir())
	content := exporter.GenerateSRTContent(entries)

	// 固定的块格式：序号、时间范围、文本、空行
	expected := strings.Join([]string{
		"1",
		"00:00:00,000 --> 00:00:02,500",
		"第一句话",
		"",
		"2",
		"00:00:02,500 --> 00:00:05,000",
		"第二句话",
		"",
	}, "\n")

	assert.Equal(t, expected, content)
}

func TestExportSRT(t *testing.T) {
	tempDir := t.TempDir()
	exporter := NewSRTExporter(tempDir)

	entries := []models.SubtitleEntry{
		{Index: 1, Start: 0, End: 1.5, Text: "hello world"},
	}

	path, err := exporter.ExportSRT(entries, "/some/dir/lecture01.mp3")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "lecture01.srt"))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "00:00:00,000 --> 00:00:01,500")
	assert.Contains(t, string(data), "hello world")
}
