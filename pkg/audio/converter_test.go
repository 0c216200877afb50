package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger(utils.LogLevelQuiet, "")
	os.Exit(m.Run())
}

func TestOutputPathFor(t *testing.T) {
	converter := NewConverter(filepath.Join(t.TempDir(), "out"))

	path := converter.OutputPathFor("/media/lecture01.mp4")
	assert.Equal(t, "lecture01.mp3", filepath.Base(path))
	assert.Equal(t, converter.OutputFolder, filepath.Dir(path))

	// 已经是音频的文件同样映射到mp3
	path = converter.OutputPathFor("/media/talk.webm")
	assert.Equal(t, "talk.mp3", filepath.Base(path))
}

func TestBuildConvertArgs(t *testing.T) {
	args := buildConvertArgs("in.mp4", "out.mp3")

	// 关键参数：去视频流、16kHz单声道、覆盖输出
	assert.Contains(t, args, "-vn")
	assert.Contains(t, args, "libmp3lame")
	assert.Contains(t, args, "16000")
	assert.Contains(t, args, "-y")
	assert.Equal(t, "out.mp3", args[len(args)-1])
}
