package asr

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteHelperScriptUniquePaths(t *testing.T) {
	// 每次调用拿到独立文件，并发转写互不覆盖
	first, err := writeHelperScript()
	assert.NoError(t, err)
	defer os.Remove(first)

	second, err := writeHelperScript()
	assert.NoError(t, err)
	defer os.Remove(second)

	assert.NotEqual(t, first, second)

	content, err := os.ReadFile(first)
	assert.NoError(t, err)
	assert.Equal(t, helperScript, content)
}

func TestBuildArgsFullProfile(t *testing.T) {
	model := &WhisperModel{
		modelPath:    "turbo",
		device:       "cuda",
		computeType:  "float16",
		downloadRoot: "/cache/whisper",
		python:       "python3",
	}

	args := model.buildArgs("/tmp/helper.py", "/media/a.mp3", "zh", DefaultTuning())

	assert.Contains(t, args, "--audio")
	assert.Contains(t, args, "/media/a.mp3")
	assert.Contains(t, args, "--language")
	assert.Contains(t, args, "zh")
	assert.Contains(t, args, "--vad-filter")
	assert.Contains(t, args, "--no-condition-on-previous-text")
	assert.Contains(t, args, "--vad-threshold")
	assert.Contains(t, args, "--max-speech-duration-s")
	assert.NotContains(t, args, "--reduced")
}

func TestBuildArgsReducedProfile(t *testing.T) {
	model := &WhisperModel{
		modelPath:   "turbo",
		device:      "cpu",
		computeType: "int8",
		python:      "python3",
	}

	args := model.buildArgs("/tmp/helper.py", "/media/a.mp3", "", FallbackTuning())

	assert.Contains(t, args, "--reduced")
	assert.Contains(t, args, "--vad-filter")
	// 降级档位不传递高级参数，语言为空时交给引擎自动检测
	assert.NotContains(t, args, "--language")
	assert.NotContains(t, args, "--vad-threshold")
	assert.NotContains(t, args, "--no-condition-on-previous-text")
}
