package utils

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerLowercaseLevels(t *testing.T) {
	// 命令行用小写级别名
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	}

	for name, want := range cases {
		assert.NoError(t, InitLogger(name, ""))
		assert.Equal(t, want, Log.GetLevel(), "级别 %s", name)
	}
}

func TestInitLoggerLegacyConstants(t *testing.T) {
	assert.NoError(t, InitLogger(LogLevelVerbose, ""))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	assert.NoError(t, InitLogger(LogLevelQuiet, ""))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
}

func TestInitLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	assert.NoError(t, InitLogger("loud", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestTerminalProgressTogglePreservesLevel(t *testing.T) {
	assert.NoError(t, InitLogger("debug", ""))

	// 进度条接管终端后日志改写入文件，级别不变
	EnableTerminalProgress()
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.NotEqual(t, os.Stdout, Log.Out)

	// 进度条结束后恢复终端输出
	DisableTerminalProgress()
	assert.Equal(t, os.Stdout, Log.Out)
}
