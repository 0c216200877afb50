package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorHandler(t *testing.T) {
	handler := NewErrorHandler(3, 0.1)
	assert.Equal(t, 3, handler.MaxRetries)
	assert.Equal(t, 0.1, handler.RetryDelay)
	assert.NotNil(t, handler.ErrorStats)
}

func TestRetry(t *testing.T) {
	// 初始化日志
	InitLogger(LogLevelNormal, "")

	handler := NewErrorHandler(3, 0.01) // 使用很小的延迟以加速测试

	// 测试成功的情况
	callCount := 0
	err := handler.Retry("test_success", func() error {
		callCount++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount) // 应该只调用一次就成功

	// 测试失败后重试直到成功的情况
	callCount = 0
	err = handler.Retry("test_retry_success", func() error {
		callCount++
		if callCount < 2 {
			return errors.New("预期错误")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, callCount) // 应该在第二次调用时成功

	// 测试总是失败的情况
	callCount = 0
	testErr := errors.New("总是失败")
	err = handler.Retry("test_always_fail", func() error {
		callCount++
		return testErr
	})

	assert.Error(t, err)
	assert.Equal(t, handler.MaxRetries, callCount) // 应该尝试了最大次数
	assert.ErrorIs(t, err, testErr)                // 原始错误保留在error chain中

	// 验证错误统计
	stats := handler.GetErrorStats()
	assert.Equal(t, 2, len(stats))
	assert.Equal(t, 1, stats["test_retry_success"]["预期错误"])
	assert.Equal(t, 3, stats["test_always_fail"]["总是失败"])
}

func TestTranscribeErrorUnwrap(t *testing.T) {
	cause := errors.New("底层错误")
	err := NewError("上层消息", cause)

	assert.Contains(t, err.Error(), "上层消息")
	assert.Contains(t, err.Error(), "底层错误")
	assert.ErrorIs(t, err, cause)
}

func TestFormatTimeDuration(t *testing.T) {
	assert.Equal(t, "5s", FormatTimeDuration(5))
	assert.Equal(t, "1m 30s", FormatTimeDuration(90))
	assert.Equal(t, "1h 1m 1s", FormatTimeDuration(3661))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512.00 B", FormatFileSize(512))
	assert.Equal(t, "1.00 KB", FormatFileSize(1024))
	assert.Equal(t, "2.50 MB", FormatFileSize(int64(2.5*1024*1024)))
}
