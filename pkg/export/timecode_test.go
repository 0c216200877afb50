package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimecode(t *testing.T) {
	assert.Equal(t, "00:00:00,000", FormatTimecode(0))
	assert.Equal(t, "01:01:01,500", FormatTimecode(3661.5))
	assert.Equal(t, "00:00:05,000", FormatTimecode(5))
	assert.Equal(t, "00:01:00,000", FormatTimecode(60))

	// 毫秒截断而非四舍五入
	assert.Equal(t, "00:00:01,999", FormatTimecode(1.9999))

	// 小时不在24处回绕
	assert.Equal(t, "25:00:00,000", FormatTimecode(25*3600))
}

func TestFormatTimecodeMonotonic(t *testing.T) {
	// 对递增的输入，输出按字典序非递减
	inputs := []float64{0, 0.05, 0.1, 1, 59.999, 60, 61.5, 3599.9, 3600, 3661.5, 86400}
	prev := ""
	for _, sec := range inputs {
		code := FormatTimecode(sec)
		assert.GreaterOrEqual(t, code, prev, "时间码应随秒数非递减: %f", sec)
		prev = code
	}
}

func TestParseTimecodeRoundTrip(t *testing.T) {
	for _, sec := range []float64{0, 1.5, 61.25, 3661.5, 7322.999} {
		code := FormatTimecode(sec)
		parsed, err := ParseTimecode(code)
		assert.NoError(t, err)
		assert.InDelta(t, sec, parsed, 0.001)
	}
}

func TestParseTimecodeInvalid(t *testing.T) {
	for _, code := range []string{"", "00:00:00", "abc", "00:00,000", "aa:bb:cc,ddd"} {
		_, err := ParseTimecode(code)
		assert.Error(t, err, "应拒绝无效时间码: %q", code)
	}
}
