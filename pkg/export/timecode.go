package export

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimecode 将秒数格式化为SRT时间码 (HH:MM:SS,mmm)
// 毫秒部分截断而非四舍五入；小时不设上限。
// 调用方保证输入为有限的非负数，识别引擎产出的时间戳天然满足该约束。
func FormatTimecode(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int((seconds - float64(total)) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimecode 解析SRT时间码，返回秒数
func ParseTimecode(code string) (float64, error) {
	main, msPart, ok := strings.Cut(code, ",")
	if !ok {
		return 0, fmt.Errorf("无效的时间码: %s", code)
	}

	parts := strings.Split(main, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("无效的时间码: %s", code)
	}

	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	secs, err3 := strconv.Atoi(parts[2])
	millis, err4 := strconv.Atoi(msPart)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, fmt.Errorf("无效的时间码: %s", code)
	}

	return float64(hours*3600+minutes*60+secs) + float64(millis)/1000, nil
}
