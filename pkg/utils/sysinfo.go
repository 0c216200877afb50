package utils

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// SystemInfo 主机系统信息
type SystemInfo struct {
	OS           string // 操作系统
	CPUCount     int    // 逻辑CPU数量
	RAMTotal     string // 总内存
	RAMAvailable string // 可用内存
	GPUAvailable bool   // 是否检测到可用加速器
	GPUName      string // 加速器名称
	GPUMemory    string // 显存大小
}

var (
	cachedSysInfo *SystemInfo
	sysInfoOnce   sync.Once
)

// DetectSystem 探测主机系统规格，结果缓存，可多次调用
func DetectSystem() *SystemInfo {
	sysInfoOnce.Do(func() {
		cachedSysInfo = detectSystem()
		Info("系统: %s | CPU: %d核 | 内存: %s/%s",
			cachedSysInfo.OS, cachedSysInfo.CPUCount,
			cachedSysInfo.RAMAvailable, cachedSysInfo.RAMTotal)
		if cachedSysInfo.GPUAvailable {
			Info("GPU: %s (%s 显存)", cachedSysInfo.GPUName, cachedSysInfo.GPUMemory)
		} else {
			Info("GPU: 未检测到 (CPU模式)")
		}
	})
	return cachedSysInfo
}

// CheckGPUAvailable 检查是否存在可用于加速推理的GPU
func CheckGPUAvailable() bool {
	return DetectSystem().GPUAvailable
}

func detectSystem() *SystemInfo {
	info := &SystemInfo{
		OS:       runtime.GOOS,
		CPUCount: runtime.NumCPU(),
	}

	total, available := readMemInfo()
	info.RAMTotal = FormatFileSize(total)
	info.RAMAvailable = FormatFileSize(available)

	detectGPU(info)

	return info
}

// readMemInfo 解析/proc/meminfo，返回总内存和可用内存（字节）
// 非Linux平台返回0
func readMemInfo() (total, available int64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		// meminfo中数值单位为kB
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = kb * 1024
		case "MemAvailable:":
			available = kb * 1024
		}
	}
	return total, available
}

// detectGPU 通过sysfs扫描独立显卡及其显存信息
func detectGPU(info *SystemInfo) {
	// NVIDIA驱动直接暴露proc入口
	if _, err := os.Stat("/proc/driver/nvidia"); err == nil {
		info.GPUAvailable = true
		info.GPUName = readNvidiaName()
	}

	cards, err := filepath.Glob("/sys/class/drm/card[0-9]*")
	if err != nil {
		return
	}

	for _, card := range cards {
		// 跳过render节点 (cardN-XXX)
		if strings.Contains(filepath.Base(card), "-") {
			continue
		}

		deviceDir := filepath.Join(card, "device")

		vramBytes := readSysfsInt(filepath.Join(deviceDir, "mem_info_vram_total"))
		if vramBytes == 0 {
			continue // 非独立显卡或无显存信息
		}

		info.GPUAvailable = true
		info.GPUMemory = FormatFileSize(vramBytes)

		if info.GPUName == "" {
			if link, err := os.Readlink(filepath.Join(deviceDir, "driver")); err == nil {
				info.GPUName = filepath.Base(link)
			}
		}
		return
	}
}

func readNvidiaName() string {
	gpus, err := filepath.Glob("/proc/driver/nvidia/gpus/*/information")
	if err != nil || len(gpus) == 0 {
		return "NVIDIA GPU"
	}

	data, err := os.ReadFile(gpus[0])
	if err != nil {
		return "NVIDIA GPU"
	}

	for _, line := range strings.Split(string(data), "\n") {
		if name, ok := strings.CutPrefix(line, "Model:"); ok {
			return strings.TrimSpace(name)
		}
	}
	return "NVIDIA GPU"
}

func readSysfsInt(path string) int64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
