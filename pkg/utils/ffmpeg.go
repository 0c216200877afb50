package utils

import "os/exec"

// CheckFFmpeg 检查ffmpeg是否已安装并在PATH中
func CheckFFmpeg() bool {
	cmd := exec.Command("ffmpeg", "-version")
	err := cmd.Run()
	return err == nil
}

// CheckFFprobe 检查ffprobe是否已安装并在PATH中
func CheckFFprobe() bool {
	cmd := exec.Command("ffprobe", "-version")
	err := cmd.Run()
	return err == nil
}
