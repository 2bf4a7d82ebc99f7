package application

import (
	"runtime"
	"runtime/debug"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
)

// CollectSystemInfo 采集运行环境信息附到每条运行记录上。
// git 提交号取自二进制内嵌的构建信息，非 VCS 构建时为 N/A。
func CollectSystemInfo() domain.SystemInfo {
	info := domain.SystemInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUCount:  runtime.NumCPU(),
		GitCommit: "N/A",
	}

	if build, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range build.Settings {
			if setting.Key == "vcs.revision" {
				info.GitCommit = setting.Value
				break
			}
		}
	}
	return info
}
