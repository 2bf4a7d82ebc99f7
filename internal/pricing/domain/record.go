package domain

import "time"

// RunRecord 一次 (案例, 后端) 定价运行的完整留痕。
// 应用层在每次定价调用结束后构造，追加进任务结果，
// 可选落库或写入基准结果文件。
type RunRecord struct {
	CaseName     string           `json:"case_name"`
	Backend      string           `json:"backend"`
	TimestampUTC time.Time        `json:"timestamp_utc"`
	Inputs       SimulationConfig `json:"inputs"`
	Outputs      RunOutputs       `json:"outputs"`
	SystemInfo   SystemInfo       `json:"system_info"`
}

// RunOutputs 定价输出：价格与墙钟耗时（毫秒）
type RunOutputs struct {
	Price  float64 `json:"price"`
	TimeMS float64 `json:"time_ms"`
}

// SystemInfo 运行环境信息，保证跨机器的结果可追溯可比对
type SystemInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit"`
}
