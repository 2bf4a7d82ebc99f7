package application

import "github.com/wyfcoding/lsmbench/internal/pricing/domain"

// 基准场景默认值。请求中留空（零值）的合约与规模字段回退到这组
// 取值，保证临时实验与历史基准结果可比。利率、波动率与种子不回退，
// 零本身是合法取值。
const (
	defaultS0       = 100.0
	defaultK        = 105.0
	defaultT        = 1.0
	defaultNumPaths = 102400
	defaultNumSteps = 100
)

// OptionParams 期权合约参数
type OptionParams struct {
	S0    float64 `json:"S0"`
	K     float64 `json:"K"`
	T     float64 `json:"T"`
	R     float64 `json:"r"`
	Sigma float64 `json:"sigma"`
}

// SimulationParams 蒙特卡洛规模参数
type SimulationParams struct {
	NumPaths int   `json:"num_paths"`
	NumSteps int   `json:"num_steps"`
	Seed     int64 `json:"seed"`
}

// SweepConfig 单参数线性扫描
type SweepConfig struct {
	// Parameter 被扫描的参数：S0、K、T、r、sigma、num_paths、num_steps
	Parameter string `json:"parameter" binding:"required"`
	// Start 扫描起点
	Start float64 `json:"start"`
	// End 扫描终点
	End float64 `json:"end"`
	// Steps 采样点数，小于 2 时按 2 处理
	Steps int `json:"steps"`
}

// ExperimentRequest 一次实验提交：可选扫描展开后对每个 (参数值, 后端)
// 组合执行一次定价
type ExperimentRequest struct {
	OptionParams     OptionParams     `json:"option_params"`
	SimulationParams SimulationParams `json:"simulation_params"`
	Backends         []string         `json:"backends" binding:"required"`
	Sweep            *SweepConfig     `json:"sweep"`
}

// baseConfig 合并默认值后转成引擎配置
func (req *ExperimentRequest) baseConfig() domain.SimulationConfig {
	cfg := domain.SimulationConfig{
		S0:       req.OptionParams.S0,
		K:        req.OptionParams.K,
		T:        req.OptionParams.T,
		R:        req.OptionParams.R,
		Sigma:    req.OptionParams.Sigma,
		NumPaths: req.SimulationParams.NumPaths,
		NumSteps: req.SimulationParams.NumSteps,
		Seed:     req.SimulationParams.Seed,
	}
	if cfg.S0 <= 0 {
		cfg.S0 = defaultS0
	}
	if cfg.K <= 0 {
		cfg.K = defaultK
	}
	if cfg.T <= 0 {
		cfg.T = defaultT
	}
	if cfg.NumPaths <= 0 {
		cfg.NumPaths = defaultNumPaths
	}
	if cfg.NumSteps <= 0 {
		cfg.NumSteps = defaultNumSteps
	}
	return cfg
}
