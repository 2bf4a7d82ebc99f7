package domain

import "fmt"

// SimulationConfig 一次 LSM 定价调用的完整输入。
// 同一份配置在任意后端上运行的是同一套算法，仅执行方式不同。
type SimulationConfig struct {
	// S0 标的现价
	S0 float64 `json:"S0"`
	// K 执行价格
	K float64 `json:"K"`
	// T 到期时间（年）
	T float64 `json:"T"`
	// R 无风险利率
	R float64 `json:"r"`
	// Sigma 波动率
	Sigma float64 `json:"sigma"`
	// NumPaths 蒙特卡洛路径数
	NumPaths int `json:"num_paths"`
	// NumSteps 时间离散步数
	NumSteps int `json:"num_steps"`
	// Seed 随机数种子，相同配置与执行策略下结果完全可复现
	Seed int64 `json:"seed"`
}

// Validate 在任何计算开始前校验配置，失败时本次调用不产生任何执行
func (c SimulationConfig) Validate() error {
	if c.NumPaths < 1 {
		return fmt.Errorf("%w: num_paths must be >= 1, got %d", ErrInvalidConfig, c.NumPaths)
	}
	if c.NumSteps < 1 {
		return fmt.Errorf("%w: num_steps must be >= 1, got %d", ErrInvalidConfig, c.NumSteps)
	}
	if c.T <= 0 {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidConfig, c.T)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrInvalidConfig, c.Sigma)
	}
	return nil
}

// validateLanes 向量化后端要求路径数为批宽的整数倍
func (c SimulationConfig) validateLanes(lanes int) error {
	if c.NumPaths%lanes != 0 {
		return fmt.Errorf("%w: num_paths %d is not a multiple of lane width %d",
			ErrInvalidConfig, c.NumPaths, lanes)
	}
	return nil
}

// dt 单个时间步的长度（年）
func (c SimulationConfig) dt() float64 {
	return c.T / float64(c.NumSteps)
}
