package application

import (
	"fmt"

	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
)

// 可扫描的参数名集合，与实验请求的 JSON 字段名保持一致
var sweepParameters = map[string]bool{
	"S0":        true,
	"K":         true,
	"T":         true,
	"r":         true,
	"sigma":     true,
	"num_paths": true,
	"num_steps": true,
}

// ValidateSweep 校验扫描配置；nil 表示无扫描，始终合法
func ValidateSweep(sweep *SweepConfig) error {
	if sweep == nil {
		return nil
	}
	if !sweepParameters[sweep.Parameter] {
		return fmt.Errorf("unsupported sweep parameter: %q", sweep.Parameter)
	}
	return nil
}

// sweepValues 线性采样点：start + i·(end−start)/(steps−1)。
// steps 向下截到 2，保证起点与终点都被覆盖。
func sweepValues(sweep *SweepConfig) []float64 {
	steps := max(sweep.Steps, 2)
	values := make([]float64, steps)
	for i := range values {
		values[i] = sweep.Start + float64(i)*(sweep.End-sweep.Start)/float64(steps-1)
	}
	return values
}

// applySweepValue 把采样值写入配置副本，计数类参数截断取整
func applySweepValue(cfg domain.SimulationConfig, parameter string, value float64) domain.SimulationConfig {
	switch parameter {
	case "S0":
		cfg.S0 = value
	case "K":
		cfg.K = value
	case "T":
		cfg.T = value
	case "r":
		cfg.R = value
	case "sigma":
		cfg.Sigma = value
	case "num_paths":
		cfg.NumPaths = int(value)
	case "num_steps":
		cfg.NumSteps = int(value)
	}
	return cfg
}

// expandRuns 展开一次实验待执行的全部引擎配置。无扫描时只有基准
// 配置一条；有扫描时每个采样值展开一条。
func expandRuns(req *ExperimentRequest) []domain.SimulationConfig {
	base := req.baseConfig()
	if req.Sweep == nil {
		return []domain.SimulationConfig{base}
	}

	values := sweepValues(req.Sweep)
	configs := make([]domain.SimulationConfig, 0, len(values))
	for _, v := range values {
		configs = append(configs, applySweepValue(base, req.Sweep.Parameter, v))
	}
	return configs
}
