package application

import (
	"math"
	"testing"
)

func almostEqual(got, want float64) bool {
	return math.Abs(got-want) <= 1e-12
}

func TestSweepValuesLinear(t *testing.T) {
	sweep := &SweepConfig{Parameter: "S0", Start: 1, End: 2, Steps: 5}

	values := sweepValues(sweep)
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	if len(values) != len(want) {
		t.Fatalf("len(sweepValues()) = %d, want %d", len(values), len(want))
	}
	for i, v := range values {
		if !almostEqual(v, want[i]) {
			t.Errorf("values[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSweepValuesMinimumTwoPoints(t *testing.T) {
	for _, steps := range []int{-3, 0, 1} {
		sweep := &SweepConfig{Parameter: "K", Start: 90, End: 110, Steps: steps}
		values := sweepValues(sweep)
		if len(values) != 2 {
			t.Fatalf("steps=%d: len(sweepValues()) = %d, want 2", steps, len(values))
		}
		if !almostEqual(values[0], 90) || !almostEqual(values[1], 110) {
			t.Errorf("steps=%d: values = %v, want [90 110]", steps, values)
		}
	}
}

func TestValidateSweep(t *testing.T) {
	if err := ValidateSweep(nil); err != nil {
		t.Errorf("ValidateSweep(nil) = %v, want nil", err)
	}
	for _, parameter := range []string{"S0", "K", "T", "r", "sigma", "num_paths", "num_steps"} {
		if err := ValidateSweep(&SweepConfig{Parameter: parameter}); err != nil {
			t.Errorf("ValidateSweep(%s) = %v, want nil", parameter, err)
		}
	}
	if err := ValidateSweep(&SweepConfig{Parameter: "vega"}); err == nil {
		t.Error("ValidateSweep(vega) = nil, want error")
	}
}

func TestApplySweepValueCoercesCounts(t *testing.T) {
	base := (&ExperimentRequest{}).baseConfig()

	cfg := applySweepValue(base, "num_paths", 1000.7)
	if cfg.NumPaths != 1000 {
		t.Errorf("num_paths = %d, want truncated 1000", cfg.NumPaths)
	}
	cfg = applySweepValue(base, "num_steps", 50.9)
	if cfg.NumSteps != 50 {
		t.Errorf("num_steps = %d, want truncated 50", cfg.NumSteps)
	}
	cfg = applySweepValue(base, "sigma", 0.35)
	if !almostEqual(cfg.Sigma, 0.35) {
		t.Errorf("sigma = %v, want 0.35", cfg.Sigma)
	}
}

func TestExpandRunsAppliesDefaults(t *testing.T) {
	req := &ExperimentRequest{Backends: []string{"scalar"}}

	configs := expandRuns(req)
	if len(configs) != 1 {
		t.Fatalf("len(expandRuns()) = %d, want 1", len(configs))
	}
	cfg := configs[0]
	if cfg.S0 != defaultS0 || cfg.K != defaultK || cfg.T != defaultT {
		t.Errorf("contract defaults = (%v, %v, %v), want (%v, %v, %v)",
			cfg.S0, cfg.K, cfg.T, defaultS0, defaultK, defaultT)
	}
	if cfg.NumPaths != defaultNumPaths || cfg.NumSteps != defaultNumSteps {
		t.Errorf("size defaults = (%d, %d), want (%d, %d)",
			cfg.NumPaths, cfg.NumSteps, defaultNumPaths, defaultNumSteps)
	}
	// 利率、波动率与种子不回退，零是合法取值
	if cfg.R != 0 || cfg.Sigma != 0 || cfg.Seed != 0 {
		t.Errorf("passthrough fields = (%v, %v, %d), want zeros", cfg.R, cfg.Sigma, cfg.Seed)
	}
}

func TestExpandRunsWithSweep(t *testing.T) {
	req := &ExperimentRequest{
		OptionParams:     OptionParams{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2},
		SimulationParams: SimulationParams{NumPaths: 1024, NumSteps: 10, Seed: 7},
		Backends:         []string{"scalar"},
		Sweep:            &SweepConfig{Parameter: "num_paths", Start: 1000, End: 2000, Steps: 3},
	}

	configs := expandRuns(req)
	if len(configs) != 3 {
		t.Fatalf("len(expandRuns()) = %d, want 3", len(configs))
	}
	wantPaths := []int{1000, 1500, 2000}
	for i, cfg := range configs {
		if cfg.NumPaths != wantPaths[i] {
			t.Errorf("configs[%d].NumPaths = %d, want %d", i, cfg.NumPaths, wantPaths[i])
		}
		if cfg.K != 105 || cfg.Seed != 7 {
			t.Errorf("configs[%d] lost base fields: K=%v seed=%d", i, cfg.K, cfg.Seed)
		}
	}
}
