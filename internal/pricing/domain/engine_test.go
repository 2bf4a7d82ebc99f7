package domain

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// 基准场景：与二叉树基准 8.7408 对照的标准美式看跌案例
var benchmarkScenario = SimulationConfig{
	S0: 100, K: 105, T: 1.0, R: 0.05, Sigma: 0.2,
	NumPaths: 102400, NumSteps: 100, Seed: 42,
}

func closeTo(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 64, NumSteps: 10, Seed: 1}

	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"zero paths", func(c *SimulationConfig) { c.NumPaths = 0 }},
		{"negative paths", func(c *SimulationConfig) { c.NumPaths = -5 }},
		{"zero steps", func(c *SimulationConfig) { c.NumSteps = 0 }},
		{"zero maturity", func(c *SimulationConfig) { c.T = 0 }},
		{"negative maturity", func(c *SimulationConfig) { c.T = -1 }},
		{"negative volatility", func(c *SimulationConfig) { c.Sigma = -0.1 }},
	}

	engine := NewEngine(1)
	defer engine.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if _, err := engine.PriceScalar(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("PriceScalar() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLaneMismatchRejected(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 100, NumSteps: 10, Seed: 1}

	engine := NewEngine(2)
	defer engine.Close()

	if _, err := engine.PriceSIMD(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("PriceSIMD() with 100 paths error = %v, want ErrInvalidConfig", err)
	}
	arena := NewArena(ArenaSizeFor(cfg))
	if _, err := engine.PriceUltimate(cfg, arena); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("PriceUltimate() with 100 paths error = %v, want ErrInvalidConfig", err)
	}
	// 标量后端不受批宽约束
	if _, err := engine.PriceScalar(cfg); err != nil {
		t.Errorf("PriceScalar() with 100 paths error: %v", err)
	}
}

func TestPriceBackendDispatch(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 64, NumSteps: 8, Seed: 4}

	engine := NewEngine(2)
	defer engine.Close()

	if _, err := engine.PriceBackend("quantum", cfg, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("PriceBackend(quantum) error = %v, want ErrUnknownBackend", err)
	}
	for _, key := range []string{BackendArena, BackendMP, BackendUltimate} {
		if _, err := engine.PriceBackend(key, cfg, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("PriceBackend(%s) without arena error = %v, want ErrInvalidConfig", key, err)
		}
	}

	arena := NewArena(ArenaSizeFor(cfg))
	for _, backend := range Backends() {
		var a *Arena
		if backend.NeedsArena {
			a = arena
		}
		price, err := engine.PriceBackend(backend.Key, cfg, a)
		if err != nil {
			t.Fatalf("PriceBackend(%s) error: %v", backend.Key, err)
		}
		if price <= 0 {
			t.Errorf("PriceBackend(%s) = %v, want positive price for an ITM put", backend.Key, price)
		}
	}
}

func TestZeroVolatilityDegenerateCase(t *testing.T) {
	// σ=0 且 r=0 时每条路径恒为 S0，价格为确定的 max(0, K−S0)
	engine := NewEngine(4)
	defer engine.Close()

	tests := []struct {
		name  string
		s0, k float64
		want  float64
	}{
		{"itm put", 100, 105, 5},
		{"otm put", 110, 105, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SimulationConfig{S0: tt.s0, K: tt.k, T: 1, R: 0, Sigma: 0, NumPaths: 256, NumSteps: 16, Seed: 9}
			arena := NewArena(ArenaSizeFor(cfg))
			for _, backend := range Backends() {
				var a *Arena
				if backend.NeedsArena {
					a = arena
				}
				price, err := engine.PriceBackend(backend.Key, cfg, a)
				if err != nil {
					t.Fatalf("PriceBackend(%s) error: %v", backend.Key, err)
				}
				if price != tt.want {
					t.Errorf("PriceBackend(%s) = %v, want exactly %v", backend.Key, price, tt.want)
				}
			}
		})
	}
}

func TestSingleStepReducesToEuropean(t *testing.T) {
	// M=1 时不存在提前行权日，LSM 等于贴现终端收益的均值
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 40000, NumSteps: 1, Seed: 3}

	engine := NewEngine(1)
	defer engine.Close()

	price, err := engine.PriceScalar(cfg)
	if err != nil {
		t.Fatalf("PriceScalar() error: %v", err)
	}

	// 用同一条随机流重放终端价格并直接计算贴现均值
	rng := newNormalStream(cfg.Seed)
	drift := (cfg.R - 0.5*cfg.Sigma*cfg.Sigma) * cfg.T
	vol := cfg.Sigma * math.Sqrt(cfg.T)
	discount := math.Exp(-cfg.R * cfg.T)
	total := 0.0
	for i := 0; i < cfg.NumPaths; i++ {
		sT := cfg.S0 * math.Exp(drift+vol*rng.NormFloat64())
		total += math.Max(0, cfg.K-sT) * discount
	}
	want := total / float64(cfg.NumPaths)

	if !closeTo(price, want, 1e-12) {
		t.Errorf("PriceScalar() = %.15f, want replayed mean %.15f", price, want)
	}

	european := EuropeanVanilla(cfg.S0, cfg.K, cfg.T, cfg.R, cfg.Sigma, true)
	if !closeTo(price, european, 0.5) {
		t.Errorf("PriceScalar() = %v, too far from European value %v", price, european)
	}
}

func TestScalarAndArenaBitIdentical(t *testing.T) {
	// 两个后端消费同一条随机流、同一访问顺序，结果必须逐位一致
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 4096, NumSteps: 50, Seed: 11}

	engine := NewEngine(1)
	defer engine.Close()

	scalar, err := engine.PriceScalar(cfg)
	if err != nil {
		t.Fatalf("PriceScalar() error: %v", err)
	}

	arena := NewArena(ArenaSizeFor(cfg))
	first, err := engine.PriceArena(cfg, arena)
	if err != nil {
		t.Fatalf("PriceArena() error: %v", err)
	}
	second, err := engine.PriceArena(cfg, arena)
	if err != nil {
		t.Fatalf("repeated PriceArena() error: %v", err)
	}

	if scalar != first {
		t.Errorf("PriceArena() = %v, PriceScalar() = %v, want identical", first, scalar)
	}
	if first != second {
		t.Errorf("PriceArena() runs differ: %v vs %v, want identical on arena reuse", first, second)
	}
}

func TestParallelBackendsReproducible(t *testing.T) {
	// 固定 worker 数下并行后端完全可复现，跨引擎实例也一致
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 1024, NumSteps: 20, Seed: 21}

	first := NewEngine(4)
	defer first.Close()
	second := NewEngine(4)
	defer second.Close()

	for _, key := range []string{BackendMP, BackendUltimate} {
		t.Run(key, func(t *testing.T) {
			arenaA := NewArena(ArenaSizeFor(cfg))
			arenaB := NewArena(ArenaSizeFor(cfg))

			a1, err := first.PriceBackend(key, cfg, arenaA)
			if err != nil {
				t.Fatalf("PriceBackend(%s) error: %v", key, err)
			}
			a2, err := first.PriceBackend(key, cfg, arenaA)
			if err != nil {
				t.Fatalf("repeated PriceBackend(%s) error: %v", key, err)
			}
			b1, err := second.PriceBackend(key, cfg, arenaB)
			if err != nil {
				t.Fatalf("PriceBackend(%s) on second engine error: %v", key, err)
			}

			if a1 != a2 {
				t.Errorf("same engine runs differ: %v vs %v", a1, a2)
			}
			if a1 != b1 {
				t.Errorf("engines with equal worker count differ: %v vs %v", a1, b1)
			}
		})
	}
}

func TestArenaUsageStableAcrossRuns(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 512, NumSteps: 20, Seed: 13}

	engine := NewEngine(2)
	defer engine.Close()

	arena := NewArena(ArenaSizeFor(cfg))
	if _, err := engine.PriceMP(cfg, arena); err != nil {
		t.Fatalf("PriceMP() error: %v", err)
	}
	used := arena.Used()

	for run := 0; run < 3; run++ {
		if _, err := engine.PriceMP(cfg, arena); err != nil {
			t.Fatalf("PriceMP() run %d error: %v", run, err)
		}
		if arena.Used() != used {
			t.Errorf("Used() after run %d = %d, want stable %d", run, arena.Used(), used)
		}
	}
}

func TestArenaTooSmallFailsCleanly(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 64, NumSteps: 8, Seed: 6}

	engine := NewEngine(1)
	defer engine.Close()

	arena := NewArena(128)
	if _, err := engine.PriceArena(cfg, arena); !errors.Is(err, ErrArenaExhausted) {
		t.Errorf("PriceArena() with tiny arena error = %v, want ErrArenaExhausted", err)
	}
}

func TestSingleExercisePerPath(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 512, NumSteps: 25, Seed: 5}

	for _, tt := range []struct {
		name   string
		layout Layout
	}{
		{"path_major", PathMajor},
		{"time_major", TimeMajor},
	} {
		t.Run(tt.name, func(t *testing.T) {
			lattice, err := newLattice(heapAlloc{}, cfg.NumPaths, cfg.NumSteps, tt.layout)
			if err != nil {
				t.Fatalf("newLattice() error: %v", err)
			}
			rng := newNormalStream(cfg.Seed)
			if tt.layout == TimeMajor {
				simulateTimeMajor(cfg, lattice, rng, make([]float64, cfg.NumPaths), 0, cfg.NumPaths)
			} else {
				simulatePathMajor(cfg, lattice, rng, 0, cfg.NumPaths)
			}

			cashflows, err := newLattice(heapAlloc{}, cfg.NumPaths, cfg.NumSteps, tt.layout)
			if err != nil {
				t.Fatalf("newLattice() error: %v", err)
			}
			scratch, err := newInductionScratch(heapAlloc{}, cfg.NumPaths)
			if err != nil {
				t.Fatalf("newInductionScratch() error: %v", err)
			}
			fillTerminalPayoffs(cfg, lattice, cashflows)
			inductExercises(cfg, lattice, cashflows, scratch)

			exercised := 0
			for i := 0; i < cfg.NumPaths; i++ {
				nonzero := 0
				for j := 1; j <= cfg.NumSteps; j++ {
					if cashflows.At(i, j) > 0 {
						nonzero++
					}
				}
				if nonzero > 1 {
					t.Fatalf("path %d carries %d cashflows, want at most 1", i, nonzero)
				}
				if nonzero == 1 {
					exercised++
				}
			}
			if exercised == 0 {
				t.Error("no path carries a cashflow, induction produced nothing")
			}
		})
	}
}

func TestBackendsAgreeOnBenchmarkScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-size benchmark scenario in short mode")
	}

	cfg := benchmarkScenario
	engine := NewEngine(4)
	defer engine.Close()

	// 白盒重放标量基准，顺带收集逐路径贴现收益以估计蒙特卡洛标准误
	lattice, err := newLattice(heapAlloc{}, cfg.NumPaths, cfg.NumSteps, PathMajor)
	if err != nil {
		t.Fatalf("newLattice() error: %v", err)
	}
	simulatePathMajor(cfg, lattice, newNormalStream(cfg.Seed), 0, cfg.NumPaths)
	cashflows, err := newLattice(heapAlloc{}, cfg.NumPaths, cfg.NumSteps, PathMajor)
	if err != nil {
		t.Fatalf("newLattice() error: %v", err)
	}
	scratch, err := newInductionScratch(heapAlloc{}, cfg.NumPaths)
	if err != nil {
		t.Fatalf("newInductionScratch() error: %v", err)
	}
	fillTerminalPayoffs(cfg, lattice, cashflows)
	inductExercises(cfg, lattice, cashflows, scratch)

	dt := cfg.T / float64(cfg.NumSteps)
	payoffs := make([]float64, cfg.NumPaths)
	for i := range payoffs {
		for j := 1; j <= cfg.NumSteps; j++ {
			if cf := cashflows.At(i, j); cf > 0 {
				payoffs[i] = cf * math.Exp(-cfg.R*float64(j)*dt)
				break
			}
		}
	}
	se := stat.StdDev(payoffs, nil) / math.Sqrt(float64(cfg.NumPaths))

	scalar, err := engine.PriceScalar(cfg)
	if err != nil {
		t.Fatalf("PriceScalar() error: %v", err)
	}
	if !closeTo(scalar, stat.Mean(payoffs, nil), 1e-6) {
		t.Fatalf("PriceScalar() = %.10f, want replayed mean %.10f", scalar, stat.Mean(payoffs, nil))
	}

	prices := map[string]float64{BackendScalar: scalar}
	arena := NewArena(ArenaSizeFor(cfg))
	for _, key := range []string{BackendArena, BackendSIMD, BackendMP, BackendUltimate} {
		backend, ok := LookupBackend(key)
		if !ok {
			t.Fatalf("LookupBackend(%s) not registered", key)
		}
		var a *Arena
		if backend.NeedsArena {
			a = arena
		}
		price, err := engine.PriceBackend(key, cfg, a)
		if err != nil {
			t.Fatalf("PriceBackend(%s) error: %v", key, err)
		}
		prices[key] = price
	}

	// 抽样顺序不同的后端只在蒙特卡洛噪声内一致；
	// 两个独立估计之差的标准差为 √2·SE，取 4 倍作为判定带
	tol := 4 * math.Sqrt2 * se
	for key, price := range prices {
		if !closeTo(price, scalar, tol) {
			t.Errorf("PriceBackend(%s) = %.6f, scalar = %.6f, |diff| = %.6f exceeds %.6f",
				key, price, scalar, math.Abs(price-scalar), tol)
		}
	}

	// 美式价格落在二叉树基准 2% 带内，并高于欧式下界
	binomial := AmericanBinomial(cfg.S0, cfg.K, cfg.T, cfg.R, cfg.Sigma, 2000, true)
	european := EuropeanVanilla(cfg.S0, cfg.K, cfg.T, cfg.R, cfg.Sigma, true)
	for key, price := range prices {
		if math.Abs(price-binomial) > 0.02*binomial {
			t.Errorf("PriceBackend(%s) = %.4f, want within 2%% of binomial %.4f", key, price, binomial)
		}
		if price <= european {
			t.Errorf("PriceBackend(%s) = %.4f, want above European floor %.4f", key, price, european)
		}
	}
}
