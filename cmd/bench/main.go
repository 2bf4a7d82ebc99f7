package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/montanaflynn/stats"

	"github.com/wyfcoding/lsmbench/internal/pricing/application"
	"github.com/wyfcoding/lsmbench/internal/pricing/domain"
	"github.com/wyfcoding/lsmbench/pkg/logger"
)

var (
	casesPath = flag.String("cases", "configs/bench/experiments.yaml", "benchmark case file path")
	outDir    = flag.String("out", "RESULTS", "results output directory")
	workers   = flag.Int("workers", 0, "worker count for parallel backends, 0 means GOMAXPROCS")
)

// benchFile 基准案例文件结构
type benchFile struct {
	Cases []benchCase `yaml:"cases"`
}

// benchCase 单个基准案例：对每个后端执行 repeats 次定价
type benchCase struct {
	Name       string          `yaml:"name"`
	Backends   []string        `yaml:"backends"`
	Params     benchParams     `yaml:"params"`
	Simulation benchSimulation `yaml:"simulation"`
	// Repeats 每个后端的重复次数，0 按 1 处理
	Repeats int `yaml:"repeats"`
}

type benchParams struct {
	S0    float64 `yaml:"S0"`
	K     float64 `yaml:"K"`
	T     float64 `yaml:"T"`
	R     float64 `yaml:"r"`
	Sigma float64 `yaml:"sigma"`
}

type benchSimulation struct {
	NumPaths int   `yaml:"num_paths"`
	NumSteps int   `yaml:"num_steps"`
	Seed     int64 `yaml:"seed"`
}

func (c benchCase) config() domain.SimulationConfig {
	return domain.SimulationConfig{
		S0:       c.Params.S0,
		K:        c.Params.K,
		T:        c.Params.T,
		R:        c.Params.R,
		Sigma:    c.Params.Sigma,
		NumPaths: c.Simulation.NumPaths,
		NumSteps: c.Simulation.NumSteps,
		Seed:     c.Simulation.Seed,
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if err := logger.Init(logger.Config{Level: "info", Format: "text", Output: "stdout"}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	raw, err := os.ReadFile(*casesPath)
	if err != nil {
		logger.Fatal(ctx, "Failed to read case file", "path", *casesPath, "error", err)
	}
	var file benchFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		logger.Fatal(ctx, "Failed to parse case file", "path", *casesPath, "error", err)
	}
	if len(file.Cases) == 0 {
		logger.Fatal(ctx, "Case file contains no cases", "path", *casesPath)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Fatal(ctx, "Failed to create results directory", "dir", *outDir, "error", err)
	}
	resultsPath := filepath.Join(*outDir,
		fmt.Sprintf("run_results_%s.jsonl", time.Now().Format("20060102_150405")))
	resultsFile, err := os.Create(resultsPath)
	if err != nil {
		logger.Fatal(ctx, "Failed to create results file", "path", resultsPath, "error", err)
	}
	defer resultsFile.Close()
	encoder := json.NewEncoder(resultsFile)

	logger.Info(ctx, "Benchmark runner starting", "cases", len(file.Cases), "results", resultsPath)

	engine := domain.NewEngine(*workers)
	defer engine.Close()
	sysInfo := application.CollectSystemInfo()

	for _, c := range file.Cases {
		runCase(ctx, engine, c, sysInfo, encoder)
	}

	logger.Info(ctx, "Benchmark run finished", "results", resultsPath)
}

func runCase(ctx context.Context, engine *domain.Engine, c benchCase, sysInfo domain.SystemInfo, encoder *json.Encoder) {
	logger.Info(ctx, "Running case", "case", c.Name)

	cfg := c.config()
	repeats := max(c.Repeats, 1)
	arena := caseArena(c.Backends, cfg)

	for _, key := range c.Backends {
		backend, ok := domain.LookupBackend(key)
		if !ok {
			logger.Warn(ctx, "Backend not found, skipping", "case", c.Name, "backend", key)
			continue
		}
		var runArena *domain.Arena
		if backend.NeedsArena {
			runArena = arena
		}

		times := make([]float64, 0, repeats)
		for i := 0; i < repeats; i++ {
			start := time.Now()
			price, err := engine.PriceBackend(key, cfg, runArena)
			elapsed := time.Since(start)
			if err != nil {
				logger.Fatal(ctx, "Pricing failed", "case", c.Name, "backend", key, "error", err)
			}

			timeMS := float64(elapsed.Nanoseconds()) / 1e6
			times = append(times, timeMS)
			logger.Info(ctx, "Run completed",
				"case", c.Name,
				"backend", key,
				"price", fmt.Sprintf("%.5f", price),
				"time_ms", fmt.Sprintf("%.2f", timeMS),
			)

			record := domain.RunRecord{
				CaseName:     c.Name,
				Backend:      key,
				TimestampUTC: time.Now().UTC(),
				Inputs:       cfg,
				Outputs:      domain.RunOutputs{Price: price, TimeMS: timeMS},
				SystemInfo:   sysInfo,
			}
			if err := encoder.Encode(record); err != nil {
				logger.Fatal(ctx, "Failed to write result", "case", c.Name, "error", err)
			}
		}

		if repeats > 1 {
			mean, _ := stats.Mean(times)
			median, _ := stats.Median(times)
			stddev, _ := stats.StandardDeviation(times)
			logger.Info(ctx, "Backend timing summary",
				"case", c.Name,
				"backend", key,
				"repeats", repeats,
				"mean_ms", fmt.Sprintf("%.2f", mean),
				"median_ms", fmt.Sprintf("%.2f", median),
				"stddev_ms", fmt.Sprintf("%.2f", stddev),
			)
		}
	}
}

// caseArena 当案例包含需要 Arena 的后端时按案例规模分配一块
func caseArena(backendKeys []string, cfg domain.SimulationConfig) *domain.Arena {
	for _, key := range backendKeys {
		if backend, ok := domain.LookupBackend(key); ok && backend.NeedsArena {
			return domain.NewArena(domain.ArenaSizeFor(cfg))
		}
	}
	return nil
}
