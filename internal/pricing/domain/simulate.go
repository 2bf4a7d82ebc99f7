package domain

import (
	"math"
	"math/rand/v2"
)

// pathRange 一个 worker 负责的连续路径区间 [start, end)
type pathRange struct {
	start, end int
}

// partitionPaths 将 [0, n) 均分为至多 workers 个连续区间。
// align > 1 时区间长度向上取整到 align 的倍数，保证向量批不会
// 跨越 worker 边界。只返回非空区间，区间按路径序排列。
func partitionPaths(n, workers, align int) []pathRange {
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	if align > 1 {
		chunk = (chunk + align - 1) / align * align
	}
	ranges := make([]pathRange, 0, workers)
	for start := 0; start < n; start += chunk {
		ranges = append(ranges, pathRange{start: start, end: min(start+chunk, n)})
	}
	return ranges
}

// simulatePathMajor 按路径优先顺序生成 [start, end) 区间的前向价格
// 格子：S[i,0] = S0，S[i,j] = S[i,j-1]·exp((r − σ²/2)·dt + σ·√dt·Z)。
// 抽样顺序为路径内时间步递增、路径间递增，区间内只消费 rng 自己的流。
func simulatePathMajor(cfg SimulationConfig, lattice *Lattice, rng *rand.Rand, start, end int) {
	drift := (cfg.R - 0.5*cfg.Sigma*cfg.Sigma) * cfg.dt()
	vol := cfg.Sigma * math.Sqrt(cfg.dt())

	for i := start; i < end; i++ {
		row := lattice.PathRow(i)
		row[0] = cfg.S0
		for j := 1; j <= cfg.NumSteps; j++ {
			row[j] = row[j-1] * math.Exp(drift+vol*rng.NormFloat64())
		}
	}
}
