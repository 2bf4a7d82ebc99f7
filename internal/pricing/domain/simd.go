package domain

import (
	"math"
	"math/rand/v2"

	"github.com/ajroetker/go-highway/hwy"
	hwymath "github.com/ajroetker/go-highway/hwy/contrib/math"
)

// LaneWidth 向量化后端的批宽：每批推进 8 条路径。
// 批内按硬件向量宽度（2/4/8 个 double，均整除 8）迭代，
// 因此同一批宽在所有目标上产生相同结果。
const LaneWidth = 8

// stepBatch 向量化推进一个批：从上一时间步连续读入一批价格与一批
// 新鲜正态偏差，做 exp(drift + vol·Z) 更新后连续写回当前时间步。
func stepBatch(prev, z, curr []float64, drift, vol hwy.Vec[float64]) {
	lanes := min(hwy.MaxLanes[float64](), LaneWidth)
	for k := 0; k < LaneWidth; k += lanes {
		p := hwy.Load(prev[k:])
		d := hwy.Load(z[k:])
		growth := hwymath.BaseExpVec(hwy.FMA(vol, d, drift))
		hwy.Store(hwy.Mul(p, growth), curr[k:])
	}
}

// simulateTimeMajor 按时间优先（SoA）布局生成 [start, end) 区间的
// 前向价格格子。每个时间步先为区间内全部路径填充正态偏差，再按
// LaneWidth 的批做向量更新；抽样顺序为区间内的时间优先序，与
// 路径优先的标量后端不同，因此两类后端只在统计意义上一致。
// 调用方保证 start 与 end 均为 LaneWidth 的倍数（end == N 除外，
// 此时 N 本身已校验为批宽倍数）。
func simulateTimeMajor(cfg SimulationConfig, lattice *Lattice, rng *rand.Rand, zbuf []float64, start, end int) {
	drift := hwy.Set((cfg.R - 0.5*cfg.Sigma*cfg.Sigma) * cfg.dt())
	vol := hwy.Set(cfg.Sigma * math.Sqrt(cfg.dt()))

	s0 := lattice.Step(0)
	for i := start; i < end; i++ {
		s0[i] = cfg.S0
	}

	for j := 1; j <= cfg.NumSteps; j++ {
		fillNormals(rng, zbuf[start:end])
		prev := lattice.Step(j - 1)
		curr := lattice.Step(j)
		for i := start; i < end; i += LaneWidth {
			stepBatch(prev[i:i+LaneWidth], zbuf[i:i+LaneWidth], curr[i:i+LaneWidth], drift, vol)
		}
	}
}
