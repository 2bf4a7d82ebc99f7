package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// inductionScratch 反向归纳的工作缓冲，全部来自当前调用的分配策略。
// 三个数组按路径数预留，每个行权日期只使用前 count 个元素。
type inductionScratch struct {
	itm []int32   // 价内路径索引
	x   []float64 // 回归自变量：价内路径在该日期的即期价格
	y   []float64 // 回归目标：贴现到该日期的首笔未来现金流
}

func newInductionScratch(alloc allocator, paths int) (*inductionScratch, error) {
	itm, err := alloc.Ints(paths)
	if err != nil {
		return nil, err
	}
	x, err := alloc.Floats(paths)
	if err != nil {
		return nil, err
	}
	y, err := alloc.Floats(paths)
	if err != nil {
		return nil, err
	}
	return &inductionScratch{itm: itm, x: x, y: y}, nil
}

// fillTerminalPayoffs 终端日初始化：cashflows[i, M] = max(0, K − S[i, M])
func fillTerminalPayoffs(cfg SimulationConfig, lattice, cashflows *Lattice) {
	m := cfg.NumSteps
	for i := 0; i < cfg.NumPaths; i++ {
		cashflows.Set(i, m, math.Max(0, cfg.K-lattice.At(i, m)))
	}
}

// inductExercises 从 M−1 到 1 逐个行权日期回推最优行权决策：
// 筛出价内路径；对每条价内路径向后扫描首笔正现金流并按
// exp(−r·(j−t)·dt) 贴现为回归目标；二次拟合延续价值模型；
// 立即行权价值严格高于延续价值的路径在当日计一笔现金流并清零其后
// 全部日期，保证每条路径至多一笔现金流。价内集合为空的日期整体跳过。
// 回归耦合全部价内路径，该阶段在所有后端上都单线程执行。
func inductExercises(cfg SimulationConfig, lattice, cashflows *Lattice, scratch *inductionScratch) {
	dt := cfg.dt()
	m := cfg.NumSteps

	for t := m - 1; t >= 1; t-- {
		// 1. 价内筛选与回归样本构造
		count := 0
		for i := 0; i < cfg.NumPaths; i++ {
			s := lattice.At(i, t)
			if cfg.K-s <= 0 {
				continue
			}
			futureCF := 0.0
			for j := t + 1; j <= m; j++ {
				if cf := cashflows.At(i, j); cf > 0 {
					futureCF = cf * math.Exp(-cfg.R*float64(j-t)*dt)
					break
				}
			}
			scratch.itm[count] = int32(i)
			scratch.x[count] = s
			scratch.y[count] = futureCF
			count++
		}
		if count == 0 {
			continue
		}

		// 2. 延续价值模型
		model := fitQuadratic(scratch.x[:count], scratch.y[:count])

		// 3. 行权决策与未来现金流清零
		for k := 0; k < count; k++ {
			i := int(scratch.itm[k])
			intrinsic := math.Max(0, cfg.K-scratch.x[k])
			if intrinsic > model.ValueAt(scratch.x[k]) {
				cashflows.Set(i, t, intrinsic)
				for j := t + 1; j <= m; j++ {
					cashflows.Set(i, j, 0)
				}
			}
		}
	}
}

// discountedPayoffSum 对 [start, end) 区间的每条路径取首笔正现金流，
// 按 exp(−r·j·dt) 贴现回 0 时刻后累加
func discountedPayoffSum(cfg SimulationConfig, cashflows *Lattice, start, end int) float64 {
	dt := cfg.dt()
	total := 0.0
	for i := start; i < end; i++ {
		for j := 1; j <= cfg.NumSteps; j++ {
			if cf := cashflows.At(i, j); cf > 0 {
				total += cf * math.Exp(-cfg.R*float64(j)*dt)
				break
			}
		}
	}
	return total
}

// combinePartials 归并各 worker 的部分和；加法可交换，与区间数无关
func combinePartials(partials []float64) float64 {
	return floats.Sum(partials)
}
