// Package domain 实现美式看跌期权的 Longstaff-Schwartz 最小二乘
// 蒙特卡洛定价引擎。前向模拟、反向归纳与贴现聚合是同一套算法，
// 由正交的执行策略（内存布局、向量批宽、worker 数、分配策略）组合出
// 五个可部署后端；行权决策逻辑在所有后端之间逐行一致。
package domain

import (
	"runtime"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// strategy 单次定价调用的执行策略，由各后端入口绑定
type strategy struct {
	layout  Layout
	lanes   int    // 0 为标量更新，LaneWidth 为向量批更新
	workers int    // 1 为顺序执行
	arena   *Arena // nil 为动态分配
}

// Engine 定价引擎。持有常驻 worker 池供并行后端复用，自身无共享
// 可变状态，可被并发调用；需要 Arena 的并发调用必须各自独占 Arena。
type Engine struct {
	workers int
	pool    *workerpool.Pool
}

// NewEngine 创建引擎，workers <= 0 时取 GOMAXPROCS
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{workers: workers, pool: workerpool.New(workers)}
}

// Workers 并行后端使用的 worker 数
func (e *Engine) Workers() int { return e.workers }

// Close 关闭常驻 worker 池
func (e *Engine) Close() { e.pool.Close() }

// PriceScalar 标量基准后端：路径优先布局、单线程、动态分配
func (e *Engine) PriceScalar(cfg SimulationConfig) (float64, error) {
	return e.price(cfg, strategy{layout: PathMajor, workers: 1})
}

// PriceArena 标量 + Arena 后端：与标量基准完全同序，
// 工作缓冲全部取自 arena，相同配置下与 PriceScalar 逐位一致
func (e *Engine) PriceArena(cfg SimulationConfig, arena *Arena) (float64, error) {
	return e.price(cfg, strategy{layout: PathMajor, workers: 1, arena: arena})
}

// PriceSIMD 向量批后端：时间优先布局、8 路批宽、单线程、动态分配
func (e *Engine) PriceSIMD(cfg SimulationConfig) (float64, error) {
	return e.price(cfg, strategy{layout: TimeMajor, lanes: LaneWidth, workers: 1})
}

// PriceMP 多线程 + Arena 后端：前向模拟与聚合按路径区间并行
func (e *Engine) PriceMP(cfg SimulationConfig, arena *Arena) (float64, error) {
	return e.price(cfg, strategy{layout: PathMajor, workers: e.workers, arena: arena})
}

// PriceUltimate 全量组合后端：时间优先布局、8 路批宽、多线程、Arena
func (e *Engine) PriceUltimate(cfg SimulationConfig, arena *Arena) (float64, error) {
	return e.price(cfg, strategy{layout: TimeMajor, lanes: LaneWidth, workers: e.workers, arena: arena})
}

// price 全部后端共用的定价主流程：前向模拟、反向归纳、贴现聚合。
// 后端差异只体现在布局、向量化与工作划分上，算法语义完全一致。
func (e *Engine) price(cfg SimulationConfig, strat strategy) (float64, error) {
	// 全部校验在任何计算开始前完成
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if strat.lanes > 0 {
		if err := cfg.validateLanes(strat.lanes); err != nil {
			return 0, err
		}
	}

	var alloc allocator = heapAlloc{}
	if strat.arena != nil {
		strat.arena.Reset()
		alloc = strat.arena
	}

	lattice, err := newLattice(alloc, cfg.NumPaths, cfg.NumSteps, strat.layout)
	if err != nil {
		return 0, err
	}
	cashflows, err := newLattice(alloc, cfg.NumPaths, cfg.NumSteps, strat.layout)
	if err != nil {
		return 0, err
	}
	scratch, err := newInductionScratch(alloc, cfg.NumPaths)
	if err != nil {
		return 0, err
	}
	var zbuf []float64
	if strat.lanes > 0 {
		if zbuf, err = alloc.Floats(cfg.NumPaths); err != nil {
			return 0, err
		}
	}

	ranges := partitionPaths(cfg.NumPaths, strat.workers, strat.lanes)

	// 前向模拟：区间互不相交，区间 w 使用 seed+w 的独立流；
	// runRanges 返回即是第一道屏障，反向读取前全部写入已完成
	e.runRanges(ranges, func(w int, r pathRange) {
		rng := newNormalStream(cfg.Seed + int64(w))
		if strat.lanes > 0 {
			simulateTimeMajor(cfg, lattice, rng, zbuf, r.start, r.end)
		} else {
			simulatePathMajor(cfg, lattice, rng, r.start, r.end)
		}
	})

	// 反向归纳：回归耦合全部价内路径，单线程执行
	fillTerminalPayoffs(cfg, lattice, cashflows)
	inductExercises(cfg, lattice, cashflows, scratch)

	// 贴现聚合：各区间部分和在第二道屏障后归并
	partials := make([]float64, len(ranges))
	e.runRanges(ranges, func(w int, r pathRange) {
		partials[w] = discountedPayoffSum(cfg, cashflows, r.start, r.end)
	})

	return combinePartials(partials) / float64(cfg.NumPaths), nil
}

// runRanges 在常驻池上 fork-join 执行全部路径区间并等待完成。
// 单区间直接在当前 goroutine 上执行，顺序后端不经过池。
func (e *Engine) runRanges(ranges []pathRange, fn func(w int, r pathRange)) {
	if len(ranges) == 1 {
		fn(0, ranges[0])
		return
	}
	e.pool.ParallelFor(len(ranges), func(start, end int) {
		for w := start; w < end; w++ {
			fn(w, ranges[w])
		}
	})
}
