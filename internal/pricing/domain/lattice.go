package domain

// Layout 二维缓冲的内存布局
type Layout int

const (
	// PathMajor 路径优先：同一路径的全部时间步连续，适合标量后端
	// 逐路径推进的访问模式
	PathMajor Layout = iota
	// TimeMajor 时间优先（SoA）：同一时间步的全部路径连续，保证
	// 向量化内核在固定时间步上的批量读写落在连续内存
	TimeMajor
)

// Lattice 以 (path, time) 访问的二维网格，底层是单块连续 float64
// 缓冲。价格格子与现金流表共用此结构，索引范围 path ∈ [0,N)、
// time ∈ [0,M]。访问器不暴露原始偏移计算。
type Lattice struct {
	data   []float64
	paths  int
	steps  int
	layout Layout
}

// newLattice 从给定分配策略创建 N×(M+1) 网格，内容为零
func newLattice(alloc allocator, paths, steps int, layout Layout) (*Lattice, error) {
	data, err := alloc.Floats(paths * (steps + 1))
	if err != nil {
		return nil, err
	}
	return &Lattice{data: data, paths: paths, steps: steps, layout: layout}, nil
}

func (l *Lattice) index(i, t int) int {
	if l.layout == TimeMajor {
		return t*l.paths + i
	}
	return i*(l.steps+1) + t
}

// At 读取路径 i 在时间步 t 的值
func (l *Lattice) At(i, t int) float64 { return l.data[l.index(i, t)] }

// Set 写入路径 i 在时间步 t 的值
func (l *Lattice) Set(i, t int, v float64) { l.data[l.index(i, t)] = v }

// Step 返回时间步 t 上全部路径的连续切片，仅 TimeMajor 布局有效
func (l *Lattice) Step(t int) []float64 {
	if l.layout != TimeMajor {
		panic("lattice: Step requires time-major layout")
	}
	return l.data[t*l.paths : (t+1)*l.paths]
}

// PathRow 返回路径 i 全部时间步的连续切片，仅 PathMajor 布局有效
func (l *Lattice) PathRow(i int) []float64 {
	if l.layout != PathMajor {
		panic("lattice: PathRow requires path-major layout")
	}
	return l.data[i*(l.steps+1) : (i+1)*(l.steps+1)]
}

// Paths 路径数 N
func (l *Lattice) Paths() int { return l.paths }

// Steps 时间步数 M（不含 0 时刻）
func (l *Lattice) Steps() int { return l.steps }
