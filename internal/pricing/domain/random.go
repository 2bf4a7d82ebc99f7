package domain

import "math/rand/v2"

// newNormalStream 构造确定性的标准正态抽样流。
// 顺序后端用配置种子建一条流；并行后端第 w 个区间使用 seed+w 的
// 独立流，各自抽取本区间所需的全部偏差，worker 之间不共享状态。
// 固定后端与固定 worker 数下结果逐位可复现；不同 worker 数或
// 不同布局之间 (路径, 时间步) 到抽样顺序的映射不同，不保证逐位一致。
func newNormalStream(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// fillNormals 用 rng 按顺序填满 dst
func fillNormals(rng *rand.Rand, dst []float64) {
	for i := range dst {
		dst[i] = rng.NormFloat64()
	}
}
