package domain

import (
	"fmt"
	"unsafe"
)

// allocator 抽象一次定价调用的工作缓冲来源：Go 堆或预留的 Arena。
// 两种来源返回的缓冲内容均为零值。
type allocator interface {
	// Floats 取得长度为 n 的 float64 缓冲
	Floats(n int) ([]float64, error)
	// Ints 取得长度为 n 的 int32 缓冲
	Ints(n int) ([]int32, error)
}

// heapAlloc 动态分配策略：每次调用从 Go 堆取新缓冲，由 GC 回收
type heapAlloc struct{}

func (heapAlloc) Floats(n int) ([]float64, error) { return make([]float64, n), nil }

func (heapAlloc) Ints(n int) ([]int32, error) { return make([]int32, n), nil }

// Arena 固定容量的 bump 分配器：在一整块预留内存上单调推进游标，
// Reset 一次性回收全部空间，不支持单独释放。
// 同一 Arena 同一时刻只能被一次定价调用独占，内部不加锁；
// 并发调用必须各自持有独立的 Arena。
type Arena struct {
	buf    []byte
	offset int
}

// NewArena 预留 capacity 字节的 Arena
func NewArena(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{buf: make([]byte, capacity)}
}

// Alloc 将游标对齐到 align 的倍数后推进 size 字节并返回该区域。
// 容量不足时返回 ErrArenaExhausted，整次定价调用应随之中止。
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	aligned := (a.offset + align - 1) &^ (align - 1)
	if aligned+size > len(a.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			ErrArenaExhausted, size, aligned, len(a.buf))
	}
	a.offset = aligned + size
	return a.buf[aligned : aligned+size : aligned+size], nil
}

// Reset 将游标归零，使所有已发出的缓冲失效。
// 复用 Arena 的每次定价调用开始前都会先 Reset。
func (a *Arena) Reset() { a.offset = 0 }

// Capacity Arena 总容量（字节）
func (a *Arena) Capacity() int { return len(a.buf) }

// Used 当前游标位置，即已占用的字节数
func (a *Arena) Used() int { return a.offset }

// Floats 从 Arena 切出 n 个 float64，8 字节对齐，内容清零
func (a *Arena) Floats(n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	raw, err := a.Alloc(n*8, 8)
	if err != nil {
		return nil, err
	}
	s := unsafe.Slice((*float64)(unsafe.Pointer(&raw[0])), n)
	clear(s)
	return s, nil
}

// Ints 从 Arena 切出 n 个 int32，4 字节对齐，内容清零
func (a *Arena) Ints(n int) ([]int32, error) {
	if n == 0 {
		return nil, nil
	}
	raw, err := a.Alloc(n*4, 4)
	if err != nil {
		return nil, err
	}
	s := unsafe.Slice((*int32)(unsafe.Pointer(&raw[0])), n)
	clear(s)
	return s, nil
}

// ArenaSizeFor 估算一次定价调用所需容量的上界：
// 价格格子与现金流表各 N×(M+1) 个 float64，价内路径索引、回归输入
// 与随机数缓冲各一份路径长度的数组，再加对齐损耗与安全余量。
// 按该上界预留的 Arena 可运行任何后端。
func ArenaSizeFor(cfg SimulationConfig) int {
	n := cfg.NumPaths
	grid := n * (cfg.NumSteps + 1) * 8
	scratch := n*4 + 3*n*8
	size := 2*grid + scratch
	return size + size/8 + 4096
}
