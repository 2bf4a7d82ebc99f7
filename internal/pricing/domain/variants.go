package domain

import "fmt"

// 五个后端的注册键，实验配置与基准案例用它们选择后端
const (
	BackendScalar   = "scalar"
	BackendArena    = "arena"
	BackendSIMD     = "simd"
	BackendMP       = "mp"
	BackendUltimate = "ultimate"
)

// Backend 一个可选择的定价后端
type Backend struct {
	// Key 注册键
	Key string `json:"key"`
	// Name 展示名称
	Name string `json:"name"`
	// NeedsArena 该后端是否要求调用方提供 Arena
	NeedsArena bool `json:"-"`
}

// 注册表顺序即对外展示顺序
var backendRegistry = []Backend{
	{Key: BackendScalar, Name: "Scalar baseline", NeedsArena: false},
	{Key: BackendArena, Name: "Scalar + arena", NeedsArena: true},
	{Key: BackendSIMD, Name: "SIMD (8-lane batches)", NeedsArena: false},
	{Key: BackendMP, Name: "Multithreaded + arena", NeedsArena: true},
	{Key: BackendUltimate, Name: "SIMD + multithreaded + arena", NeedsArena: true},
}

// Backends 返回全部已注册后端
func Backends() []Backend {
	out := make([]Backend, len(backendRegistry))
	copy(out, backendRegistry)
	return out
}

// LookupBackend 按注册键查找后端
func LookupBackend(key string) (Backend, bool) {
	for _, b := range backendRegistry {
		if b.Key == key {
			return b, true
		}
	}
	return Backend{}, false
}

// PriceBackend 按注册键分派到对应的定价入口。
// 未注册的键返回 ErrUnknownBackend；需要 Arena 的后端在 arena 为
// nil 时返回 ErrInvalidConfig。
func (e *Engine) PriceBackend(key string, cfg SimulationConfig, arena *Arena) (float64, error) {
	backend, ok := LookupBackend(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, key)
	}
	if backend.NeedsArena && arena == nil {
		return 0, fmt.Errorf("%w: backend %q requires an arena", ErrInvalidConfig, key)
	}

	switch key {
	case BackendScalar:
		return e.PriceScalar(cfg)
	case BackendArena:
		return e.PriceArena(cfg, arena)
	case BackendSIMD:
		return e.PriceSIMD(cfg)
	case BackendMP:
		return e.PriceMP(cfg, arena)
	default:
		return e.PriceUltimate(cfg, arena)
	}
}
