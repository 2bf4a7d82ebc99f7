package domain

import "errors"

// 错误分类约定：配置类错误在任何模拟开始之前返回，不产生部分执行；
// Arena 耗尽会中止整次定价调用；回归阶段的数值退化不在此列，
// 由引擎内部的行权决策逻辑自然吸收。
var (
	// ErrInvalidConfig 非法的模拟配置（路径数、步数、期限、波动率或批宽不匹配）
	ErrInvalidConfig = errors.New("invalid simulation config")

	// ErrArenaExhausted Arena 容量不足以完成本次定价调用
	ErrArenaExhausted = errors.New("arena capacity exhausted")

	// ErrUnknownBackend 请求了未注册的定价后端
	ErrUnknownBackend = errors.New("unknown pricing backend")
)
