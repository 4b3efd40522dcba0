package reveal

import (
	"math/rand/v2"
	"time"
)

// Pacing 控制逐词展示的节奏。仅影响观感，不影响最终结构。
type Pacing struct {
	// Base 每个词之后的固定停顿。
	Base time.Duration
	// Jitter 在 Base 之上追加 [0, Jitter) 的随机停顿。
	Jitter time.Duration
	// ShowAfter 段插入后多久切换为可见。
	ShowAfter time.Duration
	// ScrollDebounce 合并滚动请求的时间窗口。
	ScrollDebounce time.Duration
	// ReducedMotion 关闭停顿与渐显，段插入即可见。
	ReducedMotion bool
}

// DefaultPacing 返回默认节奏：10ms + [0,30ms) 抖动。
func DefaultPacing() Pacing {
	return Pacing{
		Base:           10 * time.Millisecond,
		Jitter:         30 * time.Millisecond,
		ShowAfter:      10 * time.Millisecond,
		ScrollDebounce: 50 * time.Millisecond,
	}
}

// Option 配置 Task。
type Option func(*taskConfig)

type taskConfig struct {
	pacing   Pacing
	scroller Scroller
	rand     *rand.Rand
	clock    func() time.Time
}

// WithPacing 替换默认节奏。
func WithPacing(p Pacing) Option {
	return func(cfg *taskConfig) {
		cfg.pacing = p
	}
}

// WithReducedMotion 开启或关闭减少动效模式。
func WithReducedMotion(enabled bool) Option {
	return func(cfg *taskConfig) {
		cfg.pacing.ReducedMotion = enabled
	}
}

// WithScroller 设置滚动到底部的请求通道。
func WithScroller(s Scroller) Option {
	return func(cfg *taskConfig) {
		cfg.scroller = s
	}
}

// WithRand 指定抖动随机源，便于测试复现。
func WithRand(r *rand.Rand) Option {
	return func(cfg *taskConfig) {
		cfg.rand = r
	}
}

// WithClock 指定 Reveal 驱动使用的时钟。
func WithClock(clock func() time.Time) Option {
	return func(cfg *taskConfig) {
		cfg.clock = clock
	}
}

func (cfg taskConfig) wordDelay() time.Duration {
	p := cfg.pacing
	if p.ReducedMotion {
		return 0
	}
	d := p.Base
	if p.Jitter > 0 {
		if cfg.rand != nil {
			d += time.Duration(cfg.rand.Int64N(int64(p.Jitter)))
		} else {
			d += time.Duration(rand.Int64N(int64(p.Jitter)))
		}
	}
	if d < 0 {
		return 0
	}
	return d
}
