package reveal

import (
	"context"
	"time"

	"career-chat/internal/markup"
)

// Reveal 阻塞地驱动一次展示直到完成。ctx 取消即视为放弃：
// 立即返回 ctx.Err()，之后不再修改 mount。
func Reveal(ctx context.Context, tree *markup.Node, mount Container, opts ...Option) (Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t := NewTask(tree, mount, opts...)
	clock := t.cfg.clock
	if clock == nil {
		clock = time.Now
	}
	for {
		if err := ctx.Err(); err != nil {
			t.Abandon()
			return t.Stats(), err
		}
		wait, done := t.Step(clock())
		if done {
			return t.Stats(), nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.Abandon()
			return t.Stats(), ctx.Err()
		case <-timer.C:
		}
	}
}
