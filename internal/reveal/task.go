package reveal

import (
	"time"

	"career-chat/internal/markup"
)

// Stats 汇总一次展示的工作量。
type Stats struct {
	Elements int
	Segments int
	Words    int
	Skipped  int
	Scrolls  int
}

type frame struct {
	dst   Container
	nodes []*markup.Node
	next  int
}

type pendingShow struct {
	seg Segment
	due time.Time
}

// Task 是一次展示操作：对输入树做深度优先、按文档顺序的遍历，
// 以显式栈保存进度，在每个词之后让出控制权。
//
// Task 不是并发安全的；调用方需在同一个 goroutine（或 UI 事件循环）内驱动它。
type Task struct {
	cfg    taskConfig
	stack  []frame
	segs   []string
	segDst Container
	shows  []pendingShow
	scroll scrollDebounce
	stats  Stats
	done   bool
}

// NewTask 创建展示任务。tree 为 Fragment 时其子节点直接追加到 mount。
func NewTask(tree *markup.Node, mount Container, opts ...Option) *Task {
	cfg := taskConfig{pacing: DefaultPacing()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	t := &Task{
		cfg:    cfg,
		scroll: scrollDebounce{target: cfg.scroller, window: cfg.pacing.ScrollDebounce},
	}
	if tree != nil && mount != nil {
		t.stack = append(t.stack, frame{dst: mount, nodes: []*markup.Node{tree}})
	}
	return t
}

// Step 同步推进展示，直到下一个词级停顿点或完成。
// 返回值 wait 表示调用方在下一次 Step 之前应等待的时长。
func (t *Task) Step(now time.Time) (wait time.Duration, done bool) {
	if t.done {
		return 0, true
	}
	t.showDue(now)
	t.scroll.tick(now)
	for {
		if len(t.segs) > 0 {
			seg := t.segs[0]
			t.segs = t.segs[1:]
			if seg == "" {
				continue
			}
			if d := t.appendSegment(seg, now); d > 0 {
				return d, false
			}
			continue
		}
		if len(t.stack) == 0 {
			t.finish(now)
			return 0, true
		}
		top := &t.stack[len(t.stack)-1]
		if top.next >= len(top.nodes) {
			t.stack = t.stack[:len(t.stack)-1]
			continue
		}
		n := top.nodes[top.next]
		top.next++
		t.enter(n, top.dst)
	}
}

func (t *Task) enter(n *markup.Node, dst Container) {
	if n == nil {
		return
	}
	switch n.Kind {
	case markup.TextKind:
		t.segs = Split(n.Text)
		t.segDst = dst
	case markup.ElementKind:
		// 先挂空壳，再填充子节点。
		el := dst.AppendElement(n.Tag, cloneAttrs(n.Attrs))
		t.stats.Elements++
		if len(n.Children) > 0 && el != nil {
			t.stack = append(t.stack, frame{dst: el, nodes: n.Children})
		}
	case markup.FragmentKind:
		if len(n.Children) > 0 {
			t.stack = append(t.stack, frame{dst: dst, nodes: n.Children})
		}
	default:
		t.stats.Skipped++
	}
}

func (t *Task) appendSegment(seg string, now time.Time) time.Duration {
	s := t.segDst.AppendSegment(seg)
	t.stats.Segments++
	p := t.cfg.pacing
	if s != nil {
		if p.ReducedMotion || p.ShowAfter <= 0 {
			s.Show()
		} else {
			t.shows = append(t.shows, pendingShow{seg: s, due: now.Add(p.ShowAfter)})
		}
	}
	t.scroll.request(now)
	if !IsWord(seg) {
		return 0
	}
	t.stats.Words++
	return t.cfg.wordDelay()
}

func (t *Task) showDue(now time.Time) {
	if len(t.shows) == 0 {
		return
	}
	kept := t.shows[:0]
	for _, ps := range t.shows {
		if !ps.due.After(now) {
			ps.seg.Show()
			continue
		}
		kept = append(kept, ps)
	}
	t.shows = kept
}

func (t *Task) finish(now time.Time) {
	for _, ps := range t.shows {
		ps.seg.Show()
	}
	t.shows = nil
	t.scroll.flush(now)
	t.done = true
}

// Abandon 放弃展示；之后的 Step 不再修改挂载点。
func (t *Task) Abandon() {
	if t == nil {
		return
	}
	t.done = true
	t.stack = nil
	t.segs = nil
	t.shows = nil
	t.scroll.pending = false
}

// Done 报告任务是否已结束（完成或放弃）。
func (t *Task) Done() bool {
	return t == nil || t.done
}

// Stats 返回当前统计。
func (t *Task) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	s := t.stats
	s.Scrolls = t.scroll.count
	return s
}

func cloneAttrs(attrs []markup.Attr) []markup.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]markup.Attr, len(attrs))
	copy(out, attrs)
	return out
}
