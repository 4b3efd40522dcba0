package reveal

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"career-chat/internal/markup"
)

// recorder 记录挂载点上的每次追加，便于校验顺序。
type recorder struct {
	events []string
	segs   int
}

type recNode struct {
	tag      string
	attrs    []markup.Attr
	text     string
	segment  bool
	visible  bool
	children []*recNode
}

type recMount struct {
	node *recNode
	rec  *recorder
}

func newRecMount() *recMount {
	return &recMount{node: &recNode{}, rec: &recorder{}}
}

func (m *recMount) AppendElement(tag string, attrs []markup.Attr) Container {
	child := &recNode{tag: tag, attrs: attrs}
	m.node.children = append(m.node.children, child)
	m.rec.events = append(m.rec.events, "open "+tag)
	return &recMount{node: child, rec: m.rec}
}

func (m *recMount) AppendSegment(text string) Segment {
	child := &recNode{text: text, segment: true}
	m.node.children = append(m.node.children, child)
	m.rec.events = append(m.rec.events, "seg "+text)
	m.rec.segs++
	return recSegment{node: child}
}

type recSegment struct {
	node *recNode
}

func (s recSegment) Show() { s.node.visible = true }

func runToEnd(t *testing.T, task *Task, start time.Time) []time.Duration {
	t.Helper()
	now := start
	var waits []time.Duration
	for i := 0; i < 10000; i++ {
		wait, done := task.Step(now)
		if done {
			return waits
		}
		waits = append(waits, wait)
		now = now.Add(wait)
	}
	t.Fatalf("task did not finish")
	return nil
}

func fixedPacing() Pacing {
	return Pacing{Base: 10 * time.Millisecond, ShowAfter: 10 * time.Millisecond, ScrollDebounce: 50 * time.Millisecond}
}

func allVisible(n *recNode) bool {
	if n.segment && !n.visible {
		return false
	}
	for _, c := range n.children {
		if !allVisible(c) {
			return false
		}
	}
	return true
}

// assertIsomorphic 校验挂载结果与输入树结构一致，文本可由段拼接还原。
func assertIsomorphic(t *testing.T, in []*markup.Node, out []*recNode) {
	t.Helper()
	j := 0
	for _, n := range in {
		switch n.Kind {
		case markup.TextKind:
			var b strings.Builder
			for b.Len() < len(n.Text) {
				if j >= len(out) || !out[j].segment {
					t.Fatalf("missing segments for text %q (got %q)", n.Text, b.String())
				}
				b.WriteString(out[j].text)
				j++
			}
			if b.String() != n.Text {
				t.Fatalf("segments = %q, want %q", b.String(), n.Text)
			}
		case markup.ElementKind:
			if j >= len(out) || out[j].segment {
				t.Fatalf("missing element %q", n.Tag)
			}
			if out[j].tag != n.Tag {
				t.Fatalf("tag = %q, want %q", out[j].tag, n.Tag)
			}
			if !reflect.DeepEqual(out[j].attrs, n.Attrs) && (len(out[j].attrs) != 0 || len(n.Attrs) != 0) {
				t.Fatalf("attrs of %q = %v, want %v", n.Tag, out[j].attrs, n.Attrs)
			}
			assertIsomorphic(t, n.Children, out[j].children)
			j++
		case markup.FragmentKind:
			t.Fatalf("nested fragment not expected in fixture")
		}
	}
	if j != len(out) {
		t.Fatalf("mount has %d extra nodes", len(out)-j)
	}
}

func TestScenarioParagraph(t *testing.T) {
	tree := markup.Element("p", nil, markup.Text("Hello world"))
	mount := newRecMount()
	task := NewTask(tree, mount, WithPacing(fixedPacing()))

	waits := runToEnd(t, task, time.Unix(0, 0))

	wantEvents := []string{"open p", "seg Hello", "seg  ", "seg world"}
	if !reflect.DeepEqual(mount.rec.events, wantEvents) {
		t.Fatalf("events = %q, want %q", mount.rec.events, wantEvents)
	}
	if len(waits) != 2 {
		t.Fatalf("got %d suspensions, want one per word (2)", len(waits))
	}
	p := mount.node.children[0]
	var b strings.Builder
	for _, c := range p.children {
		b.WriteString(c.text)
	}
	if b.String() != "Hello world" {
		t.Fatalf("concatenation = %q", b.String())
	}
	if !allVisible(mount.node) {
		t.Fatalf("segments left invisible after completion")
	}
	if st := task.Stats(); st.Words != 2 || st.Segments != 3 || st.Elements != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestScenarioListOrder(t *testing.T) {
	tree := markup.Element("ul", nil,
		markup.Element("li", nil, markup.Text("A")),
		markup.Element("li", nil, markup.Text("B")),
	)
	mount := newRecMount()
	runToEnd(t, NewTask(tree, mount, WithPacing(fixedPacing())), time.Unix(0, 0))

	want := []string{"open ul", "open li", "seg A", "open li", "seg B"}
	if !reflect.DeepEqual(mount.rec.events, want) {
		t.Fatalf("events = %q, want %q", mount.rec.events, want)
	}
}

func TestScenarioEmptyText(t *testing.T) {
	mount := newRecMount()
	task := NewTask(markup.Text(""), mount)
	wait, done := task.Step(time.Unix(0, 0))
	if !done || wait != 0 {
		t.Fatalf("Step() = (%v, %v), want (0, true)", wait, done)
	}
	if len(mount.rec.events) != 0 {
		t.Fatalf("mount changed: %q", mount.rec.events)
	}
}

func TestScenarioAttributesCopied(t *testing.T) {
	attrs := []markup.Attr{{Name: "class", Value: "x"}}
	tree := markup.Element("strong", attrs, markup.Text("ok"))
	mount := newRecMount()
	task := NewTask(tree, mount, WithPacing(fixedPacing()))
	runToEnd(t, task, time.Unix(0, 0))

	el := mount.node.children[0]
	if el.tag != "strong" || !reflect.DeepEqual(el.attrs, attrs) {
		t.Fatalf("element = %q %v", el.tag, el.attrs)
	}
	attrs[0].Value = "changed"
	if el.attrs[0].Value != "x" {
		t.Fatalf("mount shares attribute storage with the input tree")
	}
	if len(el.children) != 1 || el.children[0].text != "ok" {
		t.Fatalf("children = %+v", el.children)
	}
	if task.Stats().Words != 1 {
		t.Fatalf("words = %d, want 1", task.Stats().Words)
	}
}

func TestEmptyTreeIsNoop(t *testing.T) {
	for name, tree := range map[string]*markup.Node{
		"nil":            nil,
		"empty fragment": markup.Fragment(),
	} {
		t.Run(name, func(t *testing.T) {
			mount := newRecMount()
			if _, done := NewTask(tree, mount).Step(time.Now()); !done {
				t.Fatalf("empty tree did not complete on first step")
			}
			if len(mount.node.children) != 0 {
				t.Fatalf("mount changed")
			}
		})
	}
}

func TestWhitespaceOnlyChildIsStructuralWithoutDelay(t *testing.T) {
	tree := markup.Element("p", nil, markup.Text(" \n "))
	mount := newRecMount()
	task := NewTask(tree, mount, WithPacing(fixedPacing()))
	if _, done := task.Step(time.Unix(0, 0)); !done {
		t.Fatalf("whitespace-only reveal should not suspend")
	}
	want := []string{"open p", "seg  \n "}
	if !reflect.DeepEqual(mount.rec.events, want) {
		t.Fatalf("events = %q, want %q", mount.rec.events, want)
	}
}

func TestStructuralFidelityForParsedMarkdown(t *testing.T) {
	src := "# Career fair\n\nBring your **résumé** and *questions*.\n\n- Tuesday  10am\n- Room `B12`\n\n1. Sign up\n2. Show up\n\n> Tip: dress *smart*\n"
	tree, err := markup.FromMarkdown(src)
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	mount := newRecMount()
	task := NewTask(tree, mount, WithPacing(fixedPacing()), WithRand(rand.New(rand.NewPCG(1, 2))))
	runToEnd(t, task, time.Unix(0, 0))

	assertIsomorphic(t, tree.Children, mount.node.children)
	if !allVisible(mount.node) {
		t.Fatalf("segments left invisible after completion")
	}
	var got strings.Builder
	var collect func(n *recNode)
	collect = func(n *recNode) {
		got.WriteString(n.text)
		for _, c := range n.children {
			collect(c)
		}
	}
	collect(mount.node)
	if got.String() != tree.PlainText() {
		t.Fatalf("text = %q, want %q", got.String(), tree.PlainText())
	}
}

func TestSiblingSubtreeFinishesBeforeNextSibling(t *testing.T) {
	tree := markup.Fragment(
		markup.Element("p", nil, markup.Text("one two"), markup.Element("em", nil, markup.Text("three"))),
		markup.Element("p", nil, markup.Text("four")),
	)
	mount := newRecMount()
	runToEnd(t, NewTask(tree, mount, WithPacing(fixedPacing())), time.Unix(0, 0))

	idx := func(ev string) int {
		for i, e := range mount.rec.events {
			if e == ev {
				return i
			}
		}
		t.Fatalf("event %q missing in %q", ev, mount.rec.events)
		return -1
	}
	if idx("seg three") > idx("seg four") || idx("open em") > idx("seg three") {
		t.Fatalf("order violated: %q", mount.rec.events)
	}
	// 第二个 <p> 的空壳必须在第一个 <p> 的全部内容之后出现。
	if mount.rec.events[len(mount.rec.events)-2] != "open p" {
		t.Fatalf("second shell created early: %q", mount.rec.events)
	}
}

func TestUnrecognizedNodeIsSkipped(t *testing.T) {
	tree := markup.Fragment(
		markup.Element("a", nil),
		&markup.Node{Kind: markup.Kind(99), Text: "junk"},
		markup.Element("b", nil),
	)
	mount := newRecMount()
	task := NewTask(tree, mount)
	runToEnd(t, task, time.Unix(0, 0))

	want := []string{"open a", "open b"}
	if !reflect.DeepEqual(mount.rec.events, want) {
		t.Fatalf("events = %q, want %q", mount.rec.events, want)
	}
	if task.Stats().Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", task.Stats().Skipped)
	}
}

func TestAbandonStopsMutation(t *testing.T) {
	tree := markup.Element("p", nil, markup.Text("a b c d"))
	mount := newRecMount()
	task := NewTask(tree, mount, WithPacing(fixedPacing()))
	if _, done := task.Step(time.Unix(0, 0)); done {
		t.Fatalf("finished too early")
	}
	before := len(mount.rec.events)
	task.Abandon()
	if _, done := task.Step(time.Unix(1, 0)); !done {
		t.Fatalf("abandoned task reports not done")
	}
	if len(mount.rec.events) != before {
		t.Fatalf("mount mutated after abandon: %q", mount.rec.events)
	}
}

func TestReducedMotionFinishesInOneStep(t *testing.T) {
	tree := markup.Element("p", nil, markup.Text("many words in one go"))
	mount := newRecMount()
	task := NewTask(tree, mount, WithReducedMotion(true))
	if _, done := task.Step(time.Now()); !done {
		t.Fatalf("reduced motion reveal suspended")
	}
	if !allVisible(mount.node) {
		t.Fatalf("reduced motion left segments hidden")
	}
}

func TestSegmentsBecomeVisibleAfterShowDelay(t *testing.T) {
	tree := markup.Element("p", nil, markup.Text("a b"))
	mount := newRecMount()
	p := fixedPacing()
	p.ShowAfter = 15 * time.Millisecond
	task := NewTask(tree, mount, WithPacing(p))
	start := time.Unix(0, 0)

	task.Step(start)
	first := mount.node.children[0].children[0]
	if first.visible {
		t.Fatalf("segment visible immediately after insertion")
	}
	task.Step(start.Add(10 * time.Millisecond))
	if first.visible {
		t.Fatalf("segment visible before ShowAfter elapsed")
	}
	task.Step(start.Add(20 * time.Millisecond))
	if !first.visible {
		t.Fatalf("segment still hidden after ShowAfter elapsed")
	}
}

func TestJitterStaysInRangeAndIsReproducible(t *testing.T) {
	p := Pacing{Base: 10 * time.Millisecond, Jitter: 30 * time.Millisecond, ShowAfter: time.Millisecond}
	text := strings.Repeat("word ", 50)
	run := func() []time.Duration {
		task := NewTask(markup.Text(text), newRecMount(), WithPacing(p), WithRand(rand.New(rand.NewPCG(7, 9))))
		return runToEnd(t, task, time.Unix(0, 0))
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different delays")
	}
	for _, d := range a {
		if d < p.Base || d >= p.Base+p.Jitter {
			t.Fatalf("delay %v outside [%v, %v)", d, p.Base, p.Base+p.Jitter)
		}
	}
}

func TestScrollRequestsAreDebouncedAndFlushed(t *testing.T) {
	mount := newRecMount()
	var atScroll []int
	scroller := ScrollFunc(func() { atScroll = append(atScroll, mount.rec.segs) })
	tree := markup.Element("p", nil, markup.Text("a b c d e f g h i j"))
	task := NewTask(tree, mount, WithPacing(fixedPacing()), WithScroller(scroller))
	runToEnd(t, task, time.Unix(0, 0))

	if len(atScroll) == 0 {
		t.Fatalf("no scroll requests")
	}
	if len(atScroll) >= mount.rec.segs {
		t.Fatalf("got %d scrolls for %d segments, want fewer", len(atScroll), mount.rec.segs)
	}
	if last := atScroll[len(atScroll)-1]; last != mount.rec.segs {
		t.Fatalf("last scroll after %d segments, want %d", last, mount.rec.segs)
	}
	if task.Stats().Scrolls != len(atScroll) {
		t.Fatalf("Stats().Scrolls = %d, want %d", task.Stats().Scrolls, len(atScroll))
	}
}

func TestRevealCompletes(t *testing.T) {
	tree := markup.Fragment(markup.Element("p", nil, markup.Text("fast path")))
	mount := newRecMount()
	stats, err := Reveal(context.Background(), tree, mount, WithPacing(Pacing{}))
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if stats.Words != 2 {
		t.Fatalf("words = %d, want 2", stats.Words)
	}
	if !allVisible(mount.node) {
		t.Fatalf("segments hidden after Reveal returned")
	}
}

func TestRevealHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mount := newRecMount()
	_, err := Reveal(ctx, markup.Text("never shown"), mount)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(mount.rec.events) != 0 {
		t.Fatalf("mount mutated: %q", mount.rec.events)
	}
}

func TestRevealStopsMidwayOnTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	mount := newRecMount()
	p := Pacing{Base: time.Hour}
	_, err := Reveal(ctx, markup.Text("first second"), mount, WithPacing(p))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if got := fmt.Sprint(mount.rec.events); got != "[seg first]" {
		t.Fatalf("events = %s, want only the first word", got)
	}
}
