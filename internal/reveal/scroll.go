package reveal

import "time"

// scrollDebounce 合并窗口期内的滚动请求：首个请求立即触发，窗口内的后续
// 请求在窗口结束后的下一步触发，结束时补发挂起请求。
type scrollDebounce struct {
	target  Scroller
	window  time.Duration
	last    time.Time
	fired   bool
	pending bool
	count   int
}

func (d *scrollDebounce) request(now time.Time) {
	if d.target == nil {
		return
	}
	if !d.fired || now.Sub(d.last) >= d.window {
		d.fire(now)
		return
	}
	d.pending = true
}

func (d *scrollDebounce) tick(now time.Time) {
	if d.pending && now.Sub(d.last) >= d.window {
		d.fire(now)
	}
}

func (d *scrollDebounce) flush(now time.Time) {
	if d.pending {
		d.fire(now)
	}
}

func (d *scrollDebounce) fire(now time.Time) {
	d.pending = false
	d.fired = true
	d.last = now
	d.count++
	d.target.RequestScroll()
}
