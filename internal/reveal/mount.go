package reveal

import "career-chat/internal/markup"

// Container 是挂载点中的一个活动容器。渲染器只追加，不删除、不重排。
type Container interface {
	// AppendElement 追加一个无子节点的元素并返回它，属性已复制。
	AppendElement(tag string, attrs []markup.Attr) Container
	// AppendSegment 追加一个初始不可见的段。
	AppendSegment(text string) Segment
}

// Segment 是已插入的段，Show 将其切换为完全可见。
type Segment interface {
	Show()
}

// Scroller 接收“滚动到底部”请求，无返回值。
type Scroller interface {
	RequestScroll()
}

// ScrollFunc 让普通函数满足 Scroller。
type ScrollFunc func()

func (f ScrollFunc) RequestScroll() {
	if f != nil {
		f()
	}
}
