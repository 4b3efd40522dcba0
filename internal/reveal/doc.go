// Package reveal 将标记树逐段展示到挂载点。
//
// 遍历为深度优先、严格按文档顺序：元素先以空壳追加再填充子节点，
// 文本按空白切分为段，每个词之后停顿一次（基础时长 + 随机抖动），
// 空白段立即插入。Task 以显式栈保存进度，由调用方在事件循环中
// 反复调用 Step；Reveal 是基于定时器的阻塞驱动。
package reveal
