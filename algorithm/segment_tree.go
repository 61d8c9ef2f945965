package algorithm

// Summable 约束线段树中聚合值的类型：在 Add 下构成交换幺半群，
// 且其零值即为单位元。
type Summable[D any] interface {
	Add(other D) D
}

// BulkOperation 约束可延迟下推的批量操作。
// CombineWith 返回“先执行接收者，再执行 next”的复合操作；
// Collapse 把操作直接作用到区间 segment 的聚合值上。
type BulkOperation[D any, Op any] interface {
	CombineWith(next Op) Op
	Collapse(origin D, segment IndexSegment) D
}

// noChild 标记节点缺失的子节点。
const noChild int32 = -1

// lazyNode 是线段树在节点池中的一个节点，子节点以下标引用。
type lazyNode[D any, Op any] struct {
	segment IndexSegment
	data    D  // 已包含所有下推到此节点为止的批量操作
	pending Op // 已作用于 data、尚未下推给子节点的批量操作
	left    int32
	right   int32
}

// SummingSegmentTree (带懒标记的求和线段树) 在 [0, N) 上维护区间聚合值，
// 支持区间求和与区间批量操作，两者的均摊复杂度均为 O(log N)。
// 完全覆盖的子树只在其根节点记录批量操作，直到后续遍历需要深入时才下推给子节点。
//
// 树的形状在构造时一次性确定，此后只有 data 与 pending 会变化。
// SummingSegmentTree 不是并发安全的，调用方需要自行串行化访问。
type SummingSegmentTree[D Summable[D], Op BulkOperation[D, Op]] struct {
	nodes    []lazyNode[D, Op] // 节点池，构造完成后不再扩容
	root     int32
	size     int
	identity Op
}

// NewSummingSegmentTree 在 [0, size) 上构建一棵所有聚合值为零值的线段树。
// identity 是批量操作的单位元，每次下推后用它重置节点的懒标记。
func NewSummingSegmentTree[D Summable[D], Op BulkOperation[D, Op]](size int, identity Op) *SummingSegmentTree[D, Op] {
	size = max(size, 0)
	t := &SummingSegmentTree[D, Op]{
		nodes:    make([]lazyNode[D, Op], 0, max(2*size-1, 0)),
		size:     size,
		identity: identity,
	}
	t.root = t.build(IndexSegment{Left: 0, Right: size})
	return t
}

// Size 返回线段树覆盖的下标个数 N。
func (t *SummingSegmentTree[D, Op]) Size() int {
	return t.size
}

// ComputeSum 返回 segment 与 [0, N) 重叠部分的聚合值。
func (t *SummingSegmentTree[D, Op]) ComputeSum(segment IndexSegment) D {
	return t.query(t.root, segment)
}

// AddBulkOperation 把 operation 作用到 segment 与 [0, N) 重叠部分的每个下标上。
func (t *SummingSegmentTree[D, Op]) AddBulkOperation(segment IndexSegment, operation Op) {
	t.update(t.root, segment, operation)
}

// build 递归二分 segment 直到长度为 1 的叶子，空区间不产生节点。
// 左子区间为 [left, mid)，右子区间为 [mid, right)，mid = left + len/2。
func (t *SummingSegmentTree[D, Op]) build(segment IndexSegment) int32 {
	if segment.Empty() {
		return noChild
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, lazyNode[D, Op]{
		segment: segment,
		pending: t.identity,
		left:    noChild,
		right:   noChild,
	})
	if segment.Len() == 1 {
		return idx
	}

	middle := segment.Left + segment.Len()/2
	left := t.build(IndexSegment{Left: segment.Left, Right: middle})
	right := t.build(IndexSegment{Left: middle, Right: segment.Right})
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

func (t *SummingSegmentTree[D, Op]) query(idx int32, segment IndexSegment) D {
	var zero D
	if idx == noChild || !Intersects(t.nodes[idx].segment, segment) {
		return zero
	}

	t.propagate(idx)
	node := &t.nodes[idx]
	if segment.Contains(node.segment) {
		return node.data
	}
	return t.query(node.left, segment).Add(t.query(node.right, segment))
}

func (t *SummingSegmentTree[D, Op]) update(idx int32, segment IndexSegment, operation Op) {
	if idx == noChild || !Intersects(t.nodes[idx].segment, segment) {
		return
	}

	t.propagate(idx)
	node := &t.nodes[idx]
	if segment.Contains(node.segment) {
		node.pending = node.pending.CombineWith(operation)
		node.data = operation.Collapse(node.data, node.segment)
		return
	}

	t.update(node.left, segment, operation)
	t.update(node.right, segment, operation)
	node.data = t.dataOf(node.left).Add(t.dataOf(node.right))
}

// propagate 把节点的懒标记下推给存在的子节点，随后将其重置为单位元。
// 子节点的懒标记先于父节点的懒标记生效。
func (t *SummingSegmentTree[D, Op]) propagate(idx int32) {
	node := &t.nodes[idx]
	for _, childIdx := range [2]int32{node.left, node.right} {
		if childIdx == noChild {
			continue
		}
		child := &t.nodes[childIdx]
		child.pending = child.pending.CombineWith(node.pending)
		child.data = node.pending.Collapse(child.data, child.segment)
	}
	node.pending = t.identity
}

func (t *SummingSegmentTree[D, Op]) dataOf(idx int32) D {
	var zero D
	if idx == noChild {
		return zero
	}
	return t.nodes[idx].data
}
