package algorithm

// IndexSegment 表示离散时间轴上的半开区间 [Left, Right)。
// 约定 Left <= Right，长度为零的区间即为空区间。
type IndexSegment struct {
	Left  int
	Right int
}

// Len 返回区间包含的下标个数。
func (s IndexSegment) Len() int {
	return s.Right - s.Left
}

// Empty 判断区间是否为空。
func (s IndexSegment) Empty() bool {
	return s.Len() == 0
}

// Contains 判断 other 是否完整地嵌套在 s 之内。
func (s IndexSegment) Contains(other IndexSegment) bool {
	return s.Left <= other.Left && other.Right <= s.Right
}

// Intersect 返回两个区间的重叠部分，不相交时返回一个空区间。
func Intersect(lhs, rhs IndexSegment) IndexSegment {
	left := max(lhs.Left, rhs.Left)
	right := min(lhs.Right, rhs.Right)
	return IndexSegment{Left: left, Right: max(left, right)}
}

// Intersects 判断两个区间是否存在公共下标。
func Intersects(lhs, rhs IndexSegment) bool {
	return !(lhs.Right <= rhs.Left || rhs.Right <= lhs.Left)
}
