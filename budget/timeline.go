package budget

import (
	"time"

	"github.com/wyfcoding/budget/algorithm"
	"github.com/wyfcoding/budget/datetime"
	"github.com/wyfcoding/budget/xerrors"
)

// Horizon 是账本可以索引的日期范围 [Start, End)，两端均为 UTC 日历日。
type Horizon struct {
	Start time.Time
	End   time.Time
}

// DefaultHorizon 返回 [2000-01-01, 2100-01-01)，共 36525 天。
func DefaultHorizon() Horizon {
	return Horizon{
		Start: datetime.Date(2000, time.January, 1),
		End:   datetime.Date(2100, time.January, 1),
	}
}

// NewHorizon 归一化并校验日期范围，End 必须晚于 Start。
func NewHorizon(start, end time.Time) (Horizon, error) {
	h := Horizon{Start: datetime.StartOfDay(start), End: datetime.StartOfDay(end)}
	if err := h.Validate(); err != nil {
		return Horizon{}, err
	}
	return h, nil
}

// Validate 检查 End 是否晚于 Start。
func (h Horizon) Validate() error {
	if h.DayCount() <= 0 {
		return xerrors.ErrInvalidHorizon.Derive("[%s, %s)", datetime.FormatDate(h.Start), datetime.FormatDate(h.End))
	}
	return nil
}

// DayCount 返回范围内的天数。
func (h Horizon) DayCount() int {
	return datetime.DaysBetween(h.Start, h.End)
}

// Contains 判断 date 所在的日历日是否落在 [Start, End) 之内。
func (h Horizon) Contains(date time.Time) bool {
	day := datetime.StartOfDay(date)
	return !day.Before(datetime.StartOfDay(h.Start)) && day.Before(datetime.StartOfDay(h.End))
}

func (h Horizon) String() string {
	return "[" + datetime.FormatDate(h.Start) + ", " + datetime.FormatDate(h.End) + ")"
}

// TimelineIndex 把日历日期映射为线段树的整数下标。
type TimelineIndex struct {
	horizon  Horizon
	dayCount int
}

// NewTimelineIndex 创建以 horizon.Start 为第 0 天的时间轴。
func NewTimelineIndex(horizon Horizon) TimelineIndex {
	return TimelineIndex{horizon: horizon, dayCount: horizon.DayCount()}
}

// DayCount 返回时间轴的长度。
func (ti TimelineIndex) DayCount() int {
	return ti.dayCount
}

// DayIndex 返回 date 距离起始日的天数，超出范围时返回 ErrDateOutOfHorizon。
func (ti TimelineIndex) DayIndex(date time.Time) (int, error) {
	if !ti.horizon.Contains(date) {
		return 0, xerrors.ErrDateOutOfHorizon.Derive("%s not in %s", datetime.FormatDate(date), ti.horizon).
			WithContext("date", datetime.FormatDate(date))
	}
	return datetime.DaysBetween(ti.horizon.Start, date), nil
}

// DateRangeToSegment 把闭区间 [from, to] 转换为半开区间 [DayIndex(from), DayIndex(to)+1)。
// 单日区间的长度为 1。
func (ti TimelineIndex) DateRangeToSegment(from, to time.Time) (algorithm.IndexSegment, error) {
	left, err := ti.DayIndex(from)
	if err != nil {
		return algorithm.IndexSegment{}, err
	}
	right, err := ti.DayIndex(to)
	if err != nil {
		return algorithm.IndexSegment{}, err
	}
	if left > right {
		return algorithm.IndexSegment{}, xerrors.ErrInvalidDateRange.Derive("%s > %s",
			datetime.FormatDate(from), datetime.FormatDate(to))
	}
	return algorithm.IndexSegment{Left: left, Right: right + 1}, nil
}
