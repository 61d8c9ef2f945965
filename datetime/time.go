// Package datetime 提供账本使用的日历日期工具：严格的 YYYY-MM-DD 解析、格式化与按日历天计算的日期差。
package datetime

import (
	"time"

	"github.com/wyfcoding/budget/xerrors"
)

// DateLayout 是账本协议中使用的日期格式。
const DateLayout = "2006-01-02"

// secondsPerDay 用于把 UTC 零点之间的秒数换算为天数，UTC 不存在夏令时跳变。
const secondsPerDay = 24 * 60 * 60

// FormatDate 将时间格式化为标准日期字符串 "YYYY-MM-DD"。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 解析一个形如 "YYYY-MM-DD" 的日期字符串，返回 UTC 零点。
// 不存在的日期（例如 2001-02-30）会被拒绝。
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, xerrors.ErrInvalidDate.Derive("%q", s).WithCause(err)
	}
	return t, nil
}

// MustParseDate 与 ParseDate 相同，但在解析失败时 panic，仅用于常量与测试。
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Date 构造指定年月日的 UTC 零点。
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay 把 t 归一化为同一日历日的 UTC 零点，时区信息被丢弃，只保留年月日。
func StartOfDay(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysBetween 返回从 from 到 to 经过的整日历天数（to 早于 from 时为负）。
// 两个时间先归一化为 UTC 零点，因此闰年与时区差异不会造成偏差。
// 按 Unix 秒计算，time.Duration 约 292 年的上限不影响结果。
func DaysBetween(from, to time.Time) int {
	return int((StartOfDay(to).Unix() - StartOfDay(from).Unix()) / secondsPerDay)
}
