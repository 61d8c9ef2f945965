// Package validator 提供了账本入参的通用合法性校验工具函数。
package validator

import (
	"math"
	"strings"
)

// IsEmpty 判断去空格后的字符串是否为空。
func IsEmpty(val string) bool {
	return strings.TrimSpace(val) == ""
}

// IsFinite 判断浮点数既不是 NaN 也不是无穷大。
func IsFinite(num float64) bool {
	return !math.IsNaN(num) && !math.IsInf(num, 0)
}

// IsNonNegative 判断数字是否为有限的非负数。
func IsNonNegative(num float64) bool {
	return IsFinite(num) && num >= 0
}

// IsInRange 校验数字是否在指定闭区间内。
func IsInRange(num, minVal, maxVal float64) bool {
	return num >= minVal && num <= maxVal
}

// IsValidPercent 校验百分比是否落在 [0, 100]。
func IsValidPercent(percent float64) bool {
	return IsFinite(percent) && IsInRange(percent, 0, 100)
}
