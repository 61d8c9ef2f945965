// Package money 提供了基于 shopspring/decimal 的金额解析与格式化能力.
// 账本内部以 float64 计算，本包负责协议边界上的精确解析与输出.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 封装了高精度的金额处理.
type Money struct {
	value decimal.Decimal
}

// New 从 float64 创建 Money，取能还原 val 的最短十进制表示.
func New(val float64) Money {
	return Money{value: decimal.NewFromFloat(val)}
}

// NewFromString 从字符串解析金额，支持整数与小数写法（如 "20"、"12.50"）.
func NewFromString(val string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(val))
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// ToFloat 转换为 float64.
func (m Money) ToFloat() float64 {
	f, _ := m.value.Float64()
	return f
}

// ParseFloat 解析协议中的数值字段并转换为 float64.
func ParseFloat(val string) (float64, error) {
	m, err := NewFromString(val)
	if err != nil {
		return 0, err
	}
	return m.ToFloat(), nil
}

// FormatSignificant 以 digits 位有效数字输出 v，与 C 的 "%.{digits}g" 一致.
// 保留二进制浮点的完整十进制展开，便于与参考输出逐位比对.
func FormatSignificant(v float64, digits int) string {
	if digits <= 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', digits, 64)
}

// UnmarshalJSON 接受 JSON 数字或带引号的十进制字符串.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}

// MarshalJSON 以带引号的十进制字符串输出，客户端无需按浮点数解析.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}
