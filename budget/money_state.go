package budget

// MoneyState 是线段树中每个区间的聚合值：区间内的总收入与总支出。
// 在 Add 下构成交换幺半群，零值 {0, 0} 为单位元。
type MoneyState struct {
	Earned float64 `json:"earned"`
	Spent  float64 `json:"spent"`
}

// Income 返回净收入 Earned - Spent。
func (m MoneyState) Income() float64 {
	return m.Earned - m.Spent
}

// Add 返回两个聚合值的逐项之和。
func (m MoneyState) Add(other MoneyState) MoneyState {
	return MoneyState{
		Earned: m.Earned + other.Earned,
		Spent:  m.Spent + other.Spent,
	}
}

// Scale 把两项同时乘以 factor，用于把每日速率摊到整个区间。
func (m MoneyState) Scale(factor float64) MoneyState {
	return MoneyState{
		Earned: m.Earned * factor,
		Spent:  m.Spent * factor,
	}
}
