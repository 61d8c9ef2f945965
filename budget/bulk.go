package budget

import "github.com/wyfcoding/budget/algorithm"

// BulkMoneyAdder 给区间内每一天加上固定的日收入/日支出。
type BulkMoneyAdder struct {
	Delta MoneyState
}

// BulkTaxApplier 把区间内每一天已有的收入乘以 Factor。
type BulkTaxApplier struct {
	Factor float64
}

// BulkLinearUpdater 是两类批量操作的合成：先按 Tax 缩放已有收入，再按 Add 追加每日金额。
// 单位元为 {Factor: 1, Delta: {0, 0}}，应通过 IdentityUpdater 获取，零值不是单位元。
type BulkLinearUpdater struct {
	Tax BulkTaxApplier
	Add BulkMoneyAdder
}

// IdentityUpdater 返回不改变任何聚合值的批量操作。
func IdentityUpdater() BulkLinearUpdater {
	return BulkLinearUpdater{Tax: BulkTaxApplier{Factor: 1}}
}

// AddMoney 构造只追加每日金额的批量操作。
func AddMoney(delta MoneyState) BulkLinearUpdater {
	u := IdentityUpdater()
	u.Add.Delta = delta
	return u
}

// ApplyTax 构造只缩放收入的批量操作。
func ApplyTax(factor float64) BulkLinearUpdater {
	return BulkLinearUpdater{Tax: BulkTaxApplier{Factor: factor}}
}

// CombineWith 返回“先执行 u，再执行 next”的复合操作。
// next 的税率同样作用于 u 尚未落地的每日收入增量；支出从不计税。
// 该合成满足结合律，但不满足交换律。
func (u BulkLinearUpdater) CombineWith(next BulkLinearUpdater) BulkLinearUpdater {
	u.Tax.Factor *= next.Tax.Factor
	u.Add.Delta.Earned = u.Add.Delta.Earned * next.Tax.Factor
	u.Add.Delta = u.Add.Delta.Add(next.Add.Delta)
	return u
}

// Collapse 把操作作用到区间 segment 的聚合值 origin 上。
// 税率只作用于已有收入，每日增量按区间长度放大后再累加。
func (u BulkLinearUpdater) Collapse(origin MoneyState, segment algorithm.IndexSegment) MoneyState {
	origin.Earned *= u.Tax.Factor
	return origin.Add(u.Add.Delta.Scale(float64(segment.Len())))
}
