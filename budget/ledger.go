// Package budget 实现按日期区间记账的账本引擎。
//
// 账本把固定时间范围内的每一天映射为线段树的一个叶子，收入、支出与纳税都作为
// 区间批量操作延迟下推，任意日期区间的净收入查询均为 O(log N)。
//
// Ledger 不是并发安全的；在并发环境中由宿主（见 service 包）对每个账本实例串行化访问。
package budget

import (
	"time"

	"github.com/wyfcoding/budget/algorithm"
	"github.com/wyfcoding/budget/validator"
	"github.com/wyfcoding/budget/xerrors"
)

// TaxPolicy 决定 PayTax 如何对待 [0, 100] 之外的百分比。
type TaxPolicy string

const (
	// TaxPolicyStrict 拒绝 [0, 100] 之外的百分比。
	TaxPolicyStrict TaxPolicy = "strict"
	// TaxPolicyPermissive 接受任意有限百分比：大于 100 时收入变为负数，小于 0 时收入被放大。
	TaxPolicyPermissive TaxPolicy = "permissive"
)

// ParseTaxPolicy 解析配置中的税率策略，空字符串视为 strict。
func ParseTaxPolicy(s string) (TaxPolicy, error) {
	switch TaxPolicy(s) {
	case "", TaxPolicyStrict:
		return TaxPolicyStrict, nil
	case TaxPolicyPermissive:
		return TaxPolicyPermissive, nil
	default:
		return "", xerrors.InvalidArg("unknown tax policy").WithDetail("%q, expected strict or permissive", s)
	}
}

// Config 是创建账本所需的参数。
type Config struct {
	Horizon   Horizon
	TaxPolicy TaxPolicy
}

// DefaultConfig 返回默认时间范围与 strict 税率策略。
func DefaultConfig() Config {
	return Config{Horizon: DefaultHorizon(), TaxPolicy: TaxPolicyStrict}
}

// Ledger 是账本门面：把日期区间转换为下标区间，再对线段树发起一次操作。
type Ledger struct {
	timeline  TimelineIndex
	tree      *algorithm.SummingSegmentTree[MoneyState, BulkLinearUpdater]
	horizon   Horizon
	taxPolicy TaxPolicy
}

// NewLedger 在 cfg.Horizon 上构建一个所有金额为零的账本。
func NewLedger(cfg Config) (*Ledger, error) {
	horizon, err := NewHorizon(cfg.Horizon.Start, cfg.Horizon.End)
	if err != nil {
		return nil, err
	}
	policy, err := ParseTaxPolicy(string(cfg.TaxPolicy))
	if err != nil {
		return nil, err
	}

	timeline := NewTimelineIndex(horizon)
	return &Ledger{
		timeline:  timeline,
		tree:      algorithm.NewSummingSegmentTree[MoneyState](timeline.DayCount(), IdentityUpdater()),
		horizon:   horizon,
		taxPolicy: policy,
	}, nil
}

// Horizon 返回账本的时间范围。
func (l *Ledger) Horizon() Horizon {
	return l.horizon
}

// TaxPolicy 返回当前税率策略。
func (l *Ledger) TaxPolicy() TaxPolicy {
	return l.taxPolicy
}

// SetTaxPolicy 切换税率策略，只影响之后的 PayTax 调用。
func (l *Ledger) SetTaxPolicy(policy TaxPolicy) error {
	p, err := ParseTaxPolicy(string(policy))
	if err != nil {
		return err
	}
	l.taxPolicy = p
	return nil
}

// Earn 把 amount 平均分摊到 [from, to] 的每一天作为收入。
func (l *Ledger) Earn(from, to time.Time, amount float64) error {
	return l.addDaily(from, to, amount, func(rate float64) MoneyState {
		return MoneyState{Earned: rate}
	})
}

// Spend 把 amount 平均分摊到 [from, to] 的每一天作为支出。
func (l *Ledger) Spend(from, to time.Time, amount float64) error {
	return l.addDaily(from, to, amount, func(rate float64) MoneyState {
		return MoneyState{Spent: rate}
	})
}

func (l *Ledger) addDaily(from, to time.Time, amount float64, delta func(rate float64) MoneyState) error {
	if !validator.IsNonNegative(amount) {
		return xerrors.ErrInvalidAmount.Derive("%v", amount)
	}
	segment, err := l.timeline.DateRangeToSegment(from, to)
	if err != nil {
		return err
	}

	rate := amount / float64(segment.Len())
	l.tree.AddBulkOperation(segment, AddMoney(delta(rate)))
	return nil
}

// PayTax 对 [from, to] 每一天已有的收入扣除 percent%。税不会作用于之后才记入的收入。
// percent 为 0 时不做任何树操作。
func (l *Ledger) PayTax(from, to time.Time, percent float64) error {
	if !validator.IsFinite(percent) ||
		(l.taxPolicy == TaxPolicyStrict && !validator.IsValidPercent(percent)) {
		return xerrors.ErrInvalidPercent.Derive("%v", percent)
	}
	segment, err := l.timeline.DateRangeToSegment(from, to)
	if err != nil {
		return err
	}
	if percent == 0 {
		return nil
	}

	l.tree.AddBulkOperation(segment, ApplyTax(1.0-percent/100.0))
	return nil
}

// ComputeState 返回 [from, to] 内的总收入与总支出。
func (l *Ledger) ComputeState(from, to time.Time) (MoneyState, error) {
	segment, err := l.timeline.DateRangeToSegment(from, to)
	if err != nil {
		return MoneyState{}, err
	}
	return l.tree.ComputeSum(segment), nil
}

// ComputeIncome 返回 [from, to] 内的净收入。
func (l *Ledger) ComputeIncome(from, to time.Time) (float64, error) {
	state, err := l.ComputeState(from, to)
	if err != nil {
		return 0, err
	}
	return state.Income(), nil
}
