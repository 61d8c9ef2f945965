// Package service 为账本提供宿主侧的并发串行化、指标与日志。
package service

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/budget/budget"
	"github.com/wyfcoding/budget/logging"
	"github.com/wyfcoding/budget/metrics"
	"github.com/wyfcoding/budget/tracing"
)

// 操作名称，用作指标标签与日志字段。
const (
	OpEarn          = "earn"
	OpSpend         = "spend"
	OpPayTax        = "pay_tax"
	OpComputeIncome = "compute_income"
	OpComputeState  = "compute_state"
)

// LedgerService 用一把互斥锁串行化对同一个账本的所有访问。
// 读操作同样需要加锁：查询会下推懒标记，修改树的内部状态。
type LedgerService struct {
	mu      sync.Mutex
	ledger  *budget.Ledger
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewLedgerService 包装一个已创建的账本。m 为 nil 时不记录指标。
func NewLedgerService(ledger *budget.Ledger, m *metrics.Metrics, logger *logging.Logger) *LedgerService {
	if logger == nil {
		logger = logging.Default()
	}
	if m != nil {
		m.LedgerHorizonDays.Set(float64(ledger.Horizon().DayCount()))
	}
	return &LedgerService{
		ledger:  ledger,
		metrics: m,
		logger:  logger.Named("ledger"),
	}
}

// New 按 cfg 创建账本并包装为服务。
func New(cfg budget.Config, m *metrics.Metrics, logger *logging.Logger) (*LedgerService, error) {
	ledger, err := budget.NewLedger(cfg)
	if err != nil {
		return nil, err
	}
	return NewLedgerService(ledger, m, logger), nil
}

// Horizon 返回账本的时间范围。
func (s *LedgerService) Horizon() budget.Horizon {
	return s.ledger.Horizon()
}

// TaxPolicy 返回当前税率策略。
func (s *LedgerService) TaxPolicy() budget.TaxPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.TaxPolicy()
}

// SetTaxPolicy 切换税率策略，供配置热更新使用。
func (s *LedgerService) SetTaxPolicy(policy budget.TaxPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.ledger.TaxPolicy()
	if err := s.ledger.SetTaxPolicy(policy); err != nil {
		return err
	}
	if old != s.ledger.TaxPolicy() {
		s.logger.Info("tax policy changed", "from", old, "to", s.ledger.TaxPolicy())
	}
	return nil
}

// Earn 记录 [from, to] 内的收入。
func (s *LedgerService) Earn(ctx context.Context, from, to time.Time, amount float64) error {
	return s.do(ctx, OpEarn, func() error {
		return s.ledger.Earn(from, to, amount)
	}, "from", from, "to", to, "amount", amount)
}

// Spend 记录 [from, to] 内的支出。
func (s *LedgerService) Spend(ctx context.Context, from, to time.Time, amount float64) error {
	return s.do(ctx, OpSpend, func() error {
		return s.ledger.Spend(from, to, amount)
	}, "from", from, "to", to, "amount", amount)
}

// PayTax 对 [from, to] 内已有的收入纳税。
func (s *LedgerService) PayTax(ctx context.Context, from, to time.Time, percent float64) error {
	return s.do(ctx, OpPayTax, func() error {
		return s.ledger.PayTax(from, to, percent)
	}, "from", from, "to", to, "percent", percent)
}

// ComputeIncome 查询 [from, to] 内的净收入。
func (s *LedgerService) ComputeIncome(ctx context.Context, from, to time.Time) (float64, error) {
	var income float64
	err := s.do(ctx, OpComputeIncome, func() error {
		var err error
		income, err = s.ledger.ComputeIncome(from, to)
		return err
	}, "from", from, "to", to)
	return income, err
}

// ComputeState 查询 [from, to] 内的收入与支出明细。
func (s *LedgerService) ComputeState(ctx context.Context, from, to time.Time) (budget.MoneyState, error) {
	var state budget.MoneyState
	err := s.do(ctx, OpComputeState, func() error {
		var err error
		state, err = s.ledger.ComputeState(from, to)
		return err
	}, "from", from, "to", to)
	return state, err
}

func (s *LedgerService) do(ctx context.Context, op string, fn func() error, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "ledger."+op)
	defer span.End()

	start := time.Now()
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		tracing.SetError(ctx, err)
		s.logger.WarnContext(ctx, "ledger operation rejected", append([]any{"operation", op, "error", err}, args...)...)
	} else {
		s.logger.DebugContext(ctx, "ledger operation applied", append([]any{"operation", op, "duration", elapsed}, args...)...)
	}

	if s.metrics != nil {
		s.metrics.LedgerOperationsTotal.WithLabelValues(op, status).Inc()
		s.metrics.LedgerOperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	return err
}
