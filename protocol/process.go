package protocol

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/wyfcoding/budget/logging"
	"github.com/wyfcoding/budget/money"
	"github.com/wyfcoding/budget/xerrors"
)

// LedgerAPI 是执行请求所需的账本操作，service.LedgerService 实现了该接口。
type LedgerAPI interface {
	Earn(ctx context.Context, from, to time.Time, amount float64) error
	Spend(ctx context.Context, from, to time.Time, amount float64) error
	PayTax(ctx context.Context, from, to time.Time, percent float64) error
	ComputeIncome(ctx context.Context, from, to time.Time) (float64, error)
}

type processOptions struct {
	skipRejected bool
	logger       *logging.Logger
}

// Option 配置 ReadRequests 与 Process 的行为。
type Option func(*processOptions)

func newOptions(opts []Option) processOptions {
	o := processOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	o.logger = o.logger.Named("protocol")
	return o
}

// WithLogger 指定跳过请求时使用的日志记录器，默认使用 logging.Default()。
func WithLogger(logger *logging.Logger) Option {
	return func(o *processOptions) {
		o.logger = logger
	}
}

// SkipRejected 让 Process 跳过被账本拒绝的请求（例如日期超出范围），而不是中止。
// 被跳过的 ComputeIncome 不产生输出。
func SkipRejected() Option {
	return func(o *processOptions) {
		o.skipRejected = true
	}
}

// Process 依次执行请求，每个 ComputeIncome 产生一个结果。
// 默认遇到第一个被拒绝的请求即返回错误，错误中携带该请求的行号。
func Process(ctx context.Context, api LedgerAPI, requests []Request, opts ...Option) ([]float64, error) {
	options := newOptions(opts)

	responses := make([]float64, 0)
	for _, req := range requests {
		income, err := execute(ctx, api, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return responses, err
			}
			if options.skipRejected {
				options.logger.WarnContext(ctx, "skipping rejected request", "line", req.Line, "request", req.String(), "error", err)
				continue
			}
			var xe *xerrors.Error
			if errors.As(err, &xe) {
				return responses, xe.WithContext("line", req.Line)
			}
			return responses, err
		}
		if req.Kind.IsQuery() {
			responses = append(responses, income)
		}
	}
	return responses, nil
}

func execute(ctx context.Context, api LedgerAPI, req Request) (float64, error) {
	switch req.Kind {
	case KindEarn:
		return 0, api.Earn(ctx, req.From, req.To, req.Value)
	case KindSpend:
		return 0, api.Spend(ctx, req.From, req.To, req.Value)
	case KindPayTax:
		return 0, api.PayTax(ctx, req.From, req.To, req.Value)
	case KindComputeIncome:
		return api.ComputeIncome(ctx, req.From, req.To)
	default:
		return 0, xerrors.ErrUnknownRequest.Derive("%q", req.Kind)
	}
}

// PrintResponses 每行输出一个结果，precision 为有效数字位数，0 表示最短的精确表示。
func PrintResponses(w io.Writer, responses []float64, precision int) error {
	bw := bufio.NewWriter(w)
	for _, v := range responses {
		if _, err := bw.WriteString(money.FormatSignificant(v, precision)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
