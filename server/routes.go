package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/budget/budget"
	"github.com/wyfcoding/budget/datetime"
	"github.com/wyfcoding/budget/jwt"
	"github.com/wyfcoding/budget/metrics"
	"github.com/wyfcoding/budget/middleware"
	"github.com/wyfcoding/budget/money"
	"github.com/wyfcoding/budget/response"
	"github.com/wyfcoding/budget/xerrors"
)

const healthPath = "/healthz"

// Ledger 是 HTTP 路由依赖的账本操作，service.LedgerService 实现了该接口.
type Ledger interface {
	Earn(ctx context.Context, from, to time.Time, amount float64) error
	Spend(ctx context.Context, from, to time.Time, amount float64) error
	PayTax(ctx context.Context, from, to time.Time, percent float64) error
	ComputeState(ctx context.Context, from, to time.Time) (budget.MoneyState, error)
	Horizon() budget.Horizon
	TaxPolicy() budget.TaxPolicy
}

// RouteOptions 路由参数.
type RouteOptions struct {
	Precision   int              // income_text 的有效数字位数
	AuthSecret  string           // 非空时写接口要求 writer 角色
	Metrics     *metrics.Metrics // 为 nil 时不暴露指标
	MetricsPath string
}

type amountRequest struct {
	From   string       `json:"from"   binding:"required"`
	To     string       `json:"to"     binding:"required"`
	Amount *money.Money `json:"amount" binding:"required"`
}

type taxRequest struct {
	From    string       `json:"from"    binding:"required"`
	To      string       `json:"to"      binding:"required"`
	Percent *money.Money `json:"percent" binding:"required"`
}

type rangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}

// IncomeResponse 是 GET /v1/income 的响应数据.
type IncomeResponse struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Income     float64     `json:"income"`
	IncomeText string      `json:"income_text"`
	Earned     money.Money `json:"earned"`
	Spent      money.Money `json:"spent"`
}

// LedgerInfo 是 GET /v1/ledger 的响应数据.
type LedgerInfo struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	DayCount  int    `json:"day_count"`
	TaxPolicy string `json:"tax_policy"`
}

type ledgerHandler struct {
	ledger    Ledger
	precision int
}

// RegisterRoutes 在 engine 上注册账本接口、健康检查与指标端点.
func RegisterRoutes(engine *gin.Engine, ledger Ledger, opts RouteOptions) {
	h := &ledgerHandler{ledger: ledger, precision: opts.Precision}

	engine.GET(healthPath, h.health)
	if opts.Metrics != nil && opts.MetricsPath != "" {
		engine.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	v1 := engine.Group("/v1")
	v1.GET("/ledger", h.info)
	v1.GET("/income", h.income)

	writes := v1.Group("")
	if opts.AuthSecret != "" {
		writes.Use(middleware.JWTAuth(opts.AuthSecret, jwt.RoleWriter))
	}
	writes.POST("/earn", h.earn)
	writes.POST("/spend", h.spend)
	writes.POST("/tax", h.tax)

	engine.NoRoute(h.notFound)
}

func (h *ledgerHandler) notFound(c *gin.Context) {
	_ = c.Error(xerrors.NotFound("route not found").WithDetail("%s %s", c.Request.Method, c.Request.URL.Path))
}

func (h *ledgerHandler) health(c *gin.Context) {
	response.SuccessWithRawData(c, gin.H{"status": "ok"})
}

func (h *ledgerHandler) info(c *gin.Context) {
	horizon := h.ledger.Horizon()
	response.Success(c, LedgerInfo{
		Start:     datetime.FormatDate(horizon.Start),
		End:       datetime.FormatDate(horizon.End),
		DayCount:  horizon.DayCount(),
		TaxPolicy: string(h.ledger.TaxPolicy()),
	})
}

func (h *ledgerHandler) earn(c *gin.Context) {
	h.applyAmount(c, h.ledger.Earn)
}

func (h *ledgerHandler) spend(c *gin.Context) {
	h.applyAmount(c, h.ledger.Spend)
}

func (h *ledgerHandler) applyAmount(c *gin.Context, apply func(context.Context, time.Time, time.Time, float64) error) {
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := apply(c.Request.Context(), from, to, req.Amount.ToFloat()); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, nil)
}

func (h *ledgerHandler) tax(c *gin.Context) {
	var req taxRequest
	if !bindJSON(c, &req) {
		return
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.ledger.PayTax(c.Request.Context(), from, to, req.Percent.ToFloat()); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, nil)
}

func (h *ledgerHandler) income(c *gin.Context) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(xerrors.ErrMalformedRequest.Derive("%v", err))
		return
	}
	from, to, err := parseRange(q.From, q.To)
	if err != nil {
		_ = c.Error(err)
		return
	}
	state, err := h.ledger.ComputeState(c.Request.Context(), from, to)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, IncomeResponse{
		From:       q.From,
		To:         q.To,
		Income:     state.Income(),
		IncomeText: money.FormatSignificant(state.Income(), h.precision),
		Earned:     money.New(state.Earned),
		Spent:      money.New(state.Spent),
	})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	f, err := datetime.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := datetime.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return f, t, nil
}

// bindJSON 解析请求体，失败时记录 413 或 ErrMalformedRequest 并返回 false.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		_ = c.Error(xerrors.ErrRequestTooLarge.Derive("body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	_ = c.Error(xerrors.ErrMalformedRequest.Derive("%v", err))
	return false
}
