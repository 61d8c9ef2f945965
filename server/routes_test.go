package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/budget/budget"
	"github.com/wyfcoding/budget/jwt"
	"github.com/wyfcoding/budget/metrics"
	"github.com/wyfcoding/budget/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail string          `json:"detail"`
	Data   json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestAPI(t *testing.T, opts RouteOptions) *testAPI {
	t.Helper()
	m := metrics.NewMetrics("budget-test")
	svc, err := service.New(budget.DefaultConfig(), m, nil)
	require.NoError(t, err)

	engine := NewLedgerEngine(EngineOptions{
		ServiceName:  "budget-test",
		Logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics:      m,
		MetricsPath:  "/metrics",
		MaxBodyBytes: 1 << 10,
	})
	opts.Metrics = m
	opts.MetricsPath = "/metrics"
	RegisterRoutes(engine, svc, opts)
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, body string) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (a *testAPI) income(from, to string) IncomeResponse {
	a.t.Helper()
	code, env := a.do(http.MethodGet, "/v1/income?from="+from+"&to="+to, "")
	require.Equal(a.t, http.StatusOK, code, env.Msg)
	var out IncomeResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	return out
}

func TestLedgerRoutes_Scenario(t *testing.T) {
	api := newTestAPI(t, RouteOptions{Precision: 25})

	code, _ := api.do(http.MethodPost, "/v1/earn", `{"from":"2000-01-02","to":"2000-01-06","amount":20}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 20.0, api.income("2000-01-01", "2001-01-01").Income)

	code, _ = api.do(http.MethodPost, "/v1/tax", `{"from":"2000-01-02","to":"2000-01-03","percent":13}`)
	require.Equal(t, http.StatusOK, code)
	got := api.income("2000-01-01", "2001-01-01")
	assert.Equal(t, 18.96, got.Income)
	assert.Equal(t, "18.96000000000000085265128", got.IncomeText)

	code, _ = api.do(http.MethodPost, "/v1/spend", `{"from":"2000-12-30","to":"2001-01-02","amount":"14"}`)
	require.Equal(t, http.StatusOK, code)
	got = api.income("2000-01-01", "2001-01-01")
	assert.Equal(t, 8.46, got.Income)
	assert.Equal(t, 18.96, got.Earned.ToFloat())
	assert.Equal(t, 10.5, got.Spent.ToFloat())
}

func TestLedgerRoutes_Errors(t *testing.T) {
	api := newTestAPI(t, RouteOptions{})

	tests := []struct {
		name, method, path, body string
		wantHTTP, wantCode       int
	}{
		{"missing amount", http.MethodPost, "/v1/earn", `{"from":"2000-01-01","to":"2000-01-02"}`, http.StatusBadRequest, 400105},
		{"bad json", http.MethodPost, "/v1/spend", `{"from":`, http.StatusBadRequest, 400105},
		{"bad date", http.MethodPost, "/v1/earn", `{"from":"2000-02-30","to":"2000-03-01","amount":1}`, http.StatusBadRequest, 400107},
		{"reversed range", http.MethodPost, "/v1/earn", `{"from":"2000-03-01","to":"2000-02-01","amount":1}`, http.StatusBadRequest, 400102},
		{"negative amount", http.MethodPost, "/v1/spend", `{"from":"2000-01-01","to":"2000-01-02","amount":-5}`, http.StatusBadRequest, 400103},
		{"percent above 100", http.MethodPost, "/v1/tax", `{"from":"2000-01-01","to":"2000-01-02","percent":101}`, http.StatusBadRequest, 400104},
		{"out of horizon", http.MethodGet, "/v1/income?from=1999-12-31&to=2000-01-01", "", http.StatusBadRequest, 416101},
		{"missing query", http.MethodGet, "/v1/income?from=2000-01-01", "", http.StatusBadRequest, 400105},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantHTTP, code)
			assert.Equal(t, tt.wantCode, env.Code, env.Detail)
		})
	}

	code, _ := api.do(http.MethodPost, "/v1/earn", `{"from":"2000-01-01","to":"2000-01-02","amount":`+strings.Repeat("1", 2048)+`}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestLedgerRoutes_InfoHealthMetrics(t *testing.T) {
	api := newTestAPI(t, RouteOptions{})

	code, env := api.do(http.MethodGet, "/v1/ledger", "")
	require.Equal(t, http.StatusOK, code)
	var info LedgerInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, LedgerInfo{Start: "2000-01-01", End: "2100-01-01", DayCount: 36525, TaxPolicy: "strict"}, info)

	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	code, env = api.do(http.MethodGet, "/v1/balance", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 404, env.Code)
	assert.Equal(t, "GET /v1/balance", env.Detail)

	api.do(http.MethodPost, "/v1/spend", `{"from":"2000-01-01","to":"2000-01-02","amount":"0.5"}`)
	code, env = api.do(http.MethodGet, "/v1/income?from=2000-01-01&to=2000-01-02", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"spent":"0.5"`)

	api.do(http.MethodPost, "/v1/earn", `{"from":"2000-01-01","to":"2000-01-02","amount":4}`)
	rec = httptest.NewRecorder()
	api.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `budget_ledger_operations_total{operation="earn",status="ok"} 1`)
	assert.Contains(t, body, `http_server_requests_total{method="POST",path="/v1/earn",status="200"} 1`)
	assert.NotContains(t, body, `path="/healthz"`)
}

func TestLedgerRoutes_Auth(t *testing.T) {
	const secret = "s3cret"
	api := newTestAPI(t, RouteOptions{AuthSecret: secret})
	body := `{"from":"2000-01-01","to":"2000-01-02","amount":4}`

	code, _ := api.do(http.MethodPost, "/v1/earn", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	// 读接口不需要令牌
	assert.Zero(t, api.income("2000-01-01", "2000-01-02").Income)

	token, err := jwt.GenerateToken("ops", []string{jwt.RoleWriter}, secret, "budget", time.Minute)
	require.NoError(t, err)
	api.token = token
	code, _ = api.do(http.MethodPost, "/v1/earn", body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, api.income("2000-01-01", "2000-01-02").Income)
}

func TestNewDefaultGinEngine(t *testing.T) {
	var order bytes.Buffer
	engine := NewDefaultGinEngine(
		func(c *gin.Context) { order.WriteString("a"); c.Next() },
		func(c *gin.Context) { order.WriteString("b"); c.Next() },
	)
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ab", order.String())
}
