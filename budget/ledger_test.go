package budget

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/budget/datetime"
	"github.com/wyfcoding/budget/xerrors"
)

const tolerance = 1e-9

func d(s string) time.Time {
	return datetime.MustParseDate(s)
}

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(DefaultConfig())
	require.NoError(t, err)
	return l
}

func income(t *testing.T, l *Ledger, from, to string) float64 {
	t.Helper()
	v, err := l.ComputeIncome(d(from), d(to))
	require.NoError(t, err)
	return v
}

func TestLedger_Scenarios(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Earn(d("2000-01-02"), d("2000-01-06"), 20))
	assert.InDelta(t, 20, income(t, l, "2000-01-01", "2001-01-01"), tolerance)

	require.NoError(t, l.PayTax(d("2000-01-02"), d("2000-01-03"), 13))
	assert.InDelta(t, 18.96, income(t, l, "2000-01-01", "2001-01-01"), tolerance)

	require.NoError(t, l.Spend(d("2000-12-30"), d("2001-01-02"), 14))
	assert.InDelta(t, 8.46, income(t, l, "2000-01-01", "2001-01-01"), tolerance)

	// 该日只有支出，没有可纳税的收入
	require.NoError(t, l.PayTax(d("2000-12-30"), d("2000-12-30"), 13))
	assert.InDelta(t, 8.46, income(t, l, "2000-01-01", "2001-01-01"), tolerance)
}

func TestLedger_FullTaxRoundTrip(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Earn(d("2000-01-01"), d("2000-01-04"), 100))
	assert.InDelta(t, 100, income(t, l, "2000-01-01", "2000-01-04"), tolerance)
	assert.InDelta(t, 50, income(t, l, "2000-01-01", "2000-01-02"), tolerance)

	require.NoError(t, l.PayTax(d("2000-01-01"), d("2000-01-02"), 100))
	require.NoError(t, l.PayTax(d("2000-01-01"), d("2000-01-02"), 100))
	assert.InDelta(t, 0, income(t, l, "2000-01-01", "2000-01-02"), tolerance)
	assert.InDelta(t, 50, income(t, l, "2000-01-01", "2000-01-04"), tolerance)
}

func TestLedger_ConsecutiveTaxes(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.Earn(d("2000-01-01"), d("2000-01-04"), 100))
	require.NoError(t, l.PayTax(d("2000-01-01"), d("2000-01-02"), 50))
	require.NoError(t, l.PayTax(d("2000-01-01"), d("2000-01-02"), 20))

	assert.InDelta(t, 20, income(t, l, "2000-01-01", "2000-01-02"), tolerance)
	assert.InDelta(t, 70, income(t, l, "2000-01-01", "2000-01-04"), tolerance)
}

func TestLedger_InterleavedTaxes(t *testing.T) {
	l := newTestLedger(t)
	steps := []struct {
		op       string
		from, to string
		value    float64
	}{
		{"tax", "2001-02-08", "2001-02-11", 73},
		{"tax", "2001-02-01", "2001-02-10", 50},
		{"tax", "2001-02-14", "2001-02-18", 56},
		{"query", "2001-02-07", "2001-02-09", 0},
		{"earn", "2001-02-01", "2001-02-06", 885317},
		{"earn", "2001-02-12", "2001-02-19", 134326},
		{"query", "2001-02-18", "2001-02-28", 33581.5},
		{"earn", "2001-02-06", "2001-02-09", 517864},
		{"tax", "2001-02-03", "2001-02-28", 11},
		{"tax", "2001-02-13", "2001-02-24", 7},
		{"tax", "2001-02-02", "2001-02-04", 35},
		{"tax", "2001-02-13", "2001-02-23", 22},
		{"query", "2001-02-21", "2001-02-22", 0},
		{"tax", "2001-02-01", "2001-02-12", 43},
		{"tax", "2001-02-11", "2001-02-14", 23},
		{"query", "2001-02-06", "2001-02-28", 415019.7456027801381424069},
	}

	for i, s := range steps {
		switch s.op {
		case "tax":
			require.NoError(t, l.PayTax(d(s.from), d(s.to), s.value))
		case "earn":
			require.NoError(t, l.Earn(d(s.from), d(s.to), s.value))
		case "query":
			assert.InDelta(t, s.value, income(t, l, s.from, s.to), 1e-6, "step %d", i)
		}
	}
}

func TestLedger_LongRangeDistribution(t *testing.T) {
	l := newTestLedger(t)
	earn := func(from, to string, amount float64) {
		require.NoError(t, l.Earn(d(from), d(to), amount))
	}
	check := func(from, to string, want float64) {
		assert.InEpsilon(t, want, income(t, l, from, to), tolerance, "%s..%s", from, to)
	}

	earn("2006-03-13", "2051-08-10", 798674)
	earn("2026-07-09", "2039-08-22", 714256)
	earn("2035-08-17", "2093-04-28", 393007)
	earn("2029-09-22", "2089-01-24", 860606)
	earn("2051-12-02", "2057-03-16", 915383)
	earn("2006-10-09", "2066-10-09", 971784)
	earn("2048-08-08", "2055-05-21", 563885)
	check("2010-01-20", "2034-03-30", 1303347.708403596887364984)
	check("2032-12-16", "2048-03-02", 1183690.667366203851997852)
	earn("2011-03-24", "2085-04-12", 375555)
	check("2042-02-16", "2098-07-20", 3293477.720063054468482733)
	check("2005-06-08", "2092-09-28", 5589196.619974760338664055)
	check("2004-11-22", "2015-11-03", 339946.1413161378586664796)
	check("2066-07-25", "2083-02-14", 440377.5377876986749470234)
	earn("2055-11-26", "2090-03-18", 7389)
	check("2004-06-14", "2048-02-20", 2661417.547969063278287649)
	check("2016-08-18", "2068-09-21", 4678810.577843304723501205)
	earn("2001-05-19", "2028-06-03", 178349)
	earn("2040-02-16", "2089-01-27", 319670)
	check("2042-03-21", "2087-10-02", 3535268.160334907937794924)
	check("2006-07-07", "2067-07-07", 5334981.520989582873880863)
	check("2045-11-12", "2050-06-27", 465212.7069902255898341537)
	check("2012-05-29", "2093-06-10", 5819281.313656309619545937)
	check("2035-01-28", "2053-09-12", 2149485.42075772350654006)
	check("2032-10-06", "2070-01-23", 3899073.412191837094724178)
}

func TestLedger_OrderSensitivity(t *testing.T) {
	earnFirst := newTestLedger(t)
	require.NoError(t, earnFirst.Earn(d("2010-05-01"), d("2010-05-10"), 100))
	require.NoError(t, earnFirst.PayTax(d("2010-05-01"), d("2010-05-10"), 50))

	taxFirst := newTestLedger(t)
	require.NoError(t, taxFirst.PayTax(d("2010-05-01"), d("2010-05-10"), 50))
	require.NoError(t, taxFirst.Earn(d("2010-05-01"), d("2010-05-10"), 100))

	assert.InDelta(t, 50, income(t, earnFirst, "2010-05-01", "2010-05-10"), tolerance)
	assert.InDelta(t, 100, income(t, taxFirst, "2010-05-01", "2010-05-10"), tolerance)
}

func TestLedger_ZeroTaxIsNoOp(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Earn(d("2030-01-01"), d("2030-12-31"), 3650))
	before := income(t, l, "2030-03-01", "2030-09-30")

	require.NoError(t, l.PayTax(d("2030-01-01"), d("2030-06-30"), 0))
	assert.Equal(t, before, income(t, l, "2030-03-01", "2030-09-30"))
}

func TestLedger_Additivity(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Earn(d("2020-01-01"), d("2020-03-31"), 9100))
	require.NoError(t, l.Spend(d("2020-02-10"), d("2020-02-20"), 1100))
	require.NoError(t, l.PayTax(d("2020-01-15"), d("2020-02-15"), 25))

	a := income(t, l, "2020-01-01", "2020-02-12")
	b := income(t, l, "2020-02-13", "2020-03-31")
	assert.InDelta(t, income(t, l, "2020-01-01", "2020-03-31"), a+b, 1e-6)

	state, err := l.ComputeState(d("2020-02-10"), d("2020-02-20"))
	require.NoError(t, err)
	assert.InDelta(t, 1100, state.Spent, 1e-6)
	assert.InDelta(t, state.Earned-state.Spent, income(t, l, "2020-02-10", "2020-02-20"), tolerance)
}

func TestLedger_SingleDayRange(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Earn(d("2099-12-31"), d("2099-12-31"), 42))
	assert.InDelta(t, 42, income(t, l, "2099-12-31", "2099-12-31"), tolerance)
	assert.InDelta(t, 0, income(t, l, "2099-12-30", "2099-12-30"), tolerance)
}

func TestLedger_Errors(t *testing.T) {
	l := newTestLedger(t)

	assert.ErrorIs(t, l.Earn(d("1999-12-31"), d("2000-01-05"), 10), xerrors.ErrDateOutOfHorizon)
	assert.ErrorIs(t, l.Spend(d("2099-12-01"), d("2100-01-01"), 10), xerrors.ErrDateOutOfHorizon)
	assert.ErrorIs(t, l.Earn(d("2000-01-05"), d("2000-01-01"), 10), xerrors.ErrInvalidDateRange)
	assert.ErrorIs(t, l.Earn(d("2000-01-01"), d("2000-01-05"), -1), xerrors.ErrInvalidAmount)
	assert.ErrorIs(t, l.Spend(d("2000-01-01"), d("2000-01-05"), math.NaN()), xerrors.ErrInvalidAmount)
	assert.ErrorIs(t, l.PayTax(d("2000-01-01"), d("2000-01-05"), 101), xerrors.ErrInvalidPercent)
	assert.ErrorIs(t, l.PayTax(d("2000-01-01"), d("2000-01-05"), -5), xerrors.ErrInvalidPercent)
	assert.ErrorIs(t, l.PayTax(d("2000-01-05"), d("2000-01-01"), 0), xerrors.ErrInvalidDateRange)

	_, err := l.ComputeIncome(d("2000-01-01"), d("2100-01-01"))
	assert.ErrorIs(t, err, xerrors.ErrDateOutOfHorizon)

	// 失败的调用不会留下任何痕迹
	assert.Equal(t, 0.0, income(t, l, "2000-01-01", "2099-12-31"))
}

func TestLedger_PermissiveTaxPolicy(t *testing.T) {
	l, err := NewLedger(Config{Horizon: DefaultHorizon(), TaxPolicy: TaxPolicyPermissive})
	require.NoError(t, err)
	assert.Equal(t, TaxPolicyPermissive, l.TaxPolicy())

	require.NoError(t, l.Earn(d("2000-01-01"), d("2000-01-02"), 100))
	require.NoError(t, l.PayTax(d("2000-01-01"), d("2000-01-01"), 150))
	require.NoError(t, l.PayTax(d("2000-01-02"), d("2000-01-02"), -100))
	// 第一天 50 * (1 - 1.5) = -25，第二天 50 * (1 + 1) = 100
	assert.InDelta(t, 75, income(t, l, "2000-01-01", "2000-01-02"), tolerance)
	assert.ErrorIs(t, l.PayTax(d("2000-01-01"), d("2000-01-01"), math.Inf(1)), xerrors.ErrInvalidPercent)

	require.NoError(t, l.SetTaxPolicy(TaxPolicyStrict))
	assert.ErrorIs(t, l.PayTax(d("2000-01-01"), d("2000-01-01"), 150), xerrors.ErrInvalidPercent)
	assert.Error(t, l.SetTaxPolicy("lenient"))
}

func TestLedger_IndependentHorizons(t *testing.T) {
	small, err := NewLedger(Config{Horizon: Horizon{Start: d("2024-01-01"), End: d("2024-02-01")}})
	require.NoError(t, err)
	assert.Equal(t, 31, small.Horizon().DayCount())
	assert.Equal(t, TaxPolicyStrict, small.TaxPolicy())

	big := newTestLedger(t)
	require.NoError(t, small.Earn(d("2024-01-01"), d("2024-01-31"), 310))
	require.NoError(t, big.Earn(d("2024-01-01"), d("2024-01-31"), 620))

	assert.InDelta(t, 10, income(t, small, "2024-01-05", "2024-01-05"), tolerance)
	assert.InDelta(t, 20, income(t, big, "2024-01-05", "2024-01-05"), tolerance)
	assert.ErrorIs(t, small.Earn(d("2024-02-01"), d("2024-02-01"), 1), xerrors.ErrDateOutOfHorizon)

	_, err = NewLedger(Config{Horizon: Horizon{Start: d("2024-01-01"), End: d("2024-01-01")}})
	assert.ErrorIs(t, err, xerrors.ErrInvalidHorizon)
	_, err = NewLedger(Config{Horizon: DefaultHorizon(), TaxPolicy: "lenient"})
	assert.Error(t, err)
}

func TestLedger_FourCenturyHorizon(t *testing.T) {
	l, err := NewLedger(Config{Horizon: Horizon{Start: d("1700-01-01"), End: d("2100-01-01")}})
	require.NoError(t, err)
	assert.Equal(t, 146097, l.Horizon().DayCount())

	require.NoError(t, l.Earn(d("1700-01-01"), d("2099-12-31"), 146097))
	assert.InDelta(t, 1, income(t, l, "2099-12-31", "2099-12-31"), tolerance)
	assert.InDelta(t, 1, income(t, l, "1700-01-01", "1700-01-01"), tolerance)
	assert.InDelta(t, 146097, income(t, l, "1700-01-01", "2099-12-31"), 1e-6)

	_, err = l.ComputeIncome(d("2100-01-01"), d("2100-01-01"))
	assert.ErrorIs(t, err, xerrors.ErrDateOutOfHorizon)
}
