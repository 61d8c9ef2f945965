package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/budget/xerrors"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2000-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date(2000, time.February, 29), d)
	assert.Equal(t, "2000-02-29", FormatDate(d))

	for _, bad := range []string{"2001-02-29", "2001-13-01", "2001-1-01", "20010101", "", "2001-02-3x"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidDate, bad)
	}
}

func TestDaysBetween(t *testing.T) {
	start := MustParseDate("2000-01-01")

	assert.Equal(t, 0, DaysBetween(start, start))
	assert.Equal(t, 1, DaysBetween(start, MustParseDate("2000-01-02")))
	// 2000 是闰年（能被 400 整除）
	assert.Equal(t, 366, DaysBetween(start, MustParseDate("2001-01-01")))
	// 2100 不是闰年，整个世纪共 25 个闰年
	assert.Equal(t, 36525, DaysBetween(start, MustParseDate("2100-01-01")))
	assert.Equal(t, -31, DaysBetween(MustParseDate("2000-02-01"), start))
}

func TestDaysBetweenBeyondDurationRange(t *testing.T) {
	// 400 年为一个完整的格里高利周期
	assert.Equal(t, 146097, DaysBetween(MustParseDate("1700-01-01"), MustParseDate("2100-01-01")))
	assert.Equal(t, 3652058, DaysBetween(MustParseDate("0001-01-01"), MustParseDate("9999-12-31")))
	assert.Equal(t, -146097, DaysBetween(MustParseDate("2100-01-01"), MustParseDate("1700-01-01")))
}

func TestDaysBetweenIgnoresTimeOfDayAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*60*60)
	from := time.Date(2000, time.March, 25, 23, 30, 0, 0, loc)
	to := time.Date(2000, time.March, 27, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(from, to))
	assert.Equal(t, Date(2000, time.March, 25), StartOfDay(from))
}
