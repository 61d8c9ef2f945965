package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestDeriveKeepsCatalogueEntryIntact(t *testing.T) {
	err := ErrDateOutOfHorizon.Derive("date %s", "2100-01-01").WithContext("date", "2100-01-01")

	assert.ErrorIs(t, err, ErrDateOutOfHorizon)
	assert.NotErrorIs(t, err, ErrInvalidDateRange)
	assert.Equal(t, "date 2100-01-01", err.Detail)
	assert.Equal(t, "date must lie in [start, end) of the ledger horizon", ErrDateOutOfHorizon.Detail)
	assert.Empty(t, ErrDateOutOfHorizon.Context)
	assert.NotEmpty(t, err.Stack)
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	base := ErrInvalidPercent.Derive("percent 120")
	wrapped := fmt.Errorf("line 3: %w", base)

	assert.ErrorIs(t, wrapped, ErrInvalidPercent)

	e, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 400104, e.Code)
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrInvalidAmount.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, ErrDateOutOfHorizon.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusRequestEntityTooLarge, ErrRequestTooLarge.HTTPStatus())
	assert.Equal(t, codes.ResourceExhausted, ErrRequestTooLarge.GRPCCode())

	assert.Equal(t, codes.InvalidArgument, ErrInvalidAmount.GRPCCode())
	assert.Equal(t, codes.OutOfRange, ErrDateOutOfHorizon.GRPCCode())
	assert.Equal(t, codes.OutOfRange, ErrDateOutOfHorizon.ToGRPCStatus().Code())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "x"))

	plain := errors.New("disk full")
	w := WrapInternal(plain, "write failed")
	assert.Equal(t, ErrInternal, w.Type)
	assert.ErrorIs(t, w, plain)

	again := Wrap(ErrInvalidDate.Derive("2001-02-30"), ErrInternal, "parse failed")
	assert.Equal(t, ErrInvalidArg, again.Type)
	assert.ErrorIs(t, again, ErrInvalidDate)
}

func TestErrorString(t *testing.T) {
	err := ErrInvalidDateRange.Derive("2000-01-05 > 2000-01-01")
	assert.Equal(t, "[InvalidArg] 400102: invalid date range: 2000-01-05 > 2000-01-01", err.Error())
}
