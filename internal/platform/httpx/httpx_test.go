package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewops/brewops/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.NewValidationError("amount", "must be at least 0"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", shared.ErrConflict), http.StatusBadRequest},
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrUnauthorized, http.StatusUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden},
		{errors.New("connection reset by peer"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, nil, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.NotContains(t, body.Message, "connection reset")
	}
}

func TestRespondErrorIncludesFields(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, shared.NewValidationError("month", "must be in YYYY-MM format"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "must be in YYYY-MM format", body.Errors["month"])
}

func TestOKAddsCountForSlices(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, "", []int{1, 2, 3})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 3, body["count"])

	rr = httptest.NewRecorder()
	var empty []string
	OK(rr, "", empty)
	require.Contains(t, rr.Body.String(), `"data":[]`)
	require.Contains(t, rr.Body.String(), `"count":0`)
}

type monthInput struct {
	Month  string  `json:"month" validate:"required,yearmonth"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func TestDecodeValidatesYearMonth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"2024-13","amount":-1}`))
	var in monthInput
	err := Decode(req, &in)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "month")
	require.Contains(t, vErr.Fields, "amount")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"2024-03","amount":45000}`))
	require.NoError(t, Decode(req, &in))
	require.Equal(t, "2024-03", in.Month)
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var in monthInput
	require.ErrorIs(t, Decode(req, &in), shared.ErrValidation)
}
