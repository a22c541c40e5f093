package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestParsePage(t *testing.T) {
	testCases := []struct {
		name         string
		query        string
		expectedOK   bool
		expectedPage Page
		expectedBody string
	}{
		{name: "defaults", query: "", expectedOK: true, expectedPage: Page{Offset: 0, Limit: 50}},
		{name: "explicit", query: "?offset=20&limit=10", expectedOK: true, expectedPage: Page{Offset: 20, Limit: 10}},
		{name: "negative offset", query: "?offset=-1", expectedBody: `{"error":"Invalid offset number: -1"}`},
		{name: "zero limit", query: "?limit=0", expectedBody: `{"error":"Invalid limit number: 0"}`},
		{name: "limit above cap", query: "?limit=501", expectedBody: `{"error":"Invalid limit number: 501"}`},
		{name: "not a number", query: "?limit=ten", expectedBody: `{"error":"Invalid limit number: ten"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			r := httptest.NewRequest(http.MethodGet, "/api/v1/products"+tc.query, nil)
			w := httptest.NewRecorder()

			// when
			page, ok := ParsePage(r, w, discard, 50)

			// then
			require.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.Equal(t, tc.expectedPage, page)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		expectedOK bool
	}{
		{name: "single object", body: `{"name":"Honey"}`, expectedOK: true},
		{name: "trailing whitespace", body: "{\"name\":\"Honey\"}\n", expectedOK: true},
		{name: "two objects", body: `{"name":"Honey"}{"name":"Jam"}`},
		{name: "malformed", body: `{"name":`},
		{name: "oversized", body: `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			var dst struct {
				Name string `json:"name"`
			}

			// when
			ok := DecodeJSON(w, r, discard, &dst)

			// then
			require.Equal(t, tc.expectedOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
			}
		})
	}
}

func TestNewValidator_JSONNamesAndDecimals(t *testing.T) {
	// given
	type item struct {
		Price    decimal.Decimal `json:"price"    validate:"gte=0"`
		Quantity int32           `json:"quantity" validate:"required"`
	}
	w := httptest.NewRecorder()

	// when
	err := NewValidator().Struct(item{Price: decimal.RequireFromString("-0.01")})
	RespondValidationError(w, discard, "sale", err)

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid sale data","validation_errors":{"price":"failed on rule: gte","quantity":"failed on rule: required"}}`, w.Body.String())
}

func TestNewValidator_Money(t *testing.T) {
	type item struct {
		Price *decimal.Decimal `json:"price" validate:"required,money"`
	}
	testCases := []struct {
		name  string
		price string
		valid bool
	}{
		{name: "cents", price: "12.50", valid: true},
		{name: "largest storable amount", price: "9999999999.99", valid: true},
		{name: "negative within range", price: "-3.10", valid: true},
		{name: "fraction of a cent", price: "0.005", valid: false},
		{name: "eleven integer digits", price: "10000000000", valid: false},
		{name: "far beyond float precision", price: "100000000000000000000000.01", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			price := decimal.RequireFromString(tc.price)

			// when
			err := NewValidator().Struct(item{Price: &price})

			// then
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, "money", errs[0].Tag())
		})
	}
}

func TestRecoverer(t *testing.T) {
	// given
	handler := Recoverer(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()

	// when
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func Test_requestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, requestLevel("/healthz", http.StatusOK))
	assert.Equal(t, slog.LevelError, requestLevel("/healthz", http.StatusServiceUnavailable))
	assert.Equal(t, slog.LevelWarn, requestLevel("/api/v1/sales", http.StatusBadRequest))
	assert.Equal(t, slog.LevelInfo, requestLevel("/api/v1/sales", http.StatusCreated))
}
