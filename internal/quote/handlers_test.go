package quote

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

func newTestHandler() *Handler {
	svc := NewService(
		&stubRules{rules: []pricing.Rule{{
			ID: "D1", Type: pricing.TimeLimited, PercentBps: 1000, Stackable: true,
		}}},
		&stubCatalog{items: testItems()},
	)
	return &Handler{Service: svc}
}

func TestCreateQuoteOK(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"cart":[{"productId":"P1","qty":2}]}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `"cartTotal":1400`)
	require.Contains(t, body, `"totalDiscount":140`)
	require.Contains(t, body, `"payable":1260`)
}

func TestCreateQuoteBadJSON(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "BAD_JSON")
}

func TestCreateQuoteUnknownProduct(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"cart":[{"productId":"NOPE"}]}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "UNKNOWN_PRODUCT")
}
