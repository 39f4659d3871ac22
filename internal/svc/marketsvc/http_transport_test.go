package marketsvc_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/cryptotracker/internal/svc/marketsvc"
)

func TestHTTPTransport(t *testing.T) {
	t.Parallel()

	upstream := newFakeUpstream(t)
	handler := marketsvc.NewHTTPTransport(newService(t, upstream))

	tests := []struct {
		name       string
		path       string
		failing    bool
		wantStatus int
		wantBody   string
	}{
		{name: "listings", path: "/cryptos/list?limit=10", wantStatus: http.StatusOK, wantBody: `{"data":[{"symbol":"BTC"}],"limit":"10"}`},
		{name: "listings bad limit", path: "/cryptos/list?limit=abc", wantStatus: http.StatusBadRequest, wantBody: `{"error":"invalid limit"}`},
		{name: "listings zero limit", path: "/cryptos/list?limit=0", wantStatus: http.StatusBadRequest, wantBody: `{"error":"invalid limit"}`},
		{name: "quote", path: "/cryptos/quote/btc", wantStatus: http.StatusOK, wantBody: `{"data":{"symbol":"BTC"}}`},
		{name: "quote blank", path: "/cryptos/quote/%20", wantStatus: http.StatusBadRequest, wantBody: `{"error":"symbol required"}`},
		{name: "info", path: "/cryptos/info/eth", wantStatus: http.StatusOK, wantBody: `{"info":"ETH"}`},
		{name: "history by id", path: "/cryptos/history?id=ethereum&days=30", wantStatus: http.StatusOK, wantBody: `{"id":"ethereum","days":"30","prices":[[1,2]]}`},
		{name: "history by symbol", path: "/cryptos/history?symbol=btc", wantStatus: http.StatusOK, wantBody: `{"id":"bitcoin","days":"7","prices":[[1,2]]}`},
		{name: "history unknown symbol", path: "/cryptos/history?symbol=nope", wantStatus: http.StatusNotFound, wantBody: `{"error":"symbol not found"}`},
		{name: "history bad days", path: "/cryptos/history?days=-3", wantStatus: http.StatusBadRequest, wantBody: `{"error":"invalid days"}`},
		{name: "resolve", path: "/cryptos/resolve/btc", wantStatus: http.StatusOK, wantBody: `{"symbol":"BTC","id":"bitcoin"}`},
		{name: "resolve unknown", path: "/cryptos/resolve/nope", wantStatus: http.StatusNotFound, wantBody: `{"error":"symbol not found"}`},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		assert.Equal(t, tt.wantStatus, rec.Code, tt.name)
		assert.JSONEq(t, tt.wantBody, rec.Body.String(), tt.name)
	}
}

func TestHTTPTransport_UpstreamFailures(t *testing.T) {
	t.Parallel()

	upstream := newFakeUpstream(t)
	upstream.failing.Store(true)
	handler := marketsvc.NewHTTPTransport(newService(t, upstream))

	tests := map[string]string{
		"/cryptos/list":               "Error fetching listings",
		"/cryptos/quote/btc":          "Error fetching quote",
		"/cryptos/info/btc":           "Error fetching info",
		"/cryptos/history?id=bitcoin": "Error fetching history",
		"/cryptos/history?symbol=btc": "Error fetching history",
		"/cryptos/resolve/btc":        "Error resolving symbol",
	}

	for path, phrase := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.JSONEq(t, `{"error":"`+phrase+`"}`, rec.Body.String(), path)
	}
}
