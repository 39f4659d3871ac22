package apisvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/cache"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
	"github.com/mkrupp/cryptotracker/internal/repo/favorite"
	"github.com/mkrupp/cryptotracker/internal/repo/sqlite"
	"github.com/mkrupp/cryptotracker/internal/repo/user"
	"github.com/mkrupp/cryptotracker/internal/svc/apisvc"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc"
	"github.com/mkrupp/cryptotracker/internal/svc/favoritesvc"
	"github.com/mkrupp/cryptotracker/internal/svc/marketsvc"
)

type testAPI struct {
	handler       http.Handler
	upstreamCalls *atomic.Int64
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	ctx := context.Background()

	var calls atomic.Int64

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(upstream.Close)

	db, err := sqlite.Open(ctx, sqlite.Config{
		DatabasePath: filepath.Join(t.TempDir(), "api.db"),
		BusyTimeout:  5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	authSvc, err := authsvc.NewAuthService(ctx, user.NewSQLiteUserRepository(db), authsvc.AuthConfig{
		Secret:        "test-secret",
		TokenDuration: 3600,
		BcryptCost:    bcrypt.MinCost,
	})
	require.NoError(t, err)

	marketSvc := marketsvc.NewMarketService(marketsvc.MarketConfig{
		CMCBaseURL:       upstream.URL,
		CoinGeckoBaseURL: upstream.URL,
		UpstreamTimeout:  5,
		CoinListTTL:      60,
	}, cache.New[[]byte](cache.Config{TTL: 60, MaxEntries: 10}))

	favoriteSvc := favoritesvc.NewFavoriteService(favorite.NewSQLiteFavoriteRepository(db))

	handler := apisvc.NewHTTPTransport(authSvc, marketSvc, favoriteSvc, apisvc.HTTPTransportConfig{AllowedOrigins: "*"})

	return &testAPI{
		handler:       http_.Wrap(handler, logging.NewNopLogger()),
		upstreamCalls: &calls,
	}
}

func (api *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	return rec
}

func (api *testAPI) register(t *testing.T, username, password string) string {
	t.Helper()

	rec := api.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.AuthTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func TestAPI_Health(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	for _, path := range []string{"/", "/api/"} {
		rec := api.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"ok":true,"msg":"CryptoTracker backend"}`, rec.Body.String(), path)
	}
}

func TestAPI_AuthFlow(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	api.register(t, "alice", "pw1")

	rec := api.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"pw2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"user exists"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"pw1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"username and password required"}`, rec.Body.String())
}

func TestAPI_Favorites(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	alice := api.register(t, "alice", "pw")
	bob := api.register(t, "bob", "pw")

	rec := api.do(t, http.MethodPost, "/api/cryptos/favorites", alice, `{"symbol":"btc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/cryptos/favorites", alice, `{"symbol":"BTC"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/cryptos/favorites", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"favorites":["BTC"]}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/cryptos/favorites", bob, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"favorites":[]}`, rec.Body.String())

	rec = api.do(t, http.MethodDelete, "/api/cryptos/favorites/btc", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"removed":true}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/cryptos/favorites", alice, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"symbol required"}`, rec.Body.String())
}

func TestAPI_FavoritesRequireToken(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/cryptos/favorites", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing authorization"}`, rec.Body.String())

	rec = api.do(t, http.MethodDelete, "/api/cryptos/favorites/btc", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/cryptos/favorites", strings.NewReader(`{"symbol":"btc"}`))
	req.Header.Set("Authorization", "Token abc")

	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid authorization"}`, rec.Body.String())
}

func TestAPI_MarketCached(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	first := api.do(t, http.MethodGet, "/api/cryptos/list?limit=10", "", "")
	second := api.do(t, http.MethodGet, "/api/cryptos/list?limit=10", "", "")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int64(1), api.upstreamCalls.Load())
}

func TestAPI_CORSPreflight(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cryptos/favorites", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
