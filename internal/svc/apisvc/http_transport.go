// Package apisvc assembles the public HTTP API from the service transports.
package apisvc

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc"
	"github.com/mkrupp/cryptotracker/internal/svc/favoritesvc"
	"github.com/mkrupp/cryptotracker/internal/svc/marketsvc"
)

const (
	apiPrefix     = "/api"
	healthMessage = "CryptoTracker backend"
)

// HTTPTransportConfig contains configuration parameters for the API server.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// AllowedOrigins is a comma separated list of CORS origins, "*" allows any
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// HTTPTransport routes /api requests to the auth, market and favorites
// transports. Favorites require a bearer token.
type HTTPTransport struct {
	handler http.Handler
	log     logging.Logger
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates the API router:
// - GET / and GET /api/: Health check
// - /api/auth/...: authsvc.HTTPTransport
// - /api/cryptos/favorites...: favoritesvc.HTTPTransport, authorized
// - /api/cryptos/...: marketsvc.HTTPTransport.
func NewHTTPTransport(
	authSvc *authsvc.AuthService,
	marketSvc *marketsvc.MarketService,
	favoriteSvc *favoritesvc.FavoriteService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	log := logging.GetLogger("svc.apisvc.http_transport")

	favorites := http_.AuthorizingMiddleware(favoritesvc.NewHTTPTransport(favoriteSvc), authSvc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", HandleHealth)
	mux.HandleFunc("GET "+apiPrefix+"/{$}", HandleHealth)
	mux.Handle(apiPrefix+"/auth/", http.StripPrefix(apiPrefix, authsvc.NewHTTPTransport(authSvc)))
	mux.Handle(apiPrefix+"/cryptos/favorites", http.StripPrefix(apiPrefix, favorites))
	mux.Handle(apiPrefix+"/cryptos/favorites/", http.StripPrefix(apiPrefix, favorites))
	mux.Handle(apiPrefix+"/cryptos/", http.StripPrefix(apiPrefix, marketsvc.NewHTTPTransport(marketSvc)))

	//nolint:exhaustruct
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: splitList(cfg.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", http_.TraceIDHeader},
		ExposedHeaders: []string{http_.TraceIDHeader},
	})

	return &HTTPTransport{
		handler: corsHandler.Handler(mux),
		log:     log,
	}
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.handler.ServeHTTP(w, r)
}

// HandleHealth replies {ok: true, msg: "CryptoTracker backend"}.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = http_.WriteJSON(w, http.StatusOK, domain.StatusResponse{OK: true, Msg: healthMessage})
}

func splitList(list string) []string {
	var out []string

	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
