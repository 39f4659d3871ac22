package marketsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
)

// HTTPTransport serves the public market data endpoints. Successful replies
// carry the provider's JSON unchanged.
type HTTPTransport struct {
	marketSvc *MarketService
	log       logging.Logger
	mux       *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving these routes:
// - GET /cryptos/list?limit=N: Top assets
// - GET /cryptos/quote/{symbol}: Latest quote
// - GET /cryptos/info/{symbol}: Asset metadata
// - GET /cryptos/history?id=&symbol=&days=: Price history
// - GET /cryptos/resolve/{symbol}: Symbol to history provider id.
func NewHTTPTransport(marketSvc *MarketService) *HTTPTransport {
	ht := &HTTPTransport{
		marketSvc: marketSvc,
		log:       logging.GetLogger("svc.marketsvc.http_transport"),
		mux:       http.NewServeMux(),
	}

	ht.mux.HandleFunc("GET /cryptos/list", ht.HandleListings)
	ht.mux.HandleFunc("GET /cryptos/quote/{symbol}", ht.HandleQuote)
	ht.mux.HandleFunc("GET /cryptos/info/{symbol}", ht.HandleInfo)
	ht.mux.HandleFunc("GET /cryptos/history", ht.HandleHistory)
	ht.mux.HandleFunc("GET /cryptos/resolve/{symbol}", ht.HandleResolve)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// errorReply maps a service error to a status and a fixed phrase. fallback is
// used for anything not caused by the request itself.
func errorReply(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSymbolRequired):
		return http.StatusBadRequest, "symbol required"
	case errors.Is(err, domain.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid limit"
	case errors.Is(err, domain.ErrInvalidDays):
		return http.StatusBadRequest, "invalid days"
	case errors.Is(err, domain.ErrSymbolNotFound):
		return http.StatusNotFound, "symbol not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(r *http.Request, name string, invalid error) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(invalid, err)
	}

	if value == 0 {
		return 0, fmt.Errorf("%w: 0", invalid)
	}

	return value, nil
}

// serve runs a handler body returning raw provider JSON and logs its outcome.
func (ht *HTTPTransport) serve(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fallback string,
	fetch func(ctx context.Context) ([]byte, error),
) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	err := func() error {
		body, err := fetch(r.Context())
		if err != nil {
			status, msg := errorReply(err, fallback)
			http_.WriteError(w, status, msg)

			return fmt.Errorf("%s: %w", op, err)
		}

		return http_.WriteRawJSON(w, http.StatusOK, body)
	}()
	if err != nil {
		log.ErrorContext(r.Context(), op+" failed", "error", err)
	} else {
		log.DebugContext(r.Context(), op+" served")
	}
}

// HandleListings returns the top assets, ?limit defaults to 50.
func (ht *HTTPTransport) HandleListings(w http.ResponseWriter, r *http.Request) {
	ht.serve(w, r, "fetch listings", "Error fetching listings", func(ctx context.Context) ([]byte, error) {
		limit, err := queryInt(r, "limit", domain.ErrInvalidLimit)
		if err != nil {
			return nil, err
		}

		return ht.marketSvc.Listings(ctx, limit)
	})
}

// HandleQuote returns the latest quote for {symbol}.
func (ht *HTTPTransport) HandleQuote(w http.ResponseWriter, r *http.Request) {
	ht.serve(w, r, "fetch quote", "Error fetching quote", func(ctx context.Context) ([]byte, error) {
		return ht.marketSvc.Quote(ctx, r.PathValue("symbol"))
	})
}

// HandleInfo returns metadata for {symbol}.
func (ht *HTTPTransport) HandleInfo(w http.ResponseWriter, r *http.Request) {
	ht.serve(w, r, "fetch info", "Error fetching info", func(ctx context.Context) ([]byte, error) {
		return ht.marketSvc.Info(ctx, r.PathValue("symbol"))
	})
}

// HandleHistory returns the price series for ?id, or for the coin ?symbol
// resolves to when no id is given.
func (ht *HTTPTransport) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ht.serve(w, r, "fetch history", "Error fetching history", func(ctx context.Context) ([]byte, error) {
		days, err := queryInt(r, "days", domain.ErrInvalidDays)
		if err != nil {
			return nil, err
		}

		id := r.URL.Query().Get("id")

		if symbol := r.URL.Query().Get("symbol"); id == "" && symbol != "" {
			if id, err = ht.marketSvc.ResolveID(ctx, symbol); err != nil {
				return nil, err
			}
		}

		return ht.marketSvc.History(ctx, id, days)
	})
}

// HandleResolve returns {symbol, id} for {symbol}.
func (ht *HTTPTransport) HandleResolve(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleResolve(w, r)
}

func (ht *HTTPTransport) handleResolve(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "resolve symbol failed", "error", err)
		}
	}(r.Context())

	symbol := r.PathValue("symbol")

	id, err := ht.marketSvc.ResolveID(r.Context(), symbol)
	if err != nil {
		status, msg := errorReply(err, "Error resolving symbol")
		http_.WriteError(w, status, msg)

		return fmt.Errorf("resolve symbol: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.ResolveResponse{Symbol: domain.NormalizeSymbol(symbol), ID: id})
}
