package favoritesvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/cryptotracker/internal/domain"
	context_ "github.com/mkrupp/cryptotracker/internal/infra/context"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
)

// ErrNoUser is returned when a request reaches the transport without an authenticated user.
var ErrNoUser = errors.New("no authenticated user")

// HTTPTransport serves the favorites endpoints. It expects to run behind
// http_.AuthorizingMiddleware, which binds the user ID to the request context.
type HTTPTransport struct {
	favoriteSvc *FavoriteService
	log         logging.Logger
	mux         *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving these routes:
// - POST /cryptos/favorites: Add a symbol
// - GET /cryptos/favorites: List symbols
// - DELETE /cryptos/favorites/{symbol}: Remove a symbol.
func NewHTTPTransport(favoriteSvc *FavoriteService) *HTTPTransport {
	ht := &HTTPTransport{
		favoriteSvc: favoriteSvc,
		log:         logging.GetLogger("svc.favoritesvc.http_transport"),
		mux:         http.NewServeMux(),
	}

	ht.mux.HandleFunc("POST /cryptos/favorites", ht.HandleAdd)
	ht.mux.HandleFunc("GET /cryptos/favorites", ht.HandleList)
	ht.mux.HandleFunc("DELETE /cryptos/favorites/{symbol}", ht.HandleRemove)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, error) {
	id, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		http_.WriteError(w, http.StatusUnauthorized, "missing authorization")

		return 0, ErrNoUser
	}

	return id, nil
}

// HandleAdd adds the symbol from a JSON body {symbol} and returns {ok: true}.
func (ht *HTTPTransport) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAdd(w, r)
}

func (ht *HTTPTransport) handleAdd(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "add favorite failed", "error", err)
		} else {
			log.DebugContext(ctx, "favorite added")
		}
	}(r.Context())

	uid, err := userID(w, r)
	if err != nil {
		return err
	}

	var req domain.FavoriteRequest
	if err := http_.DecodeJSON(w, r, &req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, http_.ErrInvalidBody.Error())

		return fmt.Errorf("decode request: %w", err)
	}

	log = log.With("symbol", req.Symbol)

	if _, err := ht.favoriteSvc.Add(r.Context(), uid, req.Symbol); err != nil {
		if errors.Is(err, domain.ErrSymbolRequired) {
			http_.WriteError(w, http.StatusBadRequest, "symbol required")
		} else {
			http_.WriteError(w, http.StatusInternalServerError, "Error adding favorite")
		}

		return fmt.Errorf("add favorite: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.StatusResponse{OK: true})
}

// HandleList returns {favorites: [...]} for the authenticated user.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "list favorites failed", "error", err)
		}
	}(r.Context())

	uid, err := userID(w, r)
	if err != nil {
		return err
	}

	symbols, err := ht.favoriteSvc.List(r.Context(), uid)
	if err != nil {
		http_.WriteError(w, http.StatusInternalServerError, "Error listing favorites")

		return fmt.Errorf("list favorites: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.FavoritesResponse{Favorites: symbols})
}

// HandleRemove deletes {symbol} and returns {ok: true, removed: bool}.
func (ht *HTTPTransport) HandleRemove(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRemove(w, r)
}

func (ht *HTTPTransport) handleRemove(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "remove favorite failed", "error", err)
		} else {
			log.DebugContext(ctx, "favorite removed")
		}
	}(r.Context())

	uid, err := userID(w, r)
	if err != nil {
		return err
	}

	removed, err := ht.favoriteSvc.Remove(r.Context(), uid, r.PathValue("symbol"))
	if err != nil {
		if errors.Is(err, domain.ErrSymbolRequired) {
			http_.WriteError(w, http.StatusBadRequest, "symbol required")
		} else {
			http_.WriteError(w, http.StatusInternalServerError, "Error removing favorite")
		}

		return fmt.Errorf("remove favorite: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.FavoriteRemovedResponse{OK: true, Removed: removed})
}
