package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
)

// ErrMissingCredentials is returned when the username or password is missing from the request.
var ErrMissingCredentials = errors.New("username and password required")

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration and login.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport serving these routes:
// - POST /auth/register: Register a new user and get an auth token
// - POST /auth/login: Login and get an auth token.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		mux:     http.NewServeMux(),
	}

	ht.mux.HandleFunc("POST /auth/register", ht.HandleRegister)
	ht.mux.HandleFunc("POST /auth/login", ht.HandleLogin)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// readCredentials decodes the JSON credentials body. It writes the 400
// reply itself when the body is unusable.
func readCredentials(w http.ResponseWriter, r *http.Request) (domain.CredentialsRequest, error) {
	var req domain.CredentialsRequest

	if err := http_.DecodeJSON(w, r, &req); err != nil {
		http_.WriteError(w, http.StatusBadRequest, http_.ErrInvalidBody.Error())

		return req, err
	}

	if req.Username == "" || req.Password == "" {
		http_.WriteError(w, http.StatusBadRequest, ErrMissingCredentials.Error())

		return req, ErrMissingCredentials
	}

	return req, nil
}

// HandleRegister processes user registration requests.
// Expects a JSON body {username, password} and returns {token}.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	req, err := readCredentials(w, r)
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	log = log.With(logging.Group("user", "username", req.Username))

	token, err := ht.authSvc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http_.WriteError(w, http.StatusBadRequest, "user exists")
		case errors.Is(err, domain.ErrPasswordTooLong):
			http_.WriteError(w, http.StatusBadRequest, "password too long")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "Error registering")
		}

		return fmt.Errorf("register user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{Token: token})
}

// HandleLogin processes user login requests.
// Expects a JSON body {username, password} and returns {token}.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	req, err := readCredentials(w, r)
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	log = log.With(logging.Group("user", "username", req.Username))

	token, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http_.WriteError(w, http.StatusBadRequest, "invalid credentials")
		} else {
			http_.WriteError(w, http.StatusInternalServerError, "Error logging in")
		}

		return fmt.Errorf("login user: %w", err)
	}

	return http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{Token: token})
}
