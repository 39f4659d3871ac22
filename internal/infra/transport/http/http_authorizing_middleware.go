package http

import (
	"net/http"
	"strings"

	context_ "github.com/mkrupp/cryptotracker/internal/infra/context"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	"github.com/mkrupp/cryptotracker/internal/svc/authsvc/authclient"
)

// AuthorizingMiddleware creates middleware that validates bearer tokens.
// Requests are rejected with 401 when the Authorization header is missing,
// is not of the form "Bearer <token>", or carries a token the AuthClient
// does not accept. On success the user ID is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authClient authclient.AuthClient,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			log.WarnContext(r.Context(), "no token provided")
			WriteError(w, http.StatusUnauthorized, "missing authorization")

			return
		}

		token, ok := bearerToken(header)
		if !ok {
			log.WarnContext(r.Context(), "malformed authorization header")
			WriteError(w, http.StatusUnauthorized, "invalid authorization")

			return
		}

		userID, ok, err := authClient.Validate(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "validate token failed", "error", err)
			WriteError(w, http.StatusUnauthorized, "invalid token")

			return
		} else if !ok {
			log.WarnContext(r.Context(), "invalid token")
			WriteError(w, http.StatusUnauthorized, "invalid token")

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUserID(r.Context(), userID)))
	})
}

// bearerToken splits "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}
