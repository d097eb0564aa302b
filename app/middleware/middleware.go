package appMiddleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const DefaultRealm = "Please enter your credentials"

// BasicAuth guards next with HTTP Basic credentials checked against checker.
func BasicAuth(checker CredentialChecker, realm string, logger *slog.Logger) func(next http.Handler) http.Handler {
	if realm == "" {
		realm = DefaultRealm
	}
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !checker.Check(r.Context(), username, password) {
				logger.WarnContext(r.Context(), "Rejected basic auth attempt",
					slog.String("req_id", middleware.GetReqID(r.Context())),
					slog.String("path", r.URL.Path),
					slog.Bool("credentials_present", ok),
				)
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
