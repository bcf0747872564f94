package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"driveportal/internal/auth"
	"driveportal/internal/httputil"
)

// publicPaths are served without a token
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// AuthMiddleware validates bearer tokens and stores the user id and portal
// role in the request context. A nil verifier disables authentication and
// every request proceeds anonymously.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("rejected token",
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithUserRole(r, claims.PortalRole())
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects callers whose portal role is not role.
// Anonymous callers get 401, signed-in callers with another role get 403.
func RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetUserID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if httputil.GetUserRole(r) != role {
			httputil.RespondError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	}
}
