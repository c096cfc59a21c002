package tenant

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/jwt"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
)

// ResolveMiddleware extracts the tenant identity from the verified claim set
// and publishes it into the request context. It must run after the JWT
// middleware: token verification is not its job.
//
// Unauthenticated requests (no claims in context) pass through so public
// endpoints like login keep working. Authenticated requests missing the
// tenant or user claim are rejected with 401 before reaching any handler.
func ResolveMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.GetClaims(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			orgID := stringClaim(claims, ClaimOrgID)
			userID := stringClaim(claims, ClaimUserID)
			username := stringClaim(claims, ClaimUsername)

			if orgID == "" {
				log.WarnContext(r.Context(), "authenticated request missing tenant claim",
					slog.String("user_id", userID),
					slog.String("username", username),
					slog.String("path", r.URL.Path))
				response.Fail(w, http.StatusUnauthorized, "Invalid authentication token. Missing tenant information.")
				return
			}

			if userID == "" {
				log.WarnContext(r.Context(), "authenticated request missing user claim",
					slog.String("org_id", orgID),
					slog.String("username", username),
					slog.String("path", r.URL.Path))
				response.Fail(w, http.StatusUnauthorized, "Invalid authentication token. Missing user information.")
				return
			}

			identity := Identity{
				OrgID:    orgID,
				UserID:   userID,
				Username: username,
			}

			log.DebugContext(r.Context(), "tenant context resolved",
				slog.String("org_id", identity.OrgID),
				slog.String("user_id", identity.UserID),
				slog.String("username", identity.Username),
				slog.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// stringClaim reads a claim as a trimmed string; non-string and absent
// claims both come back empty.
func stringClaim(claims map[string]any, name string) string {
	v, ok := claims[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
