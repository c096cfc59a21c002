package tenant

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/clientip"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
)

// maxGuardBodyBytes caps how much of a JSON body the guard will buffer when
// looking for an orgId field. Larger bodies skip body inspection rather than
// failing the request.
const maxGuardBodyBytes = 1 << 20

// GuardMiddleware blocks cross-tenant access attempts: a request whose bound
// orgId parameter differs from the token's tenant is rejected with 403 and
// logged at warning level for audit tooling.
//
// The guard inspects chi route parameters, query parameters, and top-level
// fields of JSON bodies, all matched case-insensitively against "orgId".
// It does not recursively scan nested objects for tenant-identifying fields;
// handlers accepting tenant ids under other names are not covered. Services
// must still scope every query by the identity's org id — this check catches
// parameter manipulation, it does not replace scoping.
//
// It must run after ResolveMiddleware; a request reaching the guard without
// an identity is rejected with 401.
func GuardMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := FromContext(r.Context())
			if !ok {
				log.WarnContext(r.Context(), "tenant guard invoked without tenant context",
					slog.String("path", r.URL.Path))
				response.Fail(w, http.StatusUnauthorized, "Tenant context not found. Please ensure you are properly authenticated.")
				return
			}

			requested, found := requestedOrgID(r)
			if found && requested != "" && requested != identity.OrgID {
				log.WarnContext(r.Context(), "tenant access violation attempt detected",
					slog.String("resolved_org_id", identity.OrgID),
					slog.String("requested_org_id", requested),
					slog.String("user_id", identity.UserID),
					slog.String("path", r.URL.Path),
					slog.String("remote_ip", clientip.GetIP(r)))
				response.Fail(w, http.StatusForbidden, "Access denied. You are not authorized to access data for the requested organization.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestedOrgID finds an explicit orgId parameter in the request, checking
// route params, then query params, then a top-level JSON body field.
func requestedOrgID(r *http.Request) (string, bool) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if strings.EqualFold(key, "orgId") {
				return strings.TrimSpace(rctx.URLParams.Values[i]), true
			}
		}
	}

	for key, values := range r.URL.Query() {
		if strings.EqualFold(key, "orgId") && len(values) > 0 {
			return strings.TrimSpace(values[0]), true
		}
	}

	return bodyOrgID(r)
}

// bodyOrgID peeks into a JSON request body for a top-level orgId field. The
// body is re-buffered so the handler can still read it.
func bodyOrgID(r *http.Request) (string, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", false
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxGuardBodyBytes+1))
	if err != nil {
		return "", false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) > maxGuardBodyBytes {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// Not a JSON object (array, scalar, malformed) — nothing to inspect;
		// the handler's own decoding will deal with it.
		return "", false
	}

	for key, raw := range fields {
		if !strings.EqualFold(key, "orgId") {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return "", false
		}
		return strings.TrimSpace(value), true
	}
	return "", false
}
