package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
)

// HealthHandler reports service health. With no checks it is a liveness
// probe; with checks it is a readiness probe that fails when any dependency
// (master database, tenant connectivity) is down.
func HealthHandler(log *slog.Logger, checks ...func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", slog.Any("error", err))
				response.Fail(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		response.OK(w, nil, "ok")
	}
}
