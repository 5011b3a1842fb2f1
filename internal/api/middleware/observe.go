package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/morpion/internal/api/apierr"
	"github.com/mcoot/morpion/internal/middleware"
)

// Logging logs every API request with its status, size and latency
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Recovery converts handler panics into the API's INTERNAL_ERROR JSON body,
// so clients never see a plain-text 500 from a JSON route
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
