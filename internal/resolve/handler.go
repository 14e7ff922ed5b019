package resolve

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrius/internal/platform/middleware"
	"qrius/pkg/platform/httputil"
)

// Destination answers redirect lookups. Satisfied by *Resolver.
type Destination interface {
	Resolve(ctx context.Context, host, code, password string) (string, error)
}

// Handler serves the public redirect endpoint. No auth: scans are anonymous.
type Handler struct {
	resolver Destination
	logger   *slog.Logger
}

// NewHandler constructs the redirect handler.
func NewHandler(resolver Destination, logger *slog.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// Register mounts the redirect endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/r/{code}", h.HandleRedirect)
}

// HandleRedirect handles GET /r/{code}: 302 to the destination, 404 when the
// code does not resolve, 401 when the link wants a password (supplied via the
// password query parameter).
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	destination, err := h.resolver.Resolve(ctx, r.Host, code, r.URL.Query().Get("password"))
	if err != nil {
		h.logger.InfoContext(ctx, "scan did not resolve",
			"request_id", middleware.GetRequestID(ctx),
			"short_code", code,
			"host", r.Host,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	http.Redirect(w, r, destination, http.StatusFound)
}
