package availability

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
	"github.com/mzavatta/effort-tracking/internal/transport"
	"github.com/mzavatta/effort-tracking/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// AvailableTasks handles GET /tracking/days/{date}/available-tasks.
func (h *Handler) AvailableTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	day, err := dates.Parse(chi.URLParam(r, "date"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError("date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate))
		return
	}

	available, err := h.Service.AvailableTasks(r.Context(), user.ID, day)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, available)
}
