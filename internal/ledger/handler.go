package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

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

// RecordHours handles POST /tracking/entries. This is the day-tracking
// workflow from the ledger's point of view: it issues the record call and,
// when the second write of the pair fails, invokes the compensating
// removal for the same key before reporting the failure.
func (h *Handler) RecordHours(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RecordHoursDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entry, err := h.Service.RecordHours(r.Context(), user.ID, dto.TaskID, dto.Day(), dto.Hours)
	if err != nil {
		if IsPartialWrite(err) {
			h.Logger.Warn("record left partial state, compensating",
				"user_id", user.ID, "task_id", dto.TaskID, "entry_date", dto.Date)
			if _, compErr := h.Service.RemoveHours(r.Context(), user.ID, dto.TaskID, dto.Day()); compErr != nil {
				h.Logger.Error("compensating removal failed, ledger left inconsistent",
					"error", compErr, "user_id", user.ID, "task_id", dto.TaskID, "entry_date", dto.Date)
			}
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

// RemoveHours handles DELETE /tracking/entries/{taskID}/{date}. Removal is
// also the correction path: to change a day's hours, remove and re-record.
func (h *Handler) RemoveHours(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	day, err := dates.Parse(chi.URLParam(r, "date"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError("date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate))
		return
	}

	removed, err := h.Service.RemoveHours(r.Context(), user.ID, taskID, day)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// AdjustConsumed handles POST /tracking/consumed. Direct counter surgery
// is an administrator-only escape hatch; researchers move the counter
// through record and remove alone.
func (h *Handler) AdjustConsumed(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !user.IsAdmin() {
		h.WriteError(w, http.StatusForbidden, "administrator role required")
		return
	}

	var dto AdjustConsumedDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if _, err := h.Service.AdjustConsumed(r.Context(), dto.TaskID, dto.UserID, dto.Delta, AdjustMode(dto.Mode)); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "adjusted"})
}

// RepairConsistency handles POST /tracking/consumed/repair. It rewrites
// the counter from the authoritative entry rows.
func (h *Handler) RepairConsistency(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !user.IsAdmin() {
		h.WriteError(w, http.StatusForbidden, "administrator role required")
		return
	}

	var dto RepairConsistencyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.RepairConsistency(r.Context(), dto.TaskID, dto.UserID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "repaired"})
}
