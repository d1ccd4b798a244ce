package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
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

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	if !actor.IsAdmin() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only administrators can manage users", apperrors.ErrCodeForbidden))
		return nil, false
	}
	return actor, true
}

// CreateUser handles POST /users. Administrators only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

// UpdateRole handles PATCH /users/{userID}/role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateRole(r.Context(), actor.ID, userID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"role": dto.Role})
}

// Me handles GET /users/me for any authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}
