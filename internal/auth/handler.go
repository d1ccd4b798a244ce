package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware validates the bearer token and injects the authenticated
// user into the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		user, err := h.Service.GetUser(r.Context(), claims.UserID)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}
