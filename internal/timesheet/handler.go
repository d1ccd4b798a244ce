package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	apperrors "github.com/mzavatta/effort-tracking/internal"
	"github.com/mzavatta/effort-tracking/internal/auth"
	"github.com/mzavatta/effort-tracking/internal/core/common/dates"
	"github.com/mzavatta/effort-tracking/internal/transport"
	"github.com/mzavatta/effort-tracking/pkg/logger"
)

// HoursProvider supplies the contracted weekly hours shown next to the
// weekly totals.
type HoursProvider interface {
	GetWorkingHoursWeekly(ctx context.Context, userID int64) (int, error)
}

// TitleResolver turns project and task IDs into titles for the labels on
// the day view. Labels are a presentation concern; the aggregate itself
// carries only IDs.
type TitleResolver interface {
	GetProjectTitle(ctx context.Context, projectID int64) (string, error)
	GetTaskTitle(ctx context.Context, taskID int64) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Hours   HoursProvider
	Titles  TitleResolver
}

func NewHandler(service *Service, hours HoursProvider, titles TitleResolver) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Hours:       hours,
		Titles:      titles,
	}
}

// WeeklyView handles GET /tracking/weeks/{date}. Any date within the week
// selects the same Monday..Sunday window.
func (h *Handler) WeeklyView(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	anchor, err := dates.Parse(chi.URLParam(r, "date"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationError("date must be an ISO date (YYYY-MM-DD)", apperrors.ErrCodeInvalidDate))
		return
	}

	view, err := h.Service.WeeklyView(r.Context(), user.ID, anchor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	contracted, err := h.Hours.GetWorkingHoursWeekly(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	view.ContractedHours = contracted

	h.WriteJSON(w, http.StatusOK, view)
}

// DayView handles GET /tracking/days/{date}.
func (h *Handler) DayView(w http.ResponseWriter, r *http.Request) {
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

	aggregate, err := h.Service.DayAggregate(r.Context(), user.ID, day)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	view := DayView{Date: dates.DayOf(day), Items: make([]DayViewItem, 0)}
	projectTitles := make(map[int64]string)
	for projectID, tasks := range aggregate {
		title, ok := projectTitles[projectID]
		if !ok {
			title, err = h.Titles.GetProjectTitle(r.Context(), projectID)
			if err != nil {
				h.HandleServiceError(w, err)
				return
			}
			projectTitles[projectID] = title
		}

		for taskID, hours := range tasks {
			taskTitle, err := h.Titles.GetTaskTitle(r.Context(), taskID)
			if err != nil {
				h.HandleServiceError(w, err)
				return
			}
			view.Items = append(view.Items, DayViewItem{
				ProjectID:    projectID,
				ProjectLabel: fmt.Sprintf("%d - %s", projectID, title),
				TaskID:       taskID,
				TaskLabel:    fmt.Sprintf("%d - %s", taskID, taskTitle),
				Hours:        hours,
			})
			view.Total += hours
		}
	}

	sort.Slice(view.Items, func(i, j int) bool {
		if view.Items[i].ProjectID != view.Items[j].ProjectID {
			return view.Items[i].ProjectID < view.Items[j].ProjectID
		}
		return view.Items[i].TaskID < view.Items[j].TaskID
	})

	h.WriteJSON(w, http.StatusOK, view)
}
