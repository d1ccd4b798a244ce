package catalog

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

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

// CreateProject handles POST /catalog/projects. Administrators only.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only administrators can create projects", apperrors.ErrCodeForbidden))
		return
	}

	var dto CreateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	project, err := h.Service.CreateProject(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /catalog/projects?archived=true|false.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	var (
		projects []Project
		err      error
	)
	if r.URL.Query().Get("archived") == "true" {
		projects, err = h.Service.ArchivedProjects(r.Context())
	} else {
		projects, err = h.Service.ActiveProjects(r.Context())
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, projects)
}

// SetArchived handles PATCH /catalog/projects/{projectID}/archived.
func (h *Handler) SetArchived(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only administrators can archive projects", apperrors.ErrCodeForbidden))
		return
	}

	projectID, err := h.pathID(r, "projectID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var body struct {
		Archived bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.SetArchived(r.Context(), projectID, body.Archived); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"archived": body.Archived})
}

// AddResearcher handles POST /catalog/projects/{projectID}/researchers.
func (h *Handler) AddResearcher(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can add researchers to projects", apperrors.ErrCodeForbidden))
		return
	}

	projectID, err := h.pathID(r, "projectID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var body struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AddResearcherToProject(r.Context(), projectID, body.UserID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]int64{"project_id": projectID, "user_id": body.UserID})
}

// CreateWorkPackage handles POST /catalog/work-packages.
func (h *Handler) CreateWorkPackage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can create work packages", apperrors.ErrCodeForbidden))
		return
	}

	var dto CreateWorkPackageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wp, err := h.Service.CreateWorkPackage(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, wp)
}

// UpdateWorkPackageWindow handles PATCH /catalog/work-packages/{workPackageID}/window.
func (h *Handler) UpdateWorkPackageWindow(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can update work packages", apperrors.ErrCodeForbidden))
		return
	}

	workPackageID, err := h.pathID(r, "workPackageID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work package ID")
		return
	}

	var dto UpdateWorkPackageWindowDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateWorkPackageWindow(r.Context(), workPackageID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"work_package_id": workPackageID})
}

// DeleteWorkPackage handles DELETE /catalog/work-packages/{workPackageID}.
func (h *Handler) DeleteWorkPackage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can delete work packages", apperrors.ErrCodeForbidden))
		return
	}

	workPackageID, err := h.pathID(r, "workPackageID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work package ID")
		return
	}

	if err := h.Service.DeleteWorkPackage(r.Context(), workPackageID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListWorkPackages handles GET /catalog/projects/{projectID}/work-packages.
func (h *Handler) ListWorkPackages(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	projectID, err := h.pathID(r, "projectID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	wps, err := h.Service.WorkPackagesByProject(r.Context(), projectID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, wps)
}

// CreateTask handles POST /catalog/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can create tasks", apperrors.ErrCodeForbidden))
		return
	}

	var dto CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.Service.CreateTask(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, task)
}

// DeleteTask handles DELETE /catalog/tasks/{taskID}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can delete tasks", apperrors.ErrCodeForbidden))
		return
	}

	taskID, err := h.pathID(r, "taskID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	if err := h.Service.DeleteTask(r.Context(), taskID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListTasks handles GET /catalog/work-packages/{workPackageID}/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	workPackageID, err := h.pathID(r, "workPackageID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work package ID")
		return
	}

	tasks, err := h.Service.TasksByWorkPackage(r.Context(), workPackageID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tasks)
}

// AssignTask handles POST /catalog/tasks/{taskID}/assignments.
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if !user.IsAdmin() && !user.IsSupervisor() {
		h.HandleServiceError(w, apperrors.NewForbiddenError("only supervisors can assign tasks", apperrors.ErrCodeForbidden))
		return
	}

	taskID, err := h.pathID(r, "taskID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	var dto AssignTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AssignTask(r.Context(), taskID, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]int64{"task_id": taskID, "user_id": dto.UserID})
}

// ListAssignments handles GET /catalog/tasks/{taskID}/assignments.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	taskID, err := h.pathID(r, "taskID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	infos, err := h.Service.TaskAssignments(r.Context(), taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, infos)
}

func (h *Handler) pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
