package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
	"casr-tracker/internal/status"
	"casr-tracker/internal/table"
	"casr-tracker/internal/timeline"
	"casr-tracker/internal/validation"
)

// ProjectStore is implemented by services.ProjectService.
type ProjectStore interface {
	GetAllProjects(ctx context.Context, tenant string) ([]models.Project, error)
	GetProjectByID(ctx context.Context, tenant, projectID string) (*models.Project, error)
	CreateProject(ctx context.Context, tenant, actor string, p *models.Project) error
	UpdateProject(ctx context.Context, tenant, actor, projectID string, p *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, tenant, actor, projectID string) (*models.Project, error)
	AddTask(ctx context.Context, tenant, actor, projectID, parentID string, task models.Task) (*models.Project, models.Task, error)
	UpdateTaskStatus(ctx context.Context, tenant, actor, projectID, taskID string, st models.TaskStatus) (*models.Project, models.Task, error)
	DeleteTask(ctx context.Context, tenant, actor, projectID, taskID string) (*models.Project, models.Task, error)
}

// WorkflowGateway is implemented by utils.WorkflowClient.
type WorkflowGateway interface {
	ProjectDependencies(ctx context.Context, projectID string, incoming http.Header) ([]timeline.Edge, error)
	SyncTaskNode(ctx context.Context, node models.TaskNode, incoming http.Header) error
	DeleteTaskNodes(ctx context.Context, taskIDs []string, incoming http.Header) error
}

type ProjectHandler struct {
	Projects  ProjectStore
	Workflow  WorkflowGateway
	Validator *validation.Validator
	Now       func() time.Time
}

func NewProjectHandler(projects ProjectStore, workflow WorkflowGateway, v *validation.Validator) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Workflow: workflow, Validator: v, Now: time.Now}
}

func (h *ProjectHandler) today() time.Time {
	return models.Day(h.Now())
}

func (h *ProjectHandler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	projects, err := h.Projects.GetAllProjects(r.Context(), tenant)
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := h.today()
	views := make([]models.ProjectView, len(projects))
	for i, p := range projects {
		views[i] = status.View(p, today)
	}
	writeJSON(w, http.StatusOK, projectTable.Apply(views, table.ParseState(r.URL.Query())))
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	p, err := h.Projects.GetProjectByID(r.Context(), tenant, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status.View(*p, h.today()))
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var p models.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.Validator.Struct(p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Projects.CreateProject(r.Context(), tenant, actor, &p); err != nil {
		writeError(w, r, err)
		return
	}
	for _, t := range models.Flatten(p.Tasks) {
		h.syncTask(r, &p, t.Task)
	}
	writeJSON(w, http.StatusCreated, status.View(p, h.today()))
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var p models.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.Validator.Struct(p); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.Projects.UpdateProject(r.Context(), tenant, actor, mux.Vars(r)["id"], &p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status.View(*updated, h.today()))
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	deleted, err := h.Projects.DeleteProject(r.Context(), tenant, actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.dropTasks(r, deleted.Tasks)
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	ProjectID    string               `json:"projectId"`
	StoredStatus models.ProjectStatus `json:"storedStatus"`
	status.Result
}

func (h *ProjectHandler) GetProjectStatus(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	p, err := h.Projects.GetProjectByID(r.Context(), tenant, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := status.Derive(*p, h.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{ProjectID: p.ID.Hex(), StoredStatus: p.Status, Result: res})
}

type timelineResponse struct {
	timeline.Layout
	DependenciesAvailable bool `json:"dependenciesAvailable"`
}

// GetProjectTimeline lays out the task tree and overlays dependency edges
// from the workflow service. The layout is still served when that service
// is unavailable, without edges.
func (h *ProjectHandler) GetProjectTimeline(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	mode, err := timeline.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	projectID := mux.Vars(r)["id"]
	p, err := h.Projects.GetProjectByID(r.Context(), tenant, projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	layout, err := timeline.Build(p.Tasks, mode, h.today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := timelineResponse{Layout: layout}
	if h.Workflow != nil {
		edges, err := h.Workflow.ProjectDependencies(r.Context(), projectID, r.Header)
		if err != nil {
			logging.Logger.Warnf("Event ID: TIMELINE_WITHOUT_EDGES, Description: project %s: %v", projectID, err)
		} else {
			resp.Layout.AttachEdges(edges)
			resp.DependenciesAvailable = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProjectHandler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	p, err := h.Projects.GetProjectByID(r.Context(), tenant, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	flat := models.Flatten(p.Tasks)
	if flat == nil {
		flat = []models.FlatTask{}
	}
	writeJSON(w, http.StatusOK, flat)
}

type createTaskRequest struct {
	models.Task
	ParentID string `json:"parentId"`
}

func (h *ProjectHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validator.Struct(req.Task); err != nil {
		writeError(w, r, err)
		return
	}
	p, task, err := h.Projects.AddTask(r.Context(), tenant, actor, mux.Vars(r)["id"], req.ParentID, req.Task)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, t := range models.Flatten([]models.Task{task}) {
		h.syncTask(r, p, t.Task)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: task %s added to project %s by %s", task.ID, p.ID.Hex(), actor)
	writeJSON(w, http.StatusCreated, task)
}

func (h *ProjectHandler) ChangeTaskStatus(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	var req struct {
		Status models.TaskStatus `json:"status" validate:"required,oneof='To Do' 'In Progress' Done Blocked"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	p, task, err := h.Projects.UpdateTaskStatus(r.Context(), tenant, actor, vars["id"], vars["taskId"], req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.syncTask(r, p, task)
	writeJSON(w, http.StatusOK, task)
}

func (h *ProjectHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	tenant, actor, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	vars := mux.Vars(r)
	_, removed, err := h.Projects.DeleteTask(r.Context(), tenant, actor, vars["id"], vars["taskId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.dropTasks(r, []models.Task{removed})
	w.WriteHeader(http.StatusNoContent)
}

// syncTask mirrors a task into the dependency graph. It is best effort: the
// graph catches up on the next change.
func (h *ProjectHandler) syncTask(r *http.Request, p *models.Project, t models.Task) {
	if h.Workflow == nil {
		return
	}
	node := models.TaskNode{
		ID:        t.ID,
		ProjectID: p.ID.Hex(),
		TenantID:  p.TenantID,
		Title:     t.Title,
		Status:    t.Status,
	}
	if err := h.Workflow.SyncTaskNode(r.Context(), node, r.Header); err != nil {
		logging.Logger.Warnf("Event ID: TASK_NODE_SYNC_FAILED, Description: task %s: %v", t.ID, err)
	}
}

// dropTasks removes deleted tasks and their subtasks from the dependency
// graph, best effort like syncTask.
func (h *ProjectHandler) dropTasks(r *http.Request, tasks []models.Task) {
	if h.Workflow == nil {
		return
	}
	var ids []string
	for _, t := range models.Flatten(tasks) {
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		return
	}
	if err := h.Workflow.DeleteTaskNodes(r.Context(), ids, r.Header); err != nil {
		logging.Logger.Warnf("Event ID: TASK_NODE_DELETE_FAILED, Description: %d task nodes: %v", len(ids), err)
	}
}
