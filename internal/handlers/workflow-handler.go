package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"casr-tracker/internal/interfaces"
	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
	"casr-tracker/internal/services/commands"
	"casr-tracker/internal/services/queries"
)

// WorkflowGraph is implemented by services.WorkflowService.
type WorkflowGraph interface {
	interfaces.WorkflowCommandContext
	interfaces.WorkflowQueryContext
}

type WorkflowHandler struct {
	WorkflowService WorkflowGraph
}

func NewWorkflowHandler(service WorkflowGraph) *WorkflowHandler {
	return &WorkflowHandler{WorkflowService: service}
}

func (h *WorkflowHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var dep models.Dependency
	if !decodeJSON(w, r, &dep) {
		return
	}
	if dep.FromTaskID == "" || dep.ToTaskID == "" {
		logging.Logger.Warn("Event ID: DEPENDENCY_IDS_MISSING, Description: missing task IDs in dependency")
		http.Error(w, "Missing task IDs", http.StatusBadRequest)
		return
	}

	handler := commands.NewAddDependencyHandler(h.WorkflowService)
	if err := handler.Handle(r.Context(), commands.AddDependencyCommand{Tenant: tenant, Dependency: dep}); err != nil {
		logging.Logger.Warnf("Event ID: DEPENDENCY_REJECTED, Description: %s -> %s: %v", dep.ToTaskID, dep.FromTaskID, err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dep)
}

func (h *WorkflowHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var dep models.Dependency
	if !decodeJSON(w, r, &dep) {
		return
	}
	handler := commands.NewRemoveDependencyHandler(h.WorkflowService)
	err := handler.Handle(r.Context(), commands.RemoveDependencyCommand{Tenant: tenant, FromTaskID: dep.FromTaskID, ToTaskID: dep.ToTaskID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkflowHandler) EnsureTaskNode(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	var node models.TaskNode
	if !decodeJSON(w, r, &node) {
		return
	}
	if node.ID == "" || node.ProjectID == "" {
		http.Error(w, "Missing task or project id", http.StatusBadRequest)
		return
	}
	node.TenantID = tenant

	var cmd interfaces.Command = &commands.SyncTaskNodeCommand{Node: node, Svc: h.WorkflowService}
	if err := cmd.Execute(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Logger.Debugf("Event ID: TASK_NODE_SYNCED, Description: %s (%s)", node.ID, node.Status)
	w.WriteHeader(http.StatusNoContent)
}

type deleteNodesRequest struct {
	TaskIDs []string `json:"taskIds"`
}

// DeleteTaskNodes removes deleted tasks from the graph. Managers only, as
// deleting tasks and projects is.
func (h *WorkflowHandler) DeleteTaskNodes(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, []string{RoleManager})
	if !ok {
		return
	}
	var req deleteNodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.TaskIDs) == 0 {
		http.Error(w, "Missing task IDs", http.StatusBadRequest)
		return
	}

	var cmd interfaces.Command = &commands.DeleteTaskNodesCommand{Tenant: tenant, TaskIDs: req.TaskIDs, Svc: h.WorkflowService}
	if err := cmd.Execute(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkflowHandler) GetDependencies(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	var q interfaces.Query = &queries.GetDependenciesQuery{Tenant: tenant, TaskID: mux.Vars(r)["taskId"], Svc: h.WorkflowService}
	deps, err := q.Execute(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if nodes, _ := deps.([]models.TaskNode); nodes == nil {
		deps = []models.TaskNode{}
	}
	writeJSON(w, http.StatusOK, deps)
}

func (h *WorkflowHandler) GetProjectDependencies(w http.ResponseWriter, r *http.Request) {
	tenant, _, ok := caller(w, r, anyRole)
	if !ok {
		return
	}
	var q interfaces.Query = &queries.GetProjectDependenciesQuery{Tenant: tenant, ProjectID: mux.Vars(r)["projectId"], Svc: h.WorkflowService}
	deps, err := q.Execute(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deps)
}
