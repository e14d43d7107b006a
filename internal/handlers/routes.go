package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"casr-tracker/internal/models"
	"casr-tracker/internal/validation"
)

// Dashboard bundles the stores behind the dashboard service.
type Dashboard struct {
	Projects    ProjectStore
	Workflow    WorkflowGateway
	Compliance  RecordStore[models.ComplianceRecord]
	Occurrences RecordStore[models.OccurrenceReport]
	Sanctions   RecordStore[models.Sanction]
	Activity    ActivityStore
	Users       UserStore
	Search      Searcher
}

func NewDashboardRouter(d Dashboard, v *validation.Validator) *mux.Router {
	projects := NewProjectHandler(d.Projects, d.Workflow, v)
	activity := &ActivityHandler{Activity: d.Activity}
	users := &UserHandler{Users: d.Users}
	searchHandler := &SearchHandler{Index: d.Search}

	r := mux.NewRouter()
	r.HandleFunc("/api/projects", projects.GetAllProjects).Methods(http.MethodGet)
	r.HandleFunc("/api/projects", projects.CreateProject).Methods(http.MethodPost)
	r.HandleFunc("/api/projects/{id}", projects.GetProjectByID).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id}", projects.UpdateProject).Methods(http.MethodPut)
	r.HandleFunc("/api/projects/{id}", projects.DeleteProject).Methods(http.MethodDelete)
	r.HandleFunc("/api/projects/{id}/status", projects.GetProjectStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id}/timeline", projects.GetProjectTimeline).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id}/tasks", projects.GetProjectTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id}/tasks", projects.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/projects/{id}/tasks/{taskId}", projects.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/api/projects/{id}/tasks/{taskId}/status", projects.ChangeTaskStatus).Methods(http.MethodPut)

	NewRecordHandler(d.Compliance, complianceTable, v).Register(r, "/api/compliance")
	NewRecordHandler(d.Occurrences, occurrenceTable, v).Register(r, "/api/occurrences")
	NewRecordHandler(d.Sanctions, sanctionTable, v).Register(r, "/api/sanctions")

	r.HandleFunc("/api/activity", activity.GetActivity).Methods(http.MethodGet)
	r.HandleFunc("/api/users", users.GetUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/search", searchHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/health", health("Dashboard service")).Methods(http.MethodGet)
	return r
}

func NewChatRouter(chat ChatBackend, v *validation.Validator) *mux.Router {
	h := NewChatHandler(chat, v)

	r := mux.NewRouter()
	r.HandleFunc("/api/chat/rooms/{roomId}/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/rooms/{roomId}/messages", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/rooms/{roomId}/read", h.MarkRoomRead).Methods(http.MethodPut)
	r.HandleFunc("/api/chat/rooms/{roomId}/unread", h.GetUnread).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/presence/{userId}", h.GetPresence).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/presence/{userId}", h.Heartbeat).Methods(http.MethodPut)
	r.HandleFunc("/health", health("Chat service")).Methods(http.MethodGet)
	return r
}

func NewWorkflowRouter(graph WorkflowGraph) *mux.Router {
	h := NewWorkflowHandler(graph)

	r := mux.NewRouter()
	r.HandleFunc("/api/workflow/task-node", h.EnsureTaskNode).Methods(http.MethodPost)
	r.HandleFunc("/api/workflow/task-nodes", h.DeleteTaskNodes).Methods(http.MethodDelete)
	r.HandleFunc("/api/workflow/dependency", h.AddDependency).Methods(http.MethodPost)
	r.HandleFunc("/api/workflow/dependency", h.RemoveDependency).Methods(http.MethodDelete)
	r.HandleFunc("/api/workflow/dependencies/{taskId}", h.GetDependencies).Methods(http.MethodGet)
	r.HandleFunc("/api/workflow/project/{projectId}/dependencies", h.GetProjectDependencies).Methods(http.MethodGet)
	r.HandleFunc("/health", health("Workflow service")).Methods(http.MethodGet)
	return r
}
