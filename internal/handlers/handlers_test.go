package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"casr-tracker/internal/models"
	"casr-tracker/internal/search"
	"casr-tracker/internal/services"
	"casr-tracker/internal/timeline"
	"casr-tracker/internal/validation"
)

type fakeProjects struct {
	byID      map[string]models.Project
	updateErr error
}

func (f *fakeProjects) GetAllProjects(_ context.Context, tenant string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.byID {
		if p.TenantID == tenant {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetProjectByID(_ context.Context, tenant, id string) (*models.Project, error) {
	p, ok := f.byID[id]
	if !ok || p.TenantID != tenant {
		return nil, fmt.Errorf("project %s: %w", id, services.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeProjects) CreateProject(_ context.Context, tenant, actor string, p *models.Project) error {
	p.ID = primitive.NewObjectID()
	p.TenantID = tenant
	p.CreatedBy = actor
	f.byID[p.ID.Hex()] = *p
	return nil
}

func (f *fakeProjects) UpdateProject(_ context.Context, tenant, _, id string, p *models.Project) (*models.Project, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.byID[id] = *p
	return p, nil
}

func (f *fakeProjects) DeleteProject(_ context.Context, tenant, _, id string) (*models.Project, error) {
	p, err := f.GetProjectByID(context.Background(), tenant, id)
	if err != nil {
		return nil, err
	}
	delete(f.byID, id)
	return p, nil
}

func (f *fakeProjects) AddTask(_ context.Context, tenant, _, projectID, parentID string, t models.Task) (*models.Project, models.Task, error) {
	p, err := f.GetProjectByID(context.Background(), tenant, projectID)
	if err != nil {
		return nil, models.Task{}, err
	}
	t.ID = "new"
	p.Tasks = append(p.Tasks, t)
	f.byID[projectID] = *p
	return p, t, nil
}

func (f *fakeProjects) UpdateTaskStatus(_ context.Context, tenant, _, projectID, taskID string, st models.TaskStatus) (*models.Project, models.Task, error) {
	if f.updateErr != nil {
		return nil, models.Task{}, f.updateErr
	}
	p, err := f.GetProjectByID(context.Background(), tenant, projectID)
	if err != nil {
		return nil, models.Task{}, err
	}
	t := models.FindTask(p.Tasks, taskID)
	if t == nil {
		return nil, models.Task{}, fmt.Errorf("task %s: %w", taskID, services.ErrNotFound)
	}
	t.Status = st
	return p, *t, nil
}

func (f *fakeProjects) DeleteTask(_ context.Context, tenant, _, projectID, taskID string) (*models.Project, models.Task, error) {
	p, err := f.GetProjectByID(context.Background(), tenant, projectID)
	if err != nil {
		return nil, models.Task{}, err
	}
	t := models.FindTask(p.Tasks, taskID)
	if t == nil {
		return nil, models.Task{}, fmt.Errorf("task %s: %w", taskID, services.ErrNotFound)
	}
	removed := *t
	p.Tasks, _ = models.RemoveTask(p.Tasks, taskID)
	f.byID[projectID] = *p
	return p, removed, nil
}

type fakeWorkflow struct {
	edges   []timeline.Edge
	err     error
	synced  []models.TaskNode
	dropped []string
}

func (f *fakeWorkflow) ProjectDependencies(context.Context, string, http.Header) ([]timeline.Edge, error) {
	return f.edges, f.err
}

func (f *fakeWorkflow) SyncTaskNode(_ context.Context, n models.TaskNode, _ http.Header) error {
	f.synced = append(f.synced, n)
	return f.err
}

func (f *fakeWorkflow) DeleteTaskNodes(_ context.Context, ids []string, _ http.Header) error {
	f.dropped = append(f.dropped, ids...)
	return f.err
}

type memRecords[T any] struct {
	rows []T
}

func (m *memRecords[T]) Name() string { return "records" }
func (m *memRecords[T]) List(context.Context, string) ([]T, error) {
	return m.rows, nil
}
func (m *memRecords[T]) Get(_ context.Context, _, id string) (*T, error) {
	return nil, fmt.Errorf("record %s: %w", id, services.ErrNotFound)
}
func (m *memRecords[T]) Create(_ context.Context, _, _ string, rec *T) error {
	m.rows = append(m.rows, *rec)
	return nil
}
func (m *memRecords[T]) Update(_ context.Context, _, _, id string, _ *T) error {
	return fmt.Errorf("record %s was changed by someone else: %w", id, services.ErrConflict)
}
func (m *memRecords[T]) Delete(context.Context, string, string, string) error { return nil }

type fakeSearch struct{ ix *search.Index }

func (f fakeSearch) Search(tenant, q string, limit int) []search.Group {
	return f.ix.Search(tenant, q, limit)
}

type fixture struct {
	router   *mux.Router
	projects *fakeProjects
	workflow *fakeWorkflow
	sanction *memRecords[models.Sanction]
	pid      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pid := primitive.NewObjectID()
	projects := &fakeProjects{byID: map[string]models.Project{
		pid.Hex(): {
			Base: models.Base{ID: pid, TenantID: "dgca"}, Name: "CASR 107 revision", Type: models.ProjectRulemaking,
			StartDate: "2026-03-02", EndDate: "2026-03-29", Status: models.StatusOnTrack,
			Tasks: []models.Task{
				{ID: "a", Title: "Draft", StartDate: "2026-03-02", DueDate: "2026-03-06", Status: models.TaskDone},
				{ID: "b", Title: "Consult", StartDate: "2026-03-09", DueDate: "2026-03-13", Status: models.TaskDone},
			},
		},
	}}
	wf := &fakeWorkflow{edges: []timeline.Edge{{From: "a", To: "b"}}}
	sanctions := &memRecords[models.Sanction]{}

	ix := search.NewIndex()
	src, _ := search.SourceByKey("projects")
	doc := map[string]any{"_id": pid.Hex(), "tenantId": "dgca", "name": "CASR 107 revision"}
	ix.Upsert("projects", pid.Hex(), src.Items(doc))

	r := NewDashboardRouter(Dashboard{
		Projects:    projects,
		Workflow:    wf,
		Compliance:  &memRecords[models.ComplianceRecord]{},
		Occurrences: &memRecords[models.OccurrenceReport]{},
		Sanctions:   sanctions,
		Search:      fakeSearch{ix},
	}, validation.New())
	return &fixture{router: r, projects: projects, workflow: wf, sanction: sanctions, pid: pid.Hex()}
}

func (f *fixture) do(t *testing.T, method, path, body, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		req.Header.Set("Role", role)
	}
	req.Header.Set("Tenant-ID", "dgca")
	req.Header.Set("Username", "andi")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListProjects_DerivedStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/projects?sort=name", "", RoleMember)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var page struct {
		Rows  []models.ProjectView `json:"rows"`
		Total int                  `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Rows[0].DerivedStatus != models.StatusCompleted {
		t.Errorf("page = %+v, want one Completed project", page)
	}
	if page.Rows[0].Status != models.StatusOnTrack {
		t.Errorf("stored status changed: %s", page.Rows[0].Status)
	}
}

func TestRoleAndTenantRequired(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/api/projects", "", ""); rec.Code != http.StatusForbidden {
		t.Errorf("no role: status = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/projects", `{}`, RoleMember); rec.Code != http.StatusForbidden {
		t.Errorf("member create: status = %d, want 403", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Role", RoleMember)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no tenant: status = %d, want 400", rec.Code)
	}
}

func TestCreateProject_FieldErrors(t *testing.T) {
	f := newFixture(t)
	body := `{"name":"X","type":"Rulemaking","startDate":"2026-05-01","endDate":"2026-04-01"}`
	rec := f.do(t, http.MethodPost, "/api/projects", body, RoleManager)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Errors["name"] == "" || resp.Errors["endDate"] == "" {
		t.Errorf("errors = %v, want name and endDate", resp.Errors)
	}
}

func TestCreateProject_SyncsTasks(t *testing.T) {
	f := newFixture(t)
	body := `{"name":"Tim Kerja SMS","type":"Tim Kerja","tasks":[{"id":"x1","title":"Kick-off"}]}`
	rec := f.do(t, http.MethodPost, "/api/projects", body, RoleManager)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if len(f.workflow.synced) != 1 || f.workflow.synced[0].ID != "x1" {
		t.Errorf("synced = %+v", f.workflow.synced)
	}
}

func TestProjectStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/projects/"+f.pid+"/status", "", RoleMember)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["status"] != string(models.StatusCompleted) || resp["storedStatus"] != string(models.StatusOnTrack) {
		t.Errorf("resp = %v", resp)
	}

	if rec := f.do(t, http.MethodGet, "/api/projects/"+primitive.NewObjectID().Hex()+"/status", "", RoleMember); rec.Code != http.StatusNotFound {
		t.Errorf("unknown project: status = %d, want 404", rec.Code)
	}
}

func TestTimeline_WithAndWithoutEdges(t *testing.T) {
	f := newFixture(t)
	path := "/api/projects/" + f.pid + "/timeline?mode=day"

	rec := f.do(t, http.MethodGet, path, "", RoleMember)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp timelineResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.DependenciesAvailable || len(resp.Edges) != 1 {
		t.Errorf("edges = %+v, available = %v", resp.Edges, resp.DependenciesAvailable)
	}
	if len(resp.Bars) != 2 || resp.Bars[1].Offset <= resp.Bars[0].Offset {
		t.Errorf("bars = %+v", resp.Bars)
	}

	f.workflow.err = errors.New("circuit breaker is open")
	rec = f.do(t, http.MethodGet, path, "", RoleMember)
	if rec.Code != http.StatusOK {
		t.Fatalf("breaker open: status = %d", rec.Code)
	}
	resp = timelineResponse{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.DependenciesAvailable || len(resp.Edges) != 0 || len(resp.Bars) != 2 {
		t.Errorf("degraded timeline = %+v", resp)
	}

	if rec := f.do(t, http.MethodGet, "/api/projects/"+f.pid+"/timeline?mode=month", "", RoleMember); rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode: status = %d, want 400", rec.Code)
	}
}

func TestChangeTaskStatus(t *testing.T) {
	f := newFixture(t)
	base := "/api/projects/" + f.pid + "/tasks/"

	rec := f.do(t, http.MethodPut, base+"b/status", `{"status":"In Progress"}`, RoleMember)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if n := len(f.workflow.synced); n != 1 || f.workflow.synced[0].Status != models.TaskInProgress {
		t.Errorf("synced = %+v", f.workflow.synced)
	}

	if rec := f.do(t, http.MethodPut, base+"b/status", `{"status":"Paused"}`, RoleMember); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad status: code = %d, want 422", rec.Code)
	}
	if rec := f.do(t, http.MethodPut, base+"zz/status", `{"status":"Done"}`, RoleMember); rec.Code != http.StatusNotFound {
		t.Errorf("unknown task: code = %d, want 404", rec.Code)
	}

	f.projects.updateErr = fmt.Errorf("project changed: %w", services.ErrConflict)
	if rec := f.do(t, http.MethodPut, base+"b/status", `{"status":"Done"}`, RoleMember); rec.Code != http.StatusConflict {
		t.Errorf("conflict: code = %d, want 409", rec.Code)
	}
}

func TestRecords_ValidationAndConflict(t *testing.T) {
	f := newFixture(t)
	body := `{"operator":"PT Contoh Air","casrPart":"CASR 121","kind":"fine","issuedAt":"2026-02-01","reference":"SK-9"}`
	rec := f.do(t, http.MethodPost, "/api/sanctions", body, RoleManager)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), `"amount"`) {
		t.Errorf("fine without amount: %d %s", rec.Code, rec.Body)
	}

	body = `{"operator":"PT Contoh Air","casrPart":"CASR 121","kind":"fine","amount":5000000,"issuedAt":"2026-02-01","reference":"SK-9"}`
	if rec := f.do(t, http.MethodPost, "/api/sanctions", body, RoleManager); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	rec = f.do(t, http.MethodGet, "/api/sanctions?f.kind=FINE", "", RoleMember)
	var page struct {
		Total int `json:"total"`
	}
	json.NewDecoder(rec.Body).Decode(&page)
	if page.Total != 1 {
		t.Errorf("filtered total = %d, want 1", page.Total)
	}

	if rec := f.do(t, http.MethodPut, "/api/sanctions/abc", body, RoleManager); rec.Code != http.StatusConflict {
		t.Errorf("stale update: code = %d, want 409", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/sanctions/abc", "", RoleMember); rec.Code != http.StatusNotFound {
		t.Errorf("missing record: code = %d, want 404", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/search?q=%20%20", "", RoleMember)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("blank query body = %s, want []", rec.Body)
	}
	rec = f.do(t, http.MethodGet, "/api/search?q=casr%20107", "", RoleMember)
	var groups []search.Group
	json.NewDecoder(rec.Body).Decode(&groups)
	if len(groups) != 1 || groups[0].Source != "projects" {
		t.Errorf("groups = %+v", groups)
	}
}

func TestDeleteTask_DropsGraphNodes(t *testing.T) {
	f := newFixture(t)
	p := f.projects.byID[f.pid]
	p.Tasks[0].Subtasks = []models.Task{{ID: "a1", Title: "Annex"}}
	f.projects.byID[f.pid] = p

	rec := f.do(t, http.MethodDelete, "/api/projects/"+f.pid+"/tasks/a", "", RoleManager)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	if got := strings.Join(f.workflow.dropped, ","); got != "a,a1" {
		t.Errorf("dropped = %q, want a,a1", got)
	}

	if rec := f.do(t, http.MethodDelete, "/api/projects/"+f.pid+"/tasks/zz", "", RoleManager); rec.Code != http.StatusNotFound {
		t.Errorf("missing task: status = %d, want 404", rec.Code)
	}
}

func TestDeleteProject_DropsGraphNodes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodDelete, "/api/projects/"+f.pid, "", RoleManager)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d %s", rec.Code, rec.Body)
	}
	if got := strings.Join(f.workflow.dropped, ","); got != "a,b" {
		t.Errorf("dropped = %q, want a,b", got)
	}
}
