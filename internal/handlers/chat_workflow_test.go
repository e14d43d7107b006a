package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"casr-tracker/internal/models"
	"casr-tracker/internal/services"
	"casr-tracker/internal/validation"
)

type fakeChat struct {
	unread []string
	beats  []string
}

func (f *fakeChat) Send(_ context.Context, _, sender, room, text string) (models.ChatMessage, error) {
	return models.ChatMessage{ID: "m1", RoomID: room, SenderID: sender, Text: text}, nil
}
func (f *fakeChat) Messages(context.Context, string, string, int) ([]models.ChatMessage, error) {
	return []models.ChatMessage{}, nil
}
func (f *fakeChat) MarkRoomRead(context.Context, string, string, string) (int, error) {
	n := len(f.unread)
	f.unread = nil
	return n, nil
}
func (f *fakeChat) Unread(context.Context, string, string, string) ([]string, error) {
	return append([]string{}, f.unread...), nil
}
func (f *fakeChat) Heartbeat(_ context.Context, _, user string) (models.PresenceView, error) {
	f.beats = append(f.beats, user)
	return models.PresenceView{Presence: models.Presence{UserID: user}, State: models.PresenceOnline}, nil
}
func (f *fakeChat) Presence(_ context.Context, _, user string) (models.PresenceView, error) {
	return models.PresenceView{Presence: models.Presence{UserID: user}, State: models.PresenceOffline, LastSeenLabel: "never seen"}, nil
}

func serve(h http.Handler, method, path, body, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Role", RoleMember)
	req.Header.Set("Tenant-ID", "dgca")
	req.Header.Set("Username", user)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChat_ReadFlow(t *testing.T) {
	chat := &fakeChat{unread: []string{"m1", "m2"}}
	r := NewChatRouter(chat, validation.New())

	rec := serve(r, http.MethodGet, "/api/chat/rooms/casr-107/unread", "", "budi")
	var unread struct {
		Count int `json:"count"`
	}
	json.NewDecoder(rec.Body).Decode(&unread)
	if unread.Count != 2 {
		t.Errorf("unread count = %d, want 2", unread.Count)
	}

	for i, want := range []int{2, 0} {
		rec := serve(r, http.MethodPut, "/api/chat/rooms/casr-107/read", "", "budi")
		var resp map[string]int
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp["marked"] != want {
			t.Errorf("call %d marked = %d, want %d", i, resp["marked"], want)
		}
	}
}

func TestChat_SendValidation(t *testing.T) {
	r := NewChatRouter(&fakeChat{}, validation.New())
	if rec := serve(r, http.MethodPost, "/api/chat/rooms/x/messages", `{"text":""}`, "budi"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty text: code = %d, want 422", rec.Code)
	}
	rec := serve(r, http.MethodPost, "/api/chat/rooms/x/messages", `{"text":"hello"}`, "budi")
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"senderId":"budi"`) {
		t.Errorf("send: %d %s", rec.Code, rec.Body)
	}
	if rec := serve(r, http.MethodGet, "/api/chat/rooms/x/messages", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("no username: code = %d, want 400", rec.Code)
	}
}

func TestChat_HeartbeatOnlyForSelf(t *testing.T) {
	chat := &fakeChat{}
	r := NewChatRouter(chat, validation.New())
	if rec := serve(r, http.MethodPut, "/api/chat/presence/citra", "", "budi"); rec.Code != http.StatusForbidden {
		t.Errorf("foreign heartbeat: code = %d, want 403", rec.Code)
	}
	if rec := serve(r, http.MethodPut, "/api/chat/presence/budi", "", "budi"); rec.Code != http.StatusOK {
		t.Errorf("own heartbeat: code = %d", rec.Code)
	}
	if len(chat.beats) != 1 {
		t.Errorf("beats = %v", chat.beats)
	}
	rec := serve(r, http.MethodGet, "/api/chat/presence/citra", "", "budi")
	if !strings.Contains(rec.Body.String(), `"state":"offline"`) {
		t.Errorf("presence body = %s", rec.Body)
	}
}

// fakeGraph remembers the tenant of every call. Project edges only exist
// for tenant dgca.
type fakeGraph struct {
	addErr  error
	nodes   []models.TaskNode
	deleted []string
	tenants []string
}

func (g *fakeGraph) seen(tenant string) { g.tenants = append(g.tenants, tenant) }

func (g *fakeGraph) EnsureTaskNode(_ context.Context, n models.TaskNode) error {
	g.seen(n.TenantID)
	g.nodes = append(g.nodes, n)
	return nil
}
func (g *fakeGraph) DeleteTaskNodes(_ context.Context, tenant string, ids []string) error {
	g.seen(tenant)
	g.deleted = append(g.deleted, ids...)
	return nil
}
func (g *fakeGraph) AddDependency(_ context.Context, tenant string, _ models.Dependency) error {
	g.seen(tenant)
	return g.addErr
}
func (g *fakeGraph) RemoveDependency(_ context.Context, tenant, from, to string) error {
	g.seen(tenant)
	return fmt.Errorf("dependency %s -> %s: %w", to, from, services.ErrNotFound)
}
func (g *fakeGraph) UpdateBlockedStatus(_ context.Context, tenant, _ string) error {
	g.seen(tenant)
	return nil
}
func (g *fakeGraph) GetDependents(_ context.Context, tenant, _ string) ([]models.TaskNode, error) {
	g.seen(tenant)
	return nil, nil
}
func (g *fakeGraph) GetDependencies(_ context.Context, tenant, _ string) ([]models.TaskNode, error) {
	g.seen(tenant)
	return nil, nil
}
func (g *fakeGraph) GetProjectDependencies(_ context.Context, tenant, _ string) ([]models.Dependency, error) {
	g.seen(tenant)
	if tenant != "dgca" {
		return []models.Dependency{}, nil
	}
	return []models.Dependency{{FromTaskID: "a", ToTaskID: "b"}}, nil
}

func managerRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Role", RoleManager)
	req.Header.Set("Tenant-ID", "dgca")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWorkflow_ErrorMapping(t *testing.T) {
	g := &fakeGraph{}
	r := NewWorkflowRouter(g)
	dep := `{"fromTaskId":"a","toTaskId":"b"}`

	if rec := managerRequest(r, http.MethodPost, "/api/workflow/dependency", dep); rec.Code != http.StatusCreated {
		t.Errorf("add: code = %d", rec.Code)
	}
	g.addErr = services.ErrCycle
	if rec := managerRequest(r, http.MethodPost, "/api/workflow/dependency", dep); rec.Code != http.StatusConflict {
		t.Errorf("cycle: code = %d, want 409", rec.Code)
	}
	g.addErr = services.ErrDependencyExists
	if rec := managerRequest(r, http.MethodPost, "/api/workflow/dependency", dep); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: code = %d, want 409", rec.Code)
	}
	if rec := managerRequest(r, http.MethodPost, "/api/workflow/dependency", `{"fromTaskId":"a"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: code = %d, want 400", rec.Code)
	}
	if rec := managerRequest(r, http.MethodDelete, "/api/workflow/dependency", dep); rec.Code != http.StatusNotFound {
		t.Errorf("remove missing: code = %d, want 404", rec.Code)
	}
}

func TestWorkflow_NodesAndQueries(t *testing.T) {
	g := &fakeGraph{}
	r := NewWorkflowRouter(g)

	rec := managerRequest(r, http.MethodPost, "/api/workflow/task-node", `{"id":"a","projectId":"p1","status":"Done","tenantId":"spoofed"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("task-node: code = %d %s", rec.Code, rec.Body)
	}
	if len(g.nodes) != 1 || g.nodes[0].TenantID != "dgca" {
		t.Errorf("nodes = %+v", g.nodes)
	}

	rec = managerRequest(r, http.MethodGet, "/api/workflow/dependencies/a", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("dependencies body = %s, want []", rec.Body)
	}
	rec = managerRequest(r, http.MethodGet, "/api/workflow/project/p1/dependencies", "")
	if !strings.Contains(rec.Body.String(), `"toTaskId":"b"`) {
		t.Errorf("project dependencies body = %s", rec.Body)
	}
}

func TestWorkflow_ScopedToCallerTenant(t *testing.T) {
	g := &fakeGraph{}
	r := NewWorkflowRouter(g)

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/project/p1/dependencies", nil)
	req.Header.Set("Role", RoleMember)
	req.Header.Set("Tenant-ID", "airnav")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("other tenant sees edges: %s", rec.Body)
	}

	managerRequest(r, http.MethodPost, "/api/workflow/dependency", `{"fromTaskId":"a","toTaskId":"b"}`)
	managerRequest(r, http.MethodGet, "/api/workflow/dependencies/a", "")
	for i, tenant := range g.tenants {
		want := "dgca"
		if i == 0 {
			want = "airnav"
		}
		if tenant != want {
			t.Errorf("call %d ran for tenant %q, want %q", i, tenant, want)
		}
	}
}

func TestWorkflow_DeleteTaskNodes(t *testing.T) {
	g := &fakeGraph{}
	r := NewWorkflowRouter(g)

	rec := managerRequest(r, http.MethodDelete, "/api/workflow/task-nodes", `{"taskIds":["a","a1"]}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: code = %d %s", rec.Code, rec.Body)
	}
	if strings.Join(g.deleted, ",") != "a,a1" {
		t.Errorf("deleted = %v", g.deleted)
	}
	if rec := managerRequest(r, http.MethodDelete, "/api/workflow/task-nodes", `{"taskIds":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty ids: code = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/workflow/task-nodes", strings.NewReader(`{"taskIds":["a"]}`))
	req.Header.Set("Role", RoleMember)
	req.Header.Set("Tenant-ID", "dgca")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member delete: code = %d, want 403", rec.Code)
	}
}
