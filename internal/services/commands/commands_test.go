package commands

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"casr-tracker/internal/models"
)

const tenant = "dgca"

// fakeGraph records calls and keeps edges as to -> []from. Lookups honour
// the node's tenant the way the Cypher queries do.
type fakeGraph struct {
	nodes   map[string]models.TaskNode
	edges   map[string][]string
	addErr  error
	updated []string
	deleted []string
}

func newFakeGraph(nodes ...models.TaskNode) *fakeGraph {
	g := &fakeGraph{nodes: map[string]models.TaskNode{}, edges: map[string][]string{}}
	for _, n := range nodes {
		if n.TenantID == "" {
			n.TenantID = tenant
		}
		g.nodes[n.ID] = n
	}
	return g
}

func (g *fakeGraph) visible(tenant, id string) bool {
	n, ok := g.nodes[id]
	return ok && n.TenantID == tenant
}

func (g *fakeGraph) EnsureTaskNode(_ context.Context, n models.TaskNode) error {
	g.nodes[n.ID] = n
	return nil
}

func (g *fakeGraph) DeleteTaskNodes(_ context.Context, tenant string, ids []string) error {
	for _, id := range ids {
		if !g.visible(tenant, id) {
			continue
		}
		g.deleted = append(g.deleted, id)
		delete(g.nodes, id)
		delete(g.edges, id)
		for to, froms := range g.edges {
			g.edges[to] = slices.DeleteFunc(froms, func(f string) bool { return f == id })
		}
	}
	return nil
}

func (g *fakeGraph) AddDependency(_ context.Context, tenant string, d models.Dependency) error {
	if g.addErr != nil {
		return g.addErr
	}
	if !g.visible(tenant, d.FromTaskID) || !g.visible(tenant, d.ToTaskID) {
		return errors.New("not found")
	}
	g.edges[d.ToTaskID] = append(g.edges[d.ToTaskID], d.FromTaskID)
	return nil
}

func (g *fakeGraph) RemoveDependency(_ context.Context, tenant, from, to string) error {
	g.edges[to] = slices.DeleteFunc(g.edges[to], func(f string) bool { return f == from })
	return nil
}

func (g *fakeGraph) UpdateBlockedStatus(_ context.Context, tenant, taskID string) error {
	if !g.visible(tenant, taskID) {
		return nil
	}
	g.updated = append(g.updated, taskID)
	n := g.nodes[taskID]
	n.Blocked = false
	for _, from := range g.edges[taskID] {
		if g.nodes[from].Status != models.TaskDone {
			n.Blocked = true
		}
	}
	g.nodes[taskID] = n
	return nil
}

func (g *fakeGraph) GetDependents(_ context.Context, tenant, taskID string) ([]models.TaskNode, error) {
	var out []models.TaskNode
	for to, froms := range g.edges {
		if slices.Contains(froms, taskID) && g.visible(tenant, to) {
			out = append(out, g.nodes[to])
		}
	}
	return out, nil
}

func TestAddDependency_BlocksTarget(t *testing.T) {
	g := newFakeGraph(models.TaskNode{ID: "a", Status: models.TaskInProgress}, models.TaskNode{ID: "b"})
	h := NewAddDependencyHandler(g)

	if err := h.Handle(context.Background(), AddDependencyCommand{Tenant: tenant, Dependency: models.Dependency{FromTaskID: "a", ToTaskID: "b"}}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !g.nodes["b"].Blocked {
		t.Error("b should be blocked by unfinished a")
	}
	if !reflect.DeepEqual(g.updated, []string{"b"}) {
		t.Errorf("updated = %v, want [b]", g.updated)
	}
}

func TestAddDependency_OtherTenantRejected(t *testing.T) {
	g := newFakeGraph(models.TaskNode{ID: "a"}, models.TaskNode{ID: "b", TenantID: "other"})
	err := NewAddDependencyHandler(g).Handle(context.Background(), AddDependencyCommand{Tenant: tenant, Dependency: models.Dependency{FromTaskID: "a", ToTaskID: "b"}})
	if err == nil {
		t.Fatal("linked a task of another tenant")
	}
	if len(g.edges["b"]) != 0 {
		t.Errorf("edges = %v, want none", g.edges)
	}
}

func TestAddDependency_WrapsError(t *testing.T) {
	sentinel := errors.New("cycle")
	g := newFakeGraph()
	g.addErr = sentinel
	err := NewAddDependencyHandler(g).Handle(context.Background(), AddDependencyCommand{Tenant: tenant, Dependency: models.Dependency{FromTaskID: "a", ToTaskID: "b"}})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped sentinel", err)
	}
	if len(g.updated) != 0 {
		t.Errorf("blocked status touched after failure: %v", g.updated)
	}
}

func TestRemoveDependency_Unblocks(t *testing.T) {
	g := newFakeGraph(models.TaskNode{ID: "a"}, models.TaskNode{ID: "b", Blocked: true})
	g.edges["b"] = []string{"a"}

	err := NewRemoveDependencyHandler(g).Handle(context.Background(), RemoveDependencyCommand{Tenant: tenant, FromTaskID: "a", ToTaskID: "b"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if g.nodes["b"].Blocked {
		t.Error("b still blocked")
	}
}

func TestSyncTaskNode_ReleasesDependents(t *testing.T) {
	g := newFakeGraph(models.TaskNode{ID: "a", Status: models.TaskInProgress}, models.TaskNode{ID: "b", Blocked: true})
	g.edges["b"] = []string{"a"}

	cmd := SyncTaskNodeCommand{Node: models.TaskNode{ID: "a", TenantID: tenant, Status: models.TaskDone}, Svc: g}
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if g.nodes["b"].Blocked {
		t.Error("b should be released once a is done")
	}
	if !reflect.DeepEqual(g.updated, []string{"a", "b"}) {
		t.Errorf("updated = %v, want [a b]", g.updated)
	}
}

func TestDeleteTaskNodes_ReleasesSurvivors(t *testing.T) {
	// c waits on a; b (a subtask removed with a) waits on a too.
	g := newFakeGraph(
		models.TaskNode{ID: "a", Status: models.TaskInProgress},
		models.TaskNode{ID: "b", Blocked: true},
		models.TaskNode{ID: "c", Blocked: true},
	)
	g.edges["b"] = []string{"a"}
	g.edges["c"] = []string{"a"}

	cmd := DeleteTaskNodesCommand{Tenant: tenant, TaskIDs: []string{"a", "b"}, Svc: g}
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !reflect.DeepEqual(g.deleted, []string{"a", "b"}) {
		t.Errorf("deleted = %v, want [a b]", g.deleted)
	}
	if g.nodes["c"].Blocked {
		t.Error("c still blocked by a deleted task")
	}
	if !reflect.DeepEqual(g.updated, []string{"c"}) {
		t.Errorf("updated = %v, want only the survivor c", g.updated)
	}
}

func TestDeleteTaskNodes_IgnoresOtherTenant(t *testing.T) {
	g := newFakeGraph(models.TaskNode{ID: "a", TenantID: "other"})
	cmd := DeleteTaskNodesCommand{Tenant: tenant, TaskIDs: []string{"a"}, Svc: g}
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := g.nodes["a"]; !ok {
		t.Error("deleted a node of another tenant")
	}
}
