package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
)

// WorkflowService keeps task dependencies as DEPENDS_ON edges in Neo4j:
// (to)-[:DEPENDS_ON]->(from). Every node carries its tenantId and every
// query matches on it, so tenants never see or link each other's tasks.
type WorkflowService struct {
	Driver neo4j.DriverWithContext
}

func NewWorkflowService(driver neo4j.DriverWithContext) *WorkflowService {
	return &WorkflowService{Driver: driver}
}

func (s *WorkflowService) AddDependency(ctx context.Context, tenant string, dep models.Dependency) error {
	exist, err := s.TasksExist(ctx, tenant, dep.FromTaskID, dep.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exist {
		return fmt.Errorf("task %s or %s: %w", dep.FromTaskID, dep.ToTaskID, ErrNotFound)
	}

	exists, err := s.DependencyExists(ctx, tenant, dep.FromTaskID, dep.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check if dependency exists: %w", err)
	}
	if exists {
		return ErrDependencyExists
	}

	hasCycle, err := s.CreatesCycle(ctx, tenant, dep.FromTaskID, dep.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check cycle: %w", err)
	}
	if hasCycle {
		return ErrCycle
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId, tenantId: $tenantId}), (to:Task {id: $toId, tenantId: $tenantId})
			MERGE (to)-[:DEPENDS_ON]->(from)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId":   dep.FromTaskID,
			"toId":     dep.ToTaskID,
			"tenantId": tenant,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create dependency relation: %w", err)
	}

	logging.Logger.Infof("Event ID: DEPENDENCY_ADDED, Description: %s now depends on %s", dep.ToTaskID, dep.FromTaskID)
	return nil
}

func (s *WorkflowService) RemoveDependency(ctx context.Context, tenant, fromTaskID, toTaskID string) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId, tenantId: $tenantId})-[r:DEPENDS_ON]->(from:Task {id: $fromId, tenantId: $tenantId})
			DELETE r
			RETURN COUNT(r) AS removed
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId":   fromTaskID,
			"toId":     toTaskID,
			"tenantId": tenant,
		})
		if err != nil {
			return int64(0), err
		}
		if res.Next(ctx) {
			n, _ := res.Record().Values[0].(int64)
			return n, nil
		}
		return int64(0), res.Err()
	})
	if err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	if result.(int64) == 0 {
		return fmt.Errorf("dependency %s -> %s: %w", toTaskID, fromTaskID, ErrNotFound)
	}

	logging.Logger.Infof("Event ID: DEPENDENCY_REMOVED, Description: %s no longer depends on %s", toTaskID, fromTaskID)
	return nil
}

// CreatesCycle reports whether toID depending on fromID would close a loop,
// that is whether fromID already reaches toID.
func (s *WorkflowService) CreatesCycle(ctx context.Context, tenant, fromID, toID string) (bool, error) {
	if fromID == toID {
		return true, nil
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId, tenantId: $tenantId}), (to:Task {id: $toId, tenantId: $tenantId})
			RETURN EXISTS { (from)-[:DEPENDS_ON*1..]->(to) } AS hasCycle
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId":   fromID,
			"toId":     toID,
			"tenantId": tenant,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			val, ok := res.Record().Values[0].(bool)
			if !ok {
				return false, fmt.Errorf("unexpected result type")
			}
			return val, nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, fmt.Errorf("cycle detection failed: %w", err)
	}
	return result.(bool), nil
}

func (s *WorkflowService) TasksExist(ctx context.Context, tenant, id1, id2 string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (a:Task {id: $id1, tenantId: $tenantId})
			OPTIONAL MATCH (b:Task {id: $id2, tenantId: $tenantId})
			RETURN a IS NOT NULL AND b IS NOT NULL AS bothExist
		`
		res, err := tx.Run(ctx, query, map[string]any{"id1": id1, "id2": id2, "tenantId": tenant})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *WorkflowService) DependencyExists(ctx context.Context, tenant, fromID, toID string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId, tenantId: $tenantId})-[r:DEPENDS_ON]->(from:Task {id: $fromId, tenantId: $tenantId})
			RETURN COUNT(r) > 0 AS exists
		`
		res, err := tx.Run(ctx, query, map[string]any{"fromId": fromID, "toId": toID, "tenantId": tenant})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// EnsureTaskNode creates the node or refreshes its title and status. The
// node is keyed by id and tenant together.
func (s *WorkflowService) EnsureTaskNode(ctx context.Context, node models.TaskNode) error {
	if node.TenantID == "" {
		return fmt.Errorf("task node %s has no tenant: %w", node.ID, ErrInvalidID)
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Task {id: $id, tenantId: $tenantId})
			ON CREATE SET
				t.projectId = $projectId,
				t.blocked = false
			SET t.title = $title, t.status = $status
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":        node.ID,
			"projectId": node.ProjectID,
			"tenantId":  node.TenantID,
			"title":     node.Title,
			"status":    string(node.Status),
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to ensure task node %s: %w", node.ID, err)
	}
	return nil
}

// DeleteTaskNodes removes the nodes and every edge touching them.
func (s *WorkflowService) DeleteTaskNodes(ctx context.Context, tenant string, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {tenantId: $tenantId})
			WHERE t.id IN $ids
			DETACH DELETE t
		`
		_, err := tx.Run(ctx, query, map[string]any{"ids": taskIDs, "tenantId": tenant})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to delete task nodes: %w", err)
	}

	logging.Logger.Infof("Event ID: TASK_NODES_DELETED, Description: %d task nodes removed", len(taskIDs))
	return nil
}

const nodeColumns = `
	RETURN n.id AS id, n.projectId AS projectId, n.tenantId AS tenantId,
	       n.title AS title, n.status AS status, n.blocked AS blocked`

// GetDependencies lists the tasks taskID waits on.
func (s *WorkflowService) GetDependencies(ctx context.Context, tenant, taskID string) ([]models.TaskNode, error) {
	return s.neighbours(ctx, `
		MATCH (:Task {id: $taskId, tenantId: $tenantId})-[:DEPENDS_ON]->(n:Task {tenantId: $tenantId})`+nodeColumns,
		tenant, taskID)
}

// GetDependents lists the tasks waiting on taskID.
func (s *WorkflowService) GetDependents(ctx context.Context, tenant, taskID string) ([]models.TaskNode, error) {
	return s.neighbours(ctx, `
		MATCH (n:Task {tenantId: $tenantId})-[:DEPENDS_ON]->(:Task {id: $taskId, tenantId: $tenantId})`+nodeColumns,
		tenant, taskID)
}

func (s *WorkflowService) neighbours(ctx context.Context, query, tenant, taskID string) ([]models.TaskNode, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"taskId": taskID, "tenantId": tenant})
		if err != nil {
			return nil, err
		}
		var nodes []models.TaskNode
		for res.Next(ctx) {
			nodes = append(nodes, nodeFromRecord(res.Record()))
		}
		return nodes, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.TaskNode), nil
}

func nodeFromRecord(record *neo4j.Record) models.TaskNode {
	get := func(key string) string {
		v, _ := record.Get(key)
		s, _ := v.(string)
		return s
	}
	blocked, _ := record.Get("blocked")
	b, _ := blocked.(bool)
	return models.TaskNode{
		ID:        get("id"),
		ProjectID: get("projectId"),
		TenantID:  get("tenantId"),
		Title:     get("title"),
		Status:    models.TaskStatus(get("status")),
		Blocked:   b,
	}
}

// GetProjectDependencies returns every edge between tasks of one project.
func (s *WorkflowService) GetProjectDependencies(ctx context.Context, tenant, projectID string) ([]models.Dependency, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {projectId: $projectId, tenantId: $tenantId})-[:DEPENDS_ON]->(from:Task {tenantId: $tenantId})
			RETURN from.id AS fromTaskId, to.id AS toTaskId
		`
		res, err := tx.Run(ctx, query, map[string]any{"projectId": projectID, "tenantId": tenant})
		if err != nil {
			return nil, err
		}
		deps := []models.Dependency{}
		for res.Next(ctx) {
			from, _ := res.Record().Get("fromTaskId")
			to, _ := res.Record().Get("toTaskId")
			fromID, _ := from.(string)
			toID, _ := to.(string)
			deps = append(deps, models.Dependency{FromTaskID: fromID, ToTaskID: toID})
		}
		return deps, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Dependency), nil
}

// Blocked reports whether any of deps is unfinished.
func Blocked(deps []models.TaskNode) bool {
	for _, dep := range deps {
		if dep.Status != models.TaskDone {
			return true
		}
	}
	return false
}

func (s *WorkflowService) UpdateBlockedStatus(ctx context.Context, tenant, taskID string) error {
	dependencies, err := s.GetDependencies(ctx, tenant, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependencies: %w", err)
	}
	isBlocked := Blocked(dependencies)

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `MATCH (t:Task {id: $taskId, tenantId: $tenantId}) SET t.blocked = $isBlocked`, map[string]any{
			"taskId":    taskID,
			"tenantId":  tenant,
			"isBlocked": isBlocked,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to update blocked status: %w", err)
	}

	logging.Logger.Debugf("Event ID: BLOCKED_STATUS_UPDATED, Description: task %s blocked=%v", taskID, isBlocked)
	return nil
}
