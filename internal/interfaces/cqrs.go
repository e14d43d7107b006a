package interfaces

import (
	"context"

	"casr-tracker/internal/models"
)

type Command interface {
	Execute(ctx context.Context) error
}

type Query interface {
	Execute(ctx context.Context) (interface{}, error)
}

// Workflow contexts take the caller's tenant on every call; the node's
// TenantID plays that role for EnsureTaskNode.
type WorkflowCommandContext interface {
	EnsureTaskNode(ctx context.Context, node models.TaskNode) error
	DeleteTaskNodes(ctx context.Context, tenant string, taskIDs []string) error
	AddDependency(ctx context.Context, tenant string, dependency models.Dependency) error
	RemoveDependency(ctx context.Context, tenant, fromTaskID, toTaskID string) error
	UpdateBlockedStatus(ctx context.Context, tenant, taskID string) error
	GetDependents(ctx context.Context, tenant, taskID string) ([]models.TaskNode, error)
}

type WorkflowQueryContext interface {
	GetDependencies(ctx context.Context, tenant, taskID string) ([]models.TaskNode, error)
	GetProjectDependencies(ctx context.Context, tenant, projectID string) ([]models.Dependency, error)
}
