package queries

import (
	"context"

	"casr-tracker/internal/interfaces"
)

type GetDependenciesQuery struct {
	Tenant string
	TaskID string
	Svc    interfaces.WorkflowQueryContext
}

func (q *GetDependenciesQuery) Execute(ctx context.Context) (interface{}, error) {
	return q.Svc.GetDependencies(ctx, q.Tenant, q.TaskID)
}
