package queries

import (
	"context"

	"casr-tracker/internal/interfaces"
)

type GetProjectDependenciesQuery struct {
	Tenant    string
	ProjectID string
	Svc       interfaces.WorkflowQueryContext
}

func (q *GetProjectDependenciesQuery) Execute(ctx context.Context) (interface{}, error) {
	return q.Svc.GetProjectDependencies(ctx, q.Tenant, q.ProjectID)
}

var (
	_ interfaces.Query = (*GetDependenciesQuery)(nil)
	_ interfaces.Query = (*GetProjectDependenciesQuery)(nil)
)
