package commands

import (
	"context"
	"fmt"
	"slices"

	"casr-tracker/internal/interfaces"
	"casr-tracker/internal/logging"
)

// DeleteTaskNodesCommand drops deleted tasks from the graph and re-evaluates
// the surviving tasks that waited on them.
type DeleteTaskNodesCommand struct {
	Tenant  string
	TaskIDs []string
	Svc     interfaces.WorkflowCommandContext
}

func (cmd *DeleteTaskNodesCommand) Execute(ctx context.Context) error {
	var waiting []string
	for _, id := range cmd.TaskIDs {
		dependents, err := cmd.Svc.GetDependents(ctx, cmd.Tenant, id)
		if err != nil {
			return fmt.Errorf("failed to fetch dependents of %s: %w", id, err)
		}
		for _, d := range dependents {
			if !slices.Contains(cmd.TaskIDs, d.ID) && !slices.Contains(waiting, d.ID) {
				waiting = append(waiting, d.ID)
			}
		}
	}

	if err := cmd.Svc.DeleteTaskNodes(ctx, cmd.Tenant, cmd.TaskIDs); err != nil {
		return err
	}

	for _, id := range waiting {
		update := UpdateBlockedStatusCommand{Tenant: cmd.Tenant, TaskID: id, Svc: cmd.Svc}
		if err := update.Execute(ctx); err != nil {
			logging.Logger.Warnf("Event ID: BLOCKED_STATUS_STALE, Description: task nodes deleted, but failed to update blocked status of %s: %v", id, err)
		}
	}
	return nil
}
