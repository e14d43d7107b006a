package commands

import (
	"context"
	"fmt"

	"casr-tracker/internal/interfaces"
	"casr-tracker/internal/models"
)

// SyncTaskNodeCommand upserts a task node and re-evaluates the tasks that
// wait on it, since its status may have unblocked them.
type SyncTaskNodeCommand struct {
	Node models.TaskNode
	Svc  interfaces.WorkflowCommandContext
}

func (cmd *SyncTaskNodeCommand) Execute(ctx context.Context) error {
	if err := cmd.Svc.EnsureTaskNode(ctx, cmd.Node); err != nil {
		return err
	}
	if err := cmd.Svc.UpdateBlockedStatus(ctx, cmd.Node.TenantID, cmd.Node.ID); err != nil {
		return err
	}
	dependents, err := cmd.Svc.GetDependents(ctx, cmd.Node.TenantID, cmd.Node.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependents of %s: %w", cmd.Node.ID, err)
	}
	for _, d := range dependents {
		update := UpdateBlockedStatusCommand{Tenant: cmd.Node.TenantID, TaskID: d.ID, Svc: cmd.Svc}
		if err := update.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}
