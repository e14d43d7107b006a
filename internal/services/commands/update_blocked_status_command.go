package commands

import (
	"context"

	"casr-tracker/internal/interfaces"
)

type UpdateBlockedStatusCommand struct {
	Tenant string
	TaskID string
	Svc    interfaces.WorkflowCommandContext
}

func (cmd *UpdateBlockedStatusCommand) Execute(ctx context.Context) error {
	return cmd.Svc.UpdateBlockedStatus(ctx, cmd.Tenant, cmd.TaskID)
}

var (
	_ interfaces.Command = (*UpdateBlockedStatusCommand)(nil)
	_ interfaces.Command = (*SyncTaskNodeCommand)(nil)
	_ interfaces.Command = (*DeleteTaskNodesCommand)(nil)
)
