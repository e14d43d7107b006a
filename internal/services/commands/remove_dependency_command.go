package commands

import (
	"context"

	"casr-tracker/internal/interfaces"
	"casr-tracker/internal/logging"
)

type RemoveDependencyCommand struct {
	Tenant     string
	FromTaskID string
	ToTaskID   string
}

type RemoveDependencyHandler struct {
	GraphService interfaces.WorkflowCommandContext
}

func NewRemoveDependencyHandler(ctx interfaces.WorkflowCommandContext) *RemoveDependencyHandler {
	return &RemoveDependencyHandler{GraphService: ctx}
}

func (h *RemoveDependencyHandler) Handle(ctx context.Context, cmd RemoveDependencyCommand) error {
	logging.Logger.Infof("Event ID: REMOVE_DEPENDENCY, Description: removing dependency %s -> %s", cmd.ToTaskID, cmd.FromTaskID)

	if err := h.GraphService.RemoveDependency(ctx, cmd.Tenant, cmd.FromTaskID, cmd.ToTaskID); err != nil {
		return err
	}

	updateCmd := UpdateBlockedStatusCommand{
		Tenant: cmd.Tenant,
		TaskID: cmd.ToTaskID,
		Svc:    h.GraphService,
	}
	return updateCmd.Execute(ctx)
}
