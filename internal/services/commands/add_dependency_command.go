package commands

import (
	"context"
	"fmt"

	"casr-tracker/internal/interfaces"
	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
)

type AddDependencyCommand struct {
	Tenant     string
	Dependency models.Dependency
}

type AddDependencyHandler struct {
	GraphService interfaces.WorkflowCommandContext
}

func NewAddDependencyHandler(ctx interfaces.WorkflowCommandContext) *AddDependencyHandler {
	return &AddDependencyHandler{GraphService: ctx}
}

func (h *AddDependencyHandler) Handle(ctx context.Context, cmd AddDependencyCommand) error {
	if err := h.GraphService.AddDependency(ctx, cmd.Tenant, cmd.Dependency); err != nil {
		return fmt.Errorf("failed to add dependency: %w", err)
	}

	updateCmd := UpdateBlockedStatusCommand{
		Tenant: cmd.Tenant,
		TaskID: cmd.Dependency.ToTaskID,
		Svc:    h.GraphService,
	}
	if err := updateCmd.Execute(ctx); err != nil {
		logging.Logger.Warnf("Event ID: BLOCKED_STATUS_STALE, Description: dependency added, but failed to update blocked status of %s: %v", cmd.Dependency.ToTaskID, err)
	}
	return nil
}
