package services

import (
	"fmt"

	"github.com/google/uuid"

	"casr-tracker/internal/models"
)

var newTaskID = func() string { return uuid.NewString() }

// assignTaskIDs gives every task in the tree an id and a status.
func assignTaskIDs(tasks []models.Task) {
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = newTaskID()
		}
		if tasks[i].Status == "" {
			tasks[i].Status = models.TaskToDo
		}
		assignTaskIDs(tasks[i].Subtasks)
	}
}

// addTask appends t at the top level, or under parentID when given.
func addTask(p *models.Project, parentID string, t models.Task) (models.Task, error) {
	t.ID = newTaskID()
	if t.Status == "" {
		t.Status = models.TaskToDo
	}
	assignTaskIDs(t.Subtasks)

	if parentID == "" {
		p.Tasks = append(p.Tasks, t)
		return t, nil
	}
	parent := models.FindTask(p.Tasks, parentID)
	if parent == nil {
		return models.Task{}, fmt.Errorf("parent task %s: %w", parentID, ErrNotFound)
	}
	parent.Subtasks = append(parent.Subtasks, t)
	return t, nil
}

func setTaskStatus(p *models.Project, taskID string, status models.TaskStatus) (models.Task, error) {
	t := models.FindTask(p.Tasks, taskID)
	if t == nil {
		return models.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	t.Status = status
	return *t, nil
}

// removeTask drops taskID and its subtasks, returning the removed task.
func removeTask(p *models.Project, taskID string) (models.Task, error) {
	found := models.FindTask(p.Tasks, taskID)
	if found == nil {
		return models.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	removed := *found
	p.Tasks, _ = models.RemoveTask(p.Tasks, taskID)
	return removed, nil
}
