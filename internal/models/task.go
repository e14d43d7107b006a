package models

type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
	TaskBlocked    TaskStatus = "Blocked"
)

// Task lives embedded in its project, subtasks nested inside it.
type Task struct {
	ID        string     `json:"id" bson:"id"`
	Title     string     `json:"title" bson:"title" validate:"required,max=200"`
	Assignees []string   `json:"assignees" bson:"assignees"`
	StartDate string     `json:"startDate,omitempty" bson:"startDate,omitempty" validate:"omitempty,isodate"`
	DueDate   string     `json:"dueDate,omitempty" bson:"dueDate,omitempty" validate:"omitempty,isodate"`
	Status    TaskStatus `json:"status" bson:"status" validate:"omitempty,oneof='To Do' 'In Progress' Done Blocked"`
	Critical  bool       `json:"critical" bson:"critical"`
	Subtasks  []Task     `json:"subtasks,omitempty" bson:"subtasks,omitempty" validate:"dive"`
}

// FlatTask is a task with its depth in the tree.
type FlatTask struct {
	Task
	Depth    int    `json:"depth"`
	ParentID string `json:"parentId,omitempty"`
}

// Flatten walks the tree depth first, parents before children.
func Flatten(tasks []Task) []FlatTask {
	var out []FlatTask
	var walk func(ts []Task, depth int, parent string)
	walk = func(ts []Task, depth int, parent string) {
		for _, t := range ts {
			out = append(out, FlatTask{Task: t, Depth: depth, ParentID: parent})
			walk(t.Subtasks, depth+1, t.ID)
		}
	}
	walk(tasks, 0, "")
	return out
}

// FindTask returns a pointer into the tree so callers can edit in place.
func FindTask(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
		if t := FindTask(tasks[i].Subtasks, id); t != nil {
			return t
		}
	}
	return nil
}

// RemoveTask drops the task and its subtasks, reporting whether it existed.
func RemoveTask(tasks []Task, id string) ([]Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return append(tasks[:i:i], tasks[i+1:]...), true
		}
		if sub, ok := RemoveTask(tasks[i].Subtasks, id); ok {
			tasks[i].Subtasks = sub
			return tasks, true
		}
	}
	return tasks, false
}
