package models

// TaskNode mirrors a task into the dependency graph.
type TaskNode struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"projectId"`
	TenantID  string     `json:"tenantId"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	Blocked   bool       `json:"blocked"`
}

// Dependency says ToTaskID cannot finish before FromTaskID.
type Dependency struct {
	FromTaskID string `json:"fromTaskId"`
	ToTaskID   string `json:"toTaskId"`
}
