package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityType string

const (
	ActivityCreateProject    ActivityType = "CreateProject"
	ActivityUpdateProject    ActivityType = "UpdateProject"
	ActivityDeleteProject    ActivityType = "DeleteProject"
	ActivityCreateTask       ActivityType = "CreateTask"
	ActivityChangeTaskStatus ActivityType = "ChangeTaskStatus"
	ActivityDeleteTask       ActivityType = "DeleteTask"
	ActivityCreateRecord     ActivityType = "CreateRecord"
	ActivityUpdateRecord     ActivityType = "UpdateRecord"
	ActivityDeleteRecord     ActivityType = "DeleteRecord"
	ActivitySendMessage      ActivityType = "SendMessage"
)

type ActivityLog struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID     string              `json:"tenantId" bson:"tenantId"`
	ProjectID    *primitive.ObjectID `json:"projectId,omitempty" bson:"projectId,omitempty"`
	Collection   string              `json:"collection" bson:"collection"`
	ActivityType ActivityType        `json:"activityType" bson:"activityType"`
	Actor        string              `json:"actor" bson:"actor"`
	Timestamp    time.Time           `json:"timestamp" bson:"timestamp"`
	Details      string              `json:"details" bson:"details"`
}
