package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
)

const ActivityCollection = "activity_logs"

// ActivityService appends to and reads the audit trail.
type ActivityService struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewActivityService(db *mongo.Database) *ActivityService {
	return &ActivityService{collection: db.Collection(ActivityCollection), now: time.Now}
}

// Log records an activity. Failures are logged and swallowed so that the
// operation being audited still succeeds.
func (s *ActivityService) Log(ctx context.Context, entry models.ActivityLog) {
	if s == nil {
		return
	}
	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		logging.Logger.Errorf("Event ID: ACTIVITY_LOG_FAILED, Description: failed to record %s by %s: %v", entry.ActivityType, entry.Actor, err)
	}
}

// ActivityFilter narrows List. Zero values are ignored.
type ActivityFilter struct {
	ProjectID string
	Actor     string
	Type      models.ActivityType
	Limit     int64
}

// List returns the tenant's activity, newest first.
func (s *ActivityService) List(ctx context.Context, tenant string, f ActivityFilter) ([]models.ActivityLog, error) {
	filter := bson.M{"tenantId": tenant}
	if f.ProjectID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", f.ProjectID, ErrInvalidID)
		}
		filter["projectId"] = oid
	}
	if f.Actor != "" {
		filter["actor"] = f.Actor
	}
	if f.Type != "" {
		filter["activityType"] = f.Type
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activity: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []models.ActivityLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}
	return logs, nil
}
