package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"casr-tracker/internal/models"
)

// Document is any stored record embedding models.Base.
type Document interface {
	Meta() *models.Base
}

// RecordService is tenant-scoped CRUD over one collection of T.
type RecordService[T any, PT interface {
	*T
	Document
}] struct {
	collection *mongo.Collection
	activity   *ActivityService
	now        func() time.Time
}

func NewRecordService[T any, PT interface {
	*T
	Document
}](db *mongo.Database, collection string, activity *ActivityService) *RecordService[T, PT] {
	return &RecordService[T, PT]{
		collection: db.Collection(collection),
		activity:   activity,
		now:        time.Now,
	}
}

func NewComplianceService(db *mongo.Database, activity *ActivityService) *RecordService[models.ComplianceRecord, *models.ComplianceRecord] {
	return NewRecordService[models.ComplianceRecord](db, "compliance_records", activity)
}

func NewOccurrenceService(db *mongo.Database, activity *ActivityService) *RecordService[models.OccurrenceReport, *models.OccurrenceReport] {
	return NewRecordService[models.OccurrenceReport](db, "occurrences", activity)
}

func NewSanctionService(db *mongo.Database, activity *ActivityService) *RecordService[models.Sanction, *models.Sanction] {
	return NewRecordService[models.Sanction](db, "sanctions", activity)
}

func (s *RecordService[T, PT]) Name() string {
	return s.collection.Name()
}

func (s *RecordService[T, PT]) List(ctx context.Context, tenant string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"tenantId": tenant}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", s.Name(), err)
	}
	defer cursor.Close(ctx)

	records := []T{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Name(), err)
	}
	return records, nil
}

func (s *RecordService[T, PT]) Get(ctx context.Context, tenant, id string) (*T, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", s.Name(), id, ErrInvalidID)
	}
	var rec T
	err = s.collection.FindOne(ctx, bson.M{"_id": oid, "tenantId": tenant}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", s.Name(), id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching %s %s: %w", s.Name(), id, err)
	}
	return &rec, nil
}

func (s *RecordService[T, PT]) Create(ctx context.Context, tenant, actor string, rec *T) error {
	meta := PT(rec).Meta()
	now := stamp(s.now)
	meta.ID = primitive.NewObjectID()
	meta.TenantID = tenant
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.CreatedBy = actor

	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to create %s record: %w", s.Name(), err)
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		Collection:   s.Name(),
		ActivityType: models.ActivityCreateRecord,
		Actor:        actor,
		Details:      fmt.Sprintf("created %s %s", s.Name(), meta.ID.Hex()),
	})
	return nil
}

// Update replaces the record. When rec carries an updatedAt it must match the
// stored one, so a stale form cannot overwrite a newer edit.
func (s *RecordService[T, PT]) Update(ctx context.Context, tenant, actor, id string, rec *T) error {
	current, err := s.Get(ctx, tenant, id)
	if err != nil {
		return err
	}
	prev := PT(current).Meta()
	meta := PT(rec).Meta()
	if !meta.UpdatedAt.IsZero() && !meta.UpdatedAt.Equal(prev.UpdatedAt) {
		return fmt.Errorf("%s %s was changed by someone else: %w", s.Name(), id, ErrConflict)
	}

	meta.ID = prev.ID
	meta.TenantID = tenant
	meta.CreatedAt = prev.CreatedAt
	meta.CreatedBy = prev.CreatedBy
	meta.UpdatedAt = stamp(s.now)

	filter := bson.M{"_id": prev.ID, "tenantId": tenant, "updatedAt": prev.UpdatedAt}
	result, err := s.collection.ReplaceOne(ctx, filter, rec)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", s.Name(), id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s %s was changed by someone else: %w", s.Name(), id, ErrConflict)
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		Collection:   s.Name(),
		ActivityType: models.ActivityUpdateRecord,
		Actor:        actor,
		Details:      fmt.Sprintf("updated %s %s", s.Name(), id),
	})
	return nil
}

func (s *RecordService[T, PT]) Delete(ctx context.Context, tenant, actor, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s %q: %w", s.Name(), id, ErrInvalidID)
	}
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid, "tenantId": tenant})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", s.Name(), id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", s.Name(), id, ErrNotFound)
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		Collection:   s.Name(),
		ActivityType: models.ActivityDeleteRecord,
		Actor:        actor,
		Details:      fmt.Sprintf("deleted %s %s", s.Name(), id),
	})
	return nil
}

// stamp truncates to what BSON dates can hold so that a value read back
// compares equal to the one written.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}
