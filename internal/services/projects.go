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

	"casr-tracker/internal/logging"
	"casr-tracker/internal/models"
)

const ProjectCollection = "projects"

// ProjectService stores projects with their task tree embedded. Task edits
// rewrite the whole document guarded by updatedAt.
type ProjectService struct {
	ProjectsCollection *mongo.Collection
	activity           *ActivityService
	now                func() time.Time
}

func NewProjectService(db *mongo.Database, activity *ActivityService) *ProjectService {
	return &ProjectService{
		ProjectsCollection: db.Collection(ProjectCollection),
		activity:           activity,
		now:                time.Now,
	}
}

// EnsureIndexes makes project names unique per tenant.
func (s *ProjectService) EnsureIndexes(ctx context.Context) error {
	_, err := s.ProjectsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create project name index: %w", err)
	}
	return nil
}

func (s *ProjectService) GetAllProjects(ctx context.Context, tenant string) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{"tenantId": tenant}, opts)
	if err != nil {
		return nil, fmt.Errorf("unsuccessful procurement of projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("unsuccessful decoding of projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, tenant, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrInvalidID)
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID, "tenantId": tenant}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, tenant, actor string, p *models.Project) error {
	now := stamp(s.now)
	p.ID = primitive.NewObjectID()
	p.TenantID = tenant
	p.CreatedAt = now
	p.UpdatedAt = now
	p.CreatedBy = actor
	if p.Status == "" {
		p.Status = models.StatusOnTrack
	}
	if p.Owner == "" {
		p.Owner = actor
	}
	if p.Tasks == nil {
		p.Tasks = []models.Task{}
	}
	assignTaskIDs(p.Tasks)

	if _, err := s.ProjectsCollection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("project %q already exists: %w", p.Name, ErrConflict)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: project %s (%s) created by %s", p.ID.Hex(), p.Name, actor)
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &p.ID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityCreateProject,
		Actor:        actor,
		Details:      fmt.Sprintf("created project %s", p.Name),
	})
	return nil
}

// UpdateProject replaces the project's fields. A nil task list keeps the
// stored tree; tasks are normally edited through the task operations.
func (s *ProjectService) UpdateProject(ctx context.Context, tenant, actor, projectID string, p *models.Project) (*models.Project, error) {
	current, err := s.GetProjectByID(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	if !p.UpdatedAt.IsZero() && !p.UpdatedAt.Equal(current.UpdatedAt) {
		return nil, fmt.Errorf("project %s was changed by someone else: %w", projectID, ErrConflict)
	}

	p.ID = current.ID
	p.TenantID = tenant
	p.CreatedAt = current.CreatedAt
	p.CreatedBy = current.CreatedBy
	if p.Tasks == nil {
		p.Tasks = current.Tasks
	}
	assignTaskIDs(p.Tasks)

	if err := s.replace(ctx, current.UpdatedAt, p); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &p.ID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityUpdateProject,
		Actor:        actor,
		Details:      fmt.Sprintf("updated project %s", p.Name),
	})
	return p, nil
}

// DeleteProject removes the project and returns it as it was stored.
func (s *ProjectService) DeleteProject(ctx context.Context, tenant, actor, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrInvalidID)
	}
	var deleted models.Project
	err = s.ProjectsCollection.FindOneAndDelete(ctx, bson.M{"_id": objectID, "tenantId": tenant}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: project %s deleted by %s", projectID, actor)
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &objectID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityDeleteProject,
		Actor:        actor,
		Details:      fmt.Sprintf("deleted project %s", deleted.Name),
	})
	return &deleted, nil
}

// AddTask adds a task, nested under parentID when that is not empty.
func (s *ProjectService) AddTask(ctx context.Context, tenant, actor, projectID, parentID string, task models.Task) (*models.Project, models.Task, error) {
	var created models.Task
	p, err := s.editTasks(ctx, tenant, projectID, func(p *models.Project) error {
		t, err := addTask(p, parentID, task)
		created = t
		return err
	})
	if err != nil {
		return nil, models.Task{}, err
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &p.ID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityCreateTask,
		Actor:        actor,
		Details:      fmt.Sprintf("added task %s to %s", created.Title, p.Name),
	})
	return p, created, nil
}

func (s *ProjectService) UpdateTaskStatus(ctx context.Context, tenant, actor, projectID, taskID string, status models.TaskStatus) (*models.Project, models.Task, error) {
	var updated models.Task
	p, err := s.editTasks(ctx, tenant, projectID, func(p *models.Project) error {
		t, err := setTaskStatus(p, taskID, status)
		updated = t
		return err
	})
	if err != nil {
		return nil, models.Task{}, err
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &p.ID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityChangeTaskStatus,
		Actor:        actor,
		Details:      fmt.Sprintf("task %s is now %s", updated.Title, status),
	})
	return p, updated, nil
}

// DeleteTask removes a task with its subtasks and returns the removed task.
func (s *ProjectService) DeleteTask(ctx context.Context, tenant, actor, projectID, taskID string) (*models.Project, models.Task, error) {
	var removed models.Task
	p, err := s.editTasks(ctx, tenant, projectID, func(p *models.Project) error {
		t, err := removeTask(p, taskID)
		removed = t
		return err
	})
	if err != nil {
		return nil, models.Task{}, err
	}
	s.activity.Log(ctx, models.ActivityLog{
		TenantID:     tenant,
		ProjectID:    &p.ID,
		Collection:   ProjectCollection,
		ActivityType: models.ActivityDeleteTask,
		Actor:        actor,
		Details:      fmt.Sprintf("deleted task %s from %s", removed.Title, p.Name),
	})
	return p, removed, nil
}

func (s *ProjectService) editTasks(ctx context.Context, tenant, projectID string, edit func(p *models.Project) error) (*models.Project, error) {
	p, err := s.GetProjectByID(ctx, tenant, projectID)
	if err != nil {
		return nil, err
	}
	prev := p.UpdatedAt
	if err := edit(p); err != nil {
		return nil, err
	}
	if err := s.replace(ctx, prev, p); err != nil {
		return nil, err
	}
	return p, nil
}

// replace writes p only if the stored updatedAt is still prev.
func (s *ProjectService) replace(ctx context.Context, prev time.Time, p *models.Project) error {
	p.UpdatedAt = stamp(s.now)
	filter := bson.M{"_id": p.ID, "tenantId": p.TenantID, "updatedAt": prev}
	result, err := s.ProjectsCollection.ReplaceOne(ctx, filter, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("project %q already exists: %w", p.Name, ErrConflict)
		}
		return fmt.Errorf("failed to save project %s: %w", p.ID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("project %s was changed by someone else: %w", p.ID.Hex(), ErrConflict)
	}
	return nil
}
