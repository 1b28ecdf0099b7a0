// Package store implements the engine's idempotent persistence
// contract: upsertResource, upsertRecommendation, and the stale-resource
// sweep (§4.5). gorm.io/gorm is used the same way the teacher's
// database_ package uses it — a single *gorm.DB handed around, no
// repository interfaces layered on top.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/finopsbridge/engine/internal/logging"
)

var log = logging.For("engine")

// staleAfter is the soft-delete threshold: a resource not observed for
// this long is relabelled not-found (§3, §4.5).
const staleAfter = time.Hour

// Open connects to postgres and AutoMigrates every model, mirroring the
// teacher's database_.Initialize.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return db, nil
}

// Store wraps a *gorm.DB with the engine's persistence operations.
type Store struct {
	db *gorm.DB
}

// New wraps an already-open *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertResourceInput is the collector-layer record plus the workspace
// it belongs to and the observation timestamp.
type UpsertResourceInput struct {
	WorkspaceID          string
	ResourceID           string
	ARN                  *string
	Service              string
	Type                 *string
	Name                 *string
	Tags                 map[string]string
	State                *string
	EstimatedMonthlyCost *float64
	Metadata             map[string]interface{}
	Now                  time.Time
}

// UpsertResource is keyed by (workspaceId, resourceId). On insert every
// field is set with lastSeenAt=now. On update, every descriptive field
// is overwritten and lastSeenAt bumped, but createdAt is preserved by
// gorm (it is only ever set on insert) and estimatedMonthlyCost is left
// untouched when the new observation has no cost opinion (nil).
func (s *Store) UpsertResource(in UpsertResourceInput) error {
	var existing Resource
	err := s.db.Where("workspace_id = ? AND resource_id = ?", in.WorkspaceID, in.ResourceID).First(&existing).Error

	tags := MarshalTags(in.Tags)
	metadata := MarshalMetadata(in.Metadata)

	if err == gorm.ErrRecordNotFound {
		resource := Resource{
			WorkspaceID:          in.WorkspaceID,
			ResourceID:           in.ResourceID,
			ARN:                  in.ARN,
			Service:              in.Service,
			Type:                 in.Type,
			Name:                 in.Name,
			Tags:                 tags,
			State:                in.State,
			EstimatedMonthlyCost: in.EstimatedMonthlyCost,
			Metadata:             metadata,
			LastSeenAt:           in.Now,
		}
		return s.db.Create(&resource).Error
	}
	if err != nil {
		return fmt.Errorf("lookup resource %s/%s: %w", in.WorkspaceID, in.ResourceID, err)
	}

	existing.ARN = in.ARN
	existing.Service = in.Service
	existing.Type = in.Type
	existing.Name = in.Name
	existing.Tags = tags
	existing.State = in.State
	existing.Metadata = metadata
	existing.LastSeenAt = in.Now
	if in.EstimatedMonthlyCost != nil {
		existing.EstimatedMonthlyCost = in.EstimatedMonthlyCost
	}

	return s.db.Save(&existing).Error
}

// UpdateResourceCost refreshes the cost/state fields on an
// already-inventoried Resource row. It never inserts: collectors alone
// create Resource rows (§4.4/§4.5), so if a matching row does not yet
// exist — e.g. this tick's collector for that service failed, a
// tolerated per-collector error — the analysis-path observation is
// dropped rather than planting a sparse row of its own.
func (s *Store) UpdateResourceCost(workspaceID, resourceID string, cost *float64, state *string, now time.Time) error {
	var existing Resource
	err := s.db.Where("workspace_id = ? AND resource_id = ?", workspaceID, resourceID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		log.WithField("workspace_id", workspaceID).WithField("resource_id", resourceID).Debug("analysis-path cost update skipped: no inventory row yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup resource %s/%s: %w", workspaceID, resourceID, err)
	}

	existing.EstimatedMonthlyCost = cost
	existing.State = state
	existing.LastSeenAt = now
	return s.db.Save(&existing).Error
}

// UpsertRecommendationInput is one analyzer recommendation scoped to a
// workspace.
type UpsertRecommendationInput struct {
	WorkspaceID             string
	ResourceID              string
	Type                    string
	Description             string
	EstimatedMonthlySavings float64
	Confidence              Confidence
	Metadata                map[string]interface{}
}

// UpsertRecommendation is keyed by (workspaceId, resourceId, type). On
// insert status=new. On update, every descriptive field is refreshed but
// status is never touched — this is the invariant that preserves a
// user's acknowledge/dismiss action across reruns (§3, §8).
func (s *Store) UpsertRecommendation(in UpsertRecommendationInput) error {
	var existing Recommendation
	err := s.db.Where("workspace_id = ? AND resource_id = ? AND type = ?", in.WorkspaceID, in.ResourceID, in.Type).First(&existing).Error

	metadata := MarshalMetadata(in.Metadata)

	if err == gorm.ErrRecordNotFound {
		rec := Recommendation{
			WorkspaceID:             in.WorkspaceID,
			ResourceID:              in.ResourceID,
			Type:                    in.Type,
			Description:             in.Description,
			EstimatedMonthlySavings: in.EstimatedMonthlySavings,
			Confidence:              in.Confidence,
			Status:                  RecNew,
			Metadata:                metadata,
		}
		return s.db.Create(&rec).Error
	}
	if err != nil {
		return fmt.Errorf("lookup recommendation %s/%s/%s: %w", in.WorkspaceID, in.ResourceID, in.Type, err)
	}

	existing.Description = in.Description
	existing.EstimatedMonthlySavings = in.EstimatedMonthlySavings
	existing.Confidence = in.Confidence
	existing.Metadata = metadata
	// existing.Status is deliberately untouched.

	return s.db.Save(&existing).Error
}

// SweepStaleResources soft-deletes every Resource in the workspace whose
// lastSeenAt predates now by more than staleAfter — rows remain
// queryable with state=not-found.
func (s *Store) SweepStaleResources(workspaceID string, now time.Time) (int64, error) {
	cutoff := now.Add(-staleAfter)
	notFound := "not-found"

	result := s.db.Model(&Resource{}).
		Where("workspace_id = ? AND last_seen_at < ? AND (state IS NULL OR state != ?)", workspaceID, cutoff, notFound).
		Update("state", notFound)
	if result.Error != nil {
		return 0, fmt.Errorf("sweep stale resources: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// SetWorkspaceStatus updates a Workspace's connection status.
func (s *Store) SetWorkspaceStatus(workspaceID string, status ConnectionStatus) error {
	return s.db.Model(&Workspace{}).Where("id = ?", workspaceID).Update("status", status).Error
}

// GetWorkspace loads a workspace by id, returning (nil, nil) if absent —
// the job runner's "load workspace; if absent, log and return" step
// depends on distinguishing absence from error.
func (s *Store) GetWorkspace(workspaceID string) (*Workspace, error) {
	var ws Workspace
	err := s.db.Where("id = ?", workspaceID).First(&ws).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load workspace %s: %w", workspaceID, err)
	}
	return &ws, nil
}

// ListWorkspaces returns every workspace, in creation order — the
// scheduler's per-tick enumeration.
func (s *Store) ListWorkspaces() ([]Workspace, error) {
	var out []Workspace
	if err := s.db.Order("created_at asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return out, nil
}

// CreateJobRun inserts a new running JobRun.
func (s *Store) CreateJobRun(workspaceID string, now time.Time) (*JobRun, error) {
	run := JobRun{
		WorkspaceID: workspaceID,
		Status:      JobRunning,
		StartedAt:   now,
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("create job run: %w", err)
	}
	return &run, nil
}

// CompleteJobRun marks a JobRun completed.
func (s *Store) CompleteJobRun(id string, recommendationsFound int, now time.Time) error {
	return s.db.Model(&JobRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":                JobCompleted,
		"recommendations_found": recommendationsFound,
		"completed_at":          now,
	}).Error
}

// FailJobRun marks a JobRun failed with the given message.
func (s *Store) FailJobRun(id string, message string, now time.Time) error {
	return s.db.Model(&JobRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        JobFailed,
		"error_message": message,
		"completed_at":  now,
	}).Error
}

// LatestJobRun returns the most recent JobRun for a workspace, or nil if
// none exists — backs the HTTP layer's "latest JobRun per workspace"
// contract (§7).
func (s *Store) LatestJobRun(workspaceID string) (*JobRun, error) {
	var run JobRun
	err := s.db.Where("workspace_id = ?", workspaceID).Order("started_at desc").First(&run).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest job run for %s: %w", workspaceID, err)
	}
	return &run, nil
}

// ListResources returns a workspace's Resource rows, soft-deleted
// (not-found) rows included, optionally filtered by service,
// newest-observed first.
func (s *Store) ListResources(workspaceID, service string) ([]Resource, error) {
	q := s.db.Where("workspace_id = ?", workspaceID)
	if service != "" {
		q = q.Where("service = ?", service)
	}
	var out []Resource
	if err := q.Order("last_seen_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list resources for %s: %w", workspaceID, err)
	}
	return out, nil
}

// ListRecommendations returns a workspace's recommendations, optionally
// filtered by status, newest first.
func (s *Store) ListRecommendations(workspaceID, status string) ([]Recommendation, error) {
	q := s.db.Where("workspace_id = ?", workspaceID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []Recommendation
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list recommendations for %s: %w", workspaceID, err)
	}
	return out, nil
}

// SetRecommendationStatus applies a user's acknowledge/dismiss action —
// the one mutation the HTTP layer exposes (§6.1).
func (s *Store) SetRecommendationStatus(workspaceID, recommendationID string, status RecommendationStatus) error {
	result := s.db.Model(&Recommendation{}).
		Where("workspace_id = ? AND id = ?", workspaceID, recommendationID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update recommendation %s status: %w", recommendationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
