package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionStatus is the lifecycle state of a Workspace's cloud connection.
type ConnectionStatus string

const (
	StatusPending   ConnectionStatus = "pending"
	StatusConnected ConnectionStatus = "connected"
	StatusError     ConnectionStatus = "error"
)

// JobStatus is the lifecycle state of a JobRun.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// RecommendationStatus is the user-managed lifecycle state of a Recommendation.
type RecommendationStatus string

const (
	RecNew          RecommendationStatus = "new"
	RecAcknowledged RecommendationStatus = "acknowledged"
	RecDismissed    RecommendationStatus = "dismissed"
)

// Confidence is the qualitative certainty label surfaced to the end user.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Workspace is the tenant anchor: one customer AWS account reached via a
// cross-account role.
type Workspace struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"not null"`
	RoleArn      string `gorm:"not null"`
	AWSAccountID string `gorm:"column:aws_account_id;not null"`
	Status       ConnectionStatus `gorm:"default:pending"`
	UserID       string           `gorm:"column:user_id;index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Status == "" {
		w.Status = StatusPending
	}
	return nil
}

// JobRun is one scheduler attempt on one Workspace.
type JobRun struct {
	ID                  string `gorm:"primaryKey;size:36"`
	WorkspaceID         string `gorm:"column:workspace_id;index;not null"`
	Status              JobStatus `gorm:"not null"`
	RecommendationsFound int
	ErrorMessage        *string
	StartedAt           time.Time
	CompletedAt         *time.Time
}

func (j *JobRun) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}

// Resource is a cloud object observed within a Workspace.
type Resource struct {
	ID                  string `gorm:"primaryKey;size:36"`
	WorkspaceID         string `gorm:"column:workspace_id;uniqueIndex:idx_resource_ws_rid;not null"`
	ResourceID          string `gorm:"column:resource_id;uniqueIndex:idx_resource_ws_rid;not null"`
	ARN                 *string
	Service             string `gorm:"index;not null"`
	Type                *string
	Name                *string
	Tags                string `gorm:"type:text"` // JSON object: tag key/value pairs
	State               *string
	EstimatedMonthlyCost *float64
	Metadata            string    `gorm:"type:text"` // JSON object: collector-specific fields
	LastSeenAt          time.Time `gorm:"column:last_seen_at;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Recommendation is a detected optimization opportunity, deduplicated by
// (workspaceId, resourceId, type).
type Recommendation struct {
	ID                      string `gorm:"primaryKey;size:36"`
	WorkspaceID             string `gorm:"column:workspace_id;uniqueIndex:idx_rec_ws_rid_type;not null"`
	Type                    string `gorm:"uniqueIndex:idx_rec_ws_rid_type;not null"`
	ResourceID              string `gorm:"column:resource_id;uniqueIndex:idx_rec_ws_rid_type;not null"`
	Description             string `gorm:"not null"`
	EstimatedMonthlySavings float64
	Confidence              Confidence
	Status                  RecommendationStatus `gorm:"index;default:new"`
	Metadata                string               `gorm:"type:text"` // JSON object: signal values behind the recommendation
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = RecNew
	}
	return nil
}

// AllModels lists every model AutoMigrate must know about.
func AllModels() []interface{} {
	return []interface{}{
		&Workspace{},
		&JobRun{},
		&Resource{},
		&Recommendation{},
	}
}
