package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorkspace(t *testing.T, s *Store) string {
	t.Helper()
	ws := Workspace{Name: "acme", RoleArn: "arn:aws:iam::123456789012:role/finops", AWSAccountID: "123456789012", UserID: "u1"}
	require.NoError(t, s.db.Create(&ws).Error)
	return ws.ID
}

func TestUpsertResource_InsertThenUpdatePreservesCreatedAt(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	wsID := seedWorkspace(t, s)

	now := time.Now().UTC()
	cost := 10.0
	require.NoError(t, s.UpsertResource(UpsertResourceInput{
		WorkspaceID: wsID, ResourceID: "i-1", Service: "EC2",
		EstimatedMonthlyCost: &cost, Now: now,
	}))

	var first Resource
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "i-1").First(&first).Error)

	later := now.Add(time.Hour)
	newCost := 20.0
	require.NoError(t, s.UpsertResource(UpsertResourceInput{
		WorkspaceID: wsID, ResourceID: "i-1", Service: "EC2",
		EstimatedMonthlyCost: &newCost, Now: later,
	}))

	var second Resource
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "i-1").First(&second).Error)

	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
	assert.Equal(t, 20.0, *second.EstimatedMonthlyCost)
	assert.True(t, second.LastSeenAt.After(first.LastSeenAt) || second.LastSeenAt.Equal(first.LastSeenAt))
}

func TestUpsertResource_NilCostDoesNotOverwrite(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	wsID := seedWorkspace(t, s)

	now := time.Now().UTC()
	cost := 15.0
	require.NoError(t, s.UpsertResource(UpsertResourceInput{WorkspaceID: wsID, ResourceID: "i-2", Service: "EC2", EstimatedMonthlyCost: &cost, Now: now}))

	require.NoError(t, s.UpsertResource(UpsertResourceInput{WorkspaceID: wsID, ResourceID: "i-2", Service: "EC2", EstimatedMonthlyCost: nil, Now: now.Add(time.Minute)}))

	var r Resource
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "i-2").First(&r).Error)
	require.NotNil(t, r.EstimatedMonthlyCost)
	assert.Equal(t, 15.0, *r.EstimatedMonthlyCost)
}

func TestUpsertRecommendation_StatusPreservedAcrossRerun(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	wsID := seedWorkspace(t, s)

	require.NoError(t, s.UpsertRecommendation(UpsertRecommendationInput{
		WorkspaceID: wsID, ResourceID: "vol-1", Type: "EBS_ORPHAN",
		Description: "orphaned volume", EstimatedMonthlySavings: 50, Confidence: ConfidenceHigh,
	}))

	var rec Recommendation
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ? AND type = ?", wsID, "vol-1", "EBS_ORPHAN").First(&rec).Error)
	assert.Equal(t, RecNew, rec.Status)

	rec.Status = RecDismissed
	require.NoError(t, db.Save(&rec).Error)

	require.NoError(t, s.UpsertRecommendation(UpsertRecommendationInput{
		WorkspaceID: wsID, ResourceID: "vol-1", Type: "EBS_ORPHAN",
		Description: "orphaned volume, updated description", EstimatedMonthlySavings: 55, Confidence: ConfidenceHigh,
	}))

	var after Recommendation
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ? AND type = ?", wsID, "vol-1", "EBS_ORPHAN").First(&after).Error)
	assert.Equal(t, RecDismissed, after.Status)
	assert.Equal(t, "orphaned volume, updated description", after.Description)
	assert.Equal(t, 55.0, after.EstimatedMonthlySavings)
}

func TestSweepStaleResources(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	wsID := seedWorkspace(t, s)

	now := time.Now().UTC()
	require.NoError(t, s.UpsertResource(UpsertResourceInput{WorkspaceID: wsID, ResourceID: "old-1", Service: "EC2", Now: now.Add(-2 * time.Hour)}))
	require.NoError(t, s.UpsertResource(UpsertResourceInput{WorkspaceID: wsID, ResourceID: "fresh-1", Service: "EC2", Now: now}))

	affected, err := s.SweepStaleResources(wsID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var old, fresh Resource
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "old-1").First(&old).Error)
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "fresh-1").First(&fresh).Error)

	require.NotNil(t, old.State)
	assert.Equal(t, "not-found", *old.State)
	assert.True(t, fresh.State == nil || *fresh.State != "not-found")
}

func TestJobRunLifecycle(t *testing.T) {
	db := newTestDB(t)
	s := New(db)
	wsID := seedWorkspace(t, s)

	now := time.Now().UTC()
	run, err := s.CreateJobRun(wsID, now)
	require.NoError(t, err)
	assert.Equal(t, JobRunning, run.Status)

	require.NoError(t, s.CompleteJobRun(run.ID, 3, now.Add(time.Minute)))

	latest, err := s.LatestJobRun(wsID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, JobCompleted, latest.Status)
	assert.Equal(t, 3, latest.RecommendationsFound)
	require.NotNil(t, latest.CompletedAt)
}

func TestGetWorkspace_AbsentReturnsNilNil(t *testing.T) {
	db := newTestDB(t)
	s := New(db)

	ws, err := s.GetWorkspace("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, ws)
}
