package jobrunner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finopsbridge/engine/internal/cloudclient"
	"github.com/finopsbridge/engine/internal/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(store.AllModels()...))
	return db
}

func newTestRunner(t *testing.T) (*Runner, *store.Store) {
	t.Helper()
	db := newTestDB(t)
	s := store.New(db)
	r := New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.inventorySync = func(ctx context.Context, ws *store.Workspace) error { return nil }
	return r, s
}

func seedWorkspace(t *testing.T, s *store.Store, db *gorm.DB) string {
	t.Helper()
	ws := store.Workspace{Name: "acme", RoleArn: "arn:aws:iam::123456789012:role/finops", AWSAccountID: "123456789012", UserID: "u1"}
	require.NoError(t, db.Create(&ws).Error)
	return ws.ID
}

func TestProcessWorkspace_AbsentWorkspaceNoJobRun(t *testing.T) {
	r, s := newTestRunner(t)
	err := r.ProcessWorkspace(context.Background(), "does-not-exist")
	require.NoError(t, err)

	run, err := s.LatestJobRun("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestProcessWorkspace_HappyPathProducesRecommendationsAndCompletes(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	r := New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.inventorySync = func(ctx context.Context, ws *store.Workspace) error { return nil }

	wsID := seedWorkspace(t, s, db)

	err := r.ProcessWorkspace(context.Background(), wsID)
	require.NoError(t, err)

	run, err := s.LatestJobRun(wsID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, store.JobCompleted, run.Status)
	assert.Greater(t, run.RecommendationsFound, 0)

	ws, err := s.GetWorkspace(wsID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusConnected, ws.Status)

	var recs []store.Recommendation
	require.NoError(t, db.Where("workspace_id = ?", wsID).Find(&recs).Error)
	assert.NotEmpty(t, recs)

	var types []string
	for _, rec := range recs {
		types = append(types, rec.Type)
	}
	assert.Contains(t, types, "EC2_DOWN_SIZE")
	assert.Contains(t, types, "EBS_ORPHAN")
	assert.Contains(t, types, "S3_LIFECYCLE")
	assert.Contains(t, types, "LAMBDA_UNUSED")
	assert.Contains(t, types, "ELB_NO_TARGETS")
	assert.Contains(t, types, "ELB_NO_TRAFFIC")
	assert.Contains(t, types, "EIP_UNASSOCIATED")
	assert.Contains(t, types, "NAT_GW_IDLE")
}

func TestProcessWorkspace_RerunPreservesDismissedStatus(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	r := New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.inventorySync = func(ctx context.Context, ws *store.Workspace) error { return nil }

	wsID := seedWorkspace(t, s, db)

	require.NoError(t, r.ProcessWorkspace(context.Background(), wsID))

	var rec store.Recommendation
	require.NoError(t, db.Where("workspace_id = ? AND type = ?", wsID, "EIP_UNASSOCIATED").First(&rec).Error)
	rec.Status = store.RecDismissed
	require.NoError(t, db.Save(&rec).Error)

	require.NoError(t, r.ProcessWorkspace(context.Background(), wsID))

	var after store.Recommendation
	require.NoError(t, db.Where("workspace_id = ? AND type = ?", wsID, "EIP_UNASSOCIATED").First(&after).Error)
	assert.Equal(t, store.RecDismissed, after.Status)
}

func TestProcessWorkspace_AnalysisCostsUpdateExistingResources(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	r := New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.inventorySync = func(ctx context.Context, ws *store.Workspace) error { return nil }

	wsID := seedWorkspace(t, s, db)
	// The analysis path only ever refreshes rows the collector sweep
	// already created, so seed the Resource row it expects to update.
	require.NoError(t, s.UpsertResource(store.UpsertResourceInput{
		WorkspaceID: wsID,
		ResourceID:  "i-0a1b2c3d4e5f00004",
		Service:     "EC2",
		Now:         time.Now().UTC(),
	}))

	require.NoError(t, r.ProcessWorkspace(context.Background(), wsID))

	var res store.Resource
	require.NoError(t, db.Where("workspace_id = ? AND resource_id = ?", wsID, "i-0a1b2c3d4e5f00004").First(&res).Error)
	require.NotNil(t, res.EstimatedMonthlyCost)
	assert.InDelta(t, 30.368, *res.EstimatedMonthlyCost, 1e-6)
}

func TestProcessWorkspace_AnalysisPathNeverCreatesResourceRows(t *testing.T) {
	db := newTestDB(t)
	s := store.New(db)
	r := New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.inventorySync = func(ctx context.Context, ws *store.Workspace) error { return nil }

	wsID := seedWorkspace(t, s, db)
	// No collector sweep ran (inventorySync is a no-op), so the EC2
	// instance the mock analysis data describes has no Resource row yet.
	require.NoError(t, r.ProcessWorkspace(context.Background(), wsID))

	var count int64
	require.NoError(t, db.Model(&store.Resource{}).Where("workspace_id = ? AND resource_id = ?", wsID, "i-0a1b2c3d4e5f00004").Count(&count).Error)
	assert.Zero(t, count)
}
