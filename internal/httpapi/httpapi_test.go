package httpapi

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finopsbridge/engine/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(store.AllModels()...))
	return store.New(db), db
}

func TestHealth(t *testing.T) {
	s, _ := newTestStore(t)
	app := New(s)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestListWorkspaces(t *testing.T) {
	s, db := newTestStore(t)
	ws := store.Workspace{Name: "acme", RoleArn: "arn:x", AWSAccountID: "1", UserID: "u1"}
	require.NoError(t, db.Create(&ws).Error)

	app := New(s)
	req := httptest.NewRequest("GET", "/workspaces", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "acme")
}

func TestLatestJob_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	app := New(s)

	req := httptest.NewRequest("GET", "/workspaces/does-not-exist/jobs/latest", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestPatchRecommendation_AcknowledgeSucceeds(t *testing.T) {
	s, db := newTestStore(t)
	ws := store.Workspace{Name: "acme", RoleArn: "arn:x", AWSAccountID: "1", UserID: "u1"}
	require.NoError(t, db.Create(&ws).Error)
	rec := store.Recommendation{WorkspaceID: ws.ID, Type: "EBS_ORPHAN", ResourceID: "vol-1", Description: "d", EstimatedMonthlySavings: 10}
	require.NoError(t, db.Create(&rec).Error)

	app := New(s)
	req := httptest.NewRequest("PATCH", "/workspaces/"+ws.ID+"/recommendations/"+rec.ID, strings.NewReader(`{"status":"acknowledged"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var after store.Recommendation
	require.NoError(t, db.First(&after, "id = ?", rec.ID).Error)
	assert.Equal(t, store.RecAcknowledged, after.Status)
}

func TestPatchRecommendation_InvalidStatusRejected(t *testing.T) {
	s, db := newTestStore(t)
	ws := store.Workspace{Name: "acme", RoleArn: "arn:x", AWSAccountID: "1", UserID: "u1"}
	require.NoError(t, db.Create(&ws).Error)
	rec := store.Recommendation{WorkspaceID: ws.ID, Type: "EBS_ORPHAN", ResourceID: "vol-1", Description: "d"}
	require.NoError(t, db.Create(&rec).Error)

	app := New(s)
	req := httptest.NewRequest("PATCH", "/workspaces/"+ws.ID+"/recommendations/"+rec.ID, strings.NewReader(`{"status":"new"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListRecommendations_FilterByStatus(t *testing.T) {
	s, db := newTestStore(t)
	ws := store.Workspace{Name: "acme", RoleArn: "arn:x", AWSAccountID: "1", UserID: "u1"}
	require.NoError(t, db.Create(&ws).Error)
	require.NoError(t, db.Create(&store.Recommendation{WorkspaceID: ws.ID, Type: "EBS_ORPHAN", ResourceID: "vol-1", Description: "d", Status: store.RecNew}).Error)
	require.NoError(t, db.Create(&store.Recommendation{WorkspaceID: ws.ID, Type: "EIP_UNASSOCIATED", ResourceID: "eip-1", Description: "d", Status: store.RecDismissed}).Error)

	app := New(s)
	req := httptest.NewRequest("GET", "/workspaces/"+ws.ID+"/recommendations?status=dismissed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "eip-1")
	assert.NotContains(t, string(body), "vol-1")
}
