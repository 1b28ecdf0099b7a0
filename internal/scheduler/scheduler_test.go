package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finopsbridge/engine/internal/cloudclient"
	"github.com/finopsbridge/engine/internal/jobrunner"
	"github.com/finopsbridge/engine/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(store.AllModels()...))
	for i := 0; i < 3; i++ {
		ws := store.Workspace{Name: "ws", RoleArn: "arn:aws:iam::123456789012:role/finops", AWSAccountID: "123456789012", UserID: "u1"}
		require.NoError(t, db.Create(&ws).Error)
	}
	return store.New(db)
}

func newTestRunner(s *store.Store) *jobrunner.Runner {
	r := jobrunner.New(s, cloudclient.NewMockFactory(1), "us-east-1")
	r.SetInventorySync(func(ctx context.Context, ws *store.Workspace) error { return nil })
	return r
}

func TestScheduler_TickProcessesEveryWorkspace(t *testing.T) {
	s := newTestStore(t)
	sched := New("*/1 * * * *", s, newTestRunner(s))
	sched.tick()

	workspaces, err := s.ListWorkspaces()
	require.NoError(t, err)
	for _, ws := range workspaces {
		run, err := s.LatestJobRun(ws.ID)
		require.NoError(t, err)
		require.NotNil(t, run)
	}
}

func TestScheduler_GuardSkipsWhileAlreadyRunning(t *testing.T) {
	s := newTestStore(t)
	sched := New("*/1 * * * *", s, newTestRunner(s))

	sched.running.Store(true)
	sched.tick()
	assert.True(t, sched.running.Load(), "tick must not clear a guard it did not acquire")

	workspaces, err := s.ListWorkspaces()
	require.NoError(t, err)
	for _, ws := range workspaces {
		run, err := s.LatestJobRun(ws.ID)
		require.NoError(t, err)
		assert.Nil(t, run, "a skipped tick must not process any workspace")
	}
}

func TestScheduler_GuardReleasedAfterTick(t *testing.T) {
	s := newTestStore(t)
	sched := New("*/1 * * * *", s, newTestRunner(s))

	sched.tick()
	assert.False(t, sched.running.Load())

	sched.tick()
	assert.False(t, sched.running.Load())
}

func TestScheduler_ConcurrentTicksLeaveGuardReleased(t *testing.T) {
	s := newTestStore(t)
	sched := New("*/1 * * * *", s, newTestRunner(s))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.tick()
		}()
	}
	wg.Wait()

	assert.False(t, sched.running.Load())

	workspaces, err := s.ListWorkspaces()
	require.NoError(t, err)
	require.NotEmpty(t, workspaces)
}
