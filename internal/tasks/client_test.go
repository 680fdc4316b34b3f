package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDBPath(t *testing.T) {
	tests := []struct {
		main string
		want string
	}{
		{"snipsnap.db", "snipsnap-tasks.db"},
		{filepath.Join("data", "snipsnap.db"), filepath.Join("data", "snipsnap-tasks.db")},
		{filepath.Join("v1.2", "snipsnap"), filepath.Join("v1.2", "snipsnap-tasks")},
	}

	for _, tt := range tests {
		t.Run(tt.main, func(t *testing.T) {
			assert.Equal(t, tt.want, QueueDBPath(tt.main))
		})
	}
}

func newTestClient(t *testing.T, cleaners Cleaners) *Client {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "snipsnap.db")

	client, err := NewClient(dbPath, DefaultConfig(), cleaners)
	require.NoError(t, err)

	_, err = os.Stat(QueueDBPath(dbPath))
	require.NoError(t, err, "queue database should be created next to the main database")
	return client
}

func TestClient_ShutdownBeforeStart(t *testing.T) {
	client := newTestClient(t, Cleaners{})

	assert.True(t, client.Shutdown(context.Background()))
}

func TestClient_ShutdownDrainsWorkers(t *testing.T) {
	client := newTestClient(t, Cleaners{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Give the workers time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Shutdown(stopCtx), "shutdown should drain idle workers")
}

func TestClient_RunsMaintenanceTasks(t *testing.T) {
	audit := &fakeAuditCleaner{deleted: 3, called: make(chan int, 1)}
	shares := &fakeSharesCleaner{called: make(chan struct{}, 1)}
	client := newTestClient(t, Cleaners{Audit: audit, Shares: shares})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		client.Shutdown(stopCtx)
	}()

	id, err := client.Enqueue(CleanupAuditEventsTask{RetentionDays: 14})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = client.Enqueue(CleanupOrphanSharesTask{})
	require.NoError(t, err)

	select {
	case days := <-audit.called:
		assert.Equal(t, 14, days)
	case <-time.After(5 * time.Second):
		t.Fatal("audit cleanup was not executed within timeout")
	}

	select {
	case <-shares.called:
	case <-time.After(5 * time.Second):
		t.Fatal("orphan share cleanup was not executed within timeout")
	}
}

type fakeAuditCleaner struct {
	days    int
	deleted int64
	err     error
	called  chan int
}

func (f *fakeAuditCleaner) Cleanup(retentionDays int) (int64, error) {
	f.days = retentionDays
	if f.called != nil {
		f.called <- retentionDays
	}
	return f.deleted, f.err
}

type fakeSharesCleaner struct {
	calls  int
	called chan struct{}
}

func (f *fakeSharesCleaner) DeleteOrphanShares() (int64, error) {
	f.calls++
	if f.called != nil {
		f.called <- struct{}{}
	}
	return 2, nil
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{RetentionDays: 30}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeAuditCleaner{deleted: 4}
	err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 7})

	require.NoError(t, err)
	assert.Equal(t, 7, cleaner.days)

	failing := &fakeAuditCleaner{err: errors.New("disk full")}
	err = CleanupAuditEventsProcessor(failing)(context.Background(), CleanupAuditEventsTask{})
	assert.ErrorContains(t, err, "disk full")

	err = CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{})
	assert.Error(t, err)
}

func TestCleanupOrphanSharesProcessor(t *testing.T) {
	cleaner := &fakeSharesCleaner{}
	require.NoError(t, CleanupOrphanSharesProcessor(cleaner)(context.Background(), CleanupOrphanSharesTask{}))
	assert.Equal(t, 1, cleaner.calls)

	assert.Equal(t, "cleanup_orphan_shares", CleanupOrphanSharesTask{}.Config().Name)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}
