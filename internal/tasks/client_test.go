package tasks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg Config) (*Client, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quotes.db")
	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, dbPath
}

func TestTasksDBPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "/data/quotes.db", want: "/data/quotes-tasks.db"},
		{in: "quotebuy.sqlite3", want: "quotebuy-tasks.sqlite3"},
		{in: "/data/quotes", want: "/data/quotes-tasks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TasksDBPath(tt.in), tt.in)
	}
}

func TestNewClient_CreatesSiblingDatabase(t *testing.T) {
	client, dbPath := newTestClient(t, Config{Workers: 1})

	_, err := os.Stat(TasksDBPath(dbPath))
	assert.NoError(t, err, "queue database is created next to the main one")
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "main database is left alone")

	assert.Equal(t, 1, client.config.Workers)
}

func TestNewClient_FillsDefaults(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	assert.Equal(t, DefaultConfig(), client.config)
}

func TestClient_StopBeforeStart(t *testing.T) {
	client, _ := newTestClient(t, Config{Workers: 1})

	assert.True(t, client.Stop(context.Background()))
}

func TestClient_StartStop(t *testing.T) {
	client, _ := newTestClient(t, Config{Workers: 1})
	client.Register(NewPruneAuditLogQueue(&fakePruner{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClient_StatusAfterProcessing(t *testing.T) {
	client, _ := newTestClient(t, Config{Workers: 1})
	pruner := &fakePruner{}
	client.Register(NewPruneAuditLogQueue(pruner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(PruneAuditLogTask{RetentionDays: 1}).Save()
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Eventually(t, func() bool {
		status, err := client.Status(context.Background(), ids[0])
		return err == nil && status == backlite.TaskStatusSuccess
	}, 5*time.Second, 20*time.Millisecond)
}

func TestQueueLogger_InfoIsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	ql := &queueLogger{log: logger}

	ql.Info("task claimed", "id", "abc")
	assert.Empty(t, buf.String(), "routine queue chatter stays at debug")

	ql.Error("task failed", "id", "abc")
	assert.Contains(t, buf.String(), "task failed")
	assert.Contains(t, buf.String(), "abc")
}
