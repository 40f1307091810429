package queue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/queue"
	"github.com/USSTM/wms-backend/internal/repository"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/USSTM/wms-backend/internal/testutil"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repository.BackgroundPersister = (*queue.Persister)(nil)

func persistTask(t *testing.T, kind storage.Kind, body string, version int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.DocumentPersistPayload{Kind: kind, Body: json.RawMessage(body), Version: version})
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeDocumentPersist, payload)
}

func newWorker(t *testing.T) (*queue.Worker, *storage.DirStore) {
	t.Helper()
	store, err := storage.NewDirStore(t.TempDir())
	require.NoError(t, err)
	return queue.NewWorker(&config.RedisConfig{Addr: "localhost:0"}, store), store
}

func TestHandleDocumentPersist(t *testing.T) {
	ctx := context.Background()
	worker, store := newWorker(t)

	payload, err := json.Marshal(queue.DocumentPersistPayload{
		Kind: storage.KindLocations,
		Body: json.RawMessage(`[{"id":"L1","name":"Site"}]`),
	})
	require.NoError(t, err)

	require.NoError(t, worker.HandleDocumentPersist(ctx, asynq.NewTask(queue.TypeDocumentPersist, payload)))

	data, err := store.Get(ctx, storage.KindLocations.Document())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"L1","name":"Site"}]`, string(data))
}

func TestHandleDocumentPersist_OutOfOrder(t *testing.T) {
	ctx := context.Background()
	worker, store := newWorker(t)

	newer := persistTask(t, storage.KindPools, `[{"id":"P1"},{"id":"P2"}]`, 200)
	older := persistTask(t, storage.KindPools, `[{"id":"P1"}]`, 100)

	require.NoError(t, worker.HandleDocumentPersist(ctx, newer))
	// a retry of the older task lands after the newer one
	require.NoError(t, worker.HandleDocumentPersist(ctx, older))

	data, err := store.Get(ctx, storage.KindPools.Document())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"P1"},{"id":"P2"}]`, string(data))

	version, err := store.Get(ctx, storage.KindPools.VersionDocument())
	require.NoError(t, err)
	assert.Equal(t, "200", string(version))

	t.Run("retry of the same version is applied", func(t *testing.T) {
		require.NoError(t, worker.HandleDocumentPersist(ctx, persistTask(t, storage.KindPools, `[]`, 200)))
		data, err := store.Get(ctx, storage.KindPools.Document())
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("unversioned writes leave the version alone", func(t *testing.T) {
		require.NoError(t, worker.HandleDocumentPersist(ctx, persistTask(t, storage.KindPools, `[{"id":"P9"}]`, 0)))
		data, err := store.Get(ctx, storage.KindPools.Document())
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"P9"}]`, string(data))

		version, err := store.Get(ctx, storage.KindPools.VersionDocument())
		require.NoError(t, err)
		assert.Equal(t, "200", string(version))
	})

	t.Run("versions are per kind", func(t *testing.T) {
		require.NoError(t, worker.HandleDocumentPersist(ctx, persistTask(t, storage.KindAreas, `[{"id":"A1"}]`, 50)))
		data, err := store.Get(ctx, storage.KindAreas.Document())
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"A1"}]`, string(data))
	})
}

func TestHandleDocumentPersist_BadPayloadsSkipRetry(t *testing.T) {
	ctx := context.Background()
	worker, _ := newWorker(t)

	err := worker.HandleDocumentPersist(ctx, asynq.NewTask(queue.TypeDocumentPersist, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = worker.HandleDocumentPersist(ctx, asynq.NewTask(queue.TypeDocumentPersist, []byte(`{"kind":"../etc","body":[]}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPersister_EnqueuesCriticalTask(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	tq := testutil.NewTestQueue(t)
	defer tq.Close()
	defer tq.Cleanup(t)

	p := queue.NewPersister(tq.Queue)
	require.NoError(t, p.Persist(context.Background(), storage.KindPools, []byte(`[]`)))

	tasks, err := tq.Inspector.ListPendingTasks("critical")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, queue.TypeDocumentPersist, tasks[0].Type)

	var payload queue.DocumentPersistPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &payload))
	assert.Equal(t, storage.KindPools, payload.Kind)
	assert.JSONEq(t, `[]`, string(payload.Body))
	assert.Positive(t, payload.Version)
}

func TestPersister_VersionsIncrease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	tq := testutil.NewTestQueue(t)
	defer tq.Close()
	defer tq.Cleanup(t)

	p := queue.NewPersister(tq.Queue)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Persist(context.Background(), storage.KindRoles, []byte(`[]`)))
	}

	versions := map[int64]bool{}
	for _, task := range tq.PendingTasks(t, "critical") {
		var payload queue.DocumentPersistPayload
		require.NoError(t, json.Unmarshal(task.Payload, &payload))
		assert.Positive(t, payload.Version)
		versions[payload.Version] = true
	}
	assert.Len(t, versions, 5, "every write gets its own version")
}

func TestPersister_Pending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()
	tq := testutil.NewTestQueue(t)
	defer tq.Close()
	tq.Cleanup(t)

	p := queue.NewPersister(tq.Queue)

	pending, err := p.Pending(ctx, storage.KindPools)
	require.NoError(t, err)
	assert.False(t, pending, "no queue yet")

	require.NoError(t, p.Persist(ctx, storage.KindPools, []byte(`[]`)))

	pending, err = p.Pending(ctx, storage.KindPools)
	require.NoError(t, err)
	assert.True(t, pending)

	pending, err = p.Pending(ctx, storage.KindUsers)
	require.NoError(t, err)
	assert.False(t, pending)

	tq.Cleanup(t)
	pending, err = p.Pending(ctx, storage.KindPools)
	require.NoError(t, err)
	assert.False(t, pending, "drained queue")
}
