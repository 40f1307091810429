package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client)
	require.NoError(t, store.Ping(ctx))

	_, err = store.Get(ctx, KindAreas.Document())
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, store.Put(ctx, KindAreas.Document(), []byte(`[{"id":"area-1"}]`)))
	data, err := store.Get(ctx, KindAreas.Document())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"area-1"}]`, string(data))

	raw, err := client.Get(ctx, "wms:refdata:areas.json").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
