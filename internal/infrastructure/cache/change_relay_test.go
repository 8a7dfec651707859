package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisChangeRelay_ConnectionFailure(t *testing.T) {
	_, err := NewRedisChangeRelay(config.RedisConfig{Host: "127.0.0.1", Port: 1},
		event.NewInMemoryChangeFeed(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestRedisChangeRelay_PublishDeliversLocallyWhenRedisIsDown(t *testing.T) {
	local := event.NewInMemoryChangeFeed(zap.NewNop())
	relay := NewRedisChangeRelayWithClient(unreachableClient(t), local, WithRelayOrigin("node-a"))

	var got []document.ChangeNotice
	relay.Listen(func(n document.ChangeNotice) { got = append(got, n) })

	err := relay.Publish(context.Background(), document.ChangeNotice{Collection: "projects"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to relay")

	require.Len(t, got, 1)
	assert.Equal(t, "node-a", got[0].Origin)
	assert.False(t, got[0].At.IsZero())
}

func TestRedisChangeRelay_Handle(t *testing.T) {
	local := event.NewInMemoryChangeFeed(zap.NewNop())
	relay := NewRedisChangeRelayWithClient(unreachableClient(t), local, WithRelayOrigin("node-a"))

	var got []string
	relay.Listen(func(n document.ChangeNotice) { got = append(got, n.Collection) })

	payload := func(n document.ChangeNotice) string {
		data, err := json.Marshal(n)
		require.NoError(t, err)
		return string(data)
	}

	relay.handle(context.Background(), payload(document.ChangeNotice{Collection: "students", Origin: "node-b"}))
	relay.handle(context.Background(), payload(document.ChangeNotice{Collection: "team", Origin: "node-a"}))
	relay.handle(context.Background(), "not json")
	relay.handle(context.Background(), payload(document.ChangeNotice{Origin: "node-b"}))

	assert.Equal(t, []string{"students"}, got, "own and malformed notices are dropped")
}

func TestRedisChangeRelay_RunFailsWithoutRedis(t *testing.T) {
	relay := NewRedisChangeRelayWithClient(unreachableClient(t), event.NewInMemoryChangeFeed(zap.NewNop()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := relay.Run(ctx)
	require.Error(t, err)

	assert.NoError(t, relay.Close())
}

func TestRedisChangeRelay_Defaults(t *testing.T) {
	relay := NewRedisChangeRelayWithClient(unreachableClient(t), event.NewInMemoryChangeFeed(zap.NewNop()),
		WithRelayChannel(""))
	assert.Equal(t, defaultChangeChannel, relay.channel)
	assert.NotEmpty(t, relay.Origin())
}
