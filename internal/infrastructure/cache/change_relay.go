package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout  = 5 * time.Second
	defaultChangeChannel = "dashboard:changes"
)

// RedisChangeRelay is a document.ChangeFeed spanning several server
// instances. Notices are delivered to the local feed immediately and relayed
// over Redis Pub/Sub; notices arriving from other instances are replayed into
// the local feed.
type RedisChangeRelay struct {
	client     *redis.Client
	ownsClient bool
	local      document.ChangeFeed
	channel    string
	origin     string
	logger     *zap.Logger

	mu        sync.Mutex
	cancelFn  context.CancelFunc
	isRunning bool
	doneCh    chan struct{}
	doneOnce  sync.Once
}

var _ document.ChangeFeed = (*RedisChangeRelay)(nil)

// RedisChangeRelayOption configures the relay
type RedisChangeRelayOption func(*RedisChangeRelay)

// WithRelayChannel sets the Pub/Sub channel name
func WithRelayChannel(channel string) RedisChangeRelayOption {
	return func(r *RedisChangeRelay) {
		if channel != "" {
			r.channel = channel
		}
	}
}

// WithRelayLogger sets the logger
func WithRelayLogger(logger *zap.Logger) RedisChangeRelayOption {
	return func(r *RedisChangeRelay) {
		r.logger = logger
	}
}

// WithRelayOrigin overrides the generated instance id
func WithRelayOrigin(origin string) RedisChangeRelayOption {
	return func(r *RedisChangeRelay) {
		r.origin = origin
	}
}

// NewRedisChangeRelay connects to Redis and wraps the local feed
func NewRedisChangeRelay(cfg config.RedisConfig, local document.ChangeFeed, opts ...RedisChangeRelayOption) (*RedisChangeRelay, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := newRelay(client, local, append([]RedisChangeRelayOption{WithRelayChannel(cfg.ChangeChannel)}, opts...)...)
	r.ownsClient = true
	return r, nil
}

// NewRedisChangeRelayWithClient creates a relay on an existing client. The
// caller keeps ownership of the client.
func NewRedisChangeRelayWithClient(client *redis.Client, local document.ChangeFeed, opts ...RedisChangeRelayOption) *RedisChangeRelay {
	return newRelay(client, local, opts...)
}

func newRelay(client *redis.Client, local document.ChangeFeed, opts ...RedisChangeRelayOption) *RedisChangeRelay {
	r := &RedisChangeRelay{
		client:  client,
		local:   local,
		channel: defaultChangeChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Origin is the id this instance stamps on relayed notices
func (r *RedisChangeRelay) Origin() string {
	return r.origin
}

// Publish notifies local listeners, then relays the notice to other
// instances. Local delivery happens even when Redis is unavailable.
func (r *RedisChangeRelay) Publish(ctx context.Context, notice document.ChangeNotice) error {
	if notice.Origin == "" {
		notice.Origin = r.origin
	}
	if notice.At.IsZero() {
		notice.At = time.Now()
	}
	if err := r.local.Publish(ctx, notice); err != nil {
		return err
	}

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal change notice: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Error("Failed to relay change notice",
			zap.String("channel", r.channel),
			zap.String("collection", notice.Collection),
			zap.Error(err))
		return fmt.Errorf("failed to relay change notice: %w", err)
	}
	return nil
}

// Listen registers a local listener
func (r *RedisChangeRelay) Listen(fn func(document.ChangeNotice)) func() {
	return r.local.Listen(fn)
}

// Run receives notices from other instances until ctx is done or Close is
// called. It blocks, so start it in a goroutine.
func (r *RedisChangeRelay) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("relay already running")
	}
	r.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		r.markDone()
	}()

	pubsub := r.client.Subscribe(subCtx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	r.logger.Info("Subscribed to change channel", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			r.logger.Info("Change relay stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Change channel closed")
				return nil
			}
			r.handle(subCtx, msg.Payload)
		}
	}
}

// handle replays a notice from another instance into the local feed.
func (r *RedisChangeRelay) handle(ctx context.Context, payload string) {
	var notice document.ChangeNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil {
		r.logger.Error("Failed to unmarshal change notice",
			zap.String("payload", payload),
			zap.Error(err))
		return
	}
	if notice.Origin == r.origin || notice.Collection == "" {
		return
	}
	if err := r.local.Publish(ctx, notice); err != nil {
		r.logger.Warn("Failed to deliver relayed notice",
			zap.String("collection", notice.Collection),
			zap.Error(err))
	}
}

func (r *RedisChangeRelay) markDone() {
	r.doneOnce.Do(func() {
		close(r.doneCh)
	})
}

// Close stops Run and releases the client if the relay created it
func (r *RedisChangeRelay) Close() error {
	r.mu.Lock()
	cancelFn := r.cancelFn
	r.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-r.doneCh:
		case <-time.After(defaultCloseTimeout):
			r.logger.Warn("Timeout waiting for change relay to stop")
		}
	}

	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}
