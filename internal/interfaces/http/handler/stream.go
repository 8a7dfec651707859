package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/interfaces/http/dto"
)

// Frame types pushed to streaming clients
const (
	FrameConnected    = "connected"
	FrameSnapshot     = "snapshot"
	FrameView         = "view"
	FrameError        = "error"
	FrameHeartbeat    = "heartbeat"
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FramePong         = "pong"
)

// ErrTooManyClients is returned when the stream hub is full
var ErrTooManyClients = shared.NewDomainError("MAX_CONNECTIONS_REACHED", "Maximum number of streaming connections reached")

// SnapshotFrame carries the full result of a subscription. It replaces
// whatever the client held for that subscription.
type SnapshotFrame struct {
	Type       string           `json:"type"`
	ID         string           `json:"id,omitempty"`
	Collection string           `json:"collection"`
	Docs       []map[string]any `json:"docs"`
	ReadTime   time.Time        `json:"readTime"`
}

// ErrorFrame reports a failed subscription or request
type ErrorFrame struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	Collection string `json:"collection,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// ControlFrame acknowledges requests and keeps connections alive
type ControlFrame struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	Collection string `json:"collection,omitempty"`
	ClientID   string `json:"clientId,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// ViewFrame carries a rebuilt view
type ViewFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func newSnapshotFrame(id string, snap document.Snapshot) SnapshotFrame {
	docs := make([]map[string]any, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		docs = append(docs, d.Flatten())
	}
	return SnapshotFrame{
		Type:       FrameSnapshot,
		ID:         id,
		Collection: snap.Query.Collection,
		Docs:       docs,
		ReadTime:   snap.ReadTime,
	}
}

// newErrorFrame exposes domain and mapping errors and hides everything else.
func newErrorFrame(id, collection string, err error) ErrorFrame {
	f := ErrorFrame{Type: FrameError, ID: id, Collection: collection}
	var domainErr *shared.DomainError
	var mapErr *document.MappingError
	switch {
	case errors.As(err, &domainErr):
		f.Code = dto.NormalizeErrorCode(domainErr.Code)
		f.Message = domainErr.Message
	case errors.As(err, &mapErr):
		f.Code = dto.ErrCodeMalformedDocument
		f.Message = mapErr.Error()
	default:
		f.Code = dto.ErrCodeInternal
		f.Message = "Failed to load data"
	}
	return f
}

func frameType(frame any) string {
	switch f := frame.(type) {
	case SnapshotFrame:
		return f.Type
	case ErrorFrame:
		return f.Type
	case ControlFrame:
		return f.Type
	case ViewFrame:
		return f.Type
	}
	return "message"
}

// streamClient is one connected SSE or WebSocket client.
type streamClient struct {
	ID     string
	UserID string
	ready  chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	queue    []queuedFrame
	limit    int
	dropped  int
	doneOnce sync.Once
}

type queuedFrame struct {
	key   string
	keep  bool
	frame any
}

func newStreamClient(userID string, limit int) *streamClient {
	if limit <= 0 {
		limit = 1
	}
	return &streamClient{
		ID:     uuid.New().String(),
		UserID: userID,
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
		limit:  limit,
	}
}

// frameKey groups frames that supersede each other. Kept frames carry the
// state of a subscription and are never evicted to make room for others.
func frameKey(frame any) (key string, keep bool) {
	switch f := frame.(type) {
	case SnapshotFrame:
		return "snapshot|" + f.ID + "|" + f.Collection, true
	case ViewFrame:
		return "view", true
	case ErrorFrame:
		if f.ID != "" || f.Collection != "" {
			return "error|" + f.ID + "|" + f.Collection, true
		}
	case ControlFrame:
		if f.Type == FrameHeartbeat {
			return FrameHeartbeat, false
		}
	}
	return "", false
}

// offer queues frame without blocking and reports whether nothing was
// dropped. A queued frame with the same key is replaced in place, so each
// subscription holds at most its newest snapshot. On a full buffer the
// oldest control frame makes room; when only subscription state is queued
// a control frame is dropped instead, and subscription state is queued past
// the limit (at most one frame per open subscription).
func (c *streamClient) offer(frame any) bool {
	key, keep := frameKey(frame)
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.signal()

	if key != "" {
		for i := range c.queue {
			if c.queue[i].key == key {
				c.queue[i].frame = frame
				c.dropped++
				return false
			}
		}
	}

	clean := true
	if len(c.queue) >= c.limit {
		victim := -1
		for i := range c.queue {
			if !c.queue[i].keep {
				victim = i
				break
			}
		}
		switch {
		case victim >= 0:
			c.queue = append(c.queue[:victim], c.queue[victim+1:]...)
			c.dropped++
			clean = false
		case !keep:
			c.dropped++
			return false
		default:
			clean = false
		}
	}
	c.queue = append(c.queue, queuedFrame{key: key, keep: keep, frame: frame})
	return clean
}

// next pops the oldest queued frame.
func (c *streamClient) next() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, false
	}
	frame := c.queue[0].frame
	c.queue[0] = queuedFrame{}
	c.queue = c.queue[1:]
	return frame, true
}

func (c *streamClient) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *streamClient) close() {
	c.doneOnce.Do(func() { close(c.done) })
}

// StreamHub tracks streaming clients, enforces the connection limit and
// broadcasts heartbeats.
type StreamHub struct {
	logger    *zap.Logger
	heartbeat time.Duration
	max       int
	buffer    int

	mu      sync.RWMutex
	clients map[string]*streamClient

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	startMu sync.Mutex
}

// NewStreamHub creates a hub from the realtime configuration
func NewStreamHub(cfg config.RealtimeConfig, logger *zap.Logger) *StreamHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &StreamHub{
		logger:    logger,
		heartbeat: cfg.HeartbeatInterval,
		max:       cfg.MaxClients,
		buffer:    cfg.ClientBuffer,
		clients:   make(map[string]*streamClient),
		ctx:       ctx,
		cancel:    cancel,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.heartbeat <= 0 {
		h.heartbeat = 30 * time.Second
	}
	if h.buffer <= 0 {
		h.buffer = 16
	}
	return h
}

// Start begins broadcasting heartbeats
func (h *StreamHub) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if h.started {
		return fmt.Errorf("stream hub already started")
	}
	h.started = true
	go h.sendHeartbeats()
	h.logger.Info("Stream hub started",
		zap.Duration("heartbeat", h.heartbeat),
		zap.Int("max_clients", h.max))
	return nil
}

// Stop disconnects every client
func (h *StreamHub) Stop() {
	h.cancel()
	h.mu.RLock()
	for _, c := range h.clients {
		c.close()
	}
	h.mu.RUnlock()
	h.logger.Info("Stream hub stopped")
}

// Done is closed once Stop was called
func (h *StreamHub) Done() <-chan struct{} {
	return h.ctx.Done()
}

// ClientCount returns the number of connected clients
func (h *StreamHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *StreamHub) add(userID string) (*streamClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return nil, ErrTooManyClients
	}
	if h.max > 0 && len(h.clients) >= h.max {
		return nil, ErrTooManyClients
	}
	c := newStreamClient(userID, h.buffer)
	h.clients[c.ID] = c
	return c, nil
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	c.close()
	c.mu.Lock()
	dropped := c.dropped
	c.mu.Unlock()
	if dropped > 0 {
		h.logger.Warn("Slow stream client dropped frames",
			zap.String("client_id", c.ID),
			zap.Int("dropped", dropped))
	}
}

func (h *StreamHub) broadcast(frame any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.offer(frame)
	}
}

// sendHeartbeats periodically sends heartbeat frames to keep connections alive
func (h *StreamHub) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-h.ctx.Done():
			return
		case now := <-ticker.C:
			h.broadcast(ControlFrame{Type: FrameHeartbeat, Timestamp: now.Unix()})
		}
	}
}

// sseHeaders prepares the response for an event stream.
func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Status(200)
}

// sendEvent writes a frame as an SSE event named after its type
func sendEvent(w io.Writer, frame any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frameType(frame), data)
	return err
}

// pump writes the client's frames to an SSE response until the request, the
// client or the hub ends. stop is an extra end signal and may be nil.
func (h *StreamHub) pump(c *gin.Context, client *streamClient, stop <-chan struct{}) {
	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("SSE client disconnected", zap.String("client_id", client.ID))
			return
		case <-client.done:
			return
		case <-h.ctx.Done():
			return
		case <-stop:
			// Flush what the subscription queued before it ended.
			_ = h.drain(c, client)
			return
		case <-client.ready:
			if err := h.drain(c, client); err != nil {
				h.logger.Debug("SSE write failed", zap.String("client_id", client.ID), zap.Error(err))
				return
			}
		}
	}
}

// drain writes every queued frame and flushes once.
func (h *StreamHub) drain(c *gin.Context, client *streamClient) error {
	for {
		frame, ok := client.next()
		if !ok {
			c.Writer.Flush()
			return nil
		}
		if err := sendEvent(c.Writer, frame); err != nil {
			return err
		}
	}
}
