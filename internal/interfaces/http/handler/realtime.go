package handler

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/infrastructure/realtime"
)

const wsReadLimit = 64 << 10

// RealtimeHandler exposes live collection queries over SSE and WebSocket
type RealtimeHandler struct {
	BaseHandler
	bridge       *realtime.Bridge
	hub          *StreamHub
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(bridge *realtime.Bridge, hub *StreamHub, cfg config.RealtimeConfig, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &RealtimeHandler{
		bridge:       bridge,
		hub:          hub,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
	}
	if h.writeTimeout <= 0 {
		h.writeTimeout = 10 * time.Second
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return h
}

// originChecker returns nil for an empty list, which keeps the upgrader's
// same-origin check.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// parseFilterValue turns a query string value into the JSON type it most
// likely was stored as.
func parseFilterValue(raw string) any {
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// queryFromRequest reads collection, where, orderBy, direction and limit
// from the URL.
func queryFromRequest(c *gin.Context) (document.Query, error) {
	q := document.Collection(c.Query("collection"))
	for _, w := range c.QueryArray("where") {
		field, value, ok := strings.Cut(w, ":")
		if !ok {
			return q, errBadWhere(w)
		}
		q = q.Where(field, parseFilterValue(value))
	}
	if orderBy := c.Query("orderBy"); orderBy != "" {
		q = q.Order(orderBy, document.Direction(strings.ToLower(c.DefaultQuery("direction", string(document.Asc)))))
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errBadLimit(raw)
		}
		q = q.Take(n)
	}
	return q, q.Validate()
}

type queryError string

func (e queryError) Error() string { return string(e) }

func errBadWhere(w string) error   { return queryError("where must be field:value, got " + strconv.Quote(w)) }
func errBadLimit(raw string) error { return queryError("limit must be a number, got " + strconv.Quote(raw)) }

// Stream godoc
// @Summary      Subscribe to a collection query (SSE)
// @Description  Streams a snapshot event with the full result whenever the result may have changed. Repeat where as field:value for several filters
// @Tags         realtime
// @Produce      text/event-stream
// @Param        collection query string true  "Collection path, e.g. projects or projects/{id}/tasks"
// @Param        where      query []string false "Equality filter field:value" collectionFormat(multi)
// @Param        orderBy    query string false "Sort field"
// @Param        direction  query string false "asc or desc"
// @Param        limit      query int    false "Maximum number of documents"
// @Success      200 {object} SnapshotFrame
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /realtime/stream [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	q, err := queryFromRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := realtime.Authorize(session, q); err != nil {
		h.HandleError(c, err)
		return
	}

	client, err := h.hub.add(session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.remove(client)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.bridge.Subscribe(ctx, q,
		func(snap document.Snapshot) { client.offer(newSnapshotFrame("", snap)) },
		func(err error) { client.offer(newErrorFrame("", q.Collection, err)) },
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer sub.Cancel()

	logger.GetGinLogger(c).Info("Realtime stream opened",
		zap.String("client_id", client.ID),
		zap.String("collection", q.Collection))

	sseHeaders(c)
	if err := sendEvent(c.Writer, ControlFrame{Type: FrameConnected, ClientID: client.ID, Collection: q.Collection}); err != nil {
		return
	}
	c.Writer.Flush()

	h.hub.pump(c, client, sub.Done())
}

// WSMessage is a client request on the realtime WebSocket
type WSMessage struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Where      map[string]any `json:"where,omitempty"`
	OrderBy    string         `json:"orderBy,omitempty"`
	Direction  string         `json:"direction,omitempty"`
	Limit      int            `json:"limit,omitempty"`
}

func (m WSMessage) query() document.Query {
	q := document.Collection(m.Collection)
	fields := make([]string, 0, len(m.Where))
	for f := range m.Where {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		q = q.Where(f, m.Where[f])
	}
	if m.OrderBy != "" {
		q = q.Order(m.OrderBy, document.Direction(strings.ToLower(m.Direction)))
	}
	if m.Limit != 0 {
		q = q.Take(m.Limit)
	}
	return q
}

// wsSession multiplexes subscriptions over one WebSocket connection.
type wsSession struct {
	h       *RealtimeHandler
	ctx     context.Context
	session *identity.Session
	client  *streamClient
	log     *zap.Logger

	mu   sync.Mutex
	subs map[string]*realtime.Subscription
}

// WebSocket godoc
// @Summary      Multiplexed realtime subscriptions (WebSocket)
// @Description  Send {"type":"subscribe","id":"p","collection":"projects"} to open a subscription and {"type":"unsubscribe","id":"p"} to close it. Frames carry the subscription id
// @Tags         realtime
// @Success      101
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /realtime/ws [get]
func (h *RealtimeHandler) WebSocket(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	client, err := h.hub.add(session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.remove(client)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader already answered the request.
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := &wsSession{
		h:       h,
		ctx:     ctx,
		session: session,
		client:  client,
		log:     logger.GetGinLogger(c).With(zap.String("client_id", client.ID)),
		subs:    make(map[string]*realtime.Subscription),
	}
	defer ws.closeAll()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ws.writeLoop(conn)
	}()

	client.offer(ControlFrame{Type: FrameConnected, ClientID: client.ID})
	ws.log.Info("Realtime WebSocket opened")

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.log.Debug("WebSocket read failed", zap.Error(err))
			}
			break
		}
		if ctx.Err() != nil {
			break
		}
		ws.handle(msg)
	}

	cancel()
	<-writerDone
	ws.log.Info("Realtime WebSocket closed")
}

func (ws *wsSession) writeLoop(conn *websocket.Conn) {
	for {
		select {
		case <-ws.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ws.h.writeTimeout))
			return
		case <-ws.client.done:
			return
		case <-ws.client.ready:
			for {
				frame, ok := ws.client.next()
				if !ok {
					break
				}
				_ = conn.SetWriteDeadline(time.Now().Add(ws.h.writeTimeout))
				if err := conn.WriteJSON(frame); err != nil {
					ws.log.Debug("WebSocket write failed", zap.Error(err))
					return
				}
			}
		}
	}
}

func (ws *wsSession) handle(msg WSMessage) {
	switch msg.Type {
	case "subscribe":
		ws.subscribe(msg)
	case "unsubscribe":
		ws.unsubscribe(msg.ID)
	case "ping":
		ws.client.offer(ControlFrame{Type: FramePong, ID: msg.ID, Timestamp: time.Now().Unix()})
	default:
		ws.client.offer(ErrorFrame{Type: FrameError, ID: msg.ID, Code: "ERR_BAD_REQUEST", Message: "unknown message type " + strconv.Quote(msg.Type)})
	}
}

func (ws *wsSession) subscribe(msg WSMessage) {
	if msg.ID == "" {
		ws.client.offer(ErrorFrame{Type: FrameError, Collection: msg.Collection, Code: "ERR_BAD_REQUEST", Message: "subscription id is required"})
		return
	}
	ws.mu.Lock()
	_, exists := ws.subs[msg.ID]
	ws.mu.Unlock()
	if exists {
		ws.client.offer(ErrorFrame{Type: FrameError, ID: msg.ID, Collection: msg.Collection, Code: "ERR_ALREADY_EXISTS", Message: "subscription id already in use"})
		return
	}

	q := msg.query()
	if err := q.Validate(); err != nil {
		ws.client.offer(ErrorFrame{Type: FrameError, ID: msg.ID, Collection: msg.Collection, Code: "ERR_BAD_REQUEST", Message: err.Error()})
		return
	}
	if err := realtime.Authorize(ws.session, q); err != nil {
		ws.client.offer(newErrorFrame(msg.ID, q.Collection, err))
		return
	}

	id := msg.ID
	ws.client.offer(ControlFrame{Type: FrameSubscribed, ID: id, Collection: q.Collection})
	sub, err := ws.h.bridge.Subscribe(ws.ctx, q,
		func(snap document.Snapshot) { ws.client.offer(newSnapshotFrame(id, snap)) },
		func(err error) { ws.client.offer(newErrorFrame(id, q.Collection, err)) },
	)
	if err != nil {
		ws.client.offer(newErrorFrame(id, q.Collection, err))
		return
	}

	ws.mu.Lock()
	ws.subs[id] = sub
	ws.mu.Unlock()
	// A subscription whose query failed ends on its own; its id is free again.
	go func() {
		<-sub.Done()
		ws.forget(id, sub)
	}()
	ws.log.Debug("Subscription opened", zap.String("subscription", id), zap.String("collection", q.Collection))
}

func (ws *wsSession) unsubscribe(id string) {
	ws.mu.Lock()
	sub, ok := ws.subs[id]
	delete(ws.subs, id)
	ws.mu.Unlock()
	if !ok {
		ws.client.offer(ErrorFrame{Type: FrameError, ID: id, Code: "ERR_NOT_FOUND", Message: "no such subscription"})
		return
	}
	sub.Cancel()
	ws.client.offer(ControlFrame{Type: FrameUnsubscribed, ID: id})
}

// forget drops sub if it is still registered under id.
func (ws *wsSession) forget(id string, sub *realtime.Subscription) {
	ws.mu.Lock()
	if ws.subs[id] == sub {
		delete(ws.subs, id)
	}
	ws.mu.Unlock()
}

func (ws *wsSession) closeAll() {
	ws.mu.Lock()
	subs := ws.subs
	ws.subs = map[string]*realtime.Subscription{}
	ws.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}
