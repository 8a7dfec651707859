package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dashboardapp "github.com/sparkcode/dashboard/internal/application/dashboard"
	"github.com/sparkcode/dashboard/internal/domain/dashboard"
	"github.com/sparkcode/dashboard/internal/domain/navigation"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/interfaces/http/middleware"
)

// DashboardHandler serves the overview screen, the sidebar and the command palette
type DashboardHandler struct {
	BaseHandler
	service *dashboardapp.Service
	hub     *StreamHub
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *dashboardapp.Service, hub *StreamHub) *DashboardHandler {
	return &DashboardHandler{service: service, hub: hub}
}

// Overview godoc
// @Summary      Dashboard overview
// @Description  Stat cards and charts. Revenue figures are only included for admins
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.View}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	view, err := h.service.Overview(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Sidebar godoc
// @Summary      Sidebar navigation
// @Description  Navigation sections visible to the caller, with item counts
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=[]navigation.Section}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/sidebar [get]
func (h *DashboardHandler) Sidebar(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	sections, err := h.service.Sidebar(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sections)
}

// Commands godoc
// @Summary      Command palette
// @Description  Palette entries whose name contains q, case-insensitive
// @Tags         dashboard
// @Produce      json
// @Param        q query string false "Search text"
// @Success      200 {object} dto.Response{data=[]navigation.Command}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/commands [get]
func (h *DashboardHandler) Commands(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	h.Success(c, navigation.Commands(c.Query("q"), session))
}

// Resolve godoc
// @Summary      Resolve a route
// @Description  Applies the route guards to path and returns where navigation ends up
// @Tags         dashboard
// @Produce      json
// @Param        path query string true "Client route, e.g. /finance"
// @Success      200 {object} dto.Response{data=navigation.Resolution}
// @Security     BearerAuth
// @Router       /dashboard/resolve [get]
func (h *DashboardHandler) Resolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		h.BadRequest(c, "path is required")
		return
	}
	// Without a session the guard sends everything to the login screen.
	h.Success(c, navigation.Resolve(path, middleware.GetSession(c)))
}

// Stream godoc
// @Summary      Live dashboard overview (SSE)
// @Description  Sends a view event with the rebuilt overview after every project or student change
// @Tags         dashboard
// @Produce      text/event-stream
// @Success      200 {object} ViewFrame
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/stream [get]
func (h *DashboardHandler) Stream(c *gin.Context) {
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

	live, err := h.service.Stream(c.Request.Context(), session,
		func(v *dashboard.View) { client.offer(ViewFrame{Type: FrameView, Data: v}) },
		func(err error) { client.offer(newErrorFrame("", "", err)) },
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer live.Close()

	logger.GetGinLogger(c).Info("Dashboard stream opened", zap.String("client_id", client.ID))

	sseHeaders(c)
	if err := sendEvent(c.Writer, ControlFrame{Type: FrameConnected, ClientID: client.ID}); err != nil {
		return
	}
	c.Writer.Flush()

	h.hub.pump(c, client, live.Done())
}
