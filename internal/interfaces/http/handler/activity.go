package handler

import (
	"github.com/gin-gonic/gin"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
)

// ActivityHandler handles the activity feed
type ActivityHandler struct {
	BaseHandler
	service *activityapp.Service
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(service *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// AnnounceRequest posts a message to the feed
type AnnounceRequest struct {
	Message string `json:"message" binding:"required,notblank,max=1000" example:"Office closed on Friday"`
	Type    string `json:"type" binding:"omitempty,oneof=info success warning error" example:"info"`
}

// UnreadResponse is the notification badge count
type UnreadResponse struct {
	Unread int `json:"unread"`
}

// MarkReadResponse reports how many entries were flipped to read
type MarkReadResponse struct {
	Updated int `json:"updated"`
}

// Feed godoc
// @Summary      Activity feed
// @Description  The most recent activity entries, newest first
// @Tags         activity
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ActivityResponse}
// @Security     BearerAuth
// @Router       /activity [get]
func (h *ActivityHandler) Feed(c *gin.Context) {
	items, err := h.service.Feed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toActivityResponse(a))
	}
	h.Success(c, out)
}

// Unread godoc
// @Summary      Unread count
// @Tags         activity
// @Produce      json
// @Success      200 {object} dto.Response{data=UnreadResponse}
// @Security     BearerAuth
// @Router       /activity/unread [get]
func (h *ActivityHandler) Unread(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UnreadResponse{Unread: n})
}

// Announce godoc
// @Summary      Send a message
// @Description  Posts a message to the activity feed as the signed-in user
// @Tags         activity
// @Accept       json
// @Produce      json
// @Param        request body AnnounceRequest true "Message"
// @Success      201 {object} dto.Response{data=ActivityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /activity [post]
func (h *ActivityHandler) Announce(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req AnnounceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	a, err := h.service.Announce(c.Request.Context(), session, activityapp.AnnounceInput{
		Message: req.Message,
		Type:    activity.Type(req.Type),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toActivityResponse(a))
}

// MarkAllRead godoc
// @Summary      Mark all read
// @Description  Flips every unread entry to read in one atomic batch
// @Tags         activity
// @Produce      json
// @Success      200 {object} dto.Response{data=MarkReadResponse}
// @Security     BearerAuth
// @Router       /activity/read [post]
func (h *ActivityHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MarkReadResponse{Updated: n})
}
