package handler

import (
	"github.com/gin-gonic/gin"

	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/domain/team"
)

// TeamHandler handles team member endpoints
type TeamHandler struct {
	BaseHandler
	service *teamapp.Service
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(service *teamapp.Service) *TeamHandler {
	return &TeamHandler{service: service}
}

// MemberRequest is the add and edit member form
type MemberRequest struct {
	Name   string `json:"name" binding:"required,notblank,max=200" example:"Alex Rivera"`
	Role   string `json:"role" binding:"required,notblank,max=100" example:"Lead Developer"`
	Status string `json:"status" example:"Active"`
	Email  string `json:"email" binding:"omitempty,email" example:"alex@sparkcode.com"`
}

func (r MemberRequest) input() teamapp.MemberInput {
	return teamapp.MemberInput{
		Name:   r.Name,
		Role:   r.Role,
		Status: team.MemberStatus(r.Status),
		Email:  r.Email,
	}
}

// List godoc
// @Summary      List team members
// @Tags         team
// @Produce      json
// @Success      200 {object} dto.Response{data=[]MemberResponse}
// @Security     BearerAuth
// @Router       /team [get]
func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberResponses(members))
}

// Add godoc
// @Summary      Add team member
// @Tags         team
// @Accept       json
// @Produce      json
// @Param        request body MemberRequest true "Member"
// @Success      201 {object} dto.Response{data=MemberResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /team [post]
func (h *TeamHandler) Add(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req MemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Add(c.Request.Context(), session, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMemberResponse(m))
}

// Update godoc
// @Summary      Edit team member
// @Tags         team
// @Accept       json
// @Produce      json
// @Param        id path string true "Member ID"
// @Param        request body MemberRequest true "Member"
// @Success      200 {object} dto.Response{data=MemberResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /team/{id} [put]
func (h *TeamHandler) Update(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req MemberRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Update(c.Request.Context(), session, c.Param("id"), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberResponse(m))
}

// Remove godoc
// @Summary      Remove team member
// @Tags         team
// @Param        id path string true "Member ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /team/{id} [delete]
func (h *TeamHandler) Remove(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), session, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SeedFounders godoc
// @Summary      Seed founding team
// @Description  Adds the three founding members. Running it again adds them again
// @Tags         team
// @Produce      json
// @Success      201 {object} dto.Response{data=[]MemberResponse}
// @Security     BearerAuth
// @Router       /team/seed [post]
func (h *TeamHandler) SeedFounders(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	members, err := h.service.SeedFounders(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMemberResponses(members))
}
