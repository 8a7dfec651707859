package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sparkcode/dashboard/internal/application/partner"
)

// ClientHandler handles agency client endpoints
type ClientHandler struct {
	BaseHandler
	service *partner.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(service *partner.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// CreateClientRequest is the new client form
type CreateClientRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=200" example:"Acme Corp"`
	Email    string `json:"email" binding:"omitempty,email" example:"hello@acme.com"`
	Phone    string `json:"phone" binding:"max=50" example:"+1 555 0100"`
	Location string `json:"location" binding:"max=200" example:"New York"`
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=[]ClientResponse}
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ClientResponse, 0, len(clients))
	for _, cl := range clients {
		out = append(out, toClientResponse(cl))
	}
	h.Success(c, out)
}

// Create godoc
// @Summary      Add client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body CreateClientRequest true "Client"
// @Success      201 {object} dto.Response{data=ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req CreateClientRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cl, err := h.service.Create(c.Request.Context(), session, partner.CreateClientInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toClientResponse(cl))
}

// Delete godoc
// @Summary      Delete client
// @Tags         clients
// @Param        id path string true "Client ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
