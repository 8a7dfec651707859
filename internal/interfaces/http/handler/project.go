package handler

import (
	"github.com/gin-gonic/gin"

	projectapp "github.com/sparkcode/dashboard/internal/application/project"
	"github.com/sparkcode/dashboard/internal/domain/project"
)

// ProjectHandler handles project, Kanban and task endpoints
type ProjectHandler struct {
	BaseHandler
	service *projectapp.Service
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(service *projectapp.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// CreateProjectRequest is the new project form
type CreateProjectRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=200" example:"Website redesign"`
	Client   string `json:"client" binding:"max=200" example:"Acme Corp"`
	Budget   string `json:"budget" binding:"max=50" example:"$12,000"`
	Deadline string `json:"deadline" binding:"max=50" example:"2026-12-31"`
	Status   string `json:"status" example:"In Progress"`
	Team     int    `json:"team" binding:"gte=0,lte=100" example:"3"`
}

// UpdateProjectRequest carries only the fields to change
type UpdateProjectRequest struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=200"`
	Client   *string `json:"client" binding:"omitempty,max=200"`
	Status   *string `json:"status"`
	Deadline *string `json:"deadline" binding:"omitempty,max=50"`
	Budget   *string `json:"budget" binding:"omitempty,max=50"`
	Team     *int    `json:"team" binding:"omitempty,gte=0,lte=100"`
}

// MoveProjectRequest moves a project one Kanban column
type MoveProjectRequest struct {
	Direction string `json:"direction" binding:"required" example:"forward"`
}

// AddTaskRequest adds a checklist task
type AddTaskRequest struct {
	Title string `json:"title" binding:"required,notblank,max=500"`
}

// SetTaskRequest ticks or unticks a task
type SetTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// List godoc
// @Summary      List projects
// @Description  Lists projects, optionally filtered by a case-insensitive search on name and client
// @Tags         projects
// @Produce      json
// @Param        search query string false "Search term"
// @Success      200 {object} dto.Response{data=[]ProjectResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponses(projects))
}

// Get godoc
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=ProjectResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}

// Create godoc
// @Summary      Create project
// @Description  Creates a project. Status defaults to In Progress and team to 1
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), session, projectapp.CreateProjectInput{
		Name:     req.Name,
		Client:   req.Client,
		Budget:   req.Budget,
		Deadline: req.Deadline,
		Status:   project.Status(req.Status),
		Team:     req.Team,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProjectResponse(p))
}

// Update godoc
// @Summary      Update project
// @Description  Merges the given fields into the project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body UpdateProjectRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	patch := project.Patch{
		Name:     req.Name,
		Client:   req.Client,
		Deadline: req.Deadline,
		Budget:   req.Budget,
		Team:     req.Team,
	}
	if req.Status != nil {
		status := project.Status(*req.Status)
		patch.Status = &status
	}

	id := c.Param("id")
	if err := h.service.Update(c.Request.Context(), session, id, patch); err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}

// Delete godoc
// @Summary      Delete project
// @Tags         projects
// @Param        id path string true "Project ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
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

// Board godoc
// @Summary      Kanban board
// @Description  Groups every project into the To Do, In Progress, Review and Done columns
// @Tags         projects
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ColumnResponse}
// @Security     BearerAuth
// @Router       /projects/board [get]
func (h *ProjectHandler) Board(c *gin.Context) {
	columns, err := h.service.Board(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toColumnResponses(columns))
}

// Move godoc
// @Summary      Move project on the board
// @Description  Moves one column forward or backward. At the first or last column nothing changes
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body MoveProjectRequest true "Direction"
// @Success      200 {object} dto.Response{data=MoveResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/move [post]
func (h *ProjectHandler) Move(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req MoveProjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	dir, err := project.ParseDirection(req.Direction)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.service.Move(c.Request.Context(), session, c.Param("id"), dir)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MoveResponse{
		Project: toProjectResponse(result.Project),
		From:    result.From.String(),
		To:      result.To.String(),
		Moved:   result.Moved,
	})
}

// Tasks godoc
// @Summary      List project tasks
// @Description  Lists the project's checklist, newest first
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response{data=[]TaskResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/tasks [get]
func (h *ProjectHandler) Tasks(c *gin.Context) {
	tasks, err := h.service.Tasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	h.Success(c, out)
}

// AddTask godoc
// @Summary      Add task
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body AddTaskRequest true "Task"
// @Success      201 {object} dto.Response{data=TaskResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/tasks [post]
func (h *ProjectHandler) AddTask(c *gin.Context) {
	var req AddTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	task, err := h.service.AddTask(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTaskResponse(task))
}

// SetTask godoc
// @Summary      Tick or untick a task
// @Tags         projects
// @Accept       json
// @Param        id path string true "Project ID"
// @Param        taskId path string true "Task ID"
// @Param        request body SetTaskRequest true "Completion"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/tasks/{taskId} [patch]
func (h *ProjectHandler) SetTask(c *gin.Context) {
	var req SetTaskRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.SetTaskCompleted(c.Request.Context(), c.Param("id"), c.Param("taskId"), *req.Completed); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteTask godoc
// @Summary      Delete task
// @Tags         projects
// @Param        id path string true "Project ID"
// @Param        taskId path string true "Task ID"
// @Success      204
// @Security     BearerAuth
// @Router       /projects/{id}/tasks/{taskId} [delete]
func (h *ProjectHandler) DeleteTask(c *gin.Context) {
	if err := h.service.DeleteTask(c.Request.Context(), c.Param("id"), c.Param("taskId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
