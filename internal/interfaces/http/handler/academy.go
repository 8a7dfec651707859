package handler

import (
	"github.com/gin-gonic/gin"

	academyapp "github.com/sparkcode/dashboard/internal/application/academy"
	"github.com/sparkcode/dashboard/internal/domain/academy"
)

// AcademyHandler handles student and course endpoints
type AcademyHandler struct {
	BaseHandler
	service *academyapp.Service
}

// NewAcademyHandler creates a new AcademyHandler
func NewAcademyHandler(service *academyapp.Service) *AcademyHandler {
	return &AcademyHandler{service: service}
}

// EnrollStudentRequest is the enrollment form. Status defaults to Active,
// payment to Pending and progress to 0.
type EnrollStudentRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=200" example:"Jane Doe"`
	Course   string `json:"course" binding:"required,notblank,max=200" example:"Full-Stack Web Development"`
	Status   string `json:"status" binding:"omitempty,oneof=Active Inactive Graduated"`
	Payment  string `json:"payment" binding:"omitempty,oneof=Paid Pending"`
	Progress int    `json:"progress" binding:"gte=0,lte=100"`
}

// UpdateStudentRequest carries only the fields to change. Progress moves in
// steps of 5.
type UpdateStudentRequest struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=200"`
	Course   *string `json:"course" binding:"omitempty,notblank,max=200"`
	Status   *string `json:"status" binding:"omitempty,oneof=Active Inactive Graduated"`
	Progress *int    `json:"progress" binding:"omitempty,gte=0,lte=100"`
	Payment  *string `json:"payment" binding:"omitempty,oneof=Paid Pending"`
}

// CreateCourseRequest is the new course form
type CreateCourseRequest struct {
	Title      string `json:"title" binding:"required,notblank,max=200" example:"UI/UX Design Masterclass"`
	Instructor string `json:"instructor" binding:"max=200" example:"Sarah Chen"`
	Duration   string `json:"duration" binding:"max=50" example:"8 weeks"`
	Price      string `json:"price" binding:"max=50" example:"$499"`
}

// UpdateCourseRequest carries only the fields to change
type UpdateCourseRequest struct {
	Title      *string `json:"title" binding:"omitempty,notblank,max=200"`
	Instructor *string `json:"instructor" binding:"omitempty,max=200"`
	Duration   *string `json:"duration" binding:"omitempty,max=50"`
	Price      *string `json:"price" binding:"omitempty,max=50"`
}

// Overview godoc
// @Summary      Academy overview
// @Description  Student totals, enrollment per course and the most recent enrollments
// @Tags         academy
// @Produce      json
// @Success      200 {object} dto.Response{data=AcademyOverviewResponse}
// @Security     BearerAuth
// @Router       /academy/overview [get]
func (h *AcademyHandler) Overview(c *gin.Context) {
	ov, err := h.service.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AcademyOverviewResponse{
		TotalStudents:  ov.TotalStudents,
		ActiveStudents: ov.ActiveStudents,
		Courses:        ov.Courses,
		Enrollment:     ov.Enrollment,
		Recent:         toStudentResponses(ov.Recent),
	})
}

// ListStudents godoc
// @Summary      List students
// @Tags         academy
// @Produce      json
// @Success      200 {object} dto.Response{data=[]StudentResponse}
// @Security     BearerAuth
// @Router       /academy/students [get]
func (h *AcademyHandler) ListStudents(c *gin.Context) {
	students, err := h.service.Students(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStudentResponses(students))
}

// Enroll godoc
// @Summary      Enroll student
// @Tags         academy
// @Accept       json
// @Produce      json
// @Param        request body EnrollStudentRequest true "Student"
// @Success      201 {object} dto.Response{data=StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/students [post]
func (h *AcademyHandler) Enroll(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req EnrollStudentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	st, err := h.service.Enroll(c.Request.Context(), session, academyapp.EnrollStudentInput{
		Name:     req.Name,
		Course:   req.Course,
		Status:   academy.StudentStatus(req.Status),
		Payment:  academy.PaymentStatus(req.Payment),
		Progress: req.Progress,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toStudentResponse(st))
}

// UpdateStudent godoc
// @Summary      Update student
// @Tags         academy
// @Accept       json
// @Produce      json
// @Param        id path string true "Student ID"
// @Param        request body UpdateStudentRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/students/{id} [patch]
func (h *AcademyHandler) UpdateStudent(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req UpdateStudentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	patch := academy.StudentPatch{Name: req.Name, Course: req.Course, Progress: req.Progress}
	if req.Status != nil {
		status := academy.StudentStatus(*req.Status)
		patch.Status = &status
	}
	if req.Payment != nil {
		payment := academy.PaymentStatus(*req.Payment)
		patch.Payment = &payment
	}
	st, err := h.service.UpdateStudent(c.Request.Context(), session, c.Param("id"), patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStudentResponse(st))
}

// DeleteStudent godoc
// @Summary      Remove student
// @Tags         academy
// @Param        id path string true "Student ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/students/{id} [delete]
func (h *AcademyHandler) DeleteStudent(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStudent(c.Request.Context(), session, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListCourses godoc
// @Summary      List courses
// @Description  Courses with the number of students enrolled under each title
// @Tags         academy
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CourseResponse}
// @Security     BearerAuth
// @Router       /academy/courses [get]
func (h *AcademyHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, toCourseResponse(course))
	}
	h.Success(c, out)
}

// CreateCourse godoc
// @Summary      Create course
// @Tags         academy
// @Accept       json
// @Produce      json
// @Param        request body CreateCourseRequest true "Course"
// @Success      201 {object} dto.Response{data=CourseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/courses [post]
func (h *AcademyHandler) CreateCourse(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req CreateCourseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), session, academyapp.CreateCourseInput{
		Title:      req.Title,
		Instructor: req.Instructor,
		Duration:   req.Duration,
		Price:      req.Price,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCourseResponse(course))
}

// UpdateCourse godoc
// @Summary      Update course
// @Description  Renaming a course does not move its students
// @Tags         academy
// @Accept       json
// @Produce      json
// @Param        id path string true "Course ID"
// @Param        request body UpdateCourseRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=CourseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/courses/{id} [patch]
func (h *AcademyHandler) UpdateCourse(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req UpdateCourseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), session, c.Param("id"), academy.CoursePatch{
		Title:      req.Title,
		Instructor: req.Instructor,
		Duration:   req.Duration,
		Price:      req.Price,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCourseResponse(course))
}

// DeleteCourse godoc
// @Summary      Delete course
// @Description  Students enrolled in the course keep its title
// @Tags         academy
// @Param        id path string true "Course ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /academy/courses/{id} [delete]
func (h *AcademyHandler) DeleteCourse(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), session, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
