package handler

import (
	"time"

	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/finance"
	"github.com/sparkcode/dashboard/internal/domain/partner"
	"github.com/sparkcode/dashboard/internal/domain/project"
	"github.com/sparkcode/dashboard/internal/domain/settings"
	"github.com/sparkcode/dashboard/internal/domain/team"
)

// Response bodies use the field names the dashboard front end reads from
// the documents themselves.

// ProjectResponse is a project row
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Client    string    `json:"client"`
	Status    string    `json:"status" example:"In Progress"`
	Deadline  string    `json:"deadline"`
	Budget    string    `json:"budget" example:"$12,000"`
	Team      int       `json:"team"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Client:    p.Client,
		Status:    p.Status.String(),
		Deadline:  p.Deadline,
		Budget:    p.Budget,
		Team:      p.Team,
		CreatedAt: p.CreatedAt,
	}
}

func toProjectResponses(items []*project.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toProjectResponse(p))
	}
	return out
}

// ColumnResponse is one Kanban column
type ColumnResponse struct {
	Status   string            `json:"status"`
	Count    int               `json:"count"`
	Projects []ProjectResponse `json:"projects"`
}

func toColumnResponses(columns []project.Column) []ColumnResponse {
	out := make([]ColumnResponse, 0, len(columns))
	for _, col := range columns {
		out = append(out, ColumnResponse{
			Status:   col.Status.String(),
			Count:    col.Count(),
			Projects: toProjectResponses(col.Projects),
		})
	}
	return out
}

// MoveResponse reports a Kanban transition
type MoveResponse struct {
	Project ProjectResponse `json:"project"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Moved   bool            `json:"moved"`
}

// TaskResponse is a project task
type TaskResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

func toTaskResponse(t *project.Task) TaskResponse {
	return TaskResponse{ID: t.ID, Title: t.Title, Completed: t.Completed, CreatedAt: t.CreatedAt}
}

// StudentResponse is an academy student
type StudentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Course    string    `json:"course"`
	Status    string    `json:"status" example:"Active"`
	Progress  int       `json:"progress" example:"45"`
	Payment   string    `json:"payment" example:"Pending"`
	CreatedAt time.Time `json:"createdAt"`
}

func toStudentResponse(s *academy.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		Name:      s.Name,
		Course:    s.Course,
		Status:    string(s.Status),
		Progress:  s.Progress,
		Payment:   string(s.Payment),
		CreatedAt: s.CreatedAt,
	}
}

func toStudentResponses(items []*academy.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toStudentResponse(s))
	}
	return out
}

// CourseResponse is a course with its derived enrollment
type CourseResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Instructor string    `json:"instructor"`
	Duration   string    `json:"duration"`
	Price      string    `json:"price"`
	Enrolled   int       `json:"enrolled"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCourseResponse(c *academy.Course) CourseResponse {
	return CourseResponse{
		ID:         c.ID,
		Title:      c.Title,
		Instructor: c.Instructor,
		Duration:   c.Duration,
		Price:      c.Price,
		Enrolled:   c.Enrolled,
		CreatedAt:  c.CreatedAt,
	}
}

// AcademyOverviewResponse is the academy dashboard
type AcademyOverviewResponse struct {
	TotalStudents  int               `json:"totalStudents"`
	ActiveStudents int               `json:"activeStudents"`
	Courses        int               `json:"courses"`
	Enrollment     map[string]int    `json:"enrollment"`
	Recent         []StudentResponse `json:"recent"`
}

// ClientResponse is an agency client
type ClientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

func toClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Location: c.Location}
}

// MemberResponse is a team member
type MemberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status" example:"Active"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMemberResponse(m *team.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Role:      m.Role,
		Status:    string(m.Status),
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

func toMemberResponses(items []*team.Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMemberResponse(m))
	}
	return out
}

// ActivityResponse is an activity feed entry
type ActivityResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type" example:"success"`
	User      string    `json:"user"`
	UserRole  string    `json:"userRole"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toActivityResponse(a *activity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		Message:   a.Message,
		Type:      string(a.Type),
		User:      a.User,
		UserRole:  a.UserRole,
		Read:      a.Read,
		CreatedAt: a.CreatedAt,
	}
}

// FinanceOverviewResponse is the finance/overview document
type FinanceOverviewResponse struct {
	Balance      string                `json:"balance" example:"$45,230.00"`
	Income       string                `json:"income"`
	Expenses     string                `json:"expenses"`
	Transactions []finance.Transaction `json:"transactions"`
}

func toFinanceOverviewResponse(o *finance.Overview) FinanceOverviewResponse {
	txs := o.Transactions
	if txs == nil {
		txs = []finance.Transaction{}
	}
	return FinanceOverviewResponse{Balance: o.Balance, Income: o.Income, Expenses: o.Expenses, Transactions: txs}
}

// GlobalSettingsResponse is config/global_settings
type GlobalSettingsResponse struct {
	CompanyName string     `json:"companyName"`
	Theme       string     `json:"theme" example:"light"`
	LogoURL     string     `json:"logoUrl"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
}

func toGlobalSettingsResponse(g *settings.Global) GlobalSettingsResponse {
	resp := GlobalSettingsResponse{
		CompanyName: g.CompanyName,
		Theme:       string(g.Theme),
		LogoURL:     g.LogoURL,
		UpdatedBy:   g.UpdatedBy,
	}
	if !g.UpdatedAt.IsZero() {
		at := g.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}
