// Package team holds agency team members.
package team

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

var validate = validator.New()

// MemberStatus represents a team member's availability
type MemberStatus string

const (
	StatusActive   MemberStatus = "Active"
	StatusInactive MemberStatus = "Inactive"
	StatusOnLeave  MemberStatus = "On Leave"
)

// IsValid checks if the status is a known value
func (s MemberStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	}
	return false
}

// Member is a person on the agency team. Role is a free-form job title,
// unrelated to the dashboard access role.
type Member struct {
	ID        string
	Name      string
	Role      string
	Status    MemberStatus
	Email     string
	CreatedAt time.Time
}

// NewMember validates a member from the team form.
func NewMember(name, role string, status MemberStatus, email string) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("member name cannot be empty")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, shared.InvalidInput("member role cannot be empty")
	}
	if status == "" {
		status = StatusActive
	}
	if !status.IsValid() {
		return nil, shared.InvalidInput("status must be Active, Inactive or On Leave")
	}
	email = strings.TrimSpace(email)
	if email != "" && validate.Var(email, "email") != nil {
		return nil, shared.InvalidInput("invalid email format")
	}
	return &Member{Name: name, Role: role, Status: status, Email: email}, nil
}

// Fields returns the stored representation for a new member.
func (m *Member) Fields() document.Fields {
	return document.Fields{
		"name":      m.Name,
		"role":      m.Role,
		"status":    string(m.Status),
		"email":     m.Email,
		"createdAt": document.ServerTimestamp,
	}
}

// UpdateFields returns the fields written when the member is edited.
func (m *Member) UpdateFields() document.Fields {
	return document.Fields{
		"name":      m.Name,
		"role":      m.Role,
		"status":    string(m.Status),
		"email":     m.Email,
		"updatedAt": document.ServerTimestamp,
	}
}

// FromDocument maps a team document.
func FromDocument(d document.Document) (*Member, error) {
	r := document.Read(d)
	m := &Member{
		ID:        d.ID,
		Name:      r.String("name"),
		Role:      r.OptionalString("role"),
		Status:    MemberStatus(r.OptionalOneOf("status", string(StatusActive), string(StatusActive), string(StatusInactive), string(StatusOnLeave))),
		Email:     r.Email("email"),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Founders returns the founding team added by the seed action.
func Founders() []*Member {
	return []*Member{
		{Name: "Jafar Abass", Role: "Founder - Graphic Designer", Status: StatusActive, Email: "jafar@sparkcode.com"},
		{Name: "Zayd Tahir", Role: "Co founder - Full stack developer", Status: StatusActive, Email: "zayd@sparkcode.com"},
		{Name: "Muhsin Raheem", Role: "Co founder - Product Designer", Status: StatusActive, Email: "muhsin@sparkcode.com"},
	}
}
