// Package identity holds dashboard sessions, access roles, user profiles and
// login credentials.
package identity

import (
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// Role is the access role of a session. Only admin is privileged; any other
// value is a regular team member.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole normalizes a stored role. Empty input yields the member role.
func ParseRole(raw string) Role {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return RoleMember
	}
	return Role(raw)
}

// IsAdmin reports whether the role is privileged.
func (r Role) IsAdmin() bool {
	return strings.EqualFold(string(r), string(RoleAdmin))
}

// FormatRole returns the label shown next to a user's name.
func FormatRole(role string) string {
	if Role(role).IsAdmin() {
		return "Admin"
	}
	return "Team Member"
}

// Session is the authenticated identity a request acts as.
type Session struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the session may see admin-only surfaces.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role.IsAdmin()
}

// RoleLabel returns FormatRole for the session's role.
func (s *Session) RoleLabel() string {
	if s == nil {
		return FormatRole("")
	}
	return FormatRole(string(s.Role))
}

// DisplayName falls back to the local part of the e-mail and then to "User".
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return "User"
}

// ProfileRef addresses the profile document of a user.
func ProfileRef(userID string) document.Ref {
	return document.NewRef(document.CollectionUsers, userID)
}

// Profile is the optional users/{uid} document carrying the access role.
type Profile struct {
	UserID    string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// Fields returns the stored representation.
func (p *Profile) Fields() document.Fields {
	return document.Fields{
		"email":     p.Email,
		"name":      p.Name,
		"role":      string(p.Role),
		"createdAt": document.ServerTimestamp,
	}
}

// ProfileFromDocument maps a users document.
func ProfileFromDocument(d document.Document) (*Profile, error) {
	r := document.Read(d)
	p := &Profile{
		UserID:    d.ID,
		Email:     r.Email("email"),
		Name:      r.OptionalString("name"),
		Role:      ParseRole(r.OptionalString("role")),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
