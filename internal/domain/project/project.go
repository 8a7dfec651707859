// Package project holds agency projects, their task checklists and the
// Kanban board they are arranged on.
package project

import (
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// Defaults applied by the create form.
const (
	DefaultStatus = StatusInProgress
	DefaultTeam   = 1
)

// Project is an agency engagement.
type Project struct {
	ID        string
	Name      string
	Client    string
	Status    Status
	Deadline  string
	Budget    string
	Team      int
	CreatedAt time.Time
}

// NewProject validates a project submitted from the create form.
func NewProject(name, client, budget, deadline string, status Status, team int) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("project name cannot be empty")
	}
	if status == "" {
		status = DefaultStatus
	}
	if !status.IsValid() {
		return nil, shared.InvalidInput("invalid project status: " + string(status))
	}
	if team == 0 {
		team = DefaultTeam
	}
	if team < 0 {
		return nil, shared.InvalidInput("team size cannot be negative")
	}
	return &Project{
		Name:     name,
		Client:   strings.TrimSpace(client),
		Status:   status,
		Deadline: strings.TrimSpace(deadline),
		Budget:   strings.TrimSpace(budget),
		Team:     team,
	}, nil
}

// Fields returns the stored representation. createdAt is left to the store.
func (p *Project) Fields() document.Fields {
	return document.Fields{
		"name":      p.Name,
		"client":    p.Client,
		"status":    string(p.Status),
		"deadline":  p.Deadline,
		"budget":    p.Budget,
		"team":      p.Team,
		"createdAt": document.ServerTimestamp,
	}
}

// Matches reports whether term appears in the project or client name,
// ignoring case. An empty term matches everything.
func (p *Project) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Client), term)
}

// FromDocument maps a projects document. Projects written without a
// createdAt fall back to the document's creation time.
func FromDocument(d document.Document) (*Project, error) {
	r := document.Read(d)
	p := &Project{
		ID:        d.ID,
		Name:      r.String("name"),
		Client:    r.OptionalString("client"),
		Deadline:  r.OptionalString("deadline"),
		Budget:    r.OptionalString("budget"),
		Team:      r.IntRange("team", DefaultTeam, "min=0"),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	raw := r.String("status")
	if err := r.Err(); err != nil {
		return nil, err
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return nil, &document.MappingError{Collection: d.Collection, ID: d.ID, Field: "status", Reason: "must be one of To Do, In Progress, Review, Done, got " + raw}
	}
	p.Status = status
	return p, nil
}

// Search filters projects by name or client.
func Search(projects []*Project, term string) []*Project {
	out := make([]*Project, 0, len(projects))
	for _, p := range projects {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out
}

// Patch is a partial update from the edit form. Nil fields are left alone.
type Patch struct {
	Name     *string
	Client   *string
	Status   *Status
	Deadline *string
	Budget   *string
	Team     *int
}

// Fields validates the patch and returns the fields to merge.
func (p Patch) Fields() (document.Fields, error) {
	out := document.Fields{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, shared.InvalidInput("project name cannot be empty")
		}
		out["name"] = name
	}
	if p.Client != nil {
		out["client"] = strings.TrimSpace(*p.Client)
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return nil, shared.InvalidInput("invalid project status: " + string(*p.Status))
		}
		out["status"] = string(*p.Status)
	}
	if p.Deadline != nil {
		out["deadline"] = strings.TrimSpace(*p.Deadline)
	}
	if p.Budget != nil {
		out["budget"] = strings.TrimSpace(*p.Budget)
	}
	if p.Team != nil {
		if *p.Team < 0 {
			return nil, shared.InvalidInput("team size cannot be negative")
		}
		out["team"] = *p.Team
	}
	if len(out) == 0 {
		return nil, shared.InvalidInput("nothing to update")
	}
	return out, nil
}
