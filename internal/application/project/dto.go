package project

import "github.com/sparkcode/dashboard/internal/domain/project"

// CreateProjectInput is the create form.
type CreateProjectInput struct {
	Name     string
	Client   string
	Budget   string
	Deadline string
	Status   project.Status
	Team     int
}

// MoveResult reports a Kanban move. Moved is false at a board edge, in
// which case nothing was written.
type MoveResult struct {
	Project *project.Project
	From    project.Status
	To      project.Status
	Moved   bool
}

// ColumnView is one Kanban column with its card count.
type ColumnView struct {
	Status   project.Status     `json:"status"`
	Count    int                `json:"count"`
	Projects []*project.Project `json:"projects"`
}

// ToColumnViews converts board columns for display.
func ToColumnViews(columns []project.Column) []ColumnView {
	out := make([]ColumnView, 0, len(columns))
	for _, c := range columns {
		out = append(out, ColumnView{Status: c.Status, Count: c.Count(), Projects: c.Projects})
	}
	return out
}
