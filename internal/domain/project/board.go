package project

import "github.com/sparkcode/dashboard/internal/domain/shared"

// Direction of a Kanban move.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// ParseDirection validates a move direction.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(raw) {
	case Forward, Backward:
		return Direction(raw), nil
	}
	return "", shared.InvalidInput("direction must be forward or backward")
}

// Move returns the status after moving one column in dir and whether it
// differs from the current one.
func (p *Project) Move(dir Direction) (Status, bool) {
	next := p.Status
	switch dir {
	case Forward:
		next = p.Status.Forward()
	case Backward:
		next = p.Status.Backward()
	}
	return next, next != p.Status
}

// Column is one Kanban column.
type Column struct {
	Status   Status
	Projects []*Project
}

// Count returns the number of cards in the column.
func (c Column) Count() int {
	return len(c.Projects)
}

// Board groups projects into the four columns, preserving input order
// within a column.
func Board(projects []*Project) []Column {
	columns := make([]Column, len(statusOrder))
	for i, s := range statusOrder {
		columns[i] = Column{Status: s, Projects: []*Project{}}
	}
	for _, p := range projects {
		if i := p.Status.index(); i >= 0 {
			columns[i].Projects = append(columns[i].Projects, p)
		}
	}
	return columns
}
