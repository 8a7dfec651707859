package project

import (
	"strings"

	"github.com/sparkcode/dashboard/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the Kanban column of a project.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusDone       Status = "Done"
)

// Board order. Transitions only move between neighbours.
var statusOrder = []Status{StatusToDo, StatusInProgress, StatusReview, StatusDone}

// Statuses returns the board columns in order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// IsValid checks if the status is one of the board columns
func (s Status) IsValid() bool {
	return s.index() >= 0
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

func (s Status) index() int {
	for i, candidate := range statusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Forward returns the next column, or s itself in the last column.
func (s Status) Forward() Status {
	i := s.index()
	if i < 0 || i == len(statusOrder)-1 {
		return s
	}
	return statusOrder[i+1]
}

// Backward returns the previous column, or s itself in the first column.
func (s Status) Backward() Status {
	i := s.index()
	if i <= 0 {
		return s
	}
	return statusOrder[i-1]
}

// ParseStatus accepts the canonical labels as well as the hyphenated and
// lower-case spellings used by older records ("To-Do", "in-progress").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(raw))
	normalized = strings.Join(strings.Fields(normalized), " ")
	if strings.EqualFold(normalized, "todo") {
		normalized = "to do"
	}
	s := Status(cases.Title(language.English).String(strings.ToLower(normalized)))
	if !s.IsValid() {
		return "", shared.InvalidInput("status must be one of To Do, In Progress, Review, Done")
	}
	return s, nil
}
