package academy

import (
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// Course is an academy course. Enrolled is derived from the students
// collection and never stored.
type Course struct {
	ID         string
	Title      string
	Instructor string
	Duration   string
	Price      string
	Enrolled   int
	CreatedAt  time.Time
}

// NewCourse validates a course from the create form.
func NewCourse(title, instructor, duration, price string) (*Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.InvalidInput("course title cannot be empty")
	}
	return &Course{
		Title:      title,
		Instructor: strings.TrimSpace(instructor),
		Duration:   strings.TrimSpace(duration),
		Price:      strings.TrimSpace(price),
	}, nil
}

// Fields returns the stored representation.
func (c *Course) Fields() document.Fields {
	return document.Fields{
		"title":      c.Title,
		"instructor": c.Instructor,
		"duration":   c.Duration,
		"price":      c.Price,
		"createdAt":  document.ServerTimestamp,
	}
}

// CourseFromDocument maps a courses document. A stored "students" counter
// from older records is ignored in favour of the join.
func CourseFromDocument(d document.Document) (*Course, error) {
	r := document.Read(d)
	c := &Course{
		ID:         d.ID,
		Title:      r.String("title"),
		Instructor: r.OptionalString("instructor"),
		Duration:   r.OptionalString("duration"),
		Price:      r.OptionalString("price"),
		CreatedAt:  r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// CoursePatch is a partial update from the edit form.
type CoursePatch struct {
	Title      *string
	Instructor *string
	Duration   *string
	Price      *string
}

// Fields validates the patch and returns the fields to merge.
func (p CoursePatch) Fields() (document.Fields, error) {
	out := document.Fields{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, shared.InvalidInput("course title cannot be empty")
		}
		out["title"] = title
	}
	if p.Instructor != nil {
		out["instructor"] = strings.TrimSpace(*p.Instructor)
	}
	if p.Duration != nil {
		out["duration"] = strings.TrimSpace(*p.Duration)
	}
	if p.Price != nil {
		out["price"] = strings.TrimSpace(*p.Price)
	}
	if len(out) == 0 {
		return nil, shared.InvalidInput("nothing to update")
	}
	return out, nil
}

// EnrollmentCounts counts students per course title.
func EnrollmentCounts(students []*Student) map[string]int {
	counts := make(map[string]int)
	for _, s := range students {
		if s.Course != "" {
			counts[s.Course]++
		}
	}
	return counts
}

// WithEnrollment fills Enrolled on every course from the students snapshot.
func WithEnrollment(courses []*Course, students []*Student) []*Course {
	counts := EnrollmentCounts(students)
	for _, c := range courses {
		c.Enrolled = counts[c.Title]
	}
	return courses
}
