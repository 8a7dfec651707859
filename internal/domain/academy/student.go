// Package academy holds students and the courses they enroll in.
package academy

import (
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// StudentStatus represents the enrollment status of a student
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusGraduated StudentStatus = "Graduated"
)

// IsValid checks if the status is a known value
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated:
		return true
	}
	return false
}

// PaymentStatus represents whether the course fee was paid
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// IsValid checks if the payment status is a known value
func (p PaymentStatus) IsValid() bool {
	return p == PaymentPaid || p == PaymentPending
}

// Progress bounds. The edit control moves in steps of ProgressStep.
const (
	MinProgress  = 0
	MaxProgress  = 100
	ProgressStep = 5
)

// ValidateProgress enforces 0..100 in steps of five.
func ValidateProgress(progress int) error {
	if progress < MinProgress || progress > MaxProgress {
		return shared.InvalidInput("progress must be between 0 and 100")
	}
	if progress%ProgressStep != 0 {
		return shared.InvalidInput("progress must be a multiple of 5")
	}
	return nil
}

// Student is an academy enrollment.
type Student struct {
	ID        string
	Name      string
	Course    string
	Status    StudentStatus
	Progress  int
	Payment   PaymentStatus
	CreatedAt time.Time
}

// NewStudent validates an enrollment. Empty status and payment take the form
// defaults Active and Pending.
func NewStudent(name, course string, status StudentStatus, payment PaymentStatus, progress int) (*Student, error) {
	name = strings.TrimSpace(name)
	course = strings.TrimSpace(course)
	if name == "" {
		return nil, shared.InvalidInput("student name cannot be empty")
	}
	if course == "" {
		return nil, shared.InvalidInput("course cannot be empty")
	}
	if status == "" {
		status = StudentStatusActive
	}
	if payment == "" {
		payment = PaymentPending
	}
	if !status.IsValid() {
		return nil, shared.InvalidInput("status must be Active, Inactive or Graduated")
	}
	if !payment.IsValid() {
		return nil, shared.InvalidInput("payment must be Paid or Pending")
	}
	if err := ValidateProgress(progress); err != nil {
		return nil, err
	}
	return &Student{Name: name, Course: course, Status: status, Payment: payment, Progress: progress}, nil
}

// Fields returns the stored representation.
func (s *Student) Fields() document.Fields {
	return document.Fields{
		"name":      s.Name,
		"course":    s.Course,
		"status":    string(s.Status),
		"progress":  s.Progress,
		"payment":   string(s.Payment),
		"createdAt": document.ServerTimestamp,
	}
}

// IsActive reports whether the student is currently enrolled.
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// StudentFromDocument maps a students document.
func StudentFromDocument(d document.Document) (*Student, error) {
	r := document.Read(d)
	s := &Student{
		ID:        d.ID,
		Name:      r.String("name"),
		Course:    r.OptionalString("course"),
		Status:    StudentStatus(r.OptionalOneOf("status", string(StudentStatusActive), string(StudentStatusActive), string(StudentStatusInactive), string(StudentStatusGraduated))),
		Progress:  r.IntRange("progress", 0, "min=0,max=100"),
		Payment:   PaymentStatus(r.OptionalOneOf("payment", string(PaymentPending), string(PaymentPaid), string(PaymentPending))),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// StudentPatch is a partial update from the edit form.
type StudentPatch struct {
	Name     *string
	Course   *string
	Status   *StudentStatus
	Progress *int
	Payment  *PaymentStatus
}

// Fields validates the patch and returns the fields to merge.
func (p StudentPatch) Fields() (document.Fields, error) {
	out := document.Fields{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, shared.InvalidInput("student name cannot be empty")
		}
		out["name"] = name
	}
	if p.Course != nil {
		course := strings.TrimSpace(*p.Course)
		if course == "" {
			return nil, shared.InvalidInput("course cannot be empty")
		}
		out["course"] = course
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return nil, shared.InvalidInput("status must be Active, Inactive or Graduated")
		}
		out["status"] = string(*p.Status)
	}
	if p.Progress != nil {
		if err := ValidateProgress(*p.Progress); err != nil {
			return nil, err
		}
		out["progress"] = *p.Progress
	}
	if p.Payment != nil {
		if !p.Payment.IsValid() {
			return nil, shared.InvalidInput("payment must be Paid or Pending")
		}
		out["payment"] = string(*p.Payment)
	}
	if len(out) == 0 {
		return nil, shared.InvalidInput("nothing to update")
	}
	return out, nil
}

// CountActive returns the number of active students.
func CountActive(students []*Student) int {
	n := 0
	for _, s := range students {
		if s.IsActive() {
			n++
		}
	}
	return n
}
