package academy

import "github.com/sparkcode/dashboard/internal/domain/academy"

// EnrollStudentInput is the enrollment form.
type EnrollStudentInput struct {
	Name     string
	Course   string
	Status   academy.StudentStatus
	Payment  academy.PaymentStatus
	Progress int
}

// CreateCourseInput is the course form.
type CreateCourseInput struct {
	Title      string
	Instructor string
	Duration   string
	Price      string
}

// Overview is the academy dashboard.
type Overview struct {
	TotalStudents  int                `json:"totalStudents"`
	ActiveStudents int                `json:"activeStudents"`
	Courses        int                `json:"courses"`
	Enrollment     map[string]int     `json:"enrollment"`
	Recent         []*academy.Student `json:"recent"`
}
