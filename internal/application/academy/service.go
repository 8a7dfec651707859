// Package academy implements the academy screens: student enrollment and
// the course catalogue.
package academy

import (
	"context"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// RecentStudents is the size of the recent enrollments list.
const RecentStudents = 5

// StudentsQuery is the students subscription, newest first.
func StudentsQuery() document.Query {
	return document.Collection(document.CollectionStudents).Order(document.CreateTimeField, document.Desc)
}

// CoursesQuery is the courses subscription, oldest first.
func CoursesQuery() document.Query {
	return document.Collection(document.CollectionCourses)
}

// Service handles students and courses.
type Service struct {
	store    document.Store
	activity *activityapp.Recorder
	logger   *zap.Logger
}

// NewService creates a new academy Service
func NewService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger) *Service {
	return &Service{store: store, activity: recorder, logger: logger}
}

// Students lists every student, newest first.
func (s *Service) Students(ctx context.Context) ([]*academy.Student, error) {
	snap, err := s.store.Run(ctx, StudentsQuery())
	if err != nil {
		return nil, err
	}
	return document.MapAll(snap, academy.StudentFromDocument)
}

// Courses lists every course with its enrolled count joined from the
// students collection.
func (s *Service) Courses(ctx context.Context) ([]*academy.Course, error) {
	snap, err := s.store.Run(ctx, CoursesQuery())
	if err != nil {
		return nil, err
	}
	courses, err := document.MapAll(snap, academy.CourseFromDocument)
	if err != nil {
		return nil, err
	}
	students, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}
	return academy.WithEnrollment(courses, students), nil
}

// Overview summarizes the academy.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	students, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.Courses(ctx)
	if err != nil {
		return nil, err
	}
	recent := students
	if len(recent) > RecentStudents {
		recent = recent[:RecentStudents]
	}
	return &Overview{
		TotalStudents:  len(students),
		ActiveStudents: academy.CountActive(students),
		Courses:        len(courses),
		Enrollment:     academy.EnrollmentCounts(students),
		Recent:         recent,
	}, nil
}

// Enroll stores a new student.
func (s *Service) Enroll(ctx context.Context, actor *identity.Session, input EnrollStudentInput) (*academy.Student, error) {
	st, err := academy.NewStudent(input.Name, input.Course, input.Status, input.Payment, input.Progress)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, document.CollectionStudents, st.Fields())
	if err != nil {
		s.logger.Error("Failed to enroll student", zap.String("course", st.Course), zap.Error(err))
		s.activity.Failure(ctx, actor, "enroll student", err)
		return nil, err
	}
	st.ID = ref.ID
	st.CreatedAt = time.Now()
	s.activity.Log(ctx, actor, "Enrolled student "+st.Name+" in "+st.Course, activity.TypeSuccess)
	return st, nil
}

// UpdateStudent merges the patch into a student record.
func (s *Service) UpdateStudent(ctx context.Context, actor *identity.Session, id string, patch academy.StudentPatch) (*academy.Student, error) {
	fields, err := patch.Fields()
	if err != nil {
		return nil, err
	}
	ref := document.NewRef(document.CollectionStudents, id)
	if err := s.store.Update(ctx, ref, fields); err != nil {
		s.activity.Failure(ctx, actor, "update student", err)
		return nil, err
	}
	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	st, err := academy.StudentFromDocument(*doc)
	if err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actor, "Updated progress/status for student "+st.Name, activity.TypeInfo)
	return st, nil
}

// DeleteStudent removes a student record.
func (s *Service) DeleteStudent(ctx context.Context, actor *identity.Session, id string) error {
	if err := s.store.Delete(ctx, document.NewRef(document.CollectionStudents, id)); err != nil {
		s.activity.Failure(ctx, actor, "delete student", err)
		return err
	}
	s.activity.Log(ctx, actor, "Removed student from records", activity.TypeWarning)
	return nil
}

// CreateCourse stores a new course.
func (s *Service) CreateCourse(ctx context.Context, actor *identity.Session, input CreateCourseInput) (*academy.Course, error) {
	c, err := academy.NewCourse(input.Title, input.Instructor, input.Duration, input.Price)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, document.CollectionCourses, c.Fields())
	if err != nil {
		s.logger.Error("Failed to create course", zap.String("title", c.Title), zap.Error(err))
		s.activity.Failure(ctx, actor, "create course", err)
		return nil, err
	}
	c.ID = ref.ID
	s.activity.Log(ctx, actor, "Created new course: "+c.Title, activity.TypeSuccess)
	return c, nil
}

// UpdateCourse merges the patch into a course. Renaming a course does not
// move its students, whose enrollment is keyed by title.
func (s *Service) UpdateCourse(ctx context.Context, actor *identity.Session, id string, patch academy.CoursePatch) (*academy.Course, error) {
	fields, err := patch.Fields()
	if err != nil {
		return nil, err
	}
	ref := document.NewRef(document.CollectionCourses, id)
	if err := s.store.Update(ctx, ref, fields); err != nil {
		s.activity.Failure(ctx, actor, "update course", err)
		return nil, err
	}
	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	c, err := academy.CourseFromDocument(*doc)
	if err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actor, "Updated course: "+c.Title, activity.TypeInfo)
	return c, nil
}

// DeleteCourse removes a course. Students enrolled in it keep their course
// title.
func (s *Service) DeleteCourse(ctx context.Context, actor *identity.Session, id string) error {
	ref := document.NewRef(document.CollectionCourses, id)
	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	title, _ := doc.Fields["title"].(string)
	if err := s.store.Delete(ctx, ref); err != nil {
		s.activity.Failure(ctx, actor, "delete course", err)
		return err
	}
	s.activity.Log(ctx, actor, "Deleted course: "+title, activity.TypeWarning)
	return nil
}
