package academy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/tests/testutil"
)

func newService(store document.Store) *Service {
	recorder := activityapp.NewRecorder(store, zap.NewNop(),
		activityapp.WithClock(testutil.TickingClock(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), time.Second)))
	return NewService(store, recorder, zap.NewNop())
}

func latestActivity(t *testing.T, store document.Reader) *activity.Activity {
	t.Helper()
	snap, err := store.Run(context.Background(), activity.FeedQuery())
	require.NoError(t, err)
	require.NotEmpty(t, snap.Docs)
	a, err := activity.FromDocument(snap.Docs[0])
	require.NoError(t, err)
	return a
}

func TestService_EnrollAndCourses(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(t)
	svc := newService(store)
	member := testutil.MemberSession()

	goCourse, err := svc.CreateCourse(ctx, member, CreateCourseInput{Title: "Go Basics", Instructor: "Rob"})
	require.NoError(t, err)
	assert.Equal(t, "Created new course: Go Basics", latestActivity(t, store).Message)
	_, err = svc.CreateCourse(ctx, member, CreateCourseInput{Title: "UI Design"})
	require.NoError(t, err)

	st, err := svc.Enroll(ctx, member, EnrollStudentInput{Name: "Amina", Course: "Go Basics"})
	require.NoError(t, err)
	assert.Equal(t, academy.StudentStatusActive, st.Status)
	assert.Equal(t, academy.PaymentPending, st.Payment)
	assert.Zero(t, st.Progress)
	a := latestActivity(t, store)
	assert.Equal(t, "Enrolled student Amina in Go Basics", a.Message)
	assert.Equal(t, activity.TypeSuccess, a.Type)
	assert.Equal(t, "Max Member", a.User)

	_, err = svc.Enroll(ctx, member, EnrollStudentInput{Name: "Bo", Course: "Go Basics", Status: academy.StudentStatusGraduated})
	require.NoError(t, err)

	courses, err := svc.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, goCourse.ID, courses[0].ID)
	assert.Equal(t, 2, courses[0].Enrolled)
	assert.Equal(t, 0, courses[1].Enrolled)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalStudents)
	assert.Equal(t, 1, overview.ActiveStudents)
	assert.Equal(t, 2, overview.Courses)
	assert.Equal(t, map[string]int{"Go Basics": 2}, overview.Enrollment)
}

func TestService_EnrollValidation(t *testing.T) {
	store := new(testutil.MockStore)
	svc := newService(store)

	tests := []struct {
		name  string
		input EnrollStudentInput
	}{
		{"missing course", EnrollStudentInput{Name: "A"}},
		{"progress off step", EnrollStudentInput{Name: "A", Course: "Go", Progress: 42}},
		{"progress above range", EnrollStudentInput{Name: "A", Course: "Go", Progress: 105}},
		{"unknown payment", EnrollStudentInput{Name: "A", Course: "Go", Payment: "Maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enroll(context.Background(), testutil.MemberSession(), tt.input)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_EnrollFailureLogsErrorActivity(t *testing.T) {
	store := new(testutil.MockStore)
	store.On("Add", mock.Anything, document.CollectionStudents, mock.Anything).
		Return(document.Ref{}, errors.New("quota exceeded")).Once()
	store.ExpectActivity("Failed to enroll student: quota exceeded", nil)

	_, err := newService(store).Enroll(context.Background(), testutil.MemberSession(), EnrollStudentInput{Name: "A", Course: "Go"})
	assert.EqualError(t, err, "quota exceeded")
	store.AssertExpectations(t)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(t)
	svc := newService(store)
	admin := testutil.AdminSession()

	st, err := svc.Enroll(ctx, admin, EnrollStudentInput{Name: "Chen", Course: "Go Basics"})
	require.NoError(t, err)

	progress := 55
	paid := academy.PaymentPaid
	updated, err := svc.UpdateStudent(ctx, admin, st.ID, academy.StudentPatch{Progress: &progress, Payment: &paid})
	require.NoError(t, err)
	assert.Equal(t, 55, updated.Progress)
	assert.Equal(t, academy.PaymentPaid, updated.Payment)
	assert.Equal(t, "Updated progress/status for student Chen", latestActivity(t, store).Message)

	bad := 51
	_, err = svc.UpdateStudent(ctx, admin, st.ID, academy.StudentPatch{Progress: &bad})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, svc.DeleteStudent(ctx, admin, st.ID))
	assert.Equal(t, "Removed student from records", latestActivity(t, store).Message)
	students, err := svc.Students(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)

	c, err := svc.CreateCourse(ctx, admin, CreateCourseInput{Title: "Rust"})
	require.NoError(t, err)
	title := "Rust 101"
	renamed, err := svc.UpdateCourse(ctx, admin, c.ID, academy.CoursePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Rust 101", renamed.Title)
	assert.Equal(t, "Updated course: Rust 101", latestActivity(t, store).Message)

	require.NoError(t, svc.DeleteCourse(ctx, admin, c.ID))
	a := latestActivity(t, store)
	assert.Equal(t, "Deleted course: Rust 101", a.Message)
	assert.Equal(t, activity.TypeWarning, a.Type)

	assert.ErrorIs(t, svc.DeleteCourse(ctx, admin, c.ID), shared.ErrNotFound)
}

func TestService_MalformedStudentFailsLoudly(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(t)
	_, err := store.Add(ctx, document.CollectionStudents, document.Fields{"name": "Bad", "progress": 250})
	require.NoError(t, err)

	_, err = newService(store).Students(ctx)
	var mapping *document.MappingError
	require.ErrorAs(t, err, &mapping)
	assert.Equal(t, "progress", mapping.Field)
}

func TestService_WriteFailuresAreLogged(t *testing.T) {
	down := errors.New("backend down")
	student := document.NewRef(document.CollectionStudents, "s1")
	course := document.NewRef(document.CollectionCourses, "c1")
	progress := 50
	title := "Go 201"

	store := new(testutil.MockStore)
	store.On("Update", mock.Anything, student, mock.Anything).Return(down).Once()
	store.ExpectActivity("Failed to update student: backend down", nil)
	store.On("Delete", mock.Anything, student).Return(down).Once()
	store.ExpectActivity("Failed to delete student: backend down", nil)
	store.On("Update", mock.Anything, course, mock.Anything).Return(down).Once()
	store.ExpectActivity("Failed to update course: backend down", nil)
	store.On("Get", mock.Anything, course).Return(&document.Document{
		ID: "c1", Collection: document.CollectionCourses, Fields: document.Fields{"title": "Go 101"},
	}, nil)
	store.On("Delete", mock.Anything, course).Return(down).Once()
	store.ExpectActivity("Failed to delete course: backend down", nil)

	svc := newService(store)
	ctx := context.Background()
	admin := testutil.AdminSession()
	_, err := svc.UpdateStudent(ctx, admin, "s1", academy.StudentPatch{Progress: &progress})
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, svc.DeleteStudent(ctx, admin, "s1"), down)
	_, err = svc.UpdateCourse(ctx, admin, "c1", academy.CoursePatch{Title: &title})
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, svc.DeleteCourse(ctx, admin, "c1"), down)
	store.AssertExpectations(t)
}
