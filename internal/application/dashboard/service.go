// Package dashboard assembles the overview screen, the sidebar and the
// command palette for a session.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	academyapp "github.com/sparkcode/dashboard/internal/application/academy"
	projectapp "github.com/sparkcode/dashboard/internal/application/project"
	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/dashboard"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/navigation"
	"github.com/sparkcode/dashboard/internal/domain/project"
	"github.com/sparkcode/dashboard/internal/infrastructure/realtime"
)

// Service computes dashboard views from the store.
type Service struct {
	store  document.Reader
	bridge *realtime.Bridge
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a dashboard Service. bridge may be nil when live
// streams are not served.
func NewService(store document.Reader, bridge *realtime.Bridge, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, bridge: bridge, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview builds the overview once from fresh reads.
func (s *Service) Overview(ctx context.Context, session *identity.Session) (*dashboard.View, error) {
	projects, err := s.projects(ctx)
	if err != nil {
		return nil, err
	}
	students, err := s.students(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.Build(projects, students, s.now(), session.IsAdmin()), nil
}

// Counts returns the sidebar badges.
func (s *Service) Counts(ctx context.Context) (dashboard.Counts, error) {
	var counts dashboard.Counts
	for _, c := range []struct {
		q   document.Query
		dst *int
	}{
		{projectapp.ListQuery(), &counts.Projects},
		{academyapp.StudentsQuery(), &counts.Students},
		{teamapp.ListQuery(), &counts.Team},
		{activity.UnreadQuery(), &counts.Unread},
	} {
		snap, err := s.store.Run(ctx, c.q)
		if err != nil {
			return dashboard.Counts{}, err
		}
		*c.dst = snap.Size()
	}
	return counts, nil
}

// Sidebar returns the navigation sections the session may see, with counts.
func (s *Service) Sidebar(ctx context.Context, session *identity.Session) ([]navigation.Section, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return navigation.Sections(session, counts), nil
}

// Live is a running overview stream. Close stops it; calling Close again
// does nothing.
type Live struct {
	screen *realtime.Screen
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close cancels both subscriptions.
func (l *Live) Close() {
	l.once.Do(func() {
		l.cancel()
		l.screen.Close()
	})
}

// Done is closed once the stream goroutine has exited.
func (l *Live) Done() <-chan struct{} {
	return l.done
}

// Stream subscribes to projects and students and calls onView with a view
// rebuilt from the latest pair of snapshots after every change. onError
// receives subscription and mapping failures; the last good view stands.
func (s *Service) Stream(ctx context.Context, session *identity.Session, onView func(*dashboard.View), onError func(error)) (*Live, error) {
	ctx, cancel := context.WithCancel(ctx)
	screen := realtime.NewScreen(ctx, s.bridge)

	projects, err := realtime.Open[*project.Project](screen, projectapp.ListQuery(), project.FromDocument)
	if err != nil {
		cancel()
		screen.Close()
		return nil, err
	}
	students, err := realtime.Open[*academy.Student](screen, academyapp.StudentsQuery(), academy.StudentFromDocument)
	if err != nil {
		cancel()
		screen.Close()
		return nil, err
	}

	live := &Live{screen: screen, cancel: cancel, done: make(chan struct{})}
	admin := session.IsAdmin()
	go func() {
		defer close(live.done)
		defer live.Close()
		var seenProjects, seenStudents uint64
		var failedProjects, failedStudents uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-projects.Changed():
			case <-students.Changed():
			}
			// Each failure is reported once, not again on every change of
			// the other list.
			if n := projects.Failures(); n != failedProjects {
				failedProjects = n
				report(onError, projects.Err())
			}
			if n := students.Failures(); n != failedStudents {
				failedStudents = n
				report(onError, students.Err())
			}
			if projects.Loading() || students.Loading() {
				continue
			}
			pv, sv := projects.Version(), students.Version()
			if pv == seenProjects && sv == seenStudents {
				continue
			}
			seenProjects, seenStudents = pv, sv
			onView(dashboard.Build(projects.Items(), students.Items(), s.now(), admin))
		}
	}()
	return live, nil
}

func (s *Service) projects(ctx context.Context) ([]*project.Project, error) {
	snap, err := s.store.Run(ctx, projectapp.ListQuery())
	if err != nil {
		return nil, err
	}
	return document.MapAll[*project.Project](snap, project.FromDocument)
}

func (s *Service) students(ctx context.Context) ([]*academy.Student, error) {
	snap, err := s.store.Run(ctx, academyapp.StudentsQuery())
	if err != nil {
		return nil, err
	}
	return document.MapAll[*academy.Student](snap, academy.StudentFromDocument)
}

func report(onError func(error), err error) {
	if err != nil && onError != nil {
		onError(err)
	}
}
