// Package navigation decides which screens a session may see: the sidebar
// sections, route resolution with redirects and the command palette.
package navigation

import (
	"strings"

	"github.com/sparkcode/dashboard/internal/domain/dashboard"
	"github.com/sparkcode/dashboard/internal/domain/identity"
)

// Route paths.
const (
	PathOverview      = "/"
	PathTeam          = "/team"
	PathProjects      = "/projects"
	PathBoard         = "/projects/board"
	PathClients       = "/clients"
	PathAcademy       = "/academy"
	PathStudents      = "/academy/students"
	PathCourses       = "/academy/courses"
	PathNotifications = "/notifications"
	PathFinance       = "/finance"
	PathSettings      = "/settings"
	PathLogin         = "/login"
)

// Section names.
const (
	SectionAgency  = "Agency"
	SectionAcademy = "Academy"
	SectionGeneral = "General"
)

// Item is a sidebar entry.
type Item struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count *int   `json:"count,omitempty"`
}

// Section is a titled group of sidebar entries.
type Section struct {
	Title string `json:"section"`
	Items []Item `json:"items"`
}

type entry struct {
	name       string
	path       string
	memberSees bool
	count      func(dashboard.Counts) int
}

var layout = []struct {
	title   string
	entries []entry
}{
	{SectionAgency, []entry{
		{name: "Overview", path: PathOverview, memberSees: true},
		{name: "Team", path: PathTeam, memberSees: true, count: func(c dashboard.Counts) int { return c.Team }},
		{name: "Projects", path: PathProjects, count: func(c dashboard.Counts) int { return c.Projects }},
		{name: "Clients", path: PathClients},
		{name: "Kanban", path: PathBoard},
	}},
	{SectionAcademy, []entry{
		{name: "Dashboard", path: PathAcademy, memberSees: true},
		{name: "Students", path: PathStudents, memberSees: true, count: func(c dashboard.Counts) int { return c.Students }},
		{name: "Courses", path: PathCourses, memberSees: true},
	}},
	{SectionGeneral, []entry{
		{name: "Finance", path: PathFinance},
		{name: "Notifications", path: PathNotifications, memberSees: true},
		{name: "Settings", path: PathSettings},
	}},
}

// Sections returns the sidebar for the session. Sections left without entries
// are dropped.
func Sections(s *identity.Session, counts dashboard.Counts) []Section {
	admin := s.IsAdmin()
	out := make([]Section, 0, len(layout))
	for _, sec := range layout {
		items := make([]Item, 0, len(sec.entries))
		for _, e := range sec.entries {
			if !admin && !e.memberSees {
				continue
			}
			item := Item{Name: e.name, Path: e.path}
			if e.count != nil {
				n := e.count(counts)
				item.Count = &n
			}
			items = append(items, item)
		}
		if len(items) > 0 {
			out = append(out, Section{Title: sec.title, Items: items})
		}
	}
	return out
}

var routes = map[string]bool{
	PathOverview:      false,
	PathTeam:          false,
	PathProjects:      false,
	PathBoard:         false,
	PathClients:       false,
	PathAcademy:       false,
	PathStudents:      false,
	PathCourses:       false,
	PathNotifications: false,
	PathFinance:       true,
	PathSettings:      true,
}

// AdminOnly reports whether path is restricted to admins.
func AdminOnly(path string) bool {
	return routes[normalize(path)]
}

// Resolution is where a navigation to a path ends up.
type Resolution struct {
	Path       string `json:"path"`
	Redirected bool   `json:"redirected"`
}

// Resolve applies the route guards: signed-out sessions go to /login,
// admin-only routes send other roles home and unknown paths go home.
func Resolve(path string, s *identity.Session) Resolution {
	p := normalize(path)
	target := p
	switch {
	case s == nil:
		target = PathLogin
	case p == PathLogin:
		target = PathOverview
	default:
		adminOnly, known := routes[p]
		if !known || (adminOnly && !s.IsAdmin()) {
			target = PathOverview
		}
	}
	return Resolution{Path: target, Redirected: target != p}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// Command is a command palette entry.
type Command struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

var commands = []Command{
	{ID: "dashboard", Name: "Dashboard", Path: PathOverview},
	{ID: "projects", Name: "Projects", Path: PathProjects},
	{ID: "students", Name: "Students", Path: PathStudents},
	{ID: "team", Name: "Team", Path: PathTeam},
	{ID: "finance", Name: "Finance", Path: PathFinance},
	{ID: "notifications", Name: "Notifications", Path: PathNotifications},
	{ID: "settings", Name: "Settings", Path: PathSettings},
}

// Commands returns the palette entries whose name contains query, ignoring
// case. Admin-only routes are left out for other roles.
func Commands(query string, s *identity.Session) []Command {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Command, 0, len(commands))
	for _, c := range commands {
		if AdminOnly(c.Path) && !s.IsAdmin() {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Name), query) {
			continue
		}
		out = append(out, c)
	}
	return out
}
