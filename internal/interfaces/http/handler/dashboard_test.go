package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcode/dashboard/internal/domain/dashboard"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/navigation"
	"github.com/sparkcode/dashboard/tests/testutil"
)

func TestDashboardHandler_Overview(t *testing.T) {
	env := newTestEnv(t)
	createProject(t, env, map[string]any{"name": "Website", "budget": "$12,000"})
	createProject(t, env, map[string]any{"name": "Mobile app", "budget": "$3,000", "status": "Done"})

	w := env.do(t, identity.RoleAdmin, http.MethodGet, "/api/v1/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admin dashboard.View
	decodeData(t, w, &admin)

	revenue, ok := admin.Card(dashboard.CardRevenue)
	require.True(t, ok)
	assert.Equal(t, "$15,000.00", revenue.Value)
	active, _ := admin.Card(dashboard.CardActiveProjects)
	assert.Equal(t, "1", active.Value)
	_, ok = admin.Chart(dashboard.ChartRevenueGrowth)
	assert.True(t, ok)

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var member dashboard.View
	decodeData(t, w, &member)
	_, ok = member.Card(dashboard.CardRevenue)
	assert.False(t, ok, "revenue is admin-only")
	_, ok = member.Chart(dashboard.ChartRevenueGrowth)
	assert.False(t, ok)
	weekly, ok := member.Chart(dashboard.ChartWeeklyStudents)
	require.True(t, ok)
	assert.Len(t, weekly.Points, 7)

	w = env.do(t, "", http.MethodGet, "/api/v1/dashboard/overview", nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
}

func TestDashboardHandler_Sidebar(t *testing.T) {
	env := newTestEnv(t)
	createProject(t, env, map[string]any{"name": "Website"})
	w := env.do(t, identity.RoleAdmin, http.MethodPost, "/api/v1/team", map[string]any{"name": "Alex Rivera", "role": "CTO"})
	require.Equal(t, http.StatusCreated, w.Code)

	titles := func(sections []navigation.Section) map[string][]string {
		out := map[string][]string{}
		for _, s := range sections {
			for _, item := range s.Items {
				out[s.Title] = append(out[s.Title], item.Name)
			}
		}
		return out
	}

	w = env.do(t, identity.RoleAdmin, http.MethodGet, "/api/v1/dashboard/sidebar", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sections []navigation.Section
	decodeData(t, w, &sections)
	require.Len(t, sections, 3)
	assert.Equal(t, []string{"Overview", "Team", "Projects", "Clients", "Kanban"}, titles(sections)[navigation.SectionAgency])
	for _, item := range sections[0].Items {
		switch item.Name {
		case "Team", "Projects":
			require.NotNil(t, item.Count, item.Name)
			assert.Equal(t, 1, *item.Count, item.Name)
		}
	}

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/dashboard/sidebar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var memberSections []navigation.Section
	decodeData(t, w, &memberSections)
	assert.Equal(t, map[string][]string{
		navigation.SectionAgency:  {"Overview", "Team"},
		navigation.SectionAcademy: {"Dashboard", "Students", "Courses"},
		navigation.SectionGeneral: {"Notifications"},
	}, titles(memberSections))
}

func TestDashboardHandler_Commands(t *testing.T) {
	env := newTestEnv(t)

	names := func(role identity.Role, q string) []string {
		w := env.do(t, role, http.MethodGet, "/api/v1/dashboard/commands?q="+q, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cmds []navigation.Command
		decodeData(t, w, &cmds)
		out := make([]string, 0, len(cmds))
		for _, c := range cmds {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Dashboard", "Projects", "Students", "Team", "Finance", "Notifications", "Settings"}, names(identity.RoleAdmin, ""))
	assert.Equal(t, []string{"Dashboard", "Projects", "Students", "Team", "Notifications"}, names(identity.RoleMember, ""))
	assert.Equal(t, []string{"Settings"}, names(identity.RoleAdmin, "SET"))
	assert.Empty(t, names(identity.RoleMember, "fin"))
}

func TestDashboardHandler_Resolve(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		role       identity.Role
		path       string
		target     string
		redirected bool
	}{
		{"admin finance", identity.RoleAdmin, "/finance", "/finance", false},
		{"member finance", identity.RoleMember, "/finance", "/", true},
		{"member board", identity.RoleMember, "/projects/board", "/projects/board", false},
		{"unknown path", identity.RoleMember, "/nowhere", "/", true},
		{"signed out", "", "/projects", "/login", true},
		{"login while signed in", identity.RoleMember, "/login", "/", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.role, http.MethodGet, "/api/v1/dashboard/resolve?path="+tt.path, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var res navigation.Resolution
			decodeData(t, w, &res)
			assert.Equal(t, tt.target, res.Path)
			assert.Equal(t, tt.redirected, res.Redirected)
		})
	}

	w := env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/dashboard/resolve", nil)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_BAD_REQUEST")
}

type viewEvent struct {
	Type string         `json:"type"`
	Data dashboard.View `json:"data"`
}

func TestDashboardHandler_Stream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.engine)
	t.Cleanup(srv.Close)

	resp, events, cancel := openStream(t, srv, identity.RoleMember, "/api/v1/dashboard/stream")
	defer cancel()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, FrameConnected, nextEvent(t, events).Name)

	ev := nextEvent(t, events)
	require.Equal(t, FrameView, ev.Name)
	first := decodeFrame[viewEvent](t, ev)
	active, ok := first.Data.Card(dashboard.CardActiveProjects)
	require.True(t, ok)
	assert.Equal(t, "0", active.Value)
	_, ok = first.Data.Card(dashboard.CardRevenue)
	assert.False(t, ok)

	createProject(t, env, map[string]any{"name": "Website"})
	for active.Value != "1" {
		ev = nextEvent(t, events)
		require.Equal(t, FrameView, ev.Name)
		view := decodeFrame[viewEvent](t, ev)
		active, _ = view.Data.Card(dashboard.CardActiveProjects)
	}

	cancel()
	require.Eventually(t, func() bool { return env.bridge.Active() == 0 }, 5*time.Second, 10*time.Millisecond)
}
