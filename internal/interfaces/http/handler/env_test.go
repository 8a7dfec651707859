package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	academyapp "github.com/sparkcode/dashboard/internal/application/academy"
	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	dashboardapp "github.com/sparkcode/dashboard/internal/application/dashboard"
	financeapp "github.com/sparkcode/dashboard/internal/application/finance"
	"github.com/sparkcode/dashboard/internal/application/partner"
	projectapp "github.com/sparkcode/dashboard/internal/application/project"
	settingsapp "github.com/sparkcode/dashboard/internal/application/settings"
	teamapp "github.com/sparkcode/dashboard/internal/application/team"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/infrastructure/config"
	"github.com/sparkcode/dashboard/internal/infrastructure/persistence"
	"github.com/sparkcode/dashboard/internal/infrastructure/realtime"
	"github.com/sparkcode/dashboard/internal/interfaces/http/middleware"
	"github.com/sparkcode/dashboard/tests/testutil"
)

// testEnv serves every resource handler from an in-memory store. Requests
// run as whichever session the test passes.
type testEnv struct {
	store  *testutil.MemoryStore
	engine *gin.Engine
	bridge *realtime.Bridge
	hub    *StreamHub
}

type envOptions struct {
	settings []settingsapp.Option
	finance  []financeapp.Option
	realtime config.RealtimeConfig
}

func newTestEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()

	var o envOptions
	o.realtime = config.RealtimeConfig{HeartbeatInterval: time.Hour, MaxClients: 10, ClientBuffer: 8, WriteTimeout: time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zap.NewNop()
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	store := testutil.NewMemoryStore(t, persistence.WithClock(testutil.TickingClock(start, time.Millisecond)))
	recorder := activityapp.NewRecorder(store, logger, activityapp.WithClock(testutil.TickingClock(start, time.Second)))
	bridge := realtime.NewBridge(store, store.Feed, realtime.WithLogger(logger))
	hub := NewStreamHub(o.realtime, logger)
	require.NoError(t, hub.Start())
	t.Cleanup(hub.Stop)

	projects := NewProjectHandler(projectapp.NewService(store, recorder, logger))
	academy := NewAcademyHandler(academyapp.NewService(store, recorder, logger))
	clients := NewClientHandler(partner.NewClientService(store, recorder, logger))
	team := NewTeamHandler(teamapp.NewService(store, recorder, logger))
	activity := NewActivityHandler(activityapp.NewService(store, recorder, logger))
	settings := NewSettingsHandler(settingsapp.NewService(store, recorder, logger, o.settings...))
	finance := NewFinanceHandler(financeapp.NewService(store, recorder, logger, o.finance...))
	dashboard := NewDashboardHandler(dashboardapp.NewService(store, bridge, logger, dashboardapp.WithClock(testutil.FixedClock(start))), hub)
	live := NewRealtimeHandler(bridge, hub, o.realtime, logger)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			s := testutil.MemberSession()
			if role == string(identity.RoleAdmin) {
				s = testutil.AdminSession()
			}
			c.Set(middleware.SessionKey, s)
		}
		c.Next()
	})
	api := engine.Group("/api/v1")

	api.GET("/projects", projects.List)
	api.POST("/projects", projects.Create)
	api.GET("/projects/board", projects.Board)
	api.GET("/projects/:id", projects.Get)
	api.PATCH("/projects/:id", projects.Update)
	api.DELETE("/projects/:id", projects.Delete)
	api.POST("/projects/:id/move", projects.Move)
	api.GET("/projects/:id/tasks", projects.Tasks)
	api.POST("/projects/:id/tasks", projects.AddTask)
	api.PATCH("/projects/:id/tasks/:taskId", projects.SetTask)
	api.DELETE("/projects/:id/tasks/:taskId", projects.DeleteTask)

	api.GET("/academy/overview", academy.Overview)
	api.GET("/academy/students", academy.ListStudents)
	api.POST("/academy/students", academy.Enroll)
	api.PATCH("/academy/students/:id", academy.UpdateStudent)
	api.DELETE("/academy/students/:id", academy.DeleteStudent)
	api.GET("/academy/courses", academy.ListCourses)
	api.POST("/academy/courses", academy.CreateCourse)
	api.PATCH("/academy/courses/:id", academy.UpdateCourse)
	api.DELETE("/academy/courses/:id", academy.DeleteCourse)

	api.GET("/clients", clients.List)
	api.POST("/clients", clients.Create)
	api.DELETE("/clients/:id", clients.Delete)

	api.GET("/team", team.List)
	api.POST("/team", team.Add)
	api.POST("/team/seed", team.SeedFounders)
	api.PUT("/team/:id", team.Update)
	api.DELETE("/team/:id", team.Remove)

	api.GET("/activity", activity.Feed)
	api.GET("/activity/unread", activity.Unread)
	api.POST("/activity", activity.Announce)
	api.POST("/activity/read", activity.MarkAllRead)

	admin := api.Group("", middleware.RequireAdmin())
	admin.GET("/settings/global", settings.Global)
	admin.PUT("/settings/global", settings.SaveGlobal)
	admin.GET("/settings/notifications", settings.Notifications)
	admin.PUT("/settings/notifications", settings.SaveNotifications)
	admin.POST("/settings/logo", settings.UploadLogo)
	admin.POST("/settings/system-test", settings.SystemTest)
	admin.GET("/finance", finance.Overview)
	admin.POST("/finance/transactions", finance.AddTransaction)
	admin.PATCH("/finance/totals", finance.UpdateTotals)
	admin.GET("/finance/export.csv", finance.ExportCSV)
	admin.GET("/finance/statement.pdf", finance.ExportPDF)

	api.GET("/dashboard/overview", dashboard.Overview)
	api.GET("/dashboard/sidebar", dashboard.Sidebar)
	api.GET("/dashboard/commands", dashboard.Commands)
	api.GET("/dashboard/resolve", dashboard.Resolve)
	api.GET("/dashboard/stream", dashboard.Stream)
	api.GET("/realtime/stream", live.Stream)
	api.GET("/realtime/ws", live.WebSocket)

	return &testEnv{store: store, engine: engine, bridge: bridge, hub: hub}
}

func withSettings(opts ...settingsapp.Option) func(*envOptions) {
	return func(o *envOptions) { o.settings = append(o.settings, opts...) }
}

func withFinance(opts ...financeapp.Option) func(*envOptions) {
	return func(o *envOptions) { o.finance = append(o.finance, opts...) }
}

func withRealtime(cfg config.RealtimeConfig) func(*envOptions) {
	return func(o *envOptions) { o.realtime = cfg }
}

// as returns headers that make the request run as an admin or a member.
func as(role identity.Role) map[string]string {
	return map[string]string{"X-Test-Role": string(role)}
}

func (e *testEnv) do(t *testing.T, role identity.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var headers map[string]string
	if role != "" {
		headers = as(role)
	}
	return testutil.Perform(t, e.engine, method, path, body, headers)
}

// activities returns the feed messages, newest first.
func (e *testEnv) activities(t *testing.T) []string {
	t.Helper()
	snap, err := e.store.Run(context.Background(), document.Collection(document.CollectionActivity).Order(document.CreateTimeField, document.Desc))
	require.NoError(t, err)
	out := make([]string, 0, snap.Size())
	for _, d := range snap.Docs {
		msg, _ := d.Fields["message"].(string)
		out = append(out, msg)
	}
	return out
}
