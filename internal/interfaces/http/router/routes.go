package router

import (
	"github.com/sparkcode/dashboard/internal/interfaces/http/handler"
	"github.com/sparkcode/dashboard/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers served under the API prefix.
type Handlers struct {
	Auth      *handler.AuthHandler
	System    *handler.SystemHandler
	Dashboard *handler.DashboardHandler
	Projects  *handler.ProjectHandler
	Academy   *handler.AcademyHandler
	Clients   *handler.ClientHandler
	Team      *handler.TeamHandler
	Activity  *handler.ActivityHandler
	Settings  *handler.SettingsHandler
	Finance   *handler.FinanceHandler
	Realtime  *handler.RealtimeHandler
}

// DashboardGroups returns the route groups of the dashboard API. Settings
// and finance only admit admins.
func DashboardGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.GetSystemInfo)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.RefreshToken)
	authRoutes.GET("/me", h.Auth.Me)
	authRoutes.POST("/logout", h.Auth.Logout)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("/overview", h.Dashboard.Overview).
		GET("/sidebar", h.Dashboard.Sidebar).
		GET("/commands", h.Dashboard.Commands).
		GET("/resolve", h.Dashboard.Resolve).
		GET("/stream", h.Dashboard.Stream)

	projects := NewDomainGroup("projects", "/projects")
	projects.GET("", h.Projects.List).
		POST("", h.Projects.Create).
		GET("/board", h.Projects.Board).
		GET("/:id", h.Projects.Get).
		PATCH("/:id", h.Projects.Update).
		DELETE("/:id", h.Projects.Delete).
		POST("/:id/move", h.Projects.Move)
	projects.Group("tasks", "/:id/tasks").
		GET("", h.Projects.Tasks).
		POST("", h.Projects.AddTask).
		PATCH("/:taskId", h.Projects.SetTask).
		DELETE("/:taskId", h.Projects.DeleteTask)

	academy := NewDomainGroup("academy", "/academy")
	academy.GET("/overview", h.Academy.Overview)
	academy.Group("students", "/students").
		GET("", h.Academy.ListStudents).
		POST("", h.Academy.Enroll).
		PATCH("/:id", h.Academy.UpdateStudent).
		DELETE("/:id", h.Academy.DeleteStudent)
	academy.Group("courses", "/courses").
		GET("", h.Academy.ListCourses).
		POST("", h.Academy.CreateCourse).
		PATCH("/:id", h.Academy.UpdateCourse).
		DELETE("/:id", h.Academy.DeleteCourse)

	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", h.Clients.List).
		POST("", h.Clients.Create).
		DELETE("/:id", h.Clients.Delete)

	team := NewDomainGroup("team", "/team")
	team.GET("", h.Team.List).
		POST("", h.Team.Add).
		POST("/seed", h.Team.SeedFounders).
		PUT("/:id", h.Team.Update).
		DELETE("/:id", h.Team.Remove)

	activity := NewDomainGroup("activity", "/activity")
	activity.GET("", h.Activity.Feed).
		GET("/unread", h.Activity.Unread).
		POST("", h.Activity.Announce).
		POST("/read", h.Activity.MarkAllRead)

	settings := NewDomainGroup("settings", "/settings").Use(middleware.RequireAdmin())
	settings.GET("/global", h.Settings.Global).
		PUT("/global", h.Settings.SaveGlobal).
		GET("/notifications", h.Settings.Notifications).
		PUT("/notifications", h.Settings.SaveNotifications).
		POST("/logo", h.Settings.UploadLogo).
		POST("/system-test", h.Settings.SystemTest)

	finance := NewDomainGroup("finance", "/finance").Use(middleware.RequireAdmin())
	finance.GET("", h.Finance.Overview).
		POST("/transactions", h.Finance.AddTransaction).
		PATCH("/totals", h.Finance.UpdateTotals).
		GET("/export.csv", h.Finance.ExportCSV).
		GET("/statement.pdf", h.Finance.ExportPDF)

	realtime := NewDomainGroup("realtime", "/realtime")
	realtime.GET("/stream", h.Realtime.Stream).
		GET("/ws", h.Realtime.WebSocket)

	return []*DomainGroup{
		system, authRoutes, dashboard, projects, academy, clients,
		team, activity, settings, finance, realtime,
	}
}
