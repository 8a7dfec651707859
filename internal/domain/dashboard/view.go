package dashboard

import (
	"strconv"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/finance"
	"github.com/sparkcode/dashboard/internal/domain/project"
)

// Card keys.
const (
	CardRevenue        = "revenue"
	CardActiveProjects = "active_projects"
	CardActiveStudents = "active_students"
	CardGrowth         = "growth"
)

// Chart keys.
const (
	ChartRevenueGrowth  = "revenue_growth"
	ChartWeeklyStudents = "weekly_students"
)

// Card is a headline figure.
type Card struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Value   string `json:"value"`
	Caption string `json:"caption"`
}

// Chart is a labelled series.
type Chart struct {
	Key    string      `json:"key"`
	Title  string      `json:"title"`
	Points []ChartItem `json:"points"`
}

// ChartItem is one point of a chart.
type ChartItem struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// View is the overview screen for one session. Admin-only cards and charts
// are absent, not blanked, for other roles.
type View struct {
	Cards  []Card  `json:"cards"`
	Charts []Chart `json:"charts"`
}

// Card returns the card with key, if present.
func (v *View) Card(key string) (Card, bool) {
	for _, c := range v.Cards {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}

// Chart returns the chart with key, if present.
func (v *View) Chart(key string) (Chart, bool) {
	for _, c := range v.Charts {
		if c.Key == key {
			return c, true
		}
	}
	return Chart{}, false
}

// Build computes the overview from the latest snapshots.
func Build(projects []*project.Project, students []*academy.Student, now time.Time, admin bool) *View {
	months := MonthlyRevenue(projects, now)
	v := &View{}

	if admin {
		v.Cards = append(v.Cards, Card{
			Key:     CardRevenue,
			Title:   "Total Revenue",
			Value:   finance.FormatMoney(TotalRevenue(projects)),
			Caption: "Sum of project budgets",
		})
	}
	v.Cards = append(v.Cards,
		Card{
			Key:     CardActiveProjects,
			Title:   "Active Projects",
			Value:   strconv.Itoa(ActiveProjects(projects)),
			Caption: "Current Workload",
		},
		Card{
			Key:     CardActiveStudents,
			Title:   "Active Students",
			Value:   strconv.Itoa(academy.CountActive(students)),
			Caption: strconv.Itoa(len(students)) + " Total Enrolled",
		},
	)
	if admin {
		v.Cards = append(v.Cards, Card{
			Key:     CardGrowth,
			Title:   "Growth Rate",
			Value:   MonthOverMonth(months),
			Caption: "Month over month revenue",
		})

		revenue := Chart{Key: ChartRevenueGrowth, Title: "Revenue Growth"}
		for _, m := range months {
			value, _ := m.Revenue.Float64()
			revenue.Points = append(revenue.Points, ChartItem{Label: m.Label, Value: value})
		}
		v.Charts = append(v.Charts, revenue)
	}

	weekly := Chart{Key: ChartWeeklyStudents, Title: "Weekly Students"}
	for _, d := range WeeklyEnrollment(students, now.Location()) {
		weekly.Points = append(weekly.Points, ChartItem{Label: d.Label, Value: float64(d.Count)})
	}
	v.Charts = append(v.Charts, weekly)
	return v
}

// Counts are the sidebar badges.
type Counts struct {
	Projects int `json:"projects"`
	Students int `json:"students"`
	Team     int `json:"team"`
	Unread   int `json:"unread"`
}
