// Package dashboard computes the overview figures from full project and
// student snapshots. Everything here is a pure function of its inputs and is
// recomputed on every snapshot.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sparkcode/dashboard/internal/domain/academy"
	"github.com/sparkcode/dashboard/internal/domain/finance"
	"github.com/sparkcode/dashboard/internal/domain/project"
)

// RevenueMonths is the number of monthly buckets on the revenue chart.
const RevenueMonths = 7

// MonthBucket is the revenue of one calendar month.
type MonthBucket struct {
	Label   string          `json:"name"`
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DayBucket is the number of students enrolled on one weekday.
type DayBucket struct {
	Label string `json:"name"`
	Count int    `json:"count"`
}

// ActiveProjects counts projects in progress.
func ActiveProjects(projects []*project.Project) int {
	n := 0
	for _, p := range projects {
		if p.Status == project.StatusInProgress {
			n++
		}
	}
	return n
}

// TotalRevenue sums every project budget.
func TotalRevenue(projects []*project.Project) decimal.Decimal {
	total := decimal.Zero
	for _, p := range projects {
		total = total.Add(finance.ParseAmount(p.Budget))
	}
	return total
}

// MonthlyRevenue buckets budgets by the project's creation month over the
// RevenueMonths calendar months ending with now's month, oldest first.
// Projects outside the window are ignored; empty months are zero.
func MonthlyRevenue(projects []*project.Project, now time.Time) []MonthBucket {
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]MonthBucket, RevenueMonths)
	index := make(map[[2]int]int, RevenueMonths)
	for i := range buckets {
		start := current.AddDate(0, i-(RevenueMonths-1), 0)
		buckets[i] = MonthBucket{
			Label:   start.Month().String()[:3],
			Year:    start.Year(),
			Month:   start.Month(),
			Revenue: decimal.Zero,
		}
		index[[2]int{start.Year(), int(start.Month())}] = i
	}

	for _, p := range projects {
		if p.CreatedAt.IsZero() {
			continue
		}
		created := p.CreatedAt.In(loc)
		if i, ok := index[[2]int{created.Year(), int(created.Month())}]; ok {
			buckets[i].Revenue = buckets[i].Revenue.Add(finance.ParseAmount(p.Budget))
		}
	}
	return buckets
}

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeeklyEnrollment counts students by the weekday they were created on,
// Monday through Sunday.
func WeeklyEnrollment(students []*academy.Student, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[time.Weekday]int, 7)
	for _, s := range students {
		if s.CreatedAt.IsZero() {
			continue
		}
		counts[s.CreatedAt.In(loc).Weekday()]++
	}
	out := make([]DayBucket, 0, len(weekOrder))
	for _, day := range weekOrder {
		out = append(out, DayBucket{Label: day.String()[:3], Count: counts[day]})
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// Growth formats the change from prior to current as a signed percentage
// with one decimal. A zero prior reports "+100%" (or "0%" if current is
// zero too).
func Growth(prior, current decimal.Decimal) string {
	if prior.IsZero() {
		if current.IsZero() {
			return "0%"
		}
		return "+100%"
	}
	pct := current.Sub(prior).Div(prior).Mul(hundred)
	sign := "+"
	if pct.IsNegative() {
		sign = ""
	}
	return sign + pct.StringFixed(1) + "%"
}

// MonthOverMonth is Growth over the last two monthly buckets.
func MonthOverMonth(buckets []MonthBucket) string {
	if len(buckets) < 2 {
		return "0%"
	}
	return Growth(buckets[len(buckets)-2].Revenue, buckets[len(buckets)-1].Revenue)
}
