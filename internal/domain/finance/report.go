package finance

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// ErrNoTransactions refuses a CSV export of an empty ledger.
var ErrNoTransactions = shared.NewDomainError("NO_TRANSACTIONS", "No transactions to download.")

// Statement layout. The first page also carries the header and overview
// block, so it fits fewer rows.
const (
	FirstPageRows        = 22
	RowsPerPage          = 32
	DescriptionMaxLength = 40
)

// CSVHeader is the first line of the CSV report.
var CSVHeader = []string{"ID", "Description", "Amount", "Date", "Type", "Status"}

// CSVFilename returns finance_report_YYYY-MM-DD.csv.
func CSVFilename(now time.Time) string {
	return "finance_report_" + now.Format(DateLayout) + ".csv"
}

// PDFFilename returns sparkcode_finance_YYYY-MM-DD.pdf.
func PDFFilename(now time.Time) string {
	return "sparkcode_finance_" + now.Format(DateLayout) + ".pdf"
}

// CSV renders the transactions. Description and amount are always quoted;
// rows are separated by "\n" without a trailing newline.
func CSV(txs []Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	lines := make([]string, 0, len(txs)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))
	for _, t := range txs {
		lines = append(lines, strings.Join([]string{
			t.ID,
			quote(t.Description),
			quote(t.Amount),
			t.Date,
			string(t.Type),
			string(t.Status),
		}, ","))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// StatementRow is one printed transaction line.
type StatementRow struct {
	Description string
	Date        string
	Amount      string
	Status      string
}

// Statement is the printable financial statement.
type Statement struct {
	Title       string
	GeneratedAt time.Time
	Balance     string
	Income      string
	Expenses    string
	Pages       [][]StatementRow
}

// NewStatement lays out the overview for printing.
func NewStatement(o *Overview, now time.Time) *Statement {
	rows := make([]StatementRow, 0, len(o.Transactions))
	for _, t := range o.Transactions {
		rows = append(rows, StatementRow{
			Description: Truncate(t.Description, DescriptionMaxLength),
			Date:        t.Date,
			Amount:      t.Amount,
			Status:      string(t.Status),
		})
	}
	return &Statement{
		Title:       "Financial Statement",
		GeneratedAt: now,
		Balance:     o.Balance,
		Income:      o.Income,
		Expenses:    o.Expenses,
		Pages:       Paginate(rows, FirstPageRows, RowsPerPage),
	}
}

// Paginate splits rows into a first page of first rows and following pages
// of perPage rows. An empty input still yields one empty page.
func Paginate[T any](rows []T, first, perPage int) [][]T {
	pages := [][]T{}
	size := first
	for len(rows) > size {
		pages = append(pages, rows[:size])
		rows = rows[size:]
		size = perPage
	}
	return append(pages, rows)
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
