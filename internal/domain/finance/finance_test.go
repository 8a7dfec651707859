package finance

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"$1,200.50": "1200.5",
		"500":       "500",
		"NGN 2,000": "2000",
		"":          "0",
		"abc":       "0",
		"1.2.3":     "0",
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseAmount(raw).String(), raw)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "$999.00", FormatMoney(decimal.NewFromInt(999)))
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$1,000,000.00", FormatMoney(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-$20.00", FormatMoney(decimal.NewFromInt(-20)))
}

func TestOverview_Record(t *testing.T) {
	o := EmptyOverview()
	now := time.Date(2026, 7, 9, 0, 0, 0, 0, time.UTC)

	income, err := NewTransaction("Retainer", "1500", now, TypeIncome, "")
	require.NoError(t, err)
	expense, err := NewTransaction("Hosting", "$200", now, TypeExpense, StatusCompleted)
	require.NoError(t, err)
	failed, err := NewTransaction("Refund", "50", now, TypeExpense, StatusFailed)
	require.NoError(t, err)

	o.Record(*income)
	o.Record(*expense)
	o.Record(*failed)

	assert.Equal(t, "$1,500.00", o.Income)
	assert.Equal(t, "$200.00", o.Expenses)
	assert.Equal(t, "$1,300.00", o.Balance)
	require.Len(t, o.Transactions, 3)
	assert.Equal(t, "Refund", o.Transactions[0].Description)
	assert.Equal(t, "2026-07-09", o.Transactions[0].Date)
}

func TestNewTransaction_Validation(t *testing.T) {
	now := time.Now()
	_, err := NewTransaction("", "10", now, TypeIncome, "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = NewTransaction("x", "0", now, TypeIncome, "")
	assert.ErrorContains(t, err, "greater than zero")
	_, err = NewTransaction("x", "10", now, "transfer", "")
	assert.ErrorContains(t, err, "income or expense")
	_, err = NewTransaction("x", "10", now, TypeIncome, "Settled")
	assert.Error(t, err)
}

func TestOverview_Apply(t *testing.T) {
	o := EmptyOverview()
	balance := "-1500"
	require.NoError(t, o.Apply(Totals{Balance: &balance}))
	assert.Equal(t, "-$1,500.00", o.Balance)
	assert.Error(t, o.Apply(Totals{}))
}

func TestOverviewFromDocument(t *testing.T) {
	d := document.Document{ID: "overview", Collection: "finance", Fields: document.Fields{
		"balance": "$10.00",
		"transactions": []any{
			map[string]any{"id": "t1", "description": "Fee", "amount": "$10.00", "date": "2026-01-01", "type": "income", "status": "Completed"},
		},
	}}
	o, err := OverviewFromDocument(d)
	require.NoError(t, err)
	assert.Equal(t, "$10.00", o.Balance)
	assert.Equal(t, "$0.00", o.Income)
	require.Len(t, o.Transactions, 1)
	assert.Equal(t, TypeIncome, o.Transactions[0].Type)

	d.Fields["transactions"] = []any{map[string]any{"id": "t2", "type": "gift"}}
	_, err = OverviewFromDocument(d)
	var mapping *document.MappingError
	require.ErrorAs(t, err, &mapping)
	assert.Equal(t, "transactions[0].type", mapping.Field)
}

func TestCSV(t *testing.T) {
	t.Run("refuses empty ledger", func(t *testing.T) {
		_, err := CSV(nil)
		assert.ErrorIs(t, err, ErrNoTransactions)
		assert.Equal(t, "No transactions to download.", err.Error())
	})

	t.Run("quotes description and amount", func(t *testing.T) {
		out, err := CSV([]Transaction{
			{ID: "t1", Description: `Logo "v2"`, Amount: "$1,000.00", Date: "2026-01-02", Type: TypeIncome, Status: StatusCompleted},
			{ID: "t2", Description: "Hosting", Amount: "$20.00", Date: "2026-01-03", Type: TypeExpense, Status: StatusPending},
		})
		require.NoError(t, err)
		assert.Equal(t, strings.Join([]string{
			"ID,Description,Amount,Date,Type,Status",
			`t1,"Logo ""v2""","$1,000.00",2026-01-02,income,Completed`,
			`t2,"Hosting","$20.00",2026-01-03,expense,Pending`,
		}, "\n"), string(out))
	})
}

func TestFilenames(t *testing.T) {
	now := time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "finance_report_2026-10-15.csv", CSVFilename(now))
	assert.Equal(t, "sparkcode_finance_2026-10-15.pdf", PDFFilename(now))
}

func TestPaginate(t *testing.T) {
	rows := make([]int, 60)
	pages := Paginate(rows, FirstPageRows, RowsPerPage)
	require.Len(t, pages, 3)
	assert.Len(t, pages[0], 22)
	assert.Len(t, pages[1], 32)
	assert.Len(t, pages[2], 6)

	assert.Len(t, Paginate([]int{}, 22, 32), 1)
	assert.Len(t, Paginate(make([]int, 22), 22, 32), 1)
}

func TestNewStatement(t *testing.T) {
	o := EmptyOverview()
	o.Transactions = []Transaction{{Description: strings.Repeat("x", 55), Amount: "$1.00", Date: "2026-01-01", Status: StatusCompleted}}
	s := NewStatement(o, time.Now())
	assert.Equal(t, "Financial Statement", s.Title)
	require.Len(t, s.Pages, 1)
	assert.Len(t, s.Pages[0][0].Description, 40)
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
}
