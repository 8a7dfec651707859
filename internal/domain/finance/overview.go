// Package finance holds the finance overview document and the statement and
// CSV reports exported from it.
package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// OverviewRef is the singleton finance document.
var OverviewRef = document.NewRef(document.CollectionFinance, "overview")

// TransactionType is the direction of a transaction
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// IsValid checks if the type is income or expense
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
	StatusFailed    TransactionStatus = "Failed"
)

// IsValid checks if the status is a known value
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// DateLayout is the calendar date format used for transactions and file names.
const DateLayout = "2006-01-02"

// Transaction is one line of the finance overview.
type Transaction struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Amount      string            `json:"amount"`
	Date        string            `json:"date"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
}

// NewTransaction validates a transaction entered by an admin. The amount is
// normalized to "$1,234.00".
func NewTransaction(description, amount string, date time.Time, typ TransactionType, status TransactionStatus) (*Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.InvalidInput("description cannot be empty")
	}
	value := ParseAmount(amount)
	if !value.IsPositive() {
		return nil, shared.InvalidInput("amount must be greater than zero")
	}
	if !typ.IsValid() {
		return nil, shared.InvalidInput("type must be income or expense")
	}
	if status == "" {
		status = StatusCompleted
	}
	if !status.IsValid() {
		return nil, shared.InvalidInput("status must be Completed, Pending or Failed")
	}
	return &Transaction{
		ID:          document.NewID(),
		Description: description,
		Amount:      FormatMoney(value),
		Date:        date.Format(DateLayout),
		Type:        typ,
		Status:      status,
	}, nil
}

// Value returns the parsed amount.
func (t Transaction) Value() decimal.Decimal {
	return ParseAmount(t.Amount)
}

func (t Transaction) fields() map[string]any {
	return map[string]any{
		"id":          t.ID,
		"description": t.Description,
		"amount":      t.Amount,
		"date":        t.Date,
		"type":        string(t.Type),
		"status":      string(t.Status),
	}
}

// Overview is the finance/overview document.
type Overview struct {
	Balance      string
	Income       string
	Expenses     string
	Transactions []Transaction
}

// EmptyOverview is shown while finance/overview does not exist.
func EmptyOverview() *Overview {
	zero := FormatMoney(decimal.Zero)
	return &Overview{Balance: zero, Income: zero, Expenses: zero, Transactions: []Transaction{}}
}

// Fields returns the stored representation.
func (o *Overview) Fields() document.Fields {
	txs := make([]any, 0, len(o.Transactions))
	for _, t := range o.Transactions {
		txs = append(txs, t.fields())
	}
	return document.Fields{
		"balance":      o.Balance,
		"income":       o.Income,
		"expenses":     o.Expenses,
		"transactions": txs,
	}
}

// Record prepends t and moves the totals: income raises income and balance,
// expenses raise expenses and lower balance. Failed transactions are listed
// without touching the totals.
func (o *Overview) Record(t Transaction) {
	o.Transactions = append([]Transaction{t}, o.Transactions...)
	if t.Status == StatusFailed {
		return
	}
	value := t.Value()
	balance := ParseSigned(o.Balance)
	switch t.Type {
	case TypeIncome:
		o.Income = FormatMoney(ParseAmount(o.Income).Add(value))
		balance = balance.Add(value)
	case TypeExpense:
		o.Expenses = FormatMoney(ParseAmount(o.Expenses).Add(value))
		balance = balance.Sub(value)
	}
	o.Balance = FormatMoney(balance)
}

// Totals is an admin correction of the headline figures.
type Totals struct {
	Balance  *string
	Income   *string
	Expenses *string
}

// Apply normalizes and applies the provided totals.
func (o *Overview) Apply(t Totals) error {
	if t.Balance == nil && t.Income == nil && t.Expenses == nil {
		return shared.InvalidInput("nothing to update")
	}
	if t.Balance != nil {
		o.Balance = FormatMoney(ParseSigned(*t.Balance))
	}
	if t.Income != nil {
		o.Income = FormatMoney(ParseAmount(*t.Income))
	}
	if t.Expenses != nil {
		o.Expenses = FormatMoney(ParseAmount(*t.Expenses))
	}
	return nil
}

// ParseSigned is ParseAmount that keeps a leading minus sign, used for the
// balance which may go negative.
func ParseSigned(raw string) decimal.Decimal {
	v := ParseAmount(raw)
	if strings.HasPrefix(strings.TrimSpace(raw), "-") {
		return v.Neg()
	}
	return v
}

// OverviewFromDocument maps finance/overview.
func OverviewFromDocument(d document.Document) (*Overview, error) {
	r := document.Read(d)
	o := EmptyOverview()
	if v := r.OptionalString("balance"); v != "" {
		o.Balance = v
	}
	if v := r.OptionalString("income"); v != "" {
		o.Income = v
	}
	if v := r.OptionalString("expenses"); v != "" {
		o.Expenses = v
	}
	items := r.Slice("transactions")
	if err := r.Err(); err != nil {
		return nil, err
	}
	for i, item := range items {
		tr := document.Read(document.Document{ID: d.ID, Collection: d.Collection, Fields: item})
		t := Transaction{
			ID:          tr.OptionalString("id"),
			Description: tr.OptionalString("description"),
			Amount:      tr.OptionalString("amount"),
			Date:        tr.OptionalString("date"),
			Type:        TransactionType(tr.OneOf("type", string(TypeIncome), string(TypeExpense))),
			Status:      TransactionStatus(tr.OptionalString("status")),
		}
		if err := tr.Err(); err != nil {
			var mapping *document.MappingError
			if errors.As(err, &mapping) {
				mapping.Field = fmt.Sprintf("transactions[%d].%s", i, mapping.Field)
			}
			return nil, err
		}
		o.Transactions = append(o.Transactions, t)
	}
	return o, nil
}
