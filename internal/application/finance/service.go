// Package finance implements the admin finance screen and its exports.
package finance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/finance"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// ErrPDFUnavailable is returned by StatementPDF when no renderer is wired.
var ErrPDFUnavailable = shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not configured")

// StatementPrinter turns a statement into a PDF.
type StatementPrinter interface {
	PDF(ctx context.Context, st *finance.Statement) ([]byte, error)
}

// AddTransactionInput is the transaction form. A zero Date means today.
type AddTransactionInput struct {
	Description string
	Amount      string
	Date        time.Time
	Type        finance.TransactionType
	Status      finance.TransactionStatus
}

// Export is a downloadable report.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service reads and writes finance/overview.
type Service struct {
	store    document.Store
	activity *activityapp.Recorder
	printer  StatementPrinter
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPrinter enables the PDF statement.
func WithPrinter(p StatementPrinter) Option {
	return func(s *Service) { s.printer = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a finance Service
func NewService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, activity: recorder, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview returns the finance document, or zero totals when it does not
// exist yet.
func (s *Service) Overview(ctx context.Context) (*finance.Overview, error) {
	doc, err := s.store.Get(ctx, finance.OverviewRef)
	if errors.Is(err, shared.ErrNotFound) {
		return finance.EmptyOverview(), nil
	}
	if err != nil {
		return nil, err
	}
	return finance.OverviewFromDocument(*doc)
}

// AddTransaction prepends a transaction and moves the totals. The overview
// is rewritten whole; concurrent edits are last-write-wins.
func (s *Service) AddTransaction(ctx context.Context, actor *identity.Session, input AddTransactionInput) (*finance.Overview, error) {
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	tx, err := finance.NewTransaction(input.Description, input.Amount, date, input.Type, input.Status)
	if err != nil {
		return nil, err
	}
	o, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	o.Record(*tx)
	if err := s.store.Set(ctx, finance.OverviewRef, o.Fields(), false); err != nil {
		s.activity.Failure(ctx, actor, "record transaction", err)
		return nil, err
	}
	s.logger.Info("Transaction recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("type", string(tx.Type)))
	s.activity.Log(ctx, actor, "Recorded "+string(tx.Type)+" of "+tx.Amount+": "+tx.Description, activity.TypeSuccess)
	return o, nil
}

// UpdateTotals applies an admin correction of the headline figures.
func (s *Service) UpdateTotals(ctx context.Context, actor *identity.Session, totals finance.Totals) (*finance.Overview, error) {
	o, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	if err := o.Apply(totals); err != nil {
		return nil, err
	}
	fields := document.Fields{"balance": o.Balance, "income": o.Income, "expenses": o.Expenses}
	if err := s.store.Set(ctx, finance.OverviewRef, fields, true); err != nil {
		s.activity.Failure(ctx, actor, "update financial overview", err)
		return nil, err
	}
	s.activity.Log(ctx, actor, "Updated financial overview", activity.TypeInfo)
	return o, nil
}

// CSV exports every transaction. An empty ledger yields
// finance.ErrNoTransactions and no file.
func (s *Service) CSV(ctx context.Context) (*Export, error) {
	o, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	data, err := finance.CSV(o.Transactions)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    finance.CSVFilename(s.now()),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

// StatementPDF prints the financial statement.
func (s *Service) StatementPDF(ctx context.Context) (*Export, error) {
	if s.printer == nil {
		return nil, ErrPDFUnavailable
	}
	o, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	data, err := s.printer.PDF(ctx, finance.NewStatement(o, now))
	if err != nil {
		s.logger.Error("Statement rendering failed", zap.Error(err))
		return nil, err
	}
	return &Export{
		Filename:    finance.PDFFilename(now),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
