package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/internal/infrastructure/logger"
	"github.com/sparkcode/dashboard/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormDocumentStore keeps every collection in the documents table and
// announces committed writes on a change feed.
type GormDocumentStore struct {
	db     *gorm.DB
	feed   document.ChangeFeed
	origin string
	clock  func() time.Time
}

var _ document.Store = (*GormDocumentStore)(nil)

// StoreOption configures a GormDocumentStore
type StoreOption func(*GormDocumentStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *GormDocumentStore) {
		s.clock = clock
	}
}

// WithOrigin tags published notices with the id of this server instance.
func WithOrigin(origin string) StoreOption {
	return func(s *GormDocumentStore) {
		s.origin = origin
	}
}

// NewGormDocumentStore creates a store. feed may be nil when nobody listens.
func NewGormDocumentStore(db *gorm.DB, feed document.ChangeFeed, opts ...StoreOption) *GormDocumentStore {
	s := &GormDocumentStore{db: db, feed: feed, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get reads one document.
func (s *GormDocumentStore) Get(ctx context.Context, ref document.Ref) (*document.Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, shared.InvalidInput(err.Error())
	}
	row, err := findRow(s.db.WithContext(ctx), ref)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, shared.NotFound(fmt.Sprintf("document %s not found", ref.Path()))
	}
	doc := row.ToDomain()
	return &doc, nil
}

// Run executes the query against the whole collection. Filters, ordering
// and limits are evaluated in Go because field values live in a JSON column.
func (s *GormDocumentStore) Run(ctx context.Context, q document.Query) (document.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return document.Snapshot{}, shared.InvalidInput(err.Error())
	}

	var rows []models.DocumentModel
	if err := s.db.WithContext(ctx).
		Where("collection = ?", q.Collection).
		Order("created_at").Order("id").
		Find(&rows).Error; err != nil {
		return document.Snapshot{}, fmt.Errorf("query %s: %w", q.Collection, err)
	}

	docs := make([]document.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].ToDomain())
	}
	return document.Snapshot{Query: q, Docs: q.Apply(docs), ReadTime: s.clock()}, nil
}

// Add creates a document with a new id.
func (s *GormDocumentStore) Add(ctx context.Context, collection string, fields document.Fields) (document.Ref, error) {
	if err := document.ValidateCollection(collection); err != nil {
		return document.Ref{}, shared.InvalidInput(err.Error())
	}
	now := s.clock()
	ref := document.NewRef(collection, document.NewID())
	row := models.DocumentModel{
		Collection: ref.Collection,
		ID:         ref.ID,
		Data:       resolveTimestamps(fields, now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return document.Ref{}, fmt.Errorf("add to %s: %w", collection, err)
	}
	s.publish(ctx, now, collection)
	return ref, nil
}

// Set writes the document at ref.
func (s *GormDocumentStore) Set(ctx context.Context, ref document.Ref, fields document.Fields, merge bool) error {
	return s.Commit(ctx, document.NewBatch().Set(ref, fields, merge))
}

// Update merges fields into an existing document.
func (s *GormDocumentStore) Update(ctx context.Context, ref document.Ref, fields document.Fields) error {
	return s.Commit(ctx, document.NewBatch().Update(ref, fields))
}

// Delete removes the document at ref.
func (s *GormDocumentStore) Delete(ctx context.Context, ref document.Ref) error {
	return s.Commit(ctx, document.NewBatch().Delete(ref))
}

// Commit applies the batch in one transaction. Notices go out once per
// touched collection, and only after the transaction committed.
func (s *GormDocumentStore) Commit(ctx context.Context, batch *document.WriteBatch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	for _, op := range batch.Ops() {
		if err := op.Ref.Validate(); err != nil {
			return shared.InvalidInput(err.Error())
		}
	}

	now := s.clock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range batch.Ops() {
			if err := applyOp(tx, op, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, now, batch.Collections()...)
	return nil
}

func (s *GormDocumentStore) publish(ctx context.Context, at time.Time, collections ...string) {
	if s.feed == nil {
		return
	}
	for _, c := range collections {
		notice := document.ChangeNotice{Collection: c, Origin: s.origin, At: at}
		if err := s.feed.Publish(ctx, notice); err != nil {
			// The write is committed; listeners catch up on the next change.
			logger.L(ctx).Warn("change notice not published",
				zap.String("collection", c), zap.Error(err))
		}
	}
}

func applyOp(tx *gorm.DB, op document.WriteOp, now time.Time) error {
	if op.Kind == document.OpDelete {
		if err := tx.Where("collection = ? AND id = ?", op.Ref.Collection, op.Ref.ID).
			Delete(&models.DocumentModel{}).Error; err != nil {
			return fmt.Errorf("delete %s: %w", op.Ref.Path(), err)
		}
		return nil
	}

	row, err := findRow(tx, op.Ref)
	if err != nil {
		return err
	}
	fields := resolveTimestamps(op.Fields, now)

	if row == nil {
		if op.Kind == document.OpUpdate {
			return shared.NotFound(fmt.Sprintf("document %s not found", op.Ref.Path()))
		}
		row = &models.DocumentModel{
			Collection: op.Ref.Collection,
			ID:         op.Ref.ID,
			Data:       fields,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("create %s: %w", op.Ref.Path(), err)
		}
		return nil
	}

	switch op.Kind {
	case document.OpSet:
		row.Data = fields
	case document.OpMerge:
		row.Data = mergeFields(row.Data, fields, true)
	case document.OpUpdate:
		row.Data = mergeFields(row.Data, fields, false)
	default:
		return fmt.Errorf("unknown write %q", op.Kind)
	}
	row.UpdatedAt = now
	if err := tx.Save(row).Error; err != nil {
		return fmt.Errorf("write %s: %w", op.Ref.Path(), err)
	}
	return nil
}

func findRow(db *gorm.DB, ref document.Ref) (*models.DocumentModel, error) {
	var row models.DocumentModel
	err := db.Where("collection = ? AND id = ?", ref.Collection, ref.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Path(), err)
	}
	return &row, nil
}

// mergeFields overlays src onto a copy of dst. With deep set, nested maps
// are merged key by key; otherwise top-level keys are replaced whole.
func mergeFields(dst, src document.Fields, deep bool) document.Fields {
	out := dst.Clone()
	for k, v := range src {
		if deep {
			if sm, ok := asMap(v); ok {
				if dm, ok := asMap(out[k]); ok {
					out[k] = map[string]any(mergeFields(dm, sm, true))
					continue
				}
			}
		}
		out[k] = v
	}
	return out
}

func asMap(v any) (document.Fields, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case document.Fields:
		return m, true
	}
	return nil, false
}

// resolveTimestamps replaces ServerTimestamp placeholders, at any depth,
// with the commit time.
func resolveTimestamps(fields document.Fields, now time.Time) document.Fields {
	out := make(document.Fields, len(fields))
	for k, v := range fields {
		out[k] = resolveValue(v, now)
	}
	return out
}

func resolveValue(v any, now time.Time) any {
	if document.IsServerTimestamp(v) {
		return now.UTC().Format(time.RFC3339Nano)
	}
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(resolveTimestamps(t, now))
	case document.Fields:
		return map[string]any(resolveTimestamps(t, now))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = resolveValue(e, now)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = map[string]any(resolveTimestamps(e, now))
		}
		return out
	}
	return v
}
