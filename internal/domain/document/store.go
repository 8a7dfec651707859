package document

import (
	"context"
	"time"
)

// Reader runs queries and point reads.
type Reader interface {
	Get(ctx context.Context, ref Ref) (*Document, error)
	Run(ctx context.Context, q Query) (Snapshot, error)
}

// Writer issues single-document writes and atomic batches.
type Writer interface {
	// Add creates a document with a store-assigned id.
	Add(ctx context.Context, collection string, fields Fields) (Ref, error)
	// Set writes the document at ref, replacing it unless merge is true.
	Set(ctx context.Context, ref Ref, fields Fields, merge bool) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, ref Ref, fields Fields) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, ref Ref) error
	// Commit applies every write of the batch or none of them.
	Commit(ctx context.Context, batch *WriteBatch) error
}

// Store is the document store used by the dashboard.
type Store interface {
	Reader
	Writer
}

// OpKind identifies a batched write.
type OpKind string

const (
	OpSet    OpKind = "set"
	OpMerge  OpKind = "merge"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// WriteOp is one write of a batch.
type WriteOp struct {
	Kind   OpKind
	Ref    Ref
	Fields Fields
}

// WriteBatch collects writes that are committed atomically.
type WriteBatch struct {
	ops []WriteOp
}

// NewBatch creates an empty batch.
func NewBatch() *WriteBatch {
	return &WriteBatch{}
}

// Set queues a full overwrite, or a merge when merge is true.
func (b *WriteBatch) Set(ref Ref, fields Fields, merge bool) *WriteBatch {
	kind := OpSet
	if merge {
		kind = OpMerge
	}
	b.ops = append(b.ops, WriteOp{Kind: kind, Ref: ref, Fields: fields})
	return b
}

// Update queues a partial update of an existing document.
func (b *WriteBatch) Update(ref Ref, fields Fields) *WriteBatch {
	b.ops = append(b.ops, WriteOp{Kind: OpUpdate, Ref: ref, Fields: fields})
	return b
}

// Delete queues a delete.
func (b *WriteBatch) Delete(ref Ref) *WriteBatch {
	b.ops = append(b.ops, WriteOp{Kind: OpDelete, Ref: ref})
	return b
}

// Ops returns the queued writes in order.
func (b *WriteBatch) Ops() []WriteOp {
	return b.ops
}

// Len returns the number of queued writes.
func (b *WriteBatch) Len() int {
	return len(b.ops)
}

// Collections returns the distinct collections touched by the batch, in
// first-touched order.
func (b *WriteBatch) Collections() []string {
	seen := make(map[string]struct{}, len(b.ops))
	var out []string
	for _, op := range b.ops {
		if _, ok := seen[op.Ref.Collection]; ok {
			continue
		}
		seen[op.Ref.Collection] = struct{}{}
		out = append(out, op.Ref.Collection)
	}
	return out
}

// ChangeNotice announces that a collection changed.
type ChangeNotice struct {
	Collection string    `json:"collection"`
	Origin     string    `json:"origin,omitempty"`
	At         time.Time `json:"at"`
}

// ChangeFeed distributes change notices to listeners.
type ChangeFeed interface {
	// Publish delivers the notice to every current listener.
	Publish(ctx context.Context, notice ChangeNotice) error
	// Listen registers fn and returns a function that removes it.
	Listen(fn func(ChangeNotice)) (cancel func())
}
