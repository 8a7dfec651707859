package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// MockStore is a testify mock of document.Store.
type MockStore struct {
	mock.Mock
}

var _ document.Store = (*MockStore)(nil)

func (m *MockStore) Get(ctx context.Context, ref document.Ref) (*document.Document, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockStore) Run(ctx context.Context, q document.Query) (document.Snapshot, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(document.Snapshot), args.Error(1)
}

func (m *MockStore) Add(ctx context.Context, collection string, fields document.Fields) (document.Ref, error) {
	args := m.Called(ctx, collection, fields)
	return args.Get(0).(document.Ref), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, ref document.Ref, fields document.Fields, merge bool) error {
	args := m.Called(ctx, ref, fields, merge)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, ref document.Ref, fields document.Fields) error {
	args := m.Called(ctx, ref, fields)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, ref document.Ref) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockStore) Commit(ctx context.Context, batch *document.WriteBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// ExpectActivity expects one activity_feed entry whose message is message
// and returns the call for further configuration.
func (m *MockStore) ExpectActivity(message string, err error) *mock.Call {
	return m.On("Add", mock.Anything, document.CollectionActivity, mock.MatchedBy(func(f document.Fields) bool {
		return f["message"] == message
	})).Return(document.NewRef(document.CollectionActivity, document.NewID()), err).Once()
}

// Snapshot builds a snapshot of q holding docs.
func Snapshot(q document.Query, docs ...document.Document) document.Snapshot {
	return document.Snapshot{Query: q, Docs: docs}
}

// Doc builds a document of collection with fields.
func Doc(collection, id string, fields document.Fields) document.Document {
	return document.Document{ID: id, Collection: collection, Fields: fields}
}
