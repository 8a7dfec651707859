package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
	"github.com/sparkcode/dashboard/tests/testutil"
)

func newService(store document.Store) *ClientService {
	return NewClientService(store, activityapp.NewRecorder(store, zap.NewNop()), zap.NewNop())
}

func TestClientService_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore(t)
	svc := newService(store)
	admin := testutil.AdminSession()

	acme, err := svc.Create(ctx, admin, CreateClientInput{Name: "Acme", Email: "ops@acme.io", Location: "Lagos"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, CreateClientInput{Name: "Globex", Location: "Accra"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(ctx, "lagos")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, acme.ID, found[0].ID)

	require.NoError(t, svc.Delete(ctx, admin, acme.ID))
	all, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, svc.Delete(ctx, admin, acme.ID), shared.ErrNotFound)
}

func TestClientService_ActivityMessages(t *testing.T) {
	store := new(testutil.MockStore)
	ref := document.NewRef(document.CollectionClients, "c1")
	store.On("Add", mock.Anything, document.CollectionClients, mock.Anything).Return(ref, nil).Once()
	store.ExpectActivity("Added new client: Initech", nil)
	store.On("Get", mock.Anything, ref).Return(&document.Document{
		ID: "c1", Collection: document.CollectionClients, Fields: document.Fields{"name": "Initech"},
	}, nil)
	store.On("Delete", mock.Anything, ref).Return(nil).Once()
	store.ExpectActivity("Deleted client Initech", nil)

	svc := newService(store)
	_, err := svc.Create(context.Background(), testutil.AdminSession(), CreateClientInput{Name: "Initech"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), testutil.AdminSession(), "c1"))
	store.AssertExpectations(t)
}

func TestClientService_RejectsBadEmail(t *testing.T) {
	store := new(testutil.MockStore)
	_, err := newService(store).Create(context.Background(), testutil.AdminSession(), CreateClientInput{Name: "X", Email: "not-an-email"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientService_DeleteFailureIsLogged(t *testing.T) {
	store := new(testutil.MockStore)
	ref := document.NewRef(document.CollectionClients, "c1")
	store.On("Get", mock.Anything, ref).Return(&document.Document{
		ID: "c1", Collection: document.CollectionClients, Fields: document.Fields{"name": "Initech"},
	}, nil)
	store.On("Delete", mock.Anything, ref).Return(errors.New("backend down")).Once()
	store.ExpectActivity("Failed to delete client: backend down", nil)

	err := newService(store).Delete(context.Background(), testutil.AdminSession(), "c1")
	assert.EqualError(t, err, "backend down")
	store.AssertExpectations(t)
}
