// Package partner implements the client directory screen.
package partner

import (
	"context"

	"go.uber.org/zap"

	activityapp "github.com/sparkcode/dashboard/internal/application/activity"
	"github.com/sparkcode/dashboard/internal/domain/activity"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/partner"
)

// CreateClientInput is the client form.
type CreateClientInput struct {
	Name     string
	Email    string
	Phone    string
	Location string
}

// ListQuery is the clients subscription.
func ListQuery() document.Query {
	return document.Collection(document.CollectionClients)
}

// ClientService handles client-related operations
type ClientService struct {
	store    document.Store
	activity *activityapp.Recorder
	logger   *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(store document.Store, recorder *activityapp.Recorder, logger *zap.Logger) *ClientService {
	return &ClientService{store: store, activity: recorder, logger: logger}
}

// List returns clients matching search.
func (s *ClientService) List(ctx context.Context, search string) ([]*partner.Client, error) {
	snap, err := s.store.Run(ctx, ListQuery())
	if err != nil {
		return nil, err
	}
	clients, err := document.MapAll(snap, partner.FromDocument)
	if err != nil {
		return nil, err
	}
	return partner.Search(clients, search), nil
}

// Create stores a new client.
func (s *ClientService) Create(ctx context.Context, actor *identity.Session, input CreateClientInput) (*partner.Client, error) {
	c, err := partner.NewClient(input.Name, input.Email, input.Phone, input.Location)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.Add(ctx, document.CollectionClients, c.Fields())
	if err != nil {
		s.activity.Failure(ctx, actor, "add client", err)
		return nil, err
	}
	c.ID = ref.ID
	s.logger.Info("Client created", zap.String("client_id", c.ID))
	s.activity.Log(ctx, actor, "Added new client: "+c.Name, activity.TypeSuccess)
	return c, nil
}

// Delete removes a client.
func (s *ClientService) Delete(ctx context.Context, actor *identity.Session, id string) error {
	ref := document.NewRef(document.CollectionClients, id)
	doc, err := s.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	name, _ := doc.Fields["name"].(string)
	if err := s.store.Delete(ctx, ref); err != nil {
		s.activity.Failure(ctx, actor, "delete client", err)
		return err
	}
	s.logger.Info("Client deleted", zap.String("client_id", id))
	s.activity.Log(ctx, actor, "Deleted client "+name, activity.TypeWarning)
	return nil
}
