// Package partner holds the agency's client directory.
package partner

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

var validate = validator.New()

// Client is an agency customer.
type Client struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Location string
}

// NewClient validates a client from the create form.
func NewClient(name, email, phone, location string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.InvalidInput("client name cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" && validate.Var(email, "email") != nil {
		return nil, shared.InvalidInput("invalid email format")
	}
	return &Client{
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(phone),
		Location: strings.TrimSpace(location),
	}, nil
}

// Fields returns the stored representation.
func (c *Client) Fields() document.Fields {
	return document.Fields{
		"name":     c.Name,
		"email":    c.Email,
		"phone":    c.Phone,
		"location": c.Location,
	}
}

// FromDocument maps a clients document.
func FromDocument(d document.Document) (*Client, error) {
	r := document.Read(d)
	c := &Client{
		ID:       d.ID,
		Name:     r.String("name"),
		Email:    r.Email("email"),
		Phone:    r.OptionalString("phone"),
		Location: r.OptionalString("location"),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Search filters clients by name, email or location, ignoring case.
func Search(clients []*Client, term string) []*Client {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return clients
	}
	out := make([]*Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Email), term) ||
			strings.Contains(strings.ToLower(c.Location), term) {
			out = append(out, c)
		}
	}
	return out
}
