package partner

import (
	"testing"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client", func(t *testing.T) {
		c, err := NewClient(" Acme ", "ops@acme.io", "+234 800", "Lagos")
		require.NoError(t, err)
		assert.Equal(t, "Acme", c.Name)
		assert.Equal(t, "ops@acme.io", c.Fields()["email"])
	})

	t.Run("email is optional", func(t *testing.T) {
		_, err := NewClient("Acme", "", "", "")
		assert.NoError(t, err)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewClient("Acme", "acme.io", "", "")
		assert.ErrorContains(t, err, "invalid email")
	})

	t.Run("requires name", func(t *testing.T) {
		_, err := NewClient("", "", "", "")
		assert.Error(t, err)
	})
}

func TestFromDocument(t *testing.T) {
	c, err := FromDocument(document.Document{ID: "c1", Collection: "clients", Fields: document.Fields{"name": "Acme", "phone": "123"}})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "123", c.Phone)

	_, err = FromDocument(document.Document{ID: "c2", Collection: "clients", Fields: document.Fields{"name": "Acme", "email": "nope"}})
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	clients := []*Client{{Name: "Acme", Location: "Lagos"}, {Name: "Globex", Email: "hi@globex.com"}}
	assert.Len(t, Search(clients, ""), 2)
	assert.Equal(t, "Acme", Search(clients, "lagos")[0].Name)
	assert.Equal(t, "Globex", Search(clients, "GLOBEX.com")[0].Name)
}
