package realtime

import (
	"strings"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// adminCollections may only be subscribed to by admins. config stays
// readable by everyone because it carries the dashboard branding.
var adminCollections = map[string]bool{
	document.CollectionFinance:  true,
	document.CollectionSettings: true,
	document.CollectionUsers:    true,
}

// Authorize checks that session may subscribe to q.
func Authorize(session *identity.Session, q document.Query) error {
	if session == nil {
		return shared.ErrUnauthorized
	}
	root, _, _ := strings.Cut(q.Collection, "/")
	if adminCollections[root] && !session.IsAdmin() {
		return shared.Forbidden("collection " + root + " requires the admin role")
	}
	return nil
}
