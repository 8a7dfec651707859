// Package activity holds the append-only audit and notification feed.
package activity

import (
	"strings"
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
	"github.com/sparkcode/dashboard/internal/domain/shared"
)

// Type is the severity tag of an activity
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// IsValid checks if the type is a known severity
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return true
	}
	return false
}

// SystemUser is the author of activities without a signed-in user.
const SystemUser = "System"

// FeedLimit caps the feed view to the most recent entries.
const FeedLimit = 15

// Activity is one feed entry. Only Read ever changes after creation.
type Activity struct {
	ID        string
	Message   string
	Type      Type
	User      string
	UserRole  string
	Read      bool
	CreatedAt time.Time
}

// New builds an unread activity. Empty type defaults to info and an empty
// author to System.
func New(message string, typ Type, user, userRole string, now time.Time) (*Activity, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.InvalidInput("activity message cannot be empty")
	}
	if typ == "" {
		typ = TypeInfo
	}
	if !typ.IsValid() {
		return nil, shared.InvalidInput("type must be info, success, warning or error")
	}
	if strings.TrimSpace(user) == "" {
		user = SystemUser
	}
	return &Activity{
		Message:   message,
		Type:      typ,
		User:      user,
		UserRole:  userRole,
		CreatedAt: now,
	}, nil
}

// Fields returns the stored representation.
func (a *Activity) Fields() document.Fields {
	f := document.Fields{
		"message":   a.Message,
		"type":      string(a.Type),
		"user":      a.User,
		"read":      a.Read,
		"createdAt": a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if a.UserRole != "" {
		f["userRole"] = a.UserRole
	}
	return f
}

// FromDocument maps an activity_feed document.
func FromDocument(d document.Document) (*Activity, error) {
	r := document.Read(d)
	a := &Activity{
		ID:        d.ID,
		Message:   r.String("message"),
		Type:      Type(r.OptionalOneOf("type", string(TypeInfo), string(TypeInfo), string(TypeSuccess), string(TypeWarning), string(TypeError))),
		User:      r.OptionalString("user"),
		UserRole:  r.OptionalString("userRole"),
		Read:      r.Bool("read"),
		CreatedAt: r.Time("createdAt", d.CreateTime),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if a.User == "" {
		a.User = SystemUser
	}
	return a, nil
}

// FeedQuery is the capped, most-recent-first feed.
func FeedQuery() document.Query {
	return document.Collection(document.CollectionActivity).
		Order("createdAt", document.Desc).
		Take(FeedLimit)
}

// UnreadQuery selects every unread activity, not just the visible feed.
func UnreadQuery() document.Query {
	return document.Collection(document.CollectionActivity).Where("read", false)
}

// UnreadCount counts unread entries.
func UnreadCount(items []*Activity) int {
	n := 0
	for _, a := range items {
		if !a.Read {
			n++
		}
	}
	return n
}

// MarkAllRead queues a read flip for every unread activity in docs.
func MarkAllRead(docs []document.Document) *document.WriteBatch {
	batch := document.NewBatch()
	for _, d := range docs {
		if read, _ := d.Fields["read"].(bool); read {
			continue
		}
		batch.Update(d.Ref(), document.Fields{"read": true})
	}
	return batch
}
