// Package document defines the schema-less document model shared by every
// dashboard collection: references, field maps, queries, snapshots, write
// batches and the change feed that drives realtime subscriptions.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Well-known collection names.
const (
	CollectionProjects = "projects"
	CollectionStudents = "students"
	CollectionCourses  = "courses"
	CollectionClients  = "clients"
	CollectionTeam     = "team"
	CollectionActivity = "activity_feed"
	CollectionUsers    = "users"
	CollectionSettings = "settings"
	CollectionConfig   = "config"
	CollectionFinance  = "finance"
)

// Fields is the field map of a document. Values are JSON-compatible scalars,
// slices and nested maps.
type Fields map[string]any

// Clone returns a shallow copy of the field map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// serverTimestamp is a placeholder resolved to the commit time by the store.
type serverTimestamp struct{}

// ServerTimestamp may be used as a field value; the store replaces it with the
// commit time of the write.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp placeholder.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Ref addresses a single document.
type Ref struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// NewRef creates a reference to the document id in collection.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// Path returns the slash separated document path, e.g. "projects/01H../tasks/01J..".
func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

// Validate checks that both the collection path and the id are well formed.
func (r Ref) Validate() error {
	if err := ValidateCollection(r.Collection); err != nil {
		return err
	}
	if r.ID == "" || strings.Contains(r.ID, "/") {
		return fmt.Errorf("invalid document id %q", r.ID)
	}
	return nil
}

// Child returns the path of a sub-collection owned by this document.
func (r Ref) Child(name string) string {
	return r.Path() + "/" + name
}

// ParsePath splits a document path into its reference. Document paths always
// have an even number of segments.
func ParsePath(path string) (Ref, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return Ref{}, fmt.Errorf("invalid document path %q", path)
	}
	ref := Ref{
		Collection: strings.Join(segments[:len(segments)-1], "/"),
		ID:         segments[len(segments)-1],
	}
	return ref, ref.Validate()
}

// ValidateCollection checks a collection path: an odd number of non-empty
// segments, e.g. "projects" or "projects/{id}/tasks".
func ValidateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("collection is required")
	}
	segments := strings.Split(collection, "/")
	if len(segments)%2 != 1 {
		return fmt.Errorf("invalid collection path %q", collection)
	}
	for _, s := range segments {
		if s == "" {
			return fmt.Errorf("invalid collection path %q", collection)
		}
	}
	return nil
}

// NewID returns an opaque, time-sortable document id.
func NewID() string {
	return ulid.Make().String()
}

// Document is a point-in-time copy of a stored document.
type Document struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Fields     Fields    `json:"fields"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// Ref returns the reference of the document.
func (d Document) Ref() Ref {
	return NewRef(d.Collection, d.ID)
}

// Flatten returns the document as id + field spread, the shape pushed to
// realtime clients.
func (d Document) Flatten() map[string]any {
	out := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	return out
}

// Snapshot is the full result of a query at a point in time.
type Snapshot struct {
	Query    Query      `json:"query"`
	Docs     []Document `json:"docs"`
	ReadTime time.Time  `json:"read_time"`
}

// Size returns the number of documents in the snapshot.
func (s Snapshot) Size() int {
	return len(s.Docs)
}

// Empty reports whether the snapshot holds no documents.
func (s Snapshot) Empty() bool {
	return len(s.Docs) == 0
}
