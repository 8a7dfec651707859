package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRegion     = "region"
	ProfilingLabelCollection = "collection"
	ProfilingLabelRoute      = "route"
)

// RegionSnapshot labels the query run behind each realtime snapshot.
const RegionSnapshot = "realtime_snapshot"

// MaxLabelValueLength caps label values.
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels.
var highCardinalityLabels = map[string]bool{
	"user_id":         true,
	"request_id":      true,
	"trace_id":        true,
	"span_id":         true,
	"session_id":      true,
	"subscription_id": true,
	"document_id":     true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples
// taken inside it can be filtered by label in Pyroscope. Labels with empty
// or high-cardinality keys are skipped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// SnapshotLabels labels a snapshot query by the root of its collection path.
// Sub-collection paths carry document ids, which are not used as labels.
func SnapshotLabels(collection string) map[string]string {
	root, _, _ := strings.Cut(collection, "/")
	return map[string]string{
		ProfilingLabelRegion:     RegionSnapshot,
		ProfilingLabelCollection: root,
	}
}

// sanitizeLabels returns key/value pairs sorted by key.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, k := range keys {
		v := labels[k]
		key := sanitizeLabelKey(k)
		if key == "" || v == "" || highCardinalityLabels[key] {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, key, v)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
