// Package options resolves the selectable choices for choice-type fields.
// Sources, in strict precedence order: a keyed lookup in the shared listmap
// dictionary (optionally cascading on a parent field's value), a remote URL,
// and finally the field's static option list.
package options

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/telmora/go-formflow/pkg/listmap"
	"github.com/telmora/go-formflow/pkg/paths"
	"github.com/telmora/go-formflow/pkg/schema"
)

const defaultParentParam = "parentValue"

// Resolution is the outcome of resolving one field's options. On remote
// failure Err carries the message and Options keeps the last known list.
type Resolution struct {
	Options []schema.FieldOption
	Loading bool
	Err     string
}

// Option customises the resolver.
type Option func(*Resolver)

// WithStore injects the shared dictionary store used for optionsKey lookups.
func WithStore(store listmap.Store) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithHTTPClient overrides the client used for optionsUrl fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithParentParam renames the query parameter carrying the dependency value
// on remote fetches.
func WithParentParam(name string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.paramName = trimmed
		}
	}
}

// Resolver computes option lists and caches the last resolution per field
// path. It owns no other persistent state beyond the store subscription,
// released by Close.
type Resolver struct {
	store      listmap.Store
	client     *http.Client
	paramName  string
	storeUnsub func()

	mu    sync.Mutex
	cache map[string]*fieldCache
}

type fieldCache struct {
	options []schema.FieldOption
	err     string
	loading bool
	// token identifies the dependency snapshot the cached options belong
	// to; gen discards responses superseded by a newer resolve.
	token string
	gen   uint64
	keyed bool
}

// New constructs a resolver. When a store is supplied, the resolver
// subscribes to replacement notifications and drops keyed caches so the next
// read re-resolves against the new dictionary.
func New(options ...Option) *Resolver {
	r := &Resolver{
		client:    http.DefaultClient,
		paramName: defaultParentParam,
		cache:     make(map[string]*fieldCache),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.store != nil {
		r.storeUnsub = r.store.Subscribe(r.invalidateKeyed)
	}
	return r
}

// Close releases the dictionary-store subscription. Resolvers are
// per-session while the store is process-wide, so a session that ends
// without Close would stay in the store's subscriber list.
func (r *Resolver) Close() {
	if r.storeUnsub != nil {
		r.storeUnsub()
		r.storeUnsub = nil
	}
}

// Resolve computes the current option list for a field. Keyed and static
// sources resolve synchronously; URL sources fetch over HTTP honoring ctx,
// keep stale options on failure, and discard responses superseded by a newer
// dependency value.
func (r *Resolver) Resolve(ctx context.Context, fieldPath string, field schema.Field, values map[string]any) Resolution {
	switch {
	case field.OptionsKey != "":
		return r.resolveKeyed(fieldPath, field, values)
	case field.OptionsURL != "":
		return r.resolveRemote(ctx, fieldPath, field, values)
	default:
		return Resolution{Options: field.Options}
	}
}

// Peek returns the cached resolution for a field without triggering any
// lookup or fetch.
func (r *Resolver) Peek(fieldPath string) (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[fieldPath]
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Options: entry.options, Loading: entry.loading, Err: entry.err}, true
}

func (r *Resolver) resolveKeyed(fieldPath string, field schema.Field, values map[string]any) Resolution {
	var entry listmap.Entry
	if r.store != nil {
		if lm := r.store.Get(); lm != nil {
			entry = lm[field.OptionsKey]
		}
	}

	var resolved []schema.FieldOption
	switch {
	case entry.Cascading():
		parent := firstDependencyValue(field.OptionsDependsOn, values)
		if len(field.OptionsDependsOn) > 0 && parent == "" {
			// parent not yet chosen: empty list, no fallthrough
			resolved = nil
		} else {
			resolved = entry.Cascade[parent]
		}
	default:
		// flat lists ignore any declared dependency; absent keys
		// resolve to an empty list
		resolved = entry.Flat
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cached := r.ensureCache(fieldPath)
	cached.keyed = true
	cached.options = resolved
	cached.err = ""
	cached.loading = false
	return Resolution{Options: resolved}
}

// firstDependencyValue returns the stringified value of the first watched
// dependency field that currently holds a non-empty value.
func firstDependencyValue(dependsOn []string, values map[string]any) string {
	for _, dep := range dependsOn {
		value, ok := paths.Get(values, dep)
		if !ok || emptyish(value) {
			continue
		}
		return stringify(value)
	}
	return ""
}

func emptyish(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// integral floats print without the trailing ".0" JSON decoding
		// would otherwise produce via %v
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func (r *Resolver) ensureCache(fieldPath string) *fieldCache {
	entry, ok := r.cache[fieldPath]
	if !ok {
		entry = &fieldCache{}
		r.cache[fieldPath] = entry
	}
	return entry
}

func (r *Resolver) invalidateKeyed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, entry := range r.cache {
		if entry.keyed {
			delete(r.cache, path)
		}
	}
}

// Invalidate drops the cached resolution for a field, forcing the next
// Resolve to recompute.
func (r *Resolver) Invalidate(fieldPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, fieldPath)
}
