// Package loader fetches form schema documents from the local filesystem, an
// fs.FS, or an HTTP endpoint, accepting JSON or YAML on every path.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/telmora/go-formflow/pkg/listmap"
	"github.com/telmora/go-formflow/pkg/schema"
)

// maxDocumentSize bounds remote schema payloads.
const maxDocumentSize = 4 << 20

// Option customises a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the client used by FromURL.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithHeader adds a header to every remote request, e.g. an Authorization
// token.
func WithHeader(key, value string) Option {
	return func(l *Loader) {
		l.headers[key] = value
	}
}

// Loader resolves schema documents from heterogeneous sources.
type Loader struct {
	client  *http.Client
	headers map[string]string
}

// New constructs a Loader with http.DefaultClient.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:  http.DefaultClient,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// FromBytes parses a schema document, sniffing YAML when the name carries a
// .yaml/.yml extension or the payload does not start like JSON.
func (l *Loader) FromBytes(name string, data []byte) (*schema.FormSchema, error) {
	normalized, err := normalize(name, data)
	if err != nil {
		return nil, err
	}
	return schema.Parse(normalized)
}

// FromFile reads a schema document from the local filesystem.
func (l *Loader) FromFile(path string) (*schema.FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}
	return l.FromBytes(path, data)
}

// FromFS reads a schema document from an fs.FS, e.g. an embed.FS.
func (l *Loader) FromFS(fsys fs.FS, path string) (*schema.FormSchema, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}
	return l.FromBytes(path, data)
}

// FromURL fetches a schema document over HTTP.
func (l *Loader) FromURL(ctx context.Context, rawURL string) (*schema.FormSchema, error) {
	data, err := l.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return l.FromBytes(rawURL, data)
}

// ListMapFromFile reads a shared option dictionary from the local
// filesystem.
func (l *Loader) ListMapFromFile(path string) (listmap.ListMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}
	normalized, err := normalize(path, data)
	if err != nil {
		return nil, err
	}
	return listmap.Parse(normalized)
}

// ListMapFromURL fetches a shared option dictionary over HTTP.
func (l *Loader) ListMapFromURL(ctx context.Context, rawURL string) (listmap.ListMap, error) {
	data, err := l.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	normalized, err := normalize(rawURL, data)
	if err != nil {
		return nil, err
	}
	return listmap.Parse(normalized)
}

func (l *Loader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %q: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: fetch %q: unexpected status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("loader: read body: %w", err)
	}
	return data, nil
}

// normalize converts YAML documents to JSON so the schema package keeps a
// single decode path with its custom unmarshalers.
func normalize(name string, data []byte) ([]byte, error) {
	if !looksYAML(name, data) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: parse yaml: %w", err)
	}
	converted, err := json.Marshal(stringifyKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("loader: convert yaml: %w", err)
	}
	return converted, nil
}

func looksYAML(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(strings.SplitN(name, "?", 2)[0])) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	trimmed := strings.TrimSpace(string(data))
	return trimmed != "" && trimmed[0] != '{' && trimmed[0] != '['
}

// stringifyKeys rewrites yaml.v3's map[string]any trees recursively so the
// result marshals cleanly to JSON even when nested values came back as
// map[any]any from legacy documents.
func stringifyKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[key] = stringifyKeys(nested)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[fmt.Sprintf("%v", key)] = stringifyKeys(nested)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, nested := range typed {
			out[idx] = stringifyKeys(nested)
		}
		return out
	default:
		return value
	}
}
