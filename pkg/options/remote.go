package options

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/telmora/go-formflow/pkg/schema"
)

func (r *Resolver) resolveRemote(ctx context.Context, fieldPath string, field schema.Field, values map[string]any) Resolution {
	parent := firstDependencyValue(field.OptionsDependsOn, values)
	token := field.OptionsURL + "\x00" + parent

	r.mu.Lock()
	cached := r.ensureCache(fieldPath)
	if cached.token == token && !cached.loading {
		out := Resolution{Options: cached.options, Err: cached.err}
		r.mu.Unlock()
		return out
	}
	cached.gen++
	gen := cached.gen
	cached.loading = true
	cached.token = token
	r.mu.Unlock()

	fetched, err := r.fetch(ctx, field.OptionsURL, parent)

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached.gen != gen {
		// a newer resolve superseded this one; discard the response
		return Resolution{Options: cached.options, Loading: cached.loading, Err: cached.err}
	}
	cached.loading = false
	if err != nil {
		// keep the last known options and surface the failure; clearing
		// the token makes the next resolve retry instead of serving the
		// cached error
		cached.err = err.Error()
		cached.token = ""
		return Resolution{Options: cached.options, Err: cached.err}
	}
	cached.options = fetched
	cached.err = ""
	return Resolution{Options: fetched}
}

func (r *Resolver) fetch(ctx context.Context, rawURL, parent string) ([]schema.FieldOption, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("options: parse url: %w", err)
	}
	if parent != "" {
		query := target.Query()
		query.Set(r.paramName, parent)
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("options: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options: fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("options: unexpected status %s", resp.Status)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("options: decode response: %w", err)
	}
	return extractOptions(payload), nil
}

// extractOptions accepts a bare array or an object exposing the array under
// "data", "options", or "list".
func extractOptions(payload any) []schema.FieldOption {
	switch body := payload.(type) {
	case []any:
		return convertOptions(body)
	case map[string]any:
		for _, key := range []string{"data", "options", "list"} {
			if nested, ok := body[key].([]any); ok {
				return convertOptions(nested)
			}
		}
	}
	return nil
}

func convertOptions(items []any) []schema.FieldOption {
	out := make([]schema.FieldOption, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		option := schema.FieldOption{Value: obj["value"]}
		if label, ok := obj["label"].(string); ok {
			option.Label = label
		}
		if disabled, ok := obj["disabled"].(bool); ok {
			option.Disabled = disabled
		}
		if option.Label == "" && option.Value != nil {
			option.Label = stringify(option.Value)
		}
		out = append(out, option)
	}
	return out
}
