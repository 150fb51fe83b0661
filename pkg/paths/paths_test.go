package paths

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	if got := Join("a", "b", "c"); got != "a.b.c" {
		t.Fatalf("Join = %q, want %q", got, "a.b.c")
	}
	if got := Join("", "address", ""); got != "address" {
		t.Fatalf("Join = %q, want %q", got, "address")
	}
	if got := Index("contacts", 2); got != "contacts.2" {
		t.Fatalf("Index = %q, want %q", got, "contacts.2")
	}
	if got := Index("", 0); got != "0" {
		t.Fatalf("Index = %q, want %q", got, "0")
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"name": "Ada",
		"address": map[string]any{
			"city": "London",
		},
		"contacts": []any{
			map[string]any{"phone": "123"},
			map[string]any{"phone": "456"},
		},
		"a.b": "flattened",
	}

	tests := []struct {
		name   string
		path   string
		want   any
		wantOK bool
	}{
		{name: "top level", path: "name", want: "Ada", wantOK: true},
		{name: "nested map", path: "address.city", want: "London", wantOK: true},
		{name: "slice element", path: "contacts.1.phone", want: "456", wantOK: true},
		{name: "flattened key wins", path: "a.b", want: "flattened", wantOK: true},
		{name: "missing leaf", path: "address.zip", wantOK: false},
		{name: "missing branch", path: "employer.name", wantOK: false},
		{name: "index out of range", path: "contacts.5.phone", wantOK: false},
		{name: "non-numeric index", path: "contacts.first.phone", wantOK: false},
		{name: "traversal through scalar", path: "name.length", wantOK: false},
		{name: "empty path", path: "", wantOK: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Get(values, tc.path)
			if ok != tc.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tc.path, ok, tc.wantOK)
			}
			if ok && !cmp.Equal(got, tc.want) {
				t.Fatalf("Get(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	t.Parallel()

	t.Run("creates intermediate maps", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{}
		if !Set(values, "address.city", "Paris") {
			t.Fatal("Set returned false")
		}
		want := map[string]any{"address": map[string]any{"city": "Paris"}}
		if diff := cmp.Diff(want, values); diff != "" {
			t.Fatalf("values mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("appends one past slice end", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"contacts": []any{map[string]any{"phone": "123"}}}
		if !Set(values, "contacts.1.phone", "456") {
			t.Fatal("Set returned false")
		}
		got, ok := Get(values, "contacts.1.phone")
		if !ok || got != "456" {
			t.Fatalf("Get after append = %v, %v", got, ok)
		}
	})

	t.Run("rejects sparse slice index", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"contacts": []any{}}
		if Set(values, "contacts.3.phone", "x") {
			t.Fatal("Set accepted an index past append position")
		}
	})

	t.Run("creates slice for numeric segment", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{}
		if !Set(values, "tags.0", "go") {
			t.Fatal("Set returned false")
		}
		got, ok := Get(values, "tags.0")
		if !ok || got != "go" {
			t.Fatalf("Get = %v, %v", got, ok)
		}
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"name": "Ada"}
		if !Set(values, "name", "Grace") {
			t.Fatal("Set returned false")
		}
		if values["name"] != "Grace" {
			t.Fatalf("name = %v", values["name"])
		}
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("removes map key", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"address": map[string]any{"city": "Paris", "zip": "75001"}}
		if !Delete(values, "address.zip") {
			t.Fatal("Delete returned false")
		}
		if _, ok := Get(values, "address.zip"); ok {
			t.Fatal("zip still present")
		}
	})

	t.Run("renumbers slice elements", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"contacts": []any{"a", "b", "c"}}
		if !Delete(values, "contacts.1") {
			t.Fatal("Delete returned false")
		}
		got, _ := Get(values, "contacts")
		want := []any{"a", "c"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("contacts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		values := map[string]any{"name": "Ada"}
		if Delete(values, "employer.name") {
			t.Fatal("Delete reported success for a missing path")
		}
	})
}
