package listmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/telmora/go-formflow/pkg/schema"
)

func TestParse(t *testing.T) {
	t.Parallel()

	doc := `{
		"occupations": [
			{"label": "Engineer", "value": "eng"},
			{"label": "Nurse", "value": "nrs", "disabled": true}
		],
		"cities": {
			"BJ": [{"label": "Beijing", "value": "beijing"}],
			"SH": [{"label": "Shanghai", "value": "shanghai"}]
		}
	}`

	lm, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	occupations := lm["occupations"]
	if occupations.Cascading() {
		t.Fatal("occupations should be flat")
	}
	wantFlat := []schema.FieldOption{
		{Label: "Engineer", Value: "eng"},
		{Label: "Nurse", Value: "nrs", Disabled: true},
	}
	if diff := cmp.Diff(wantFlat, occupations.Flat); diff != "" {
		t.Fatalf("occupations mismatch (-want +got):\n%s", diff)
	}

	cities := lm["cities"]
	if !cities.Cascading() {
		t.Fatal("cities should cascade")
	}
	if got := cities.Cascade["SH"][0].Label; got != "Shanghai" {
		t.Fatalf("SH city = %q", got)
	}

	if _, err := Parse([]byte(`{"bad": 42}`)); err == nil {
		t.Fatal("Parse accepted a scalar entry")
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("get returns seeded dictionary", func(t *testing.T) {
		t.Parallel()
		lm := ListMap{"occupations": FlatEntry(schema.FieldOption{Label: "Engineer", Value: "eng"})}
		store := NewMemoryStore(lm)
		got := store.Get()
		if len(got["occupations"].Flat) != 1 {
			t.Fatalf("Get = %+v", got)
		}
	})

	t.Run("set replaces wholesale and notifies", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore(ListMap{"a": FlatEntry()})
		notified := 0
		cancel := store.Subscribe(func() { notified++ })
		defer cancel()

		store.Set(ListMap{"b": FlatEntry()})
		if notified != 1 {
			t.Fatalf("notified = %d, want 1", notified)
		}
		got := store.Get()
		if _, stale := got["a"]; stale {
			t.Fatal("replacement must drop previous keys")
		}
		if _, fresh := got["b"]; !fresh {
			t.Fatal("replacement lost the new key")
		}
	})

	t.Run("cancel stops notifications", func(t *testing.T) {
		t.Parallel()
		store := NewMemoryStore()
		notified := 0
		cancel := store.Subscribe(func() { notified++ })
		cancel()
		store.Set(ListMap{})
		if notified != 0 {
			t.Fatalf("notified = %d after cancel", notified)
		}
	})
}
