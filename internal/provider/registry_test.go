package provider

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// MockSource is a test source implementation
type MockSource struct {
	name         string
	capabilities Capabilities
	usable       func(Criteria) bool
	searchFunc   func(context.Context, Criteria, int) (Page, error)
}

func (m *MockSource) Name() string               { return m.name }
func (m *MockSource) Description() string        { return "Mock source for testing" }
func (m *MockSource) Capabilities() Capabilities { return m.capabilities }
func (m *MockSource) Usable(c Criteria) bool {
	if m.usable == nil {
		return true
	}
	return m.usable(c)
}
func (m *MockSource) Search(ctx context.Context, c Criteria, page int) (Page, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, c, page)
	}
	return Page{Results: []Movie{}, Page: page}, nil
}

func newMock(name string, usable func(Criteria) bool) *MockSource {
	return &MockSource{
		name:         name,
		capabilities: Capabilities{TitleSearch: true},
		usable:       usable,
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	mock := newMock("test", nil)

	if err := registry.Register("test", mock, 100); err != nil {
		t.Errorf("Register() error = %v, want nil", err)
	}

	if err := registry.Register("test", mock, 100); err == nil {
		t.Error("Register() expected error for duplicate, got nil")
	}

	if !registry.IsEnabled("test") {
		t.Error("IsEnabled(test) = false, want true after Register")
	}
}

func TestRegistry_RegisterRejectsEmptyCapabilities(t *testing.T) {
	registry := NewRegistry()
	mock := &MockSource{name: "broken"}

	if err := registry.Register("broken", mock, 1); err == nil {
		t.Fatal("Register() expected error for source with no capabilities")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	registry.Register("test", newMock("test", nil), 100)

	p, exists := registry.Get("test")
	if !exists {
		t.Error("Get() exists = false, want true")
	}
	if p == nil {
		t.Error("Get() source = nil, want non-nil")
	}

	if _, exists = registry.Get("nonexistent"); exists {
		t.Error("Get() exists = true, want false")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	registry.Register("low", newMock("low", nil), 50)
	registry.Register("high", newMock("high", nil), 100)
	registry.Register("mid", newMock("mid", nil), 75)

	want := []string{"high", "mid", "low"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Select(t *testing.T) {
	withQuery := func(c Criteria) bool { return c.Query != "" }
	never := func(Criteria) bool { return false }

	tests := []struct {
		name     string
		criteria Criteria
		setup    func(*Registry)
		want     string
	}{
		{
			name:     "highest usable wins",
			criteria: Criteria{Query: "heat"},
			setup: func(r *Registry) {
				r.Register("tmdb", newMock("tmdb", nil), 100)
				r.Register("omdb", newMock("omdb", withQuery), 90)
				r.Register("sample", newMock("sample", nil), 0)
			},
			want: "tmdb",
		},
		{
			name:     "skips unusable source",
			criteria: Criteria{Query: "heat"},
			setup: func(r *Registry) {
				r.Register("tmdb", newMock("tmdb", never), 100)
				r.Register("omdb", newMock("omdb", withQuery), 90)
				r.Register("sample", newMock("sample", nil), 0)
			},
			want: "omdb",
		},
		{
			name:     "query dependent source skipped without query",
			criteria: Criteria{},
			setup: func(r *Registry) {
				r.Register("tmdb", newMock("tmdb", never), 100)
				r.Register("omdb", newMock("omdb", withQuery), 90)
				r.Register("sample", newMock("sample", nil), 0)
			},
			want: "sample",
		},
		{
			name:     "disabled source skipped",
			criteria: Criteria{Query: "heat"},
			setup: func(r *Registry) {
				r.Register("tmdb", newMock("tmdb", nil), 100)
				r.Register("sample", newMock("sample", nil), 0)
				r.Disable("tmdb")
			},
			want: "sample",
		},
		{
			name:     "nothing usable",
			criteria: Criteria{},
			setup: func(r *Registry) {
				r.Register("tmdb", newMock("tmdb", never), 100)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			tt.setup(registry)

			got := ""
			if source, ok := registry.Select(tt.criteria); ok {
				got = source.Name()
			}
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry_EnableUnknown(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Enable("nonexistent"); err == nil {
		t.Error("Enable() expected error for nonexistent source, got nil")
	}
	if err := registry.Disable("nonexistent"); err == nil {
		t.Error("Disable() expected error for nonexistent source, got nil")
	}
}
