package query

import (
	"testing"

	"github.com/starford/raido/internal/models"
)

func sampleTemplates() []models.Template {
	return []models.Template{
		{ID: "a", Severity: "critical", Type: "http", Author: []string{"alice"}, Tags: []string{"rce", "apache"}, IsDraft: true},
		{ID: "b", Severity: "low", Type: "http", Author: []string{"bob"}, Tags: []string{"rce"}},
		{ID: "c", Severity: "high", Type: "dns", Author: []string{"alice", "bob"}, Tags: []string{"probe"}, IsNew: true},
	}
}

func ids(ts []models.Template) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_NoFiltersKeepsOrder(t *testing.T) {
	got := Apply(sampleTemplates(), Filters{}, nil)
	if !equal(ids(got), []string{"a", "b", "c"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestApply_SeverityIsUnion(t *testing.T) {
	f := Filters{Severity: map[string]struct{}{"critical": {}, "high": {}}}
	got := Apply(sampleTemplates(), f, nil)
	if !equal(ids(got), []string{"a", "c"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestApply_SingleSeverityScenario(t *testing.T) {
	ts := []models.Template{
		{ID: "a", Severity: "critical"},
		{ID: "b", Severity: "low"},
	}
	got := Apply(ts, Filters{Severity: map[string]struct{}{"critical": {}}}, nil)
	if !equal(ids(got), []string{"a"}) {
		t.Errorf("ids = %v, want [a]", ids(got))
	}
}

func TestApply_TypeExact(t *testing.T) {
	got := Apply(sampleTemplates(), Filters{Type: "dns"}, nil)
	if !equal(ids(got), []string{"c"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestApply_AuthorMembership(t *testing.T) {
	got := Apply(sampleTemplates(), Filters{Author: "bob"}, nil)
	if !equal(ids(got), []string{"b", "c"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestApply_TagsAreConjunctive(t *testing.T) {
	got := Apply(sampleTemplates(), Filters{Tags: []string{"rce", "apache"}}, nil)
	if !equal(ids(got), []string{"a"}) {
		t.Errorf("ids = %v, want only the template carrying both tags", ids(got))
	}
	got = Apply(sampleTemplates(), Filters{Tags: []string{"rce"}}, nil)
	if !equal(ids(got), []string{"a", "b"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestApply_TriState(t *testing.T) {
	got := Apply(sampleTemplates(), Filters{Draft: Require}, nil)
	if !equal(ids(got), []string{"a"}) {
		t.Errorf("Require draft: ids = %v", ids(got))
	}
	got = Apply(sampleTemplates(), Filters{Draft: Exclude}, nil)
	if !equal(ids(got), []string{"b", "c"}) {
		t.Errorf("Exclude draft: ids = %v", ids(got))
	}
	got = Apply(sampleTemplates(), Filters{Draft: Any, New: Require}, nil)
	if !equal(ids(got), []string{"c"}) {
		t.Errorf("Require new: ids = %v", ids(got))
	}
}

func TestApply_FavoritesOnly(t *testing.T) {
	favs := map[string]struct{}{"b": {}}
	got := Apply(sampleTemplates(), Filters{FavoritesOnly: true}, favs)
	if !equal(ids(got), []string{"b"}) {
		t.Errorf("ids = %v", ids(got))
	}
	got = Apply(sampleTemplates(), Filters{FavoritesOnly: true}, nil)
	if len(got) != 0 {
		t.Errorf("no favorites: ids = %v, want none", ids(got))
	}
}

func TestApply_StagesAreConjunctive(t *testing.T) {
	f := Filters{
		Severity: map[string]struct{}{"critical": {}, "low": {}},
		Type:     "http",
		Author:   "alice",
	}
	got := Apply(sampleTemplates(), f, nil)
	// Each survivor must satisfy every constraint independently.
	for _, tm := range got {
		if _, ok := f.Severity[tm.Severity]; !ok {
			t.Errorf("%s fails severity", tm.ID)
		}
		if tm.Type != f.Type {
			t.Errorf("%s fails type", tm.ID)
		}
	}
	if !equal(ids(got), []string{"a"}) {
		t.Errorf("ids = %v", ids(got))
	}
}

func TestFilters_Active(t *testing.T) {
	if (Filters{}).Active() {
		t.Error("empty filters reported active")
	}
	if (Filters{Query: "x"}).Active() {
		t.Error("free-text alone must not count as active")
	}
	if !(Filters{Draft: Exclude}).Active() {
		t.Error("tri-state constraint not reported active")
	}
}
