package search

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/models"
)

func tmpl(id, name string) models.Template {
	return models.Template{ID: id, Name: name}
}

func TestQuery_MinimumLengthGuard(t *testing.T) {
	ix := Build([]models.Template{tmpl("a", "apache")})
	if hits := ix.Query("ap"); hits != nil {
		t.Errorf("2-char query returned %v, want nil", hits)
	}
	if hits := ix.Query("  a  "); hits != nil {
		t.Errorf("padded 1-char query returned %v, want nil", hits)
	}
	if hits := ix.Query("apa"); len(hits) != 1 {
		t.Errorf("3-char query returned %v, want one hit", hits)
	}
}

func TestQuery_ExactMatchScoresZero(t *testing.T) {
	ix := Build([]models.Template{tmpl("a", "apache takeover")})
	hits := ix.Query("apache")
	if len(hits) != 1 {
		t.Fatalf("hits = %v", hits)
	}
	if hits[0].Score != 0 {
		t.Errorf("score = %v, want 0 for exact match at field start", hits[0].Score)
	}
}

func TestQuery_CaseInsensitive(t *testing.T) {
	ix := Build([]models.Template{tmpl("a", "Apache Takeover")})
	if hits := ix.Query("APACHE"); len(hits) != 1 {
		t.Errorf("hits = %v, want one", hits)
	}
}

func TestQuery_ToleratesTypos(t *testing.T) {
	ix := Build([]models.Template{tmpl("a", "apache server")})
	if hits := ix.Query("apche"); len(hits) != 1 {
		t.Errorf("one-deletion query missed: %v", hits)
	}
	if hits := ix.Query("apaxhe"); len(hits) != 1 {
		t.Errorf("one-substitution query missed: %v", hits)
	}
}

func TestQuery_RejectsBeyondThreshold(t *testing.T) {
	ix := Build([]models.Template{tmpl("a", "apache server")})
	if hits := ix.Query("zzzzzz"); len(hits) != 0 {
		t.Errorf("unrelated query matched: %v", hits)
	}
}

func TestQuery_EarlierMatchScoresBetter(t *testing.T) {
	ix := Build([]models.Template{
		tmpl("late", "aim well at the target"),
		tmpl("early", "target practice"),
	})
	hits := ix.Query("target")
	if len(hits) != 2 {
		t.Fatalf("hits = %v", hits)
	}
	if hits[0].Index != 1 {
		t.Errorf("first hit = index %d, want 1 (match at field start)", hits[0].Index)
	}
}

func TestQuery_FarMatchExcluded(t *testing.T) {
	// An exact occurrence more than 40 characters in misses the threshold.
	ix := Build([]models.Template{tmpl("a", strings.Repeat("x", 60)+" apache")})
	if hits := ix.Query("apache"); len(hits) != 0 {
		t.Errorf("far match returned %v, want none", hits)
	}
}

func TestQuery_NameOutweighsRawContent(t *testing.T) {
	heavy := tmpl("name-hit", "wordpress scan")
	light := models.Template{ID: "raw-hit", Name: "other", RawContent: "uses wordpress api"}
	ix := Build([]models.Template{light, heavy})
	hits := ix.Query("wordpress")
	if len(hits) != 2 {
		t.Fatalf("hits = %v", hits)
	}
	if hits[0].Index != 1 {
		t.Errorf("first hit = index %d, want the name match", hits[0].Index)
	}
}

func TestQuery_MatchesTagsAndAuthor(t *testing.T) {
	ix := Build([]models.Template{{
		ID:     "t",
		Name:   "something",
		Tags:   []string{"injection"},
		Author: []string{"geeknik"},
	}})
	if hits := ix.Query("injection"); len(hits) != 1 {
		t.Errorf("tag query = %v", hits)
	}
	if hits := ix.Query("geeknik"); len(hits) != 1 {
		t.Errorf("author query = %v", hits)
	}
}

func TestQuery_TiesKeepCatalogOrder(t *testing.T) {
	ix := Build([]models.Template{
		tmpl("first", "duplicate name"),
		tmpl("second", "duplicate name"),
	})
	hits := ix.Query("duplicate")
	if len(hits) != 2 {
		t.Fatalf("hits = %v", hits)
	}
	if hits[0].Index != 0 || hits[1].Index != 1 {
		t.Errorf("tie order = %v, want catalog order", hits)
	}
}

func TestBitapScore_LongPatternFallsBack(t *testing.T) {
	pattern := []rune(strings.Repeat("a", 70))
	text := []rune(strings.Repeat("a", 80))
	score, ok := bitapScore(pattern, text)
	if !ok || score != 0 {
		t.Errorf("long exact prefix = (%v, %v), want (0, true)", score, ok)
	}
	if _, ok := bitapScore(pattern, []rune("nope")); ok {
		t.Error("long pattern matched unrelated text")
	}
}
