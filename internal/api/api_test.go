package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/state"
)

const fixtureDoc = `{
	"total": 4,
	"results": [
		{"id": "apache-rce", "name": "Apache Struts RCE", "severity": "critical", "type": "http", "author": "alice", "tags": ["rce", "apache"], "is_draft": true, "updated_at": "2024-01-10T00:00:00Z"},
		{"id": "nginx-leak", "name": "Nginx Info Leak", "severity": "low", "type": "http", "author": "BobAtkins", "tags": ["nginx"], "updated_at": "2024-05-01T00:00:00Z"},
		{"id": "dns-probe", "name": "DNS Probe", "severity": "medium", "type": "dns", "author": ["alice", "carol"], "updated_at": "2024-03-01T00:00:00Z"},
		{"id": "tls-weak", "name": "Weak TLS Config", "severity": "high", "type": "ssl", "author": "carol", "is_new": true, "updated_at": "2024-04-01T00:00:00Z"}
	]
}`

// testEnv builds a service over the fixture catalog plus a router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) (*catalogservice.Service, http.Handler) {
	t.Helper()
	raws, err := catalog.ParseDocument([]byte(fixtureDoc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalogservice.New(catalog.Build(raws, ""), store, nil, "", logger)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doGET(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListTemplates_Defaults(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/templates")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d, body = %s", w.Code, w.Body.String())
	}
	var resp TemplateListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 4 || resp.Page != 1 || resp.TotalPages != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListTemplates_SeverityCSVAndRepeat(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGET(t, router, "/templates?severity=critical,high")
	var resp TemplateListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("csv form: total = %d, want 2", resp.Total)
	}

	w = doGET(t, router, "/templates?severity=critical&severity=high")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("repeat form: total = %d, want 2", resp.Total)
	}
}

func TestListTemplates_TriStateAndTags(t *testing.T) {
	_, router := testEnv(t, "")

	var resp TemplateListResponse
	w := doGET(t, router, "/templates?draft=true")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Templates[0].ID != "apache-rce" {
		t.Errorf("draft=true: %+v", resp)
	}

	w = doGET(t, router, "/templates?draft=false&tags=rce")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 0 {
		t.Errorf("draft=false&tags=rce: total = %d, want 0", resp.Total)
	}

	w = doGET(t, router, "/templates?draft=maybe")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad tri-state = %d, want 400", w.Code)
	}
}

func TestListTemplates_SearchPlusFilter(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/templates?q=apache&severity=critical")
	var resp TemplateListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Templates[0].ID != "apache-rce" {
		t.Errorf("resp = %+v", resp)
	}
	if !resp.Filtered {
		t.Error("narrowed listing must report filtered")
	}
}

func TestListTemplates_AuthorFilterKeepsCase(t *testing.T) {
	_, router := testEnv(t, "")

	// The author filter must accept values exactly as /filters advertises
	// them, mixed case included.
	var filters map[string][]string
	w := doGET(t, router, "/filters")
	_ = json.Unmarshal(w.Body.Bytes(), &filters)
	found := false
	for _, a := range filters["authors"] {
		if a == "BobAtkins" {
			found = true
		}
	}
	if !found {
		t.Fatalf("authors = %v, want BobAtkins advertised", filters["authors"])
	}

	var resp TemplateListResponse
	w = doGET(t, router, "/templates?author=BobAtkins")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Templates[0].ID != "nginx-leak" {
		t.Errorf("author=BobAtkins: %+v", resp)
	}

	// Author comparison is exact, unlike type and severity.
	w = doGET(t, router, "/templates?author=bobatkins")
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 0 {
		t.Errorf("author=bobatkins: total = %d, want 0", resp.Total)
	}
}

func TestListTemplates_InvalidParams(t *testing.T) {
	_, router := testEnv(t, "")
	for _, target := range []string{
		"/templates?per_page=7",
		"/templates?page=abc",
		"/templates?sort=entropy",
		"/templates?order=sideways",
	} {
		if w := doGET(t, router, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, w.Code)
		}
	}
}

func TestListTemplates_Pagination(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/templates?per_page=9&page=99&sort=id&order=asc")
	var resp TemplateListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Page != 1 {
		t.Errorf("page = %d, want clamped to 1", resp.Page)
	}
}

func TestGetTemplate(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGET(t, router, "/templates/dns-probe")
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var tmpl TemplateDetail
	_ = json.Unmarshal(w.Body.Bytes(), &tmpl)
	if tmpl.Name != "DNS Probe" || len(tmpl.Author) != 2 {
		t.Errorf("template = %+v", tmpl)
	}

	if w := doGET(t, router, "/templates/nope"); w.Code != http.StatusNotFound {
		t.Errorf("missing template = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doGET(t, router, "/search?q=apache")
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) == 0 || resp.Results[0].Template.ID != "apache-rce" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := doGET(t, router, "/search"); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["total"].(float64) != 4 {
		t.Errorf("total = %v", resp["total"])
	}
}

func TestFiltersEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/filters")
	if w.Code != http.StatusOK {
		t.Fatalf("filters = %d", w.Code)
	}
	var resp map[string][]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["types"]) != 3 {
		t.Errorf("types = %v", resp["types"])
	}
	if len(resp["authors"]) != 3 {
		t.Errorf("authors = %v", resp["authors"])
	}
}

func TestExportEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	w := doGET(t, router, "/export?type=http")
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	templates := resp["templates"].([]any)
	if len(templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(templates))
	}
	first := templates[0].(map[string]any)
	if _, present := first["status_flags"]; present {
		t.Error("export must strip status_flags")
	}
	if _, present := first["created_at"]; present {
		t.Error("export must strip created_at")
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/favorites/nginx-leak", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body = %s", w.Code, w.Body.String())
	}
	var resp FavoriteToggleResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Favorited || len(resp.Favorites) != 1 {
		t.Errorf("resp = %+v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/favorites/nginx-leak", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Favorited || len(resp.Favorites) != 0 {
		t.Errorf("second toggle: %+v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/favorites/ghost", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d, want 404", w.Code)
	}
}

func TestStateRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]any{"pageSize": 48, "viewMode": "list"})
	req := httptest.NewRequest(http.MethodPut, "/state", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put state = %d, body = %s", w.Code, w.Body.String())
	}

	w2 := doGET(t, router, "/state")
	var st StateResponse
	_ = json.Unmarshal(w2.Body.Bytes(), &st)
	if st.PageSize != 48 || st.ViewMode != "list" {
		t.Errorf("state = %+v", st)
	}
	// Omitted fields keep their previous values.
	if st.SortBy != state.DefaultSortBy {
		t.Errorf("sortBy = %q", st.SortBy)
	}
}

func TestStateRejectsInvalid(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]any{"pageSize": 7})
	req := httptest.NewRequest(http.MethodPut, "/state", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid page size = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/state", bytes.NewReader([]byte("{nope")))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad JSON = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	if w := doGET(t, router, "/templates"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	if w := doGET(t, router, "/templates"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()
	raws, err := catalog.ParseDocument([]byte(fixtureDoc))
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalogservice.New(catalog.Build(raws, ""), nil, nil, "", logger)
	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)
	return NewRouter(svc, authEnabled, token, broker)
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	if w := doGET(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// SSE handler will write 200 and block, so cancel shortly.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}
