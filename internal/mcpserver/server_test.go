package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/catalogservice"
)

const fixtureDoc = `{
	"total": 3,
	"results": [
		{"id": "apache-rce", "name": "Apache Struts RCE", "severity": "critical", "type": "http", "author": "alice", "tags": ["rce", "apache"]},
		{"id": "nginx-leak", "name": "Nginx Info Leak", "severity": "low", "type": "http", "author": "BobAtkins"},
		{"id": "dns-probe", "name": "DNS Probe", "severity": "medium", "type": "dns", "author": "alice"}
	]
}`

func testServer(t *testing.T) *Server {
	t.Helper()
	raws, err := catalog.ParseDocument([]byte(fixtureDoc))
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalogservice.New(catalog.Build(raws, ""), nil, nil, "", logger)
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_templates":
		result, err = srv.searchTemplates(ctx, req)
	case "get_template":
		result, err = srv.getTemplate(ctx, req)
	case "list_templates":
		result, err = srv.listTemplates(ctx, req)
	case "catalog_stats":
		result, err = srv.catalogStats(ctx, req)
	case "get_query_contract":
		result, err = srv.getQueryContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchTemplates(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_templates", map[string]interface{}{"query": "apache"})
	text := resultText(r)
	if !strings.Contains(text, "apache-rce") {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_templates", map[string]interface{}{"query": "zzzzzz"})
	if resultText(r) != "no templates matched" {
		t.Errorf("no-hit result = %q", resultText(r))
	}
}

func TestGetTemplate(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_template", map[string]interface{}{"id": "dns-probe"})
	if !strings.Contains(resultText(r), "DNS Probe") {
		t.Errorf("get result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_template", map[string]interface{}{"id": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing template")
	}
}

func TestListTemplatesFiltered(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_templates", map[string]interface{}{
		"severity": "critical,medium",
		"author":   "alice",
	})
	text := resultText(r)
	if !strings.Contains(text, "apache-rce") || !strings.Contains(text, "dns-probe") {
		t.Errorf("list result = %q", text)
	}
	if strings.Contains(text, "nginx-leak") {
		t.Error("filter leaked nginx-leak")
	}
}

func TestListTemplatesMixedCaseAuthor(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_templates", map[string]interface{}{"author": "BobAtkins"})
	text := resultText(r)
	if !strings.Contains(text, "nginx-leak") {
		t.Errorf("list result = %q, want nginx-leak for its exact author", text)
	}
	if strings.Contains(text, "apache-rce") || strings.Contains(text, "dns-probe") {
		t.Error("author filter leaked other templates")
	}
}

func TestListTemplatesRejectsBadSort(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_templates", map[string]interface{}{"sort": "entropy"})
	if !r.IsError {
		t.Error("expected error for unknown sort key")
	}
}

func TestCatalogStats(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "catalog_stats", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"total": 3`) {
		t.Errorf("stats = %q", text)
	}
}

func TestQueryContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_query_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "search -> filter -> sort -> paginate") {
		t.Error("contract text missing pipeline order")
	}
	if !strings.Contains(resultText(r), "created_at (default)") {
		t.Error("contract must name created_at as the default sort key")
	}
}
