// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido catalog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/state"
)

// Server wraps the MCP server with Raido catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalogservice.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *catalogservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_templates",
		mcp.WithDescription("Fuzzy search across template names, descriptions, ids, tags, and authors. Returns ranked hits with scores (lower is better)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string (minimum 3 characters)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchTemplates)

	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Fetch one template by its id, including raw content and derived status flags."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template id (e.g. apache-struts-rce)")),
	), s.getTemplate)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List templates with optional filters. Read the raido://query-contract resource for parameter semantics."),
		mcp.WithString("severity", mcp.Description("Comma-separated severities (critical, high, medium, low, info, unknown)")),
		mcp.WithString("type", mcp.Description("Exact template type (e.g. http, dns)")),
		mcp.WithString("author", mcp.Description("Author name; matches templates listing this author")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; a template must carry all of them")),
		mcp.WithString("sort", mcp.Description("Sort key: created_at, updated_at, name, id, severity, author, type")),
		mcp.WithString("order", mcp.Description("Sort order: asc or desc")),
		mcp.WithNumber("page", mcp.Description("Page number (1-based, clamped to the last page)")),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("catalog_stats",
		mcp.WithDescription("Catalog-wide statistics: total templates, severity breakdown with percentages, top authors."),
	), s.catalogStats)

	s.mcp.AddTool(mcp.NewTool("get_query_contract",
		mcp.WithDescription("Returns the canonical description of the query pipeline. "+
			"Call this before composing list_templates filters."),
	), s.getQueryContract)

	// Resource: query pipeline contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://query-contract", "Query Pipeline Contract",
			mcp.WithResourceDescription("How search, filter, sort, and pagination compose."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQueryContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)
	hits := s.svc.Search(q, limit)
	if len(hits) == 0 {
		return mcp.NewToolResultText("no templates matched"), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := catalogservice.ListParams{}

	if sevs := req.GetString("severity", ""); sevs != "" {
		p.Filters.Severity = make(map[string]struct{})
		for _, sev := range strings.Split(sevs, ",") {
			p.Filters.Severity[strings.ToLower(strings.TrimSpace(sev))] = struct{}{}
		}
	}
	p.Filters.Type = strings.ToLower(req.GetString("type", ""))
	p.Filters.Author = req.GetString("author", "")
	if tags := req.GetString("tags", ""); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			p.Filters.Tags = append(p.Filters.Tags, strings.ToLower(strings.TrimSpace(tag)))
		}
	}
	if sortBy := req.GetString("sort", ""); sortBy != "" {
		if !state.ValidSortBy(sortBy) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown sort key: %s", sortBy)), nil
		}
		p.SortBy = sortBy
	}
	if order := req.GetString("order", ""); order != "" {
		if !state.ValidSortOrder(order) {
			return mcp.NewToolResultError(fmt.Sprintf("order must be asc or desc, got: %s", order)), nil
		}
		p.Order = order
	}
	p.Page = req.GetInt("page", 1)

	res := s.svc.List(p)
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) catalogStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Stats(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getQueryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(QueryContract), nil
}

func (s *Server) readQueryContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://query-contract",
			MIMEType: "text/markdown",
			Text:     QueryContract,
		},
	}, nil
}
