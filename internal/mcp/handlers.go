package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/format"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/navigator"
)

// mcpUserID tags history entries written on behalf of MCP clients.
const mcpUserID = "mcp"

func (s *Server) handleAskNavigator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	question = strings.TrimSpace(question)
	if err != nil || question == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}
	switch n := utf8.RuneCountInString(question); {
	case n < navigator.MinMessageLen:
		return mcp.NewToolResultError(fmt.Sprintf("question must be at least %d characters", navigator.MinMessageLen)), nil
	case n > navigator.MaxMessageLen:
		return mcp.NewToolResultError(fmt.Sprintf("question must be at most %d characters, got %d", navigator.MaxMessageLen, n)), nil
	}

	res, err := s.resolver.Resolve(ctx, navigator.Query{
		Message:  question,
		UserID:   mcpUserID,
		Language: lang.Parse(request.GetString("language", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving question: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n[source: %s]", res.Reply, res.Source)), nil
}

func (s *Server) handleGetService(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("service_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: service_id"), nil
	}
	if s.services == nil {
		return mcp.NewToolResultError("service catalog unavailable"), nil
	}

	rec, err := s.services.Service(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No service found for %q. Use list_services to see valid ids.", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading service: %v", err)), nil
	}

	l := lang.Parse(request.GetString("language", ""))
	return mcp.NewToolResultText(format.Service(rec, l)), nil
}

func (s *Server) handleListServices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.services == nil {
		return mcp.NewToolResultError("service catalog unavailable"), nil
	}
	records, err := s.services.Services(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing services: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("The catalog is empty. Run `navigator seed` to load it."), nil
	}

	l := lang.Parse(request.GetString("language", ""))
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s: %s\n", rec.ID, rec.Name.In(l))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListLifeEvents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	l := lang.Parse(request.GetString("language", ""))

	var b strings.Builder
	for _, ev := range s.lifeEvents {
		fmt.Fprintf(&b, "- %s: %s (%d steps)\n", ev.ID, ev.Name.In(l), len(ev.Checklist))
	}
	return mcp.NewToolResultText(b.String()), nil
}
