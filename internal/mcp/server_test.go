package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/navigator"
)

// stubResolver records the last query and returns a canned result.
type stubResolver struct {
	last navigator.Query
	res  navigator.Result
	err  error
}

func (r *stubResolver) Resolve(_ context.Context, q navigator.Query) (navigator.Result, error) {
	r.last = q
	return r.res, r.err
}

// failingSource fails every lookup.
type failingSource struct{}

func (failingSource) Services(context.Context) ([]catalog.ServiceRecord, error) {
	return nil, errors.New("disk I/O error")
}

func (failingSource) Service(context.Context, string) (*catalog.ServiceRecord, error) {
	return nil, errors.New("disk I/O error")
}

func newTestServer(r Resolver) *Server {
	return NewServer(r, catalog.NewLocal(catalog.LocalServices()))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestNewServer(t *testing.T) {
	s := newTestServer(&stubResolver{})
	if s.mcp == nil {
		t.Fatal("expected MCP server to be initialized")
	}
	if len(s.lifeEvents) == 0 {
		t.Error("expected life events to be loaded")
	}
}

func TestHandleAskNavigator(t *testing.T) {
	resolver := &stubResolver{res: navigator.Result{Reply: "Visit the Akshaya centre.", Source: "catalog"}}
	s := newTestServer(resolver)

	t.Run("valid question", func(t *testing.T) {
		result, err := s.handleAskNavigator(context.Background(), callRequest(map[string]any{
			"question": "How do I update my Aadhaar address?",
			"language": "ml",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected error result: %s", extractText(result))
		}
		text := extractText(result)
		if !strings.HasPrefix(text, "Visit the Akshaya centre.") || !strings.HasSuffix(text, "[source: catalog]") {
			t.Errorf("unexpected reply %q", text)
		}
		if resolver.last.Language != lang.Malayalam || resolver.last.UserID != mcpUserID {
			t.Errorf("unexpected query %+v", resolver.last)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		result, err := s.handleAskNavigator(context.Background(), callRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error result for missing question")
		}
	})

	t.Run("blank question", func(t *testing.T) {
		result, _ := s.handleAskNavigator(context.Background(), callRequest(map[string]any{"question": "   "}))
		if !result.IsError {
			t.Error("expected error result for blank question")
		}
	})

	t.Run("length limits", func(t *testing.T) {
		resolver.last = navigator.Query{}
		for _, q := range []string{" a ", strings.Repeat("ആ", navigator.MaxMessageLen+1)} {
			result, err := s.handleAskNavigator(context.Background(), callRequest(map[string]any{"question": q}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected error result for %d-rune question", len([]rune(q)))
			}
		}
		if resolver.last.Message != "" {
			t.Errorf("resolver called with %q", resolver.last.Message)
		}

		result, _ := s.handleAskNavigator(context.Background(), callRequest(map[string]any{"question": "  " + strings.Repeat("ആ", navigator.MaxMessageLen) + "  "}))
		if result.IsError {
			t.Fatalf("unexpected error result: %s", extractText(result))
		}
		if got := len([]rune(resolver.last.Message)); got != navigator.MaxMessageLen {
			t.Errorf("resolver got %d runes, want trimmed %d", got, navigator.MaxMessageLen)
		}
	})
}

func TestHandleAskNavigatorResolverError(t *testing.T) {
	s := newTestServer(&stubResolver{err: errors.New("matching service: disk I/O error")})

	result, err := s.handleAskNavigator(context.Background(), callRequest(map[string]any{"question": "ration card"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(extractText(result), "disk I/O error") {
		t.Errorf("expected resolver error, got %q", extractText(result))
	}
}

func TestHandleGetService(t *testing.T) {
	s := newTestServer(&stubResolver{})

	t.Run("english", func(t *testing.T) {
		result, err := s.handleGetService(context.Background(), callRequest(map[string]any{"service_id": "aadhaar_address_update"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected error result: %s", extractText(result))
		}
		if !strings.HasPrefix(extractText(result), "📄 **Aadhaar Address Update**") {
			t.Errorf("unexpected service card %q", extractText(result))
		}
	})

	t.Run("malayalam", func(t *testing.T) {
		result, _ := s.handleGetService(context.Background(), callRequest(map[string]any{
			"service_id": "aadhaar_address_update",
			"language":   "ml",
		}))
		if !strings.Contains(extractText(result), "ആധാർ വിലാസം മാറ്റൽ") {
			t.Errorf("expected Malayalam name, got %q", extractText(result))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		result, _ := s.handleGetService(context.Background(), callRequest(map[string]any{"service_id": "passport"}))
		if !result.IsError || !strings.Contains(extractText(result), "list_services") {
			t.Errorf("expected not-found error, got %q", extractText(result))
		}
	})

	t.Run("missing id", func(t *testing.T) {
		result, _ := s.handleGetService(context.Background(), callRequest(map[string]any{}))
		if !result.IsError {
			t.Error("expected error result for missing service_id")
		}
	})
}

func TestHandleGetServiceWithoutCatalog(t *testing.T) {
	s := NewServer(&stubResolver{}, nil)

	result, _ := s.handleGetService(context.Background(), callRequest(map[string]any{"service_id": "pan_card"}))
	if !result.IsError {
		t.Error("expected error when catalog is missing")
	}
	result, _ = s.handleListServices(context.Background(), callRequest(nil))
	if !result.IsError {
		t.Error("expected error when catalog is missing")
	}
}

func TestHandleListServices(t *testing.T) {
	s := newTestServer(&stubResolver{})

	result, err := s.handleListServices(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := extractText(result)
	if got, want := strings.Count(text, "\n"), len(catalog.LocalServices()); got != want {
		t.Errorf("expected %d services, got %d", want, got)
	}
	if !strings.Contains(text, "- pan_card: ") {
		t.Errorf("expected pan_card entry, got %q", text)
	}
}

func TestHandleListServicesSourceError(t *testing.T) {
	s := NewServer(&stubResolver{}, failingSource{})

	result, _ := s.handleListServices(context.Background(), callRequest(nil))
	if !result.IsError || !strings.Contains(extractText(result), "disk I/O error") {
		t.Errorf("expected source error, got %q", extractText(result))
	}
}

func TestHandleListLifeEvents(t *testing.T) {
	s := newTestServer(&stubResolver{})

	result, err := s.handleListLifeEvents(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := extractText(result)
	if !strings.Contains(text, "- death: Death of a Family Member (7 steps)") {
		t.Errorf("expected death event, got %q", text)
	}
	if got := strings.Count(text, "\n"); got != len(catalog.LifeEvents()) {
		t.Errorf("expected %d events, got %d", len(catalog.LifeEvents()), got)
	}

	ml, _ := s.handleListLifeEvents(context.Background(), callRequest(map[string]any{"language": "ml"}))
	if !strings.Contains(extractText(ml), "കുടുംബത്തിൽ മരണം") {
		t.Errorf("expected Malayalam names, got %q", extractText(ml))
	}
}
