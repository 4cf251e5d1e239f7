package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/pageservice"
	"github.com/starford/portal/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	return New(env.Service), env
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_pages":
		result, err = srv.listPages(ctx, req)
	case "get_page":
		result, err = srv.getPage(ctx, req)
	case "create_page":
		result, err = srv.createPage(ctx, req)
	case "delete_page":
		result, err = srv.deletePage(ctx, req)
	case "save_page":
		result, err = srv.savePage(ctx, req)
	case "edit_page":
		result, err = srv.editPage(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
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

func TestListPages(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_pages", map[string]any{})
	if r.IsError {
		t.Fatalf("list_pages error: %s", resultText(r))
	}
	var pages []document.Page
	if err := json.Unmarshal([]byte(resultText(r)), &pages); err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Slug != "home" || pages[0].Document != nil {
		t.Errorf("pages = %+v", pages)
	}
}

func TestCreateGetDeletePage(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_page", map[string]any{"slug": "Docs", "title": "文档"})
	if text := resultText(r); text != "created: docs" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "get_page", map[string]any{"slug": "docs"})
	var page document.Page
	if err := json.Unmarshal([]byte(resultText(r)), &page); err != nil {
		t.Fatalf("decode page: %v (%s)", err, resultText(r))
	}
	if page.Title != "文档" || page.Document == nil || page.Document.Hero.Title != "文档" {
		t.Errorf("page = %+v", page)
	}

	r = callTool(t, srv, "delete_page", map[string]any{"slug": "docs"})
	if r.IsError {
		t.Fatalf("delete error: %s", resultText(r))
	}
	r = callTool(t, srv, "delete_page", map[string]any{"slug": "home"})
	if !r.IsError || resultText(r) != pageservice.MsgLastPage {
		t.Errorf("deleting last page = %q", resultText(r))
	}
}

func TestCreatePage_BadSlug(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_page", map[string]any{"slug": "BAD SLUG!"})
	if !r.IsError || resultText(r) != pageservice.MsgBadSlug {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestGetPageMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_page", map[string]any{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing page")
	}
}

func TestSavePage(t *testing.T) {
	srv, env := testServer(t)
	raw := `{"meta":{"sectionLabel":"L","adminLink":""},"hero":null,
		"sections":[{"type":"weird","content":"x"}],"footer":"f"}`

	r := callTool(t, srv, "save_page", map[string]any{"slug": "news", "title": "News", "document": raw})
	if r.IsError {
		t.Fatalf("save error: %s", resultText(r))
	}
	page, err := env.Service.GetPage(context.Background(), "news")
	if err != nil {
		t.Fatal(err)
	}
	if page.Document.Hero != nil || page.Document.Sections[0].Type() != document.KindTextPlain {
		t.Errorf("stored = %+v", page.Document)
	}

	r = callTool(t, srv, "save_page", map[string]any{"slug": "news", "title": "News", "document": "{"})
	if !r.IsError {
		t.Error("invalid JSON should fail")
	}
	r = callTool(t, srv, "save_page", map[string]any{"slug": "Bad", "title": "x", "document": raw})
	if !r.IsError {
		t.Error("bad slug should fail")
	}
}

func TestEditPage(t *testing.T) {
	srv, env := testServer(t)

	r := callTool(t, srv, "edit_page", map[string]any{"slug": "home", "action": "add_section"})
	if r.IsError {
		t.Fatalf("edit error: %s", resultText(r))
	}
	var staged document.Document
	if err := json.Unmarshal([]byte(resultText(r)), &staged); err != nil {
		t.Fatal(err)
	}
	if len(staged.Sections) != 1 {
		t.Errorf("staged sections = %d, want 1", len(staged.Sections))
	}
	page, _ := env.Service.GetPage(context.Background(), "home")
	if len(page.Document.Sections) != 0 {
		t.Error("staging action was saved")
	}

	doc, _ := json.Marshal(staged)
	r = callTool(t, srv, "edit_page", map[string]any{"slug": "home", "action": "save", "document": string(doc)})
	if resultText(r) != "saved: home" {
		t.Fatalf("save result = %q", resultText(r))
	}
	page, _ = env.Service.GetPage(context.Background(), "home")
	if len(page.Document.Sections) != 1 || page.Title != "主页" {
		t.Errorf("saved page = %+v", page)
	}

	r = callTool(t, srv, "edit_page", map[string]any{"slug": "ghost", "action": "add_section"})
	if !r.IsError {
		t.Error("unknown page without document should fail")
	}
	r = callTool(t, srv, "edit_page", map[string]any{"slug": "home", "action": "delete_page"})
	if !r.IsError {
		t.Error("structural action should be refused")
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_document_contract", map[string]any{})
	if !strings.Contains(resultText(r), "cards_horizontal") {
		t.Error("contract text missing section kinds")
	}
}
