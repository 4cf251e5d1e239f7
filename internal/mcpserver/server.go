// Package mcpserver exposes the portal's pages as MCP (Model Context
// Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/portal/internal/apperr"
	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/editor"
	"github.com/starford/portal/internal/pageservice"
)

const contractURI = "portal://document-format"

// Server wraps the MCP server with the page tools.
type Server struct {
	mcp *server.MCPServer
	svc *pageservice.Service
}

// New creates an MCP server with every page tool registered.
func New(svc *pageservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Portal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages as JSON [{slug, title}] ordered by title."),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Read one page: its title and full document JSON."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	), s.getPage)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a page with the default document."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("New slug: lowercase letters, digits and hyphens, at most 48")),
		mcp.WithString("title", mcp.Description("Page title; defaults to the slug")),
	), s.createPage)

	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Delete a page. The last remaining page cannot be deleted."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	), s.deletePage)

	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Replace a page's title and document, creating the page if needed. "+
			"The document MUST follow the page document contract; read it first via "+
			"get_document_contract or the "+contractURI+" resource."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document JSON")),
	), s.savePage)

	s.mcp.AddTool(mcp.NewTool("edit_page",
		mcp.WithDescription("Apply one edit action (add_section, delete_hero, restore_hero, "+
			"delete_section_{i}, add_card_{i}, delete_card_{i}_{j}, save) to a page document. "+
			"Staging actions return the result without saving."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
		mcp.WithString("action", mcp.Required(), mcp.Description("Edit action")),
		mcp.WithString("document", mcp.Description("Document JSON to edit; defaults to the stored document")),
	), s.editPage)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the page document contract. "+
			"Call this before saving pages to ensure correct structure."),
	), s.getDocumentContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Page Document Contract",
			mcp.WithResourceDescription("JSON shape of a page document and the edit actions."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := document.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.TrimRight(string(out), "\n")), nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	if ve, ok := apperr.AsValidation(err); ok {
		return mcp.NewToolResultError(ve.Message), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) listPages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.svc.ListPages(ctx, false)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(pages)
}

func (s *Server) getPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.GetPage(ctx, slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := s.svc.CreatePage(ctx, slug, optionalString(req, "title")); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", slug)), nil
}

func (s *Server) deletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeletePage(ctx, slug); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", slug)), nil
}

func parseDocument(raw string) (document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("invalid document JSON: %w", err)
	}
	return doc, nil
}

func (s *Server) savePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := pageservice.ValidateSlug(slug); err != nil {
		return errorResult(err)
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if title = strings.TrimSpace(title); title == "" {
		title = slug
	}
	if err := s.svc.SavePage(ctx, slug, title, doc); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", slug)), nil
}

func (s *Server) editPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawAction, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action := editor.ParseAction(rawAction)
	if action.Kind == editor.CreatePage || action.Kind == editor.DeletePage {
		return mcp.NewToolResultError(fmt.Sprintf("use the %s tool", action)), nil
	}

	page, err := s.svc.GetPage(ctx, slug)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return errorResult(err)
	}

	var doc document.Document
	title := slug
	if page != nil {
		doc, title = *page.Document, page.Title
	}
	if raw := optionalString(req, "document"); raw != "" {
		if doc, err = parseDocument(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else if page == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}

	if action.Staging() {
		return jsonResult(editor.Apply(doc, action))
	}
	if err := pageservice.ValidateSlug(slug); err != nil {
		return errorResult(err)
	}
	if err := s.svc.SavePage(ctx, slug, title, doc); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", slug)), nil
}

func (s *Server) getDocumentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
