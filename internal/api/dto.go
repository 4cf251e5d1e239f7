package api

import (
	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/editor"
)

// PageListItem is one entry of GET /api/pages.
type PageListItem struct {
	Slug  string `json:"slug" example:"home" validate:"required"`
	Title string `json:"title" example:"主页" validate:"required"`
}

// PageDocumentResponse is a page document with its title injected, as read
// by the front end.
type PageDocumentResponse struct {
	document.Document
	PageTitle string `json:"pageTitle" example:"主页" validate:"required"`
}

// CreatePageRequest is the body of POST /api/admin/pages.
type CreatePageRequest struct {
	Slug  string `json:"slug" example:"docs" validate:"required"`
	Title string `json:"title" example:"文档"`
}

// EditRequest is the body of POST /api/admin/pages/{slug}/edit. A nil
// Document means the stored document.
type EditRequest struct {
	Action   editor.Action      `json:"action" example:"add_card_0"`
	Title    string             `json:"title" example:"文档"`
	Document *document.Document `json:"document"`
}

// EditResponse is the staged or saved result of an edit.
type EditResponse struct {
	Slug     string            `json:"slug" validate:"required"`
	Title    string            `json:"title" validate:"required"`
	Action   editor.Action     `json:"action" validate:"required"`
	Saved    bool              `json:"saved"`
	Document document.Document `json:"document" validate:"required"`
}
