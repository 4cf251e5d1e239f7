package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/portal/internal/apperr"
	"github.com/starford/portal/internal/editor"
	"github.com/starford/portal/internal/pageservice"
)

// Handler holds the JSON route handlers.
type Handler struct {
	svc *pageservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pageservice.Service) *Handler {
	return &Handler{svc: svc}
}

func validationStatus(msg string) int {
	switch msg {
	case pageservice.MsgDuplicateSlug, pageservice.MsgLastPage:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// ListPages handles GET /api/pages.
//
//	@Summary	List pages ordered by title
//	@Tags		pages
//	@Produce	json
//	@Success	200	{array}	PageListItem
//	@Router		/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.ListPages(r.Context(), false)
	if err != nil {
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]PageListItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, PageListItem{Slug: p.Slug, Title: p.Title})
	}
	writeJSON(w, http.StatusOK, items)
}

// GetPageDocument handles GET /api/pages/{slug}.json.
//
//	@Summary	Get one page document with pageTitle injected
//	@Tags		pages
//	@Produce	json
//	@Param		slug	path		string	true	"Page slug"
//	@Success	200		{object}	PageDocumentResponse
//	@Failure	404		{object}	errResponse
//	@Router		/pages/{slug}.json [get]
func (h *Handler) GetPageDocument(w http.ResponseWriter, r *http.Request) {
	slug, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok || slug == "" {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	page, err := h.svc.GetPage(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get page failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, PageDocumentResponse{Document: *page.Document, PageTitle: page.Title})
}

// CreatePage handles POST /api/admin/pages.
//
//	@Summary	Create a page with the default document
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreatePageRequest	true	"Page to create"
//	@Success	201		{object}	PageListItem
//	@Failure	400		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/admin/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !readJSON(w, r, &req) {
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if err := h.svc.CreatePage(r.Context(), slug, req.Title); err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			writeJSON(w, validationStatus(ve.Message), errorBody(ve.Message))
			return
		}
		slog.Error("create page failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	page, err := h.svc.GetPage(r.Context(), slug)
	if err != nil {
		slog.Error("get created page failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, PageListItem{Slug: page.Slug, Title: page.Title})
}

// DeletePage handles DELETE /api/admin/pages/{slug}.
//
//	@Summary	Delete a page unless it is the last one
//	@Tags		admin
//	@Param		slug	path	string	true	"Page slug"
//	@Success	204		"Page deleted"
//	@Failure	409		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/admin/pages/{slug} [delete]
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.svc.DeletePage(r.Context(), slug); err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			writeJSON(w, validationStatus(ve.Message), errorBody(ve.Message))
			return
		}
		slog.Error("delete page failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditPage handles POST /api/admin/pages/{slug}/edit. Staging actions
// return the changed document without storing it; save stores it.
//
//	@Summary	Stage or save an edit to a page document
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		slug	path		string		true	"Page slug"
//	@Param		body	body		EditRequest	true	"Action, title and document"
//	@Success	200		{object}	EditResponse
//	@Failure	400		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Security	BearerAuth
//	@Router		/admin/pages/{slug}/edit [post]
func (h *Handler) EditPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := pageservice.ValidateSlug(slug); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(pageservice.MsgBadSlug))
		return
	}

	var req EditRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Action.Kind == editor.CreatePage || req.Action.Kind == editor.DeletePage {
		writeJSON(w, http.StatusBadRequest, errorBody("use /api/admin/pages for "+req.Action.String()))
		return
	}

	title := strings.TrimSpace(req.Title)
	if req.Document == nil {
		page, err := h.svc.GetPage(r.Context(), slug)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody("not found"))
			} else {
				slog.Error("get page failed", slog.String("slug", slug), slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			}
			return
		}
		req.Document = page.Document
		if title == "" {
			title = page.Title
		}
	}
	if title == "" {
		title = slug
	}

	resp := EditResponse{Slug: slug, Title: title, Action: req.Action}
	if req.Action.Staging() {
		resp.Document = editor.Apply(*req.Document, req.Action)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := h.svc.SavePage(r.Context(), slug, title, *req.Document); err != nil {
		slog.Error("save page failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	page, err := h.svc.GetPage(r.Context(), slug)
	if err != nil {
		slog.Error("get saved page failed", slog.String("slug", slug), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	resp.Saved = true
	resp.Document = *page.Document
	writeJSON(w, http.StatusOK, resp)
}
