package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/starford/portal/internal/apperr"
	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/editor"
	"github.com/starford/portal/internal/form"
	"github.com/starford/portal/internal/pageservice"
)

// Admin form fields outside the document itself.
const (
	fieldAction         = "action"
	fieldPageSlug       = "page_slug"
	fieldPageTitle      = "page_title"
	fieldNewPageSlug    = "new_page_slug"
	fieldNewPageTitle   = "new_page_title"
	fieldTargetPageSlug = "target_page_slug"
)

// Operator notices.
const (
	msgPageCreated  = "新页面已创建。"
	msgPageDeleted  = "页面已删除。"
	msgSaved        = "改动已保存。"
	msgHeroRemoved  = "标题区块已移除。"
	msgHeroRestored = "已添加标题区块。"
)

const maxFormBytes = 10 << 20

//go:embed templates/admin.html
var templateFS embed.FS

var adminTemplate = template.Must(template.ParseFS(templateFS, "templates/admin.html"))

var kindLabels = map[document.SectionKind]string{
	document.KindTextPlain:       "纯文本",
	document.KindTextTitled:      "带标题文本",
	document.KindCardsHorizontal: "横向卡片",
	document.KindCardsVertical:   "纵向卡片",
}

type kindOption struct {
	Value string
	Label string
}

type heroView struct {
	Title       string
	Description string
	Chips       string
}

type cardView struct {
	Prefix       string
	Title        string
	Status       string
	Content      string
	Meta         string
	LinkLabel    string
	LinkURL      string
	DeleteAction string
}

type sectionView struct {
	Number        int
	Prefix        string
	Kind          string
	IsCards       bool
	Heading       string
	Content       string
	Cards         []cardView
	AddCardAction string
	DeleteAction  string
}

type adminView struct {
	Pages       []document.Page
	CurrentSlug string
	PageTitle   string
	Flashes     []Flash
	Meta        document.Meta
	Hero        *heroView
	Sections    []sectionView
	Footer      string
	Kinds       []kindOption
}

func newAdminView(slug, title string, pages []document.Page, doc document.Document, flashes []Flash) adminView {
	v := adminView{
		Pages:       pages,
		CurrentSlug: slug,
		PageTitle:   title,
		Flashes:     flashes,
		Meta:        doc.Meta,
		Footer:      doc.Footer,
		Sections:    make([]sectionView, 0, len(doc.Sections)),
	}
	for _, k := range document.SectionKinds {
		v.Kinds = append(v.Kinds, kindOption{Value: string(k), Label: kindLabels[k]})
	}
	if doc.Hero != nil {
		v.Hero = &heroView{
			Title:       doc.Hero.Title,
			Description: doc.Hero.Description,
			Chips:       form.JoinLines(doc.Hero.Chips),
		}
	}
	for i, s := range doc.Sections {
		sv := sectionView{
			Number:       i + 1,
			Prefix:       form.SectionPrefix(i),
			Kind:         string(s.Type()),
			DeleteAction: editor.Action{Kind: editor.DeleteSection, Section: i}.String(),
		}
		switch sec := s.(type) {
		case *document.TextSection:
			sv.Heading = sec.Heading
			sv.Content = sec.Content
		case *document.CardSection:
			sv.IsCards = true
			sv.Heading = sec.Heading
			sv.AddCardAction = editor.Action{Kind: editor.AddCard, Section: i}.String()
			for j, c := range sec.Cards {
				sv.Cards = append(sv.Cards, cardView{
					Prefix:       form.CardPrefix(i, j),
					Title:        c.Title,
					Status:       c.Status,
					Content:      c.Content,
					Meta:         form.JoinLines(c.Meta),
					LinkLabel:    c.LinkLabel,
					LinkURL:      c.LinkURL,
					DeleteAction: editor.Action{Kind: editor.DeleteCard, Section: i, Card: j}.String(),
				})
			}
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// AdminHandler serves the HTML edit form at /admin.
type AdminHandler struct {
	svc    *pageservice.Service
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc *pageservice.Service, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{svc: svc, logger: logger}
}

func adminURL(slug string) string {
	return "/admin?slug=" + url.QueryEscape(slug)
}

func (h *AdminHandler) redirect(w http.ResponseWriter, r *http.Request, slug string, flashes ...Flash) {
	setFlashes(w, flashes...)
	http.Redirect(w, r, adminURL(slug), http.StatusSeeOther)
}

func (h *AdminHandler) render(w http.ResponseWriter, view adminView) {
	var buf bytes.Buffer
	if err := adminTemplate.Execute(&buf, view); err != nil {
		h.logger.Error("render admin form failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *AdminHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.String("error", err.Error()))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// Show handles GET /admin: the edit form of the requested or first page.
func (h *AdminHandler) Show(w http.ResponseWriter, r *http.Request) {
	slug, pages, err := h.svc.CurrentSlug(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		h.fail(w, "resolve page", err)
		return
	}
	page, err := h.svc.GetPage(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.fail(w, "get page", err)
		return
	}
	h.render(w, newAdminView(slug, page.Title, pages, *page.Document, popFlashes(w, r)))
}

// Submit handles POST /admin. Structural actions and save redirect back to
// the form; staging actions re-render it with the unsaved document.
func (h *AdminHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	requested := r.URL.Query().Get("slug")
	if requested == "" {
		requested = r.PostForm.Get(fieldPageSlug)
	}
	slug, pages, err := h.svc.CurrentSlug(ctx, requested)
	if err != nil {
		h.fail(w, "resolve page", err)
		return
	}

	action := editor.ParseAction(r.PostForm.Get(fieldAction))
	switch action.Kind {
	case editor.CreatePage:
		newSlug := strings.ToLower(strings.TrimSpace(r.PostForm.Get(fieldNewPageSlug)))
		title := strings.TrimSpace(r.PostForm.Get(fieldNewPageTitle))
		if err := h.svc.CreatePage(ctx, newSlug, title); err != nil {
			if ve, ok := apperr.AsValidation(err); ok {
				h.redirect(w, r, slug, Flash{Category: FlashInfo, Message: ve.Message})
				return
			}
			h.fail(w, "create page", err)
			return
		}
		h.logger.Info("page created", slog.String("slug", newSlug))
		h.redirect(w, r, newSlug, Flash{Category: FlashSuccess, Message: msgPageCreated})
		return

	case editor.DeletePage:
		target := r.PostForm.Get(fieldTargetPageSlug)
		if err := h.svc.DeletePage(ctx, target); err != nil {
			if ve, ok := apperr.AsValidation(err); ok {
				h.redirect(w, r, slug, Flash{Category: FlashInfo, Message: ve.Message})
				return
			}
			h.fail(w, "delete page", err)
			return
		}
		h.logger.Info("page deleted", slog.String("slug", target))
		next, _, err := h.svc.CurrentSlug(ctx, "")
		if err != nil {
			h.fail(w, "resolve page", err)
			return
		}
		h.redirect(w, r, next, Flash{Category: FlashInfo, Message: msgPageDeleted})
		return
	}

	title := strings.TrimSpace(r.PostForm.Get(fieldPageTitle))
	if title == "" {
		title = slug
	}
	doc := form.Decode(r.PostForm)

	if action.Staging() {
		var notices []Flash
		switch action.Kind {
		case editor.DeleteHero:
			notices = append(notices, Flash{Category: FlashInfo, Message: msgHeroRemoved})
		case editor.RestoreHero:
			notices = append(notices, Flash{Category: FlashInfo, Message: msgHeroRestored})
		}
		h.render(w, newAdminView(slug, title, pages, editor.Apply(doc, action), notices))
		return
	}

	if err := h.svc.SavePage(ctx, slug, title, doc); err != nil {
		h.fail(w, "save page", err)
		return
	}
	h.logger.Info("page saved", slog.String("slug", slug))
	h.redirect(w, r, slug, Flash{Category: FlashSuccess, Message: msgSaved})
}
