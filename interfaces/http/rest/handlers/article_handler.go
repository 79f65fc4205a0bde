package handlers

import (
	"io"
	"net/http"

	"gangablog-backend/application/resolver"
	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ArticleHandler serves the slug-resolution endpoint: the public reader
// path for both /{slug} and /{category}/{slug}/ URLs.
type ArticleHandler struct {
	resolver *resolver.Resolver
	shells   *ShellHandler
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(
	res *resolver.Resolver,
	shells *ShellHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ArticleHandler {
	return &ArticleHandler{
		resolver: res,
		shells:   shells,
		metrics:  metrics,
		logger:   logger,
	}
}

// ResolveSlug handles GET /{slug}
func (h *ArticleHandler) ResolveSlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	res, err := h.resolver.Resolve(r.Context(), slug)
	if err != nil {
		// Upstream lookup failure, not content absence. The article shell
		// is the last-resort fallback before the home shell; it retries
		// resolution live and renders its own empty state on a miss.
		h.logger.Error("slug resolution failed upstream",
			zap.String("slug", slug), zap.Error(err))
		h.shells.renderArticleShell(w, r, content.NormalizeSlug(slug), "")
		return
	}

	h.serve(w, r, res)
}

// ResolveCategorySlug handles GET /{category}/{slug}, the canonical
// artifact URL. With no artifact the category shell attempts resolution,
// mirroring the navigation gate's two-segment rule.
func (h *ArticleHandler) ResolveCategorySlug(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	slug := chi.URLParam(r, "slug")

	res, err := h.resolver.Resolve(r.Context(), slug)
	if err != nil {
		h.logger.Error("slug resolution failed upstream",
			zap.String("category", category), zap.String("slug", slug), zap.Error(err))
		h.shells.renderArticleShell(w, r, content.NormalizeSlug(slug), "")
		return
	}

	if res.Status == http.StatusTemporaryRedirect {
		res.RedirectURL = "/category/" + category + "?slug=" + content.NormalizeSlug(slug)
	}
	h.serve(w, r, res)
}

func (h *ArticleHandler) serve(w http.ResponseWriter, r *http.Request, res *resolver.Resolution) {
	if h.metrics != nil {
		h.metrics.RecordResolution(res.Tier)
	}

	w.Header().Set("Cache-Control", res.CacheControl)

	switch res.Status {
	case http.StatusOK:
		if !res.CanonicalInDocument && res.CanonicalURL != "" {
			w.Header().Set("Link", `<`+res.CanonicalURL+`>; rel="canonical"`)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, res.HTML)
	case http.StatusTemporaryRedirect:
		http.Redirect(w, r, res.RedirectURL, http.StatusTemporaryRedirect)
	}
}
