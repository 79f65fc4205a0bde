package handlers

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShellHandler serves the dynamic page shells: home, category, and the
// article shell that resolution falls back to. Shells never fail hard; a
// missing or unreachable item renders a graceful empty state so the reader
// always lands on a page.
type ShellHandler struct {
	contentStore ports.ContentStore
	domain       string
	logger       *zap.Logger
}

// NewShellHandler creates a new shell handler
func NewShellHandler(contentStore ports.ContentStore, domain string, logger *zap.Logger) *ShellHandler {
	return &ShellHandler{
		contentStore: contentStore,
		domain:       domain,
		logger:       logger,
	}
}

// Home handles GET /
func (h *ShellHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeShell(w, fmt.Sprintf(homeShell, h.domain))
}

// Article handles GET /article?slug=...&id=..., the last tier of slug
// resolution. It retries the content lookup live, preferring identity when
// the resolver matched an item.
func (h *ShellHandler) Article(w http.ResponseWriter, r *http.Request) {
	slug := content.NormalizeSlug(r.URL.Query().Get("slug"))
	id := r.URL.Query().Get("id")
	h.renderArticleShell(w, r, slug, id)
}

// Category handles GET /category/{slug}
func (h *ShellHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := content.NormalizeSlug(chi.URLParam(r, "slug"))

	writeShell(w, fmt.Sprintf(categoryShell,
		html.EscapeString(slug), html.EscapeString(slug), html.EscapeString(slug)))
}

func (h *ShellHandler) renderArticleShell(w http.ResponseWriter, r *http.Request, slug, id string) {
	item := h.lookup(r, slug, id)
	if item == nil {
		writeShell(w, fmt.Sprintf(articleEmptyShell, html.EscapeString(slug)))
		return
	}

	published := ""
	if item.PublishedAt != nil {
		published = item.PublishedAt.UTC().Format(time.DateOnly)
	}
	canonical := content.CanonicalURL(h.domain, item.CategorySlug, item.CanonicalSlug())

	writeShell(w, fmt.Sprintf(articleShell,
		html.EscapeString(item.Title),
		html.EscapeString(item.Description),
		canonical,
		html.EscapeString(item.Title),
		item.CategorySlug,
		html.EscapeString(item.CategoryName),
		published,
		item.Body,
	))
}

// lookup resolves the shell's content by identity first, then by slug. Any
// failure, absence or transport, degrades to the empty state.
func (h *ShellHandler) lookup(r *http.Request, slug, id string) *content.Item {
	ctx := r.Context()

	if id != "" {
		item, err := h.contentStore.GetByID(ctx, id)
		if err == nil && item.IsPublished() {
			return item
		}
		if err != nil && !appErrors.IsNotFound(err) {
			h.logger.Warn("article shell lookup by id failed",
				zap.String("id", id), zap.Error(err))
		}
	}

	if slug == "" {
		return nil
	}
	item, err := h.contentStore.GetBySlug(ctx, slug)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			h.logger.Warn("article shell lookup by slug failed",
				zap.String("slug", slug), zap.Error(err))
		}
		return nil
	}
	if !item.IsPublished() {
		return nil
	}
	return item
}

func writeShell(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	io.WriteString(w, body)
}

const homeShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>GangaGames Blog</title>
<link rel="canonical" href="%s/"/>
</head>
<body>
<main data-shell="home">
<section class="hero" data-surface="home:hero"></section>
<section class="feed"></section>
</main>
<aside class="sidebar" data-surface="home:sidebar"></aside>
<script src="/static/app.js" defer></script>
</body>
</html>
`

const categoryShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>%s - GangaGames Blog</title>
</head>
<body>
<main data-shell="category" data-category="%s">
<section class="rail" data-surface="category:%s"></section>
</main>
<script src="/static/app.js" defer></script>
</body>
</html>
`

const articleShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>%s</title>
<meta name="description" content="%s"/>
<link rel="canonical" href="%s"/>
</head>
<body>
<main data-shell="article">
<article>
<header>
<h1>%s</h1>
<p class="meta"><a href="/%s/">%s</a> &middot; <time>%s</time></p>
</header>
<section class="content">
%s
</section>
</article>
</main>
<script src="/static/app.js" defer></script>
</body>
</html>
`

const articleEmptyShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>GangaGames Blog</title>
<meta name="robots" content="noindex"/>
</head>
<body>
<main data-shell="article" data-slug="%s">
<section class="empty-state">
<h1>We couldn't find that post</h1>
<p>It may have moved. Browse the <a href="/">latest posts</a> instead.</p>
</section>
</main>
<script src="/static/app.js" defer></script>
</body>
</html>
`
