package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Decision is the outcome of classifying a navigation path
type Decision int

const (
	// DecisionPassThrough leaves the request for the router untouched
	DecisionPassThrough Decision = iota

	// DecisionCategoryShell rewrites to the category rendering shell
	DecisionCategoryShell

	// DecisionArticleShell rewrites to the article rendering shell
	DecisionArticleShell

	// DecisionHomeShell is the final fallback
	DecisionHomeShell
)

// Classification carries the decision and the path parameters it extracted
type Classification struct {
	Decision     Decision
	CategorySlug string
	Slug         string
}

var navSlugSegment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefaultExclusions lists the top-level shells and utility routes that an
// unrouted single segment must never be mistaken for
func DefaultExclusions() map[string]struct{} {
	return map[string]struct{}{
		"":         {},
		"article":  {},
		"category": {},
		"search":   {},
		"contact":  {},
		"about":    {},
		"index":    {},
		"home":     {},
	}
}

// Classify decides which shell should attempt resolution for a path that
// matched no explicit route. It performs no content lookup: actually
// resolving the slug is the next layer's job.
func Classify(path string, exclusions map[string]struct{}) Classification {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return Classification{Decision: DecisionPassThrough}
	}

	segments := strings.Split(trimmed, "/")

	// File-extension paths are static asset territory, never content.
	if strings.Contains(segments[len(segments)-1], ".") {
		return Classification{Decision: DecisionPassThrough}
	}

	switch len(segments) {
	case 1:
		seg := segments[0]
		if _, excluded := exclusions[strings.ToLower(seg)]; excluded {
			return Classification{Decision: DecisionPassThrough}
		}
		if navSlugSegment.MatchString(seg) {
			return Classification{Decision: DecisionArticleShell, Slug: seg}
		}
		return Classification{Decision: DecisionHomeShell}
	case 2:
		if navSlugSegment.MatchString(segments[0]) && navSlugSegment.MatchString(segments[1]) {
			return Classification{
				Decision:     DecisionCategoryShell,
				CategorySlug: segments[0],
				Slug:         segments[1],
			}
		}
		return Classification{Decision: DecisionHomeShell}
	default:
		return Classification{Decision: DecisionHomeShell}
	}
}

// Navigation builds the request gate evaluated for top-level navigations
// whose path matched no explicit route. It rewrites the request to the
// shell that should attempt resolution; the shells and the resolver own
// the actual content lookup.
func Navigation(exclusions map[string]struct{}, logger *zap.Logger) func(http.Handler) http.Handler {
	if exclusions == nil {
		exclusions = DefaultExclusions()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isNavigation(r) {
				next.ServeHTTP(w, r)
				return
			}

			c := Classify(r.URL.Path, exclusions)
			if c.Decision == DecisionHomeShell {
				logger.Debug("navigation rewritten to home shell", zap.String("path", r.URL.Path))
				rewrite(r, "/")
			}
			// ArticleShell and CategoryShell continue to the router: the
			// single-segment route is the article resolution attempt and
			// the two-segment route the category one. Which shell finally
			// renders is decided there, after the artifact check.
			next.ServeHTTP(w, r)
		})
	}
}

// isNavigation reports whether the request is a top-level document
// navigation rather than an API or asset fetch
func isNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" && mode != "navigate" {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html") ||
		r.Header.Get("Accept") == "" || r.Header.Get("Accept") == "*/*"
}

func rewrite(r *http.Request, path string) {
	r.URL.Path = path
}
