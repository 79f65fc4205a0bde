// Package render turns a content item into the static HTML document stored
// in the artifact store. Substitution is literal string replacement against
// named slots; required slots are validated up front so a half-filled
// document is rejected instead of silently shipping blank sections.
package render

import (
	"fmt"
	"html"
	"strings"

	appErrors "gangablog-backend/pkg/errors"
)

// Placeholder tokens recognized by the article template
const (
	SlotTitle        = "{{TITLE}}"
	SlotDescription  = "{{DESCRIPTION}}"
	SlotCanonicalURL = "{{CANONICAL_URL}}"
	SlotCategorySlug = "{{CATEGORY_SLUG}}"
	SlotCategoryName = "{{CATEGORY_NAME}}"
	SlotPublishDate  = "{{PUBLISH_DATE}}"
	SlotImageURL     = "{{IMAGE_URL}}"
	SlotBody         = "{{BODY}}"
	SlotTagList      = "{{TAG_LIST}}"
	SlotRelated      = "{{RELATED_POSTS}}"
	SlotSidebar      = "{{SIDEBAR_POSTS}}"
)

// Document carries the slot values for one rendered article
type Document struct {
	Title        string
	Description  string
	CanonicalURL string
	CategorySlug string
	CategoryName string
	PublishDate  string
	ImageURL     string
	Body         string
	Tags         []string

	// Auxiliary fragments; empty strings degrade to empty sections
	RelatedFragment string
	SidebarFragment string
}

// Validate rejects documents missing a required slot
func (d *Document) Validate() error {
	var missing []string
	for slot, value := range map[string]string{
		"title":        d.Title,
		"canonicalUrl": d.CanonicalURL,
		"categorySlug": d.CategorySlug,
		"body":         d.Body,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		return appErrors.NewValidation(
			fmt.Sprintf("document is missing required slots: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// Template is an HTML page with named placeholder slots
type Template struct {
	raw string
}

// NewTemplate wraps a template body. The body must at least carry the
// title and body slots; anything less cannot produce a servable article.
func NewTemplate(raw string) (*Template, error) {
	for _, required := range []string{SlotTitle, SlotBody} {
		if !strings.Contains(raw, required) {
			return nil, appErrors.NewValidation(
				fmt.Sprintf("template does not contain required slot %s", required))
		}
	}
	return &Template{raw: raw}, nil
}

// Default returns the built-in article template
func Default() *Template {
	return &Template{raw: defaultArticleTemplate}
}

// Render substitutes the document's slots into the template
func (t *Template) Render(doc *Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		SlotTitle, html.EscapeString(doc.Title),
		SlotDescription, html.EscapeString(doc.Description),
		SlotCanonicalURL, doc.CanonicalURL,
		SlotCategorySlug, doc.CategorySlug,
		SlotCategoryName, html.EscapeString(doc.CategoryName),
		SlotPublishDate, doc.PublishDate,
		SlotImageURL, doc.ImageURL,
		SlotBody, doc.Body,
		SlotTagList, renderTagList(doc.Tags),
		SlotRelated, doc.RelatedFragment,
		SlotSidebar, doc.SidebarFragment,
	)

	return replacer.Replace(t.raw), nil
}

// RewriteCanonical points an already rendered document at a new canonical
// URL. Returns the rewritten document and whether a canonical tag was
// found; when false the caller injects a Link header instead.
func RewriteCanonical(rendered, canonicalURL string) (string, bool) {
	if strings.Contains(rendered, SlotCanonicalURL) {
		return strings.ReplaceAll(rendered, SlotCanonicalURL, canonicalURL), true
	}

	const linkOpen = `<link rel="canonical" href="`
	start := strings.Index(rendered, linkOpen)
	if start < 0 {
		return rendered, false
	}
	hrefStart := start + len(linkOpen)
	hrefEnd := strings.Index(rendered[hrefStart:], `"`)
	if hrefEnd < 0 {
		return rendered, false
	}
	return rendered[:hrefStart] + canonicalURL + rendered[hrefStart+hrefEnd:], true
}

func renderTagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="tags">`)
	for _, tag := range tags {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(tag))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// PostFragment renders one entry of a related/sidebar list
func PostFragment(title, url string) string {
	return fmt.Sprintf(`<li><a href="%s">%s</a></li>`, url, html.EscapeString(title))
}

// FragmentList wraps rendered post fragments; an empty list collapses to
// an empty string so a failed auxiliary query leaves no broken markup.
func FragmentList(class string, fragments []string) string {
	if len(fragments) == 0 {
		return ""
	}
	return fmt.Sprintf(`<ul class="%s">%s</ul>`, class, strings.Join(fragments, ""))
}

const defaultArticleTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>{{TITLE}}</title>
<meta name="description" content="{{DESCRIPTION}}"/>
<link rel="canonical" href="{{CANONICAL_URL}}"/>
<meta property="og:title" content="{{TITLE}}"/>
<meta property="og:description" content="{{DESCRIPTION}}"/>
<meta property="og:url" content="{{CANONICAL_URL}}"/>
<meta property="og:image" content="{{IMAGE_URL}}"/>
<meta property="og:type" content="article"/>
</head>
<body>
<article data-category="{{CATEGORY_SLUG}}">
<header>
<h1>{{TITLE}}</h1>
<p class="meta"><a href="/{{CATEGORY_SLUG}}/">{{CATEGORY_NAME}}</a> &middot; <time>{{PUBLISH_DATE}}</time></p>
</header>
<section class="content">
{{BODY}}
</section>
{{TAG_LIST}}
<aside class="related">
{{RELATED_POSTS}}
</aside>
</article>
<aside class="sidebar">
{{SIDEBAR_POSTS}}
</aside>
</body>
</html>
`
