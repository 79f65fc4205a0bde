package render

import (
	"strings"
	"testing"

	appErrors "gangablog-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		Title:        "Best Slots Tips",
		Description:  "Every trick worth knowing",
		CanonicalURL: "https://blog.gangagames.com/slots/best-slots-tips/",
		CategorySlug: "slots",
		CategoryName: "Slots",
		PublishDate:  "2025-06-01",
		ImageURL:     "https://cdn.gangagames.com/covers/slots.jpg",
		Body:         "<p>Always set a budget.</p>",
		Tags:         []string{"slots", "strategy"},
	}
}

func TestTemplate_Render(t *testing.T) {
	out, err := Default().Render(validDocument())
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Best Slots Tips</h1>")
	assert.Contains(t, out, `<link rel="canonical" href="https://blog.gangagames.com/slots/best-slots-tips/"/>`)
	assert.Contains(t, out, "<p>Always set a budget.</p>")
	assert.Contains(t, out, "<li>strategy</li>")
	assert.NotContains(t, out, "{{", "no unreplaced placeholders")
}

func TestTemplate_Render_EscapesTextSlots(t *testing.T) {
	doc := validDocument()
	doc.Title = `Slots <script>alert("x")</script>`

	out, err := Default().Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestTemplate_Render_RejectsMissingRequiredSlots(t *testing.T) {
	doc := validDocument()
	doc.Title = ""
	doc.Body = "   "

	_, err := Default().Render(doc)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "body")
}

func TestTemplate_Render_EmptyFragmentsCollapse(t *testing.T) {
	doc := validDocument()
	doc.RelatedFragment = ""
	doc.SidebarFragment = ""

	out, err := Default().Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, "{{RELATED_POSTS}}")
	assert.NotContains(t, out, "{{SIDEBAR_POSTS}}")
}

func TestNewTemplate_RequiresCoreSlots(t *testing.T) {
	_, err := NewTemplate("<html><body>no slots at all</body></html>")
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))

	tpl, err := NewTemplate("<html><title>{{TITLE}}</title><body>{{BODY}}</body></html>")
	require.NoError(t, err)
	require.NotNil(t, tpl)
}

func TestRewriteCanonical(t *testing.T) {
	// Placeholder still present: direct substitution.
	out, ok := RewriteCanonical(`<link rel="canonical" href="{{CANONICAL_URL}}"/>`, "https://x.test/a/b/")
	assert.True(t, ok)
	assert.Contains(t, out, `href="https://x.test/a/b/"`)

	// Fully rendered document: existing href rewritten in place.
	rendered, err := Default().Render(validDocument())
	require.NoError(t, err)
	out, ok = RewriteCanonical(rendered, "https://x.test/override/")
	assert.True(t, ok)
	assert.Contains(t, out, `<link rel="canonical" href="https://x.test/override/"/>`)

	// No canonical tag at all: untouched, caller injects a header.
	out, ok = RewriteCanonical("<html><body>bare</body></html>", "https://x.test/")
	assert.False(t, ok)
	assert.Equal(t, "<html><body>bare</body></html>", out)
}

func TestFragmentHelpers(t *testing.T) {
	frag := PostFragment("Roulette & You", "/casino/roulette-and-you/")
	assert.Contains(t, frag, "Roulette &amp; You")

	assert.Equal(t, "", FragmentList("related", nil))

	list := FragmentList("related", []string{frag})
	assert.True(t, strings.HasPrefix(list, `<ul class="related">`))
}
