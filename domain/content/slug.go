package content

import (
	"regexp"
	"strings"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugHyphens  = regexp.MustCompile(`-{2,}`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	domainPrefix = regexp.MustCompile(`/{2,}`)
)

// Slugify derives a URL-safe identifier from a title. The derivation is
// deterministic: the same title always yields the same slug, so the
// publisher and the resolver can compute it independently.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsSlug reports whether s already looks like a canonical slug
func IsSlug(s string) bool {
	return s != "" && slugPattern.MatchString(s)
}

// SlugVariations returns the deterministic normalizations the resolver
// tries against the artifact store before falling back to the content
// store: the raw value, lowercase, and separator swaps. Order matters;
// duplicates are removed preserving first occurrence.
func SlugVariations(raw string) []string {
	lower := strings.ToLower(raw)
	candidates := []string{
		raw,
		lower,
		strings.ReplaceAll(lower, "_", "-"),
		strings.ReplaceAll(lower, "-", "_"),
		Slugify(raw),
	}

	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NormalizeSlug collapses a path segment to the canonical form used for
// matching: lowercase with underscores folded into hyphens.
func NormalizeSlug(raw string) string {
	return Slugify(strings.ReplaceAll(raw, "_", "-"))
}

// CanonicalURL computes the public URL for an item as
// {domain}/{category-slug}/{slug}/ with a single trailing slash.
func CanonicalURL(domain, categorySlug, slug string) string {
	domain = strings.TrimRight(domain, "/")
	path := "/" + categorySlug + "/" + slug + "/"
	return domain + domainPrefix.ReplaceAllString(path, "/")
}
