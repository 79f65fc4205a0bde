package cache

import (
	"bytes"
)

// Signature is one entry in the corruption blacklist. Pattern is a raw
// byte substring; matching stays dumb on purpose so a malformed payload
// cannot break the scanner that is supposed to catch it.
type Signature struct {
	Name    string
	Pattern string
}

// DefaultSignatures covers the payload shapes known to regress the reader
// experience worse than a loading state: placeholder media that leaked
// into a snapshot, entries with no title, and relative media URLs on
// surfaces that require absolute ones.
func DefaultSignatures() []Signature {
	return []Signature{
		{Name: "placeholder_image", Pattern: "assets/placeholder"},
		{Name: "placeholder_image", Pattern: "placeholder.png"},
		{Name: "placeholder_image", Pattern: "via.placeholder.com"},
		{Name: "empty_title", Pattern: `"title":""`},
		{Name: "relative_media_url", Pattern: `"imageUrl":"/`},
	}
}

// Detector scans payloads against the signature blacklist
type Detector struct {
	signatures []Signature
}

// NewDetector creates a detector; nil signatures fall back to the defaults
func NewDetector(signatures []Signature) *Detector {
	if signatures == nil {
		signatures = DefaultSignatures()
	}
	return &Detector{signatures: signatures}
}

// Scan returns the name of the first matching signature and whether the
// payload is considered corrupted
func (d *Detector) Scan(payload []byte) (string, bool) {
	for _, sig := range d.signatures {
		if bytes.Contains(payload, []byte(sig.Pattern)) {
			return sig.Name, true
		}
	}
	return "", false
}
