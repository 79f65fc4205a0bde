// Package sitemap models the site index document: the machine-readable
// listing of every public URL, regenerated wholesale after any
// publication-affecting event.
package sitemap

import (
	"encoding/xml"
	"sort"
	"time"
)

// Change frequency hints per the sitemap protocol
const (
	ChangeAlways  = "always"
	ChangeHourly  = "hourly"
	ChangeDaily   = "daily"
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
	ChangeYearly  = "yearly"
	ChangeNever   = "never"
)

// Entry is a single URL in the site index
type Entry struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod,omitempty"`
	ChangeFreq string   `xml:"changefreq,omitempty"`
	Priority   string   `xml:"priority,omitempty"`
}

// URLSet is the root element of the sitemap document
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	Entries []Entry  `xml:"url"`
}

// Namespace is the standard sitemap protocol namespace
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Index is an ordered collection of entries ready to be serialized
type Index struct {
	entries []Entry
	seen    map[string]struct{}
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{seen: make(map[string]struct{})}
}

// Add appends an entry. Duplicate locations are dropped so that an orphan
// artifact sharing a slug with a live item produces a single entry.
func (idx *Index) Add(loc string, lastMod time.Time, changeFreq string, priority string) {
	if _, ok := idx.seen[loc]; ok {
		return
	}
	idx.seen[loc] = struct{}{}

	e := Entry{
		Loc:        loc,
		ChangeFreq: changeFreq,
		Priority:   priority,
	}
	if !lastMod.IsZero() {
		e.LastMod = lastMod.UTC().Format("2006-01-02")
	}
	idx.entries = append(idx.entries, e)
}

// Len returns the number of entries
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Contains reports whether a location is present
func (idx *Index) Contains(loc string) bool {
	_, ok := idx.seen[loc]
	return ok
}

// Entries returns the entries sorted by location. Sorting makes the
// regenerated document a deterministic projection of its inputs.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Loc < out[j].Loc })
	return out
}

// XML serializes the index as a standard sitemap document
func (idx *Index) XML() ([]byte, error) {
	doc := URLSet{
		XMLNS:   Namespace,
		Entries: idx.Entries(),
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
