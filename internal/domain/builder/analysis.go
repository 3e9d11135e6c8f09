// Package builder holds the AI-assisted listing builder: extraction results
// from uploaded business documents and their merge into one listing draft.
package builder

import (
	"sort"
	"strings"

	"github.com/bizdir/backend/internal/domain/listing"
)

// DocumentAnalysis is what the extractor found in a single document
type DocumentAnalysis struct {
	BusinessName string           `json:"business_name"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags"`
	Location     listing.Location `json:"location"`
	Contact      listing.Contact  `json:"contact"`
	Hours        listing.Hours    `json:"hours"`
	Amenities    []string         `json:"amenities"`
	PriceRange   string           `json:"price_range"`
	Confidence   float64          `json:"confidence"`
	Source       string           `json:"source"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// ListingDraft is the merged suggestion presented to the user
type ListingDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Tags        []string         `json:"tags"`
	Location    listing.Location `json:"location"`
	Contact     listing.Contact  `json:"contact"`
	Hours       listing.Hours    `json:"hours"`
	Amenities   []string         `json:"amenities"`
	PriceRange  string           `json:"price_range"`
	Confidence  float64          `json:"confidence"`
	Sources     []string         `json:"sources"`
	Warnings    []string         `json:"warnings"`
}

// CombineAnalyses merges several extraction results into one draft.
//
// Analyses are ordered by confidence (highest first, input order on ties).
// Scalar fields take the first non-blank value in that order, the description
// takes the longest one, list fields are unioned case-insensitively in
// first-seen order, and hours are merged per weekday. Differing non-blank
// scalar values are reported as "conflict:<field>" warnings.
func CombineAnalyses(analyses []DocumentAnalysis) ListingDraft {
	draft := ListingDraft{
		Tags:      []string{},
		Amenities: []string{},
		Hours:     listing.Hours{},
		Sources:   []string{},
		Warnings:  []string{},
	}
	if len(analyses) == 0 {
		return draft
	}

	ordered := make([]DocumentAnalysis, len(analyses))
	copy(ordered, analyses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return clampConfidence(ordered[i].Confidence) > clampConfidence(ordered[j].Confidence)
	})

	warnings := newStringSet()
	tags := newStringSet()
	amenities := newStringSet()
	pick := func(field string, values ...string) string {
		chosen := ""
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if chosen == "" {
				chosen = v
				continue
			}
			if !strings.EqualFold(chosen, v) {
				warnings.add("conflict:" + field)
			}
		}
		return chosen
	}
	collect := func(get func(DocumentAnalysis) string) []string {
		out := make([]string, len(ordered))
		for i, a := range ordered {
			out[i] = get(a)
		}
		return out
	}

	draft.Title = pick("title", collect(func(a DocumentAnalysis) string { return a.BusinessName })...)
	draft.Category = listing.NormalizeCategory(pick("category", collect(func(a DocumentAnalysis) string { return a.Category })...))
	draft.PriceRange = pick("price_range", collect(func(a DocumentAnalysis) string { return a.PriceRange })...)

	draft.Location = listing.Location{
		Address:    pick("location.address", collect(func(a DocumentAnalysis) string { return a.Location.Address })...),
		City:       pick("location.city", collect(func(a DocumentAnalysis) string { return a.Location.City })...),
		State:      pick("location.state", collect(func(a DocumentAnalysis) string { return a.Location.State })...),
		PostalCode: pick("location.postal_code", collect(func(a DocumentAnalysis) string { return a.Location.PostalCode })...),
		Country:    pick("location.country", collect(func(a DocumentAnalysis) string { return a.Location.Country })...),
	}
	draft.Contact = listing.Contact{
		Phone:   pick("contact.phone", collect(func(a DocumentAnalysis) string { return a.Contact.Phone })...),
		Email:   pick("contact.email", collect(func(a DocumentAnalysis) string { return a.Contact.Email })...),
		Website: pick("contact.website", collect(func(a DocumentAnalysis) string { return a.Contact.Website })...),
	}

	var confidence float64
	for _, a := range ordered {
		if d := strings.TrimSpace(a.Description); len([]rune(d)) > len([]rune(draft.Description)) {
			draft.Description = d
		}
		for _, t := range a.Tags {
			tags.add(t)
		}
		for _, am := range a.Amenities {
			amenities.add(am)
		}
		for _, key := range hoursKeys(a.Hours) {
			day := strings.ToLower(strings.TrimSpace(key))
			if !listing.IsWeekday(day) {
				continue
			}
			if _, ok := draft.Hours[day]; !ok {
				draft.Hours[day] = a.Hours[key]
			}
		}
		if src := strings.TrimSpace(a.Source); src != "" {
			draft.Sources = append(draft.Sources, src)
		}
		for _, w := range a.Warnings {
			warnings.add(w)
		}
		confidence += clampConfidence(a.Confidence)
	}

	draft.Tags = tags.values()
	draft.Amenities = amenities.values()
	draft.Confidence = confidence / float64(len(ordered))
	draft.Warnings = warnings.values()
	return draft
}

// hoursKeys orders day keys so spellings of the same day resolve the same way
// on every run: the canonical lowercase key first, then byte order.
func hoursKeys(h listing.Hours) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci := keys[i] == strings.ToLower(strings.TrimSpace(keys[i]))
		cj := keys[j] == strings.ToLower(strings.TrimSpace(keys[j]))
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	return keys
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// stringSet keeps trimmed, non-empty strings unique by case-insensitive
// comparison in first-seen order
type stringSet struct {
	seen  map[string]struct{}
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *stringSet) add(v string) {
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return
	}
	key := strings.ToLower(v)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, v)
}

func (s *stringSet) values() []string {
	return s.items
}
