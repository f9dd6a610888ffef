package catalog

import (
	"strings"

	"certmap/internal/domain"
)

// Matcher reports whether a country matches a search query.
type Matcher func(domain.CountryCertification) bool

// NormalizeQuery trims and lowercases a free-text query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// SearchActive reports whether query narrows anything.
func SearchActive(query string) bool {
	return NormalizeQuery(query) != ""
}

// Haystack is the searchable text of a country: display name, country name,
// scheme, formatted lead time and notes.
func Haystack(c domain.CountryCertification) string {
	return strings.ToLower(strings.Join([]string{
		c.Name(),
		c.CountryName,
		c.CertificationScheme,
		c.LeadTime(),
		c.Notes,
	}, " "))
}

// NewMatcher compiles query into a case-insensitive substring matcher over
// Haystack. An empty query matches every country.
func NewMatcher(query string) Matcher {
	q := NormalizeQuery(query)
	if q == "" {
		return func(domain.CountryCertification) bool { return true }
	}
	return func(c domain.CountryCertification) bool {
		return strings.Contains(Haystack(c), q)
	}
}

// Filter returns the countries matching query in input order. The result is
// always a new slice.
func Filter(countries []domain.CountryCertification, query string) []domain.CountryCertification {
	match := NewMatcher(query)
	out := make([]domain.CountryCertification, 0, len(countries))
	for _, c := range countries {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

// ISOSet indexes countries by ISO3 code.
func ISOSet(countries []domain.CountryCertification) map[string]struct{} {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[c.ISO3] = struct{}{}
	}
	return set
}

// Totals counts countries per status. Every status is present in the result.
type Totals map[domain.CertificationStatus]int

// CountStatuses tallies countries per status over the full list.
func CountStatuses(countries []domain.CountryCertification) Totals {
	t := Totals{}
	for _, s := range domain.Statuses() {
		t[s] = 0
	}
	for _, c := range countries {
		t[c.Status]++
	}
	return t
}

// Sum is the total number of countries counted.
func (t Totals) Sum() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}
