package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Core certification models. Everything here is reference data: built once,
// read many times, never mutated in place after load.

type CertificationStatus string

const (
	StatusCertified    CertificationStatus = "certified"
	StatusInProgress   CertificationStatus = "in_progress"
	StatusNotCertified CertificationStatus = "not_certified"
)

// Statuses returns the declared display order used by totals and legends.
func Statuses() []CertificationStatus {
	return []CertificationStatus{StatusCertified, StatusInProgress, StatusNotCertified}
}

func (s CertificationStatus) Valid() bool {
	switch s {
	case StatusCertified, StatusInProgress, StatusNotCertified:
		return true
	}
	return false
}

func (s CertificationStatus) Label() string {
	switch s {
	case StatusCertified:
		return "Certified"
	case StatusInProgress:
		return "Lead Time"
	case StatusNotCertified:
		return "Not Yet Certified"
	}
	return string(s)
}

func (s CertificationStatus) Description() string {
	switch s {
	case StatusCertified:
		return "Ready for deployment today."
	case StatusInProgress:
		return "We can pursue certification with the indicated lead time."
	case StatusNotCertified:
		return "We have not completed certification yet."
	}
	return ""
}

// Color is the fill color used on the map and in status chips.
func (s CertificationStatus) Color() string {
	switch s {
	case StatusCertified:
		return "#2ecc71"
	case StatusInProgress:
		return "#f4b740"
	case StatusNotCertified:
		return "#f06363"
	}
	return NeutralColor
}

// NeutralColor paints countries with no certification record.
const NeutralColor = "#d1d5db"

// DurationEstimate is a lead time in weeks. Max is optional.
type DurationEstimate struct {
	Min int  `json:"min"`
	Max *int `json:"max,omitempty"`
}

var ErrInvalidDuration = errors.New("invalid duration estimate")

func (d DurationEstimate) Validate() error {
	if d.Min <= 0 {
		return fmt.Errorf("%w: min must be positive, got %d", ErrInvalidDuration, d.Min)
	}
	if d.Max != nil && *d.Max < d.Min {
		return fmt.Errorf("%w: max %d below min %d", ErrInvalidDuration, *d.Max, d.Min)
	}
	return nil
}

// Format renders "8–12 weeks", or "3 weeks" when there is no distinct max.
func (d DurationEstimate) Format() string {
	if d.Max != nil && *d.Max != d.Min && d.Min != 0 {
		return strconv.Itoa(d.Min) + "–" + strconv.Itoa(*d.Max) + " weeks"
	}
	return strconv.Itoa(d.Min) + " weeks"
}

type CountryMetadata struct {
	CountryName string `json:"country_name"`
	DisplayName string `json:"display_name,omitempty"`
	ISO2        string `json:"iso2"`
	ISO3        string `json:"iso3"`
}

// Name is the label shown to users.
func (c CountryMetadata) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.CountryName
}

type CountryCertification struct {
	CountryMetadata
	CertificationScheme string              `json:"certification_scheme,omitempty"`
	Status              CertificationStatus `json:"status"`
	DurationWeeks       *DurationEstimate   `json:"duration_weeks,omitempty"`
	Notes               string              `json:"notes,omitempty"`
}

// LeadTime returns the formatted duration, or "" when none is recorded.
func (c CountryCertification) LeadTime() string {
	if c.DurationWeeks == nil {
		return ""
	}
	return c.DurationWeeks.Format()
}

type SensorSlug string

const (
	SensorOpenArea SensorSlug = "open-area"
	SensorEntry    SensorSlug = "entry"
	SensorWaffle   SensorSlug = "waffle"
)

type SensorCertification struct {
	Slug        SensorSlug             `json:"slug"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Countries   []CountryCertification `json:"countries"`
}

var ErrDuplicateCountry = errors.New("duplicate country in sensor list")

// Validate checks per-sensor invariants: unique ISO3 codes, known statuses,
// sane durations.
func (s SensorCertification) Validate() error {
	seen := make(map[string]struct{}, len(s.Countries))
	for _, c := range s.Countries {
		if _, ok := seen[c.ISO3]; ok {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateCountry, c.ISO3, s.Slug)
		}
		seen[c.ISO3] = struct{}{}
		if !c.Status.Valid() {
			return fmt.Errorf("sensor %s country %s: unknown status %q", s.Slug, c.ISO3, c.Status)
		}
		if c.DurationWeeks != nil {
			if err := c.DurationWeeks.Validate(); err != nil {
				return fmt.Errorf("sensor %s country %s: %w", s.Slug, c.ISO3, err)
			}
		}
	}
	return nil
}

// Find looks up a country by ISO3 code.
func (s SensorCertification) Find(iso3 string) (CountryCertification, bool) {
	for _, c := range s.Countries {
		if c.ISO3 == iso3 {
			return c, true
		}
	}
	return CountryCertification{}, false
}

// Clone returns a deep copy so callers can never alias shared reference data.
func (s SensorCertification) Clone() SensorCertification {
	out := s
	out.Countries = make([]CountryCertification, len(s.Countries))
	for i, c := range s.Countries {
		if c.DurationWeeks != nil {
			d := *c.DurationWeeks
			if d.Max != nil {
				m := *d.Max
				d.Max = &m
			}
			c.DurationWeeks = &d
		}
		out.Countries[i] = c
	}
	return out
}
