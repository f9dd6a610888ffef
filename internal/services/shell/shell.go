package shell

import (
	"fmt"

	"certmap/internal/domain"
	"certmap/internal/mapview"
	"certmap/internal/services/catalog"
	"certmap/internal/services/dataset"
)

const (
	tagline         = "Quickly confirm where your deployment is supported and understand what it takes to expand into new markets."
	noResults       = "No certified locations yet — let us know what you need and we will queue it up."
	emptyList       = "We have not certified this market yet. Let us know your priority locations and we will fast-track them."
	browsePrompt    = "Hover over the map or select a country below to see certification requirements at a glance."
	browseTitle     = "Browse certified markets"
	reachOut        = " Reach out to begin certification discussions."
	searchLabel     = "Search for a country or certification"
	searchExample   = "e.g. France, FCC, 3 weeks"
	pendingScheme   = "Certification pending"
	notYetCertShort = "Not yet certified"
)

type SensorTab struct {
	Slug   domain.SensorSlug `json:"slug"`
	Label  string            `json:"label"`
	Active bool              `json:"active"`
}

type StatusChip struct {
	Status domain.CertificationStatus `json:"status"`
	Label  string                     `json:"label"`
	Color  string                     `json:"color"`
	Count  int                        `json:"count"`
}

type LegendEntry struct {
	Status      domain.CertificationStatus `json:"status"`
	Label       string                     `json:"label"`
	Color       string                     `json:"color"`
	Description string                     `json:"description"`
}

type CountryRow struct {
	ISO3     string `json:"iso3"`
	Name     string `json:"name"`
	Scheme   string `json:"scheme"`
	Color    string `json:"color"`
	Detail   string `json:"detail,omitempty"`
	Selected bool   `json:"selected"`
}

type Detail struct {
	Title       string `json:"title"`
	StatusLabel string `json:"status_label,omitempty"`
	StatusColor string `json:"status_color,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
	LeadTime    string `json:"lead_time,omitempty"`
	StatusText  string `json:"status_text,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

type MapSection struct {
	Enabled     bool           `json:"enabled"`
	Fallback    string         `json:"fallback,omitempty"`
	AccessToken string         `json:"-"`
	Style       *mapview.Style `json:"style,omitempty"`
}

// Page is the complete view model of the widget.
type Page struct {
	Heading      string            `json:"heading"`
	Sensor       domain.SensorSlug `json:"sensor"`
	Provenance   string            `json:"provenance"`
	Syncing      bool              `json:"syncing"`
	SyncError    string            `json:"sync_error,omitempty"`
	Tagline      string            `json:"tagline,omitempty"`
	Tabs         []SensorTab       `json:"tabs"`
	Totals       []StatusChip      `json:"totals"`
	Query        string            `json:"query"`
	SearchLabel  string            `json:"search_label"`
	Placeholder  string            `json:"placeholder"`
	SearchHint   string            `json:"search_hint,omitempty"`
	Legend       []LegendEntry     `json:"legend"`
	Detail       Detail            `json:"detail"`
	Countries    []CountryRow      `json:"countries"`
	EmptyMessage string            `json:"empty_message,omitempty"`
	Map          MapSection        `json:"map"`
}

// Build derives the page from the dataset snapshot and the session. It reads
// only its inputs.
func Build(snap dataset.Snapshot, session *catalog.Session, mapCfg mapview.Config) Page {
	view := session.View()
	sensor := view.Sensor

	p := Page{
		Heading:     sensor.Label + " sensors",
		Sensor:      sensor.Slug,
		Provenance:  provenanceText(snap),
		Syncing:     snap.Syncing,
		SyncError:   snap.SyncError,
		Query:       view.Query,
		SearchLabel: searchLabel,
		Placeholder: searchExample,
	}
	if p.SyncError == "" {
		p.Tagline = tagline
	}

	for _, s := range domain.SortSensors(snap.Sensors) {
		p.Tabs = append(p.Tabs, SensorTab{Slug: s.Slug, Label: s.Label, Active: s.Slug == sensor.Slug})
	}
	for _, st := range domain.Statuses() {
		p.Totals = append(p.Totals, StatusChip{Status: st, Label: st.Label(), Color: st.Color(), Count: view.Totals[st]})
		p.Legend = append(p.Legend, LegendEntry{Status: st, Label: st.Label(), Color: st.Color(), Description: st.Description()})
	}

	if view.SearchActive {
		p.SearchHint = searchHint(len(view.Filtered))
	}

	p.Detail = detail(view.Selected)
	for _, c := range domain.SortCountries(view.Filtered) {
		p.Countries = append(p.Countries, countryRow(c, c.ISO3 == session.Selected()))
	}
	if len(p.Countries) == 0 {
		p.EmptyMessage = emptyList
	}

	p.Map = mapSection(view, sensor, mapCfg)
	return p
}

func provenanceText(snap dataset.Snapshot) string {
	text := "Using bundled reference data"
	if snap.Provenance == dataset.ProvenanceRemote {
		text = "Synced from remote store"
	}
	if snap.Syncing {
		text += " · refreshing…"
	}
	return text
}

func searchHint(n int) string {
	if n == 0 {
		return noResults
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Showing %d certified location%s", n, plural)
}

func detail(selected *domain.CountryCertification) Detail {
	if selected == nil {
		return Detail{Title: browseTitle, Prompt: browsePrompt}
	}
	d := Detail{
		Title:       selected.Name(),
		StatusLabel: selected.Status.Label(),
		StatusColor: selected.Status.Color(),
		Scheme:      selected.CertificationScheme,
		LeadTime:    selected.LeadTime(),
		StatusText:  selected.Status.Description(),
		Notes:       selected.Notes,
	}
	if selected.Status == domain.StatusNotCertified {
		d.StatusText += reachOut
	}
	return d
}

func countryRow(c domain.CountryCertification, selected bool) CountryRow {
	row := CountryRow{
		ISO3:     c.ISO3,
		Name:     c.Name(),
		Scheme:   c.CertificationScheme,
		Color:    c.Status.Color(),
		Selected: selected,
	}
	if row.Scheme == "" {
		row.Scheme = pendingScheme
	}
	switch {
	case c.DurationWeeks != nil:
		row.Detail = "Lead time: " + c.LeadTime()
	case c.Status == domain.StatusNotCertified:
		row.Detail = notYetCertShort
	}
	return row
}

func mapSection(view catalog.View, sensor domain.SensorCertification, cfg mapview.Config) MapSection {
	if !cfg.Enabled() {
		return MapSection{Fallback: mapview.FallbackNotice(sensor.Label)}
	}
	selected := ""
	if view.Selected != nil {
		selected = view.Selected.ISO3
	}
	style := mapview.Paint(sensor.Countries, view.FilteredISO, view.SearchActive, view.Hovered, selected)
	return MapSection{Enabled: true, AccessToken: cfg.AccessToken, Style: &style}
}
