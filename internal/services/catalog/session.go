package catalog

import (
	"net/url"
	"strings"

	"certmap/internal/domain"
)

// Session is the ephemeral widget state: active sensor line, search text,
// selected and hovered country. The selected country, when set, is always
// part of the current filtered list. A Session is not safe for concurrent
// use; each request or view owns its own.
type Session struct {
	sensors  []domain.SensorCertification
	active   domain.SensorSlug
	query    string
	selected string
	hovered  string
}

// NewSession starts on the first sensor line with no query or selection.
func NewSession(sensors []domain.SensorCertification) *Session {
	s := &Session{}
	s.SetDataset(sensors)
	return s
}

// ParseSession rebuilds a session from URL parameters (sensor, q, selected,
// hover) by replaying them as user actions, so invalid combinations are
// normalized the same way the widget would.
func ParseSession(sensors []domain.SensorCertification, values url.Values) *Session {
	s := NewSession(sensors)
	if slug := values.Get("sensor"); slug != "" {
		s.SelectSensor(domain.SensorSlug(slug))
	}
	s.SetQuery(values.Get("q"))
	if iso3 := values.Get("selected"); iso3 != "" {
		s.SelectCountry(iso3)
	}
	s.Hover(values.Get("hover"))
	return s
}

// SetDataset swaps the underlying sensors, e.g. after a remote sync. The
// active sensor falls back to the first one when its slug disappeared.
func (s *Session) SetDataset(sensors []domain.SensorCertification) {
	if len(sensors) == 0 {
		sensors = domain.ReferenceSensors()
	}
	s.sensors = sensors
	if _, ok := s.sensor(s.active); !ok {
		s.active = sensors[0].Slug
		s.selected = ""
		s.hovered = ""
	}
	s.revalidate()
}

// SelectSensor switches the active line and clears selection and hover.
// Unknown slugs are ignored.
func (s *Session) SelectSensor(slug domain.SensorSlug) bool {
	if _, ok := s.sensor(slug); !ok {
		return false
	}
	s.active = slug
	s.selected = ""
	s.hovered = ""
	return true
}

// SetQuery updates the search text. An empty query clears the selection;
// otherwise the selection is dropped only if it no longer matches.
func (s *Session) SetQuery(query string) {
	s.query = query
	if !SearchActive(query) {
		s.selected = ""
		return
	}
	s.revalidate()
}

// SelectCountry selects iso3 if it is in the filtered list. An empty code
// clears the selection. A miss changes nothing and reports false.
func (s *Session) SelectCountry(iso3 string) bool {
	iso3 = strings.ToUpper(strings.TrimSpace(iso3))
	if iso3 == "" {
		s.selected = ""
		return true
	}
	if _, ok := ISOSet(s.filtered())[iso3]; !ok {
		return false
	}
	s.selected = iso3
	return true
}

// Hover records the hovered boundary. Any code is accepted since the map
// hovers countries without data too.
func (s *Session) Hover(iso3 string) {
	s.hovered = strings.ToUpper(strings.TrimSpace(iso3))
}

func (s *Session) Active() domain.SensorSlug { return s.active }
func (s *Session) Query() string { return s.query }
func (s *Session) Selected() string { return s.selected }
func (s *Session) Hovered() string { return s.hovered }

// View is the state derived from a session.
type View struct {
	Sensor       domain.SensorCertification
	Query        string
	SearchActive bool
	Filtered     []domain.CountryCertification
	FilteredISO  map[string]struct{}
	Totals       Totals
	Selected     *domain.CountryCertification
	Hovered      string
}

func (s *Session) View() View {
	sensor, _ := s.sensor(s.active)
	filtered := Filter(sensor.Countries, s.query)
	v := View{
		Sensor:       sensor,
		Query:        s.query,
		SearchActive: SearchActive(s.query),
		Filtered:     filtered,
		FilteredISO:  ISOSet(filtered),
		Totals:       CountStatuses(sensor.Countries),
		Hovered:      s.hovered,
	}
	if _, ok := v.FilteredISO[s.selected]; ok {
		if c, ok := sensor.Find(s.selected); ok {
			v.Selected = &c
		}
	}
	return v
}

func (s *Session) sensor(slug domain.SensorSlug) (domain.SensorCertification, bool) {
	for _, sensor := range s.sensors {
		if sensor.Slug == slug {
			return sensor, true
		}
	}
	return domain.SensorCertification{}, false
}

func (s *Session) filtered() []domain.CountryCertification {
	sensor, _ := s.sensor(s.active)
	return Filter(sensor.Countries, s.query)
}

func (s *Session) revalidate() {
	if s.selected == "" {
		return
	}
	if _, ok := ISOSet(s.filtered())[s.selected]; !ok {
		s.selected = ""
	}
}
