package mapview

import (
	"math"
	"strings"
	"sync/atomic"

	"certmap/internal/domain"
)

// Config holds the map provider settings. Without a token the map is
// disabled and nothing talks to the provider.
type Config struct {
	AccessToken string
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.AccessToken) != "" }

// FallbackNotice replaces the map when no token is configured.
func FallbackNotice(sensorLabel string) string {
	return "Add your Mapbox token to view the certification coverage map for " + sensorLabel + " sensors."
}

type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Camera is an ease-to target.
type Camera struct {
	Center     LngLat  `json:"center"`
	Zoom       float64 `json:"zoom"`
	DurationMS int     `json:"duration_ms"`
}

const (
	ClickZoomFloor    = 2.2
	ClickEaseMS       = 600
	InitialZoom       = 1.4
	MinZoom           = 1.2
	FitPadding        = 80
	FitMaxZoom        = 4.2
	FitDurationMS     = 800
	BorderLineWidth   = 0.3
	HoverLineWidth    = 2
	SelectedLineWidth = 3
	BorderLineColor   = "#94a3b8"
	HoverLineColor    = "#111827"
	SelectedLineColor = "#0f172a"
)

// InitialCamera is where the map opens.
var InitialCamera = Camera{Center: LngLat{Lng: 8, Lat: 25}, Zoom: InitialZoom}

// ClickEvent is a click on a boundary polygon.
type ClickEvent struct {
	ISO3   string  `json:"iso3"`
	LngLat *LngLat `json:"lng_lat,omitempty"`
	Zoom   float64 `json:"zoom"`
}

// ClickResult reports what a click resolved to. Camera is nil when the view
// should not move.
type ClickResult struct {
	Country *domain.CountryCertification `json:"country,omitempty"`
	Camera  *Camera                      `json:"camera,omitempty"`
}

// SelectFunc receives the ISO3 code of a clicked country.
type SelectFunc func(iso3 string)

// View hosts the map event handlers. Handlers are registered once and read
// the country list and selection callback through reference cells, so they
// always see the latest state without re-registration.
type View struct {
	countries atomic.Pointer[[]domain.CountryCertification]
	onSelect  atomic.Pointer[SelectFunc]
	hovered   atomic.Pointer[string]
}

// NewView returns a View with an empty country list and no select callback.
func NewView() *View {
	v := &View{}
	empty := ""
	v.hovered.Store(&empty)
	return v
}

// SetCountries updates the list click resolution runs against.
func (v *View) SetCountries(countries []domain.CountryCertification) {
	v.countries.Store(&countries)
}

// OnSelect updates the selection callback.
func (v *View) OnSelect(fn SelectFunc) {
	v.onSelect.Store(&fn)
}

// HandleClick resolves the clicked boundary against the current list. A miss
// changes nothing. A hit reports the selection and, when the click carries a
// location, an ease-to camera that never zooms out.
func (v *View) HandleClick(ev ClickEvent) ClickResult {
	iso3 := strings.ToUpper(strings.TrimSpace(ev.ISO3))
	if iso3 == "" {
		return ClickResult{}
	}
	list := v.countries.Load()
	if list == nil {
		return ClickResult{}
	}
	var hit *domain.CountryCertification
	for i := range *list {
		if (*list)[i].ISO3 == iso3 {
			c := (*list)[i]
			hit = &c
			break
		}
	}
	if hit == nil {
		return ClickResult{}
	}
	if fn := v.onSelect.Load(); fn != nil && *fn != nil {
		(*fn)(hit.ISO3)
	}
	res := ClickResult{Country: hit}
	if ev.LngLat != nil {
		res.Camera = &Camera{
			Center:     *ev.LngLat,
			Zoom:       math.Max(ev.Zoom, ClickZoomFloor),
			DurationMS: ClickEaseMS,
		}
	}
	return res
}

// HandleHover records the hovered boundary; "" clears it.
func (v *View) HandleHover(iso3 string) {
	iso3 = strings.ToUpper(strings.TrimSpace(iso3))
	v.hovered.Store(&iso3)
}

// HandleLeave clears the hover outline.
func (v *View) HandleLeave() { v.HandleHover("") }

func (v *View) Hovered() string { return *v.hovered.Load() }
