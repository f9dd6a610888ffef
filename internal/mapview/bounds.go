package mapview

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Fit is a fit-bounds request for the selected country.
type Fit struct {
	Bounds     [2][2]float64 `json:"bounds"`
	Padding    int           `json:"padding"`
	MaxZoom    float64       `json:"max_zoom"`
	DurationMS int           `json:"duration_ms"`
}

// FocusBounds computes the bounds of every feature tagged with iso3. When
// there is no selection or no geometry is available yet it reports false:
// the selection stays, the camera does not move.
func FocusBounds(fc *geojson.FeatureCollection, iso3 string) (Fit, bool) {
	if fc == nil {
		return Fit{}, false
	}
	iso3 = strings.ToUpper(strings.TrimSpace(iso3))
	if iso3 == "" {
		return Fit{}, false
	}

	var (
		bound orb.Bound
		found bool
	)
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !strings.EqualFold(f.Properties.MustString(ISOProperty, ""), iso3) {
			continue
		}
		b := f.Geometry.Bound()
		if !found {
			bound = b
			found = true
			continue
		}
		bound = bound.Union(b)
	}
	if !found {
		return Fit{}, false
	}
	return Fit{
		Bounds:     [2][2]float64{{bound.Min.Lon(), bound.Min.Lat()}, {bound.Max.Lon(), bound.Max.Lat()}},
		Padding:    FitPadding,
		MaxZoom:    FitMaxZoom,
		DurationMS: FitDurationMS,
	}, true
}
