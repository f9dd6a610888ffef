// Package mapview derives everything the map client paints: per-country
// fill state, Mapbox style expressions, outline filters, click resolution and
// camera targets. The browser only applies what this package computes.
package mapview

import (
	"certmap/internal/domain"
)

const (
	StyleURL          = "mapbox://styles/mapbox/light-v11"
	SourceID          = "country-boundaries"
	SourceURL         = "mapbox://mapbox.country-boundaries-v1"
	SourceLayer       = "country_boundaries"
	FillLayerID       = "certified-country-fill"
	BorderLayerID     = "certified-country-border"
	HoverLayerID      = "certified-country-hover"
	SelectLayerID     = "certified-country-selected"
	ISOProperty       = "iso_3166_1_alpha_3"
	LabelBeforeLayer  = "waterway-label"
	MatchedOpacity    = 0.72
	FilteredOpacity   = 0.1
	NoDataOpacity     = 0.02
	InitialNoDataFill = 0.2
)

// PaintState is the derived fill state of one country polygon.
type PaintState string

const (
	StateMatched     PaintState = "matched"
	StateFilteredOut PaintState = "filtered_out"
	StateNoData      PaintState = "no_data"
)

// Fill is the color and opacity of one polygon.
type Fill struct {
	State   PaintState `json:"state"`
	Color   string     `json:"color"`
	Opacity float64    `json:"opacity"`
}

// NoDataFill paints boundaries without a certification record.
var NoDataFill = Fill{State: StateNoData, Color: domain.NeutralColor, Opacity: NoDataOpacity}

// CountryFill derives the fill of a country that has a record. Filtered-out
// countries are dimmed, not hidden.
func CountryFill(c domain.CountryCertification, searchActive bool, filtered map[string]struct{}) Fill {
	f := Fill{State: StateMatched, Color: c.Status.Color(), Opacity: MatchedOpacity}
	if searchActive {
		if _, ok := filtered[c.ISO3]; !ok {
			f.State = StateFilteredOut
			f.Opacity = FilteredOpacity
		}
	}
	return f
}

// Expression is a Mapbox GL style expression, serialized as a JSON array.
type Expression []any

// matchExpression builds ["match", ["get", iso], k1, v1, ..., fallback].
func matchExpression[T any](countries []domain.CountryCertification, value func(domain.CountryCertification) T, fallback T) Expression {
	expr := make(Expression, 0, 3+2*len(countries))
	expr = append(expr, "match", Expression{"get", ISOProperty})
	for _, c := range countries {
		expr = append(expr, c.ISO3, value(c))
	}
	return append(expr, fallback)
}

// isoFilter matches a single ISO3 code; "" matches nothing.
func isoFilter(iso3 string) Expression {
	return Expression{"==", Expression{"get", ISOProperty}, iso3}
}

// Style is the paint state pushed to the map after every data, filter,
// hover or selection change.
type Style struct {
	FillColor    Expression `json:"fill_color"`
	FillOpacity  Expression `json:"fill_opacity"`
	HoverFilter  Expression `json:"hover_filter"`
	SelectFilter Expression `json:"select_filter"`
}

// Paint computes the style for the active sensor's full country list.
func Paint(countries []domain.CountryCertification, filtered map[string]struct{}, searchActive bool, hovered, selected string) Style {
	return Style{
		FillColor: matchExpression(countries, func(c domain.CountryCertification) string {
			return c.Status.Color()
		}, domain.NeutralColor),
		FillOpacity: matchExpression(countries, func(c domain.CountryCertification) float64 {
			return CountryFill(c, searchActive, filtered).Opacity
		}, NoDataOpacity),
		HoverFilter:  isoFilter(hovered),
		SelectFilter: isoFilter(selected),
	}
}

// Fills returns the per-country fill keyed by ISO3, the same information as
// the expressions in Style in a form that is easy to inspect.
func Fills(countries []domain.CountryCertification, filtered map[string]struct{}, searchActive bool) map[string]Fill {
	out := make(map[string]Fill, len(countries))
	for _, c := range countries {
		out[c.ISO3] = CountryFill(c, searchActive, filtered)
	}
	return out
}

// FillFor resolves any boundary code, including ones with no record.
func FillFor(fills map[string]Fill, iso3 string) Fill {
	if f, ok := fills[iso3]; ok {
		return f
	}
	return NoDataFill
}
