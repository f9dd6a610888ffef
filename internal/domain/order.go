package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SensorOrder is the declared priority of sensor lines in the switcher. It
// does not depend on where the dataset came from.
var SensorOrder = []SensorSlug{SensorOpenArea, SensorEntry, SensorWaffle}

func sensorRank(slug SensorSlug) int {
	if i := slices.Index(SensorOrder, slug); i >= 0 {
		return i
	}
	return len(SensorOrder)
}

// SortSensors returns a copy ordered by SensorOrder. Unknown slugs keep their
// relative order after the known ones.
func SortSensors(sensors []SensorCertification) []SensorCertification {
	out := slices.Clone(sensors)
	slices.SortStableFunc(out, func(a, b SensorCertification) int {
		return sensorRank(a.Slug) - sensorRank(b.Slug)
	})
	return out
}

// SortCountries returns a copy ordered by display name, case-insensitively.
func SortCountries(countries []CountryCertification) []CountryCertification {
	out := slices.Clone(countries)
	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b CountryCertification) int {
		return col.CompareString(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})
	return out
}
