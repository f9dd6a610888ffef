package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certmap/internal/domain"
	"certmap/internal/ports"
)

func ptr[T any](v T) *T { return &v }

func row(slug, iso3, name string, status domain.CertificationStatus) ports.CertificationRow {
	return ports.CertificationRow{
		Status:  status,
		Country: &ports.CountryRef{Name: name, ISO2: iso3[:2], ISO3: iso3},
		Sensor:  &ports.SensorRef{Slug: slug, Name: slug + " label"},
	}
}

func TestHydrate_EmptyRowsIsNoData(t *testing.T) {
	sensors, report, err := Hydrate(nil)
	require.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, sensors)
	assert.Equal(t, 0, report.Rows)
}

func TestHydrate_AllRowsMissingReferencesIsUnmappable(t *testing.T) {
	noCountry := row("entry", "FRA", "France", domain.StatusCertified)
	noCountry.Country = nil
	noSensor := row("entry", "DEU", "Germany", domain.StatusCertified)
	noSensor.Sensor = nil

	_, report, err := Hydrate([]ports.CertificationRow{noCountry, noSensor})
	require.ErrorIs(t, err, ErrUnmappable)
	assert.Equal(t, 2, report.Dropped)
}

func TestHydrate_PartialDropsAreTolerated(t *testing.T) {
	orphan := row("entry", "DEU", "Germany", domain.StatusCertified)
	orphan.Country = nil

	sensors, report, err := Hydrate([]ports.CertificationRow{
		row("entry", "FRA", "France", domain.StatusCertified),
		orphan,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Dropped)
	require.Len(t, sensors, 1)
	require.Len(t, sensors[0].Countries, 1)
	assert.Equal(t, "FRA", sensors[0].Countries[0].ISO3)
}

func TestHydrate_GroupsSortsAndFillsDefaults(t *testing.T) {
	waffle := row("waffle", "ESP", "Spain", domain.StatusCertified)
	waffle.Sensor.Description = ptr("ceiling grid")
	austria := row("open-area", "AUT", "Austria", domain.StatusCertified)
	austria.CertificationScheme = ptr("CE")
	chile := row("open-area", "CHL", "Chile", domain.StatusInProgress)
	chile.Country.DisplayName = ptr("chile")

	sensors, _, err := Hydrate([]ports.CertificationRow{waffle, chile, austria})
	require.NoError(t, err)
	require.Len(t, sensors, 2)

	assert.Equal(t, domain.SensorOpenArea, sensors[0].Slug, "sensors follow declared priority")
	assert.Equal(t, domain.SensorWaffle, sensors[1].Slug)
	assert.Equal(t, "", sensors[0].Description)
	assert.Equal(t, "ceiling grid", sensors[1].Description)

	names := []string{sensors[0].Countries[0].Name(), sensors[0].Countries[1].Name()}
	assert.Equal(t, []string{"Austria", "chile"}, names, "countries sorted case-insensitively")
	assert.Equal(t, "Austria", sensors[0].Countries[0].DisplayName, "display name falls back to name")
	assert.Equal(t, "CE", sensors[0].Countries[0].CertificationScheme)
}

func TestDurationFromColumns(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi *int
		want   *domain.DurationEstimate
	}{
		{name: "neither", want: nil},
		{name: "min only", lo: ptr(3), want: &domain.DurationEstimate{Min: 3}},
		{name: "both", lo: ptr(8), hi: ptr(12), want: &domain.DurationEstimate{Min: 8, Max: ptr(12)}},
		{name: "max only becomes min", hi: ptr(6), want: &domain.DurationEstimate{Min: 6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, durationFromColumns(tc.lo, tc.hi))
		})
	}
}
