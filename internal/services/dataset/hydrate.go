package dataset

import (
	"certmap/internal/domain"
	"certmap/internal/ports"
)

// HydrateReport describes what Hydrate kept and dropped.
type HydrateReport struct {
	Rows    int
	Dropped int
}

// Hydrate groups remote rows into sensor records. Rows missing a joined
// reference are dropped and counted; only a total loss is an error.
func Hydrate(rows []ports.CertificationRow) ([]domain.SensorCertification, HydrateReport, error) {
	report := HydrateReport{Rows: len(rows)}
	if len(rows) == 0 {
		return nil, report, ErrNoData
	}

	bySlug := make(map[domain.SensorSlug]*domain.SensorCertification)
	var order []domain.SensorSlug
	for _, row := range rows {
		if row.Sensor == nil || row.Country == nil {
			report.Dropped++
			continue
		}
		slug := domain.SensorSlug(row.Sensor.Slug)
		entry, ok := bySlug[slug]
		if !ok {
			entry = &domain.SensorCertification{
				Slug:        slug,
				Label:       row.Sensor.Name,
				Description: valueOr(row.Sensor.Description, ""),
			}
			bySlug[slug] = entry
			order = append(order, slug)
		}
		entry.Countries = append(entry.Countries, countryFromRow(row))
	}

	if len(bySlug) == 0 {
		return nil, report, ErrUnmappable
	}

	sensors := make([]domain.SensorCertification, 0, len(order))
	for _, slug := range order {
		s := *bySlug[slug]
		s.Countries = domain.SortCountries(s.Countries)
		sensors = append(sensors, s)
	}
	return domain.SortSensors(sensors), report, nil
}

func countryFromRow(row ports.CertificationRow) domain.CountryCertification {
	return domain.CountryCertification{
		CountryMetadata: domain.CountryMetadata{
			CountryName: row.Country.Name,
			DisplayName: valueOr(row.Country.DisplayName, row.Country.Name),
			ISO2:        row.Country.ISO2,
			ISO3:        row.Country.ISO3,
		},
		CertificationScheme: valueOr(row.CertificationScheme, ""),
		Status:              row.Status,
		DurationWeeks:       durationFromColumns(row.DurationWeeksMin, row.DurationWeeksMax),
		Notes:               valueOr(row.Notes, ""),
	}
}

// durationFromColumns rebuilds the estimate from the split min/max columns.
// A lone max becomes the minimum.
func durationFromColumns(lo, hi *int) *domain.DurationEstimate {
	switch {
	case lo != nil && *lo != 0:
		d := &domain.DurationEstimate{Min: *lo}
		if hi != nil {
			v := *hi
			d.Max = &v
		}
		return d
	case hi != nil && *hi != 0:
		return &domain.DurationEstimate{Min: *hi}
	}
	return nil
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
