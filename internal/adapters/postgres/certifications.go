package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"certmap/internal/domain"
	"certmap/internal/ports"
)

// certificationQuery is the single remote read. LEFT JOINs keep rows whose
// references are missing so the caller can decide what to drop.
const certificationQuery = `
    SELECT cr.status, cr.certification_scheme, cr.duration_weeks_min, cr.duration_weeks_max, cr.notes,
           c.name, c.display_name, c.iso2, c.iso3,
           st.slug, st.name, st.description
    FROM certification_records cr
    LEFT JOIN countries c ON c.id = cr.country_id
    LEFT JOIN sensor_types st ON st.id = cr.sensor_type_id
`

// FetchCertificationRows implements ports.CertificationSource.
func (db *DB) FetchCertificationRows(ctx context.Context) ([]ports.CertificationRow, error) {
	return fetchCertificationRows(ctx, db.Pool)
}

func fetchCertificationRows(ctx context.Context, q querier) ([]ports.CertificationRow, error) {
	rows, err := q.Query(ctx, certificationQuery)
	if err != nil {
		return nil, fmt.Errorf("query certification records: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanCertificationRow)
	if err != nil {
		return nil, fmt.Errorf("scan certification records: %w", err)
	}
	return out, nil
}

func scanCertificationRow(row pgx.CollectableRow) (ports.CertificationRow, error) {
	var (
		out                           ports.CertificationRow
		status                        string
		cName, cDisplay, cISO2, cISO3 *string
		sSlug, sName, sDesc           *string
	)
	err := row.Scan(
		&status, &out.CertificationScheme, &out.DurationWeeksMin, &out.DurationWeeksMax, &out.Notes,
		&cName, &cDisplay, &cISO2, &cISO3,
		&sSlug, &sName, &sDesc,
	)
	if err != nil {
		return out, err
	}
	out.Status = domain.CertificationStatus(status)
	if cISO3 != nil {
		out.Country = &ports.CountryRef{
			Name:        deref(cName),
			DisplayName: cDisplay,
			ISO2:        deref(cISO2),
			ISO3:        *cISO3,
		}
	}
	if sSlug != nil {
		out.Sensor = &ports.SensorRef{Slug: *sSlug, Name: deref(sName), Description: sDesc}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RemoteSource connects, reads once and disconnects. The server only ever
// needs a single query, so it holds no pool.
type RemoteSource struct {
	URL string
}

func (s RemoteSource) FetchCertificationRows(ctx context.Context) ([]ports.CertificationRow, error) {
	db, err := Connect(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("connect remote store: %w", err)
	}
	defer db.Close()
	return db.FetchCertificationRows(ctx)
}
