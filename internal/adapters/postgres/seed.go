package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"certmap/internal/ports"
)

// seedRepo runs upserts against one transaction.
type seedRepo struct {
	q querier
}

// InSeedTx implements ports.SeedTx. The transaction commits only when fn
// returns nil.
func (db *DB) InSeedTx(ctx context.Context, fn func(repo ports.SeedRepository) error) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	return fn(seedRepo{q: tx})
}

func (r seedRepo) UpsertSensorTypes(ctx context.Context, sensors []ports.SensorTypeRecord) (map[string]string, error) {
	ids := make(map[string]string, len(sensors))
	for _, s := range sensors {
		var id string
		err := r.q.QueryRow(ctx, `
            INSERT INTO sensor_types (slug, name, description)
            VALUES ($1, $2, $3)
            ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
            RETURNING id::text
        `, s.Slug, s.Name, s.Description).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("upsert sensor type %s: %w", s.Slug, err)
		}
		ids[s.Slug] = id
	}
	return ids, nil
}

func (r seedRepo) UpsertCountries(ctx context.Context, countries []ports.CountryRecord) (map[string]string, error) {
	ids := make(map[string]string, len(countries))
	for _, c := range countries {
		var id string
		err := r.q.QueryRow(ctx, `
            INSERT INTO countries (name, display_name, iso2, iso3)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (iso3) DO UPDATE SET name = EXCLUDED.name, display_name = EXCLUDED.display_name, iso2 = EXCLUDED.iso2
            RETURNING id::text
        `, c.Name, c.DisplayName, c.ISO2, c.ISO3).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("upsert country %s: %w", c.ISO3, err)
		}
		ids[c.ISO3] = id
	}
	return ids, nil
}

func (r seedRepo) UpsertCertifications(ctx context.Context, records []ports.CertificationRecord) error {
	b := &pgx.Batch{}
	for _, rec := range records {
		b.Queue(`
            INSERT INTO certification_records
                (sensor_type_id, country_id, certification_scheme, status, duration_weeks_min, duration_weeks_max, notes)
            VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
            ON CONFLICT (sensor_type_id, country_id) DO UPDATE SET
                certification_scheme = EXCLUDED.certification_scheme,
                status = EXCLUDED.status,
                duration_weeks_min = EXCLUDED.duration_weeks_min,
                duration_weeks_max = EXCLUDED.duration_weeks_max,
                notes = EXCLUDED.notes
        `, rec.SensorTypeID, rec.CountryID, rec.CertificationScheme, string(rec.Status),
			rec.DurationWeeksMin, rec.DurationWeeksMax, rec.Notes)
	}
	br := r.q.SendBatch(ctx, b)
	for range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert certification records: %w", err)
		}
	}
	return br.Close()
}
