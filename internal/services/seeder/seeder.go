package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"certmap/internal/domain"
	"certmap/internal/ports"
)

// ErrUnresolvedReference is returned when a certification row cannot be tied
// to a stored sensor type or country.
var ErrUnresolvedReference = errors.New("unresolved sensor or country reference")

// Service writes a sensor dataset into the remote store.
type Service struct {
	tx  ports.SeedTx
	log *slog.Logger
}

func New(tx ports.SeedTx, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{tx: tx, log: log}
}

// Summary counts what a seed run wrote.
type Summary struct {
	SensorTypes    int
	Countries      int
	Certifications int
}

// Seed upserts sensor types, countries and certification records in one
// transaction. Nothing is written when any step fails.
func (s *Service) Seed(ctx context.Context, sensors []domain.SensorCertification) (Summary, error) {
	for _, sensor := range sensors {
		if err := sensor.Validate(); err != nil {
			return Summary{}, fmt.Errorf("validate dataset: %w", err)
		}
	}

	var sum Summary
	err := s.tx.InSeedTx(ctx, func(repo ports.SeedRepository) error {
		sensorIDs, err := repo.UpsertSensorTypes(ctx, SensorTypes(sensors))
		if err != nil {
			return err
		}
		countries := UniqueCountries(sensors)
		countryIDs, err := repo.UpsertCountries(ctx, countries)
		if err != nil {
			return err
		}
		records, err := Certifications(sensors, sensorIDs, countryIDs)
		if err != nil {
			return err
		}
		if err := repo.UpsertCertifications(ctx, records); err != nil {
			return err
		}
		sum = Summary{SensorTypes: len(sensorIDs), Countries: len(countries), Certifications: len(records)}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("seed certifications: %w", err)
	}
	s.log.Info("seeded certification data",
		"sensor_types", sum.SensorTypes,
		"countries", sum.Countries,
		"certifications", sum.Certifications,
	)
	return sum, nil
}

// SensorTypes maps sensor lines to store records.
func SensorTypes(sensors []domain.SensorCertification) []ports.SensorTypeRecord {
	out := make([]ports.SensorTypeRecord, 0, len(sensors))
	for _, s := range sensors {
		out = append(out, ports.SensorTypeRecord{Slug: string(s.Slug), Name: s.Label, Description: s.Description})
	}
	return out
}

// UniqueCountries collects each ISO3 code once; the first occurrence wins.
// A missing display name falls back to the country name.
func UniqueCountries(sensors []domain.SensorCertification) []ports.CountryRecord {
	seen := make(map[string]struct{})
	var out []ports.CountryRecord
	for _, s := range sensors {
		for _, c := range s.Countries {
			if _, ok := seen[c.ISO3]; ok {
				continue
			}
			seen[c.ISO3] = struct{}{}
			out = append(out, ports.CountryRecord{
				Name:        c.CountryName,
				DisplayName: c.Name(),
				ISO2:        c.ISO2,
				ISO3:        c.ISO3,
			})
		}
	}
	return out
}

// Certifications builds one record per sensor and country, resolving both
// natural keys through the given id maps.
func Certifications(sensors []domain.SensorCertification, sensorIDs, countryIDs map[string]string) ([]ports.CertificationRecord, error) {
	var out []ports.CertificationRecord
	for _, s := range sensors {
		sensorID, ok := sensorIDs[string(s.Slug)]
		if !ok || sensorID == "" {
			return nil, fmt.Errorf("%w: sensor %s", ErrUnresolvedReference, s.Slug)
		}
		for _, c := range s.Countries {
			countryID, ok := countryIDs[c.ISO3]
			if !ok || countryID == "" {
				return nil, fmt.Errorf("%w: country %s", ErrUnresolvedReference, c.ISO3)
			}
			rec := ports.CertificationRecord{
				SensorTypeID:        sensorID,
				CountryID:           countryID,
				CertificationScheme: optional(c.CertificationScheme),
				Status:              c.Status,
				Notes:               optional(c.Notes),
			}
			if d := c.DurationWeeks; d != nil {
				lo := d.Min
				rec.DurationWeeksMin = &lo
				if d.Max != nil {
					hi := *d.Max
					rec.DurationWeeksMax = &hi
				}
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
