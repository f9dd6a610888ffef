package ports

import (
	"context"

	"certmap/internal/domain"
)

// CountryRef is the joined country reference of a certification row.
type CountryRef struct {
	Name        string
	DisplayName *string
	ISO2        string
	ISO3        string
}

// SensorRef is the joined sensor type reference of a certification row.
type SensorRef struct {
	Slug        string
	Name        string
	Description *string
}

// CertificationRow is one record of the remote read query. Country and Sensor
// are nil when the joined reference is missing.
type CertificationRow struct {
	Status              domain.CertificationStatus
	CertificationScheme *string
	DurationWeeksMin    *int
	DurationWeeksMax    *int
	Notes               *string
	Country             *CountryRef
	Sensor              *SensorRef
}

// CertificationSource reads the remote certification table in one query.
type CertificationSource interface {
	FetchCertificationRows(ctx context.Context) ([]CertificationRow, error)
}

// SeedRepository upserts reference data into the remote store. Each method
// returns the store id keyed by the natural key (slug or iso3).
type SeedRepository interface {
	UpsertSensorTypes(ctx context.Context, sensors []SensorTypeRecord) (map[string]string, error)
	UpsertCountries(ctx context.Context, countries []CountryRecord) (map[string]string, error)
	UpsertCertifications(ctx context.Context, records []CertificationRecord) error
}

// SeedTx runs fn against a repository bound to a single transaction.
type SeedTx interface {
	InSeedTx(ctx context.Context, fn func(repo SeedRepository) error) error
}

type SensorTypeRecord struct {
	Slug        string
	Name        string
	Description string
}

type CountryRecord struct {
	Name        string
	DisplayName string
	ISO2        string
	ISO3        string
}

type CertificationRecord struct {
	SensorTypeID        string
	CountryID           string
	CertificationScheme *string
	Status              domain.CertificationStatus
	DurationWeeksMin    *int
	DurationWeeksMax    *int
	Notes               *string
}
