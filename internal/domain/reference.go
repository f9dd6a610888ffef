package domain

// Bundled reference table. It is the default dataset and the fallback when
// the remote store is unavailable.

var (
	austria                = CountryMetadata{CountryName: "Austria", DisplayName: "Austria", ISO2: "AT", ISO3: "AUT"}
	australia              = CountryMetadata{CountryName: "Australia", DisplayName: "Australia", ISO2: "AU", ISO3: "AUS"}
	belgium                = CountryMetadata{CountryName: "Belgium", DisplayName: "Belgium", ISO2: "BE", ISO3: "BEL"}
	bulgaria               = CountryMetadata{CountryName: "Bulgaria", DisplayName: "Bulgaria", ISO2: "BG", ISO3: "BGR"}
	croatia                = CountryMetadata{CountryName: "Croatia", DisplayName: "Croatia", ISO2: "HR", ISO3: "HRV"}
	cyprus                 = CountryMetadata{CountryName: "Cyprus", DisplayName: "Cyprus", ISO2: "CY", ISO3: "CYP"}
	czechRepublic          = CountryMetadata{CountryName: "Czechia", DisplayName: "Czech Republic", ISO2: "CZ", ISO3: "CZE"}
	denmark                = CountryMetadata{CountryName: "Denmark", DisplayName: "Denmark", ISO2: "DK", ISO3: "DNK"}
	estonia                = CountryMetadata{CountryName: "Estonia", DisplayName: "Estonia", ISO2: "EE", ISO3: "EST"}
	finland                = CountryMetadata{CountryName: "Finland", DisplayName: "Finland", ISO2: "FI", ISO3: "FIN"}
	france                 = CountryMetadata{CountryName: "France", DisplayName: "France", ISO2: "FR", ISO3: "FRA"}
	germany                = CountryMetadata{CountryName: "Germany", DisplayName: "Germany", ISO2: "DE", ISO3: "DEU"}
	greece                 = CountryMetadata{CountryName: "Greece", DisplayName: "Greece", ISO2: "GR", ISO3: "GRC"}
	hongKong               = CountryMetadata{CountryName: "Hong Kong", DisplayName: "Hong Kong", ISO2: "HK", ISO3: "HKG"}
	hungary                = CountryMetadata{CountryName: "Hungary", DisplayName: "Hungary", ISO2: "HU", ISO3: "HUN"}
	iceland                = CountryMetadata{CountryName: "Iceland", DisplayName: "Iceland", ISO2: "IS", ISO3: "ISL"}
	ireland                = CountryMetadata{CountryName: "Ireland", DisplayName: "Ireland", ISO2: "IE", ISO3: "IRL"}
	india                  = CountryMetadata{CountryName: "India", DisplayName: "India", ISO2: "IN", ISO3: "IND"}
	italy                  = CountryMetadata{CountryName: "Italy", DisplayName: "Italy", ISO2: "IT", ISO3: "ITA"}
	latvia                 = CountryMetadata{CountryName: "Latvia", DisplayName: "Latvia", ISO2: "LV", ISO3: "LVA"}
	liechtenstein          = CountryMetadata{CountryName: "Liechtenstein", DisplayName: "Liechtenstein", ISO2: "LI", ISO3: "LIE"}
	lithuania              = CountryMetadata{CountryName: "Lithuania", DisplayName: "Lithuania", ISO2: "LT", ISO3: "LTU"}
	luxembourg             = CountryMetadata{CountryName: "Luxembourg", DisplayName: "Luxembourg", ISO2: "LU", ISO3: "LUX"}
	malta                  = CountryMetadata{CountryName: "Malta", DisplayName: "Malta", ISO2: "MT", ISO3: "MLT"}
	malaysia               = CountryMetadata{CountryName: "Malaysia", DisplayName: "Malaysia", ISO2: "MY", ISO3: "MYS"}
	mexico                 = CountryMetadata{CountryName: "Mexico", DisplayName: "Mexico", ISO2: "MX", ISO3: "MEX"}
	newZealand             = CountryMetadata{CountryName: "New Zealand", DisplayName: "New Zealand", ISO2: "NZ", ISO3: "NZL"}
	norway                 = CountryMetadata{CountryName: "Norway", DisplayName: "Norway", ISO2: "NO", ISO3: "NOR"}
	poland                 = CountryMetadata{CountryName: "Poland", DisplayName: "Poland", ISO2: "PL", ISO3: "POL"}
	portugal               = CountryMetadata{CountryName: "Portugal", DisplayName: "Portugal", ISO2: "PT", ISO3: "PRT"}
	romania                = CountryMetadata{CountryName: "Romania", DisplayName: "Romania", ISO2: "RO", ISO3: "ROU"}
	singapore              = CountryMetadata{CountryName: "Singapore", DisplayName: "Singapore", ISO2: "SG", ISO3: "SGP"}
	slovakia               = CountryMetadata{CountryName: "Slovakia", DisplayName: "Slovakia", ISO2: "SK", ISO3: "SVK"}
	slovenia               = CountryMetadata{CountryName: "Slovenia", DisplayName: "Slovenia", ISO2: "SI", ISO3: "SVN"}
	spain                  = CountryMetadata{CountryName: "Spain", DisplayName: "Spain", ISO2: "ES", ISO3: "ESP"}
	sweden                 = CountryMetadata{CountryName: "Sweden", DisplayName: "Sweden", ISO2: "SE", ISO3: "SWE"}
	switzerland            = CountryMetadata{CountryName: "Switzerland", DisplayName: "Switzerland", ISO2: "CH", ISO3: "CHE"}
	netherlands            = CountryMetadata{CountryName: "Netherlands", DisplayName: "Netherlands", ISO2: "NL", ISO3: "NLD"}
	britishVirginIslands   = CountryMetadata{CountryName: "British Virgin Islands", DisplayName: "Virgin Islands, British", ISO2: "VG", ISO3: "VGB"}
	usMinorOutlyingIslands = CountryMetadata{CountryName: "United States Minor Outlying Islands", DisplayName: "United States Minor Outlying Islands", ISO2: "UM", ISO3: "UMI"}
	usVirginIslands        = CountryMetadata{CountryName: "United States Virgin Islands", DisplayName: "Virgin Islands, U.S.", ISO2: "VI", ISO3: "VIR"}
	unitedStates           = CountryMetadata{CountryName: "United States of America", DisplayName: "United States", ISO2: "US", ISO3: "USA"}
	canada                 = CountryMetadata{CountryName: "Canada", DisplayName: "Canada", ISO2: "CA", ISO3: "CAN"}
	unitedKingdom          = CountryMetadata{CountryName: "United Kingdom", DisplayName: "United Kingdom", ISO2: "GB", ISO3: "GBR"}
	chile                  = CountryMetadata{CountryName: "Chile", DisplayName: "Chile", ISO2: "CL", ISO3: "CHL"}
)

var allCountries = []CountryMetadata{
	austria, australia, belgium, bulgaria, croatia, cyprus, czechRepublic, denmark,
	estonia, finland, france, germany, greece, hongKong, hungary, iceland, ireland,
	india, italy, latvia, liechtenstein, lithuania, luxembourg, malta, malaysia,
	mexico, newZealand, norway, poland, portugal, romania, singapore, slovakia,
	slovenia, spain, sweden, switzerland, netherlands, britishVirginIslands,
	usMinorOutlyingIslands, usVirginIslands, unitedStates, canada, unitedKingdom, chile,
}

func certified(m CountryMetadata, scheme string) CountryCertification {
	return CountryCertification{CountryMetadata: m, CertificationScheme: scheme, Status: StatusCertified}
}

func leadTime(m CountryMetadata, weeks int, upTo ...int) CountryCertification {
	d := &DurationEstimate{Min: weeks}
	if len(upTo) > 0 {
		d.Max = &upTo[0]
	}
	return CountryCertification{CountryMetadata: m, Status: StatusInProgress, DurationWeeks: d}
}

func notCertified(m CountryMetadata, notes string) CountryCertification {
	return CountryCertification{CountryMetadata: m, Status: StatusNotCertified, Notes: notes}
}

const notYetAvailable = "Certification not yet available."

// baseCountries is the list shared by every sensor line; per-line overrides
// replace entries by ISO3.
func baseCountries(overrides ...CountryCertification) []CountryCertification {
	list := []CountryCertification{
		certified(austria, "CE"),
		leadTime(australia, 3),
		certified(belgium, "CE"),
		certified(bulgaria, "CE"),
		certified(croatia, "CE"),
		certified(cyprus, "CE"),
		certified(czechRepublic, "CE"),
		certified(denmark, "CE"),
		certified(estonia, "CE"),
		certified(finland, "CE"),
		certified(france, "CE"),
		certified(germany, "CE"),
		certified(greece, "CE"),
		certified(hongKong, "CE"),
		certified(hungary, "CE"),
		certified(iceland, "CE"),
		certified(ireland, "CE"),
		certified(india, "WPC / BIS"),
		certified(italy, "CE"),
		certified(latvia, "CE"),
		certified(liechtenstein, "CE"),
		certified(lithuania, "CE"),
		certified(luxembourg, "CE"),
		certified(malta, "CE"),
		notCertified(malaysia, notYetAvailable),
		leadTime(mexico, 26, 40),
		leadTime(newZealand, 3),
		certified(norway, "CE"),
		certified(poland, "CE"),
		certified(portugal, "CE"),
		certified(romania, "CE"),
		notCertified(singapore, notYetAvailable),
		certified(slovakia, "CE"),
		certified(slovenia, "CE"),
		certified(spain, "CE"),
		certified(sweden, "CE"),
		certified(switzerland, "CE"),
		certified(netherlands, "CE"),
		certified(britishVirginIslands, "CE"),
		certified(usMinorOutlyingIslands, "FCC"),
		certified(usVirginIslands, "FCC"),
		certified(unitedStates, "FCC"),
		certified(canada, "ISED / IC"),
		certified(unitedKingdom, "UKCA"),
		leadTime(chile, 8, 12),
	}
	for _, o := range overrides {
		for i := range list {
			if list[i].ISO3 == o.ISO3 {
				list[i] = o
			}
		}
	}
	return list
}

func referenceTable() []SensorCertification {
	waffleUK := certified(unitedKingdom, "CE")
	waffleUK.Notes = "UKCA has been phased out; CE marking is recognised."

	return []SensorCertification{
		{
			Slug:        SensorOpenArea,
			Label:       "Open Area",
			Description: "Large, open deployments such as warehouses or manufacturing floors.",
			Countries:   baseCountries(),
		},
		{
			Slug:        SensorEntry,
			Label:       "Entry",
			Description: "Doorway and corridor sensors for access control.",
			Countries:   baseCountries(),
		},
		{
			Slug:        SensorWaffle,
			Label:       "Waffle",
			Description: "High-density ceiling grid sensors for retail and hospitality.",
			Countries:   baseCountries(leadTime(hongKong, 6), waffleUK),
		},
	}
}

// ReferenceSensors returns a fresh copy of the bundled dataset.
func ReferenceSensors() []SensorCertification {
	return referenceTable()
}

// AllCountries returns the unique country metadata referenced by the table.
func AllCountries() []CountryMetadata {
	out := make([]CountryMetadata, len(allCountries))
	copy(out, allCountries)
	return out
}
