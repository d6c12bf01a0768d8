package models

// Resolution status of a unique address. A row is terminal once it leaves
// StatusPending: StatusOK rows are never re-queried, StatusFailed rows are
// retried in full on the next geocoding run.
const (
	StatusPending = "Pending"
	StatusOK      = "OK"
	StatusFailed  = "FAILED"
)

// Provider tags recorded on a geocoded row.
const (
	ProviderNominatim = "Nominatim"
	ProviderYandex    = "Yandex"
	ProviderAzure     = "Azure"
	ProviderLibpostal = "Libpostal"
)

// Components is the common structured schema every geocoding provider is
// parsed into. All values are plain strings except the coordinates; empty
// string means the provider did not return that field.
type Components struct {
	Country            string  `json:"country"`
	Province           string  `json:"province"`
	AdministrativeUnit string  `json:"administrative_unit"`
	Town               string  `json:"town"`
	Village            string  `json:"village"`
	Neighbourhood      string  `json:"neighbourhood"`
	Street             string  `json:"street"`
	StreetNumber       string  `json:"street_number"`
	Block              string  `json:"block"`
	Lane               string  `json:"lane"`
	Building           string  `json:"building"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Provider           string  `json:"provider"`
}

// IsEmpty reports whether no provider populated anything useful.
func (c *Components) IsEmpty() bool {
	return c.Country == "" && c.Province == "" && c.AdministrativeUnit == "" &&
		c.Town == "" && c.Village == "" && c.Neighbourhood == "" &&
		c.Street == "" && c.Building == "" &&
		c.Latitude == 0 && c.Longitude == 0
}

// Merge copies every field from other that is still empty on c. First writer
// wins: a later provider in the chain never overwrites a populated field.
func (c *Components) Merge(other Components) {
	if c.Country == "" {
		c.Country = other.Country
	}
	if c.Province == "" {
		c.Province = other.Province
	}
	if c.AdministrativeUnit == "" {
		c.AdministrativeUnit = other.AdministrativeUnit
	}
	if c.Town == "" {
		c.Town = other.Town
	}
	if c.Village == "" {
		c.Village = other.Village
	}
	if c.Neighbourhood == "" {
		c.Neighbourhood = other.Neighbourhood
	}
	if c.Street == "" {
		c.Street = other.Street
	}
	if c.StreetNumber == "" {
		c.StreetNumber = other.StreetNumber
	}
	if c.Block == "" {
		c.Block = other.Block
	}
	if c.Lane == "" {
		c.Lane = other.Lane
	}
	if c.Building == "" {
		c.Building = other.Building
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude = other.Latitude
		c.Longitude = other.Longitude
	}
	if c.Provider == "" {
		c.Provider = other.Provider
	}
}

// UniqueAddress is one row of the deduplicated address table. Exactly one
// exists per distinct (trimmed, case-folded) address string across both raw
// datasets; Indices lists every originating raw-row index.
type UniqueAddress struct {
	Address    string   `json:"address"`
	Translated string   `json:"translated"`
	Status     string   `json:"status"`
	Components          // structured fields filled by the geocoder/separator
	Indices    []string `json:"indices"`
}

// Resolved reports whether the row reached a terminal state.
func (ua *UniqueAddress) Resolved() bool {
	return ua.Status == StatusOK || ua.Status == StatusFailed
}

// RawRow is one record from an input dataset. Fields holds every column of
// the source file keyed by header; the pipeline only interprets the address
// column and the assigned index.
type RawRow struct {
	Index   string
	Address string
	Fields  map[string]string
}
