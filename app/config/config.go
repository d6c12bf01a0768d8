package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type PathsCfg struct {
	Inputs  string `yaml:"inputs" json:"inputs"`
	Outputs string `yaml:"outputs" json:"outputs"`
	Ref     string `yaml:"ref" json:"ref"`

	Training string `yaml:"training" json:"training"`
	Testing  string `yaml:"testing" json:"testing"`

	Addresses    string `yaml:"addresses" json:"addresses"`
	Translations string `yaml:"translations" json:"translations"`
	Geocoded     string `yaml:"geocoded" json:"geocoded"`
	Region       string `yaml:"region" json:"region"`
}

type TranslateCfg struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	Target      string `yaml:"target" json:"target"`
	MaxSegments int    `yaml:"max_segments" json:"max_segments"`
	MaxBytes    int    `yaml:"max_bytes" json:"max_bytes"`
}

type GeocodeCfg struct {
	NominatimURL string `yaml:"nominatim_url" json:"nominatim_url"`
	YandexURL    string `yaml:"yandex_url" json:"yandex_url"`
	AzureURL     string `yaml:"azure_url" json:"azure_url"`
	LibpostalURL string `yaml:"libpostal_url" json:"libpostal_url"`

	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base" json:"backoff_base"`
	SettlePause time.Duration `yaml:"settle_pause" json:"settle_pause"`
	Concurrency int           `yaml:"concurrency" json:"concurrency"`
	RatePerSec  float64       `yaml:"rate_per_sec" json:"rate_per_sec"`
	MemoSize    int           `yaml:"memo_size" json:"memo_size"`
}

// UnmarshalYAML parses the duration fields from their human-readable form
// ("2s", "200ms"), which plain yaml decoding cannot do.
func (g *GeocodeCfg) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		NominatimURL string `yaml:"nominatim_url"`
		YandexURL    string `yaml:"yandex_url"`
		AzureURL     string `yaml:"azure_url"`
		LibpostalURL string `yaml:"libpostal_url"`

		MaxAttempts int     `yaml:"max_attempts"`
		BackoffBase string  `yaml:"backoff_base"`
		SettlePause string  `yaml:"settle_pause"`
		Concurrency int     `yaml:"concurrency"`
		RatePerSec  float64 `yaml:"rate_per_sec"`
		MemoSize    int     `yaml:"memo_size"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}

	if r.NominatimURL != "" {
		g.NominatimURL = r.NominatimURL
	}
	if r.YandexURL != "" {
		g.YandexURL = r.YandexURL
	}
	if r.AzureURL != "" {
		g.AzureURL = r.AzureURL
	}
	if r.LibpostalURL != "" {
		g.LibpostalURL = r.LibpostalURL
	}
	if r.MaxAttempts != 0 {
		g.MaxAttempts = r.MaxAttempts
	}
	if r.Concurrency != 0 {
		g.Concurrency = r.Concurrency
	}
	if r.RatePerSec != 0 {
		g.RatePerSec = r.RatePerSec
	}
	if r.MemoSize != 0 {
		g.MemoSize = r.MemoSize
	}
	if r.BackoffBase != "" {
		d, err := time.ParseDuration(r.BackoffBase)
		if err != nil {
			return err
		}
		g.BackoffBase = d
	}
	if r.SettlePause != "" {
		d, err := time.ParseDuration(r.SettlePause)
		if err != nil {
			return err
		}
		g.SettlePause = d
	}
	return nil
}

type ResolverCfg struct {
	FuzzyMatchAccuracy float64      `yaml:"fuzzy_match_accuracy" json:"fuzzy_match_accuracy"`
	Paths              PathsCfg     `yaml:"paths" json:"paths"`
	Translate          TranslateCfg `yaml:"translate" json:"translate"`
	Geocode            GeocodeCfg   `yaml:"geocode" json:"geocode"`

	// Stage-override switches: force a stage to ignore its cache file.
	AlwaysTranslate bool `yaml:"always_translate" json:"always_translate"`
	AlwaysGeocode   bool `yaml:"always_geocode" json:"always_geocode"`
	AlwaysRemap     bool `yaml:"always_remap" json:"always_remap"`
}

var C ResolverCfg

// Load reads the yaml config and applies env overrides for the stage
// switches. Secrets never live in the file; see the accessor functions.
func Load(path string) error {
	setDefaults()

	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &C); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	// ENV overrides
	if v := os.Getenv("ALWAYS_TRANSLATE"); v != "" {
		C.AlwaysTranslate = isTrue(v)
	}
	if v := os.Getenv("ALWAYS_GEOCODE"); v != "" {
		C.AlwaysGeocode = isTrue(v)
	}
	if v := os.Getenv("ALWAYS_REMAP"); v != "" {
		C.AlwaysRemap = isTrue(v)
	}
	return nil
}

func isTrue(v string) bool { return v == "True" || v == "true" || v == "1" }

func setDefaults() {
	C = ResolverCfg{
		FuzzyMatchAccuracy: 90,
		Paths: PathsCfg{
			Inputs:       filepath.Join("data", "inputs"),
			Outputs:      filepath.Join("data", "outputs"),
			Ref:          filepath.Join("data", "ref"),
			Training:     "training.csv",
			Testing:      "testing.csv",
			Addresses:    "addresses.csv",
			Translations: "translated.csv",
			Geocoded:     "geocoded.csv",
			Region:       "armenian_region.json",
		},
		Translate: TranslateCfg{
			Endpoint:    "https://translation.googleapis.com/language/translate/v2",
			Target:      "en",
			MaxSegments: 128,
			MaxBytes:    70_000,
		},
		Geocode: GeocodeCfg{
			NominatimURL: "http://localhost:8080/search",
			YandexURL:    "https://geocode-maps.yandex.ru/v1/",
			AzureURL:     "https://atlas.microsoft.com/search/address/json",
			LibpostalURL: "http://localhost:8001/parse",
			MaxAttempts:  3,
			BackoffBase:  2 * time.Second,
			SettlePause:  200 * time.Millisecond,
			Concurrency:  8,
			RatePerSec:   5,
			MemoSize:     4096,
		},
	}
}

// Secrets are env-only; a missing key disables the provider that needs it.
func YandexAPIKey() string { return os.Getenv("YANDEX_API_KEY") }
func AzureAPIKey() string  { return os.Getenv("AZURE_API_KEY") }
func GoogleAPIKey() string { return os.Getenv("GOOGLE_API_KEY") }

// TranslationsPath returns the durable translated-artifact location.
func (p PathsCfg) TranslationsPath() string { return filepath.Join(p.Ref, "csv", p.Translations) }

// GeocodedPath returns the durable geocoded-artifact location.
func (p PathsCfg) GeocodedPath() string { return filepath.Join(p.Ref, "csv", p.Geocoded) }

// AddressesPath returns the final structured address table location.
func (p PathsCfg) AddressesPath() string { return filepath.Join(p.Ref, "csv", p.Addresses) }

// ExplodedPath returns the downstream per-row address table location, one
// record per raw-dataset index.
func (p PathsCfg) ExplodedPath() string { return filepath.Join(p.Outputs, p.Addresses) }

// RegionPath returns the static administrative hierarchy reference file.
func (p PathsCfg) RegionPath() string { return filepath.Join(p.Ref, "json", p.Region) }

func (p PathsCfg) TrainingPath() string { return filepath.Join(p.Inputs, p.Training) }
func (p PathsCfg) TestingPath() string  { return filepath.Join(p.Inputs, p.Testing) }

func RequestTimeout() time.Duration { return 15 * time.Second }
