package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/geocode"
	"github.com/address-resolver/internal/normalizer"
	"github.com/address-resolver/internal/region"
	"github.com/address-resolver/internal/separator"
	"github.com/address-resolver/internal/translate"
	"go.uber.org/zap"
)

// Pipeline orchestrates the full resolution run: raw datasets in, a
// structured unique-address table out. Each expensive stage (translation,
// geocoding) persists its result and reuses it on the next run unless its
// override switch forces recomputation.
type Pipeline struct {
	cfg        config.ResolverCfg
	translator *translate.Client
	geocoder   *geocode.Geocoder
	separator  *separator.Separator
	matcher    *region.Matcher
	logger     *zap.Logger
}

// New wires the pipeline from configuration: translation client, geocoder
// chains, component separator and the regional matcher over the static
// hierarchy file.
func New(cfg config.ResolverCfg, logger *zap.Logger) (*Pipeline, error) {
	hierarchy, err := region.LoadHierarchy(cfg.Paths.RegionPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("load regional hierarchy: %w", err)
	}
	return &Pipeline{
		cfg:        cfg,
		translator: translate.NewClient(cfg.Translate, config.GoogleAPIKey(), nil, logger),
		geocoder:   geocode.New(cfg.Geocode, nil, logger),
		separator:  separator.New(logger),
		matcher:    region.NewMatcher(hierarchy, cfg.FuzzyMatchAccuracy, logger),
		logger:     logger,
	}, nil
}

// NewWithComponents builds a pipeline over explicit components; used by
// tests and the on-demand API.
func NewWithComponents(cfg config.ResolverCfg, t *translate.Client, g *geocode.Geocoder,
	s *separator.Separator, m *region.Matcher, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, translator: t, geocoder: g, separator: s, matcher: m, logger: logger}
}

// Run loads both raw datasets, assigns row indices, persists the indexed
// copies back, and produces the unique-address table with its index mapping.
func (p *Pipeline) Run(ctx context.Context) ([]*models.UniqueAddress, error) {
	training, trainingHeader, err := ReadRawDataset(p.cfg.Paths.TrainingPath())
	if err != nil {
		return nil, err
	}
	testing, testingHeader, err := ReadRawDataset(p.cfg.Paths.TestingPath())
	if err != nil {
		return nil, err
	}

	AssignIndices(training, TrainingIndexPrefix)
	AssignIndices(testing, TestingIndexPrefix)
	if err := WriteRawDataset(p.cfg.Paths.TrainingPath(), trainingHeader, training); err != nil {
		return nil, err
	}
	if err := WriteRawDataset(p.cfg.Paths.TestingPath(), testingHeader, testing); err != nil {
		return nil, err
	}
	p.logger.Info("loaded raw datasets",
		zap.Int("training", len(training)), zap.Int("testing", len(testing)))

	indexMap := MapAddressIndices(training, testing)
	return p.loadAddresses(ctx, training, testing, indexMap)
}

// loadAddresses returns the structured unique-address table, reusing a
// previously persisted one when possible. A persisted table without the
// index column, or a run with the remap override set, gets its index
// mapping rebuilt from the current raw datasets before being returned.
func (p *Pipeline) loadAddresses(ctx context.Context, training, testing []*models.RawRow,
	indexMap map[string][]string) ([]*models.UniqueAddress, error) {

	path := p.cfg.Paths.AddressesPath()
	if _, err := os.Stat(path); err == nil {
		rows, hasIndex, err := ReadAddressTable(path)
		if err != nil {
			return nil, err
		}
		if !hasIndex || p.cfg.AlwaysRemap {
			p.remap(rows, indexMap)
			if err := WriteAddressTable(path, rows); err != nil {
				return nil, err
			}
		}
		p.logger.Info("reusing persisted address table",
			zap.String("path", path), zap.Int("rows", len(rows)))
		return rows, nil
	}

	rows, err := p.process(ctx, Dedupe(training, testing), indexMap)
	if err != nil {
		return nil, err
	}
	if err := WriteAddressTable(path, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// process runs the resolution stages over a fresh unique-address table:
// translate, geocode, then structural post-processing and index attachment.
func (p *Pipeline) process(ctx context.Context, rows []*models.UniqueAddress,
	indexMap map[string][]string) ([]*models.UniqueAddress, error) {

	p.logger.Info("processing unique addresses", zap.Int("unique", len(rows)))

	rows, err := p.translateStage(ctx, rows)
	if err != nil {
		return nil, err
	}
	rows, err = p.geocodeStage(ctx, rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		// Structural fields are derived fresh from this run's text.
		row.Block = ""
		row.Lane = ""

		row.Translated = normalizer.Normalize(row.Translated)
		row.Street = normalizer.Normalize(row.Street)
		row.Neighbourhood = normalizer.Normalize(row.Neighbourhood)

		separator.SplitOnDelimiters(row)
		p.separator.Separate(row)
		p.matcher.MatchRow(row)
	}

	p.remap(rows, indexMap)
	return rows, nil
}

// cachedRows returns the persisted stage artifact at path, unless the stage
// override forces recomputation or no artifact exists yet.
func (p *Pipeline) cachedRows(name, path string, override bool) ([]*models.UniqueAddress, error) {
	if override {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	rows, _, err := ReadAddressTable(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("reusing persisted stage artifact",
		zap.String("stage", name), zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}

// translateStage fills the Translated column, from the persisted translation
// artifact when present.
func (p *Pipeline) translateStage(ctx context.Context, rows []*models.UniqueAddress) ([]*models.UniqueAddress, error) {
	path := p.cfg.Paths.TranslationsPath()
	cached, err := p.cachedRows("translate", path, p.cfg.AlwaysTranslate)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	p.translator.TranslateAll(ctx, rows)
	if err := WriteAddressTable(path, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// geocodeStage resolves every pending row through the provider chains, from
// the persisted geocoding artifact when present. Both text columns must
// exist by now; their absence is a configuration error.
func (p *Pipeline) geocodeStage(ctx context.Context, rows []*models.UniqueAddress) ([]*models.UniqueAddress, error) {
	path := p.cfg.Paths.GeocodedPath()
	cached, err := p.cachedRows("geocode", path, p.cfg.AlwaysGeocode)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	for _, row := range rows {
		if row.Address == "" && row.Translated == "" {
			return nil, fmt.Errorf("geocoding input has neither %s nor %s populated", ColAddress, ColTranslated)
		}
	}

	if err := p.geocoder.ResolveAll(ctx, rows); err != nil {
		return nil, err
	}
	if err := WriteAddressTable(path, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// remap attaches the raw-row indices belonging to each unique address.
// Unmapped rows are kept and logged; they typically mean the raw datasets
// changed since the table was produced.
func (p *Pipeline) remap(rows []*models.UniqueAddress, indexMap map[string][]string) {
	mapped, unmapped := 0, 0
	for _, row := range rows {
		indices := indexMap[addressKey(row.Address)]
		row.Indices = indices
		if len(indices) == 0 {
			unmapped++
			p.logger.Warn("address has no raw-row index", zap.String("address", row.Address))
			continue
		}
		mapped++
	}
	p.logger.Info("mapped address indices",
		zap.Int("mapped", mapped), zap.Int("unmapped", unmapped))
}
