package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/geocode"
	"github.com/address-resolver/internal/normalizer"
	"github.com/address-resolver/internal/region"
	"github.com/address-resolver/internal/separator"
	"github.com/address-resolver/internal/translate"
	"go.uber.org/zap"
)

// ResolveService runs the full resolution sequence for one address on
// demand: translate, geocode through the provider chains, separate the
// structural components and match the regional hierarchy. It is the
// single-address counterpart of the batch pipeline.
type ResolveService struct {
	translator *translate.Client
	geocoder   *geocode.Geocoder
	separator  *separator.Separator
	matcher    *region.Matcher
	logger     *zap.Logger
	startTime  time.Time
}

// NewResolveService wires the resolution components from configuration.
func NewResolveService(cfg config.ResolverCfg, logger *zap.Logger) (*ResolveService, error) {
	hierarchy, err := region.LoadHierarchy(cfg.Paths.RegionPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("load regional hierarchy: %w", err)
	}
	return &ResolveService{
		translator: translate.NewClient(cfg.Translate, config.GoogleAPIKey(), nil, logger),
		geocoder:   geocode.New(cfg.Geocode, nil, logger),
		separator:  separator.New(logger),
		matcher:    region.NewMatcher(hierarchy, cfg.FuzzyMatchAccuracy, logger),
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// NewResolveServiceWithComponents builds a service over explicit components;
// used by tests.
func NewResolveServiceWithComponents(t *translate.Client, g *geocode.Geocoder,
	s *separator.Separator, m *region.Matcher, logger *zap.Logger) *ResolveService {
	return &ResolveService{
		translator: t,
		geocoder:   g,
		separator:  s,
		matcher:    m,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Resolve processes a single raw address through every pipeline stage and
// returns the structured row. The row carries StatusFailed when every
// provider came up empty; that is a valid result, not an error.
func (rs *ResolveService) Resolve(ctx context.Context, address string) (*models.UniqueAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("address is empty")
	}

	row := &models.UniqueAddress{
		Address: address,
		Status:  models.StatusPending,
	}

	if normalizer.IsNonEnglish(address) {
		rs.translator.TranslateAll(ctx, []*models.UniqueAddress{row})
	} else {
		row.Translated = address
	}

	rs.geocoder.ResolveRow(ctx, row)

	row.Translated = normalizer.Normalize(row.Translated)
	row.Street = normalizer.Normalize(row.Street)
	row.Neighbourhood = normalizer.Normalize(row.Neighbourhood)

	separator.SplitOnDelimiters(row)
	rs.separator.Separate(row)
	rs.matcher.MatchRow(row)

	rs.logger.Info("resolved address",
		zap.String("address", address),
		zap.String("status", row.Status),
		zap.String("provider", row.Provider))
	return row, nil
}

// GetStartTime reports when the service came up; used by the health check.
func (rs *ResolveService) GetStartTime() time.Time {
	return rs.startTime
}
