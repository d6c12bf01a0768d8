package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/normalizer"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Geocoder drives the multi-provider fallback chain over a set of unique
// addresses. Each row is an independent unit of work over a shared HTTP
// client; rows never share mutable state, so no locking is needed between
// them.
type Geocoder struct {
	chainNative []Provider // native-script candidate ordering
	chainLatin  []Provider // Latin-script candidate ordering

	limiter     *rate.Limiter
	memo        *lru.Cache[string, models.Components]
	settlePause time.Duration
	concurrency int
	logger      *zap.Logger
}

// New wires the four providers into script-dependent chains. The native
// chain prefers the local reverse-geocoding service and Yandex before the
// Latin-oriented Azure; the Latin chain reverses that preference. The
// statistical parser runs last in both.
func New(cfg config.GeocodeCfg, client *http.Client, logger *zap.Logger) *Geocoder {
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout()}
	}

	nominatim := NewNominatim(cfg.NominatimURL, client, logger)
	yandex := NewYandex(cfg.YandexURL, config.YandexAPIKey(), cfg.MaxAttempts, cfg.BackoffBase, client, logger)
	azure := NewAzure(cfg.AzureURL, config.AzureAPIKey(), client, logger)
	libpostal := NewLibpostal(cfg.LibpostalURL, client, logger)

	memo, _ := lru.New[string, models.Components](max(cfg.MemoSize, 16))

	return &Geocoder{
		chainNative: []Provider{nominatim, yandex, azure, libpostal},
		chainLatin:  []Provider{azure, yandex, nominatim, libpostal},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		memo:        memo,
		settlePause: cfg.SettlePause,
		concurrency: max(cfg.Concurrency, 1),
		logger:      logger,
	}
}

// NewWithChains builds a geocoder over explicit provider chains; used by
// tests and the on-demand API.
func NewWithChains(native, latin []Provider, cfg config.GeocodeCfg, logger *zap.Logger) *Geocoder {
	memo, _ := lru.New[string, models.Components](max(cfg.MemoSize, 16))
	return &Geocoder{
		chainNative: native,
		chainLatin:  latin,
		limiter:     rate.NewLimiter(rate.Limit(max(cfg.RatePerSec, 1)), 1),
		memo:        memo,
		settlePause: cfg.SettlePause,
		concurrency: max(cfg.Concurrency, 1),
		logger:      logger,
	}
}

// ResolveAll runs the fallback chain for every unresolved row concurrently.
// A row that is already OK is never re-queried, making runs resumable; a row
// that exhausts every candidate and provider is marked FAILED and kept. A
// single failed row never aborts the batch.
func (g *Geocoder) ResolveAll(ctx context.Context, rows []*models.UniqueAddress) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.concurrency)

	for _, row := range rows {
		row := row
		if row.Status == models.StatusOK {
			continue
		}
		grp.Go(func() error {
			g.ResolveRow(ctx, row)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	ok, failed := 0, 0
	for _, row := range rows {
		switch row.Status {
		case models.StatusOK:
			ok++
		case models.StatusFailed:
			failed++
		}
	}
	g.logger.Info("geocoding pass finished",
		zap.Int("total", len(rows)), zap.Int("ok", ok), zap.Int("failed", failed))
	return nil
}

// ResolveRow tries the ordered candidate list [native address, translated
// address] through the script-appropriate provider chain, merging the first
// non-empty component set into the row.
func (g *Geocoder) ResolveRow(ctx context.Context, row *models.UniqueAddress) {
	if row.Status == models.StatusOK {
		return
	}

	var candidates []string
	for _, candidate := range []string{row.Address, row.Translated} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || contains(candidates, candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		row.Status = models.StatusFailed
		return
	}

	for _, candidate := range candidates {
		components, found := g.tryChain(ctx, candidate)
		if !found {
			continue
		}
		row.Components.Merge(components)
		row.Status = models.StatusOK

		// Informal provider rate limit; a throttle, not correctness.
		if g.settlePause > 0 {
			select {
			case <-time.After(g.settlePause):
			case <-ctx.Done():
			}
		}
		return
	}

	row.Status = models.StatusFailed
}

// tryChain runs the full provider chain for one candidate, stopping at the
// first provider with a non-empty normalized component set. Provider errors
// are logged and treated as no result; the chain continues.
func (g *Geocoder) tryChain(ctx context.Context, candidate string) (models.Components, bool) {
	if cached, ok := g.memo.Get(candidate); ok {
		return cached, true
	}

	chain := g.chainLatin
	if normalizer.IsNonEnglish(candidate) {
		chain = g.chainNative
	}

	for _, provider := range chain {
		if err := g.limiter.Wait(ctx); err != nil {
			return models.Components{}, false
		}

		components, err := provider.Geocode(ctx, candidate)
		if err != nil {
			g.logger.Error("provider failed",
				zap.String("provider", provider.Name()),
				zap.String("address", candidate),
				zap.Error(err))
			continue
		}
		if components.IsEmpty() {
			continue
		}

		g.logger.Info("geocoded address",
			zap.String("provider", provider.Name()),
			zap.String("address", candidate))
		g.memo.Add(candidate, components)
		return components, true
	}
	return models.Components{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
