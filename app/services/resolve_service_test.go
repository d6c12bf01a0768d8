package services

import (
	"context"
	"testing"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/geocode"
	"github.com/address-resolver/internal/region"
	"github.com/address-resolver/internal/separator"
	"github.com/address-resolver/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	result models.Components
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Geocode(ctx context.Context, address string) (models.Components, error) {
	return p.result, nil
}

func testResolveService(provider geocode.Provider) *ResolveService {
	logger := zap.NewNop()
	chain := []geocode.Provider{provider}

	h := models.NewHierarchy()
	h.Provinces["Yerevan"] = struct{}{}
	h.UnitToProvince["Kentron"] = "Yerevan"

	return NewResolveServiceWithComponents(
		translate.NewClient(config.TranslateCfg{}, "", nil, logger),
		geocode.NewWithChains(chain, chain, config.GeocodeCfg{RatePerSec: 1000, Concurrency: 1, MemoSize: 16}, logger),
		separator.New(logger),
		region.NewMatcher(h, 90, logger),
		logger,
	)
}

func TestResolve(t *testing.T) {
	svc := testResolveService(&fakeProvider{result: models.Components{
		Street:   "Mashtots Avenue 5",
		Provider: models.ProviderAzure,
	}})

	row, err := svc.Resolve(context.Background(), "Kentron, Yerevan, Mashtots Avenue 5")
	require.NoError(t, err)

	assert.Equal(t, models.StatusOK, row.Status)
	assert.Equal(t, "Mashtots Avenue", row.Street)
	assert.Equal(t, "5", row.Building)
	assert.Equal(t, "Yerevan", row.Province)
	assert.Equal(t, "Kentron", row.AdministrativeUnit)
	assert.Equal(t, models.ProviderAzure, row.Provider)
}

func TestResolveFailedIsNotAnError(t *testing.T) {
	svc := testResolveService(&fakeProvider{})

	row, err := svc.Resolve(context.Background(), "complete gibberish")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, row.Status)
}

func TestResolveEmptyAddress(t *testing.T) {
	svc := testResolveService(&fakeProvider{})

	_, err := svc.Resolve(context.Background(), "   ")
	assert.Error(t, err)
}
