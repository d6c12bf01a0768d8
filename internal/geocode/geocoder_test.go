package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubProvider scripts one provider in a chain.
type stubProvider struct {
	name   string
	result models.Components
	err    error
	calls  int64
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Geocode(ctx context.Context, address string) (models.Components, error) {
	atomic.AddInt64(&p.calls, 1)
	return p.result, p.err
}

func (p *stubProvider) callCount() int64 { return atomic.LoadInt64(&p.calls) }

func testGeocodeCfg() config.GeocodeCfg {
	return config.GeocodeCfg{
		RatePerSec:  10_000,
		Concurrency: 4,
		MemoSize:    64,
	}
}

func newTestGeocoder(native, latin []Provider) *Geocoder {
	return NewWithChains(native, latin, testGeocodeCfg(), zap.NewNop())
}

func TestResolveRowStopsAtFirstNonEmptyProvider(t *testing.T) {
	empty := &stubProvider{name: "empty"}
	hit := &stubProvider{name: "hit", result: models.Components{
		Town: "Yerevan", Street: "Mashtots Avenue", Provider: "hit",
	}}
	never := &stubProvider{name: "never", result: models.Components{Town: "Wrong"}}

	chain := []Provider{empty, hit, never}
	g := newTestGeocoder(chain, chain)

	row := &models.UniqueAddress{Address: "Mashtots Avenue 5", Status: models.StatusPending}
	g.ResolveRow(context.Background(), row)

	assert.Equal(t, models.StatusOK, row.Status)
	assert.Equal(t, "Yerevan", row.Town)
	assert.Equal(t, "hit", row.Provider)
	assert.EqualValues(t, 1, empty.callCount())
	assert.EqualValues(t, 1, hit.callCount())
	assert.EqualValues(t, 0, never.callCount(), "chain stops after the first non-empty result")
}

func TestResolveRowChainSelectionByScript(t *testing.T) {
	native := &stubProvider{name: "native", result: models.Components{Town: "Native"}}
	latin := &stubProvider{name: "latin", result: models.Components{Town: "Latin"}}
	g := newTestGeocoder([]Provider{native}, []Provider{latin})

	t.Run("native script candidate uses native chain", func(t *testing.T) {
		row := &models.UniqueAddress{Address: "Երևան Աբովյան 10", Status: models.StatusPending}
		g.ResolveRow(context.Background(), row)
		assert.Equal(t, "Native", row.Town)
	})

	t.Run("latin candidate uses latin chain", func(t *testing.T) {
		row := &models.UniqueAddress{Address: "Yerevan Abovyan 10", Status: models.StatusPending}
		g.ResolveRow(context.Background(), row)
		assert.Equal(t, "Latin", row.Town)
	})
}

func TestResolveRowFallsBackToTranslatedCandidate(t *testing.T) {
	// Native chain has nothing for the raw address; the latin chain answers
	// for the translated candidate.
	native := &stubProvider{name: "native"}
	latin := &stubProvider{name: "latin", result: models.Components{Town: "Yerevan"}}
	g := newTestGeocoder([]Provider{native}, []Provider{latin})

	row := &models.UniqueAddress{
		Address:    "Երևան Աբովյան 10",
		Translated: "Yerevan Abovyan 10",
		Status:     models.StatusPending,
	}
	g.ResolveRow(context.Background(), row)

	assert.Equal(t, models.StatusOK, row.Status)
	assert.Equal(t, "Yerevan", row.Town)
	assert.EqualValues(t, 1, native.callCount())
	assert.EqualValues(t, 1, latin.callCount())
}

func TestResolveRowFailsWhenEveryProviderComesUpEmpty(t *testing.T) {
	empty := &stubProvider{name: "empty"}
	broken := &stubProvider{name: "broken", err: errors.New("boom")}
	chain := []Provider{empty, broken}
	g := newTestGeocoder(chain, chain)

	row := &models.UniqueAddress{Address: "Nowhere Street 1", Status: models.StatusPending}
	g.ResolveRow(context.Background(), row)

	assert.Equal(t, models.StatusFailed, row.Status)
	assert.True(t, row.Components.IsEmpty())
}

func TestResolveRowEmptyCandidates(t *testing.T) {
	g := newTestGeocoder(nil, nil)

	row := &models.UniqueAddress{Address: "   ", Status: models.StatusPending}
	g.ResolveRow(context.Background(), row)

	assert.Equal(t, models.StatusFailed, row.Status)
}

func TestResolveRowMemoizesRepeatedCandidates(t *testing.T) {
	hit := &stubProvider{name: "hit", result: models.Components{Town: "Yerevan"}}
	g := newTestGeocoder([]Provider{hit}, []Provider{hit})

	for i := 0; i < 3; i++ {
		row := &models.UniqueAddress{Address: "Mashtots Avenue 5", Status: models.StatusPending}
		g.ResolveRow(context.Background(), row)
		assert.Equal(t, models.StatusOK, row.Status)
	}

	assert.EqualValues(t, 1, hit.callCount(), "identical candidates hit the memo")
}

func TestResolveAll(t *testing.T) {
	hit := &stubProvider{name: "hit", result: models.Components{Town: "Yerevan"}}
	g := newTestGeocoder([]Provider{hit}, []Provider{hit})

	resolved := &models.UniqueAddress{
		Address: "already done",
		Status:  models.StatusOK,
		Components: models.Components{
			Town: "Gyumri",
		},
	}
	pending := &models.UniqueAddress{Address: "Mashtots Avenue 5", Status: models.StatusPending}
	hopeless := &models.UniqueAddress{Address: "  ", Status: models.StatusPending}

	err := g.ResolveAll(context.Background(), []*models.UniqueAddress{resolved, pending, hopeless})
	assert.NoError(t, err)

	assert.Equal(t, "Gyumri", resolved.Town, "resolved rows are never re-queried")
	assert.Equal(t, models.StatusOK, pending.Status)
	assert.Equal(t, models.StatusFailed, hopeless.Status)
}

func TestResolveRowMergePrecedence(t *testing.T) {
	partial := &stubProvider{name: "partial", result: models.Components{
		Town: "Yerevan", Latitude: 40.18, Longitude: 44.51, Provider: "partial",
	}}
	g := newTestGeocoder([]Provider{partial}, []Provider{partial})

	row := &models.UniqueAddress{
		Address: "Mashtots Avenue 5",
		Status:  models.StatusPending,
		Components: models.Components{
			Street: "Mashtots Avenue",
		},
	}
	g.ResolveRow(context.Background(), row)

	assert.Equal(t, "Mashtots Avenue", row.Street, "existing fields win over provider fields")
	assert.Equal(t, "Yerevan", row.Town)
	assert.InDelta(t, 40.18, row.Latitude, 1e-9)
}
