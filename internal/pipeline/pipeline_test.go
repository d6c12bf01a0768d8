package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
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

func testResolverCfg(t *testing.T) config.ResolverCfg {
	t.Helper()
	dir := t.TempDir()
	return config.ResolverCfg{
		FuzzyMatchAccuracy: 90,
		Paths: config.PathsCfg{
			Inputs:       filepath.Join(dir, "inputs"),
			Outputs:      filepath.Join(dir, "outputs"),
			Ref:          filepath.Join(dir, "ref"),
			Training:     "training.csv",
			Testing:      "testing.csv",
			Addresses:    "addresses.csv",
			Translations: "translated.csv",
			Geocoded:     "geocoded.csv",
			Region:       "armenian_region.json",
		},
		Geocode: config.GeocodeCfg{RatePerSec: 1000, Concurrency: 2, MemoSize: 16},
	}
}

func writeCSV(t *testing.T, path string, records [][]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(records))
}

func capitalHierarchy() *models.Hierarchy {
	h := models.NewHierarchy()
	h.Provinces["Yerevan"] = struct{}{}
	h.UnitToProvince["Kentron"] = "Yerevan"
	return h
}

// testPipeline wires a pipeline whose expensive stages run offline: the
// test addresses are Latin-script so nothing is sent to the translation
// service, and the geocoded artifact is pre-seeded so the provider chains
// are never invoked.
func testPipeline(t *testing.T, cfg config.ResolverCfg) *Pipeline {
	t.Helper()
	logger := zap.NewNop()
	return NewWithComponents(cfg,
		translate.NewClient(cfg.Translate, "", nil, logger),
		geocode.NewWithChains(nil, nil, cfg.Geocode, logger),
		separator.New(logger),
		region.NewMatcher(capitalHierarchy(), cfg.FuzzyMatchAccuracy, logger),
		logger,
	)
}

func TestPipelineRun(t *testing.T) {
	cfg := testResolverCfg(t)

	writeCSV(t, cfg.Paths.TrainingPath(), [][]string{
		{"Id", "Address", "Price"},
		{"1", "Kentron, Yerevan, Mashtots Avenue 5", "1000"},
		{"2", "Komitas Avenue 12", "2000"},
	})
	writeCSV(t, cfg.Paths.TestingPath(), [][]string{
		{"Id", "Address"},
		{"9", "KENTRON, YEREVAN, MASHTOTS AVENUE 5"},
	})

	// Pre-seeded geocoding artifact keeps the run fully offline.
	require.NoError(t, WriteAddressTable(cfg.Paths.GeocodedPath(), []*models.UniqueAddress{
		{
			Address:    "Kentron, Yerevan, Mashtots Avenue 5",
			Translated: "Kentron, Yerevan, Mashtots Avenue 5",
			Status:     models.StatusOK,
			Components: models.Components{
				Street:   "Mashtots Avenue 5",
				Provider: models.ProviderNominatim,
			},
		},
		{
			Address:    "Komitas Avenue 12",
			Translated: "Komitas Avenue 12",
			Status:     models.StatusFailed,
		},
	}))

	p := testPipeline(t, cfg)
	rows, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, models.StatusOK, first.Status)
	assert.Equal(t, "Mashtots Avenue", first.Street)
	assert.Equal(t, "5", first.Building)
	assert.Equal(t, "Yerevan", first.Province)
	assert.Equal(t, "Kentron", first.AdministrativeUnit)
	assert.Equal(t, "", first.Town, "capital rows carry no town")
	assert.Equal(t, []string{"t0", "e0"}, first.Indices,
		"duplicates across datasets map to one row")

	second := rows[1]
	assert.Equal(t, models.StatusFailed, second.Status)
	assert.Equal(t, []string{"t1"}, second.Indices)

	// Artifacts persisted.
	assert.FileExists(t, cfg.Paths.AddressesPath())
	assert.FileExists(t, cfg.Paths.TranslationsPath())

	// Indexed copies written back with the index column.
	_, header, err := ReadRawDataset(cfg.Paths.TrainingPath())
	require.NoError(t, err)
	assert.Contains(t, header, ColIndex)
}

func TestPipelineRunReusesAddressTable(t *testing.T) {
	cfg := testResolverCfg(t)

	writeCSV(t, cfg.Paths.TrainingPath(), [][]string{
		{"Address"}, {"Kentron, Yerevan, Mashtots Avenue 5"},
	})
	writeCSV(t, cfg.Paths.TestingPath(), [][]string{
		{"Address"}, {"Komitas Avenue 12"},
	})
	require.NoError(t, WriteAddressTable(cfg.Paths.GeocodedPath(), []*models.UniqueAddress{
		{Address: "Kentron, Yerevan, Mashtots Avenue 5", Translated: "Kentron, Yerevan, Mashtots Avenue 5", Status: models.StatusOK},
		{Address: "Komitas Avenue 12", Translated: "Komitas Avenue 12", Status: models.StatusFailed},
	}))

	p := testPipeline(t, cfg)

	first, err := p.Run(context.Background())
	require.NoError(t, err)

	// Corrupt the geocoded artifact; a second run must not touch it because
	// the final address table already exists.
	require.NoError(t, os.WriteFile(cfg.Paths.GeocodedPath(), []byte("garbage"), 0o644))

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Address, second[i].Address)
		assert.Equal(t, first[i].Status, second[i].Status)
		assert.Equal(t, first[i].Street, second[i].Street)
		assert.Equal(t, first[i].Indices, second[i].Indices)
	}
}

func TestPipelineRunRemapsTableWithoutIndices(t *testing.T) {
	cfg := testResolverCfg(t)

	writeCSV(t, cfg.Paths.TrainingPath(), [][]string{
		{"Address"}, {"Mashtots Avenue 5"},
	})
	writeCSV(t, cfg.Paths.TestingPath(), [][]string{
		{"Address"}, {"mashtots avenue 5"},
	})

	// A hand-written address table without the index column forces a remap.
	writeCSV(t, cfg.Paths.AddressesPath(), [][]string{
		{"Address", "Translated", "Status"},
		{"Mashtots Avenue 5", "Mashtots Avenue 5", "OK"},
	})

	p := testPipeline(t, cfg)
	rows, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"t0", "e0"}, rows[0].Indices)

	// The remapped table is persisted with indices.
	reloaded, hasIndex, err := ReadAddressTable(cfg.Paths.AddressesPath())
	require.NoError(t, err)
	assert.True(t, hasIndex)
	assert.Equal(t, []string{"t0", "e0"}, reloaded[0].Indices)
}
