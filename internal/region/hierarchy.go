package region

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/address-resolver/app/models"
	"go.uber.org/zap"
)

// CapitalProvince has no subordinate towns; its entries in the reference
// file are a flat list of districts rather than a municipality mapping.
const CapitalProvince = "Yerevan"

// LoadHierarchy reads the static administrative reference file:
// province -> (district list | municipality -> locality set). An absent file
// yields an empty hierarchy and no error; no hierarchy matching happens then.
func LoadHierarchy(path string, logger *zap.Logger) (*models.Hierarchy, error) {
	h := models.NewHierarchy()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("regional reference file missing, hierarchy matching disabled",
				zap.String("path", path))
			return h, nil
		}
		return nil, fmt.Errorf("read regional reference %s: %w", path, err)
	}

	var structure map[string]json.RawMessage
	if err := json.Unmarshal(data, &structure); err != nil {
		return nil, fmt.Errorf("parse regional reference %s: %w", path, err)
	}

	for province, raw := range structure {
		h.Provinces[province] = struct{}{}

		// Capital districts come as a flat list.
		var districts []string
		if err := json.Unmarshal(raw, &districts); err == nil {
			for _, d := range districts {
				h.UnitToProvince[d] = province
			}
			continue
		}

		var municipalities map[string]map[string]json.RawMessage
		if err := json.Unmarshal(raw, &municipalities); err != nil {
			return nil, fmt.Errorf("parse province %q in %s: %w", province, path, err)
		}
		for municipality, localities := range municipalities {
			h.UnitToProvince[municipality] = province
			for locality := range localities {
				h.LocalityToUnit[locality] = municipality
			}
		}
	}

	logger.Info("loaded administrative hierarchy",
		zap.Int("provinces", len(h.Provinces)),
		zap.Int("administrative_units", len(h.UnitToProvince)),
		zap.Int("localities", len(h.LocalityToUnit)))

	return h, nil
}
