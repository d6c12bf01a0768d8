package pipeline

import (
	"strconv"
	"strings"

	"github.com/address-resolver/app/models"
)

// Index prefixes distinguishing which raw dataset a row came from.
const (
	TrainingIndexPrefix = "t"
	TestingIndexPrefix  = "e"
)

// AssignIndices stamps every row with a stable positional index and mirrors
// it into the row's field map so the persisted copy carries it.
func AssignIndices(rows []*models.RawRow, prefix string) {
	for i, row := range rows {
		row.Index = prefix + strconv.Itoa(i)
		row.Fields[ColIndex] = row.Index
	}
}

// addressKey folds an address into its deduplication key. Rows differing
// only in surrounding whitespace or letter case are the same address.
func addressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// MapAddressIndices groups raw-row indices by deduplication key across both
// datasets. Rows with a blank address are skipped.
func MapAddressIndices(datasets ...[]*models.RawRow) map[string][]string {
	indices := map[string][]string{}
	for _, rows := range datasets {
		for _, row := range rows {
			key := addressKey(row.Address)
			if key == "" {
				continue
			}
			indices[key] = append(indices[key], row.Index)
		}
	}
	return indices
}

// Dedupe collapses the raw datasets into one unique-address row per
// deduplication key, preserving first-appearance order.
func Dedupe(datasets ...[]*models.RawRow) []*models.UniqueAddress {
	seen := map[string]struct{}{}
	var unique []*models.UniqueAddress
	for _, rows := range datasets {
		for _, row := range rows {
			key := addressKey(row.Address)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			unique = append(unique, &models.UniqueAddress{
				Address: strings.TrimSpace(row.Address),
				Status:  models.StatusPending,
			})
		}
	}
	return unique
}

// Explode expands the unique-address table back to one row per originating
// raw-row index. Rows that never mapped to an index are dropped.
func Explode(rows []*models.UniqueAddress) []*models.UniqueAddress {
	var out []*models.UniqueAddress
	for _, row := range rows {
		for _, idx := range row.Indices {
			clone := *row
			clone.Indices = []string{idx}
			out = append(out, &clone)
		}
	}
	return out
}
