package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/address-resolver/app/models"
)

// Column names of the persisted artifacts. Downstream consumers key on
// these, so they are part of the artifact contract.
const (
	ColIndex              = "Index"
	ColAddress            = "Address"
	ColTranslated         = "Translated"
	ColStatus             = "Status"
	ColProvider           = "Provider"
	ColCountry            = "Country"
	ColProvince           = "Province"
	ColAdministrativeUnit = "Administrative District"
	ColTown               = "Town"
	ColVillage            = "Village"
	ColNeighbourhood      = "Neighbourhood"
	ColStreet             = "Street"
	ColStreetNumber       = "Street Number"
	ColBlock              = "Block"
	ColLane               = "Lane"
	ColBuilding           = "Building"
	ColLatitude           = "Latitude"
	ColLongitude          = "Longitude"
)

var addressColumns = []string{
	ColAddress, ColTranslated, ColStatus, ColProvider, ColCountry,
	ColProvince, ColAdministrativeUnit, ColTown, ColVillage,
	ColNeighbourhood, ColStreet, ColStreetNumber, ColBlock, ColLane,
	ColBuilding, ColLatitude, ColLongitude, ColIndex,
}

// WriteAddressTable persists a unique-address table. Coordinates are blank
// when unset; the index list is serialized as a literal list representation.
func WriteAddressTable(path string, rows []*models.UniqueAddress) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(addressColumns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Address, row.Translated, row.Status, row.Provider,
			row.Country, row.Province, row.AdministrativeUnit, row.Town,
			row.Village, row.Neighbourhood, row.Street, row.StreetNumber,
			row.Block, row.Lane, row.Building,
			formatCoordinate(row.Latitude), formatCoordinate(row.Longitude),
			FormatIndexList(row.Indices),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadAddressTable loads a previously persisted unique-address table.
// hasIndex reports whether the artifact carries the row-index column, which
// decides whether a remap is needed.
func ReadAddressTable(path string) (rows []*models.UniqueAddress, hasIndex bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read artifact %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	header := map[string]int{}
	for i, name := range records[0] {
		header[name] = i
	}
	_, hasIndex = header[ColIndex]

	get := func(record []string, col string) string {
		if i, ok := header[col]; ok && i < len(record) {
			return record[i]
		}
		return ""
	}

	for _, record := range records[1:] {
		row := &models.UniqueAddress{
			Address:    get(record, ColAddress),
			Translated: get(record, ColTranslated),
			Status:     get(record, ColStatus),
		}
		row.Provider = get(record, ColProvider)
		row.Country = get(record, ColCountry)
		row.Province = get(record, ColProvince)
		row.AdministrativeUnit = get(record, ColAdministrativeUnit)
		row.Town = get(record, ColTown)
		row.Village = get(record, ColVillage)
		row.Neighbourhood = get(record, ColNeighbourhood)
		row.Street = get(record, ColStreet)
		row.StreetNumber = get(record, ColStreetNumber)
		row.Block = get(record, ColBlock)
		row.Lane = get(record, ColLane)
		row.Building = get(record, ColBuilding)
		row.Latitude, _ = strconv.ParseFloat(get(record, ColLatitude), 64)
		row.Longitude, _ = strconv.ParseFloat(get(record, ColLongitude), 64)
		if row.Status == "" {
			row.Status = models.StatusPending
		}
		if hasIndex {
			row.Indices = ParseIndexList(get(record, ColIndex))
		}
		rows = append(rows, row)
	}
	return rows, hasIndex, nil
}

func formatCoordinate(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatIndexList serializes row indices as a literal list representation,
// e.g. ['t0', 'e3'], the form downstream consumers re-parse via safe
// literal evaluation.
func FormatIndexList(indices []string) string {
	if len(indices) == 0 {
		return ""
	}
	quoted := make([]string, len(indices))
	for i, idx := range indices {
		quoted[i] = "'" + idx + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseIndexList evaluates a literal list representation back into indices.
// Both quote styles are accepted; a bare value is treated as a singleton.
func ParseIndexList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") {
		return []string{unquote(s)}
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	indices := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := unquote(p); v != "" {
			indices = append(indices, v)
		}
	}
	return indices
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `'"`)
	return strings.TrimSpace(s)
}

// ReadRawDataset loads one raw tabular input keyed on its header row. The
// address column is required; its absence is a configuration error that
// stops the run before any partial processing.
func ReadRawDataset(path string) ([]*models.RawRow, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := records[0]
	addressIdx := -1
	for i, name := range header {
		if name == ColAddress {
			addressIdx = i
		}
	}
	if addressIdx < 0 {
		return nil, nil, fmt.Errorf("dataset %s is missing required column %q", path, ColAddress)
	}

	rows := make([]*models.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			}
		}
		rows = append(rows, &models.RawRow{
			Address: fields[ColAddress],
			Fields:  fields,
		})
	}
	return rows, header, nil
}

// WriteRawDataset persists a raw dataset with its assigned index column
// appended when absent from the original header.
func WriteRawDataset(path string, header []string, rows []*models.RawRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset %s: %w", path, err)
	}
	defer f.Close()

	hasIndex := false
	for _, name := range header {
		if name == ColIndex {
			hasIndex = true
		}
	}
	out := header
	if !hasIndex {
		out = append(append([]string{}, header...), ColIndex)
	}

	w := csv.NewWriter(f)
	if err := w.Write(out); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(out))
		for i, name := range out {
			if name == ColIndex {
				record[i] = row.Index
			} else {
				record[i] = row.Fields[name]
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
