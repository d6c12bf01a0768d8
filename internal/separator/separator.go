package separator

import (
	"regexp"
	"strings"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/normalizer"
	"go.uber.org/zap"
)

// Field names used when logging extraction problems.
const (
	fieldBlock         = "block"
	fieldLane          = "lane"
	fieldBuilding      = "building"
	fieldNeighbourhood = "neighbourhood"
	fieldStreetNumber  = "street_number"
)

var (
	// blockRe matches an optionally prefixed, optionally numbered
	// "Block"/"Blok" token, e.g. "Davidashen 3rd Block".
	blockRe = regexp.MustCompile(`(?i)\b(?:[A-Za-z]+(?:[-\s][A-Za-z]+)*\s+)?\d*(?:(?:st|nd|rd|th))?\s*(?:Block|Blok)\b`)

	// laneRe matches ordinal lane-type tokens, e.g. "3rd Lane".
	laneRe = regexp.MustCompile(`(?i)\b\d+(?:st|nd|rd|th)\s+(?:Lane|Alley|Line|Deadlock)\b`)

	// buildingRe matches a 1-3 digit building code with an optional
	// hyphen/slash extension and an optional trailing letter ("123A").
	// Ordinal-shaped hits ("2-nd") are filtered out separately because Go
	// regexp has no negative lookahead.
	buildingRe  = regexp.MustCompile(`\b\d{1,3}(?:[-/]\d+)?[a-zA-Z]?\b`)
	ordinalAtRe = regexp.MustCompile(`(?i)^\d{1,3}-?(?:st|nd|rd|th)\b`)

	// neighbourhoodRe matches a named prefix followed by a neighbourhood
	// suffix word with an optional trailing qualifier ("North", "West").
	neighbourhoodRe = regexp.MustCompile(`(?i)([A-Za-z0-9\-\s]+?\b` + normalizer.NeighbourhoodSuffix + `\b(?:\s+[A-Za-z0-9\-]+)?)`)
)

// numberedStreets are named streets whose partial numeric reference gets
// misread as a building code; they are substituted verbatim.
var numberedStreets = map[string]string{
	"August":     "August 23 Street",
	"Commissars": "26 Commissars Street",
}

// Separator extracts structural components (block, lane, building code,
// neighbourhood, street number) out of the free-text street and
// neighbourhood fields a geocoding provider returned.
type Separator struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Separator {
	return &Separator{logger: logger}
}

// match finds the substring a pattern captures in value. reverse selects the
// last occurrence instead of the first; trailing tokens are more likely to
// be structural codes than house-style words.
func match(value string, pattern *regexp.Regexp, reverse bool) string {
	locs := pattern.FindAllStringIndex(value, -1)
	kept := locs[:0]
	for _, loc := range locs {
		if pattern == buildingRe && ordinalAtRe.MatchString(value[loc[0]:]) {
			continue
		}
		kept = append(kept, loc)
	}
	if len(kept) == 0 {
		return ""
	}
	loc := kept[0]
	if reverse {
		loc = kept[len(kept)-1]
	}
	return strings.TrimSpace(value[loc[0]:loc[1]])
}

// extract pulls a pattern match out of source and assigns it to target,
// preserving any value target already holds. The match is always removed
// from source unless keepOriginal is set.
func (s *Separator) extract(source, target *string, pattern *regexp.Regexp, field string, reverse, keepOriginal bool) {
	value := *source
	matched := match(value, pattern, reverse)

	trimmed := value
	if matched != "" {
		trimmed = strings.TrimSpace(strings.Replace(value, matched, "", 1))
	}

	if existing := strings.TrimSpace(*target); existing != "" {
		matched = existing
	}

	if field == fieldBuilding {
		for name, expanded := range numberedStreets {
			if strings.Contains(trimmed, name) {
				trimmed = expanded
				matched = ""
			}
		}
	}

	if keepOriginal {
		trimmed = value
	}

	s.logger.Debug("separated component",
		zap.String("field", field),
		zap.String("value", value),
		zap.String("matched", matched))

	*source = trimmed
	*target = matched
}

// Separate extracts block, lane, building, neighbourhood and street-number
// substrings from the street field, re-checks the neighbourhood field for
// blocks some providers mislabel, and re-checks the untrimmed translated
// text for building codes a provider embedded elsewhere. Populated fields
// are never overwritten, so re-applying is a no-op.
func (s *Separator) Separate(row *models.UniqueAddress) {
	s.extract(&row.Street, &row.Block, blockRe, fieldBlock, false, false)
	s.extract(&row.Street, &row.Lane, laneRe, fieldLane, false, false)
	s.extract(&row.Street, &row.Building, buildingRe, fieldBuilding, true, false)
	s.extract(&row.Street, &row.Neighbourhood, neighbourhoodRe, fieldNeighbourhood, false, false)
	s.extract(&row.Street, &row.StreetNumber, normalizer.OrdinalRe, fieldStreetNumber, false, false)

	// Some providers return blocks mislabeled as neighbourhoods.
	s.extract(&row.Neighbourhood, &row.Block, blockRe, fieldBlock, false, false)

	// Recover building codes embedded in the translated text rather than
	// the street field. The translated value itself is left untouched.
	s.extract(&row.Translated, &row.Building, buildingRe, fieldBuilding, true, true)

	s.fixGenericStreets(row)
}

// fixGenericStreets discards a street value identical to any regional value
// on the row (the provider returned a region name as the street) and
// enriches a literal "Street" with the nearest available place name.
func (s *Separator) fixGenericStreets(row *models.UniqueAddress) {
	stripped := strings.TrimSpace(normalizer.WhitespaceRe.ReplaceAllString(row.Street, " "))
	if stripped == "" {
		return
	}

	regions := []string{row.Town, row.Village, row.AdministrativeUnit, row.Province, row.Country}
	for _, region := range regions {
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		if stripped == region {
			s.logger.Debug("dropped regional street value", zap.String("street", stripped))
			row.Street = ""
			return
		}
	}

	if stripped == "Street" {
		for _, region := range regions {
			if region = strings.TrimSpace(region); region != "" {
				row.Street = region + " " + stripped
				return
			}
		}
	}

	row.Street = stripped
}

// SplitOnDelimiters splits a translated address on "," or "›" into street
// and town when either field is still empty. Parts shorter than three
// characters are discarded; the "›" delimiter carries town first, so its
// parts are reversed. Existing values are preserved.
func SplitOnDelimiters(row *models.UniqueAddress) {
	if strings.TrimSpace(row.Street) != "" && strings.TrimSpace(row.Town) != "" {
		return
	}

	address := row.Translated
	if address == "" {
		return
	}

	parts := []string{"", ""}
	for _, delim := range []string{",", normalizer.ScriptDelimiter} {
		if !strings.Contains(address, delim) {
			continue
		}
		split := strings.SplitN(address, delim, 2)
		for i, p := range split {
			if p = strings.TrimSpace(p); len(p) >= 3 {
				split[i] = p
			} else {
				split[i] = ""
			}
		}
		if delim == normalizer.ScriptDelimiter {
			split[0], split[1] = split[1], split[0]
		}
		copy(parts, split)
		break
	}

	if strings.TrimSpace(row.Street) == "" {
		row.Street = parts[0]
	}
	if strings.TrimSpace(row.Town) == "" {
		row.Town = parts[1]
	}
}
