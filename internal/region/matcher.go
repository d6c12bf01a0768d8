package region

import (
	"sort"
	"strings"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/normalizer"
	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// Matcher fuzzy-matches free text against the administrative hierarchy and
// back-fills missing levels via reverse lookups. The hierarchy is read-only
// shared state; Matcher is safe for concurrent use.
type Matcher struct {
	hierarchy *models.Hierarchy
	accuracy  float64
	jwWeight  float64
	levWeight float64
	logger    *zap.Logger

	// sorted candidate sets, fixed at construction for deterministic ties
	provinces  []string
	units      []string
	localities []string
}

func NewMatcher(h *models.Hierarchy, accuracy float64, logger *zap.Logger) *Matcher {
	m := &Matcher{
		hierarchy: h,
		accuracy:  accuracy,
		jwWeight:  0.5,
		levWeight: 0.5,
		logger:    logger,
	}
	for p := range h.Provinces {
		m.provinces = append(m.provinces, p)
	}
	for u := range h.UnitToProvince {
		m.units = append(m.units, u)
	}
	for l := range h.LocalityToUnit {
		m.localities = append(m.localities, l)
	}
	sort.Strings(m.provinces)
	sort.Strings(m.units)
	sort.Strings(m.localities)
	return m
}

// Match resolves free text into (province, administrative unit, town).
// Province is matched first, then the administrative unit, then the town;
// town lookup is skipped for the capital region, which has no subordinate
// towns. Missing levels are back-filled through the hierarchy mappings.
func (m *Matcher) Match(text string) (province, unit, town string) {
	if m.hierarchy.Empty() || strings.TrimSpace(text) == "" {
		return "", "", ""
	}

	province = m.FuzzyMatch(text, m.provinces)
	unit = m.FuzzyMatch(text, m.units)
	if province != CapitalProvince {
		town = m.FuzzyMatch(text, m.localities)
	}

	if unit == "" && town != "" {
		unit = m.hierarchy.UnitOf(town)
	}
	if province == "" && unit != "" {
		province = m.hierarchy.ProvinceOf(unit)
	}
	return province, unit, town
}

// MatchRow fills the regional fields of a unique address from its translated
// text.
func (m *Matcher) MatchRow(row *models.UniqueAddress) {
	province, unit, town := m.Match(row.Translated)
	row.Province = province
	row.AdministrativeUnit = unit
	row.Town = town
}

// FuzzyMatch returns the candidate the text refers to. Direct token match
// first: the title-cased, comma-stripped words are checked verbatim against
// the candidate set. Fallback is the best fuzzy score, accepted only at or
// above the accuracy threshold; otherwise "".
func (m *Matcher) FuzzyMatch(text string, choices []string) string {
	if len(choices) == 0 {
		return ""
	}

	set := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		set[c] = struct{}{}
	}
	titled := normalizer.TitleCase(strings.ReplaceAll(text, ",", ""))
	tokens := strings.Fields(titled)
	for _, token := range tokens {
		if _, ok := set[token]; ok {
			return token
		}
	}

	best, bestScore := "", 0.0
	for _, choice := range choices {
		if score := m.score(text, choice); score > bestScore {
			best, bestScore = choice, score
		}
	}
	if bestScore < m.accuracy {
		return ""
	}
	m.logger.Debug("fuzzy matched region",
		zap.String("text", text),
		zap.String("match", best),
		zap.Float64("score", bestScore))
	return best
}

// score blends a Levenshtein ratio with Jaro-Winkler similarity on a 0-100
// scale. Equal strings score exactly 100.
func (m *Matcher) score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	levRatio := (1 - float64(dist)/float64(longest)) * 100

	jw := smetrics.JaroWinkler(a, b, 0.7, 4) * 100

	return m.levWeight*levRatio + m.jwWeight*jw
}
