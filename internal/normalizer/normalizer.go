package normalizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ScriptDelimiter is the marker character some providers embed between the
// street and town parts of an address. A string containing it is treated as
// Latin-script regardless of its other characters.
const ScriptDelimiter = "›"

// Pattern fragments shared with the component separator.
const (
	OrdinalSuffix       = `(st|nd|rd|th)`
	NeighbourhoodSuffix = `(?:district|micro[-\s]?district|micro|neighborhood|quarter)`
)

var (
	// WhitespaceRe collapses underscores, literal "none" and repeated
	// whitespace into a single space.
	WhitespaceRe = regexp.MustCompile(`(?i)_|none|\s+`)

	// PunctuationRe strips everything that is not a word character or space.
	PunctuationRe = regexp.MustCompile(`[^\w\s]`)

	// OrdinalRe matches a complete ordinal token such as "2nd" or "31st".
	OrdinalRe = regexp.MustCompile(`(?i)\b(\d+)` + OrdinalSuffix + `\b`)

	// Spaced or dashed ordinal suffixes. "st" only joins across a dash so
	// that "5 st" survives to be expanded into "5 Street" later.
	dashedOrdinalRe = regexp.MustCompile(`(?i)\b(\d+)\s*-\s*` + OrdinalSuffix + `\b`)
	spacedOrdinalRe = regexp.MustCompile(`(?i)\b(\d+)\s+(nd|rd|th)\b`)

	alphanumericCodeRe   = regexp.MustCompile(`\b(\d{1,5})\s+([A-Za-z])\b`)
	digitNeighbourhoodRe = regexp.MustCompile(`(?i)\b(\d+)[\s\-]*(` + NeighbourhoodSuffix + `)\b`)

	streetRe  = regexp.MustCompile(`(?i)\b(st\.?|street|str|srteet|stret\.?)\b`)
	highwayRe = regexp.MustCompile(`(?i)\b(hwy|highway)\b`)
	avenueRe  = regexp.MustCompile(`(?i)\b(ave|avenue|avenu)\b`)
)

// IsNonEnglish reports whether a string is native-script: it contains no
// delimiter marker and is not representable in the ASCII range. This refers
// to character sets only, not the actual language used.
func IsNonEnglish(s string) bool {
	return !strings.Contains(s, ScriptDelimiter) && !isASCII(s)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// NormalizeString applies extreme normalization for grouping and feature
// cleaning: underscores, "none" and repeated whitespace become single spaces,
// accented characters are transliterated to ASCII, punctuation is removed and
// the result is title-cased.
func NormalizeString(value string) string {
	value = WhitespaceRe.ReplaceAllString(value, " ")
	value = unidecode.Unidecode(value)
	value = PunctuationRe.ReplaceAllString(value, "")
	return TitleCase(strings.TrimSpace(value))
}

// Normalize cleans a Latin-script address part: whitespace collapse, ordinal
// fixes, neighbourhood ordinal prefixes, digit+letter code joining,
// abbreviation expansion and title casing. Native-script input is discarded
// to an empty string; this function only cleans Latin-script content. Total:
// it never fails, malformed input comes back empty.
func Normalize(value string) string {
	value = WhitespaceRe.ReplaceAllString(value, " ")
	if IsNonEnglish(value) {
		return ""
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = fixOrdinals(value)
	value = fixNeighbourhoodPrefixes(value)
	value = fixAlphanumericCodes(value)
	value = expandAbbreviations(value)
	return applyTitleCasing(value)
}

// fixOrdinals removes dashes or spaces inside ordinals, e.g. "2-nd" and
// "3 rd" become "2nd" and "3rd".
func fixOrdinals(s string) string {
	s = dashedOrdinalRe.ReplaceAllString(s, "$1$2")
	return spacedOrdinalRe.ReplaceAllString(s, "$1$2")
}

// fixAlphanumericCodes joins digits followed by a trailing single letter,
// e.g. "123 A" becomes "123A".
func fixAlphanumericCodes(s string) string {
	return alphanumericCodeRe.ReplaceAllString(s, "$1$2")
}

// fixNeighbourhoodPrefixes applies ordinal suffixes to numeric identifiers
// preceding neighbourhood-type words, e.g. "1 Quarter" becomes "1st Quarter".
func fixNeighbourhoodPrefixes(s string) string {
	return digitNeighbourhoodRe.ReplaceAllStringFunc(s, func(m string) string {
		groups := digitNeighbourhoodRe.FindStringSubmatch(m)
		num := 0
		if _, err := fmt.Sscanf(groups[1], "%d", &num); err != nil {
			return m
		}
		return IntegerToOrdinal(num) + " " + groups[2]
	})
}

// IntegerToOrdinal returns the ordinal form of an integer ("1st", "12th").
func IntegerToOrdinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func expandAbbreviations(s string) string {
	s = streetRe.ReplaceAllString(s, "Street")
	s = highwayRe.ReplaceAllString(s, "Highway")
	s = avenueRe.ReplaceAllString(s, "Avenue")
	return strings.ReplaceAll(s, "Blok", "Block")
}

// applyTitleCasing capitalizes every token except those matching the ordinal
// pattern, so "2nd" never becomes "2Nd".
func applyTitleCasing(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if loc := OrdinalRe.FindStringIndex(word); loc != nil && loc[0] == 0 {
			continue
		}
		words[i] = TitleCase(word)
	}
	return strings.Join(words, " ")
}

// TitleCase title-cases a string. Casers carry internal state, so a fresh
// one is built per call to stay safe under concurrent API requests.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
