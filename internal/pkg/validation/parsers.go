package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a malformed field input. It is always recoverable: the
// controller re-prompts and the conversation stays in the same state.
type ParseError struct {
	Field string
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Input)
}

var (
	// Separator between the two team names: "vs"/"v" as a word, or a dash
	// surrounded by spaces. A bare dash is not a separator so hyphenated
	// names like "Al-Hilal" survive.
	teamsSepRe = regexp.MustCompile(`(?i)^(.+?)(?:\s+(?:vs\.?|v\.?)\s+|\s+[-–—]\s+)(.+)$`)

	spaceRe = regexp.MustCompile(`\s+`)

	// Opportunistic day/month/year extraction from free text.
	dateRe = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)

	cellRe = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)
)

// outcome set for 1X2 (and double-chance) markets
var selections = map[string]string{
	"1": "1", "X": "X", "2": "2",
	"1X": "1X", "X2": "X2", "12": "12",
}

// ParseTeams normalizes "A vs B" input: both sides trimmed, internal
// whitespace collapsed, canonical " vs " in the middle.
func ParseTeams(text string) (string, error) {
	m := teamsSepRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", &ParseError{Field: "teams", Input: text}
	}
	home := spaceRe.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	away := spaceRe.ReplaceAllString(strings.TrimSpace(m[2]), " ")
	if home == "" || away == "" {
		return "", &ParseError{Field: "teams", Input: text}
	}
	return home + " vs " + away, nil
}

// ParseSelection matches the fixed outcome set case-insensitively. Any other
// non-empty text is returned verbatim with enumerated=false: users bet
// markets outside 1X2 and those selections are stored as typed.
func ParseSelection(text string) (value string, enumerated bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false, &ParseError{Field: "selection", Input: text}
	}
	if v, ok := selections[strings.ToUpper(trimmed)]; ok {
		return v, true, nil
	}
	return trimmed, false, nil
}

// ParseOdds accepts comma or dot as decimal separator. Values below 1.01 are
// rejected as malformed input (below break-even they cannot be real odds).
func ParseOdds(text string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	odds, err := strconv.ParseFloat(raw, 64)
	// the negated comparison also rejects NaN, which ParseFloat accepts
	if err != nil || math.IsInf(odds, 0) || !(odds >= 1.01) {
		return 0, &ParseError{Field: "odds", Input: text}
	}
	return odds, nil
}

// ParseStake accepts comma or dot as decimal separator; the stake must be
// strictly positive.
func ParseStake(text string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	stake, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(stake, 0) || !(stake > 0) {
		return 0, &ParseError{Field: "stake", Input: text}
	}
	return stake, nil
}

// IsDefaultStake reports whether the input is the "use the default stake"
// keyboard shortcut ("Usar 1€" etc.), case-insensitively.
func IsDefaultStake(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "usar")
}

// IsChangeAmount reports whether the input is the "type a custom amount"
// keyboard shortcut ("Cambiar importe").
func IsChangeAmount(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "cambiar")
}

// ParseDate extracts a DD/MM/YYYY date from free text. Two-digit years are
// normalized to the 2000s. Invalid calendar dates (31/04, month 13, ...)
// yield ok=false rather than an error; the caller falls back to today.
func ParseDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}
	// round-trip through time.Date to catch impossible days
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) || d.Year() != year {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year), true
}

// ValidCellRef reports whether text is a spreadsheet-style A1 address.
func ValidCellRef(text string) bool {
	return cellRe.MatchString(strings.TrimSpace(text))
}
