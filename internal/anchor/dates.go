package anchor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"
)

// Date token patterns accepted in clinical free text. Month and day may
// be one or two digits; normalization zero-pads.
var (
	numericDatePattern = regexp.MustCompile(`(\d{4})[./-](\d{1,2})[./-](\d{1,2})`)
	koreanDatePattern  = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
)

// DateToken is one date occurrence located in a segment
type DateToken struct {
	Raw   string    // Token as it appeared
	Date  time.Time // Normalized to UTC midnight
	Start int       // Rune offset of token start
	End   int       // Rune offset past token end
}

// NormalizeDate builds a UTC-midnight calendar date, rejecting
// out-of-range components. time.Date would silently roll 2024-02-31
// into March, so the round-trip is checked.
func NormalizeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}
	if year < 1900 || year > 2100 {
		return time.Time{}, fmt.Errorf("year %d out of range", year)
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date %04d-%02d-%02d", year, month, day)
	}
	return d, nil
}

// FindDateTokens locates every parseable date token in the text,
// returning rune offsets so Korean multi-byte text windows stay aligned.
// Unparseable matches are skipped, not reported: a segment without dates
// simply yields no anchors.
func FindDateTokens(text string) []DateToken {
	var tokens []DateToken
	for _, pattern := range []*regexp.Regexp{koreanDatePattern, numericDatePattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			raw := text[m[0]:m[1]]
			year, _ := strconv.Atoi(text[m[2]:m[3]])
			month, _ := strconv.Atoi(text[m[4]:m[5]])
			day, _ := strconv.Atoi(text[m[6]:m[7]])
			date, err := NormalizeDate(year, month, day)
			if err != nil {
				continue
			}
			start := utf8.RuneCountInString(text[:m[0]])
			tokens = append(tokens, DateToken{
				Raw:   raw,
				Date:  date,
				Start: start,
				End:   start + utf8.RuneCountInString(raw),
			})
		}
	}
	// The Korean pattern runs first; drop numeric matches nested inside a
	// Korean match region (none overlap in practice, but OCR output is messy).
	tokens = dropOverlaps(tokens)
	// Restore document order: the per-pattern scans interleave otherwise,
	// and chronology validation depends on appearance order.
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens
}

func dropOverlaps(tokens []DateToken) []DateToken {
	var out []DateToken
	for _, t := range tokens {
		overlapped := false
		for _, kept := range out {
			if t.Start < kept.End && kept.Start < t.End {
				overlapped = true
				break
			}
		}
		if !overlapped {
			out = append(out, t)
		}
	}
	return out
}
