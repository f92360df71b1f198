// README: Lenient multi-format date parsing, biased toward future dates.
package conversation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsableDate is returned when no supported format matches. The caller
// re-prompts the slot; this never crashes a turn.
var ErrUnparsableDate = errors.New("unrecognized date format")

// Layouts carrying an explicit year, tried first.
var datedLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Year-less layouts; the year is assumed and then future-biased.
var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
	"2 Jan",
	"2 January",
	"01/02",
	"1/2",
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// ParseFlexibleDate turns a user-supplied date phrase into a calendar date.
// Accepted forms: ISO and slash-delimited dates, month-name dates with or
// without a year, and relative phrases ("tomorrow", "next friday",
// "in 3 days"). Year-less dates that already passed this year resolve to next
// year, since travelers quote upcoming trips.
func ParseFlexibleDate(raw string, now time.Time) (time.Time, error) {
	cleaned := cleanDatePhrase(raw)
	if cleaned == "" {
		return time.Time{}, ErrUnparsableDate
	}
	today := midnight(now)

	if d, ok := parseRelative(cleaned, today); ok {
		return d, nil
	}

	titled := titleCaseWords(cleaned)
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, titled); err == nil {
			return midnight(t), nil
		}
	}
	for _, layout := range yearlessLayouts {
		t, err := time.Parse(layout, titled)
		if err != nil {
			continue
		}
		d := time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d, nil
	}

	return time.Time{}, ErrUnparsableDate
}

func parseRelative(phrase string, today time.Time) (time.Time, bool) {
	switch phrase {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "day after tomorrow":
		return today.AddDate(0, 0, 2), true
	case "next week":
		return today.AddDate(0, 0, 7), true
	case "next month":
		return today.AddDate(0, 1, 0), true
	}

	tokens := strings.Fields(phrase)

	// "next friday", "this friday", bare "friday": the next occurrence,
	// never today itself.
	if wd, ok := weekdays[tokens[len(tokens)-1]]; ok && len(tokens) <= 2 {
		if len(tokens) == 1 || tokens[0] == "next" || tokens[0] == "this" {
			days := (int(wd) - int(today.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return today.AddDate(0, 0, days), true
		}
	}

	// "in N days" / "in N weeks".
	if len(tokens) == 3 && tokens[0] == "in" {
		n, err := strconv.Atoi(tokens[1])
		if err == nil && n > 0 {
			switch tokens[2] {
			case "day", "days":
				return today.AddDate(0, 0, n), true
			case "week", "weeks":
				return today.AddDate(0, 0, 7*n), true
			}
		}
	}

	return time.Time{}, false
}

// cleanDatePhrase lowercases, drops commas and ordinal suffixes
// ("Jan 5th," -> "jan 5"), and collapses whitespace.
func cleanDatePhrase(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", " ")
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		tokens[i] = stripOrdinal(tok)
	}
	return strings.Join(tokens, " ")
}

func stripOrdinal(tok string) string {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		body := strings.TrimSuffix(tok, suffix)
		if body != tok && isDigits(body) {
			return body
		}
	}
	return tok
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// titleCaseWords capitalizes alphabetic tokens so time.Parse month-name
// layouts accept lowercased input ("jan 5" -> "Jan 5").
func titleCaseWords(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if tok[0] >= 'a' && tok[0] <= 'z' {
			tokens[i] = strings.ToUpper(tok[:1]) + tok[1:]
		}
	}
	return strings.Join(tokens, " ")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// formatDate renders a date the way prompts and summaries show it.
func formatDate(t time.Time) string {
	return t.Format("Mon, Jan 2 2006")
}

// describeTrip renders "Tokyo, 2026-01-05 to 2026-01-12" fragments for logs.
func describeTrip(dest string, dep, ret *time.Time) string {
	switch {
	case dep != nil && ret != nil:
		return fmt.Sprintf("%s, %s to %s", dest, dep.Format("2006-01-02"), ret.Format("2006-01-02"))
	case dep != nil:
		return fmt.Sprintf("%s, from %s", dest, dep.Format("2006-01-02"))
	default:
		return dest
	}
}
