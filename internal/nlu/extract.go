package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"railvoice-backend/internal/types"
)

// Entity extractors. All of them are pure functions over already-lowercased
// utterance text; they return a zero value and false instead of failing.

// strict spoken-digit forms, safe to normalize anywhere in a sentence.
var wordDigits = map[string]string{
	"zero": "0", "oh": "0",
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9",
}

// dictation homophones, only trusted while a PNR-collection flow is active.
var dictationDigits = map[string]string{
	"zero": "0", "oh": "0", "o": "0",
	"one": "1", "won": "1",
	"two": "2", "to": "2", "too": "2",
	"three": "3", "tree": "3",
	"four": "4", "for": "4",
	"five": "5",
	"six": "6",
	"seven": "7",
	"eight": "8", "ate": "8",
	"nine": "9", "niner": "9",
}

var (
	reDigitRun = regexp.MustCompile(`\d+`)
	reInNDays  = regexp.MustCompile(`\bin\s+(\d+)\s+days?\b`)
	reDayMonth = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\b`)
	reMonthDay = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// weekdays is ordered so that an utterance naming several days resolves the
// same way on every run.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

func tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// ExtractCities scans for known city tokens using the alias table. With two
// or more distinct cities the first two are returned in order of first
// appearance. A single hit is treated as the destination unless it directly
// follows "from".
func ExtractCities(text string) (source, destination string) {
	type hit struct {
		city string
		pos  int
	}
	var hits []hit
	for city, aliases := range lex.Cities {
		best := -1
		for _, a := range aliases {
			if i := indexWord(text, a); i >= 0 && (best < 0 || i < best) {
				best = i
			}
		}
		if best >= 0 {
			hits = append(hits, hit{city: city, pos: best})
		}
	}
	if len(hits) == 0 {
		return "", ""
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	if len(hits) >= 2 {
		return hits[0].city, hits[1].city
	}
	if precededBy(text, hits[0].pos, "from") {
		return hits[0].city, ""
	}
	return "", hits[0].city
}

// precededBy reports whether the word immediately before position pos is w.
func precededBy(text string, pos int, w string) bool {
	before := strings.Fields(text[:pos])
	return len(before) > 0 && before[len(before)-1] == w
}

// FindDate resolves relative and literal date phrases against now. ok is
// false when the utterance names no date at all.
func FindDate(text string, now time.Time) (d time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// "day after tomorrow" must be tried before "tomorrow".
	if containsWord(text, "day after tomorrow") || containsWord(text, "the day after") || containsWord(text, "day after") {
		return today.AddDate(0, 0, 2), true
	}
	if containsAnyWord(text, []string{"tomorrow", "next day", "following day"}) {
		return today.AddDate(0, 0, 1), true
	}
	if containsAnyWord(text, []string{"today", "this day", "same day"}) {
		return today, true
	}
	for _, wd := range weekdays {
		if containsWord(text, wd.name) {
			ahead := int(wd.day-today.Weekday()+7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.AddDate(0, 0, ahead), true
		}
	}
	if m := reInNDays.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n), true
	}
	if m := reDayMonth.FindStringSubmatch(text); m != nil {
		if d, ok := literalDate(today, m[2], m[1]); ok {
			return d, true
		}
	}
	if m := reMonthDay.FindStringSubmatch(text); m != nil {
		if d, ok := literalDate(today, m[1], m[2]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// ExtractDate is FindDate with a default of today.
func ExtractDate(text string, now time.Time) time.Time {
	if d, ok := FindDate(text, now); ok {
		return d
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func literalDate(today time.Time, monthName, dayStr string) (time.Time, bool) {
	month, ok := months[monthName]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

var ordinalWords = map[string]int{
	"one": 1, "first": 1,
	"two": 2, "second": 2,
	"three": 3, "third": 3,
	"four": 4, "fourth": 4,
	"five": 5, "fifth": 5,
	"six": 6, "sixth": 6,
}

// ExtractNumber finds a selection index 1..6, digit or spelled out.
func ExtractNumber(text string) (int, bool) {
	for _, tok := range tokens(text) {
		if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= 6 {
			return n, true
		}
		if n, ok := ordinalWords[tok]; ok {
			return n, true
		}
	}
	return 0, false
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var smallWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "hundred": 100,
}

// ExtractAge finds an age between 1 and 120, digit or spelled
// ("twenty five" composes tens and units).
func ExtractAge(text string) (int, bool) {
	toks := tokens(text)
	for i, tok := range toks {
		if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= 120 {
			return n, true
		}
		if t, ok := tensWords[tok]; ok {
			if i+1 < len(toks) {
				if u, ok := smallWords[toks[i+1]]; ok && u < 10 {
					return t + u, true
				}
			}
			return t, true
		}
		if n, ok := smallWords[tok]; ok && n >= 1 && n <= 120 {
			return n, true
		}
	}
	return 0, false
}

var nameLeadIns = []string{
	"my name is", "i am called", "this is", "name is", "i am", "i'm", "its", "it's", "call me",
}

// ExtractName strips conversational lead-ins and title-cases the remainder.
func ExtractName(text string) (string, bool) {
	s := strings.TrimSpace(text)
	for _, lead := range nameLeadIns {
		if strings.HasPrefix(s, lead+" ") {
			s = strings.TrimSpace(strings.TrimPrefix(s, lead))
			break
		}
	}
	if len(s) < 2 || strings.ContainsAny(s, "0123456789") {
		return "", false
	}
	return titleWords(s), true
}

func titleWords(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// ExtractPhone concatenates digit characters and spoken digits; a phone is
// valid only at exactly 10 digits.
func ExtractPhone(text string) (string, bool) {
	var b strings.Builder
	for _, tok := range tokens(text) {
		if isAllDigits(tok) {
			b.WriteString(tok)
		} else if d, ok := wordDigits[tok]; ok {
			b.WriteString(d)
		}
	}
	if b.Len() == 10 {
		return b.String(), true
	}
	return "", false
}

// ExtractPNR finds a contiguous run of exactly 10 digits after normalizing
// spoken digits. Longer or shorter runs are not a PNR.
func ExtractPNR(text string) (string, bool) {
	var runs []string
	current := ""
	flush := func() {
		if current != "" {
			runs = append(runs, current)
			current = ""
		}
	}
	for _, tok := range tokens(text) {
		switch {
		case isAllDigits(tok):
			current += tok
		default:
			if d, ok := wordDigits[tok]; ok {
				current += d
			} else {
				flush()
			}
		}
	}
	flush()
	for _, r := range runs {
		if len(r) == 10 {
			return r, true
		}
	}
	return "", false
}

// ExtractDigits pulls every digit from a dictation utterance, including
// digit-word homophones. Used only while a PNR-collection flow is active.
func ExtractDigits(text string) []string {
	var digits []string
	for _, tok := range tokens(text) {
		if isAllDigits(tok) {
			for _, c := range tok {
				digits = append(digits, string(c))
			}
		} else if d, ok := dictationDigits[tok]; ok {
			digits = append(digits, d)
		}
	}
	return digits
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ExtractGender matches the gender keyword sets, first match wins.
func ExtractGender(text string) (types.Gender, bool) {
	switch {
	case containsAnyWord(text, lex.GenderMale):
		return types.GenderMale, true
	case containsAnyWord(text, lex.GenderFemale):
		return types.GenderFemale, true
	case containsAnyWord(text, lex.GenderOther):
		return types.GenderOther, true
	}
	return "", false
}

// ExtractClass matches travel-class keyword sets in fixed priority order,
// with a bare "ac" defaulting to AC 3.
func ExtractClass(text string) (types.TravelClass, bool) {
	for _, c := range classOrder {
		if containsAnyWord(text, lex.Classes[string(c)]) {
			return c, true
		}
	}
	if containsWord(text, "ac") {
		return types.ClassAC3, true
	}
	return "", false
}

// IsAffirmative reports a yes-flavored confirmation.
func IsAffirmative(text string) bool { return containsAnyWord(text, lex.YesWords) }

// IsNegative reports a no-flavored refusal.
func IsNegative(text string) bool { return containsAnyWord(text, lex.NoWords) }

// IsAbort reports a bare abort keyword ("cancel", "stop", "quit") that ends
// the active flow without meaning ticket cancellation.
func IsAbort(text string) bool { return containsAnyWord(text, lex.Abort) }

// IsTicketCancellation reports a cancellation keyword combined with a
// booking noun or a PNR, which always means cancelling a railway ticket,
// even mid-flow.
func IsTicketCancellation(text string) bool {
	if !containsAnyWord(text, lex.CancelWords) {
		return false
	}
	if containsAnyWord(text, lex.BookingNouns) {
		return true
	}
	_, ok := ExtractPNR(text)
	return ok
}
