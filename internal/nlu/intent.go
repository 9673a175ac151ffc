package nlu

import "time"

type IntentKind string

const (
	IntentUnknown          IntentKind = "unknown"
	IntentGreeting         IntentKind = "greeting"
	IntentHelp             IntentKind = "help"
	IntentCancelBooking    IntentKind = "cancel_booking"
	IntentPNRStatus        IntentKind = "pnr_status"
	IntentBookingHistory   IntentKind = "booking_history"
	IntentSelectTrain      IntentKind = "select_train"
	IntentSearchTrains     IntentKind = "search_trains"
	IntentIncompleteSearch IntentKind = "incomplete_search"
	IntentFollowUp         IntentKind = "follow_up"
)

// Intent is the classified purpose of one utterance plus any entities the
// classifier already extracted on the way.
type Intent struct {
	Kind        IntentKind
	Source      string
	Destination string
	Date        time.Time
	PNR         string
	// TrainIndex is the zero-based position into the last search results.
	TrainIndex int
}

// Context is the slice of session state the classifier is allowed to see.
type Context struct {
	HasLastSearch bool
}

// rule pairs a name with a first-match-wins predicate. The cascade below is
// ordered data so priority changes never touch control flow.
type rule struct {
	name  string
	match func(m *matcher) (Intent, bool)
}

var rules = []rule{
	{"greeting", matchGreeting},
	{"help", matchHelp},
	{"cancel_booking", matchCancelBooking},
	{"pnr_status", matchPNRStatus},
	{"booking_history", matchBookingHistory},
	{"select_train", matchSelectTrain},
	{"search_trains", matchSearchTrains},
	{"incomplete_search", matchIncompleteSearch},
	{"follow_up", matchFollowUp},
}

// matcher memoizes the entity extractions shared between rules.
type matcher struct {
	text string
	now  time.Time
	ctx  Context

	citiesDone   bool
	source, dest string
	pnrDone      bool
	pnr          string
	pnrOK        bool
}

func (m *matcher) cities() (string, string) {
	if !m.citiesDone {
		m.source, m.dest = ExtractCities(m.text)
		m.citiesDone = true
	}
	return m.source, m.dest
}

func (m *matcher) findPNR() (string, bool) {
	if !m.pnrDone {
		m.pnr, m.pnrOK = ExtractPNR(m.text)
		m.pnrDone = true
	}
	return m.pnr, m.pnrOK
}

// Classify runs the ordered rule cascade over an idle-mode utterance.
// Exactly one intent comes back; nothing here mutates session state.
func Classify(text string, now time.Time, ctx Context) Intent {
	m := &matcher{text: text, now: now, ctx: ctx}
	for _, r := range rules {
		if in, ok := r.match(m); ok {
			return in
		}
	}
	return Intent{Kind: IntentUnknown}
}

// Greetings are suppressed when travel keywords are present so
// "hi, i want to go to delhi" is not swallowed by small talk.
func matchGreeting(m *matcher) (Intent, bool) {
	if containsAnyWord(m.text, lex.Greetings) && !containsAnyWord(m.text, lex.Travel) {
		return Intent{Kind: IntentGreeting}, true
	}
	return Intent{}, false
}

func matchHelp(m *matcher) (Intent, bool) {
	if containsAnyWord(m.text, lex.Help) {
		return Intent{Kind: IntentHelp}, true
	}
	return Intent{}, false
}

// Cancellation is checked before generic search so "cancel my ticket to
// delhi" is not misread as a route.
func matchCancelBooking(m *matcher) (Intent, bool) {
	if !containsAnyWord(m.text, lex.CancelWords) {
		return Intent{}, false
	}
	pnr, hasPNR := m.findPNR()
	if containsAnyWord(m.text, lex.BookingNouns) || hasPNR {
		return Intent{Kind: IntentCancelBooking, PNR: pnr}, true
	}
	return Intent{}, false
}

// A bare 10-digit number with no cancellation keyword is a status check.
func matchPNRStatus(m *matcher) (Intent, bool) {
	pnr, hasPNR := m.findPNR()
	if hasPNR {
		return Intent{Kind: IntentPNRStatus, PNR: pnr}, true
	}
	if containsAnyWord(m.text, lex.PNRStatus) {
		return Intent{Kind: IntentPNRStatus}, true
	}
	return Intent{}, false
}

// History phrasing is suppressed when route prepositions are present to
// avoid colliding with search ("tickets from mumbai to delhi").
func matchBookingHistory(m *matcher) (Intent, bool) {
	if containsAnyWord(m.text, lex.History) && !containsAnyWord(m.text, lex.RoutePrepositions) {
		return Intent{Kind: IntentBookingHistory}, true
	}
	return Intent{}, false
}

// Ordinal selection only makes sense against a cached search, and never when
// the utterance itself names a full route.
func matchSelectTrain(m *matcher) (Intent, bool) {
	if !m.ctx.HasLastSearch {
		return Intent{}, false
	}
	if src, dst := m.cities(); src != "" && dst != "" {
		return Intent{}, false
	}
	n, ok := ExtractNumber(m.text)
	if !ok {
		return Intent{}, false
	}
	if containsAnyWord(m.text, lex.SelectionWords) || isBareSelection(m.text) {
		return Intent{Kind: IntentSelectTrain, TrainIndex: n - 1}, true
	}
	return Intent{}, false
}

// isBareSelection accepts utterances that are nothing but the choice itself,
// like "1", "two" or "the first one".
func isBareSelection(text string) bool {
	for _, tok := range tokens(text) {
		if _, ok := ordinalWords[tok]; ok {
			continue
		}
		if isAllDigits(tok) {
			continue
		}
		switch tok {
		case "the", "a", "number", "train", "please":
			continue
		}
		return false
	}
	return true
}

func matchSearchTrains(m *matcher) (Intent, bool) {
	src, dst := m.cities()
	if src != "" && dst != "" {
		return Intent{
			Kind:        IntentSearchTrains,
			Source:      src,
			Destination: dst,
			Date:        ExtractDate(m.text, m.now),
		}, true
	}
	return Intent{}, false
}

// A search verb or a lone city starts the clarification flow.
func matchIncompleteSearch(m *matcher) (Intent, bool) {
	src, dst := m.cities()
	if src == "" && dst == "" && !containsAnyWord(m.text, lex.SearchVerbs) {
		return Intent{}, false
	}
	return Intent{
		Kind:        IntentIncompleteSearch,
		Source:      src,
		Destination: dst,
		Date:        ExtractDate(m.text, m.now),
	}, true
}

func matchFollowUp(m *matcher) (Intent, bool) {
	if m.ctx.HasLastSearch && containsAnyWord(m.text, lex.FollowUp) {
		return Intent{Kind: IntentFollowUp}, true
	}
	return Intent{}, false
}

// IsCheapestQuery reports a price-flavored follow-up.
func IsCheapestQuery(text string) bool { return containsAnyWord(text, lex.CheapWords) }

// IsFastestQuery reports a speed-flavored follow-up.
func IsFastestQuery(text string) bool { return containsAnyWord(text, lex.FastWords) }
