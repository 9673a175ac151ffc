package nlu

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"railvoice-backend/internal/types"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

// Lexicon holds the fixed alias and keyword tables that drive both intent
// detection and entity extraction. It is loaded once from the embedded YAML.
type Lexicon struct {
	Cities            map[string][]string `yaml:"cities"`
	Greetings         []string            `yaml:"greetings"`
	Help              []string            `yaml:"help"`
	Travel            []string            `yaml:"travel"`
	CancelWords       []string            `yaml:"cancel_words"`
	BookingNouns      []string            `yaml:"booking_nouns"`
	PNRStatus         []string            `yaml:"pnr_status"`
	History           []string            `yaml:"history"`
	RoutePrepositions []string            `yaml:"route_prepositions"`
	SearchVerbs       []string            `yaml:"search_verbs"`
	SelectionWords    []string            `yaml:"selection_words"`
	FollowUp          []string            `yaml:"follow_up"`
	CheapWords        []string            `yaml:"cheap_words"`
	FastWords         []string            `yaml:"fast_words"`
	Abort             []string            `yaml:"abort"`
	YesWords          []string            `yaml:"yes_words"`
	NoWords           []string            `yaml:"no_words"`
	GenderMale        []string            `yaml:"gender_male"`
	GenderFemale      []string            `yaml:"gender_female"`
	GenderOther       []string            `yaml:"gender_other"`
	Classes           map[string][]string `yaml:"classes"`
}

var lex = mustLoadLexicon()

func mustLoadLexicon() Lexicon {
	l, err := parseLexicon(lexiconYAML)
	if err != nil {
		panic(err)
	}
	return l
}

func parseLexicon(b []byte) (Lexicon, error) {
	var l Lexicon
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Lexicon{}, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if len(l.Cities) == 0 {
		return Lexicon{}, fmt.Errorf("lexicon has no cities")
	}
	return l, nil
}

// classOrder fixes the matching priority for travel classes; the multi-word
// aliases must be tried before a bare "ac" fallback kicks in.
var classOrder = []types.TravelClass{
	types.ClassAC1,
	types.ClassAC2,
	types.ClassAC3,
	types.ClassSleeper,
	types.ClassChairCar,
	types.ClassSecondSitting,
}

// containsAnyWord reports whether any needle appears in s on word boundaries.
func containsAnyWord(s string, needles []string) bool {
	for _, n := range needles {
		if containsWord(s, n) {
			return true
		}
	}
	return false
}

// containsWord is a word-boundary-aware strings.Contains: "hi" does not
// match inside "shift", but multi-word phrases match as a whole.
func containsWord(s, phrase string) bool {
	return indexWord(s, phrase) >= 0
}

// indexWord returns the byte index of the first word-boundary occurrence of
// phrase in s, or -1.
func indexWord(s, phrase string) int {
	if phrase == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		before := i == 0 || isBoundary(s[i-1])
		end := i + len(phrase)
		after := end == len(s) || isBoundary(s[end])
		if before && after {
			return i
		}
		from = i + 1
		if from >= len(s) {
			return -1
		}
	}
}

func isBoundary(b byte) bool {
	return !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9')
}
