package dialogue

import "strings"

// Reply is the uniform dual-channel result of one turn: Text may carry
// formatting for a visual UI, Speech is a flat string for audio rendering,
// and Action/Data are optional machine-readable hints for the caller.
type Reply struct {
	Text   string
	Speech string
	Action string
	Data   map[string]any
}

// UI action hints.
const (
	ActionShowTrains      = "show_trains"
	ActionShowPNR         = "show_pnr"
	ActionShowBookings    = "show_bookings"
	ActionBookingComplete = "booking_complete"
)

// reply builds a Reply, guaranteeing Speech is non-empty and markup-free.
func reply(text, speech string) Reply {
	if speech == "" {
		speech = text
	}
	speech = flattenSpeech(speech)
	if speech == "" {
		speech = "Okay."
	}
	return Reply{Text: text, Speech: speech}
}

// Apology is the degraded reply for turns the engine could not finish.
func Apology() Reply {
	return reply("Sorry, something went wrong on my side. Please try that again.", "")
}

func (r Reply) withAction(action string, data map[string]any) Reply {
	r.Action = action
	r.Data = data
	return r
}

// flattenSpeech strips markup and symbols so the string is safe to hand to a
// speech synthesizer.
func flattenSpeech(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\n', r == '\t':
			b.WriteRune(' ')
		case r == '.', r == ',', r == '?', r == '!', r == '\'', r == ':', r == ';', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
