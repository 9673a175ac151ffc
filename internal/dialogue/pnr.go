package dialogue

import (
	"context"
	"fmt"
	"strings"

	"railvoice-backend/internal/nlu"
	"railvoice-backend/internal/session"
)

const pnrLength = 10

// continuePNRCollection accumulates dictated digits across turns until ten
// have been heard, then performs the pending status check or cancellation.
func (e *Engine) continuePNRCollection(ctx context.Context, sess *session.Session, m session.CollectingPNR, text string) Reply {
	digits := nlu.ExtractDigits(text)
	if len(digits) == 0 {
		return reply(msgNoDigits, "")
	}
	m.Digits = append(m.Digits, digits...)

	if len(m.Digits) < pnrLength {
		sess.Mode = m
		heard := strings.Join(m.Digits, "")
		remaining := pnrLength - len(m.Digits)
		msg := fmt.Sprintf("Got %s so far. %d more digits to go.", heard, remaining)
		speech := fmt.Sprintf("Got %s so far. %d more digits to go.", spellDigits(heard), remaining)
		return reply(msg, speech)
	}

	pnr := strings.Join(m.Digits[:pnrLength], "")
	sess.Reset()
	if m.Purpose == session.PNRForCancel {
		return e.cancelPNR(ctx, pnr)
	}
	return e.lookupPNR(ctx, pnr)
}
