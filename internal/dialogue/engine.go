package dialogue

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"railvoice-backend/internal/nlu"
	"railvoice-backend/internal/session"
	"railvoice-backend/internal/store"
	"railvoice-backend/internal/types"
)

const maxSearchResults = 6

// Engine is the conversational dialogue engine: one utterance in, one Reply
// out, with the session mutated in between. The caller holds the session's
// per-key lock for the duration of Handle.
type Engine struct {
	bookings store.Store
	now      func() time.Time
}

func New(bookings store.Store) *Engine {
	return &Engine{bookings: bookings, now: time.Now}
}

// Handle routes one turn. An active flow intercepts the turn before intent
// classification runs, except for the ticket-cancellation interrupt which
// overrides any flow.
func (e *Engine) Handle(ctx context.Context, sess *session.Session, utterance string) Reply {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return reply(msgHeardNothing, "")
	}
	sess.Record(text, e.now())

	if nlu.IsTicketCancellation(text) {
		sess.Reset()
		return e.handleCancelIntent(ctx, sess, text)
	}

	switch m := sess.Mode.(type) {
	case session.AwaitingLocations:
		if nlu.IsAbort(text) {
			sess.Reset()
			return reply(msgSearchCancelled, "")
		}
		return e.continueAwaitingLocations(ctx, sess, m, text)
	case session.CollectingPNR:
		if nlu.IsAbort(text) {
			sess.Reset()
			return reply("Okay, never mind.", "")
		}
		return e.continuePNRCollection(ctx, sess, m, text)
	case session.BookingInProgress:
		if nlu.IsAbort(text) {
			sess.Reset()
			return reply(msgBookingCancelled, "")
		}
		return e.continueBooking(ctx, sess, m, text)
	}

	in := nlu.Classify(text, e.now(), nlu.Context{HasLastSearch: sess.Last != nil})
	log.Printf("[dialogue] session=%s intent=%s", sess.ID, in.Kind)

	switch in.Kind {
	case nlu.IntentGreeting:
		return reply(greetingReplies[rand.Intn(len(greetingReplies))], "")
	case nlu.IntentHelp:
		return reply(helpText, helpSpeech)
	case nlu.IntentCancelBooking:
		return e.handleCancelIntent(ctx, sess, text)
	case nlu.IntentPNRStatus:
		if in.PNR != "" {
			return e.lookupPNR(ctx, in.PNR)
		}
		sess.Mode = session.CollectingPNR{Purpose: session.PNRForStatus}
		return reply(msgAskPNRStatus, "")
	case nlu.IntentBookingHistory:
		return e.handleHistory(ctx, sess)
	case nlu.IntentSelectTrain:
		return e.startBooking(sess, in.TrainIndex)
	case nlu.IntentSearchTrains:
		return e.runSearch(ctx, sess, in.Source, in.Destination, in.Date)
	case nlu.IntentIncompleteSearch:
		return e.startAwaitingLocations(sess, in)
	case nlu.IntentFollowUp:
		return e.handleFollowUp(sess, text)
	}
	return e.handleUnknown(sess, text)
}

// handleCancelIntent deals with cancelling an existing ticket, either
// immediately when a PNR was spoken or by collecting one.
func (e *Engine) handleCancelIntent(ctx context.Context, sess *session.Session, text string) Reply {
	if pnr, ok := nlu.ExtractPNR(text); ok {
		return e.cancelPNR(ctx, pnr)
	}
	sess.Mode = session.CollectingPNR{Purpose: session.PNRForCancel}
	return reply(msgAskPNRCancel, "")
}

func (e *Engine) cancelPNR(ctx context.Context, pnr string) Reply {
	ok, err := e.bookings.CancelBookingByPNR(ctx, pnr)
	if err != nil {
		log.Printf("[dialogue] cancel booking %s failed: %v", pnr, err)
		return reply(msgError, "")
	}
	if !ok {
		return reply(msgCancelNotFound, "")
	}
	return reply(
		fmt.Sprintf("%s PNR %s is now cancelled.", msgCancelDone, pnr),
		fmt.Sprintf("Done. Booking with P N R %s has been cancelled.", spellDigits(pnr)),
	)
}

func (e *Engine) lookupPNR(ctx context.Context, pnr string) Reply {
	rec, err := e.bookings.GetBookingByPNR(ctx, pnr)
	if err != nil {
		log.Printf("[dialogue] pnr lookup %s failed: %v", pnr, err)
		return reply(msgError, "")
	}
	if rec == nil {
		return reply(
			fmt.Sprintf("PNR %s not found. Please check the number.", pnr),
			fmt.Sprintf("Sorry, P N R %s was not found. Please check the number.", spellDigits(pnr)),
		)
	}
	text := fmt.Sprintf(`PNR %s: %s
Train: %s - %s
Route: %s to %s
Passenger: %s (%d, %s)
Class: %s, Date: %s`,
		rec.PNR, strings.ToUpper(rec.Status),
		rec.TrainNumber, rec.TrainName,
		rec.SourceStation, rec.DestStation,
		rec.PassengerName, rec.PassengerAge, rec.PassengerGender,
		rec.Class.Display(), rec.TravelDate,
	)
	speech := fmt.Sprintf("Your P N R is %s. Train %s, passenger %s, travelling from %s to %s.",
		rec.Status, rec.TrainName, rec.PassengerName, rec.SourceStation, rec.DestStation)
	return reply(text, speech).withAction(ActionShowPNR, map[string]any{"booking": rec})
}

func (e *Engine) handleHistory(ctx context.Context, sess *session.Session) Reply {
	records, err := e.bookings.GetUserBookings(ctx, sess.UserID, 5)
	if err != nil {
		log.Printf("[dialogue] history lookup failed: %v", err)
		return reply(msgError, "")
	}
	if len(records) == 0 {
		return reply(msgHistoryEmpty, "")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your recent %d bookings:\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. PNR %s - %s - %s\n", i+1, rec.PNR, rec.TrainName, rec.Status)
	}
	speech := fmt.Sprintf("You have %d recent bookings. Latest is P N R %s for %s, %s.",
		len(records), spellDigits(records[0].PNR), records[0].TrainName, records[0].Status)
	return reply(b.String(), speech).withAction(ActionShowBookings, map[string]any{"bookings": records})
}

// runSearch resolves both cities, queries the catalog and caches the result
// for ordinal selection and follow-ups.
func (e *Engine) runSearch(ctx context.Context, sess *session.Session, source, destination string, date time.Time) Reply {
	srcStations, err := e.bookings.FindStations(ctx, source)
	if err != nil {
		log.Printf("[dialogue] station lookup %q failed: %v", source, err)
		return reply(msgError, "")
	}
	if len(srcStations) == 0 {
		return reply(msgUnknownCity, "")
	}
	dstStations, err := e.bookings.FindStations(ctx, destination)
	if err != nil {
		log.Printf("[dialogue] station lookup %q failed: %v", destination, err)
		return reply(msgError, "")
	}
	if len(dstStations) == 0 {
		return reply(msgUnknownCity, "")
	}

	srcName := srcStations[0].Name
	dstName := dstStations[0].Name
	sess.Reset()

	trains, err := e.bookings.SearchTrains(ctx, srcName, dstName)
	if err != nil {
		log.Printf("[dialogue] train search %s -> %s failed: %v", srcName, dstName, err)
		return reply(msgError, "")
	}
	if len(trains) == 0 {
		return reply(msgNoTrains, "")
	}
	if len(trains) > maxSearchResults {
		trains = trains[:maxSearchResults]
	}

	sess.Last = &session.LastSearch{
		Source:      srcName,
		Destination: dstName,
		Date:        date,
		Trains:      trains,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d trains from %s to %s on %s:\n\n", len(trains), srcName, dstName, date.Format("Mon, 02 Jan"))
	for i, t := range trains {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s -> %s, from Rs %d\n", i+1, t.TrainName, t.TrainNumber, t.DepartureTime, t.ArrivalTime, int(t.MinPrice()))
	}
	b.WriteString("\nSay 'book 1' to book the first train, or ask for the cheapest or fastest option.")

	speech := fmt.Sprintf("Found %d trains from %s to %s. Say book 1 to book the first train, or ask for the cheapest or fastest option.",
		len(trains), source, destination)
	return reply(b.String(), speech).withAction(ActionShowTrains, map[string]any{
		"trains":      trains,
		"source":      srcName,
		"destination": dstName,
		"date":        date.Format("2006-01-02"),
	})
}

func (e *Engine) startAwaitingLocations(sess *session.Session, in nlu.Intent) Reply {
	m := session.AwaitingLocations{Source: in.Source, Destination: in.Destination, Date: in.Date}
	sess.Mode = m
	if m.Source == "" && m.Destination != "" {
		return reply(msgAskSource, "")
	}
	if m.Source != "" && m.Destination == "" {
		return reply(msgAskDestination, "")
	}
	return reply("Sure! Where do you want to travel from, and to where?", "")
}

func (e *Engine) continueAwaitingLocations(ctx context.Context, sess *session.Session, m session.AwaitingLocations, text string) Reply {
	// A date spoken during clarification ("mumbai tomorrow") replaces the
	// default seeded when the flow started.
	d, dated := nlu.FindDate(text, e.now())
	if dated {
		m.Date = d
	}
	src, dst := nlu.ExtractCities(text)
	if src == "" && dst == "" && !dated {
		return reply(msgUnknownCity, "")
	}
	mergeRoute(&m, src, dst)
	if m.Source != "" && m.Destination != "" {
		return e.runSearch(ctx, sess, m.Source, m.Destination, m.Date)
	}
	sess.Mode = m
	if m.Source == "" {
		return reply(msgAskSource, "")
	}
	return reply(msgAskDestination, "")
}

// mergeRoute folds newly heard cities into the partial route, filling
// whichever slot is still open.
func mergeRoute(m *session.AwaitingLocations, src, dst string) {
	switch {
	case src != "" && dst != "":
		m.Source, m.Destination = src, dst
	case src != "":
		if m.Source == "" {
			m.Source = src
		} else if m.Destination == "" {
			m.Destination = src
		}
	case dst != "":
		if m.Destination == "" && m.Source != dst {
			m.Destination = dst
		} else if m.Source == "" && m.Destination != dst {
			m.Source = dst
		}
	}
}

func (e *Engine) handleFollowUp(sess *session.Session, text string) Reply {
	last := sess.Last
	if last == nil || len(last.Trains) == 0 {
		return reply(msgNoSearchYet, "")
	}
	if nlu.IsCheapestQuery(text) {
		idx, t := cheapestTrain(last.Trains)
		msg := fmt.Sprintf("The cheapest option from %s to %s is %s at Rs %d. Say 'book %d' to book it.",
			last.Source, last.Destination, t.TrainName, int(t.MinPrice()), idx+1)
		return reply(msg, "")
	}
	if nlu.IsFastestQuery(text) {
		idx, t := fastestTrain(last.Trains)
		msg := fmt.Sprintf("The fastest option from %s to %s is %s, about %s. Say 'book %d' to book it.",
			last.Source, last.Destination, t.TrainName, formatDuration(t.JourneyMinutes), idx+1)
		return reply(msg, "")
	}
	ci, cheapest := cheapestTrain(last.Trains)
	fi, fastest := fastestTrain(last.Trains)
	msg := fmt.Sprintf("%s is the cheapest at Rs %d, and %s is the fastest at about %s. Say 'book %d' or 'book %d'.",
		cheapest.TrainName, int(cheapest.MinPrice()), fastest.TrainName, formatDuration(fastest.JourneyMinutes), ci+1, fi+1)
	return reply(msg, "")
}

func cheapestTrain(trains []types.TrainOption) (int, types.TrainOption) {
	best := 0
	for i, t := range trains {
		if p := t.MinPrice(); p > 0 && (trains[best].MinPrice() == 0 || p < trains[best].MinPrice()) {
			best = i
		}
	}
	return best, trains[best]
}

func fastestTrain(trains []types.TrainOption) (int, types.TrainOption) {
	best := 0
	for i, t := range trains {
		if t.JourneyMinutes > 0 && (trains[best].JourneyMinutes == 0 || t.JourneyMinutes < trains[best].JourneyMinutes) {
			best = i
		}
	}
	return best, trains[best]
}

func formatDuration(minutes int) string {
	if minutes <= 0 {
		return "unknown duration"
	}
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d hours %d minutes", h, m)
}

// handleUnknown composes a fallback using whatever partial entities were
// recognized.
func (e *Engine) handleUnknown(sess *session.Session, text string) Reply {
	src, dst := nlu.ExtractCities(text)
	if city := firstNonEmpty(src, dst); city != "" {
		msg := fmt.Sprintf("I heard %s, but I need both cities. Try 'trains from Mumbai to %s'.", city, city)
		return reply(msg, "")
	}
	if digits := nlu.ExtractDigits(text); len(digits) > 0 && len(digits) < 10 {
		return reply("That number is too short for a PNR. A PNR has 10 digits.", "")
	}
	return reply(msgUnknown, "")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// spellDigits spaces out a digit string so TTS reads it digit by digit.
func spellDigits(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
