package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"railvoice-backend/internal/nlu"
	"railvoice-backend/internal/session"
	"railvoice-backend/internal/store"
	"railvoice-backend/internal/types"
)

// startBooking seeds a draft from the cached search and asks for the first
// passenger detail. idx is zero-based into the last result list.
func (e *Engine) startBooking(sess *session.Session, idx int) Reply {
	last := sess.Last
	if last == nil || len(last.Trains) == 0 {
		return reply(msgNoSearchYet, "")
	}
	if idx < 0 || idx >= len(last.Trains) {
		return reply(msgInvalidSelection, "")
	}
	train := last.Trains[idx]
	date := last.Date
	if date.IsZero() {
		date = e.now().AddDate(0, 0, 1)
	}
	sess.Mode = session.BookingInProgress{
		Stage: session.StageName,
		Draft: &session.BookingDraft{
			Train:       train,
			Source:      last.Source,
			Destination: last.Destination,
			Date:        date,
		},
	}
	text := fmt.Sprintf("Booking %s (%s) from %s to %s on %s.\n\n%s",
		train.TrainName, train.TrainNumber, last.Source, last.Destination,
		date.Format("Mon, 02 Jan"), msgAskName)
	speech := fmt.Sprintf("Booking %s from %s to %s. %s",
		train.TrainName, last.Source, last.Destination, msgAskName)
	return reply(text, speech)
}

// continueBooking consumes one utterance for the current stage. Stages only
// ever advance; an unparseable answer re-prompts without moving.
func (e *Engine) continueBooking(ctx context.Context, sess *session.Session, m session.BookingInProgress, text string) Reply {
	d := m.Draft
	switch m.Stage {
	case session.StageName:
		name, ok := nlu.ExtractName(text)
		if !ok {
			return reply(msgInvalidName, "")
		}
		d.Name = name
		return e.advanceBooking(sess, m, session.StageAge,
			fmt.Sprintf("Thanks, %s. %s", name, msgAskAge))

	case session.StageAge:
		age, ok := nlu.ExtractAge(text)
		if !ok {
			return reply(msgInvalidAge, "")
		}
		d.Age = age
		return e.advanceBooking(sess, m, session.StageGender, msgAskGender)

	case session.StageGender:
		g, ok := nlu.ExtractGender(text)
		if !ok {
			return reply(msgInvalidGender, "")
		}
		d.Gender = g
		return e.advanceBooking(sess, m, session.StagePhone, msgAskPhone)

	case session.StagePhone:
		phone, ok := nlu.ExtractPhone(text)
		if !ok {
			return reply(msgInvalidPhone, "")
		}
		d.Phone = phone
		return e.advanceBooking(sess, m, session.StageClass, msgAskClass)

	case session.StageClass:
		class, ok := nlu.ExtractClass(text)
		if !ok {
			return reply(msgInvalidClass, "")
		}
		if d.Train.Prices[class] <= 0 {
			msg := fmt.Sprintf("%s does not have %s. Available classes: %s.",
				d.Train.TrainName, class.Display(), offeredClasses(d.Train))
			return reply(msg, "")
		}
		d.Class = class
		m.Stage = session.StageConfirm
		sess.Mode = m
		return e.confirmationPrompt(d)

	case session.StageConfirm:
		if nlu.IsAffirmative(text) {
			return e.commitBooking(ctx, sess, d)
		}
		if nlu.IsNegative(text) {
			sess.Reset()
			return reply(msgBookingCancelled, "")
		}
		return reply(msgAskConfirm, "")
	}
	sess.Reset()
	return reply(msgError, "")
}

func (e *Engine) advanceBooking(sess *session.Session, m session.BookingInProgress, next session.BookingStage, prompt string) Reply {
	m.Stage = next
	sess.Mode = m
	return reply(prompt, "")
}

func (e *Engine) confirmationPrompt(d *session.BookingDraft) Reply {
	// The class is validated against the train's fares before this stage, so
	// the quoted price is exactly what the store will charge.
	price := d.Train.Prices[d.Class]
	gst := price * 0.05
	text := fmt.Sprintf(`Please confirm your booking:

Train: %s (%s)
Route: %s to %s
Date: %s
Passenger: %s, %d, %s
Phone: %s
Class: %s
Fare: Rs %.2f + Rs %.2f GST = Rs %.2f

%s`,
		d.Train.TrainName, d.Train.TrainNumber,
		d.Source, d.Destination,
		d.Date.Format("Mon, 02 Jan 2006"),
		d.Name, d.Age, d.Gender,
		d.Phone,
		d.Class.Display(),
		price, gst, price+gst,
		msgAskConfirm)
	speech := fmt.Sprintf("Booking %s for %s, %s class, total %d rupees. %s",
		d.Train.TrainName, d.Name, d.Class.Display(), int(price+gst), msgAskConfirm)
	return reply(text, speech)
}

var classDisplayOrder = []types.TravelClass{
	types.ClassAC1,
	types.ClassAC2,
	types.ClassAC3,
	types.ClassSleeper,
	types.ClassChairCar,
	types.ClassSecondSitting,
}

func offeredClasses(t types.TrainOption) string {
	var names []string
	for _, c := range classDisplayOrder {
		if t.Prices[c] > 0 {
			names = append(names, c.Display())
		}
	}
	return strings.Join(names, ", ")
}

// commitBooking is the single persistence call of the whole flow. The cached
// search is cleared on success so a stale ordinal can't book again.
func (e *Engine) commitBooking(ctx context.Context, sess *session.Session, d *session.BookingDraft) Reply {
	res, err := e.bookings.CreateBooking(ctx, store.CreateBookingParams{
		UserID:          sess.UserID,
		ScheduleID:      d.Train.ScheduleID,
		PassengerName:   d.Name,
		PassengerAge:    d.Age,
		PassengerGender: d.Gender,
		PassengerPhone:  d.Phone,
		TravelClass:     d.Class,
		TravelDate:      d.Date.Format("2006-01-02"),
	})
	if err != nil {
		log.Printf("[dialogue] create booking failed: %v", err)
		sess.Reset()
		return reply(msgBookingFailed, "")
	}
	sess.Reset()
	sess.Last = nil

	text := fmt.Sprintf(`Booking confirmed!

PNR: %s
Seat: %s
Train: %s (%s)
%s to %s on %s
Total paid: Rs %.2f

Save your PNR for status checks and cancellation.`,
		res.PNR, res.SeatNumber,
		d.Train.TrainName, d.Train.TrainNumber,
		d.Source, d.Destination, d.Date.Format("Mon, 02 Jan 2006"),
		res.TotalAmount)
	speech := fmt.Sprintf("Your booking is confirmed. Your P N R number is %s. Seat %s on %s. Happy journey!",
		spellDigits(res.PNR), res.SeatNumber, d.Train.TrainName)
	return reply(text, speech).withAction(ActionBookingComplete, map[string]any{
		"pnr":          res.PNR,
		"seat_number":  res.SeatNumber,
		"total_amount": res.TotalAmount,
		"train_name":   d.Train.TrainName,
	})
}
