package dialogue

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railvoice-backend/internal/session"
	"railvoice-backend/internal/store"
	"railvoice-backend/internal/types"
)

var engineNow = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedDemo()
	e := New(mem)
	e.now = func() time.Time { return engineNow }
	return e, mem
}

func newTestSession() *session.Session {
	return &session.Session{ID: "t1", UserID: 1, Mode: session.Idle{}}
}

func turn(t *testing.T, e *Engine, sess *session.Session, text string) Reply {
	t.Helper()
	r := e.Handle(context.Background(), sess, text)
	require.NotEmpty(t, r.Speech, "speech must never be empty")
	return r
}

func TestEmptyUtterance(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()
	r := turn(t, e, sess, "   ")
	assert.Equal(t, msgHeardNothing, r.Text)
	assert.Empty(t, sess.History)
}

func TestGreetingAndHelp(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	r := turn(t, e, sess, "hello")
	assert.Contains(t, greetingReplies, r.Text)

	r = turn(t, e, sess, "help")
	assert.Equal(t, helpText, r.Text)
	assert.IsType(t, session.Idle{}, sess.Mode)
}

// Full happy path: search, ordinal selection, slot filling, confirmation,
// status check, cancellation, history.
func TestBookingHappyPath(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()
	ctx := context.Background()

	r := turn(t, e, sess, "trains from mumbai to delhi tomorrow")
	assert.Equal(t, ActionShowTrains, r.Action)
	require.NotNil(t, sess.Last)
	require.Len(t, sess.Last.Trains, 2)
	assert.Equal(t, "Mumbai Rajdhani", sess.Last.Trains[0].TrainName)

	r = turn(t, e, sess, "book 1")
	assert.Contains(t, r.Text, msgAskName)
	requireStage(t, sess, session.StageName)

	r = turn(t, e, sess, "my name is rahul sharma")
	assert.Contains(t, r.Text, msgAskAge)
	requireStage(t, sess, session.StageAge)

	r = turn(t, e, sess, "twenty five")
	assert.Equal(t, msgAskGender, r.Text)

	r = turn(t, e, sess, "male")
	assert.Equal(t, msgAskPhone, r.Text)

	r = turn(t, e, sess, "9876543210")
	assert.Equal(t, msgAskClass, r.Text)

	r = turn(t, e, sess, "ac 3")
	assert.Contains(t, r.Text, "Rahul Sharma")
	assert.Contains(t, r.Text, "AC 3")
	assert.Contains(t, r.Text, msgAskConfirm)
	requireStage(t, sess, session.StageConfirm)

	r = turn(t, e, sess, "yes")
	assert.Equal(t, ActionBookingComplete, r.Action)
	pnr, _ := r.Data["pnr"].(string)
	require.Len(t, pnr, 10)
	assert.IsType(t, session.Idle{}, sess.Mode)
	assert.Nil(t, sess.Last, "a committed booking clears the cached search")

	rec, err := mem.GetBookingByPNR(ctx, pnr)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "confirmed", rec.Status)
	assert.Equal(t, "Rahul Sharma", rec.PassengerName)
	assert.Equal(t, 25, rec.PassengerAge)
	assert.Equal(t, types.ClassAC3, rec.Class)
	assert.Equal(t, "2026-03-11", rec.TravelDate)

	r = turn(t, e, sess, "check pnr "+pnr)
	assert.Equal(t, ActionShowPNR, r.Action)
	assert.Contains(t, r.Text, "CONFIRMED")

	r = turn(t, e, sess, "cancel my ticket "+pnr)
	assert.Contains(t, r.Text, "cancelled")
	rec, err = mem.GetBookingByPNR(ctx, pnr)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", rec.Status)

	r = turn(t, e, sess, "show my bookings")
	assert.Equal(t, ActionShowBookings, r.Action)
	assert.Contains(t, r.Text, pnr)
}

// Invalid answers re-prompt without moving the stage; stages never regress.
func TestBookingStageValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "trains from mumbai to delhi")
	turn(t, e, sess, "book 2")
	requireStage(t, sess, session.StageName)

	turn(t, e, sess, "priya patel")
	requireStage(t, sess, session.StageAge)

	r := turn(t, e, sess, "banana")
	assert.Equal(t, msgInvalidAge, r.Text)
	requireStage(t, sess, session.StageAge)

	turn(t, e, sess, "30")
	requireStage(t, sess, session.StageGender)

	r = turn(t, e, sess, "dunno")
	assert.Equal(t, msgInvalidGender, r.Text)
	requireStage(t, sess, session.StageGender)

	turn(t, e, sess, "female")
	r = turn(t, e, sess, "12345")
	assert.Equal(t, msgInvalidPhone, r.Text)
	requireStage(t, sess, session.StagePhone)
}

// A class the chosen train does not offer is rejected with the available
// options, so the quoted fare always matches what the store charges.
func TestBookingRejectsUnavailableClass(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "trains from mumbai to delhi")
	turn(t, e, sess, "book 1") // Mumbai Rajdhani carries AC fares only
	turn(t, e, sess, "rahul sharma")
	turn(t, e, sess, "25")
	turn(t, e, sess, "male")
	turn(t, e, sess, "9876543210")
	requireStage(t, sess, session.StageClass)

	r := turn(t, e, sess, "sleeper")
	assert.Contains(t, r.Text, "does not have")
	assert.Contains(t, r.Text, "AC 2")
	requireStage(t, sess, session.StageClass)

	r = turn(t, e, sess, "ac 2")
	assert.Contains(t, r.Text, "2800.00")
	assert.Contains(t, r.Text, "2940.00")
	requireStage(t, sess, session.StageConfirm)

	r = turn(t, e, sess, "yes")
	assert.Equal(t, ActionBookingComplete, r.Action)
	pnr, _ := r.Data["pnr"].(string)
	rec, err := mem.GetBookingByPNR(context.Background(), pnr)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.InDelta(t, 2940.0, rec.TotalAmount, 0.001)
}

func TestBookingDeclinedAtConfirm(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()

	fillToConfirm(t, e, sess)
	r := turn(t, e, sess, "no")
	assert.Equal(t, msgBookingCancelled, r.Text)
	assert.IsType(t, session.Idle{}, sess.Mode)

	records, err := mem.GetUserBookings(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, records, "declining the confirmation must not persist anything")
}

func TestBookingAbortMidFlow(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "trains from mumbai to delhi")
	turn(t, e, sess, "book 1")
	r := turn(t, e, sess, "stop")
	assert.Equal(t, msgBookingCancelled, r.Text)
	assert.IsType(t, session.Idle{}, sess.Mode)
}

// Ticket cancellation interrupts any flow: the draft is discarded and PNR
// collection for cancellation starts.
func TestCancellationInterruptsBooking(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()
	ctx := context.Background()

	res, err := mem.CreateBooking(ctx, store.CreateBookingParams{
		UserID: 1, ScheduleID: 1, PassengerName: "Old Booking", PassengerAge: 40,
		PassengerGender: types.GenderMale, TravelClass: types.ClassAC2,
		TravelDate: "2026-03-20",
	})
	require.NoError(t, err)

	turn(t, e, sess, "trains from mumbai to delhi")
	turn(t, e, sess, "book 1")
	turn(t, e, sess, "rahul sharma")
	requireStage(t, sess, session.StageAge)

	r := turn(t, e, sess, "cancel my booking")
	assert.Equal(t, msgAskPNRCancel, r.Text)
	m, ok := sess.Mode.(session.CollectingPNR)
	require.True(t, ok)
	assert.Equal(t, session.PNRForCancel, m.Purpose)

	r = turn(t, e, sess, res.PNR)
	assert.Contains(t, r.Text, "cancelled")

	rec, err := mem.GetBookingByPNR(ctx, res.PNR)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", rec.Status)
}

// Digits accumulate turn over turn, including dictation homophones, until ten
// have been heard.
func TestPNRCollectionAcrossTurns(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()

	res, err := mem.CreateBooking(context.Background(), store.CreateBookingParams{
		UserID: 1, ScheduleID: 2, PassengerName: "Anil", PassengerAge: 50,
		PassengerGender: types.GenderMale, TravelClass: types.ClassSleeper,
		TravelDate: "2026-03-18",
	})
	require.NoError(t, err)

	r := turn(t, e, sess, "check my pnr status")
	assert.Equal(t, msgAskPNRStatus, r.Text)

	r = turn(t, e, sess, "hmm let me think")
	assert.Equal(t, msgNoDigits, r.Text)

	r = turn(t, e, sess, res.PNR[:4])
	assert.Contains(t, r.Text, "6 more digits")
	m, ok := sess.Mode.(session.CollectingPNR)
	require.True(t, ok)
	assert.Len(t, m.Digits, 4)

	r = turn(t, e, sess, res.PNR[4:])
	assert.Equal(t, ActionShowPNR, r.Action)
	assert.Contains(t, r.Text, res.PNR)
	assert.IsType(t, session.Idle{}, sess.Mode)
}

func TestPNRCollectionAbort(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "check my pnr status")
	turn(t, e, sess, "quit")
	assert.IsType(t, session.Idle{}, sess.Mode)
}

func TestIncompleteSearchSlotFilling(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	r := turn(t, e, sess, "i want to go to delhi")
	assert.Equal(t, msgAskSource, r.Text)
	m, ok := sess.Mode.(session.AwaitingLocations)
	require.True(t, ok)
	assert.Equal(t, "Delhi", m.Destination)

	r = turn(t, e, sess, "mumbai")
	assert.Equal(t, ActionShowTrains, r.Action)
	assert.IsType(t, session.Idle{}, sess.Mode)
	require.NotNil(t, sess.Last)
	assert.Equal(t, "Mumbai CST", sess.Last.Source)
	assert.Equal(t, "New Delhi", sess.Last.Destination)
}

// A date spoken during clarification replaces the default seeded when the
// flow started.
func TestClarificationTurnCarriesDate(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "i want to go to delhi")
	r := turn(t, e, sess, "mumbai tomorrow")
	assert.Equal(t, ActionShowTrains, r.Action)
	require.NotNil(t, sess.Last)
	assert.Equal(t, time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), sess.Last.Date)

	// A date-only answer is kept while the city is still being asked for.
	sess = newTestSession()
	turn(t, e, sess, "i want to go to delhi")
	r = turn(t, e, sess, "on friday")
	assert.Equal(t, msgAskSource, r.Text)
	turn(t, e, sess, "mumbai")
	require.NotNil(t, sess.Last)
	assert.Equal(t, time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC), sess.Last.Date)
}

func TestIncompleteSearchUnknownCityReprompts(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "find trains")
	r := turn(t, e, sess, "timbuktu")
	assert.Equal(t, msgUnknownCity, r.Text)
	assert.IsType(t, session.AwaitingLocations{}, sess.Mode)
}

func TestSearchAbort(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "i want to go to delhi")
	r := turn(t, e, sess, "forget it")
	assert.Equal(t, msgSearchCancelled, r.Text)
	assert.IsType(t, session.Idle{}, sess.Mode)
}

func TestNoTrainsOnRoute(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	r := turn(t, e, sess, "trains from pune to kolkata")
	assert.Equal(t, msgNoTrains, r.Text)
	assert.Nil(t, sess.Last, "an empty result must not replace the cache")
}

// The cached search is replaced wholesale by a new one.
func TestNewSearchReplacesCache(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "trains from mumbai to delhi")
	require.NotNil(t, sess.Last)
	first := sess.Last

	turn(t, e, sess, "trains from mumbai to chennai")
	require.NotNil(t, sess.Last)
	assert.NotSame(t, first, sess.Last)
	assert.Equal(t, "Chennai Central", sess.Last.Destination)
	require.Len(t, sess.Last.Trains, 1)
	assert.Equal(t, "Chennai Express", sess.Last.Trains[0].TrainName)
}

func TestFollowUps(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	// Without a cached search there is nothing to compare against.
	r := turn(t, e, sess, "which is the cheapest")
	assert.Equal(t, msgUnknown, r.Text)

	turn(t, e, sess, "trains from mumbai to delhi")

	// Punjab Mail has the cheaper sleeper fare and the shorter journey.
	r = turn(t, e, sess, "which is the cheapest")
	assert.Contains(t, r.Text, "Punjab Mail")
	assert.Contains(t, r.Text, "600")

	r = turn(t, e, sess, "which one is fastest")
	assert.Contains(t, r.Text, "Punjab Mail")

	r = turn(t, e, sess, "which is best")
	assert.Contains(t, r.Text, "cheapest")
	assert.Contains(t, r.Text, "fastest")
}

func TestSelectionOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	turn(t, e, sess, "trains from mumbai to delhi")
	r := turn(t, e, sess, "book 5")
	assert.Equal(t, msgInvalidSelection, r.Text)
	assert.IsType(t, session.Idle{}, sess.Mode)
}

func TestBareTenDigitsChecksStatus(t *testing.T) {
	e, mem := newTestEngine(t)
	sess := newTestSession()

	res, err := mem.CreateBooking(context.Background(), store.CreateBookingParams{
		UserID: 1, ScheduleID: 1, PassengerName: "Meena", PassengerAge: 33,
		PassengerGender: types.GenderFemale, TravelClass: types.ClassAC1,
		TravelDate: "2026-03-25",
	})
	require.NoError(t, err)

	r := turn(t, e, sess, res.PNR)
	assert.Equal(t, ActionShowPNR, r.Action)
	assert.Contains(t, r.Text, "Meena")
}

func TestUnknownFallbacks(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := newTestSession()

	r := turn(t, e, sess, "tell me a joke")
	assert.Equal(t, msgUnknown, r.Text)

	r = turn(t, e, sess, "12345 maybe")
	assert.Contains(t, r.Text, "10 digits")
}

func TestFlattenSpeech(t *testing.T) {
	r := reply("Found 2 trains:\n\n1. Rajdhani (Rs 1900)", "")
	assert.NotContains(t, r.Speech, "\n")
	assert.NotContains(t, r.Speech, "(")
	assert.False(t, strings.Contains(r.Speech, "  "))

	r = reply("***", "")
	assert.Equal(t, "Okay.", r.Speech)
}

func requireStage(t *testing.T, sess *session.Session, want session.BookingStage) {
	t.Helper()
	m, ok := sess.Mode.(session.BookingInProgress)
	require.True(t, ok, "expected a booking in progress, got %T", sess.Mode)
	require.Equal(t, want, m.Stage)
}

func fillToConfirm(t *testing.T, e *Engine, sess *session.Session) {
	t.Helper()
	turn(t, e, sess, "trains from mumbai to delhi")
	turn(t, e, sess, "book 1")
	turn(t, e, sess, "rahul sharma")
	turn(t, e, sess, "25")
	turn(t, e, sess, "male")
	turn(t, e, sess, "9876543210")
	turn(t, e, sess, "ac 2")
	requireStage(t, sess, session.StageConfirm)
}
