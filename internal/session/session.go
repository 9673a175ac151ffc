package session

import (
	"time"

	"railvoice-backend/internal/types"
)

// Mode is the active multi-turn flow of a session. It is a sealed variant:
// the payload a flow needs only exists while that flow is active.
type Mode interface{ mode() }

type Idle struct{}

// AwaitingLocations holds the partial route gathered so far.
type AwaitingLocations struct {
	Source      string
	Destination string
	Date        time.Time
}

// PNRPurpose says what happens once ten digits have been collected.
type PNRPurpose string

const (
	PNRForStatus PNRPurpose = "status"
	PNRForCancel PNRPurpose = "cancel"
)

// CollectingPNR accumulates dictated digits turn over turn.
type CollectingPNR struct {
	Purpose PNRPurpose
	Digits  []string
}

// BookingStage is the current slot-filling step, in fixed order.
type BookingStage int

const (
	StageName BookingStage = iota
	StageAge
	StageGender
	StagePhone
	StageClass
	StageConfirm
)

func (s BookingStage) String() string {
	switch s {
	case StageName:
		return "collect_name"
	case StageAge:
		return "collect_age"
	case StageGender:
		return "collect_gender"
	case StagePhone:
		return "collect_phone"
	case StageClass:
		return "collect_class"
	case StageConfirm:
		return "confirm_booking"
	}
	return "unknown"
}

// BookingInProgress carries the draft being filled.
type BookingInProgress struct {
	Stage BookingStage
	Draft *BookingDraft
}

func (Idle) mode()              {}
func (AwaitingLocations) mode() {}
func (CollectingPNR) mode()     {}
func (BookingInProgress) mode() {}

// BookingDraft lives only inside BookingInProgress and is never persisted
// until the final commit call.
type BookingDraft struct {
	Train       types.TrainOption
	Source      string
	Destination string
	Date        time.Time
	Name        string
	Age         int
	Gender      types.Gender
	Phone       string
	Class       types.TravelClass
}

// LastSearch caches the most recent successful search for ordinal references
// and comparative follow-ups. It is replaced wholesale, never merged.
type LastSearch struct {
	Source      string
	Destination string
	Date        time.Time
	Trains      []types.TrainOption
}

// Utterance is one past input, kept for diagnostics only.
type Utterance struct {
	Text string
	At   time.Time
}

// Session is the per-conversation mutable state. Callers hold the per-key
// lock from Store.Acquire while touching it.
type Session struct {
	ID      string
	UserID  int
	Mode    Mode
	Last    *LastSearch
	History []Utterance
}

// Reset returns the session to idle, discarding any flow payload.
func (s *Session) Reset() {
	s.Mode = Idle{}
}

// Record appends to the diagnostic utterance log.
func (s *Session) Record(text string, at time.Time) {
	s.History = append(s.History, Utterance{Text: text, At: at})
}
