package dialogue

// Static reply strings, kept together so the assistant's voice stays
// consistent across handlers.

var greetingReplies = []string{
	"Hello! I'm your train booking assistant. Say 'search trains from Mumbai to Delhi' to find trains.",
	"Hi there! Ready to book your train? Tell me your source and destination.",
	"Welcome! I can help you search trains, book tickets, check PNR status or cancel a booking.",
}

const helpText = `I can help you with:

- Search trains: "trains from Mumbai to Delhi"
- Book a ticket: after a search, say "book 1" or "book the first one"
- Check PNR: "check PNR 1234567890"
- Cancel a booking: "cancel my ticket 1234567890"
- My bookings: "show my bookings"

Just speak naturally!`

const helpSpeech = "I can search trains, book tickets, check PNR status, cancel bookings and show your booking history. For example, say trains from Mumbai to Delhi."

const (
	msgHeardNothing = "I did not hear anything. Please speak again."

	msgAskSource       = "Where do you want to travel FROM? Say the city name."
	msgAskDestination  = "Where do you want to travel TO? Say the destination city."
	msgUnknownCity     = "I couldn't find that city. Try: Mumbai, Delhi, Bangalore, Chennai, Kolkata, Pune."
	msgNoTrains        = "No trains found for this route. Try a different route."
	msgSearchCancelled = "Okay, search cancelled. Tell me a new route whenever you're ready."

	msgNoSearchYet      = "Please search for trains first. Say 'trains from Mumbai to Delhi'."
	msgInvalidSelection = "Please say which train to book: 'book 1', 'book 2', and so on."

	msgAskName    = "What is your full name?"
	msgAskAge     = "What is your age?"
	msgAskGender  = "What is your gender? Say male, female, or other."
	msgAskPhone   = "What is your 10-digit phone number?"
	msgAskClass   = "Which class? Say: Sleeper, AC 3, AC 2, First Class, or Chair Car."
	msgAskConfirm = "Say YES to book or NO to cancel."

	msgInvalidName   = "Please say your full name clearly."
	msgInvalidAge    = "Please say a valid age between 1 and 120."
	msgInvalidGender = "Please say: male, female, or other."
	msgInvalidPhone  = "Please say your 10-digit phone number."
	msgInvalidClass  = "Please say: Sleeper, AC 3, AC 2, First Class, or Chair Car."

	msgBookingFailed    = "Booking failed. Please try again or use the website."
	msgBookingCancelled = "Booking cancelled. Want to search for another train?"

	msgAskPNRStatus = "Please say your 10-digit PNR number and I'll check the status."
	msgAskPNRCancel = "Which booking should I cancel? Please say the 10-digit PNR number."
	msgNoDigits     = "I didn't catch any digits. Please say the PNR number clearly, digit by digit."

	msgCancelNotFound = "I couldn't find a booking with that PNR. Please check the number."
	msgCancelDone     = "Done! Your booking has been cancelled."

	msgHistoryEmpty = "You have no bookings yet. Say 'trains from Mumbai to Delhi' to search."

	msgUnknown = "I didn't understand that. Say 'help' for available commands."
	msgError   = "Something went wrong. Please try again."
)
