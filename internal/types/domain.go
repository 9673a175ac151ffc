package types

import "time"

// Gender of a passenger as stored on a booking.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// TravelClass identifies one of the fixed railway coach classes.
type TravelClass string

const (
	ClassAC1           TravelClass = "ac_1"
	ClassAC2           TravelClass = "ac_2"
	ClassAC3           TravelClass = "ac_3"
	ClassSleeper       TravelClass = "sleeper"
	ClassChairCar      TravelClass = "chair_car"
	ClassSecondSitting TravelClass = "second_sitting"
)

// Display returns the spoken form of a class, e.g. "AC 2" or "SLEEPER".
func (c TravelClass) Display() string {
	switch c {
	case ClassAC1:
		return "First Class AC"
	case ClassAC2:
		return "AC 2"
	case ClassAC3:
		return "AC 3"
	case ClassSleeper:
		return "Sleeper"
	case ClassChairCar:
		return "Chair Car"
	case ClassSecondSitting:
		return "Second Sitting"
	}
	return string(c)
}

type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// TrainOption is one search result: a schedule joined with its train and route.
type TrainOption struct {
	ScheduleID     int                     `json:"schedule_id"`
	TrainNumber    string                  `json:"train_number"`
	TrainName      string                  `json:"train_name"`
	TrainType      string                  `json:"train_type"`
	DepartureTime  string                  `json:"departure_time"`
	ArrivalTime    string                  `json:"arrival_time"`
	JourneyMinutes int                     `json:"journey_minutes"`
	SourceName     string                  `json:"source_name"`
	DestName       string                  `json:"dest_name"`
	Prices         map[TravelClass]float64 `json:"prices"`
}

// MinPrice returns the cheapest positive fare across classes.
func (t TrainOption) MinPrice() float64 {
	min := 0.0
	for _, p := range t.Prices {
		if p > 0 && (min == 0 || p < min) {
			min = p
		}
	}
	return min
}

// BookingResult is what the store returns after a successful commit.
type BookingResult struct {
	BookingID   int     `json:"booking_id"`
	PNR         string  `json:"pnr"`
	SeatNumber  string  `json:"seat_number"`
	TicketPrice float64 `json:"ticket_price"`
	GSTAmount   float64 `json:"gst_amount"`
	TotalAmount float64 `json:"total_amount"`
}

// BookingRecord is a stored booking joined with train and route details.
type BookingRecord struct {
	ID              int         `json:"id"`
	PNR             string      `json:"pnr_number"`
	UserID          int         `json:"user_id"`
	ScheduleID      int         `json:"schedule_id"`
	TravelDate      string      `json:"travel_date"`
	Class           TravelClass `json:"train_class"`
	PassengerName   string      `json:"passenger_name"`
	PassengerAge    int         `json:"passenger_age"`
	PassengerGender Gender      `json:"passenger_gender"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"booking_status"`
	TrainNumber     string      `json:"train_number"`
	TrainName       string      `json:"train_name"`
	SourceStation   string      `json:"source_station"`
	DestStation     string      `json:"dest_station"`
	CreatedAt       time.Time   `json:"created_at"`
}
