package store

import (
	"context"
	"strings"
	"time"

	"railvoice-backend/internal/types"
)

// Store is the booking-catalog contract the dialogue engine consumes. The
// engine treats it as a black box; both the Postgres and in-memory
// implementations satisfy it.
type Store interface {
	SearchTrains(ctx context.Context, source, destination string) ([]types.TrainOption, error)
	FindStations(ctx context.Context, term string) ([]types.Station, error)
	CreateBooking(ctx context.Context, p CreateBookingParams) (*types.BookingResult, error)
	GetBookingByPNR(ctx context.Context, pnr string) (*types.BookingRecord, error)
	CancelBookingByPNR(ctx context.Context, pnr string) (bool, error)
	GetUserBookings(ctx context.Context, userID, limit int) ([]types.BookingRecord, error)
}

// CreateBookingParams is the single commit payload of the booking flow.
type CreateBookingParams struct {
	UserID          int
	ScheduleID      int
	PassengerName   string
	PassengerAge    int
	PassengerGender types.Gender
	PassengerPhone  string
	TravelClass     types.TravelClass
	TravelDate      string // YYYY-MM-DD
}

const gstRate = 0.05

// journeyMinutes derives trip length from HH:MM departure and arrival,
// treating an earlier arrival as next-day.
func journeyMinutes(departure, arrival string) int {
	dep, err1 := time.Parse("15:04", strings.TrimSpace(departure))
	arr, err2 := time.Parse("15:04", strings.TrimSpace(arrival))
	if err1 != nil || err2 != nil {
		return 0
	}
	d := arr.Sub(dep)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d.Minutes())
}

func classPrice(prices map[types.TravelClass]float64, class types.TravelClass) float64 {
	if prices == nil {
		return 0
	}
	return prices[class]
}
