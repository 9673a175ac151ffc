package store

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"railvoice-backend/internal/types"
)

// Memory is an in-process Store used by tests and as the fallback when no
// DB_URL is configured.
type Memory struct {
	mu       sync.RWMutex
	stations []types.Station
	options  []types.TrainOption
	// cityByName maps a station name to its city for route matching.
	cityByName map[string]string
	bookings   map[string]*types.BookingRecord
	nextID     int
	rnd        *rand.Rand
}

func NewMemory() *Memory {
	return &Memory{
		cityByName: make(map[string]string),
		bookings:   make(map[string]*types.BookingRecord),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddStation registers a station in the catalog.
func (m *Memory) AddStation(st types.Station) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = append(m.stations, st)
	m.cityByName[strings.ToLower(st.Name)] = strings.ToLower(st.City)
}

// AddTrain registers a schedule in the catalog.
func (m *Memory) AddTrain(opt types.TrainOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if opt.JourneyMinutes == 0 {
		opt.JourneyMinutes = journeyMinutes(opt.DepartureTime, opt.ArrivalTime)
	}
	m.options = append(m.options, opt)
}

func (m *Memory) SearchTrains(ctx context.Context, source, destination string) ([]types.TrainOption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := strings.ToLower(source)
	dst := strings.ToLower(destination)
	var out []types.TrainOption
	for _, opt := range m.options {
		if stationMatches(opt.SourceName, m.cityByName, src) && stationMatches(opt.DestName, m.cityByName, dst) {
			out = append(out, opt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartureTime < out[j].DepartureTime })
	return out, nil
}

func stationMatches(stationName string, cityByName map[string]string, term string) bool {
	name := strings.ToLower(stationName)
	if strings.Contains(name, term) {
		return true
	}
	return strings.Contains(cityByName[name], term)
}

func (m *Memory) FindStations(ctx context.Context, term string) ([]types.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := strings.ToLower(term)
	var out []types.Station
	for _, st := range m.stations {
		if t == "" ||
			strings.Contains(strings.ToLower(st.Name), t) ||
			strings.Contains(strings.ToLower(st.Code), t) ||
			strings.Contains(strings.ToLower(st.City), t) {
			out = append(out, st)
		}
		if len(out) == 10 {
			break
		}
	}
	return out, nil
}

func (m *Memory) CreateBooking(ctx context.Context, p CreateBookingParams) (*types.BookingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sched *types.TrainOption
	for i := range m.options {
		if m.options[i].ScheduleID == p.ScheduleID {
			sched = &m.options[i]
			break
		}
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule %d not found", p.ScheduleID)
	}

	price := classPrice(sched.Prices, p.TravelClass)
	gst := price * gstRate
	total := price + gst

	pnr := m.randomPNR()
	m.nextID++
	rec := &types.BookingRecord{
		ID:              m.nextID,
		PNR:             pnr,
		UserID:          p.UserID,
		ScheduleID:      p.ScheduleID,
		TravelDate:      p.TravelDate,
		Class:           p.TravelClass,
		PassengerName:   p.PassengerName,
		PassengerAge:    p.PassengerAge,
		PassengerGender: p.PassengerGender,
		TotalAmount:     total,
		Status:          "confirmed",
		TrainNumber:     sched.TrainNumber,
		TrainName:       sched.TrainName,
		SourceStation:   sched.SourceName,
		DestStation:     sched.DestName,
		CreatedAt:       time.Now(),
	}
	m.bookings[pnr] = rec

	seat := fmt.Sprintf("%s-%d", strings.ToUpper(string(p.TravelClass)), m.rnd.Intn(72)+1)
	return &types.BookingResult{
		BookingID:   rec.ID,
		PNR:         pnr,
		SeatNumber:  seat,
		TicketPrice: price,
		GSTAmount:   gst,
		TotalAmount: total,
	}, nil
}

func (m *Memory) randomPNR() string {
	for {
		var b strings.Builder
		for i := 0; i < 10; i++ {
			fmt.Fprintf(&b, "%d", m.rnd.Intn(10))
		}
		if _, taken := m.bookings[b.String()]; !taken {
			return b.String()
		}
	}
}

func (m *Memory) GetBookingByPNR(ctx context.Context, pnr string) (*types.BookingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.bookings[pnr]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) CancelBookingByPNR(ctx context.Context, pnr string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.bookings[pnr]
	if !ok {
		return false, nil
	}
	rec.Status = "cancelled"
	return true, nil
}

func (m *Memory) GetUserBookings(ctx context.Context, userID, limit int) ([]types.BookingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.BookingRecord
	for _, rec := range m.bookings {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SeedDemo loads the sample catalog used for local development without a
// database.
func (m *Memory) SeedDemo() {
	stations := []types.Station{
		{Code: "CSMT", Name: "Mumbai CST", City: "Mumbai"},
		{Code: "NDLS", Name: "New Delhi", City: "Delhi"},
		{Code: "SBC", Name: "Bangalore City", City: "Bangalore"},
		{Code: "MAS", Name: "Chennai Central", City: "Chennai"},
		{Code: "HWH", Name: "Howrah Junction", City: "Kolkata"},
		{Code: "PUNE", Name: "Pune Junction", City: "Pune"},
	}
	for _, st := range stations {
		m.AddStation(st)
	}
	trains := []types.TrainOption{
		{
			ScheduleID: 1, TrainNumber: "12951", TrainName: "Mumbai Rajdhani", TrainType: "Rajdhani",
			DepartureTime: "16:35", ArrivalTime: "08:35",
			SourceName: "Mumbai CST", DestName: "New Delhi",
			Prices: map[types.TravelClass]float64{
				types.ClassAC1: 4500, types.ClassAC2: 2800, types.ClassAC3: 1900,
			},
		},
		{
			ScheduleID: 2, TrainNumber: "12137", TrainName: "Punjab Mail", TrainType: "Express",
			DepartureTime: "19:35", ArrivalTime: "05:10",
			SourceName: "Mumbai CST", DestName: "New Delhi",
			Prices: map[types.TravelClass]float64{
				types.ClassAC2: 2100, types.ClassAC3: 1500, types.ClassSleeper: 600,
			},
		},
		{
			ScheduleID: 3, TrainNumber: "12627", TrainName: "Karnataka Express", TrainType: "Express",
			DepartureTime: "06:30", ArrivalTime: "21:15",
			SourceName: "Bangalore City", DestName: "New Delhi",
			Prices: map[types.TravelClass]float64{
				types.ClassAC2: 2500, types.ClassAC3: 1750, types.ClassSleeper: 680,
			},
		},
		{
			ScheduleID: 4, TrainNumber: "12163", TrainName: "Chennai Express", TrainType: "Superfast",
			DepartureTime: "11:40", ArrivalTime: "03:50",
			SourceName: "Mumbai CST", DestName: "Chennai Central",
			Prices: map[types.TravelClass]float64{
				types.ClassAC2: 2300, types.ClassAC3: 1600, types.ClassSleeper: 620,
				types.ClassChairCar: 900,
			},
		},
	}
	for _, t := range trains {
		m.AddTrain(t)
	}
}
