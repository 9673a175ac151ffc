package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"railvoice-backend/internal/db"
	"railvoice-backend/internal/types"
)

// Postgres implements Store on top of the railway schema in
// migrations/001_initial_schema.sql.
type Postgres struct {
	db  *db.DB
	rnd *rand.Rand
}

func NewPostgres(database *db.DB) *Postgres {
	return &Postgres{db: database, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

const searchTrainsQuery = `
	SELECT
		s.id, t.train_number, t.train_name, t.train_type,
		s.departure_time, s.arrival_time,
		s.price_ac_1, s.price_ac_2, s.price_ac_3,
		s.price_sleeper, s.price_chair_car, s.price_second_sitting,
		src.station_name, dst.station_name
	FROM schedules s
	JOIN trains t ON s.train_id = t.id
	JOIN routes r ON s.route_id = r.id
	JOIN stations src ON r.source_station_id = src.id
	JOIN stations dst ON r.destination_station_id = dst.id
	WHERE (src.station_code ILIKE $1 OR src.station_name ILIKE $1 OR src.city ILIKE $1)
	AND (dst.station_code ILIKE $2 OR dst.station_name ILIKE $2 OR dst.city ILIKE $2)
	ORDER BY s.departure_time
`

func (p *Postgres) SearchTrains(ctx context.Context, source, destination string) ([]types.TrainOption, error) {
	rows, err := p.db.QueryContext(ctx, searchTrainsQuery, pattern(source), pattern(destination))
	if err != nil {
		return nil, fmt.Errorf("failed to search trains: %w", err)
	}
	defer rows.Close()

	var out []types.TrainOption
	for rows.Next() {
		var opt types.TrainOption
		var ac1, ac2, ac3, sl, cc, ss sql.NullFloat64
		if err := rows.Scan(
			&opt.ScheduleID, &opt.TrainNumber, &opt.TrainName, &opt.TrainType,
			&opt.DepartureTime, &opt.ArrivalTime,
			&ac1, &ac2, &ac3, &sl, &cc, &ss,
			&opt.SourceName, &opt.DestName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan train row: %w", err)
		}
		opt.Prices = pricesFromColumns(ac1, ac2, ac3, sl, cc, ss)
		opt.JourneyMinutes = journeyMinutes(opt.DepartureTime, opt.ArrivalTime)
		out = append(out, opt)
	}
	return out, rows.Err()
}

func pricesFromColumns(ac1, ac2, ac3, sl, cc, ss sql.NullFloat64) map[types.TravelClass]float64 {
	prices := make(map[types.TravelClass]float64)
	set := func(c types.TravelClass, v sql.NullFloat64) {
		if v.Valid && v.Float64 > 0 {
			prices[c] = v.Float64
		}
	}
	set(types.ClassAC1, ac1)
	set(types.ClassAC2, ac2)
	set(types.ClassAC3, ac3)
	set(types.ClassSleeper, sl)
	set(types.ClassChairCar, cc)
	set(types.ClassSecondSitting, ss)
	return prices
}

func pattern(term string) string {
	return "%" + strings.TrimSpace(term) + "%"
}

func (p *Postgres) FindStations(ctx context.Context, term string) ([]types.Station, error) {
	query := `
		SELECT station_code, station_name, city FROM stations
		WHERE station_code ILIKE $1 OR station_name ILIKE $1 OR city ILIKE $1
		ORDER BY station_name
		LIMIT 10
	`
	rows, err := p.db.QueryContext(ctx, query, pattern(term))
	if err != nil {
		return nil, fmt.Errorf("failed to find stations: %w", err)
	}
	defer rows.Close()

	var out []types.Station
	for rows.Next() {
		var st types.Station
		if err := rows.Scan(&st.Code, &st.Name, &st.City); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateBooking(ctx context.Context, params CreateBookingParams) (*types.BookingResult, error) {
	priceColumn, ok := map[types.TravelClass]string{
		types.ClassAC1:           "price_ac_1",
		types.ClassAC2:           "price_ac_2",
		types.ClassAC3:           "price_ac_3",
		types.ClassSleeper:       "price_sleeper",
		types.ClassChairCar:      "price_chair_car",
		types.ClassSecondSitting: "price_second_sitting",
	}[params.TravelClass]
	if !ok {
		return nil, fmt.Errorf("unknown travel class %q", params.TravelClass)
	}

	var price sql.NullFloat64
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", priceColumn)
	if err := p.db.QueryRowContext(ctx, query, params.ScheduleID).Scan(&price); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("schedule %d not found", params.ScheduleID)
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", params.ScheduleID, err)
	}

	ticketPrice := price.Float64
	gst := ticketPrice * gstRate
	total := ticketPrice + gst
	pnr := p.randomPNR()
	seat := fmt.Sprintf("%s-%d", strings.ToUpper(string(params.TravelClass)), p.rnd.Intn(72)+1)

	insert := `
		INSERT INTO bookings (
			pnr_number, user_id, schedule_id, travel_date, train_class,
			passenger_name, passenger_age, passenger_gender, passenger_phone,
			total_amount, booking_status, payment_status, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'confirmed', 'completed', NOW())
		RETURNING id
	`
	var bookingID int
	err := p.db.QueryRowContext(ctx, insert,
		pnr, params.UserID, params.ScheduleID, params.TravelDate, string(params.TravelClass),
		params.PassengerName, params.PassengerAge, string(params.PassengerGender), params.PassengerPhone,
		total,
	).Scan(&bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return &types.BookingResult{
		BookingID:   bookingID,
		PNR:         pnr,
		SeatNumber:  seat,
		TicketPrice: ticketPrice,
		GSTAmount:   gst,
		TotalAmount: total,
	}, nil
}

func (p *Postgres) randomPNR() string {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "%d", p.rnd.Intn(10))
	}
	return b.String()
}

const bookingByPNRQuery = `
	SELECT
		b.id, b.pnr_number, b.user_id, b.schedule_id, b.travel_date, b.train_class,
		b.passenger_name, b.passenger_age, b.passenger_gender,
		b.total_amount, b.booking_status, b.created_at,
		t.train_number, t.train_name,
		src.station_name, dst.station_name
	FROM bookings b
	JOIN schedules s ON b.schedule_id = s.id
	JOIN trains t ON s.train_id = t.id
	JOIN routes r ON s.route_id = r.id
	JOIN stations src ON r.source_station_id = src.id
	JOIN stations dst ON r.destination_station_id = dst.id
`

func (p *Postgres) GetBookingByPNR(ctx context.Context, pnr string) (*types.BookingRecord, error) {
	row := p.db.QueryRowContext(ctx, bookingByPNRQuery+" WHERE b.pnr_number = $1", pnr)
	rec, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by pnr: %w", err)
	}
	return rec, nil
}

func scanBooking(scan func(dest ...any) error) (*types.BookingRecord, error) {
	var rec types.BookingRecord
	var class, gender string
	err := scan(
		&rec.ID, &rec.PNR, &rec.UserID, &rec.ScheduleID, &rec.TravelDate, &class,
		&rec.PassengerName, &rec.PassengerAge, &gender,
		&rec.TotalAmount, &rec.Status, &rec.CreatedAt,
		&rec.TrainNumber, &rec.TrainName,
		&rec.SourceStation, &rec.DestStation,
	)
	if err != nil {
		return nil, err
	}
	rec.Class = types.TravelClass(class)
	rec.PassengerGender = types.Gender(gender)
	return &rec, nil
}

func (p *Postgres) CancelBookingByPNR(ctx context.Context, pnr string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bookings
		SET booking_status = 'cancelled', cancelled_at = NOW()
		WHERE pnr_number = $1
	`, pnr)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read cancel result: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) GetUserBookings(ctx context.Context, userID, limit int) ([]types.BookingRecord, error) {
	rows, err := p.db.QueryContext(ctx, bookingByPNRQuery+`
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	var out []types.BookingRecord
	for rows.Next() {
		rec, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
