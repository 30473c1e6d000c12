package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// MaxHorizonDays bounds the look-ahead of arrival, departure and
// forecast queries.
const MaxHorizonDays = 365

// Price search defaults.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 10000
)

func checkHorizon(days int) error {
	if days < 0 || days > MaxHorizonDays {
		return invalid("Days must be a positive integer less than 366")
	}
	return nil
}

func parseDate(field, s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, invalid("Invalid %s %q: expected YYYY-MM-DD", field, s)
	}
	return d, nil
}

// parseBounds parses optional start/end dates; blank means unbounded.
func parseBounds(start, end string) (*model.Date, *model.Date, error) {
	var from, to *model.Date
	if strings.TrimSpace(start) != "" {
		d, err := parseDate("start_date", start)
		if err != nil {
			return nil, nil, err
		}
		from = &d
	}
	if strings.TrimSpace(end) != "" {
		d, err := parseDate("end_date", end)
		if err != nil {
			return nil, nil, err
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(from.Time) {
		return nil, nil, invalid("end_date must not be before start_date")
	}
	return from, to, nil
}

// parseRange parses a required [start, end] pair.
func parseRange(start, end string) (model.Date, model.Date, error) {
	from, err := parseDate("start_date", start)
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	to, err := parseDate("end_date", end)
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	if to.Before(from.Time) {
		return model.Date{}, model.Date{}, invalid("end_date must not be before start_date")
	}
	return from, to, nil
}

func rows(r []repository.Row, err error) ([]repository.Row, error) {
	if err != nil {
		return nil, classify(err)
	}
	return r, nil
}

// VacantRooms lists vacant rooms, optionally of one type.
func (s *HotelService) VacantRooms(ctx context.Context, roomType string) ([]repository.Row, error) {
	return rows(s.rooms.Vacant(ctx, strings.TrimSpace(roomType)))
}

// UpcomingArrivals lists bookings arriving within [today, today+days].
func (s *HotelService) UpcomingArrivals(ctx context.Context, days int) ([]repository.Row, error) {
	if err := checkHorizon(days); err != nil {
		return nil, err
	}
	today := s.Today()
	return rows(s.bookings.ArrivingBetween(ctx, today, today.AddDays(days)))
}

// UpcomingDepartures lists bookings departing within [today, today+days].
func (s *HotelService) UpcomingDepartures(ctx context.Context, days int) ([]repository.Row, error) {
	if err := checkHorizon(days); err != nil {
		return nil, err
	}
	today := s.Today()
	return rows(s.bookings.DepartingBetween(ctx, today, today.AddDays(days)))
}

// FrequentCustomers lists guests with at least minBookings bookings.
func (s *HotelService) FrequentCustomers(ctx context.Context, minBookings int) ([]repository.Row, error) {
	if minBookings < 1 {
		return nil, invalid("Minimum bookings must be a positive integer")
	}
	return rows(s.customers.Frequent(ctx, minBookings))
}

// OccupancyStats reports room counts and occupancy rate per room type.
func (s *HotelService) OccupancyStats(ctx context.Context) ([]repository.Row, error) {
	return rows(s.reports.OccupancyByType(ctx))
}

// CurrentStays lists occupied rooms with their guests.
func (s *HotelService) CurrentStays(ctx context.Context) ([]repository.Row, error) {
	return rows(s.rooms.CurrentStays(ctx))
}

// RevenueByRoomType aggregates discounted revenue per room type for
// arrivals within the optional bounds.
func (s *HotelService) RevenueByRoomType(ctx context.Context, start, end string) ([]repository.Row, error) {
	from, to, err := parseBounds(start, end)
	if err != nil {
		return nil, err
	}
	return rows(s.reports.RevenueByRoomType(ctx, from, to))
}

// CustomerBookings returns a guest's booking history selected by ID or
// by a name substring.  Exactly one selector must be given.
func (s *HotelService) CustomerBookings(ctx context.Context, customerID int64, name string) ([]repository.Row, error) {
	name = strings.TrimSpace(name)
	switch {
	case customerID <= 0 && name == "":
		return nil, invalid("Either customer_id or name must be provided")
	case customerID > 0 && name != "":
		return nil, invalid("Provide either customer_id or name, not both")
	}
	return rows(s.bookings.ForCustomer(ctx, customerID, name))
}

// RoomByID returns the room with its current stay, if any.
func (s *HotelService) RoomByID(ctx context.Context, id int64) ([]repository.Row, error) {
	return rows(s.rooms.Detail(ctx, id))
}

// CustomerByID returns the guest with booking totals.
func (s *HotelService) CustomerByID(ctx context.Context, id int64) ([]repository.Row, error) {
	return rows(s.customers.Detail(ctx, id))
}

// BookingDetails returns one booking with guest, room and payment data.
func (s *HotelService) BookingDetails(ctx context.Context, id int64) ([]repository.Row, error) {
	return rows(s.bookings.Details(ctx, id))
}

// PaymentDetails returns one payment with its booking.
func (s *HotelService) PaymentDetails(ctx context.Context, id int64) ([]repository.Row, error) {
	return rows(s.payments.Details(ctx, id))
}

// SearchRoomsByPrice lists rooms priced within [minPrice, maxPrice].
func (s *HotelService) SearchRoomsByPrice(ctx context.Context, minPrice, maxPrice float64, onlyVacant bool) ([]repository.Row, error) {
	if minPrice < 0 {
		return nil, invalid("min_price must not be negative")
	}
	if maxPrice < minPrice {
		return nil, invalid("max_price must not be below min_price")
	}
	return rows(s.rooms.SearchByPrice(ctx, minPrice, maxPrice, onlyVacant))
}

// RoomAvailability reports a room's status over [start, end].
func (s *HotelService) RoomAvailability(ctx context.Context, roomID int64, start, end string) ([]repository.Row, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return rows(s.rooms.Availability(ctx, roomID, from, to))
}

// BookingsByDateRange lists bookings touching [start, end].
func (s *HotelService) BookingsByDateRange(ctx context.Context, start, end string) ([]repository.Row, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return rows(s.bookings.Overlapping(ctx, from, to))
}

// SearchCustomers matches guests by name or identity number.
func (s *HotelService) SearchCustomers(ctx context.Context, term string) ([]repository.Row, error) {
	return rows(s.customers.Search(ctx, term))
}

// HotelStatistics combines the occupancy, revenue, bookings and
// popularity sections.  A section whose query fails is left out and
// logged; the others are still reported.
func (s *HotelService) HotelStatistics(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, 4)
	first := func(name string, r []repository.Row, err error) {
		if err != nil {
			s.log.WithField("section", name).WithError(err).Warn("hotel statistics section failed")
			return
		}
		if len(r) > 0 {
			out[name] = r[0]
		}
	}
	r, err := s.reports.Occupancy(ctx)
	first("occupancy", r, err)
	r, err = s.reports.Revenue(ctx)
	first("revenue", r, err)
	r, err = s.reports.Bookings(ctx, s.Today())
	first("bookings", r, err)

	if pop, err := s.reports.Popularity(ctx); err != nil {
		s.log.WithFields(logrus.Fields{"section": "popularity"}).WithError(err).Warn("hotel statistics section failed")
	} else {
		out["popularity"] = pop
	}
	return out, nil
}

// BookingStatistics reports bookings per booked date and stay lengths.
func (s *HotelService) BookingStatistics(ctx context.Context, start, end string) (map[string]any, error) {
	from, to, err := parseBounds(start, end)
	if err != nil {
		return nil, err
	}
	byDate, err := s.reports.BookingsByDate(ctx, from, to)
	if err != nil {
		return nil, classify(err)
	}
	overall, err := s.reports.StayLengths(ctx, from, to)
	if err != nil {
		return nil, classify(err)
	}
	return map[string]any{"bookings_by_date": byDate, "overall_stats": firstRow(overall)}, nil
}

// RevenueReport reports revenue by room type, by arrival date and
// overall, for arrivals within the optional bounds.
func (s *HotelService) RevenueReport(ctx context.Context, start, end string) (map[string]any, error) {
	from, to, err := parseBounds(start, end)
	if err != nil {
		return nil, err
	}
	byType, err := s.reports.RevenueByRoomType(ctx, from, to)
	if err != nil {
		return nil, classify(err)
	}
	byDate, err := s.reports.RevenueByDate(ctx, from, to)
	if err != nil {
		return nil, classify(err)
	}
	overall, err := s.reports.RevenueOverall(ctx, from, to)
	if err != nil {
		return nil, classify(err)
	}
	return map[string]any{
		"revenue_by_room_type": byType,
		"revenue_by_date":      byDate,
		"overall_revenue":      firstRow(overall),
	}, nil
}

func firstRow(r []repository.Row) repository.Row {
	if len(r) == 0 {
		return repository.Row{}
	}
	return r[0]
}

// ListTables lists the tables of the hotel database.
func (s *HotelService) ListTables(ctx context.Context) ([]repository.Row, error) {
	return rows(s.tables.ListTables(ctx))
}

// ReadRecords reads up to limit rows of a table.  condition is raw SQL.
func (s *HotelService) ReadRecords(ctx context.Context, table, condition string, limit int) ([]repository.Row, error) {
	return rows(s.tables.ReadRecords(ctx, table, condition, limit))
}

// DescribeTable returns a table's column metadata.
func (s *HotelService) DescribeTable(ctx context.Context, table string) ([]repository.Row, error) {
	return rows(s.tables.DescribeTable(ctx, table))
}

// CustomQuery runs a read-only SELECT.
func (s *HotelService) CustomQuery(ctx context.Context, query string) ([]repository.Row, error) {
	return rows(s.tables.CustomQuery(ctx, query))
}

// AllCustomers lists every guest.
func (s *HotelService) AllCustomers(ctx context.Context) ([]repository.Row, error) {
	return rows(s.customers.All(ctx))
}

// AllBookings lists every booking with its room.
func (s *HotelService) AllBookings(ctx context.Context) ([]repository.Row, error) {
	return rows(s.bookings.All(ctx))
}

// AllRooms lists every room.
func (s *HotelService) AllRooms(ctx context.Context) ([]repository.Row, error) {
	return rows(s.rooms.All(ctx))
}

// AllPayments lists every payment.
func (s *HotelService) AllPayments(ctx context.Context) ([]repository.Row, error) {
	return rows(s.payments.All(ctx))
}

// BookingLedger lists bookings with guest and payment figures for export.
func (s *HotelService) BookingLedger(ctx context.Context) ([]repository.Row, error) {
	return rows(s.bookings.Ledger(ctx))
}
