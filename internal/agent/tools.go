// Package agent exposes the hotel operations as named tools for a
// language-model agent.  Every call answers with a sequence of rows;
// failures are a single row holding an "error" message.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/service"
)

// Param documents one tool argument.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Tool is one entry of the catalog.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []Param  `json:"params"`
	Roles       []string `json:"roles"`

	call func(ctx context.Context, s *service.HotelService, r *reader) (any, error)
}

var (
	allStaff    = []string{model.RoleManager, model.RoleReception}
	managerOnly = []string{model.RoleManager}
)

func p(name, typ string, required bool, desc string) Param {
	return Param{Name: name, Type: typ, Required: required, Description: desc}
}

// reader collects the first argument error so tool bodies stay linear.
type reader struct {
	a   Args
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) require(names ...string) {
	for _, n := range names {
		if !r.a.has(n) {
			r.fail(fmt.Errorf("Missing required argument: %s", n))
		}
	}
}

func (r *reader) int(name string, def int64) int64 {
	v, err := r.a.Int(name, def)
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) float(name string, def float64) float64 {
	v, err := r.a.Float(name, def)
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) str(name, def string) string {
	v, err := r.a.String(name, def)
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) boolean(name string, def bool) bool {
	v, err := r.a.Bool(name, def)
	if err != nil {
		r.fail(err)
	}
	return v
}

// nonEmpty returns nil for absent or blank strings.
func (r *reader) nonEmpty(name string) *string {
	v, err := r.a.OptString(name)
	if err != nil {
		r.fail(err)
		return nil
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

func (r *reader) date(name string) *model.Date {
	s, err := r.a.OptString(name)
	if err != nil {
		r.fail(err)
		return nil
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		r.fail(fmt.Errorf("Invalid %s %q: expected YYYY-MM-DD", name, *s))
		return nil
	}
	return &d
}

var catalog = []Tool{
	{
		Name:        "read_records",
		Description: "Read up to limit rows of a table, optionally filtered by a raw SQL condition.",
		Params: []Param{
			p("table", "string", true, "table name"),
			p("condition", "string", false, "raw WHERE clause; managers only"),
			p("limit", "integer", false, "row limit, default 5"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("table")
			table, cond, limit := r.str("table", ""), r.str("condition", ""), r.int("limit", repository.DefaultRecordLimit)
			if r.err != nil {
				return nil, r.err
			}
			return s.ReadRecords(ctx, table, cond, int(limit))
		},
	},
	{
		Name:        "describe_table",
		Description: "Describe the columns of a table.",
		Params:      []Param{p("table", "string", true, "table name")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("table")
			table := r.str("table", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.DescribeTable(ctx, table)
		},
	},
	{
		Name:        "custom_query",
		Description: "Run a read-only SELECT query.",
		Params:      []Param{p("query", "string", true, "a single SELECT statement")},
		Roles:       managerOnly,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("query")
			q := r.str("query", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.CustomQuery(ctx, q)
		},
	},
	{
		Name:        "get_vacant_rooms",
		Description: "List vacant rooms, optionally of one type.",
		Params:      []Param{p("room_type", "string", false, "2BHK or 3BHK")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			t := r.str("room_type", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.VacantRooms(ctx, t)
		},
	},
	{
		Name:        "get_upcoming_arrivals",
		Description: "Bookings arriving between today and today plus days.",
		Params:      []Param{p("days", "integer", false, "0 to 365, default 7")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			days := r.int("days", 7)
			if r.err != nil {
				return nil, r.err
			}
			return s.UpcomingArrivals(ctx, int(days))
		},
	},
	{
		Name:        "get_upcoming_departures",
		Description: "Bookings departing between today and today plus days.",
		Params:      []Param{p("days", "integer", false, "0 to 365, default 7")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			days := r.int("days", 7)
			if r.err != nil {
				return nil, r.err
			}
			return s.UpcomingDepartures(ctx, int(days))
		},
	},
	{
		Name:        "get_frequent_customers",
		Description: "Guests with at least min_bookings bookings.",
		Params:      []Param{p("min_bookings", "integer", false, "default 2")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			min := r.int("min_bookings", 2)
			if r.err != nil {
				return nil, r.err
			}
			return s.FrequentCustomers(ctx, int(min))
		},
	},
	{
		Name:        "get_room_occupancy_stats",
		Description: "Room counts and occupancy rate per room type.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.OccupancyStats(ctx)
		},
	},
	{
		Name:        "get_current_stays",
		Description: "Occupied rooms with booking and guest.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.CurrentStays(ctx)
		},
	},
	{
		Name:        "get_revenue_by_room_type",
		Description: "Discounted revenue per room type for arrivals in the optional range.",
		Params: []Param{
			p("start_date", "string", false, "YYYY-MM-DD"),
			p("end_date", "string", false, "YYYY-MM-DD"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			start, end := r.str("start_date", ""), r.str("end_date", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.RevenueByRoomType(ctx, start, end)
		},
	},
	{
		Name:        "get_customer_bookings",
		Description: "Booking history of a guest selected by ID or by name.",
		Params: []Param{
			p("customer_id", "integer", false, "guest ID"),
			p("name", "string", false, "part of the first or last name"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			id, name := r.int("customer_id", 0), r.str("name", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.CustomerBookings(ctx, id, name)
		},
	},
	{
		Name:        "add_customer",
		Description: "Register a guest.",
		Params: []Param{
			p("first_name", "string", true, ""),
			p("last_name", "string", true, ""),
			p("dob", "string", true, "YYYY-MM-DD"),
			p("identity_type", "string", true, "Adhar, PAN or DL"),
			p("identity_string", "string", true, "document number"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("first_name", "last_name", "dob", "identity_type", "identity_string")
			in := service.CustomerInput{
				FirstName:      r.str("first_name", ""),
				LastName:       r.str("last_name", ""),
				DOB:            r.str("dob", ""),
				IdentityType:   r.str("identity_type", ""),
				IdentityString: r.str("identity_string", ""),
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.AddCustomer(ctx, in)
		},
	},
	{
		Name:        "add_payment",
		Description: "Record a payment.",
		Params: []Param{
			p("payment_type", "string", true, ""),
			p("price", "number", true, ""),
			p("discount", "number", false, "percentage, default 0"),
			p("is_done", "boolean", false, "default false"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("payment_type", "price")
			in := service.PaymentInput{
				PaymentType: r.str("payment_type", ""),
				Price:       r.float("price", 0),
				Discount:    r.float("discount", 0),
				IsDone:      r.boolean("is_done", false),
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.AddPayment(ctx, in)
		},
	},
	{
		Name:        "book_room",
		Description: "Create a payment and a booking and assign the first vacant room of the type.",
		Params: []Param{
			p("customer_id", "integer", true, ""),
			p("arrival_date", "string", true, "YYYY-MM-DD"),
			p("departure_day", "string", true, "YYYY-MM-DD"),
			p("room_type", "string", true, "2BHK or 3BHK"),
			p("payment_type", "string", true, ""),
			p("price", "number", true, ""),
			p("discount", "number", false, "percentage, default 0"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("customer_id", "arrival_date", "departure_day", "room_type", "payment_type", "price")
			req := service.BookingRequest{
				CustomerID:   r.int("customer_id", 0),
				ArrivalDate:  r.str("arrival_date", ""),
				DepartureDay: r.str("departure_day", ""),
				RoomType:     r.str("room_type", ""),
				PaymentType:  r.str("payment_type", ""),
				Price:        r.float("price", 0),
				Discount:     r.float("discount", 0),
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.BookRoom(ctx, req)
		},
	},
	{
		Name:        "check_in_guest",
		Description: "Check a booking into a vacant room when today is within the stay.",
		Params: []Param{
			p("room_id", "integer", true, ""),
			p("booking_id", "integer", true, ""),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id", "booking_id")
			room, booking := r.int("room_id", 0), r.int("booking_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.CheckIn(ctx, room, booking)
		},
	},
	{
		Name:        "checkout_guest",
		Description: "Mark a room vacant and clear its current stay.",
		Params:      []Param{p("room_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id")
			room := r.int("room_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.CheckOutRoom(ctx, room)
		},
	},
	{
		Name:        "checkout_booking",
		Description: "Free the room holding a booking and optionally settle its payment.",
		Params: []Param{
			p("booking_id", "integer", true, ""),
			p("mark_payment_complete", "boolean", false, "default true"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("booking_id")
			id, mark := r.int("booking_id", 0), r.boolean("mark_payment_complete", true)
			if r.err != nil {
				return nil, r.err
			}
			return s.CheckOutBooking(ctx, id, mark)
		},
	},
	{
		Name:        "update_customer_info",
		Description: "Update the given fields of a guest.",
		Params: []Param{
			p("customer_id", "integer", true, ""),
			p("first_name", "string", false, ""),
			p("last_name", "string", false, ""),
			p("dob", "string", false, "YYYY-MM-DD"),
			p("identity_type", "string", false, "Adhar, PAN or DL"),
			p("identity_string", "string", false, ""),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("customer_id")
			id := r.int("customer_id", 0)
			patch := model.CustomerPatch{
				FirstName:      r.nonEmpty("first_name"),
				LastName:       r.nonEmpty("last_name"),
				DOB:            r.date("dob"),
				IdentityString: r.nonEmpty("identity_string"),
			}
			if t := r.nonEmpty("identity_type"); t != nil {
				it := model.IdentityType(*t)
				patch.IdentityType = &it
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.UpdateCustomer(ctx, id, patch)
		},
	},
	{
		Name:        "cancel_booking",
		Description: "Free the room, then delete the booking and its payment.",
		Params:      []Param{p("booking_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("booking_id")
			id := r.int("booking_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.CancelBooking(ctx, id)
		},
	},
	{
		Name:        "apply_discount",
		Description: "Set a payment's discount percentage (0 to 100).",
		Params: []Param{
			p("payment_id", "integer", true, ""),
			p("discount", "number", true, ""),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("payment_id", "discount")
			id, d := r.int("payment_id", 0), r.float("discount", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.ApplyDiscount(ctx, id, d)
		},
	},
	{
		Name:        "mark_payment_complete",
		Description: "Flag a payment as settled.",
		Params:      []Param{p("payment_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("payment_id")
			id := r.int("payment_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.MarkPaymentComplete(ctx, id)
		},
	},
	{
		Name:        "get_room_by_id",
		Description: "A room with its current stay.",
		Params:      []Param{p("room_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id")
			id := r.int("room_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.RoomByID(ctx, id)
		},
	},
	{
		Name:        "get_customer_by_id",
		Description: "A guest with booking totals.",
		Params:      []Param{p("customer_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("customer_id")
			id := r.int("customer_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.CustomerByID(ctx, id)
		},
	},
	{
		Name:        "get_booking_details",
		Description: "A booking with guest, room, payment, stay length and final amount.",
		Params:      []Param{p("booking_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("booking_id")
			id := r.int("booking_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.BookingDetails(ctx, id)
		},
	},
	{
		Name:        "search_rooms_by_price",
		Description: "Rooms priced within a range, cheapest first.",
		Params: []Param{
			p("min_price", "number", false, "default 0"),
			p("max_price", "number", false, "default 10000"),
			p("only_vacant", "boolean", false, "default false"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			min := r.float("min_price", service.DefaultMinPrice)
			max := r.float("max_price", service.DefaultMaxPrice)
			vacant := r.boolean("only_vacant", false)
			if r.err != nil {
				return nil, r.err
			}
			return s.SearchRoomsByPrice(ctx, min, max, vacant)
		},
	},
	{
		Name:        "get_room_availability",
		Description: "Whether a room is occupied, booked or free over a date range.",
		Params: []Param{
			p("room_id", "integer", true, ""),
			p("start_date", "string", true, "YYYY-MM-DD"),
			p("end_date", "string", true, "YYYY-MM-DD"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id", "start_date", "end_date")
			id, start, end := r.int("room_id", 0), r.str("start_date", ""), r.str("end_date", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.RoomAvailability(ctx, id, start, end)
		},
	},
	{
		Name:        "list_bookings_by_date_range",
		Description: "Bookings arriving, departing or in residence within a date range.",
		Params: []Param{
			p("start_date", "string", true, "YYYY-MM-DD"),
			p("end_date", "string", true, "YYYY-MM-DD"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("start_date", "end_date")
			start, end := r.str("start_date", ""), r.str("end_date", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.BookingsByDateRange(ctx, start, end)
		},
	},
	{
		Name:        "get_payment_details",
		Description: "A payment with its booking and guest.",
		Params:      []Param{p("payment_id", "integer", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("payment_id")
			id := r.int("payment_id", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.PaymentDetails(ctx, id)
		},
	},
	{
		Name:        "update_room_info",
		Description: "Change a room's type or price.",
		Params: []Param{
			p("room_id", "integer", true, ""),
			p("room_type", "string", false, "2BHK or 3BHK"),
			p("price", "number", false, "greater than zero"),
		},
		Roles: managerOnly,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id")
			id := r.int("room_id", 0)
			var patch model.RoomPatch
			if t, err := r.a.OptString("room_type"); err != nil {
				r.fail(err)
			} else if t != nil {
				rt := model.RoomType(*t)
				patch.Type = &rt
			}
			if price, err := r.a.OptFloat("price"); err != nil {
				r.fail(err)
			} else {
				patch.Price = price
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.UpdateRoom(ctx, id, patch)
		},
	},
	{
		Name:        "update_booking_details",
		Description: "Change a booking's dates or payment reference.",
		Params: []Param{
			p("booking_id", "integer", true, ""),
			p("arrival_date", "string", false, "YYYY-MM-DD"),
			p("departure_day", "string", false, "YYYY-MM-DD"),
			p("payment_id", "integer", false, ""),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("booking_id")
			id := r.int("booking_id", 0)
			patch := model.BookingPatch{ArrivalDate: r.date("arrival_date"), DepartureDay: r.date("departure_day")}
			if pid, err := r.a.OptInt("payment_id"); err != nil {
				r.fail(err)
			} else {
				patch.PaymentID = pid
			}
			if r.err != nil {
				return nil, r.err
			}
			return s.UpdateBooking(ctx, id, patch)
		},
	},
	{
		Name:        "get_hotel_statistics",
		Description: "Occupancy, revenue, booking and popularity overview.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.HotelStatistics(ctx)
		},
	},
	{
		Name:        "get_booking_statistics",
		Description: "Bookings per booked date and stay lengths.",
		Params: []Param{
			p("start_date", "string", false, "YYYY-MM-DD"),
			p("end_date", "string", false, "YYYY-MM-DD"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			start, end := r.str("start_date", ""), r.str("end_date", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.BookingStatistics(ctx, start, end)
		},
	},
	{
		Name:        "get_revenue_report",
		Description: "Revenue by room type, by arrival date and overall.",
		Params: []Param{
			p("start_date", "string", false, "YYYY-MM-DD"),
			p("end_date", "string", false, "YYYY-MM-DD"),
		},
		Roles: allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			start, end := r.str("start_date", ""), r.str("end_date", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.RevenueReport(ctx, start, end)
		},
	},
	{
		Name:        "get_occupancy_forecast",
		Description: "Projected occupancy for today and the following days.",
		Params:      []Param{p("days", "integer", false, "0 to 365, default 30")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			days := r.int("days", service.DefaultForecastDays)
			if r.err != nil {
				return nil, r.err
			}
			return s.OccupancyForecast(ctx, int(days))
		},
	},
	{
		Name:        "add_new_room",
		Description: "Add a vacant room to the inventory.",
		Params: []Param{
			p("room_id", "integer", true, ""),
			p("room_type", "string", true, "2BHK or 3BHK"),
			p("price", "number", true, "greater than zero"),
		},
		Roles: managerOnly,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("room_id", "room_type", "price")
			id, t, price := r.int("room_id", 0), r.str("room_type", ""), r.float("price", 0)
			if r.err != nil {
				return nil, r.err
			}
			return s.AddRoom(ctx, id, t, price)
		},
	},
	{
		Name:        "search_customers",
		Description: "Guests whose name or identity number contains the term.",
		Params:      []Param{p("search_term", "string", true, "")},
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, r *reader) (any, error) {
			r.require("search_term")
			term := r.str("search_term", "")
			if r.err != nil {
				return nil, r.err
			}
			return s.SearchCustomers(ctx, term)
		},
	},
	{
		Name:        "get_all_tables",
		Description: "List the tables of the hotel database.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.ListTables(ctx)
		},
	},
	{
		Name:        "get_all_customers",
		Description: "Every guest.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.AllCustomers(ctx)
		},
	},
	{
		Name:        "get_all_bookings",
		Description: "Every booking with its room.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.AllBookings(ctx)
		},
	},
	{
		Name:        "get_all_rooms",
		Description: "Every room.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.AllRooms(ctx)
		},
	},
	{
		Name:        "get_all_payments",
		Description: "Every payment.",
		Roles:       allStaff,
		call: func(ctx context.Context, s *service.HotelService, _ *reader) (any, error) {
			return s.AllPayments(ctx)
		},
	},
}

// Dispatcher routes tool calls to the hotel service.
type Dispatcher struct {
	svc   *service.HotelService
	tools map[string]Tool
}

// NewDispatcher indexes the catalog.
func NewDispatcher(svc *service.HotelService) *Dispatcher {
	d := &Dispatcher{svc: svc, tools: make(map[string]Tool, len(catalog))}
	for _, t := range catalog {
		d.tools[t.Name] = t
	}
	return d
}

// Tools returns the catalog sorted by name.
func (d *Dispatcher) Tools() []Tool {
	out := make([]Tool, 0, len(d.tools))
	for _, t := range d.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named tool.
func (d *Dispatcher) Lookup(name string) (Tool, bool) {
	t, ok := d.tools[name]
	return t, ok
}

// Call runs a tool on behalf of a staff member with the given role.
// The answer is always a row sequence; a failure is [{"error": msg}].
func (d *Dispatcher) Call(ctx context.Context, name, role string, args Args) []repository.Row {
	t, ok := d.tools[name]
	if !ok {
		return errorRows("Unknown tool: " + name)
	}
	if !allowed(t.Roles, role) {
		return errorRows(fmt.Sprintf("Role %s may not call %s", role, name))
	}
	if args == nil {
		args = Args{}
	}
	// a raw WHERE clause is SQL text, so it is held to the custom_query role
	if name == "read_records" && role != model.RoleManager {
		if c, _ := args.String("condition", ""); strings.TrimSpace(c) != "" {
			return errorRows("Only managers may filter records with a condition")
		}
	}

	out, err := t.call(ctx, d.svc, &reader{a: args})
	if err != nil {
		return errorRows(err.Error())
	}
	rows, err := toRows(out)
	if err != nil {
		return errorRows(err.Error())
	}
	return rows
}

func allowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func errorRows(msg string) []repository.Row {
	return []repository.Row{{"error": msg}}
}

// toRows shapes any result as a row sequence.  Structs become one row
// keyed by their JSON field names.
func toRows(v any) ([]repository.Row, error) {
	switch x := v.(type) {
	case []repository.Row:
		return x, nil
	case repository.Row:
		return []repository.Row{x}, nil
	case map[string]any:
		return []repository.Row{x}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row repository.Row
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, err
	}
	return []repository.Row{row}, nil
}
