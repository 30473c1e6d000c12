package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/queue"
)

func booking(customerID int64, roomType string) BookingRequest {
	return BookingRequest{
		CustomerID:   customerID,
		ArrivalDate:  "2025-06-01",
		DepartureDay: "2025-06-05",
		RoomType:     roomType,
		PaymentType:  "Cash",
		Price:        900,
		Discount:     5,
	}
}

func TestBookRoom_NoVacancyPersistsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookRoom(context.Background(), booking(1, "2BHK"))
	requireKind(t, err, Conflict, "No vacant rooms of type 2BHK available")

	assert.EqualValues(t, 5, f.count(t, "Pricing"))
	assert.EqualValues(t, 5, f.count(t, "Bookings"))
	assert.Empty(t, f.events.types())
}

func TestBookRoom_AssignsLowestVacantRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.BookRoom(ctx, booking(2, "3BHK"))
	require.NoError(t, err)
	assert.EqualValues(t, 102, res.RoomID)
	assert.EqualValues(t, 6, res.BookingID)
	assert.EqualValues(t, 6, res.PaymentID)
	assert.Equal(t, "2025-06-01", res.ArrivalDate)

	room, err := f.svc.RoomByID(ctx, 102)
	require.NoError(t, err)
	require.Len(t, room, 1)
	assert.Equal(t, false, room[0]["isVacant"])
	assert.EqualValues(t, 6, room[0]["currentStay"])

	details, err := f.svc.BookingDetails(ctx, res.BookingID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.EqualValues(t, 102, details[0]["RoomID"])
	assert.Equal(t, "2025-05-06", details[0]["bookedDate"])

	assert.Equal(t, []string{queue.EventBookingCreated}, f.events.types())
}

func TestBookRoom_UsesNewlyAddedRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddRoom(ctx, 106, "2BHK", 1600)
	require.NoError(t, err)

	res, err := f.svc.BookRoom(ctx, booking(3, "2BHK"))
	require.NoError(t, err)
	assert.EqualValues(t, 106, res.RoomID)

	vacant, err := f.svc.VacantRooms(ctx, "2BHK")
	require.NoError(t, err)
	assert.Empty(t, vacant)
}

func TestBookRoom_Validation(t *testing.T) {
	cases := []struct {
		name string
		edit func(r *BookingRequest)
		msg  string
	}{
		{"customer", func(r *BookingRequest) { r.CustomerID = 0 }, "customer_id must be a positive integer"},
		{"arrival", func(r *BookingRequest) { r.ArrivalDate = "06/01/2025" }, `Invalid arrival_date "06/01/2025": expected YYYY-MM-DD`},
		{"departure", func(r *BookingRequest) { r.DepartureDay = "2025-13-01" }, `Invalid departure_day "2025-13-01": expected YYYY-MM-DD`},
		{"order", func(r *BookingRequest) { r.DepartureDay = "2025-05-31" }, "departure_day must not be before arrival_date"},
		{"room type", func(r *BookingRequest) { r.RoomType = "4BHK" }, "Room type must be either '2BHK' or '3BHK'"},
		{"payment type", func(r *BookingRequest) { r.PaymentType = "  " }, "payment_type is required"},
		{"price", func(r *BookingRequest) { r.Price = -1 }, "Price must not be negative"},
		{"discount", func(r *BookingRequest) { r.Discount = 100.5 }, "Discount must be between 0 and 100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := booking(1, "3BHK")
			tc.edit(&req)
			_, err := f.svc.BookRoom(context.Background(), req)
			requireKind(t, err, Validation, tc.msg)
			assert.EqualValues(t, 5, f.count(t, "Bookings"))
		})
	}
}

func TestBookRoom_SameDayStay(t *testing.T) {
	f := newFixture(t)
	req := booking(1, "3BHK")
	req.DepartureDay = req.ArrivalDate

	_, err := f.svc.BookRoom(context.Background(), req)
	require.NoError(t, err)
}

func TestBookRoom_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookRoom(context.Background(), booking(99, "3BHK"))
	requireKind(t, err, NotFound, "Customer not found")
	assert.EqualValues(t, 5, f.count(t, "Pricing"))
}

func TestCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, 102, 2)
	requireKind(t, err, Conflict,
		"Booking is not valid for today (today: 2025-05-06, arrival: 2025-05-07, departure: 2025-05-09)")

	f.clock.set("2025-05-08")
	res, err := f.svc.CheckIn(ctx, 102, 2)
	require.NoError(t, err)
	assert.Equal(t, CheckInResult{RoomID: 102, BookingID: 2, RoomUpdate: 1, BookingUpdate: 1}, res)

	stays, err := f.svc.CurrentStays(ctx)
	require.NoError(t, err)
	assert.Len(t, stays, 4)
	assert.Equal(t, []string{queue.EventGuestCheckedIn}, f.events.types())
}

func TestCheckIn_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, 999, 2)
	requireKind(t, err, NotFound, "Room not found")

	_, err = f.svc.CheckIn(ctx, 101, 2)
	requireKind(t, err, Conflict, "Room is already occupied")

	_, err = f.svc.CheckIn(ctx, 102, 99)
	requireKind(t, err, NotFound, "Booking not found")

	_, err = f.svc.CheckIn(ctx, 102, 1)
	requireKind(t, err, Conflict, "Booking is already assigned to another room (RoomID: 101)")

	room, err := f.svc.RoomByID(ctx, 102)
	require.NoError(t, err)
	assert.Equal(t, true, room[0]["isVacant"])
	assert.Empty(t, f.events.types())
}

func TestCheckOutRoom_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CheckOutRoom(ctx, 101)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.AffectedRows)
	require.NotNil(t, res.BookingID)
	assert.EqualValues(t, 1, *res.BookingID)

	res, err = f.svc.CheckOutRoom(ctx, 101)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.AffectedRows)
	assert.Nil(t, res.BookingID)

	_, err = f.svc.CheckOutRoom(ctx, 999)
	requireKind(t, err, NotFound, "Room not found")

	assert.Equal(t, []string{queue.EventGuestCheckedOut}, f.events.types())
}

func TestCheckOutBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CheckOutBooking(ctx, 1, true)
	require.NoError(t, err)
	require.NotNil(t, res.RoomID)
	assert.EqualValues(t, 101, *res.RoomID)
	assert.EqualValues(t, 1, res.FreedRoomRows)
	assert.True(t, res.PaymentCompleted)

	res, err = f.svc.CheckOutBooking(ctx, 2, false)
	require.NoError(t, err)
	assert.Nil(t, res.RoomID)
	assert.False(t, res.PaymentCompleted)

	pay, err := f.svc.PaymentDetails(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, false, pay[0]["isDone"])

	_, err = f.svc.CheckOutBooking(ctx, 99, true)
	requireKind(t, err, NotFound, "Booking not found")
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CancelBooking(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, CancelResult{BookingID: 1, FreedRoomRows: 1, DeletedBookingRows: 1, DeletedPaymentRows: 1}, res)

	assert.EqualValues(t, 4, f.count(t, "Bookings"))
	assert.EqualValues(t, 4, f.count(t, "Pricing"))
	room, err := f.svc.RoomByID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, true, room[0]["isVacant"])
	assert.Nil(t, room[0]["currentStay"])

	res, err = f.svc.CancelBooking(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.FreedRoomRows)
	assert.EqualValues(t, 1, res.DeletedBookingRows)

	_, err = f.svc.CancelBooking(ctx, 1)
	requireKind(t, err, NotFound, "Booking not found")

	assert.Equal(t, []string{queue.EventBookingCancelled, queue.EventBookingCancelled}, f.events.types())
}

func TestApplyDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.ApplyDiscount(ctx, 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.AffectedRows)

	res, err = f.svc.ApplyDiscount(ctx, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.AffectedRows)

	for _, d := range []float64{100.0001, -1} {
		_, err = f.svc.ApplyDiscount(ctx, 1, d)
		requireKind(t, err, Validation, "Discount must be between 0 and 100")
	}

	_, err = f.svc.ApplyDiscount(ctx, 99, 10)
	requireKind(t, err, NotFound, "Payment not found")
}

func TestMarkPaymentComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.MarkPaymentComplete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.IsDone)

	pay, err := f.svc.PaymentDetails(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, true, pay[0]["isDone"])

	_, err = f.svc.MarkPaymentComplete(ctx, 99)
	requireKind(t, err, NotFound, "Payment not found")
}
