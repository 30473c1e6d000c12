package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/queue"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// BookingRequest is the input of BookRoom.  Dates are YYYY-MM-DD.
type BookingRequest struct {
	CustomerID   int64   `json:"customer_id"`
	ArrivalDate  string  `json:"arrival_date"`
	DepartureDay string  `json:"departure_day"`
	RoomType     string  `json:"room_type"`
	PaymentType  string  `json:"payment_type"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount"`
}

// BookingResult identifies the rows BookRoom created.
type BookingResult struct {
	BookingID    int64  `json:"booking_id"`
	PaymentID    int64  `json:"payment_id"`
	RoomID       int64  `json:"room_id"`
	RoomType     string `json:"room_type"`
	ArrivalDate  string `json:"arrival_date"`
	DepartureDay string `json:"departure_day"`
}

// CheckInResult reports the two writes of a check-in.
type CheckInResult struct {
	RoomID        int64 `json:"room_id"`
	BookingID     int64 `json:"booking_id"`
	RoomUpdate    int64 `json:"room_update"`
	BookingUpdate int64 `json:"booking_update"`
}

// CheckOutResult reports a room-level check-out.  AffectedRows is zero
// when the room was already vacant.
type CheckOutResult struct {
	RoomID       int64  `json:"room_id"`
	BookingID    *int64 `json:"booking_id"`
	AffectedRows int64  `json:"affected_rows"`
}

// BookingCheckOutResult reports a booking-level check-out.
type BookingCheckOutResult struct {
	BookingID        int64  `json:"booking_id"`
	RoomID           *int64 `json:"room_id"`
	FreedRoomRows    int64  `json:"freed_room_rows"`
	PaymentCompleted bool   `json:"payment_completed"`
}

// CancelResult reports the rows touched by each cancellation step.
type CancelResult struct {
	BookingID          int64 `json:"booking_id"`
	FreedRoomRows      int64 `json:"freed_room_rows"`
	DeletedBookingRows int64 `json:"deleted_booking_rows"`
	DeletedPaymentRows int64 `json:"deleted_payment_rows"`
}

// PaymentUpdate reports a change to a payment row.
type PaymentUpdate struct {
	PaymentID    int64   `json:"payment_id"`
	Discount     float64 `json:"discount,omitempty"`
	IsDone       bool    `json:"isDone,omitempty"`
	AffectedRows int64   `json:"affected_rows"`
}

func (r BookingRequest) validate() (arrival, departure model.Date, roomType model.RoomType, err error) {
	if r.CustomerID <= 0 {
		return arrival, departure, "", invalid("customer_id must be a positive integer")
	}
	if arrival, err = parseDate("arrival_date", r.ArrivalDate); err != nil {
		return
	}
	if departure, err = parseDate("departure_day", r.DepartureDay); err != nil {
		return
	}
	if departure.Before(arrival.Time) {
		return arrival, departure, "", invalid("departure_day must not be before arrival_date")
	}
	roomType = model.RoomType(strings.TrimSpace(r.RoomType))
	if !roomType.Valid() {
		return arrival, departure, "", invalid("Room type must be either '2BHK' or '3BHK'")
	}
	if strings.TrimSpace(r.PaymentType) == "" {
		return arrival, departure, "", invalid("payment_type is required")
	}
	if !(r.Price >= 0) || math.IsInf(r.Price, 0) {
		return arrival, departure, "", invalid("Price must not be negative")
	}
	if !model.ValidDiscount(r.Discount) {
		return arrival, departure, "", invalid("Discount must be between 0 and 100")
	}
	return arrival, departure, roomType, nil
}

// BookRoom creates the payment and the booking and assigns the vacant
// room of the requested type with the lowest RoomID, all in one
// transaction.  When no room is free nothing is persisted.
func (s *HotelService) BookRoom(ctx context.Context, req BookingRequest) (BookingResult, error) {
	arrival, departure, roomType, err := req.validate()
	if err != nil {
		return BookingResult{}, err
	}

	var res BookingResult
	err = s.x.WithTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.customers.ExistsTx(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("Customer not found")
		}

		pay := model.Payment{PaymentType: strings.TrimSpace(req.PaymentType), Price: req.Price, Discount: req.Discount}
		if err := s.payments.CreateTx(ctx, tx, &pay); err != nil {
			return err
		}
		b := model.Booking{
			CustomerID:   req.CustomerID,
			BookedDate:   s.Today(),
			ArrivalDate:  arrival,
			DepartureDay: departure,
			PaymentID:    pay.PaymentID,
		}
		if err := s.bookings.CreateTx(ctx, tx, &b); err != nil {
			return err
		}

		roomID, err := s.rooms.FirstVacantTx(ctx, tx, roomType)
		if errors.Is(err, repository.ErrNotFound) {
			return conflict("No vacant rooms of type %s available", roomType)
		}
		if err != nil {
			return err
		}
		if err := s.rooms.OccupyTx(ctx, tx, roomID, b.BookingsID); err != nil {
			return err
		}
		if _, err := s.bookings.SetRoomTx(ctx, tx, b.BookingsID, roomID); err != nil {
			return err
		}

		res = BookingResult{
			BookingID:    b.BookingsID,
			PaymentID:    pay.PaymentID,
			RoomID:       roomID,
			RoomType:     string(roomType),
			ArrivalDate:  arrival.String(),
			DepartureDay: departure.String(),
		}
		return nil
	})
	if err != nil {
		return BookingResult{}, s.fail("book_room", logrus.Fields{"customer_id": req.CustomerID, "room_type": req.RoomType}, err)
	}

	ev := s.event(queue.EventBookingCreated)
	ev.BookingID, ev.RoomID, ev.CustomerID, ev.PaymentID = res.BookingID, res.RoomID, req.CustomerID, res.PaymentID
	ev.Data = map[string]any{"room_type": res.RoomType, "arrival_date": res.ArrivalDate, "departure_day": res.DepartureDay}
	s.emit(ctx, ev)
	return res, nil
}

// CheckIn assigns a booking to a vacant room.  The preconditions are
// checked in order: the room is vacant, the booking exists, no other
// room holds the booking, and today lies within its stay.  Both writes
// happen only after every check passed.
func (s *HotelService) CheckIn(ctx context.Context, roomID, bookingID int64) (CheckInResult, error) {
	var res CheckInResult
	var customerID int64
	err := s.x.WithTx(ctx, func(tx *sql.Tx) error {
		room, err := s.rooms.GetTx(ctx, tx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Room not found")
		}
		if err != nil {
			return err
		}
		if !room.IsVacant {
			return conflict("Room is already occupied")
		}

		b, err := s.bookings.GetTx(ctx, tx, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Booking not found")
		}
		if err != nil {
			return err
		}

		holder, err := s.rooms.HolderTx(ctx, tx, bookingID)
		switch {
		case err == nil:
			return conflict("Booking is already assigned to another room (RoomID: %d)", holder)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		today := s.Today()
		if !b.Covers(today) {
			return conflict("Booking is not valid for today (today: %s, arrival: %s, departure: %s)",
				today, b.ArrivalDate, b.DepartureDay)
		}

		if err := s.rooms.OccupyTx(ctx, tx, roomID, bookingID); err != nil {
			return err
		}
		n, err := s.bookings.SetRoomTx(ctx, tx, bookingID, roomID)
		if err != nil {
			return err
		}
		customerID = b.CustomerID
		res = CheckInResult{RoomID: roomID, BookingID: bookingID, RoomUpdate: 1, BookingUpdate: n}
		return nil
	})
	if err != nil {
		return CheckInResult{}, s.fail("check_in", logrus.Fields{"room_id": roomID, "booking_id": bookingID}, err)
	}

	ev := s.event(queue.EventGuestCheckedIn)
	ev.RoomID, ev.BookingID, ev.CustomerID = roomID, bookingID, customerID
	s.emit(ctx, ev)
	return res, nil
}

// CheckOutRoom marks a room vacant and clears its stay.  Checking out
// a vacant room succeeds with zero affected rows.  Payment is not
// touched.
func (s *HotelService) CheckOutRoom(ctx context.Context, roomID int64) (CheckOutResult, error) {
	res := CheckOutResult{RoomID: roomID}
	err := s.x.WithTx(ctx, func(tx *sql.Tx) error {
		room, err := s.rooms.GetTx(ctx, tx, roomID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Room not found")
		}
		if err != nil {
			return err
		}
		res.BookingID = room.CurrentStay
		res.AffectedRows, err = s.rooms.ReleaseTx(ctx, tx, roomID)
		return err
	})
	if err != nil {
		return CheckOutResult{}, s.fail("check_out", logrus.Fields{"room_id": roomID}, err)
	}

	if res.AffectedRows > 0 {
		ev := s.event(queue.EventGuestCheckedOut)
		ev.RoomID = roomID
		if res.BookingID != nil {
			ev.BookingID = *res.BookingID
		}
		s.emit(ctx, ev)
	}
	return res, nil
}

// CheckOutBooking frees whichever room holds the booking and, when
// markPaymentComplete is set, settles its payment.
func (s *HotelService) CheckOutBooking(ctx context.Context, bookingID int64, markPaymentComplete bool) (BookingCheckOutResult, error) {
	res := BookingCheckOutResult{BookingID: bookingID}
	var paymentID int64
	err := s.x.WithTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetTx(ctx, tx, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Booking not found")
		}
		if err != nil {
			return err
		}
		paymentID = b.PaymentID

		roomID, err := s.rooms.HolderTx(ctx, tx, bookingID)
		switch {
		case err == nil:
			res.RoomID = &roomID
			if res.FreedRoomRows, err = s.rooms.ReleaseTx(ctx, tx, roomID); err != nil {
				return err
			}
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if markPaymentComplete {
			if _, err := s.payments.MarkDoneTx(ctx, tx, b.PaymentID); err != nil {
				return err
			}
			res.PaymentCompleted = true
		}
		return nil
	})
	if err != nil {
		return BookingCheckOutResult{}, s.fail("check_out_booking", logrus.Fields{"booking_id": bookingID}, err)
	}

	ev := s.event(queue.EventGuestCheckedOut)
	ev.BookingID, ev.PaymentID = bookingID, paymentID
	if res.RoomID != nil {
		ev.RoomID = *res.RoomID
	}
	ev.Data = map[string]any{"payment_completed": res.PaymentCompleted}
	s.emit(ctx, ev)
	return res, nil
}

// CancelBooking frees the room holding the booking, then deletes the
// booking and its payment.  A booking no room holds skips the first
// step with zero rows.
func (s *HotelService) CancelBooking(ctx context.Context, bookingID int64) (CancelResult, error) {
	res := CancelResult{BookingID: bookingID}
	var b model.Booking
	err := s.x.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		b, err = s.bookings.GetTx(ctx, tx, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Booking not found")
		}
		if err != nil {
			return err
		}
		if res.FreedRoomRows, err = s.rooms.ReleaseByBookingTx(ctx, tx, bookingID); err != nil {
			return err
		}
		if res.DeletedBookingRows, err = s.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
			return err
		}
		res.DeletedPaymentRows, err = s.payments.DeleteTx(ctx, tx, b.PaymentID)
		return err
	})
	if err != nil {
		return CancelResult{}, s.fail("cancel_booking", logrus.Fields{"booking_id": bookingID}, err)
	}

	ev := s.event(queue.EventBookingCancelled)
	ev.BookingID, ev.CustomerID, ev.PaymentID = bookingID, b.CustomerID, b.PaymentID
	if b.RoomID != nil {
		ev.RoomID = *b.RoomID
	}
	s.emit(ctx, ev)
	return res, nil
}

// ApplyDiscount sets a payment's discount percentage, 0 to 100
// inclusive.
func (s *HotelService) ApplyDiscount(ctx context.Context, paymentID int64, discount float64) (PaymentUpdate, error) {
	if !model.ValidDiscount(discount) {
		return PaymentUpdate{}, invalid("Discount must be between 0 and 100")
	}
	n, err := s.payments.SetDiscount(ctx, paymentID, discount)
	if err != nil {
		return PaymentUpdate{}, s.fail("apply_discount", logrus.Fields{"payment_id": paymentID}, err)
	}
	if n == 0 {
		return PaymentUpdate{}, notFound("Payment not found")
	}

	ev := s.event(queue.EventPaymentUpdated)
	ev.PaymentID = paymentID
	ev.Data = map[string]any{"discount": discount}
	s.emit(ctx, ev)
	return PaymentUpdate{PaymentID: paymentID, Discount: discount, AffectedRows: n}, nil
}

// MarkPaymentComplete flags a payment as settled.
func (s *HotelService) MarkPaymentComplete(ctx context.Context, paymentID int64) (PaymentUpdate, error) {
	n, err := s.payments.MarkDone(ctx, paymentID)
	if err != nil {
		return PaymentUpdate{}, s.fail("mark_payment_complete", logrus.Fields{"payment_id": paymentID}, err)
	}
	if n == 0 {
		return PaymentUpdate{}, notFound("Payment not found")
	}

	ev := s.event(queue.EventPaymentUpdated)
	ev.PaymentID = paymentID
	ev.Data = map[string]any{"isDone": true}
	s.emit(ctx, ev)
	return PaymentUpdate{PaymentID: paymentID, IsDone: true, AffectedRows: n}, nil
}
