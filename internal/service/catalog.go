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

// CustomerInput is the input of AddCustomer.
type CustomerInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DOB            string `json:"dob"`
	IdentityType   string `json:"identity_type"`
	IdentityString string `json:"identity_string"`
}

// PaymentInput is the input of AddPayment.
type PaymentInput struct {
	PaymentType string  `json:"payment_type"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	IsDone      bool    `json:"is_done"`
}

// UpdateResult reports a partial update.
type UpdateResult struct {
	ID           int64 `json:"id"`
	AffectedRows int64 `json:"affected_rows"`
}

const identityTypeMessage = "Identity type must be one of 'Adhar', 'PAN' or 'DL'"

// AddCustomer registers a guest and returns it with its generated ID.
func (s *HotelService) AddCustomer(ctx context.Context, in CustomerInput) (model.Customer, error) {
	idType := model.IdentityType(strings.TrimSpace(in.IdentityType))
	if !idType.Valid() {
		return model.Customer{}, invalid(identityTypeMessage)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return model.Customer{}, invalid("first_name and last_name are required")
	}
	if strings.TrimSpace(in.IdentityString) == "" {
		return model.Customer{}, invalid("identity_string is required")
	}
	dob, err := parseDate("dob", in.DOB)
	if err != nil {
		return model.Customer{}, err
	}

	c := model.Customer{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		DOB:            dob,
		IdentityType:   idType,
		IdentityString: strings.TrimSpace(in.IdentityString),
	}
	if err := s.customers.Create(ctx, &c); err != nil {
		return model.Customer{}, s.fail("add_customer", nil, err)
	}

	ev := s.event(queue.EventCustomerCreated)
	ev.CustomerID = c.CustomerID
	s.emit(ctx, ev)
	return c, nil
}

// GetCustomer reads a guest back by ID.
func (s *HotelService) GetCustomer(ctx context.Context, id int64) (model.Customer, error) {
	c, err := s.customers.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Customer{}, notFound("Customer not found")
	}
	if err != nil {
		return model.Customer{}, classify(err)
	}
	return c, nil
}

// AddPayment records a standalone payment.  isDone defaults to false
// and discount to 0; the discount is stored as given.
func (s *HotelService) AddPayment(ctx context.Context, in PaymentInput) (model.Payment, error) {
	p := model.Payment{PaymentType: strings.TrimSpace(in.PaymentType), IsDone: in.IsDone, Price: in.Price, Discount: in.Discount}
	if err := s.payments.Create(ctx, &p); err != nil {
		return model.Payment{}, s.fail("add_payment", nil, err)
	}
	return p, nil
}

func checkRoomType(t model.RoomType) error {
	if !t.Valid() {
		return invalid("Room type must be either '2BHK' or '3BHK'")
	}
	return nil
}

func checkRoomPrice(p float64) error {
	if !(p > 0) || math.IsInf(p, 0) {
		return invalid("Price must be greater than zero")
	}
	return nil
}

// AddRoom adds a vacant room to the inventory.
func (s *HotelService) AddRoom(ctx context.Context, roomID int64, roomType string, price float64) (model.Room, error) {
	t := model.RoomType(strings.TrimSpace(roomType))
	if err := checkRoomType(t); err != nil {
		return model.Room{}, err
	}
	if err := checkRoomPrice(price); err != nil {
		return model.Room{}, err
	}
	if roomID <= 0 {
		return model.Room{}, invalid("room_id must be a positive integer")
	}

	room := model.Room{RoomID: roomID, IsVacant: true, Type: t, Price: price}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Room{}, conflict("Room %d already exists", roomID)
		}
		return model.Room{}, s.fail("add_room", logrus.Fields{"room_id": roomID}, err)
	}

	ev := s.event(queue.EventRoomCreated)
	ev.RoomID = roomID
	ev.Data = map[string]any{"type": string(t), "price": price}
	s.emit(ctx, ev)
	return room, nil
}

// UpdateCustomer applies the fields present in p.
func (s *HotelService) UpdateCustomer(ctx context.Context, id int64, p model.CustomerPatch) (UpdateResult, error) {
	if p.Empty() {
		return UpdateResult{}, invalid("%s", repository.ErrNoFields)
	}
	if p.IdentityType != nil && !p.IdentityType.Valid() {
		return UpdateResult{}, invalid(identityTypeMessage)
	}
	n, err := s.customers.Update(ctx, id, p)
	if err != nil {
		return UpdateResult{}, s.fail("update_customer", logrus.Fields{"customer_id": id}, err)
	}
	if n == 0 {
		return UpdateResult{}, notFound("Customer not found")
	}

	ev := s.event(queue.EventCustomerUpdated)
	ev.CustomerID = id
	s.emit(ctx, ev)
	return UpdateResult{ID: id, AffectedRows: n}, nil
}

// UpdateRoom changes a room's type or price.
func (s *HotelService) UpdateRoom(ctx context.Context, id int64, p model.RoomPatch) (UpdateResult, error) {
	if p.Empty() {
		return UpdateResult{}, invalid("%s", repository.ErrNoFields)
	}
	if p.Type != nil {
		if err := checkRoomType(*p.Type); err != nil {
			return UpdateResult{}, err
		}
	}
	if p.Price != nil {
		if err := checkRoomPrice(*p.Price); err != nil {
			return UpdateResult{}, err
		}
	}
	n, err := s.rooms.Update(ctx, id, p)
	if err != nil {
		return UpdateResult{}, s.fail("update_room", logrus.Fields{"room_id": id}, err)
	}
	if n == 0 {
		return UpdateResult{}, notFound("Room not found")
	}

	ev := s.event(queue.EventRoomUpdated)
	ev.RoomID = id
	s.emit(ctx, ev)
	return UpdateResult{ID: id, AffectedRows: n}, nil
}

// UpdateBooking changes a booking's dates or payment reference.  The
// resulting stay must still end on or after its arrival.
func (s *HotelService) UpdateBooking(ctx context.Context, id int64, p model.BookingPatch) (UpdateResult, error) {
	if p.Empty() {
		return UpdateResult{}, invalid("%s", repository.ErrNoFields)
	}
	var n int64
	err := s.x.WithTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Booking not found")
		}
		if err != nil {
			return err
		}
		arrival, departure := b.ArrivalDate, b.DepartureDay
		if p.ArrivalDate != nil {
			arrival = *p.ArrivalDate
		}
		if p.DepartureDay != nil {
			departure = *p.DepartureDay
		}
		if departure.Before(arrival.Time) {
			return invalid("departure_day must not be before arrival_date")
		}
		n, err = s.bookings.UpdateTx(ctx, tx, id, p)
		return err
	})
	if err != nil {
		return UpdateResult{}, s.fail("update_booking", logrus.Fields{"booking_id": id}, err)
	}

	ev := s.event(queue.EventBookingUpdated)
	ev.BookingID = id
	s.emit(ctx, ev)
	return UpdateResult{ID: id, AffectedRows: n}, nil
}
