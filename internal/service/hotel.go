// Package service implements the hotel's domain queries and the
// state-mutation workflows on top of the repository layer.  Every
// operation returns either data or a *Error; multi-row workflows run
// in a single transaction and announce their outcome to the configured
// notifiers after commit.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/queue"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// Notifier receives events after the workflow that produced them has
// committed.  A failing notifier is logged and otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, ev queue.HotelEvent) error
}

// HotelService bundles the repositories behind the hotel operations.
type HotelService struct {
	x         *repository.Executor
	tables    *repository.TableAccessor
	rooms     *repository.RoomRepo
	bookings  *repository.BookingRepo
	payments  *repository.PaymentRepo
	customers *repository.CustomerRepo
	reports   *repository.ReportRepo

	notifiers []Notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

// Option customises a HotelService.
type Option func(*HotelService)

// WithClock replaces the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *HotelService) { s.now = now }
}

// WithNotifiers registers event receivers.
func WithNotifiers(n ...Notifier) Option {
	return func(s *HotelService) { s.notifiers = append(s.notifiers, n...) }
}

// WithLogger sets the logger; the standard logrus logger is the default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *HotelService) { s.log = l }
}

// NewHotelService wires the repositories over x.
func NewHotelService(x *repository.Executor, opts ...Option) *HotelService {
	s := &HotelService{
		x:         x,
		tables:    repository.NewTableAccessor(x),
		rooms:     repository.NewRoomRepo(x),
		bookings:  repository.NewBookingRepo(x),
		payments:  repository.NewPaymentRepo(x),
		customers: repository.NewCustomerRepo(x),
		reports:   repository.NewReportRepo(x),
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Today returns the current calendar day of the service clock.
func (s *HotelService) Today() model.Date { return model.NewDate(s.now()) }

// emit delivers ev to every notifier.  Delivery is detached from the
// request context so a client hanging up does not drop the event.
func (s *HotelService) emit(ctx context.Context, ev queue.HotelEvent) {
	if len(s.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			s.log.WithFields(logrus.Fields{"event": ev.Type, "event_id": ev.ID}).
				WithError(err).Warn("event notification failed")
		}
	}
}

func (s *HotelService) event(typ string) queue.HotelEvent {
	return queue.NewEvent(typ, s.now())
}

// fail logs a workflow failure and returns it classified.  Rollback
// failures are logged at error level since rows may be left behind.
func (s *HotelService) fail(op string, fields logrus.Fields, err error) error {
	err = classify(err)
	entry := s.log.WithField("op", op).WithFields(fields).WithError(err)
	switch KindOf(err) {
	case Compensation:
		entry.WithField("compensation", "failed").Error("workflow rollback failed")
	case Database:
		entry.Error("workflow failed")
	default:
		entry.Debug("workflow rejected")
	}
	return err
}
