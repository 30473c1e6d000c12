package service

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/repository"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))

	cases := []struct {
		name string
		err  error
		kind Kind
		msg  string
	}{
		{"no fields", repository.ErrNoFields, Validation, "No fields provided to update"},
		{"not found", repository.ErrNotFound, NotFound, "Not found"},
		{"unique", repository.ErrConflict, Conflict, "Database error: conflict"},
		{"already classified", conflict("Room is already occupied"), Conflict, "Room is already occupied"},
		{"plain", errors.New("boom"), Database, "Database error: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			assert.Equal(t, tc.kind, KindOf(err))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, err.Error())
			}
		})
	}
}

func TestClassify_RollbackOutranksInnerKind(t *testing.T) {
	for _, inner := range []error{
		conflict("No vacant rooms of type %s available", "2BHK"),
		invalid("Discount must be between 0 and 100"),
		repository.ErrNotFound,
	} {
		err := classify(&repository.RollbackError{Err: inner, RollbackErr: errors.New("disk I/O error")})
		assert.Equal(t, Compensation, KindOf(err), inner.Error())

		var rb *repository.RollbackError
		assert.ErrorAs(t, err, &rb)
	}

	err := classify(&repository.RollbackError{
		Err:         conflict("No vacant rooms of type %s available", "3BHK"),
		RollbackErr: errors.New("disk I/O error"),
	})
	assert.Equal(t, "Rollback failed after: No vacant rooms of type 3BHK available", err.Error())
}

func TestFail_LogsRollbackAtErrorLevel(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s := &HotelService{log: log}

	err := s.fail("book_room", logrus.Fields{"room_id": 101}, &repository.RollbackError{
		Err:         conflict("Room is already occupied"),
		RollbackErr: errors.New("disk I/O error"),
	})
	require.Error(t, err)
	assert.Equal(t, Compensation, KindOf(err))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed", entry.Data["compensation"])
}
