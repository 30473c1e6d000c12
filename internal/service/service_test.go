package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/queue"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// recorder collects the events a service emits.
type recorder struct {
	mu     sync.Mutex
	events []queue.HotelEvent
}

func (r *recorder) Notify(_ context.Context, ev queue.HotelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// clock is a settable service clock.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(day string) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	c.t = t.Add(12 * time.Hour)
}

type fixture struct {
	svc    *HotelService
	x      *repository.Executor
	clock  *clock
	events *recorder
}

// newFixture returns a service over a freshly seeded in-memory hotel
// whose clock reads 2025-05-06.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))
	require.NoError(t, database.Seed(ctx, db))

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	f := &fixture{x: repository.NewExecutor(db, database.SQLite), clock: &clock{}, events: &recorder{}}
	f.clock.set("2025-05-06")
	f.svc = NewHotelService(f.x, WithClock(f.clock.now), WithNotifiers(f.events), WithLogger(log))
	return f
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	r, err := f.x.Query(context.Background(), "SELECT COUNT(*) AS n FROM "+table)
	require.NoError(t, err)
	return r[0]["n"].(int64)
}

// requireKind asserts err is a service error of the given kind and message.
func requireKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "kind of %q", err.Error())
	if msg != "" {
		require.Equal(t, msg, err.Error())
	}
}
