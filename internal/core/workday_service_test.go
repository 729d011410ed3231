package core_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockInOpensWorkday(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	w, err := e.workdays.ClockIn(ctx, "emp-1", at(2, 8))
	require.NoError(t, err)
	assert.True(t, w.Open())
	assert.Equal(t, "emp-1", w.EmployeeID)

	found, err := e.workdays.CurrentOpen(ctx, "emp-1", at(2, 12))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, w.ID, found.ID)
}

func TestClockInRejectsSecondOpenWorkday(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.workdays.ClockIn(ctx, "emp-1", at(2, 8))
	require.NoError(t, err)

	_, err = e.workdays.ClockIn(ctx, "emp-1", at(2, 9))
	assert.ErrorIs(t, err, model.ErrWorkdayAlreadyOpen)

	// Other employees are unaffected.
	_, err = e.workdays.ClockIn(ctx, "emp-2", at(2, 9))
	assert.NoError(t, err)
}

func TestClockOutClosesAndComputesHours(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	w, err := e.workdays.ClockIn(ctx, "emp-1", at(2, 8))
	require.NoError(t, err)

	w, err = e.workdays.ClockOut(ctx, w.ID, at(2, 17), "route completed")
	require.NoError(t, err)
	assert.False(t, w.Open())
	assert.InDelta(t, 9.0, w.Hours, 1e-9)
	assert.Equal(t, "route completed", w.Notes)

	// Closed means closed: a second clock-out is rejected.
	_, err = e.workdays.ClockOut(ctx, w.ID, at(2, 18), "")
	assert.ErrorIs(t, err, model.ErrWorkdayClosed)

	// A new day is a new record, even after closing.
	_, err = e.workdays.ClockIn(ctx, "emp-1", at(3, 8))
	assert.NoError(t, err)
}

func TestClockOutRejectsTimeBeforeClockIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	w, err := e.workdays.ClockIn(ctx, "emp-1", at(2, 8))
	require.NoError(t, err)

	_, err = e.workdays.ClockOut(ctx, w.ID, at(2, 7), "")
	assert.ErrorIs(t, err, model.ErrInvalidInterval)

	// The failed attempt must not have closed anything.
	open, err := e.workdays.CurrentOpen(ctx, "emp-1", at(2, 12))
	require.NoError(t, err)
	assert.NotNil(t, open)
}

func TestClockOutUnknownWorkday(t *testing.T) {
	e := newEnv(t)

	_, err := e.workdays.ClockOut(context.Background(), 9999, at(2, 17), "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCurrentOpenReturnsNilWhenNoneOpen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	w, err := e.workdays.CurrentOpen(ctx, "emp-1", at(2, 12))
	require.NoError(t, err)
	assert.Nil(t, w)

	e.workedDay(t, "emp-1", 2, 8, 17)
	w, err = e.workdays.CurrentOpen(ctx, "emp-1", at(2, 18))
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestConcurrentClockInsOpenExactlyOne(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const attempts = 20
	var opened int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.workdays.ClockIn(ctx, "emp-1", at(2, 8)); err == nil {
				atomic.AddInt64(&opened, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), opened, "exactly one clock-in should win")
}
