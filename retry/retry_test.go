package retry

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleNoRetrySendsOnce(t *testing.T) {
	var calls int32
	e := &Engine{}
	var c Counter
	e.Schedule(&c, NoRetry, false, func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestScheduleImmediateSendsNowThenArms(t *testing.T) {
	var calls int32
	e := &Engine{}
	var c Counter
	e.Schedule(&c, 10*time.Millisecond, true, func() { atomic.AddInt32(&calls, 1) })

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "immediate send happens synchronously")

	time.Sleep(30 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestUpdateCancelsPendingRetry(t *testing.T) {
	var calls int32
	e := &Engine{}
	var c Counter
	e.Schedule(&c, 15*time.Millisecond, false, func() { atomic.AddInt32(&calls, 1) })

	c.Update() // the awaited update arrived before the retry fired

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestOnRetryHookFiresOnActualRetry(t *testing.T) {
	var retries int32
	e := &Engine{OnRetry: func() { atomic.AddInt32(&retries, 1) }}
	var c Counter
	e.Schedule(&c, 10*time.Millisecond, false, func() {})

	time.Sleep(30 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&retries), int32(1))
}

func TestCounterValueIncrementsOnUpdate(t *testing.T) {
	var c Counter
	assert.Equal(t, uint64(0), c.Value())
	c.Update()
	assert.Equal(t, uint64(1), c.Value())
}
