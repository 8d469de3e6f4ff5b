package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"tienda/pkg/debounce"

	"github.com/stretchr/testify/assert"
)

func TestBurstFiresOnce(t *testing.T) {
	var calls int32
	var firedAt atomic.Value

	d := debounce.New(250*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
		firedAt.Store(time.Now())
	})

	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	d.Trigger()
	lastTrigger := time.Now()

	time.Sleep(500 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	fired, ok := firedAt.Load().(time.Time)
	assert.True(t, ok)
	elapsed := fired.Sub(lastTrigger)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 450*time.Millisecond)
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	var calls int32
	d := debounce.New(50*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	time.Sleep(150 * time.Millisecond)
	d.Trigger()
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStopCancelsPending(t *testing.T) {
	var calls int32
	d := debounce.New(50*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	d.Trigger()
	d.Stop()
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
