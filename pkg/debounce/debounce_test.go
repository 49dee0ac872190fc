package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := New(20 * time.Millisecond)
	var last atomic.Int32
	var runs atomic.Int32

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Call(func() {
			last.Store(v)
			runs.Add(1)
		})
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	d := New(time.Hour)
	var runs atomic.Int32
	d.Call(func() { runs.Add(1) })

	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Flush())
}

func TestDebouncerStopDropsPending(t *testing.T) {
	d := New(10 * time.Millisecond)
	var runs atomic.Int32
	d.Call(func() { runs.Add(1) })
	d.Stop()
	d.Call(func() { runs.Add(1) })

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
	assert.False(t, d.Flush())
}
