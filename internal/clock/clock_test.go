package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	fake := NewFake(epoch)
	var fired []string

	fake.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "late") })
	fake.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "early") })
	fake.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "early-second") })

	fake.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-second"}, fired)
	assert.Equal(t, 1, fake.Pending())

	fake.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-second", "late"}, fired)
	assert.Equal(t, epoch.Add(30*time.Millisecond), fake.Now())
}

func TestFakeStopPreventsCallback(t *testing.T) {
	fake := NewFake(epoch)
	called := false
	timer := fake.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop must report the timer was already inactive")

	fake.Advance(2 * time.Second)
	assert.False(t, called)
	assert.Zero(t, fake.Pending())
}

func TestFakeChainedCallbacksWithinWindow(t *testing.T) {
	fake := NewFake(epoch)
	ticks := 0
	var schedule func()
	schedule = func() {
		fake.AfterFunc(60*time.Millisecond, func() {
			ticks++
			schedule()
		})
	}
	schedule()

	fake.Advance(300 * time.Millisecond)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, 1, fake.Pending())
}

func TestFakeCallbackSeesDeadlineAsNow(t *testing.T) {
	fake := NewFake(epoch)
	var seen time.Time
	fake.AfterFunc(45*time.Millisecond, func() { seen = fake.Now() })

	fake.Advance(time.Second)
	assert.Equal(t, epoch.Add(45*time.Millisecond), seen)
	assert.Equal(t, epoch.Add(time.Second), fake.Now())
}

func TestRealAfterFuncRuns(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real clock callback never ran")
	}
}
