package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNextWait(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		interval time.Duration
		want     time.Duration
	}{
		{"at start", 0, 10 * time.Second, 10*time.Second + FireGuard},
		{"on time", 10 * time.Second, 10 * time.Second, 10*time.Second + FireGuard},
		{"late by two seconds", 12 * time.Second, 10 * time.Second, 8*time.Second + FireGuard},
		{"late on a later frame", 43500 * time.Millisecond, 10 * time.Second, 6500*time.Millisecond + FireGuard},
		{"zero interval", 5 * time.Second, 0, 0},
		{"clock behind start", -3 * time.Second, 10 * time.Second, 10*time.Second + FireGuard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextWait(epoch, epoch.Add(tt.elapsed), tt.interval)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextWait_AnchoredToStart(t *testing.T) {
	interval := 10 * time.Second
	nominal := NextWait(epoch, epoch.Add(interval), interval)

	delta := 1500 * time.Millisecond
	late := NextWait(epoch, epoch.Add(interval+delta), interval)

	assert.Equal(t, nominal-delta, late)
}

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	clock := NewFakeClock(epoch)
	var fired []string

	clock.AfterFunc(3*time.Second, func() { fired = append(fired, "b") })
	clock.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	clock.AfterFunc(10*time.Second, func() { fired = append(fired, "c") })

	clock.Advance(5 * time.Second)

	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(5*time.Second), clock.Now())
	assert.Equal(t, 1, clock.Pending())
}

func TestFakeClock_StopPreventsFire(t *testing.T) {
	clock := NewFakeClock(epoch)
	fired := false

	timer := clock.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestFakeClock_RearmedTimerFiresWithinAdvance(t *testing.T) {
	clock := NewFakeClock(epoch)
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(time.Second, tick)
		}
	}
	clock.AfterFunc(time.Second, tick)

	clock.Advance(10 * time.Second)
	assert.Equal(t, 3, count)

	_, ok := clock.NextDeadline()
	assert.False(t, ok)
}

func TestFakeClock_AdvanceDropsSpentTimers(t *testing.T) {
	c := NewFakeClock(epoch)
	stopped := c.AfterFunc(time.Hour, func() {})
	for i := 0; i < 10; i++ {
		c.AfterFunc(time.Second, func() {})
	}
	c.AfterFunc(time.Minute, func() {})
	require.True(t, stopped.Stop())

	c.Advance(2 * time.Second)

	assert.Len(t, c.timers, 1)
	assert.Equal(t, 1, c.Pending())
}
