package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitClockTime(t *testing.T) {
	hour, minute, err := splitClockTime("10:40")
	require.NoError(t, err)
	assert.Equal(t, 10, hour)
	assert.Equal(t, 40, minute)

	for _, bad := range []string{"", "10", "10:40:00", "24:00", "10:60", "aa:bb"} {
		_, _, err := splitClockTime(bad)
		assert.Error(t, err, "time %q", bad)
	}
}

func TestScheduleWeekly(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	_, err := scheduler.ScheduleWeekly("mon", "10:40", func() {})
	assert.NoError(t, err)
	_, err = scheduler.ScheduleWeekly("SUN", "21:30", func() {})
	assert.NoError(t, err)

	_, err = scheduler.ScheduleWeekly("monday", "10:40", func() {})
	assert.Error(t, err)
	_, err = scheduler.ScheduleWeekly("mon", "24:40", func() {})
	assert.Error(t, err)
}

func TestScheduleInterval(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	_, err := scheduler.ScheduleInterval(time.Minute, func() {})
	assert.NoError(t, err)

	_, err = scheduler.ScheduleInterval(0, func() {})
	assert.Error(t, err)
}
