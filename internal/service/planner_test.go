package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRotation = map[string]map[string]string{
	"mon": {"10:40": "A1", "15:30": "B1"},
	"wed": {"10:40": "A2"},
	"sat": {"10:40": "X1"}, // weekends are never recognized
}

var testTimes = []string{"10:40", "15:30"}

func TestExpand_IsDeterministic(t *testing.T) {
	planner := NewPlanner(testRotation, testTimes)

	// 2025-01-06 is a Monday.
	first, err := planner.Expand("2025-01-06", "2025-01-12")
	require.NoError(t, err)
	second, err := planner.Expand("2025-01-06", "2025-01-12")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExpand_FullWeek(t *testing.T) {
	planner := NewPlanner(testRotation, testTimes)

	planned, err := planner.Expand("2025-01-06", "2025-01-12")
	require.NoError(t, err)

	// Monday contributes two slots, Wednesday one; the Saturday entry and
	// the empty weekdays contribute nothing.
	require.Len(t, planned, 3)
	assert.Equal(t, PlannedSlot{Date: "2025-01-06", Time: "10:40", SlotID: "A1"}, planned[0])
	assert.Equal(t, PlannedSlot{Date: "2025-01-06", Time: "15:30", SlotID: "B1"}, planned[1])
	assert.Equal(t, PlannedSlot{Date: "2025-01-08", Time: "10:40", SlotID: "A2"}, planned[2])
}

func TestExpand_InclusiveEndpoints(t *testing.T) {
	planner := NewPlanner(testRotation, testTimes)

	planned, err := planner.Expand("2025-01-06", "2025-01-06")
	require.NoError(t, err)
	assert.Len(t, planned, 2)
}

func TestExpand_UnrecognizedTimeOmitted(t *testing.T) {
	rotation := map[string]map[string]string{
		"mon": {"10:40": "A1", "09:13": "ODD"},
	}
	planner := NewPlanner(rotation, testTimes)

	planned, err := planner.Expand("2025-01-06", "2025-01-06")
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, "A1", planned[0].SlotID)
}

func TestExpand_WeekendOnlyRangeIsEmpty(t *testing.T) {
	planner := NewPlanner(testRotation, testTimes)

	planned, err := planner.Expand("2025-01-11", "2025-01-12")
	require.NoError(t, err)
	assert.Empty(t, planned)
}

func TestExpand_InvalidDates(t *testing.T) {
	planner := NewPlanner(testRotation, testTimes)

	_, err := planner.Expand("06.01.2025", "2025-01-12")
	assert.Error(t, err)
	_, err = planner.Expand("2025-01-06", "someday")
	assert.Error(t, err)
}
