package loadplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyForwardScheduling_MovesOverflowToPreviousDay(t *testing.T) {
	workingDays := []time.Time{mustDate("2026-08-03"), mustDate("2026-08-04"), mustDate("2026-08-05")}
	fleetDeckArea := int64(100)

	demandsByDay := map[string][]Demand{
		dateKey(workingDays[0]): {},
		dateKey(workingDays[1]): {},
		dateKey(workingDays[2]): {
			{ProductCode: "A", FloorArea: 60},
			{ProductCode: "B", FloorArea: 60},
		},
	}

	applyForwardScheduling(demandsByDay, workingDays, fleetDeckArea)

	lastDay := demandsByDay[dateKey(workingDays[2])]
	prevDay := demandsByDay[dateKey(workingDays[1])]

	require.Len(t, lastDay, 1)
	assert.Equal(t, "B", lastDay[0].ProductCode)
	require.Len(t, prevDay, 1)
	assert.Equal(t, "A", prevDay[0].ProductCode)
}

func TestApplyForwardScheduling_LeavesUnderCapacityDayAlone(t *testing.T) {
	workingDays := []time.Time{mustDate("2026-08-03"), mustDate("2026-08-04")}
	demandsByDay := map[string][]Demand{
		dateKey(workingDays[0]): {},
		dateKey(workingDays[1]): {{ProductCode: "A", FloorArea: 10}},
	}

	applyForwardScheduling(demandsByDay, workingDays, 100)

	assert.Len(t, demandsByDay[dateKey(workingDays[1])], 1)
	assert.Empty(t, demandsByDay[dateKey(workingDays[0])])
}

func TestApplyForwardScheduling_NeverMovesOffFirstDay(t *testing.T) {
	workingDays := []time.Time{mustDate("2026-08-03")}
	demandsByDay := map[string][]Demand{
		dateKey(workingDays[0]): {{ProductCode: "A", FloorArea: 1000}},
	}

	applyForwardScheduling(demandsByDay, workingDays, 100)

	assert.Len(t, demandsByDay[dateKey(workingDays[0])], 1)
}
