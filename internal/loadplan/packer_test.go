package loadplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containerMap(cs ...Container) map[ContainerID]Container {
	m := make(map[ContainerID]Container, len(cs))
	for _, c := range cs {
		m[c.ID] = c
	}
	return m
}

func TestPackDay_SingleTruckNoStacking(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 10000, DeckDepthMM: 2500, DefaultUse: true}}
	containers := containerMap(Container{ID: 1, WidthMM: 1000, DepthMM: 1000, Stackable: false})
	demand := Demand{
		ProductCode: "P1", ContainerID: 1, NumContainers: 5, TotalQuantity: 50, Capacity: 10,
		FloorAreaPerContainer: 1000000, FloorArea: 5000000, Stackable: false, MaxStack: 1,
		AllowedTruckIDs: nil,
	}

	plan := packDay(time.Now(), []Demand{demand}, trucks, containers, false)

	require.Len(t, plan.Trucks, 1)
	assert.Equal(t, 5, plan.Trucks[0].Items[0].NumContainers)
	assert.Empty(t, plan.Warnings)
	assert.Empty(t, plan.UnloadedDemands)
}

func TestPackDay_StackConsolidation(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 2000, DeckDepthMM: 1000, DefaultUse: true}}
	containers := containerMap(Container{ID: 1, WidthMM: 1000, DepthMM: 1000, Stackable: true, MaxStack: 2})

	// Footprint per container is 1,000,000 mm^2; stacked two-high it is
	// 500,000 mm^2 effective. Each demand of 2 containers is one stack; the
	// second consolidates onto the truck already carrying container 1 and
	// pays for one additional stack (ceil(4/2) - ceil(2/2) = 1).
	d1 := Demand{ProductCode: "P1", ContainerID: 1, NumContainers: 2, TotalQuantity: 20, Capacity: 10,
		FloorAreaPerContainer: 1000000, Stackable: true, MaxStack: 2}
	d1.FloorArea = d1.stackedFootprint()
	d2 := Demand{ProductCode: "P2", ContainerID: 1, NumContainers: 2, TotalQuantity: 20, Capacity: 10,
		FloorAreaPerContainer: 1000000, Stackable: true, MaxStack: 2}
	d2.FloorArea = d2.stackedFootprint()

	plan := packDay(time.Now(), []Demand{d1, d2}, trucks, containers, false)

	require.Len(t, plan.Trucks, 1)
	assert.Empty(t, plan.UnloadedDemands)
	assert.Equal(t, int64(2000000), plan.Trucks[0].DeckAreaMM2)
	// Both demands share the same two stacks: 2,000,000 mm^2 of loaded area.
	assert.Equal(t, int64(2000000), plan.Trucks[0].LoadedAreaMM2)
	assert.Equal(t, 100.0, plan.Trucks[0].UtilizationPct)
}

func TestPackDay_TruckConstraintUnavailableWarns(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 10000, DeckDepthMM: 2500, DefaultUse: true}}
	containers := containerMap(Container{ID: 1, WidthMM: 1000, DepthMM: 1000})
	demand := Demand{
		ProductCode: "P1", ContainerID: 1, NumContainers: 1, TotalQuantity: 10, Capacity: 10,
		FloorAreaPerContainer: 1000000, FloorArea: 1000000, Stackable: false, MaxStack: 1,
		ProductAllowedTruckIDs: []TruckID{99},
		AllowedTruckIDs:        []TruckID{99},
	}

	plan := packDay(time.Now(), []Demand{demand}, trucks, containers, false)

	require.Len(t, plan.Warnings, 1)
	require.Len(t, plan.UnloadedDemands, 1)
	assert.Empty(t, plan.Trucks)
}

func TestPackDay_SplitsAcrossTwoTrucks(t *testing.T) {
	trucks := []Truck{
		{ID: 1, Name: "T1", DeckWidthMM: 1000, DeckDepthMM: 1000, DefaultUse: true},
		{ID: 2, Name: "T2", DeckWidthMM: 3000, DeckDepthMM: 1000, DefaultUse: true},
	}
	containers := containerMap(Container{ID: 1, WidthMM: 1000, DepthMM: 1000, Stackable: false})
	demand := Demand{
		ProductCode: "P1", ContainerID: 1, NumContainers: 4, TotalQuantity: 40, Capacity: 10,
		FloorAreaPerContainer: 1000000, FloorArea: 4000000, Stackable: false, MaxStack: 1,
	}

	plan := packDay(time.Now(), []Demand{demand}, trucks, containers, false)

	var totalContainers int
	for _, trip := range plan.Trucks {
		for _, item := range trip.Items {
			totalContainers += item.NumContainers
		}
	}
	assert.Equal(t, 4, totalContainers)
	assert.Empty(t, plan.UnloadedDemands)
}

func TestPackDay_OversizedDemandBecomesResidualNoPartialTrip(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 1000, DeckDepthMM: 1000, DefaultUse: true}}
	containers := containerMap(Container{ID: 1, WidthMM: 2000, DepthMM: 2000, Stackable: false})
	demand := Demand{
		ProductCode: "P1", ContainerID: 1, NumContainers: 1, TotalQuantity: 10, Capacity: 10,
		FloorAreaPerContainer: 4000000, FloorArea: 4000000, Stackable: false, MaxStack: 1,
	}

	plan := packDay(time.Now(), []Demand{demand}, trucks, containers, false)

	assert.Empty(t, plan.Trucks)
	require.Len(t, plan.UnloadedDemands, 1)
	assert.Equal(t, 1, plan.UnloadedDemands[0].NumContainers)
}
