package loadplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicInput() Input {
	return Input{
		StartDate: mustDate("2026-08-03"),
		Days:      5,
		Trucks: []Truck{
			{ID: 1, Name: "T1", DeckWidthMM: 10000, DeckDepthMM: 2500, MaxWeightKg: 5000, DefaultUse: true},
		},
		Products: []Product{
			{ID: 1, Code: "P1", Capacity: 10, ContainerID: 1},
		},
		Containers: []Container{
			{ID: 1, WidthMM: 1000, DepthMM: 1000, HeightMM: 1000, MaxGrossWeightKg: 500, Stackable: false},
		},
		Orders: []Order{
			{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-05"), OrderQuantity: 30},
		},
	}
}

func TestPlan_EmptyOrdersYieldsEmptyPlan(t *testing.T) {
	in := basicInput()
	in.Orders = nil

	plan, err := Plan(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 0, plan.Summary.TotalTrips)
	assert.Equal(t, 0, plan.Summary.UnloadedCount)
	assert.Equal(t, StatusNormal, plan.Summary.Status)
}

func TestPlan_SingleOrderFillsOneTruck(t *testing.T) {
	plan, err := Plan(context.Background(), basicInput())

	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.TotalTrips)
	assert.Equal(t, StatusNormal, plan.Summary.Status)
	assert.Empty(t, plan.UnloadedTasks)
}

func TestPlan_NonPositiveDaysYieldsEmptyPlan(t *testing.T) {
	in := basicInput()
	in.Days = 0

	plan, err := Plan(context.Background(), in)

	require.NoError(t, err)
	assert.Empty(t, plan.WorkingDates)
	assert.Equal(t, 0, plan.Summary.TotalTrips)
}

func TestPlan_IsDeterministicAcrossRepeatedCalls(t *testing.T) {
	in := basicInput()

	first, err := Plan(context.Background(), in)
	require.NoError(t, err)
	second, err := Plan(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Period, second.Period)
	for key, dp := range first.DailyPlans {
		other, ok := second.DailyPlans[key]
		require.True(t, ok)
		assert.Equal(t, dp.TotalTrips, other.TotalTrips)
		assert.Equal(t, len(dp.Warnings), len(other.Warnings))
	}
}

func TestPlan_OversizedOrderBecomesResidualWarning(t *testing.T) {
	in := basicInput()
	in.Orders = []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-05"), OrderQuantity: 100000}}

	plan, err := Plan(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, StatusWarning, plan.Summary.Status)
	assert.NotEmpty(t, plan.UnloadedTasks)
}

func TestPlan_QuantityConservedAcrossLoadedAndUnloaded(t *testing.T) {
	in := basicInput()
	in.Orders = []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-05"), OrderQuantity: 55}}

	plan, err := Plan(context.Background(), in)
	require.NoError(t, err)

	var loadedQty int
	for _, dp := range plan.DailyPlans {
		for _, trip := range dp.Trucks {
			for _, item := range trip.Items {
				loadedQty += item.TotalQuantity
			}
		}
	}
	var unloadedQty int
	for _, task := range plan.UnloadedTasks {
		unloadedQty += task.Demand.TotalQuantity
	}

	assert.Equal(t, 55, loadedQty+unloadedQty)
}

func TestPlan_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Plan(ctx, basicInput())

	assert.Error(t, err)
}
