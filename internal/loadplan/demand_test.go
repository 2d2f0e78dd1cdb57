package loadplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPlaceDemands_ArrivalOffsetShiftsLoadingDate(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 10000, DeckDepthMM: 2500, DefaultUse: true, ArrivalDayOffset: 2}}
	containers := []Container{{ID: 1, WidthMM: 1000, DepthMM: 1000, Stackable: false}}
	products := []Product{{ID: 1, Code: "P1", Capacity: 10, ContainerID: 1}}
	orders := []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-10"), OrderQuantity: 10}}

	workingDays := ExpandWorkingDays(mustDate("2026-08-01"), 14, nil)
	result := placeDemands(orders, products, containers, trucks, workingDays, nil)

	key := dateKey(mustDate("2026-08-08"))
	require.Contains(t, result.demandsByDay, key)
	require.Len(t, result.demandsByDay[key], 1)
	assert.Equal(t, "P1", result.demandsByDay[key][0].ProductCode)
}

func TestPlaceDemands_RollsBackOffNonWorkingDay(t *testing.T) {
	trucks := []Truck{{ID: 1, Name: "T1", DeckWidthMM: 10000, DeckDepthMM: 2500, DefaultUse: true, ArrivalDayOffset: 0}}
	containers := []Container{{ID: 1, WidthMM: 1000, DepthMM: 1000, Stackable: false}}
	products := []Product{{ID: 1, Code: "P1", Capacity: 10, ContainerID: 1}}
	// 2026-08-02 is a Sunday.
	orders := []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-02"), OrderQuantity: 10}}

	cal := weekendCalendar{}
	workingDays := ExpandWorkingDays(mustDate("2026-07-27"), 5, cal)
	result := placeDemands(orders, products, containers, trucks, workingDays, cal)

	key := dateKey(mustDate("2026-07-31"))
	require.Contains(t, result.demandsByDay, key)
	assert.True(t, result.demandsByDay[key][0].IsAdvanced())
}

func TestPlaceDemands_DropsUnknownProduct(t *testing.T) {
	trucks := []Truck{{ID: 1, DefaultUse: true}}
	orders := []Order{{ID: "O1", ProductID: 99, DeliveryDate: mustDate("2026-08-10"), OrderQuantity: 10}}

	workingDays := ExpandWorkingDays(mustDate("2026-08-01"), 5, nil)
	result := placeDemands(orders, nil, nil, trucks, workingDays, nil)

	assert.Empty(t, result.demandsByDay)
}

func TestPlaceDemands_DropsNonPositiveQuantity(t *testing.T) {
	trucks := []Truck{{ID: 1, DefaultUse: true}}
	products := []Product{{ID: 1, Code: "P1", Capacity: 10, ContainerID: 1}}
	containers := []Container{{ID: 1, WidthMM: 1000, DepthMM: 1000}}
	orders := []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-10"), OrderQuantity: 0}}

	workingDays := ExpandWorkingDays(mustDate("2026-08-01"), 5, nil)
	result := placeDemands(orders, products, containers, trucks, workingDays, nil)

	assert.Empty(t, result.demandsByDay)
}

func TestPlaceDemands_UsesDefaultFleetWhenProductHasNoAllowList(t *testing.T) {
	trucks := []Truck{
		{ID: 1, DefaultUse: true, DeckWidthMM: 10000, DeckDepthMM: 2500},
		{ID: 2, DefaultUse: false, DeckWidthMM: 20000, DeckDepthMM: 2500},
	}
	products := []Product{{ID: 1, Code: "P1", Capacity: 10, ContainerID: 1}}
	containers := []Container{{ID: 1, WidthMM: 1000, DepthMM: 1000}}
	orders := []Order{{ID: "O1", ProductID: 1, DeliveryDate: mustDate("2026-08-10"), OrderQuantity: 10}}

	workingDays := ExpandWorkingDays(mustDate("2026-08-01"), 14, nil)
	result := placeDemands(orders, products, containers, trucks, workingDays, nil)

	key := dateKey(mustDate("2026-08-10"))
	require.Contains(t, result.demandsByDay, key)
	d := result.demandsByDay[key][0]
	assert.Empty(t, d.ProductAllowedTruckIDs)
	assert.Equal(t, []TruckID{1}, d.AllowedTruckIDs)
}
