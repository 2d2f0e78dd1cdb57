package loadplan

import (
	"context"
	"fmt"
	"sort"
)

// Plan runs the full core pipeline for one horizon: working-day expansion,
// demand placement, forward scheduling, and per-day packing. ctx is
// consulted only between days; a run is always millisecond-scale, so
// cancellation is a courtesy rather than a necessity. The core never
// raises on malformed input — a non-positive horizon simply expands to no
// working days and yields an empty Plan.
func Plan(ctx context.Context, in Input) (*PlanResult, error) {
	workingDays := ExpandWorkingDays(in.StartDate, in.Days, in.Calendar)

	placed := placeDemands(in.Orders, in.Products, in.Containers, in.Trucks, workingDays, in.Calendar)

	var fleetDeckArea int64
	for _, t := range in.Trucks {
		if placed.useNonDefaultTrucks || t.DefaultUse {
			fleetDeckArea += t.DeckArea()
		}
	}
	applyForwardScheduling(placed.demandsByDay, workingDays, fleetDeckArea)

	containerByID := make(map[ContainerID]Container, len(in.Containers))
	for _, c := range in.Containers {
		containerByID[c.ID] = c
	}

	dailyPlans := make(map[string]DailyPlan, len(workingDays))
	var unloadedTasks []UnloadedTask
	var totalTrips, totalWarnings int

	for _, day := range workingDays {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		key := dateKey(day)
		dayDemands := placed.demandsByDay[key]
		dayPlan := packDay(day, dayDemands, in.Trucks, containerByID, placed.useNonDefaultTrucks)

		dailyPlans[key] = dayPlan
		totalTrips += dayPlan.TotalTrips
		totalWarnings += len(dayPlan.Warnings)
		for _, d := range dayPlan.UnloadedDemands {
			unloadedTasks = append(unloadedTasks, UnloadedTask{LoadingDate: day, Demand: d})
		}
	}

	sort.SliceStable(unloadedTasks, func(i, j int) bool {
		if !unloadedTasks[i].LoadingDate.Equal(unloadedTasks[j].LoadingDate) {
			return unloadedTasks[i].LoadingDate.Before(unloadedTasks[j].LoadingDate)
		}
		return unloadedTasks[i].Demand.ProductCode < unloadedTasks[j].Demand.ProductCode
	})

	status := StatusNormal
	if totalWarnings > 0 || len(unloadedTasks) > 0 {
		status = StatusWarning
	}

	period := ""
	if len(workingDays) > 0 {
		period = fmt.Sprintf("%s ~ %s", dateKey(workingDays[0]), dateKey(workingDays[len(workingDays)-1]))
	}

	return &PlanResult{
		WorkingDates: workingDays,
		DailyPlans:   dailyPlans,
		Summary: Summary{
			TotalDays:           len(workingDays),
			TotalTrips:          totalTrips,
			TotalWarnings:       totalWarnings,
			UnloadedCount:       len(unloadedTasks),
			UseNonDefaultTrucks: placed.useNonDefaultTrucks,
			Status:              status,
		},
		UnloadedTasks: unloadedTasks,
		Period:        period,
	}, nil
}
