package loadplan

import "time"

// applyForwardScheduling is the Forward Scheduler (§4.C). Walking the
// horizon from last day to second day, any day whose cumulative demand
// footprint exceeds the fleet's deck area has its overflow — whole demands,
// taken in their existing order until the threshold is crossed — relocated
// to the previous working day. The first working day has nowhere earlier to
// send its own overflow; that is left for the Daily Packer to report as
// unloadable.
//
// This operates on whole demands only and never splits one; a demand larger
// than the entire fleet deck area is moved in full and becomes the overflow
// at the destination day in turn, so the walk still terminates at the
// horizon start.
func applyForwardScheduling(demandsByDay map[string][]Demand, workingDays []time.Time, fleetDeckArea int64) {
	for i := len(workingDays) - 1; i >= 1; i-- {
		key := dateKey(workingDays[i])
		demands := demandsByDay[key]

		var total int64
		for _, d := range demands {
			total += d.FloorArea
		}
		if total <= fleetDeckArea {
			continue
		}

		overflow := total - fleetDeckArea
		var moved, kept []Demand
		var movedArea int64
		for _, d := range demands {
			if movedArea < overflow {
				d.LoadingDate = workingDays[i-1]
				moved = append(moved, d)
				movedArea += d.FloorArea
				continue
			}
			kept = append(kept, d)
		}

		demandsByDay[key] = kept
		prevKey := dateKey(workingDays[i-1])
		demandsByDay[prevKey] = append(demandsByDay[prevKey], moved...)
	}
}
