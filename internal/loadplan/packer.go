package loadplan

import (
	"fmt"
	"sort"
	"time"
)

// truckState tracks one truck's remaining capacity and load across a single
// working day's packing run.
type truckState struct {
	truck                 Truck
	remainingArea         int64
	loadedContainerCounts map[ContainerID]int
	items                 []LoadedItem
}

func newTruckState(t Truck) *truckState {
	return &truckState{
		truck:                 t,
		remainingArea:         t.DeckArea(),
		loadedContainerCounts: make(map[ContainerID]int),
	}
}

// packDay is the Daily Packer (§4.D). It does not fail: a demand that
// cannot be placed after exhausting every candidate truck becomes part of
// the day's unloaded demands, never an error.
func packDay(date time.Time, demands []Demand, trucks []Truck, containers map[ContainerID]Container, useNonDefaultTrucks bool) DailyPlan {
	availableIDs := make([]TruckID, 0, len(trucks))
	states := make(map[TruckID]*truckState, len(trucks))
	for _, t := range trucks {
		if !useNonDefaultTrucks && !t.DefaultUse {
			continue
		}
		availableIDs = append(availableIDs, t.ID)
		states[t.ID] = newTruckState(t)
	}

	ordered := sortDemandsForPacking(demands, states, availableIDs)

	var warnings []string
	var unloaded []Demand

	for _, demand := range ordered {
		candidateIDs := candidateTrucks(demand, availableIDs)
		if len(demand.AllowedTruckIDs) > 0 && len(candidateIDs) == 0 {
			warnings = append(warnings, fmt.Sprintf("truck constraint %v unavailable for %s", demand.AllowedTruckIDs, demand.ProductCode))
			unloaded = append(unloaded, demand)
			continue
		}

		residual, _ := placeDemand(demand, candidateIDs, states, containers)
		if residual.NumContainers > 0 {
			warnings = append(warnings, fmt.Sprintf("unable to load %d container(s) of %s", residual.NumContainers, residual.ProductCode))
			unloaded = append(unloaded, residual)
		}
	}

	var trips []TruckTrip
	for _, id := range availableIDs {
		st := states[id]
		if len(st.items) == 0 {
			continue
		}
		trips = append(trips, buildTruckTrip(st, containers))
	}

	return DailyPlan{
		Date:            date,
		Trucks:          trips,
		TotalTrips:      len(trips),
		Warnings:        warnings,
		UnloadedDemands: unloaded,
	}
}

// demandClass is the 3-way priority classification from §4.D.
type demandClass int

const (
	classPriority demandClass = iota
	classTruckConstrained
	classUnconstrained
)

type sortKey struct {
	class         demandClass
	truckTieBreak TruckID
	productCode   string
}

// sortDemandsForPacking orders a day's demands by the composite key in
// §4.D: priority-product demand first (tie-broken by the lowest matching
// truck id, then product code), then truck-constrained demand (tie-broken
// by the demand's first product-declared allowed truck, then product
// code), then everything else (tie-broken by product code). The sort is
// stable, so demands that tie on every key keep their input order.
type keyedDemand struct {
	demand Demand
	key    sortKey
}

func sortDemandsForPacking(demands []Demand, states map[TruckID]*truckState, availableIDs []TruckID) []Demand {
	keyed := make([]keyedDemand, len(demands))
	for i, d := range demands {
		var key sortKey
		if truckID, ok := lowestPriorityMatch(d.ProductCode, states, availableIDs); ok {
			key = sortKey{class: classPriority, truckTieBreak: truckID, productCode: d.ProductCode}
		} else if len(d.ProductAllowedTruckIDs) > 0 {
			key = sortKey{class: classTruckConstrained, truckTieBreak: d.ProductAllowedTruckIDs[0], productCode: d.ProductCode}
		} else {
			key = sortKey{class: classUnconstrained, productCode: d.ProductCode}
		}
		keyed[i] = keyedDemand{demand: d, key: key}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		ki, kj := keyed[i].key, keyed[j].key
		if ki.class != kj.class {
			return ki.class < kj.class
		}
		if ki.class != classUnconstrained && ki.truckTieBreak != kj.truckTieBreak {
			return ki.truckTieBreak < kj.truckTieBreak
		}
		return ki.productCode < kj.productCode
	})

	out := make([]Demand, len(keyed))
	for i, kd := range keyed {
		out[i] = kd.demand
	}
	return out
}

func lowestPriorityMatch(productCode string, states map[TruckID]*truckState, availableIDs []TruckID) (TruckID, bool) {
	best := TruckID(0)
	found := false
	for _, id := range availableIDs {
		st := states[id]
		if !st.truck.HasPriorityProduct(productCode) {
			continue
		}
		if !found || id < best {
			best = id
			found = true
		}
	}
	return best, found
}

// candidateTrucks intersects a demand's allowed trucks with the currently
// available fleet, preserving available-fleet order. An empty allow list
// means every available truck is a candidate.
func candidateTrucks(demand Demand, availableIDs []TruckID) []TruckID {
	if len(demand.AllowedTruckIDs) == 0 {
		return append([]TruckID(nil), availableIDs...)
	}
	allowed := make(map[TruckID]bool, len(demand.AllowedTruckIDs))
	for _, id := range demand.AllowedTruckIDs {
		allowed[id] = true
	}
	out := make([]TruckID, 0, len(demand.AllowedTruckIDs))
	for _, id := range availableIDs {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

type candidateClass int

const (
	candidatePriority candidateClass = iota
	candidateConsolidation
	candidateOther
)

// rankCandidates orders candidate trucks for one demand by §4.D step 2:
// trucks already preferring this product first, then trucks already
// carrying this container (a consolidation opportunity), then everything
// else; within a class, larger remaining area goes first, ties broken by
// truck id for determinism.
func rankCandidates(demand Demand, candidateIDs []TruckID, states map[TruckID]*truckState) []TruckID {
	out := append([]TruckID(nil), candidateIDs...)
	classOf := func(id TruckID) candidateClass {
		st := states[id]
		if st.truck.HasPriorityProduct(demand.ProductCode) {
			return candidatePriority
		}
		if st.loadedContainerCounts[demand.ContainerID] > 0 {
			return candidateConsolidation
		}
		return candidateOther
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := classOf(out[i]), classOf(out[j])
		if ci != cj {
			return ci < cj
		}
		ai, aj := states[out[i]].remainingArea, states[out[j]].remainingArea
		if ai != aj {
			return ai > aj
		}
		return out[i] < out[j]
	})
	return out
}

// placeDemand walks a demand's ranked candidate trucks, attempting stack
// consolidation, then full placement, then split placement (§4.D step 3).
// It returns whatever residual of the demand remains unplaced (NumContainers
// 0 means fully placed).
func placeDemand(demand Demand, candidateIDs []TruckID, states map[TruckID]*truckState, containers map[ContainerID]Container) (Demand, bool) {
	current := demand.clone()
	placedAny := false
	splitOccurred := false

	for current.NumContainers > 0 {
		ranked := rankCandidates(current, candidateIDs, states)
		progressed := false

		for _, id := range ranked {
			st := states[id]

			if !splitOccurred && current.Stackable {
				if existing, ok := st.loadedContainerCounts[current.ContainerID]; ok && existing > 0 {
					newTotal := existing + current.NumContainers
					addlStacks := ceilDiv(newTotal, current.MaxStack) - ceilDiv(existing, current.MaxStack)
					addlArea := int64(addlStacks) * current.FloorAreaPerContainer
					if addlArea <= st.remainingArea {
						item := current.toLoadedItem(id, current.NumContainers, current.TotalQuantity)
						st.items = append(st.items, item)
						st.remainingArea -= addlArea
						st.loadedContainerCounts[current.ContainerID] = newTotal
						current.NumContainers = 0
						current.TotalQuantity = 0
						placedAny = true
						progressed = true
						break
					}
				}
			}

			if current.stackedFootprint() <= st.remainingArea {
				item := current.toLoadedItem(id, current.NumContainers, current.TotalQuantity)
				st.items = append(st.items, item)
				st.remainingArea -= current.stackedFootprint()
				st.loadedContainerCounts[current.ContainerID] += current.NumContainers
				current.NumContainers = 0
				current.TotalQuantity = 0
				placedAny = true
				progressed = true
				break
			}

			var loadableContainers int
			if current.Stackable {
				maxStacksFit := st.remainingArea / current.FloorAreaPerContainer
				loadableContainers = int(maxStacksFit) * current.MaxStack
			} else {
				loadableContainers = int(st.remainingArea / current.FloorAreaPerContainer)
			}
			if loadableContainers > 0 && loadableContainers < current.NumContainers {
				splitQty := loadableContainers * current.Capacity
				splitArea := stackedFloorArea(loadableContainers, current.FloorAreaPerContainer, current.Stackable, current.MaxStack)

				item := current.toLoadedItem(id, loadableContainers, splitQty)
				st.items = append(st.items, item)
				st.remainingArea -= splitArea
				st.loadedContainerCounts[current.ContainerID] += loadableContainers

				current.NumContainers -= loadableContainers
				current.TotalQuantity -= splitQty
				current.FloorArea = current.stackedFootprint()
				placedAny = true
				splitOccurred = true
				progressed = true
				continue
			}
			// Neither consolidation, full placement, nor a useful split
			// fits on this candidate; try the next one.
		}

		if !progressed {
			break
		}
	}

	return current, placedAny
}

func buildTruckTrip(st *truckState, containers map[ContainerID]Container) TruckTrip {
	type group struct {
		totalContainers int
		totalQuantity   int
		totalVolume     int64
		totalWeightKg   float64
	}
	groups := make(map[ContainerID]*group)
	var orderedContainerIDs []ContainerID

	for _, item := range st.items {
		g, ok := groups[item.ContainerID]
		if !ok {
			g = &group{}
			groups[item.ContainerID] = g
			orderedContainerIDs = append(orderedContainerIDs, item.ContainerID)
		}
		g.totalContainers += item.NumContainers
		g.totalQuantity += item.TotalQuantity
		if c, ok := containers[item.ContainerID]; ok {
			g.totalVolume += c.Volume() * int64(item.NumContainers)
			g.totalWeightKg += c.MaxGrossWeightKg * float64(item.NumContainers)
		}
	}

	var loadedArea, totalVolume int64
	var totalWeightKg float64
	for _, cid := range orderedContainerIDs {
		g := groups[cid]
		c := containers[cid]
		loadedArea += stackedFloorArea(g.totalContainers, c.Footprint(), c.Stackable, c.EffectiveMaxStack())
		totalVolume += g.totalVolume
		totalWeightKg += g.totalWeightKg
	}

	deckArea := st.truck.DeckArea()
	utilization := percentage(loadedArea, deckArea)
	volumeUtil := percentage(totalVolume, st.truck.DeckVolume())
	weightUtil := percentageFloat(totalWeightKg, st.truck.MaxWeightKg)

	items := make([]LoadedItem, len(st.items))
	for i, item := range st.items {
		item.VolumeUtilizationPct = volumeUtil
		item.WeightUtilizationPct = weightUtil
		items[i] = item
	}

	return TruckTrip{
		TruckID:              st.truck.ID,
		TruckName:            st.truck.Name,
		Items:                items,
		DeckAreaMM2:          deckArea,
		LoadedAreaMM2:        loadedArea,
		UtilizationPct:       utilization,
		VolumeUtilizationPct: volumeUtil,
		WeightUtilizationPct: weightUtil,
	}
}

func percentage(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return roundTo1Decimal(100 * float64(numerator) / float64(denominator))
}

func percentageFloat(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return roundTo1Decimal(100 * numerator / denominator)
}

func roundTo1Decimal(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
