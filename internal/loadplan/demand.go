package loadplan

import "time"

// placementResult is the Demand Placer's output (§4.B): demands bucketed by
// loading day, and the horizon-wide decision on whether reserve trucks are
// needed.
type placementResult struct {
	demandsByDay        map[string][]Demand
	useNonDefaultTrucks bool
}

// placeDemands implements the Demand Placer. Bad input records are dropped
// silently, per the Drop category in §7 of the specification: missing
// product, missing container, non-positive quantity, or an order whose
// loading day cannot be resolved to a working day inside the horizon.
func placeDemands(orders []Order, products []Product, containers []Container, trucks []Truck, workingDays []time.Time, cal WorkingDayCalendar) placementResult {
	productByID := make(map[ProductID]Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	containerByID := make(map[ContainerID]Container, len(containers))
	for _, c := range containers {
		containerByID[c.ID] = c
	}
	truckByID := make(map[TruckID]Truck, len(trucks))
	for _, t := range trucks {
		truckByID[t.ID] = t
	}

	defaultFleetIDs := make([]TruckID, 0, len(trucks))
	var defaultDeckArea int64
	for _, t := range trucks {
		if t.DefaultUse {
			defaultFleetIDs = append(defaultFleetIDs, t.ID)
			defaultDeckArea += t.DeckArea()
		}
	}

	workingDaySet := make(map[string]bool, len(workingDays))
	for _, d := range workingDays {
		workingDaySet[dateKey(d)] = true
	}

	demandsByDay := make(map[string][]Demand)
	var totalFloorArea int64

	for _, order := range orders {
		if order.OrderQuantity <= 0 {
			continue
		}
		product, ok := productByID[order.ProductID]
		if !ok {
			continue
		}
		container, ok := containerByID[product.ContainerID]
		if !ok {
			continue
		}

		resolvedAllowed := product.UsedTruckIDs
		if len(resolvedAllowed) == 0 {
			resolvedAllowed = defaultFleetIDs
		}
		if len(resolvedAllowed) == 0 {
			continue
		}

		firstTruck, ok := truckByID[resolvedAllowed[0]]
		if !ok {
			continue
		}

		numContainers := ceilDiv(order.OrderQuantity, product.Capacity)
		footprint := container.Footprint()
		floorArea := stackedFloorArea(numContainers, footprint, container.Stackable, container.MaxStack)

		originalDate := normalizeDate(order.DeliveryDate).AddDate(0, 0, -firstTruck.ArrivalDayOffset)
		loadingDate, ok := rollBackToWorkingDay(originalDate, cal)
		if !ok {
			continue
		}
		key := dateKey(loadingDate)
		if !workingDaySet[key] {
			continue
		}

		demand := Demand{
			ProductID:              product.ID,
			ProductCode:            product.Code,
			ContainerID:            container.ID,
			NumContainers:          numContainers,
			TotalQuantity:          order.OrderQuantity,
			Capacity:               product.Capacity,
			FloorAreaPerContainer:  footprint,
			FloorArea:              floorArea,
			DeliveryDate:           normalizeDate(order.DeliveryDate),
			LoadingDate:            loadingDate,
			OriginalDate:           normalizeDate(originalDate),
			ProductAllowedTruckIDs: append([]TruckID(nil), product.UsedTruckIDs...),
			AllowedTruckIDs:        append([]TruckID(nil), resolvedAllowed...),
			Stackable:              container.Stackable,
			MaxStack:               container.EffectiveMaxStack(),
		}

		demandsByDay[key] = append(demandsByDay[key], demand)
		totalFloorArea += floorArea
	}

	var avgFloorArea float64
	if len(workingDays) > 0 {
		avgFloorArea = float64(totalFloorArea) / float64(len(workingDays))
	}

	return placementResult{
		demandsByDay:        demandsByDay,
		useNonDefaultTrucks: avgFloorArea > float64(defaultDeckArea),
	}
}
