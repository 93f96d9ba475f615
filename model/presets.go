package model

// StandardTruckSpecs lists common cargo spaces (interior mm, payload kg).
// Useful as recommendation candidates when a caller has no fleet catalog.
var StandardTruckSpecs = []TruckSpec{
	{ID: "van", Name: "Cargo Van", Length: 2900, Width: 1500, Height: 1700, MaxWeight: 1000, CostPerDistance: 0.8},
	{ID: "truck-4m2", Name: "Box Truck 4.2m", Length: 4200, Width: 2000, Height: 2000, MaxWeight: 2500, CostPerDistance: 1.2},
	{ID: "truck-6m8", Name: "Box Truck 6.8m", Length: 6800, Width: 2300, Height: 2400, MaxWeight: 8000, CostPerDistance: 1.8},
	{ID: "truck-9m6", Name: "Box Truck 9.6m", Length: 9600, Width: 2300, Height: 2500, MaxWeight: 12000, CostPerDistance: 2.4},
	{ID: "trailer-13m", Name: "Semi Trailer 13m", Length: 13000, Width: 2400, Height: 2600, MaxWeight: 18000, CostPerDistance: 3.0},
	{ID: "container-40ft", Name: "Container 40ft", Length: 12030, Width: 2350, Height: 2390, MaxWeight: 26500, CostPerDistance: 3.5},
}

// StandardTrucks returns a copy of the preset catalog.
func StandardTrucks() []TruckSpec {
	trucks := make([]TruckSpec, len(StandardTruckSpecs))
	copy(trucks, StandardTruckSpecs)
	return trucks
}

// StandardTruck returns a preset by ID, or the highest-payload preset when
// the ID is unknown.
func StandardTruck(id string) TruckSpec {
	for _, t := range StandardTruckSpecs {
		if t.ID == id {
			return t
		}
	}
	return StandardTruckSpecs[len(StandardTruckSpecs)-1]
}
