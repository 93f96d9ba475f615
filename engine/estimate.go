package engine

import (
	"github.com/loadwise/cargopack/model"
)

// EstimateFleet answers how many trucks of one spec a manifest needs. It
// packs in auto mode, removes what fit, and repeats on the remainder with
// a fresh truck until everything is placed or a fresh truck takes nothing.
// Units that cannot fit this truck spec in any orientation go straight to
// the leftover list. Total cost assumes every truck drives the full
// distance.
func (o *Optimizer) EstimateFleet(truck model.TruckSpec, units []model.CartonUnit, distance float64) (*model.FleetEstimate, error) {
	if err := model.ValidateTruck(truck); err != nil {
		return nil, err
	}
	if len(units) > 0 {
		if err := model.ValidateUnits(units); err != nil {
			return nil, err
		}
	}

	estimate := &model.FleetEstimate{Truck: truck, Distance: distance}

	var remaining []model.CartonUnit
	for _, u := range units {
		if !fitsEmptyTruck(truck, orientationsFor(u.Spec)) {
			estimate.Leftover = append(estimate.Leftover, u)
			continue
		}
		remaining = append(remaining, u)
	}

	for len(remaining) > 0 {
		res, err := o.PackUnits(truck, remaining, model.StrategyAuto)
		if err != nil {
			return nil, err
		}
		if len(res.Placed) == 0 {
			// A fresh truck took nothing, so the rest never ships
			estimate.Leftover = append(estimate.Leftover, remaining...)
			break
		}
		estimate.Results = append(estimate.Results, res)

		packed := make(map[string]bool, len(res.Placed))
		for _, p := range res.Placed {
			packed[p.Unit.UnitID] = true
		}
		var next []model.CartonUnit
		for _, u := range remaining {
			if !packed[u.UnitID] {
				next = append(next, u)
			}
		}
		remaining = next
	}

	estimate.TrucksNeeded = len(estimate.Results)
	estimate.TotalCost = float64(estimate.TrucksNeeded) * truck.CostPerDistance * distance
	if n := len(estimate.Results); n > 0 {
		var sum float64
		for _, r := range estimate.Results {
			sum += r.VolumeUtilization
		}
		estimate.MeanVolumeUtil = sum / float64(n)
	}

	o.Log.Debug().
		Str("truck", truck.ID).
		Int("trucks_needed", estimate.TrucksNeeded).
		Int("leftover", len(estimate.Leftover)).
		Msg("fleet estimate complete")
	return estimate, nil
}
