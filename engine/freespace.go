package engine

import (
	"sort"

	"github.com/loadwise/cargopack/model"
)

// RemainingSpaces reports the usable empty boxes left in a loaded truck,
// largest first, plus the total unoccupied volume. The top surface is
// rebuilt from the placements, so every free box runs from a surface
// rectangle up to the roof; pockets under overhanging cargo are not
// listed. The listed boxes may overlap where strips meet, so the total is
// computed from the placements instead. Boxes thinner than minDim on any
// axis are dropped from the list as waste; minDim <= 0 falls back to the
// default.
func RemainingSpaces(truck model.TruckSpec, placed []model.PlacedItem, minDim float64) ([]model.FreeSpace, float64) {
	if minDim <= 0 {
		minDim = model.DefaultSettings().MinFreeDimension
	}
	total := truck.Volume()
	for _, p := range placed {
		total -= p.Volume()
	}
	if total < 0 {
		total = 0
	}

	// Replay lowest tops first so taller cargo carves the surface last
	order := make([]model.PlacedItem, len(placed))
	copy(order, placed)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Z+order[i].Orientation.Height < order[j].Z+order[j].Orientation.Height
	})

	idx := newSkylineIndex(truck)
	for _, p := range order {
		idx.update(p.X, p.Y, p.Orientation.Length, p.Orientation.Width, p.Z+p.Orientation.Height)
	}

	var spaces []model.FreeSpace
	for _, r := range idx.rects {
		height := truck.Height - r.z
		if r.width < minDim || r.depth < minDim || height < minDim {
			continue
		}
		spaces = append(spaces, model.FreeSpace{
			X:      r.x,
			Y:      r.y,
			Z:      r.z,
			Length: r.width,
			Width:  r.depth,
			Height: height,
		})
	}

	sort.SliceStable(spaces, func(i, j int) bool {
		return spaces[i].Volume() > spaces[j].Volume()
	})
	return spaces, total
}
