package engine

import (
	"context"
	"sort"

	"github.com/loadwise/cargopack/model"
)

// packLAFF is the largest-area-fit-first greedy: queued by biggest face
// first, each unit takes the first feasible anchor in raster order (z, then
// y, then x over edge-derived coordinates). No index, no scoring; this is
// the fallback that must finish when the time budget is gone.
func packLAFF(ctx context.Context, space *packSpace, queue []packUnit) ([]model.UnpackedCarton, error) {
	var unpacked []model.UnpackedCarton

	for _, pu := range queue {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !fitsEmptyTruck(space.truck, pu.choices) {
			unpacked = append(unpacked, oversized(pu.unit))
			continue
		}
		if !space.fitsWeight(pu.unit.Spec.Weight) {
			unpacked = append(unpacked, overweight(pu.unit, space))
			continue
		}

		hit, ok, supportFail := scanRaster(space, pu)
		if !ok {
			unpacked = append(unpacked, unplaceable(pu.unit, supportFail))
			continue
		}
		space.commit(pu.unit, hit.x, hit.y, hit.z, hit.choice, hit.eval)
	}
	return unpacked, nil
}

// rasterHit is the first feasible position found by scanRaster.
type rasterHit struct {
	choice  orientationChoice
	x, y, z float64
	eval    supportEval
}

// scanRaster walks anchor coordinates derived from the truck origin and the
// far faces of placed boxes. Orientations are tried widest footprint first
// so cargo lands on its largest face.
func scanRaster(space *packSpace, pu packUnit) (rasterHit, bool, bool) {
	xs, ys, zs := anchorAxes(space)
	weight := pu.unit.Spec.Weight
	supportFail := false

	choices := make([]orientationChoice, len(pu.choices))
	copy(choices, pu.choices)
	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].o.Length*choices[i].o.Width > choices[j].o.Length*choices[j].o.Width
	})

	for _, choice := range choices {
		for _, z := range zs {
			if z+choice.o.Height > space.truck.Height+epsilon {
				continue
			}
			for _, y := range ys {
				if y+choice.o.Width > space.truck.Width+epsilon {
					continue
				}
				for _, x := range xs {
					if x+choice.o.Length > space.truck.Length+epsilon {
						continue
					}
					eval, ok, sf := space.feasible(x, y, z, choice.o, weight)
					if sf {
						supportFail = true
					}
					if ok {
						return rasterHit{choice: choice, x: x, y: y, z: z, eval: eval}, true, supportFail
					}
				}
			}
		}
	}
	return rasterHit{}, false, supportFail
}

// anchorAxes collects the candidate coordinates per axis: the origin plus
// each placed box's far face, sorted ascending and de-duplicated.
func anchorAxes(space *packSpace) (xs, ys, zs []float64) {
	xs = []float64{0}
	ys = []float64{0}
	zs = []float64{0}
	for i := range space.placed {
		b := &space.placed[i]
		xs = appendCoord(xs, b.maxX())
		ys = appendCoord(ys, b.maxY())
		zs = appendCoord(zs, b.top())
	}
	sort.Float64s(xs)
	sort.Float64s(ys)
	sort.Float64s(zs)
	return xs, ys, zs
}

func appendCoord(coords []float64, v float64) []float64 {
	for _, c := range coords {
		if d := c - v; d > -epsilon && d < epsilon {
			return coords
		}
	}
	return append(coords, v)
}
