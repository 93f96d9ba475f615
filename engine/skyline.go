package engine

import (
	"context"
	"fmt"

	"github.com/loadwise/cargopack/model"
)

// shelfRect is one rectangle of the current top-of-stack surface, open from
// its z upward.
type shelfRect struct {
	x, y, z      float64
	width, depth float64
}

// skylineIndex tracks the top surface of the cargo as a set of shelf
// rectangles, seeded with the truck floor. Rectangles may overlap
// (maximal-strip splitting); collision checks against committed boxes keep
// placements sound regardless.
type skylineIndex struct {
	truck model.TruckSpec
	rects []shelfRect
}

func newSkylineIndex(truck model.TruckSpec) *skylineIndex {
	return &skylineIndex{
		truck: truck,
		rects: []shelfRect{{x: 0, y: 0, z: 0, width: truck.Length, depth: truck.Width}},
	}
}

// skylineCandidate is the best placement found by a query.
type skylineCandidate struct {
	x, y, z float64
	choice  orientationChoice
	eval    supportEval
	waste   float64
}

// query scans every allowed orientation against every shelf rectangle and
// returns the lowest feasible placement, ranked by z ascending then by
// footprint waste (rect area minus footprint area) ascending. Ties keep the
// first candidate in orientation-then-rectangle order, which makes repeated
// runs byte-identical. The second return is whether anything feasible was
// found; the third is whether some candidate failed only the minimum
// support constraint.
func (idx *skylineIndex) query(space *packSpace, pu packUnit) (skylineCandidate, bool, bool) {
	var best skylineCandidate
	found := false
	supportFail := false
	weight := pu.unit.Spec.Weight

	for _, choice := range pu.choices {
		for _, r := range idx.rects {
			if choice.o.Length > r.width+epsilon || choice.o.Width > r.depth+epsilon {
				continue
			}
			eval, ok, sf := space.feasible(r.x, r.y, r.z, choice.o, weight)
			if sf {
				supportFail = true
			}
			if !ok {
				continue
			}
			waste := r.width*r.depth - choice.o.Length*choice.o.Width
			if !found || lowerOrTighter(r.z, waste, best) {
				best = skylineCandidate{x: r.x, y: r.y, z: r.z, choice: choice, eval: eval, waste: waste}
				found = true
			}
		}
	}
	return best, found, supportFail
}

// lowerOrTighter ranks a candidate strictly better than the current best:
// lower shelf first, then less wasted footprint.
func lowerOrTighter(z, waste float64, best skylineCandidate) bool {
	if z < best.z-epsilon {
		return true
	}
	if z > best.z+epsilon {
		return false
	}
	return waste < best.waste-epsilon
}

// update carves the placed footprint out of every overlapping shelf
// rectangle, leaving up to four maximal remainder strips per rectangle at
// their own z, and opens a new shelf on the placed top face. Shelves
// contained in another at the same level are pruned.
func (idx *skylineIndex) update(x, y, length, width, top float64) {
	foot := shelfRect{x: x, y: y, width: length, depth: width}
	var next []shelfRect

	for _, r := range idx.rects {
		if !shelvesOverlap(r, foot) {
			next = append(next, r)
			continue
		}
		// Left strip (full depth of original shelf)
		if foot.x > r.x+epsilon {
			next = append(next, shelfRect{x: r.x, y: r.y, z: r.z, width: foot.x - r.x, depth: r.depth})
		}
		// Right strip (full depth of original shelf)
		if foot.x+foot.width < r.x+r.width-epsilon {
			next = append(next, shelfRect{
				x: foot.x + foot.width, y: r.y, z: r.z,
				width: r.x + r.width - (foot.x + foot.width), depth: r.depth,
			})
		}
		// Front strip (full width of original shelf)
		if foot.y > r.y+epsilon {
			next = append(next, shelfRect{x: r.x, y: r.y, z: r.z, width: r.width, depth: foot.y - r.y})
		}
		// Back strip (full width of original shelf)
		if foot.y+foot.depth < r.y+r.depth-epsilon {
			next = append(next, shelfRect{
				x: r.x, y: foot.y + foot.depth, z: r.z,
				width: r.width, depth: r.y + r.depth - (foot.y + foot.depth),
			})
		}
	}

	if top < idx.truck.Height-epsilon {
		next = append(next, shelfRect{x: x, y: y, z: top, width: length, depth: width})
	}
	idx.rects = pruneShelves(next)
}

// shelvesOverlap returns true when two shelves overlap in XY (not just
// touch).
func shelvesOverlap(a, b shelfRect) bool {
	return a.x < b.x+b.width-epsilon && a.x+a.width > b.x+epsilon &&
		a.y < b.y+b.depth-epsilon && a.y+a.depth > b.y+epsilon
}

// pruneShelves drops shelves fully contained in another shelf at the same
// level. Exact duplicates keep their first occurrence.
func pruneShelves(rects []shelfRect) []shelfRect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]shelfRect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !sameLevel(a, b) || !containsShelf(b, a) {
				continue
			}
			if containsShelf(a, b) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

func sameLevel(a, b shelfRect) bool {
	d := a.z - b.z
	return d > -epsilon && d < epsilon
}

// containsShelf returns true if outer fully contains inner in XY.
func containsShelf(outer, inner shelfRect) bool {
	return outer.x <= inner.x+epsilon && outer.y <= inner.y+epsilon &&
		outer.x+outer.width >= inner.x+inner.width-epsilon &&
		outer.y+outer.depth >= inner.y+inner.depth-epsilon
}

// packSkyline places queued units through the skyline index. The queue
// order and each unit's orientation choices belong to the caller, which is
// what lets the sequence optimizer drive this as its fitness oracle.
func packSkyline(ctx context.Context, space *packSpace, queue []packUnit) ([]model.UnpackedCarton, error) {
	idx := newSkylineIndex(space.truck)
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

		cand, ok, supportFail := idx.query(space, pu)
		if !ok {
			unpacked = append(unpacked, unplaceable(pu.unit, supportFail))
			continue
		}
		space.commit(pu.unit, cand.x, cand.y, cand.z, cand.choice, cand.eval)
		idx.update(cand.x, cand.y, cand.choice.o.Length, cand.choice.o.Width, cand.z+cand.choice.o.Height)
	}
	return unpacked, nil
}

// oversized tags a unit no orientation of which fits the bare truck.
func oversized(unit model.CartonUnit) model.UnpackedCarton {
	return model.UnpackedCarton{
		Unit:   unit,
		Reason: model.ReasonGeometryTooLarge,
		Detail: "exceeds the cargo space in every allowed orientation",
	}
}

// overweight tags a unit blocked by the payload cap.
func overweight(unit model.CartonUnit, space *packSpace) model.UnpackedCarton {
	return model.UnpackedCarton{
		Unit:   unit,
		Reason: model.ReasonWeightExceeded,
		Detail: fmt.Sprintf("would raise payload to %.1f of %.1f kg", space.weight+unit.Spec.Weight, space.truck.MaxWeight),
	}
}

// unplaceable tags a unit that fit nowhere in the current arrangement.
func unplaceable(unit model.CartonUnit, supportFail bool) model.UnpackedCarton {
	if supportFail {
		return model.UnpackedCarton{
			Unit:   unit,
			Reason: model.ReasonInsufficientSupport,
			Detail: "every open position fails the minimum support ratio",
		}
	}
	return model.UnpackedCarton{
		Unit:   unit,
		Reason: model.ReasonGeometryTooLarge,
		Detail: "no open position fits any allowed orientation",
	}
}
