package engine

import (
	"context"
	"math"
	"sort"

	"github.com/loadwise/cargopack/model"
)

// Placement-fitness weights for extreme-point selection.
const (
	epWasteWeight   = 0.4
	epSupportWeight = 0.4
	epCornerWeight  = 0.2
)

type point3 struct {
	x, y, z float64
}

// extremePointIndex maintains the candidate anchor points for placement,
// seeded with the origin. Points sit at the outer corners of placed boxes;
// dominance filtering keeps the set small.
type extremePointIndex struct {
	truck  model.TruckSpec
	points []point3
}

func newExtremePointIndex(truck model.TruckSpec) *extremePointIndex {
	return &extremePointIndex{truck: truck, points: []point3{{0, 0, 0}}}
}

// update removes points consumed by the placed box, adds its seven outer
// corner projections (the moving-points variant), drops corners flush with
// a far truck face, and dominance-filters the survivors. Points are kept
// sorted by (z, y, x) so scans are order-stable across runs.
func (idx *extremePointIndex) update(x, y, z float64, o model.Orientation) {
	maxX, maxY, maxZ := x+o.Length, y+o.Width, z+o.Height

	kept := idx.points[:0]
	for _, p := range idx.points {
		inside := p.x > x-epsilon && p.x < maxX-epsilon &&
			p.y > y-epsilon && p.y < maxY-epsilon &&
			p.z > z-epsilon && p.z < maxZ-epsilon
		if !inside {
			kept = append(kept, p)
		}
	}
	idx.points = kept

	corners := [7]point3{
		{maxX, y, z},
		{x, maxY, z},
		{x, y, maxZ},
		{maxX, maxY, z},
		{maxX, y, maxZ},
		{x, maxY, maxZ},
		{maxX, maxY, maxZ},
	}
	for _, c := range corners {
		if c.x >= idx.truck.Length-epsilon ||
			c.y >= idx.truck.Width-epsilon ||
			c.z >= idx.truck.Height-epsilon {
			continue
		}
		if !idx.contains(c) {
			idx.points = append(idx.points, c)
		}
	}

	idx.points = filterDominated(idx.points)
	sort.Slice(idx.points, func(i, j int) bool {
		a, b := idx.points[i], idx.points[j]
		if a.z != b.z {
			return a.z < b.z
		}
		if a.y != b.y {
			return a.y < b.y
		}
		return a.x < b.x
	})
}

func (idx *extremePointIndex) contains(p point3) bool {
	for _, q := range idx.points {
		if samePoint(p, q) {
			return true
		}
	}
	return false
}

func samePoint(a, b point3) bool {
	return math.Abs(a.x-b.x) <= epsilon &&
		math.Abs(a.y-b.y) <= epsilon &&
		math.Abs(a.z-b.z) <= epsilon
}

// filterDominated removes every point p for which another point q satisfies
// q <= p componentwise with at least one strict inequality. Exact duplicates
// keep their first occurrence.
func filterDominated(points []point3) []point3 {
	if len(points) <= 1 {
		return points
	}
	kept := make([]point3, 0, len(points))
	for i, p := range points {
		dominated := false
		for j, q := range points {
			if i == j {
				continue
			}
			if dominates(q, p) {
				dominated = true
				break
			}
			if samePoint(p, q) && j < i {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, p)
		}
	}
	return kept
}

// dominates reports whether q is componentwise <= p with one strict
// inequality.
func dominates(q, p point3) bool {
	if q.x > p.x+epsilon || q.y > p.y+epsilon || q.z > p.z+epsilon {
		return false
	}
	return q.x < p.x-epsilon || q.y < p.y-epsilon || q.z < p.z-epsilon
}

// epCandidate is the best-scored placement found by selectPlacement.
type epCandidate struct {
	at      point3
	choice  orientationChoice
	eval    supportEval
	fitness float64
}

// selectPlacement scores every feasible (orientation, point) pair and picks
// the highest placement fitness. The blend favors placements that keep the
// stack low, rest on solid support and hug a floor corner. Ties keep the
// first candidate in orientation-then-point order.
func (idx *extremePointIndex) selectPlacement(space *packSpace, pu packUnit) (epCandidate, bool, bool) {
	var best epCandidate
	found := false
	supportFail := false
	weight := pu.unit.Spec.Weight

	for _, choice := range pu.choices {
		for _, p := range idx.points {
			eval, ok, sf := space.feasible(p.x, p.y, p.z, choice.o, weight)
			if sf {
				supportFail = true
			}
			if !ok {
				continue
			}
			fitness := epWasteWeight*idx.wasteScore(p.z, choice.o) +
				epSupportWeight*eval.ratio +
				epCornerWeight*idx.cornerBonus(p)
			if !found || fitness > best.fitness+epsilon {
				best = epCandidate{at: p, choice: choice, eval: eval, fitness: fitness}
				found = true
			}
		}
	}
	return best, found, supportFail
}

// wasteScore rewards placements whose top face stays low; sealed headroom
// above a tall stack is the hardest space to reuse.
func (idx *extremePointIndex) wasteScore(z float64, o model.Orientation) float64 {
	if idx.truck.Height <= 0 {
		return 0
	}
	score := 1.0 - (z+o.Height)/idx.truck.Height
	return clamp01(score)
}

// cornerBonus rewards anchors near a floor corner of the truck.
func (idx *extremePointIndex) cornerBonus(p point3) float64 {
	l, w := idx.truck.Length, idx.truck.Width
	half := math.Hypot(l/2, w/2)
	if half <= 0 {
		return 0
	}
	d := math.Hypot(p.x, p.y)
	for _, c := range [3]point3{{l, 0, 0}, {0, w, 0}, {l, w, 0}} {
		if dd := math.Hypot(p.x-c.x, p.y-c.y); dd < d {
			d = dd
		}
	}
	return clamp01(1.0 - d/half)
}

// packExtremePoints places queued units at their best-scored extreme point.
func packExtremePoints(ctx context.Context, space *packSpace, queue []packUnit) ([]model.UnpackedCarton, error) {
	idx := newExtremePointIndex(space.truck)
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

		cand, ok, supportFail := idx.selectPlacement(space, pu)
		if !ok {
			unpacked = append(unpacked, unplaceable(pu.unit, supportFail))
			continue
		}
		space.commit(pu.unit, cand.at.x, cand.at.y, cand.at.z, cand.choice, cand.eval)
		idx.update(cand.at.x, cand.at.y, cand.at.z, cand.choice.o)
	}
	return unpacked, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
