package engine

import "github.com/loadwise/cargopack/model"

// epsilon absorbs float drift in geometric comparisons. Touching faces are
// not collisions.
const epsilon = 0.001

const (
	strongSupportRatio  = 0.8 // Below this, high placements are penalized
	weakSupportPenalty  = 0.7
	multiSupporterBonus = 1.1
)

// placedBox is the strategy-internal view of a placement. It carries the
// load bookkeeping that the immutable model.PlacedItem must not.
type placedBox struct {
	unit      model.CartonUnit
	x, y, z   float64
	o         model.Orientation
	rotIndex  int
	support   float64
	stability float64
	carrying  int // Units resting directly on this box
}

func (b placedBox) maxX() float64 { return b.x + b.o.Length }
func (b placedBox) maxY() float64 { return b.y + b.o.Width }
func (b placedBox) top() float64  { return b.z + b.o.Height }

// supportEval is the outcome of probing one candidate position.
type supportEval struct {
	ratio      float64
	stability  float64
	supporters []int // Indexes into packSpace.placed
}

// packSpace tracks the shared placement state for one truck: the boxes
// committed so far and the running payload weight. All strategies place
// through it so collision and support semantics stay identical.
type packSpace struct {
	truck    model.TruckSpec
	settings model.PackSettings
	placed   []placedBox
	weight   float64
}

func newPackSpace(truck model.TruckSpec, settings model.PackSettings) *packSpace {
	return &packSpace{truck: truck, settings: settings}
}

// canPlace checks truck bounds, the payload cap and collisions against every
// committed box. Support is evaluated separately by supportAt.
func (s *packSpace) canPlace(x, y, z float64, o model.Orientation, weight float64) bool {
	if x < -epsilon || y < -epsilon || z < -epsilon {
		return false
	}
	if x+o.Length > s.truck.Length+epsilon ||
		y+o.Width > s.truck.Width+epsilon ||
		z+o.Height > s.truck.Height+epsilon {
		return false
	}
	if s.weight+weight > s.truck.MaxWeight+epsilon {
		return false
	}
	for i := range s.placed {
		if s.overlaps(i, x, y, z, o) {
			return false
		}
	}
	return true
}

// fitsWeight reports whether one more unit of the given weight stays under
// the payload cap.
func (s *packSpace) fitsWeight(weight float64) bool {
	return s.weight+weight <= s.truck.MaxWeight+epsilon
}

// packedVolume sums the volume of every committed box.
func (s *packSpace) packedVolume() float64 {
	var total float64
	for _, b := range s.placed {
		total += b.o.Volume()
	}
	return total
}

// overlaps tests AABB intersection against placed box i. Boxes overlap
// unless separated on at least one axis.
func (s *packSpace) overlaps(i int, x, y, z float64, o model.Orientation) bool {
	b := &s.placed[i]
	return x < b.maxX()-epsilon && x+o.Length > b.x+epsilon &&
		y < b.maxY()-epsilon && y+o.Width > b.y+epsilon &&
		z < b.top()-epsilon && z+o.Height > b.z+epsilon
}

// supportAt computes the supported-base ratio and stability for a candidate
// box. Resting on the floor counts as full support. Otherwise every placed
// box whose top face sits within the contact tolerance of the candidate
// bottom contributes its XY overlap, except supporters that must not carry
// load: non-stackable boxes, fragile boxes, and boxes already carrying their
// MaxStackHeight.
func (s *packSpace) supportAt(x, y, z float64, o model.Orientation) supportEval {
	tol := s.settings.SupportTolerance

	if z <= tol {
		return supportEval{ratio: 1.0, stability: s.stabilityFor(1.0, z, 1)}
	}

	baseArea := o.Length * o.Width
	if baseArea <= 0 {
		return supportEval{}
	}

	var supported float64
	var supporters []int
	for i := range s.placed {
		b := &s.placed[i]
		if diff := z - b.top(); diff < -tol || diff > tol {
			continue
		}
		overlapX := minFloat(x+o.Length, b.maxX()) - maxFloat(x, b.x)
		overlapY := minFloat(y+o.Width, b.maxY()) - maxFloat(y, b.y)
		if overlapX <= epsilon || overlapY <= epsilon {
			continue
		}
		if !canBearLoad(b) {
			continue
		}
		supported += overlapX * overlapY
		supporters = append(supporters, i)
	}

	ratio := supported / baseArea
	if ratio > 1.0 {
		ratio = 1.0
	}
	return supportEval{
		ratio:      ratio,
		stability:  s.stabilityFor(ratio, z, len(supporters)),
		supporters: supporters,
	}
}

// canBearLoad reports whether a placed box may support additional cargo.
func canBearLoad(b *placedBox) bool {
	spec := b.unit.Spec
	if !spec.Stackable || spec.Fragile {
		return false
	}
	if spec.MaxStackHeight > 0 && b.carrying >= spec.MaxStackHeight {
		return false
	}
	return true
}

// stabilityFor derives the stability score from the support ratio. Weakly
// supported boxes above the height threshold are penalized; resting on two
// or more supporters earns a capped bonus.
func (s *packSpace) stabilityFor(ratio, z float64, supporterCount int) float64 {
	stability := ratio
	if z > s.settings.HeightThreshold*s.truck.Height && ratio < strongSupportRatio {
		stability *= weakSupportPenalty
	}
	if supporterCount >= 2 {
		stability *= multiSupporterBonus
	}
	if stability > 1.0 {
		stability = 1.0
	}
	if stability < 0 {
		stability = 0
	}
	return stability
}

// feasible combines the placement checks: bounds, weight, collision and the
// minimum support constraint. The support outcome is returned for commit.
func (s *packSpace) feasible(x, y, z float64, o model.Orientation, weight float64) (supportEval, bool, bool) {
	if !s.canPlace(x, y, z, o, weight) {
		return supportEval{}, false, false
	}
	eval := s.supportAt(x, y, z, o)
	if eval.ratio < s.settings.MinSupportRatio-epsilon {
		// Geometrically sound but under-supported
		return eval, false, true
	}
	return eval, true, false
}

// commit fixes a unit at a position and updates the load bookkeeping of its
// supporters.
func (s *packSpace) commit(unit model.CartonUnit, x, y, z float64, choice orientationChoice, eval supportEval) {
	for _, i := range eval.supporters {
		s.placed[i].carrying++
	}
	s.placed = append(s.placed, placedBox{
		unit:      unit,
		x:         x,
		y:         y,
		z:         z,
		o:         choice.o,
		rotIndex:  choice.index,
		support:   eval.ratio,
		stability: eval.stability,
	})
	s.weight += unit.Spec.Weight
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
