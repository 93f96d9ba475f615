// Package model defines the cargo data types, settings and validation used
// by the placement engine.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CartonSpec represents one carton type from a shipping manifest.
// Length, Width and Height map to the X, Y and Z axes and share one unit
// with the truck (mm throughout); Weight is in kg.
type CartonSpec struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Length         float64 `json:"length" validate:"gt=0"`
	Width          float64 `json:"width" validate:"gt=0"`
	Height         float64 `json:"height" validate:"gt=0"`
	Weight         float64 `json:"weight" validate:"gte=0"`
	Quantity       int     `json:"quantity" validate:"gte=1"`
	Priority       int     `json:"priority"`         // Higher packs first
	Fragile        bool    `json:"fragile"`          // Upright orientations only; nothing rests on it
	Stackable      bool    `json:"stackable"`        // When false the top face supports nothing
	MaxStackHeight int     `json:"max_stack_height"` // Units resting directly on top; 0 = unlimited
	CanRotate      bool    `json:"can_rotate"`
}

func NewCartonSpec(name string, l, w, h, weight float64, qty int) CartonSpec {
	return CartonSpec{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Length:    l,
		Width:     w,
		Height:    h,
		Weight:    weight,
		Quantity:  qty,
		Stackable: true,
		CanRotate: true,
	}
}

// Volume returns the carton volume, invariant across orientations.
func (c CartonSpec) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// MaxFaceArea returns the largest face area of the carton.
func (c CartonSpec) MaxFaceArea() float64 {
	area := c.Length * c.Width
	if a := c.Length * c.Height; a > area {
		area = a
	}
	if a := c.Width * c.Height; a > area {
		area = a
	}
	return area
}

// CartonUnit is one physical instance of a CartonSpec. A spec with
// Quantity=5 expands into 5 units before packing.
type CartonUnit struct {
	UnitID string     `json:"unit_id"`
	Spec   CartonSpec `json:"spec"`
}

// Volume returns the unit volume.
func (u CartonUnit) Volume() float64 {
	return u.Spec.Volume()
}

// ExpandCartons expands catalog rows into individual carton units.
// Unit IDs derive from the spec ID so identical input always yields
// identical units, keeping packing results reproducible.
func ExpandCartons(specs []CartonSpec) []CartonUnit {
	var units []CartonUnit
	for _, spec := range specs {
		cp := spec
		cp.Quantity = 1
		for i := 0; i < spec.Quantity; i++ {
			units = append(units, CartonUnit{
				UnitID: fmt.Sprintf("%s-%d", spec.ID, i+1),
				Spec:   cp,
			})
		}
	}
	return units
}

// TruckSpec represents a candidate cargo space. Dimensions in mm,
// MaxWeight in kg, CostPerDistance in currency per km.
type TruckSpec struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Length          float64 `json:"length" validate:"gt=0"`
	Width           float64 `json:"width" validate:"gt=0"`
	Height          float64 `json:"height" validate:"gt=0"`
	MaxWeight       float64 `json:"max_weight" validate:"gt=0"`
	CostPerDistance float64 `json:"cost_per_distance" validate:"gte=0"`
}

func NewTruckSpec(name string, l, w, h, maxWeight, costPerDistance float64) TruckSpec {
	return TruckSpec{
		ID:              uuid.New().String()[:8],
		Name:            name,
		Length:          l,
		Width:           w,
		Height:          h,
		MaxWeight:       maxWeight,
		CostPerDistance: costPerDistance,
	}
}

// Volume returns the cargo space volume.
func (t TruckSpec) Volume() float64 {
	return t.Length * t.Width * t.Height
}

// Orientation is one axis-aligned rotation of a carton: the spec dimensions
// permuted onto the X, Y and Z axes.
type Orientation struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Volume returns the oriented volume, equal to the carton volume.
func (o Orientation) Volume() float64 {
	return o.Length * o.Width * o.Height
}

// Strategy selects the placement algorithm.
type Strategy string

const (
	StrategySkyline       Strategy = "skyline"        // Skyline bottom-left (default)
	StrategyExtremePoints Strategy = "extreme_points" // Extreme-point best-fit
	StrategyLAFF          Strategy = "laff"           // Largest-area-fit-first greedy (fastest)
	StrategyGenetic       Strategy = "genetic"        // Genetic sequence search over skyline
	StrategyAuto          Strategy = "auto"           // Run everything, keep the best
)

// Canonical scoring weights. RecommendationWeights and EfficiencyWeights in
// PackSettings default to these; callers may override the policy.
const (
	RecommendVolumeWeight     = 0.3
	RecommendPayloadWeight    = 0.2
	RecommendStabilityWeight  = 0.25
	RecommendEfficiencyWeight = 0.25

	EfficiencyVolumeWeight    = 0.4
	EfficiencyPayloadWeight   = 0.3
	EfficiencyStabilityWeight = 0.3
)

// RecommendationWeights blends per-result metrics into the truck ranking
// score. Payload weighs weight utilization.
type RecommendationWeights struct {
	Volume     float64 `json:"volume"`
	Payload    float64 `json:"payload"`
	Stability  float64 `json:"stability"`
	Efficiency float64 `json:"efficiency"`
}

func DefaultRecommendationWeights() RecommendationWeights {
	return RecommendationWeights{
		Volume:     RecommendVolumeWeight,
		Payload:    RecommendPayloadWeight,
		Stability:  RecommendStabilityWeight,
		Efficiency: RecommendEfficiencyWeight,
	}
}

// EfficiencyWeights blends utilization and stability into the single
// packing-efficiency figure used to compare strategies on one truck.
type EfficiencyWeights struct {
	Volume    float64 `json:"volume"`
	Payload   float64 `json:"payload"`
	Stability float64 `json:"stability"`
}

func DefaultEfficiencyWeights() EfficiencyWeights {
	return EfficiencyWeights{
		Volume:    EfficiencyVolumeWeight,
		Payload:   EfficiencyPayloadWeight,
		Stability: EfficiencyStabilityWeight,
	}
}

// PackSettings holds engine configuration.
type PackSettings struct {
	// Placement constraints
	MinSupportRatio  float64 `json:"min_support_ratio"` // Below this a placement is infeasible
	SupportTolerance float64 `json:"support_tolerance"` // Face-contact tolerance in dimension units
	HeightThreshold  float64 `json:"height_threshold"`  // Fraction of truck height; above it weak support is penalized

	// Resource limits
	TimeBudget time.Duration `json:"time_budget"` // Per pack call; on expiry fall back to LAFF
	Workers    int           `json:"workers"`     // Parallel evaluations; 0 = GOMAXPROCS

	// Randomized components; 0 draws a time-based seed per call
	Seed int64 `json:"seed"`

	// Remaining-space reporting
	MinFreeDimension float64 `json:"min_free_dimension"` // Smallest usable free-box edge

	// Scoring policy
	Recommendation RecommendationWeights `json:"recommendation_weights"`
	Efficiency     EfficiencyWeights     `json:"efficiency_weights"`
}

func DefaultSettings() PackSettings {
	return PackSettings{
		MinSupportRatio:  0.6,
		SupportTolerance: 1.0,
		HeightThreshold:  0.5,
		TimeBudget:       2 * time.Second,
		Workers:          0,
		Seed:             0,
		MinFreeDimension: 50.0,
		Recommendation:   DefaultRecommendationWeights(),
		Efficiency:       DefaultEfficiencyWeights(),
	}
}
