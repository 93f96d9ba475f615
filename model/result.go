package model

import "time"

// UnpackedReason classifies why a carton unit was left out of a packing.
type UnpackedReason string

const (
	ReasonGeometryTooLarge    UnpackedReason = "geometry_too_large"
	ReasonWeightExceeded      UnpackedReason = "weight_exceeded"
	ReasonInsufficientSupport UnpackedReason = "insufficient_support"
)

// UnpackedCarton records a unit that could not be placed and why.
type UnpackedCarton struct {
	Unit   CartonUnit     `json:"unit"`
	Reason UnpackedReason `json:"reason"`
	Detail string         `json:"detail,omitempty"`
}

// PlacedItem is one carton unit fixed at a position inside the truck.
// Position is the minimum corner; the item spans to position+orientation.
// Never mutated after creation.
type PlacedItem struct {
	Unit           CartonUnit  `json:"unit"`
	X              float64     `json:"x"`
	Y              float64     `json:"y"`
	Z              float64     `json:"z"`
	Orientation    Orientation `json:"orientation"`
	RotationIndex  int         `json:"rotation_index"`  // Index into the canonical 6-rotation order
	SupportRatio   float64     `json:"support_ratio"`   // [0,1]
	StabilityScore float64     `json:"stability_score"` // [0,1]
}

// MaxX returns the far X face of the placed item.
func (p PlacedItem) MaxX() float64 { return p.X + p.Orientation.Length }

// MaxY returns the far Y face of the placed item.
func (p PlacedItem) MaxY() float64 { return p.Y + p.Orientation.Width }

// MaxZ returns the top face of the placed item.
func (p PlacedItem) MaxZ() float64 { return p.Z + p.Orientation.Height }

// Volume returns the volume occupied by the placed item.
func (p PlacedItem) Volume() float64 { return p.Orientation.Volume() }

// PackingResult holds the outcome of packing one carton set into one truck.
// Success is false only when a non-empty input packed zero units. Read-only
// once returned.
type PackingResult struct {
	Success             bool             `json:"success"`
	Truck               TruckSpec        `json:"truck"`
	Placed              []PlacedItem     `json:"placed"`
	Unpacked            []UnpackedCarton `json:"unpacked"`
	VolumeUtilization   float64          `json:"volume_utilization"`   // [0,100]
	WeightUtilization   float64          `json:"weight_utilization"`   // [0,100]
	StabilityScore      float64          `json:"stability_score"`      // [0,1], mean over placed items
	LoadBalanceScore    float64          `json:"load_balance_score"`   // [0,100]
	FragilityCompliance float64          `json:"fragility_compliance"` // [0,100]
	PackingEfficiency   float64          `json:"packing_efficiency"`   // [0,100], strategy comparison metric
	AlgorithmUsed       Strategy         `json:"algorithm_used"`
	ProcessingTime      time.Duration    `json:"processing_time"`
	Warnings            []string         `json:"warnings,omitempty"`
}

// PackedVolume returns the summed volume of all placed items.
func (r PackingResult) PackedVolume() float64 {
	var total float64
	for _, p := range r.Placed {
		total += p.Volume()
	}
	return total
}

// PackedWeight returns the summed weight of all placed items.
func (r PackingResult) PackedWeight() float64 {
	var total float64
	for _, p := range r.Placed {
		total += p.Unit.Spec.Weight
	}
	return total
}

// Recommendation pairs a truck with its best packing and a ranking score.
type Recommendation struct {
	Truck               TruckSpec      `json:"truck"`
	Result              *PackingResult `json:"result"`
	RecommendationScore float64        `json:"recommendation_score"` // [0,100]
	CostEfficiency      float64        `json:"cost_efficiency"`      // Cost per utilized capacity; lower is better
	Suggestions         []string       `json:"suggestions,omitempty"`
}

// FreeSpace is an empty axis-aligned box left inside a packed truck.
type FreeSpace struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Volume returns the free-space volume.
func (f FreeSpace) Volume() float64 {
	return f.Length * f.Width * f.Height
}

// FleetEstimate reports how many trucks of one spec a manifest needs.
type FleetEstimate struct {
	Truck          TruckSpec        `json:"truck"`
	TrucksNeeded   int              `json:"trucks_needed"`
	Results        []*PackingResult `json:"results"`
	Leftover       []CartonUnit     `json:"leftover,omitempty"` // Units no additional truck could take
	Distance       float64          `json:"distance"`
	TotalCost      float64          `json:"total_cost"`
	MeanVolumeUtil float64          `json:"mean_volume_util"` // [0,100] across used trucks
}

// ManifestSummary aggregates a carton unit list for pre-flight checks.
type ManifestSummary struct {
	UnitCount    int     `json:"unit_count"`
	TotalVolume  float64 `json:"total_volume"`
	TotalWeight  float64 `json:"total_weight"`
	FragileCount int     `json:"fragile_count"`
	LargestUnit  float64 `json:"largest_unit"` // Volume of the biggest single unit
}

// Summarize totals a unit list.
func Summarize(units []CartonUnit) ManifestSummary {
	var s ManifestSummary
	s.UnitCount = len(units)
	for _, u := range units {
		v := u.Volume()
		s.TotalVolume += v
		s.TotalWeight += u.Spec.Weight
		if u.Spec.Fragile {
			s.FragileCount++
		}
		if v > s.LargestUnit {
			s.LargestUnit = v
		}
	}
	return s
}
