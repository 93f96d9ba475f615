package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/loadwise/cargopack/model"
)

// Suggestion thresholds (percent).
const (
	lowUtilizationPct = 60.0
	lowStabilityPct   = 80.0
)

// buildResult assembles the immutable PackingResult from the placement
// state. Success is false only when a non-empty input packed nothing.
func buildResult(space *packSpace, unpacked []model.UnpackedCarton, used model.Strategy, started time.Time) *model.PackingResult {
	placed := make([]model.PlacedItem, len(space.placed))
	for i, b := range space.placed {
		placed[i] = model.PlacedItem{
			Unit:           b.unit,
			X:              b.x,
			Y:              b.y,
			Z:              b.z,
			Orientation:    b.o,
			RotationIndex:  b.rotIndex,
			SupportRatio:   b.support,
			StabilityScore: b.stability,
		}
	}

	res := &model.PackingResult{
		Success:       len(placed) > 0 || len(unpacked) == 0,
		Truck:         space.truck,
		Placed:        placed,
		Unpacked:      unpacked,
		AlgorithmUsed: used,
	}
	res.VolumeUtilization = utilization(res.PackedVolume(), space.truck.Volume())
	res.WeightUtilization = utilization(res.PackedWeight(), space.truck.MaxWeight)
	res.StabilityScore = meanStability(placed)
	res.LoadBalanceScore = loadBalance(space.truck, placed)
	res.FragilityCompliance = fragilityCompliance(space.truck, space.settings, placed)
	res.PackingEfficiency = packingEfficiency(space.settings.Efficiency, res)
	res.ProcessingTime = time.Since(started)
	return res
}

// utilization maps used/capacity to a clamped percentage. Capacity is
// validated positive upstream; the guard keeps bad input from producing
// NaN or Inf.
func utilization(used, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return clampPct(used / capacity * 100.0)
}

// meanStability averages the per-item stability; zero when nothing placed.
func meanStability(placed []model.PlacedItem) float64 {
	if len(placed) == 0 {
		return 0
	}
	var sum float64
	for _, p := range placed {
		sum += p.StabilityScore
	}
	return clamp01(sum / float64(len(placed)))
}

// loadBalance scores how close the weighted centroid of the cargo sits to
// the horizontal center of the truck: 100 at dead center, 0 at a corner.
// A weightless manifest falls back to the unweighted centroid.
func loadBalance(truck model.TruckSpec, placed []model.PlacedItem) float64 {
	if len(placed) == 0 {
		return 0
	}
	var totalWeight float64
	for _, p := range placed {
		totalWeight += p.Unit.Spec.Weight
	}

	var cx, cy, denom float64
	for _, p := range placed {
		w := p.Unit.Spec.Weight
		if totalWeight <= 0 {
			w = 1
		}
		cx += w * (p.X + p.Orientation.Length/2)
		cy += w * (p.Y + p.Orientation.Width/2)
		denom += w
	}
	cx /= denom
	cy /= denom

	maxDev := math.Hypot(truck.Length/2, truck.Width/2)
	if maxDev <= 0 {
		return 0
	}
	dev := math.Hypot(cx-truck.Length/2, cy-truck.Width/2)
	return clampPct((1.0 - dev/maxDev) * 100.0)
}

// fragilityCompliance is the share of placed fragile cargo resting below
// the height threshold. No fragile cargo placed means nothing to violate.
func fragilityCompliance(truck model.TruckSpec, settings model.PackSettings, placed []model.PlacedItem) float64 {
	threshold := settings.HeightThreshold * truck.Height
	var fragile, compliant int
	for _, p := range placed {
		if !p.Unit.Spec.Fragile {
			continue
		}
		fragile++
		if p.Z <= threshold+epsilon {
			compliant++
		}
	}
	if fragile == 0 {
		return 100
	}
	return clampPct(float64(compliant) / float64(fragile) * 100.0)
}

// packingEfficiency blends utilization and stability into the single figure
// auto mode compares strategies by.
func packingEfficiency(w model.EfficiencyWeights, res *model.PackingResult) float64 {
	return clampPct(w.Volume*res.VolumeUtilization +
		w.Payload*res.WeightUtilization +
		w.Stability*res.StabilityScore*100.0)
}

// recommendationScore blends the per-result metrics into the truck ranking
// score.
func recommendationScore(w model.RecommendationWeights, res *model.PackingResult) float64 {
	return clampPct(w.Volume*res.VolumeUtilization +
		w.Payload*res.WeightUtilization +
		w.Stability*res.StabilityScore*100.0 +
		w.Efficiency*res.PackingEfficiency)
}

// costEfficiency is cost per utilized capacity; lower is better. A truck
// that packed nothing gets the maximum finite sentinel so it never wins a
// tie, and the result stays NaN/Inf free.
func costEfficiency(truck model.TruckSpec, volumeUtilization float64) float64 {
	if volumeUtilization <= epsilon {
		return math.MaxFloat64
	}
	return truck.CostPerDistance / (volumeUtilization / 100.0)
}

// buildSuggestions derives human-readable advice from a result and the
// manifest totals. Pure rule table; order is fixed and duplicates drop.
func buildSuggestions(res *model.PackingResult, summary model.ManifestSummary) []string {
	var out []string
	if summary.TotalVolume > res.Truck.Volume()+epsilon {
		out = append(out, "manifest volume exceeds the cargo space; not everything can fit")
	}
	if summary.TotalWeight > res.Truck.MaxWeight+epsilon {
		out = append(out, "manifest weight exceeds the payload capacity; not everything can fit")
	}
	if res.VolumeUtilization < lowUtilizationPct && len(res.Unpacked) == 0 {
		out = append(out, fmt.Sprintf("volume utilization is %.1f%%; a smaller truck may cost less", res.VolumeUtilization))
	}
	if n := len(res.Unpacked); n > 0 {
		out = append(out, fmt.Sprintf("%d carton(s) do not fit; consider splitting the shipment", n))
	}
	if len(res.Placed) > 0 && res.StabilityScore*100 < lowStabilityPct {
		out = append(out, fmt.Sprintf("stability score is %.0f; rearrange heavier cartons lower", res.StabilityScore*100))
	}
	return dedupe(out)
}

// dedupe removes repeated messages, keeping first occurrences in order.
func dedupe(msgs []string) []string {
	if len(msgs) <= 1 {
		return msgs
	}
	seen := make(map[string]bool, len(msgs))
	kept := msgs[:0]
	for _, m := range msgs {
		if seen[m] {
			continue
		}
		seen[m] = true
		kept = append(kept, m)
	}
	return kept
}

func clampPct(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
