package engine

import (
	"sort"
	"time"

	"github.com/loadwise/cargopack/model"
)

// StrategyComparison holds one strategy's outcome and computed statistics
// for side-by-side review.
type StrategyComparison struct {
	Strategy      model.Strategy
	Result        *model.PackingResult
	PlacedCount   int
	UnpackedCount int
	Elapsed       time.Duration
}

// CompareStrategies runs every placement strategy against the same truck
// and manifest and returns the outcomes sorted by packing efficiency, best
// first. This enables side-by-side comparison before committing to a
// strategy for a recurring lane.
func (o *Optimizer) CompareStrategies(truck model.TruckSpec, units []model.CartonUnit) ([]StrategyComparison, error) {
	strategies := []model.Strategy{
		model.StrategySkyline,
		model.StrategyExtremePoints,
		model.StrategyLAFF,
		model.StrategyGenetic,
	}

	comparisons := make([]StrategyComparison, 0, len(strategies))
	for _, s := range strategies {
		started := time.Now()
		res, err := o.PackUnits(truck, units, s)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, StrategyComparison{
			Strategy:      s,
			Result:        res,
			PlacedCount:   len(res.Placed),
			UnpackedCount: len(res.Unpacked),
			Elapsed:       time.Since(started),
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Result.PackingEfficiency > comparisons[j].Result.PackingEfficiency
	})
	return comparisons, nil
}
