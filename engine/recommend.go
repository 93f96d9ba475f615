package engine

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/loadwise/cargopack/model"
)

// Recommend packs the manifest into every candidate truck in auto mode and
// ranks the trucks by recommendation score, ties broken by lower cost
// efficiency. An empty candidate list falls back to the standard catalog;
// topK <= 0 returns the full ranking.
func (o *Optimizer) Recommend(trucks []model.TruckSpec, units []model.CartonUnit, topK int) ([]model.Recommendation, error) {
	if len(units) == 0 {
		return nil, model.ErrEmptyCartonList
	}
	if err := model.ValidateUnits(units); err != nil {
		return nil, err
	}
	if len(trucks) == 0 {
		trucks = model.StandardTrucks()
	}
	for i := range trucks {
		if err := model.ValidateTruck(trucks[i]); err != nil {
			return nil, err
		}
	}

	summary := model.Summarize(units)

	recs := make([]model.Recommendation, len(trucks))
	var eg errgroup.Group
	eg.SetLimit(o.workers())
	for i, truck := range trucks {
		i, truck := i, truck
		eg.Go(func() error {
			res, err := o.PackUnits(truck, units, model.StrategyAuto)
			if err != nil {
				return fmt.Errorf("truck %s: %w", truck.ID, err)
			}
			recs[i] = model.Recommendation{
				Truck:               truck,
				Result:              res,
				RecommendationScore: recommendationScore(o.Settings.Recommendation, res),
				CostEfficiency:      costEfficiency(truck, res.VolumeUtilization),
				Suggestions:         buildSuggestions(res, summary),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].RecommendationScore != recs[j].RecommendationScore {
			return recs[i].RecommendationScore > recs[j].RecommendationScore
		}
		return recs[i].CostEfficiency < recs[j].CostEfficiency
	})

	if topK > 0 && topK < len(recs) {
		recs = recs[:topK]
	}

	o.Log.Debug().Int("trucks", len(recs)).Int("units", len(units)).Msg("recommendation ranking built")
	return recs, nil
}
