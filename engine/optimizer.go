package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/loadwise/cargopack/model"
)

// Optimizer runs the 3D placement strategies against a cargo space.
type Optimizer struct {
	Settings model.PackSettings
	Genetic  GeneticConfig
	Log      zerolog.Logger
}

func New(settings model.PackSettings) *Optimizer {
	return &Optimizer{
		Settings: settings,
		Genetic:  DefaultGeneticConfig(),
		Log:      zerolog.Nop(),
	}
}

// packUnit pairs one unit with its allowed orientations for the placement
// loop.
type packUnit struct {
	unit    model.CartonUnit
	choices []orientationChoice
}

// buildQueue expands orientation choices and orders the queue with the
// given comparison. The stable sort keeps input order on ties, which keeps
// runs reproducible.
func buildQueue(units []model.CartonUnit, less func(a, b model.CartonUnit) bool) []packUnit {
	queue := make([]packUnit, len(units))
	for i, u := range units {
		queue[i] = packUnit{unit: u, choices: orientationsFor(u.Spec)}
	}
	sort.SliceStable(queue, func(i, j int) bool { return less(queue[i].unit, queue[j].unit) })
	return queue
}

// byPriorityThenVolume places high-priority cargo first, larger boxes
// before smaller ones within a priority band.
func byPriorityThenVolume(a, b model.CartonUnit) bool {
	if a.Spec.Priority != b.Spec.Priority {
		return a.Spec.Priority > b.Spec.Priority
	}
	return a.Volume() > b.Volume()
}

// byVolume places larger boxes first.
func byVolume(a, b model.CartonUnit) bool {
	return a.Volume() > b.Volume()
}

// byMaxFace places boxes with the largest single face first.
func byMaxFace(a, b model.CartonUnit) bool {
	return a.Spec.MaxFaceArea() > b.Spec.MaxFaceArea()
}

// Pack validates the inputs, expands carton quantities into units and runs
// the requested strategy. An empty carton list succeeds with zeroed
// metrics. An empty strategy means auto.
func (o *Optimizer) Pack(truck model.TruckSpec, cartons []model.CartonSpec, strategy model.Strategy) (*model.PackingResult, error) {
	for i := range cartons {
		if err := model.ValidateCarton(cartons[i]); err != nil {
			return nil, err
		}
	}
	return o.PackUnits(truck, model.ExpandCartons(cartons), strategy)
}

// PackAuto runs every strategy and keeps the best result.
func (o *Optimizer) PackAuto(truck model.TruckSpec, cartons []model.CartonSpec) (*model.PackingResult, error) {
	return o.Pack(truck, cartons, model.StrategyAuto)
}

// PackUnits packs pre-expanded units. Most callers want Pack, which
// expands carton quantities first. When the time budget expires before any
// strategy finishes, a single greedy pass without a deadline stands in and
// the result carries a warning.
func (o *Optimizer) PackUnits(truck model.TruckSpec, units []model.CartonUnit, strategy model.Strategy) (*model.PackingResult, error) {
	started := time.Now()

	strategy = normalizeStrategy(strategy)
	if !knownStrategy(strategy) {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, strategy)
	}
	if err := model.ValidateTruck(truck); err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return o.emptyResult(truck, strategy, started), nil
	}
	if err := model.ValidateUnits(units); err != nil {
		return nil, err
	}

	seed := o.Settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	budget := o.Settings.TimeBudget
	if budget <= 0 {
		budget = model.DefaultSettings().TimeBudget
	}
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	o.Log.Debug().
		Str("truck", truck.ID).
		Int("units", len(units)).
		Str("strategy", string(strategy)).
		Msg("packing started")

	var res *model.PackingResult
	var err error
	if strategy == model.StrategyAuto {
		res, err = o.packAuto(ctx, truck, units, seed, started)
	} else {
		res, err = o.runStrategy(ctx, truck, units, strategy, seed, started)
	}
	if err != nil {
		// Strategy cores only fail on an expired deadline
		res = o.fallbackResult(truck, units, started)
	}

	o.Log.Debug().
		Str("algorithm", string(res.AlgorithmUsed)).
		Int("placed", len(res.Placed)).
		Int("unpacked", len(res.Unpacked)).
		Dur("elapsed", res.ProcessingTime).
		Msg("packing finished")
	return res, nil
}

// runStrategy executes one strategy to completion or the context deadline.
func (o *Optimizer) runStrategy(ctx context.Context, truck model.TruckSpec, units []model.CartonUnit, strategy model.Strategy, seed int64, started time.Time) (*model.PackingResult, error) {
	switch strategy {
	case model.StrategySkyline:
		return o.runQueue(ctx, truck, units, strategy, started, byPriorityThenVolume, packSkyline)
	case model.StrategyExtremePoints:
		return o.runQueue(ctx, truck, units, strategy, started, byVolume, packExtremePoints)
	case model.StrategyLAFF:
		return o.runQueue(ctx, truck, units, strategy, started, byMaxFace, packLAFF)
	case model.StrategyGenetic:
		gseed := o.Genetic.Seed
		if gseed == 0 {
			gseed = seed
		}
		searcher := newGeneticSearcher(truck, units, o.Settings, o.Genetic, gseed, o.workers(), o.Log)
		return searcher.run(ctx, started)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, strategy)
}

// runQueue is the shared greedy-strategy driver: sort, place, score.
func (o *Optimizer) runQueue(
	ctx context.Context,
	truck model.TruckSpec,
	units []model.CartonUnit,
	strategy model.Strategy,
	started time.Time,
	less func(a, b model.CartonUnit) bool,
	place func(context.Context, *packSpace, []packUnit) ([]model.UnpackedCarton, error),
) (*model.PackingResult, error) {
	space := newPackSpace(truck, o.Settings)
	unpacked, err := place(ctx, space, buildQueue(units, less))
	if err != nil {
		return nil, err
	}
	return buildResult(space, unpacked, strategy, started), nil
}

// packAuto races every strategy on the worker pool and keeps the one with
// the best packing efficiency. Ties keep the earlier candidate, so a rerun
// with the same seed picks the same winner.
func (o *Optimizer) packAuto(ctx context.Context, truck model.TruckSpec, units []model.CartonUnit, seed int64, started time.Time) (*model.PackingResult, error) {
	candidates := []model.Strategy{
		model.StrategySkyline,
		model.StrategyExtremePoints,
		model.StrategyLAFF,
		model.StrategyGenetic,
	}

	results := make([]*model.PackingResult, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(o.workers())
	for i, s := range candidates {
		i, s := i, s
		eg.Go(func() error {
			res, err := o.runStrategy(ctx, truck, units, s, seed, started)
			if err != nil {
				// Ran out of budget; the finished candidates still count
				return nil
			}
			results[i] = res
			o.Log.Debug().Str("strategy", string(s)).Float64("efficiency", res.PackingEfficiency).Msg("auto candidate finished")
			return nil
		})
	}
	_ = eg.Wait()

	var best *model.PackingResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.PackingEfficiency > best.PackingEfficiency {
			best = r
		}
	}
	if best == nil {
		return nil, ctx.Err()
	}
	best.ProcessingTime = time.Since(started)
	return best, nil
}

// fallbackResult runs one greedy pass without a deadline so an exhausted
// time budget still yields a usable load plan.
func (o *Optimizer) fallbackResult(truck model.TruckSpec, units []model.CartonUnit, started time.Time) *model.PackingResult {
	space := newPackSpace(truck, o.Settings)
	unpacked, _ := packLAFF(context.Background(), space, buildQueue(units, byMaxFace))
	res := buildResult(space, unpacked, model.StrategyLAFF, started)
	res.Warnings = append(res.Warnings, "time budget exceeded; fell back to a single greedy pass")
	o.Log.Warn().Str("truck", truck.ID).Msg("time budget exceeded, greedy fallback used")
	return res
}

func (o *Optimizer) emptyResult(truck model.TruckSpec, strategy model.Strategy, started time.Time) *model.PackingResult {
	space := newPackSpace(truck, o.Settings)
	return buildResult(space, nil, strategy, started)
}

// workers caps engine parallelism.
func (o *Optimizer) workers() int {
	if o.Settings.Workers > 0 {
		return o.Settings.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func normalizeStrategy(s model.Strategy) model.Strategy {
	if s == "" {
		return model.StrategyAuto
	}
	return s
}

func knownStrategy(s model.Strategy) bool {
	switch s {
	case model.StrategySkyline, model.StrategyExtremePoints, model.StrategyLAFF, model.StrategyGenetic, model.StrategyAuto:
		return true
	}
	return false
}
