package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/loadwise/cargopack/model"
)

// Fitness blend for the sequence search: packed volume ratio and packed
// count ratio, both in [0,1].
const (
	geneVolumeWeight = 0.5
	geneCountWeight  = 0.5
)

// GeneticConfig tunes the genetic sequence search.
type GeneticConfig struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	Seed           int64   `json:"seed"` // 0 inherits the engine seed
}

func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
	}
}

// normalized fills non-positive fields from the defaults.
func (c GeneticConfig) normalized() GeneticConfig {
	def := DefaultGeneticConfig()
	if c.PopulationSize < 2 {
		c.PopulationSize = def.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = def.Generations
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = def.CrossoverRate
	}
	if c.MutationRate <= 0 {
		c.MutationRate = def.MutationRate
	}
	return c
}

// gene fixes one unit's slot in the packing order and its orientation
// choice.
type gene struct {
	unitIdx     int
	orientation int // Index into the unit's choice list
}

type chromosome struct {
	genes   []gene
	fitness float64
}

func cloneChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}

// geneticSearcher evolves packing sequences, using the skyline strategy
// with fixed orientations as its fitness oracle. All randomness flows
// through one seeded source owned by the search, so a fixed seed replays
// exactly; fitness evaluation carries no RNG and may run in parallel.
type geneticSearcher struct {
	truck    model.TruckSpec
	units    []model.CartonUnit
	choices  [][]orientationChoice
	settings model.PackSettings
	cfg      GeneticConfig
	workers  int
	rng      *rand.Rand
	log      zerolog.Logger
}

func newGeneticSearcher(truck model.TruckSpec, units []model.CartonUnit, settings model.PackSettings, cfg GeneticConfig, seed int64, workers int, log zerolog.Logger) *geneticSearcher {
	choices := make([][]orientationChoice, len(units))
	for i, u := range units {
		choices[i] = orientationsFor(u.Spec)
	}
	if workers < 1 {
		workers = 1
	}
	return &geneticSearcher{
		truck:    truck,
		units:    units,
		choices:  choices,
		settings: settings,
		cfg:      cfg.normalized(),
		workers:  workers,
		rng:      rand.New(rand.NewSource(seed)),
		log:      log,
	}
}

// run evolves the population for the configured generations and
// materializes the best chromosome seen across all of them. At a context
// deadline it stops after the current generation and returns the best so
// far with a warning; the error is non-nil only when not a single
// generation finished.
func (g *geneticSearcher) run(ctx context.Context, started time.Time) (*model.PackingResult, error) {
	pop := g.initPopulation()
	best := chromosome{fitness: -1}
	generationsRun := 0

	for gen := 0; gen < g.cfg.Generations; gen++ {
		if ctx.Err() != nil {
			break
		}
		if err := g.evaluate(ctx, pop); err != nil {
			break
		}
		sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })
		if pop[0].fitness > best.fitness {
			best = cloneChromosome(pop[0])
		}
		generationsRun++

		if gen%20 == 0 {
			g.log.Debug().Int("generation", gen).Float64("best_fitness", best.fitness).Msg("sequence search progress")
		}
		if gen == g.cfg.Generations-1 {
			break
		}
		pop = g.nextGeneration(pop)
	}

	if best.fitness < 0 {
		return nil, ctx.Err()
	}

	res := g.materialize(best, started)
	if generationsRun < g.cfg.Generations {
		res.Warnings = append(res.Warnings, fmt.Sprintf("sequence search stopped early after %d of %d generations", generationsRun, g.cfg.Generations))
		g.log.Warn().Int("generations_run", generationsRun).Msg("sequence search cut short by time budget")
	}
	return res, nil
}

// initPopulation builds random permutations with random orientation
// choices.
func (g *geneticSearcher) initPopulation() []chromosome {
	pop := make([]chromosome, g.cfg.PopulationSize)
	for i := range pop {
		perm := g.rng.Perm(len(g.units))
		genes := make([]gene, len(perm))
		for slot, unitIdx := range perm {
			genes[slot] = gene{
				unitIdx:     unitIdx,
				orientation: g.rng.Intn(len(g.choices[unitIdx])),
			}
		}
		pop[i] = chromosome{genes: genes, fitness: -1}
	}
	return pop
}

// evaluate scores every chromosome. Evaluations are independent and run on
// the worker pool; returning is the generation barrier.
func (g *geneticSearcher) evaluate(ctx context.Context, pop []chromosome) error {
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i := range pop {
		c := &pop[i]
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			c.fitness = g.fitnessOf(c.genes)
			return nil
		})
	}
	return eg.Wait()
}

// fitnessOf simulates a skyline packing in chromosome order with the
// chromosome's fixed orientations.
func (g *geneticSearcher) fitnessOf(genes []gene) float64 {
	space := newPackSpace(g.truck, g.settings)
	_, _ = packSkyline(context.Background(), space, g.decode(genes))

	var volRatio float64
	if v := g.truck.Volume(); v > 0 {
		volRatio = space.packedVolume() / v
	}
	var countRatio float64
	if len(genes) > 0 {
		countRatio = float64(len(space.placed)) / float64(len(genes))
	}
	return geneVolumeWeight*volRatio + geneCountWeight*countRatio
}

// decode turns a chromosome into a fixed-order, fixed-orientation queue.
func (g *geneticSearcher) decode(genes []gene) []packUnit {
	queue := make([]packUnit, len(genes))
	for i, gn := range genes {
		options := g.choices[gn.unitIdx]
		pick := gn.orientation % len(options)
		queue[i] = packUnit{
			unit:    g.units[gn.unitIdx],
			choices: options[pick : pick+1],
		}
	}
	return queue
}

// nextGeneration carries the top half forward unmodified and refills the
// rest by crossover and mutation over pairs drawn from that elite.
func (g *geneticSearcher) nextGeneration(pop []chromosome) []chromosome {
	elite := pop[:len(pop)/2]
	if len(elite) == 0 {
		elite = pop[:1]
	}

	next := make([]chromosome, 0, g.cfg.PopulationSize)
	for _, c := range elite {
		next = append(next, cloneChromosome(c))
	}
	for len(next) < g.cfg.PopulationSize {
		p1 := elite[g.rng.Intn(len(elite))]
		p2 := elite[g.rng.Intn(len(elite))]

		var child chromosome
		if g.rng.Float64() < g.cfg.CrossoverRate {
			child = g.crossover(p1, p2)
		} else {
			child = cloneChromosome(p1)
		}
		g.mutate(&child)
		child.fitness = -1
		next = append(next, child)
	}
	return next
}

// crossover keeps a prefix of the first parent and fills the tail with the
// units missing from it, in the second parent's order. Each slot keeps the
// orientation of the parent that supplied it, and the single cut keeps the
// child a valid permutation.
func (g *geneticSearcher) crossover(p1, p2 chromosome) chromosome {
	n := len(p1.genes)
	if n < 2 {
		return cloneChromosome(p1)
	}
	cut := 1 + g.rng.Intn(n-1)

	genes := make([]gene, 0, n)
	used := make(map[int]bool, cut)
	for _, gn := range p1.genes[:cut] {
		genes = append(genes, gn)
		used[gn.unitIdx] = true
	}
	for _, gn := range p2.genes {
		if !used[gn.unitIdx] {
			genes = append(genes, gn)
		}
	}
	return chromosome{genes: genes}
}

// mutate swaps two slots with the mutation probability and, independently,
// re-rolls one slot's orientation with the same probability.
func (g *geneticSearcher) mutate(c *chromosome) {
	n := len(c.genes)
	if n == 0 {
		return
	}
	if n >= 2 && g.rng.Float64() < g.cfg.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}
	if g.rng.Float64() < g.cfg.MutationRate {
		i := g.rng.Intn(n)
		c.genes[i].orientation = g.rng.Intn(len(g.choices[c.genes[i].unitIdx]))
	}
}

// materialize replays the winning sequence into a full result.
func (g *geneticSearcher) materialize(best chromosome, started time.Time) *model.PackingResult {
	space := newPackSpace(g.truck, g.settings)
	unpacked, _ := packSkyline(context.Background(), space, g.decode(best.genes))
	return buildResult(space, unpacked, model.StrategyGenetic, started)
}
