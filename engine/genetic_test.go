package engine

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/loadwise/cargopack/model"
)

func makeTestTruck() model.TruckSpec {
	return model.TruckSpec{
		ID:              "truck-1",
		Name:            "test truck",
		Length:          1000,
		Width:           1000,
		Height:          1000,
		MaxWeight:       10000,
		CostPerDistance: 1,
	}
}

func makeTestUnits(n int, l, w, h float64) []model.CartonUnit {
	units := make([]model.CartonUnit, n)
	for i := range units {
		spec := model.CartonSpec{
			ID:        fmt.Sprintf("unit-%d", i),
			Name:      fmt.Sprintf("unit %d", i),
			Length:    l,
			Width:     w,
			Height:    h,
			Weight:    10,
			Quantity:  1,
			Stackable: true,
			CanRotate: true,
		}
		units[i] = model.CartonUnit{UnitID: spec.ID + "-1", Spec: spec}
	}
	return units
}

func makeTestSearcher(units []model.CartonUnit, cfg GeneticConfig, seed int64) *geneticSearcher {
	return newGeneticSearcher(makeTestTruck(), units, model.DefaultSettings(), cfg, seed, 2, zerolog.Nop())
}

func checkPermutation(t *testing.T, genes []gene, n int) {
	t.Helper()
	if len(genes) != n {
		t.Fatalf("got %d genes, want %d", len(genes), n)
	}
	seen := make(map[int]bool, n)
	for _, gn := range genes {
		if gn.unitIdx < 0 || gn.unitIdx >= n {
			t.Fatalf("unit index %d out of range", gn.unitIdx)
		}
		if seen[gn.unitIdx] {
			t.Errorf("unit index %d appears more than once", gn.unitIdx)
		}
		seen[gn.unitIdx] = true
	}
}

func TestGeneticConfigNormalized(t *testing.T) {
	got := GeneticConfig{}.normalized()
	if got != DefaultGeneticConfig() {
		t.Errorf("zero config normalized to %+v, want defaults", got)
	}

	got = GeneticConfig{PopulationSize: 10}.normalized()
	if got.PopulationSize != 10 {
		t.Errorf("got population %d, want 10 kept", got.PopulationSize)
	}
	if got.Generations != 100 {
		t.Errorf("got generations %d, want default 100", got.Generations)
	}

	got = GeneticConfig{PopulationSize: 1}.normalized()
	if got.PopulationSize != 50 {
		t.Errorf("got population %d, want degenerate size replaced by 50", got.PopulationSize)
	}
}

func TestInitPopulationBuildsValidPermutations(t *testing.T) {
	units := makeTestUnits(6, 100, 200, 300)
	g := makeTestSearcher(units, GeneticConfig{PopulationSize: 10, Generations: 5}, 1)

	pop := g.initPopulation()

	if len(pop) != 10 {
		t.Fatalf("got %d chromosomes, want 10", len(pop))
	}
	for _, c := range pop {
		checkPermutation(t, c.genes, len(units))
		if c.fitness != -1 {
			t.Errorf("got fitness %f on a fresh chromosome, want -1", c.fitness)
		}
	}
}

func TestCrossoverPreservesAllUnits(t *testing.T) {
	units := makeTestUnits(8, 100, 200, 300)
	g := makeTestSearcher(units, DefaultGeneticConfig(), 1)

	p1 := chromosome{genes: make([]gene, len(units))}
	p2 := chromosome{genes: make([]gene, len(units))}
	for i := range units {
		p1.genes[i] = gene{unitIdx: i}
		p2.genes[i] = gene{unitIdx: len(units) - 1 - i}
	}

	for trial := 0; trial < 25; trial++ {
		child := g.crossover(p1, p2)
		checkPermutation(t, child.genes, len(units))
	}
}

func TestMutateKeepsPermutationAndOrientationRange(t *testing.T) {
	units := makeTestUnits(8, 100, 200, 300)
	cfg := DefaultGeneticConfig()
	cfg.MutationRate = 1.0
	g := makeTestSearcher(units, cfg, 3)

	c := chromosome{genes: make([]gene, len(units))}
	for i := range units {
		c.genes[i] = gene{unitIdx: i}
	}

	for trial := 0; trial < 50; trial++ {
		g.mutate(&c)
		checkPermutation(t, c.genes, len(units))
		for _, gn := range c.genes {
			if gn.orientation < 0 || gn.orientation >= len(g.choices[gn.unitIdx]) {
				t.Fatalf("orientation %d out of range for unit %d", gn.orientation, gn.unitIdx)
			}
		}
	}
}

func TestDecodePinsSingleOrientation(t *testing.T) {
	units := makeTestUnits(1, 100, 200, 300)
	g := makeTestSearcher(units, DefaultGeneticConfig(), 1)

	queue := g.decode([]gene{{unitIdx: 0, orientation: 4}})

	if len(queue) != 1 {
		t.Fatalf("got %d queue entries, want 1", len(queue))
	}
	if len(queue[0].choices) != 1 {
		t.Fatalf("got %d choices, want the one picked orientation", len(queue[0].choices))
	}
	if queue[0].choices[0].index != 4 {
		t.Errorf("got rotation index %d, want 4", queue[0].choices[0].index)
	}
}

func TestFitnessRewardsFullerPacking(t *testing.T) {
	truck := model.TruckSpec{ID: "t", Name: "t", Length: 600, Width: 400, Height: 1000, MaxWeight: 1000, CostPerDistance: 1}
	units := makeTestUnits(1, 600, 400, 200)
	g := newGeneticSearcher(truck, units, model.DefaultSettings(), DefaultGeneticConfig(), 1, 1, zerolog.Nop())

	flat := g.fitnessOf([]gene{{unitIdx: 0, orientation: 0}})
	sideways := g.fitnessOf([]gene{{unitIdx: 0, orientation: 4}})

	// Flat packs the unit (volume ratio 0.2, count ratio 1); sideways does
	// not fit the truck at all.
	if math.Abs(flat-0.6) > 0.001 {
		t.Errorf("got flat fitness %f, want 0.6", flat)
	}
	if sideways != 0 {
		t.Errorf("got sideways fitness %f, want 0", sideways)
	}
}

func TestRunPacksEverythingWithAmpleRoom(t *testing.T) {
	units := makeTestUnits(8, 250, 250, 250)
	g := makeTestSearcher(units, GeneticConfig{PopulationSize: 10, Generations: 5}, 42)

	res, err := g.run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Placed) != len(units) {
		t.Errorf("got %d placed, want %d", len(res.Placed), len(units))
	}
	if len(res.Unpacked) != 0 {
		t.Errorf("got %d unpacked, want 0", len(res.Unpacked))
	}
	if res.AlgorithmUsed != model.StrategyGenetic {
		t.Errorf("got algorithm %q, want %q", res.AlgorithmUsed, model.StrategyGenetic)
	}
	if !res.Success {
		t.Error("got failed result, want success")
	}
}

func TestRunReproducibleWithFixedSeed(t *testing.T) {
	units := makeTestUnits(6, 200, 300, 400)
	cfg := GeneticConfig{PopulationSize: 12, Generations: 8}

	first, err := makeTestSearcher(units, cfg, 42).run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := makeTestSearcher(units, cfg, 42).run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Placed, second.Placed) {
		t.Error("same seed produced different placements")
	}
	if first.VolumeUtilization != second.VolumeUtilization {
		t.Errorf("got utilizations %f and %f, want identical", first.VolumeUtilization, second.VolumeUtilization)
	}
}

func TestRunDeadCtxReturnsError(t *testing.T) {
	units := makeTestUnits(4, 250, 250, 250)
	g := makeTestSearcher(units, GeneticConfig{PopulationSize: 6, Generations: 5}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.run(ctx, time.Now())
	if err == nil {
		t.Fatal("got nil error from a dead context")
	}
	if res != nil {
		t.Errorf("got a result alongside the error: %+v", res)
	}
}

// expiringCtx reports a deadline error from its nth Err call on. It never
// closes a done channel, so only the generation loop's own polling sees it.
type expiringCtx struct {
	calls int
	limit int
}

func (c *expiringCtx) Deadline() (time.Time, bool) { return time.Time{}, false }
func (c *expiringCtx) Done() <-chan struct{}       { return nil }
func (c *expiringCtx) Value(any) any               { return nil }

func (c *expiringCtx) Err() error {
	c.calls++
	if c.calls >= c.limit {
		return context.DeadlineExceeded
	}
	return nil
}

func TestRunStoppedEarlyKeepsBestAndWarns(t *testing.T) {
	units := makeTestUnits(4, 250, 250, 250)
	g := makeTestSearcher(units, GeneticConfig{PopulationSize: 6, Generations: 5}, 1)

	res, err := g.run(&expiringCtx{limit: 2}, time.Now())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Placed) != len(units) {
		t.Errorf("got %d placed, want %d", len(res.Placed), len(units))
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(res.Warnings))
	}
	want := "sequence search stopped early after 1 of 5 generations"
	if res.Warnings[0] != want {
		t.Errorf("got warning %q, want %q", res.Warnings[0], want)
	}
}
