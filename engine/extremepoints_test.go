package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadwise/cargopack/model"
)

func TestNewExtremePointIndex_SeedsOrigin(t *testing.T) {
	idx := newExtremePointIndex(testTruck(1000, 1000, 1000, 10000))

	require.Len(t, idx.points, 1)
	assert.Equal(t, point3{0, 0, 0}, idx.points[0])
}

func TestExtremePointUpdate_ConsumesAnchorAndProjectsCorners(t *testing.T) {
	idx := newExtremePointIndex(testTruck(1000, 1000, 1000, 10000))

	idx.update(0, 0, 0, model.Orientation{Length: 500, Width: 500, Height: 500})

	// The origin is covered; of the seven corner projections only the three
	// axis-adjacent ones survive dominance filtering.
	assert.Equal(t, []point3{{500, 0, 0}, {0, 500, 0}, {0, 0, 500}}, idx.points)
}

func TestExtremePointUpdate_DropsCornersFlushWithTruckFaces(t *testing.T) {
	idx := newExtremePointIndex(testTruck(500, 500, 1000, 10000))

	idx.update(0, 0, 0, model.Orientation{Length: 500, Width: 500, Height: 500})

	// The box spans the full floor, so only the top-face anchor remains
	assert.Equal(t, []point3{{0, 0, 500}}, idx.points)
}

func TestDominates(t *testing.T) {
	cases := []struct {
		name string
		q, p point3
		want bool
	}{
		{"closer on one axis", point3{0, 0, 0}, point3{100, 0, 0}, true},
		{"farther on one axis", point3{100, 0, 0}, point3{0, 0, 0}, false},
		{"equal points", point3{50, 50, 0}, point3{50, 50, 0}, false},
		{"incomparable", point3{0, 100, 0}, point3{100, 0, 0}, false},
		{"closer on all axes", point3{0, 0, 0}, point3{10, 10, 10}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dominates(tc.q, tc.p))
		})
	}
}

func TestFilterDominated_KeepsParetoFrontier(t *testing.T) {
	points := []point3{{0, 0, 0}, {100, 0, 0}, {0, 100, 0}, {50, 50, 0}}

	assert.Equal(t, []point3{{0, 0, 0}}, filterDominated(points))
}

func TestFilterDominated_DuplicatesKeepFirst(t *testing.T) {
	points := []point3{{5, 5, 5}, {5, 5, 5}}

	assert.Equal(t, []point3{{5, 5, 5}}, filterDominated(points))
}

func TestWasteScore(t *testing.T) {
	idx := newExtremePointIndex(testTruck(1000, 1000, 1000, 10000))
	o := model.Orientation{Length: 500, Width: 500, Height: 500}

	assert.InDelta(t, 0.5, idx.wasteScore(0, o), 0.001)
	assert.InDelta(t, 0.0, idx.wasteScore(500, o), 0.001)
}

func TestCornerBonus(t *testing.T) {
	idx := newExtremePointIndex(testTruck(1000, 1000, 1000, 10000))

	assert.InDelta(t, 1.0, idx.cornerBonus(point3{0, 0, 0}), 0.001)
	assert.InDelta(t, 1.0, idx.cornerBonus(point3{1000, 0, 0}), 0.001)
	assert.InDelta(t, 0.0, idx.cornerBonus(point3{500, 500, 0}), 0.001)
}

func TestPackExtremePoints_FillsFloorBeforeStacking(t *testing.T) {
	truck := testTruck(1000, 1000, 1000, 10000)
	space := newPackSpace(truck, model.DefaultSettings())

	unpacked, err := packExtremePoints(context.Background(), space, queueFor(cubeSpec("cube", 500, 100, 3)))

	require.NoError(t, err)
	assert.Len(t, unpacked, 0)
	require.Len(t, space.placed, 3)
	for _, b := range space.placed {
		assert.Equal(t, 0.0, b.z, "floor anchors outscore the stacked one while floor room remains")
	}
}

func TestPackExtremePoints_StacksThroughCoverRemoval(t *testing.T) {
	truck := testTruck(500, 500, 1500, 10000)
	space := newPackSpace(truck, model.DefaultSettings())

	unpacked, err := packExtremePoints(context.Background(), space, queueFor(cubeSpec("cube", 500, 100, 3)))

	require.NoError(t, err)
	assert.Len(t, unpacked, 0)
	require.Len(t, space.placed, 3)
	for i, wantZ := range []float64{0, 500, 1000} {
		assert.Equal(t, 0.0, space.placed[i].x)
		assert.Equal(t, 0.0, space.placed[i].y)
		assert.Equal(t, wantZ, space.placed[i].z)
		assert.InDelta(t, 1.0, space.placed[i].support, 0.001)
	}
}

func TestPackExtremePoints_NonStackableBaseBlocksStacking(t *testing.T) {
	truck := testTruck(300, 300, 1000, 10000)
	space := newPackSpace(truck, model.DefaultSettings())

	base := cubeSpec("base", 300, 50, 1)
	base.Stackable = false
	rider := cubeSpec("rider", 300, 50, 1)

	unpacked, err := packExtremePoints(context.Background(), space, queueFor(base, rider))

	require.NoError(t, err)
	require.Len(t, space.placed, 1)
	require.Len(t, unpacked, 1)
	assert.Equal(t, model.ReasonInsufficientSupport, unpacked[0].Reason)
}

func TestPackExtremePoints_CancelledContext(t *testing.T) {
	truck := testTruck(1000, 1000, 1000, 10000)
	space := newPackSpace(truck, model.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := packExtremePoints(ctx, space, queueFor(cubeSpec("cube", 500, 100, 1)))

	assert.Error(t, err)
}
