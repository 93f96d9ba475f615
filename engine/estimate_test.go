package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadwise/cargopack/model"
)

func TestEstimateFleet_SplitsByPayloadCap(t *testing.T) {
	o := fastOptimizer()
	// Volume would allow all eight cubes in one truck; the payload cap
	// limits each truck to four.
	truck := testTruck(1000, 1000, 1000, 4000)
	units := model.ExpandCartons([]model.CartonSpec{cubeSpec("cube", 500, 1000, 8)})

	est, err := o.EstimateFleet(truck, units, 100)

	require.NoError(t, err)
	assert.Equal(t, 2, est.TrucksNeeded)
	require.Len(t, est.Results, 2)
	assert.Len(t, est.Results[0].Placed, 4)
	assert.Len(t, est.Results[1].Placed, 4)
	assert.Empty(t, est.Leftover)
	assert.InDelta(t, 200.0, est.TotalCost, 0.001, "two trucks over the full distance")
	assert.InDelta(t, 50.0, est.MeanVolumeUtil, 0.001)
}

func TestEstimateFleet_SingleTruckFitsAll(t *testing.T) {
	o := fastOptimizer()
	truck := testTruck(1000, 1000, 1000, 4000)
	units := model.ExpandCartons([]model.CartonSpec{cubeSpec("cube", 250, 10, 2)})

	est, err := o.EstimateFleet(truck, units, 50)

	require.NoError(t, err)
	assert.Equal(t, 1, est.TrucksNeeded)
	assert.Empty(t, est.Leftover)
	assert.InDelta(t, 50.0, est.TotalCost, 0.001)
	assert.InDelta(t, 3.125, est.MeanVolumeUtil, 0.001)
}

func TestEstimateFleet_OversizedUnitsNeverShip(t *testing.T) {
	o := fastOptimizer()
	truck := testTruck(500, 500, 500, 4000)
	units := model.ExpandCartons([]model.CartonSpec{cubeSpec("huge", 600, 10, 1)})

	est, err := o.EstimateFleet(truck, units, 100)

	require.NoError(t, err)
	assert.Equal(t, 0, est.TrucksNeeded)
	assert.Empty(t, est.Results)
	require.Len(t, est.Leftover, 1)
	assert.Equal(t, "huge-1", est.Leftover[0].UnitID)
	assert.Equal(t, 0.0, est.TotalCost)
	assert.Equal(t, 0.0, est.MeanVolumeUtil)
}

func TestEstimateFleet_EmptyManifest(t *testing.T) {
	o := fastOptimizer()

	est, err := o.EstimateFleet(testTruck(1000, 1000, 1000, 4000), nil, 100)

	require.NoError(t, err)
	assert.Equal(t, 0, est.TrucksNeeded)
	assert.Empty(t, est.Leftover)
}

func TestEstimateFleet_InvalidTruckRejected(t *testing.T) {
	o := fastOptimizer()
	units := model.ExpandCartons([]model.CartonSpec{cubeSpec("cube", 100, 1, 1)})

	_, err := o.EstimateFleet(testTruck(1000, -5, 1000, 4000), units, 100)

	assert.ErrorIs(t, err, model.ErrInvalidDimensions)
}
