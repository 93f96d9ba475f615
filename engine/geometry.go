package engine

import "github.com/loadwise/cargopack/model"

// orientationChoice pairs an orientation with its index in the canonical
// rotation order:
//
//	0: (L, W, H)   1: (L, H, W)   2: (W, L, H)
//	3: (W, H, L)   4: (H, L, W)   5: (H, W, L)
//
// Index 0 is the carton as specified; 2 is the 90 degree yaw. Both keep the
// original base face down.
type orientationChoice struct {
	index int
	o     model.Orientation
}

// uprightIndexes are the rotations that keep the original base face down,
// the only ones allowed for fragile cargo.
var uprightIndexes = [2]int{0, 2}

// orientationsFor enumerates the distinct allowed rotations of a carton.
// CanRotate=false yields only the identity. Fragile cartons keep their base
// face down. Rotations that repeat an earlier (L,W,H) triple, which happens
// whenever two carton dimensions are equal, are dropped.
func orientationsFor(c model.CartonSpec) []orientationChoice {
	if !c.CanRotate {
		return []orientationChoice{{index: 0, o: rotation(c, 0)}}
	}

	var indexes []int
	if c.Fragile {
		indexes = uprightIndexes[:]
	} else {
		indexes = []int{0, 1, 2, 3, 4, 5}
	}

	choices := make([]orientationChoice, 0, len(indexes))
	for _, idx := range indexes {
		o := rotation(c, idx)
		if containsOrientation(choices, o) {
			continue
		}
		choices = append(choices, orientationChoice{index: idx, o: o})
	}
	return choices
}

// rotation maps a rotation index to oriented dimensions.
func rotation(c model.CartonSpec, index int) model.Orientation {
	l, w, h := c.Length, c.Width, c.Height
	switch index {
	case 1:
		return model.Orientation{Length: l, Width: h, Height: w}
	case 2:
		return model.Orientation{Length: w, Width: l, Height: h}
	case 3:
		return model.Orientation{Length: w, Width: h, Height: l}
	case 4:
		return model.Orientation{Length: h, Width: l, Height: w}
	case 5:
		return model.Orientation{Length: h, Width: w, Height: l}
	default:
		return model.Orientation{Length: l, Width: w, Height: h}
	}
}

func containsOrientation(choices []orientationChoice, o model.Orientation) bool {
	for _, c := range choices {
		if c.o == o {
			return true
		}
	}
	return false
}

// fitsEmptyTruck reports whether any allowed orientation fits the bare cargo
// space. Units failing this can never be placed and are tagged
// ReasonGeometryTooLarge without scanning positions.
func fitsEmptyTruck(truck model.TruckSpec, choices []orientationChoice) bool {
	for _, c := range choices {
		if c.o.Length <= truck.Length+epsilon &&
			c.o.Width <= truck.Width+epsilon &&
			c.o.Height <= truck.Height+epsilon {
			return true
		}
	}
	return false
}
