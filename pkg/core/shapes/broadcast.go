package shapes

import "github.com/numdot/numdot/pkg/core/numerr"

// BroadcastDimensions returns the dimensions resulting from broadcasting a and b together.
//
// Dimensions are compared trailing-axis first: they are compatible if they are equal or if one of
// them is 1. The shorter list is implicitly padded with leading 1s, so scalars (empty dimensions)
// broadcast against anything. It returns a BroadcastError for incompatible dimensions.
func BroadcastDimensions(a, b []int) ([]int, error) {
	rank := max(len(a), len(b))
	result := make([]int, rank)
	for i := 0; i < rank; i++ {
		da, db := 1, 1
		if i < len(a) {
			da = a[len(a)-1-i]
		}
		if i < len(b) {
			db = b[len(b)-1-i]
		}
		switch {
		case da == db:
			result[rank-1-i] = da
		case da == 1:
			result[rank-1-i] = db
		case db == 1:
			result[rank-1-i] = da
		default:
			return nil, numerr.Errorf(numerr.ErrBroadcast, "shapes %v and %v cannot be broadcast together (axis %d from the end: %d vs %d)",
				a, b, i, da, db)
		}
	}
	return result, nil
}

// ExpandRank returns dimensions padded with leading 1s up to the given rank.
func ExpandRank(dimensions []int, rank int) []int {
	if len(dimensions) >= rank {
		return dimensions
	}
	expanded := make([]int, rank)
	pad := rank - len(dimensions)
	for i := range pad {
		expanded[i] = 1
	}
	copy(expanded[pad:], dimensions)
	return expanded
}
