package geom

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ConvexHull2D returns the indices of the convex hull of the xy
// projection of points, counter-clockwise, starting at the lexicographic
// minimum and without repeating it. Collinear points on the hull boundary
// are dropped. Fewer than three distinct points yield what is available.
func ConvexHull2D(points []r3.Vec) []int {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := points[order[i]], points[order[j]]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	// Drop exact xy duplicates; keep the lowest original index.
	distinct := order[:0]
	for _, idx := range order {
		if len(distinct) > 0 {
			prev := points[distinct[len(distinct)-1]]
			if prev.X == points[idx].X && prev.Y == points[idx].Y {
				continue
			}
		}
		distinct = append(distinct, idx)
	}
	if len(distinct) < 3 {
		return append([]int(nil), distinct...)
	}

	// Andrew's monotone chain.
	var lower, upper []int
	for _, idx := range distinct {
		for len(lower) >= 2 && cross2(points[lower[len(lower)-2]], points[lower[len(lower)-1]], points[idx]) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, idx)
	}
	for i := len(distinct) - 1; i >= 0; i-- {
		idx := distinct[i]
		for len(upper) >= 2 && cross2(points[upper[len(upper)-2]], points[upper[len(upper)-1]], points[idx]) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, idx)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// PointInLoop reports whether p lies strictly inside the closed xy loop
// described by loop (a chain whose last vertex repeats the first), using
// an even-odd ray cast.
func PointInLoop(p r3.Vec, vertices []r3.Vec, loop []uint32) bool {
	inside := false
	for i := 0; i+1 < len(loop); i++ {
		a, b := vertices[loop[i]], vertices[loop[i+1]]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
