package geom

import (
	"math"
	"sort"

	"github.com/chiselgeo/chisel/internal/boundary"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle references three vertices of the point set it was built from,
// in counter-clockwise order.
type Triangle struct {
	A, B, C int
}

// Delaunay triangulates the xy projection of points with the
// Bowyer–Watson incremental algorithm. The z coordinate is ignored.
// Duplicate xy positions must be merged by the caller first.
func Delaunay(points []r3.Vec) ([]Triangle, error) {
	if len(points) < 3 {
		return nil, boundary.Executionf("triangulation needs at least 3 points, got %d", len(points))
	}

	box := BoundingBox(points)
	span := math.Max(LongestAxis(box), 1)
	center := Center(box)

	// Super-triangle large enough to contain every circumcircle.
	n := len(points)
	pts := make([]r3.Vec, n, n+3)
	copy(pts, points)
	pts = append(pts,
		r3.Vec{X: center.X - 20*span, Y: center.Y - span},
		r3.Vec{X: center.X + 20*span, Y: center.Y - span},
		r3.Vec{X: center.X, Y: center.Y + 20*span},
	)
	tris := []Triangle{{A: n, B: n + 1, C: n + 2}}

	for p := 0; p < n; p++ {
		// Triangles whose circumcircle contains the new point.
		var bad []int
		for i, t := range tris {
			if inCircumcircle(pts[t.A], pts[t.B], pts[t.C], pts[p]) {
				bad = append(bad, i)
			}
		}
		if len(bad) == 0 {
			return nil, boundary.Executionf("degenerate point set: point %d is outside every circumcircle", p)
		}

		// Boundary of the cavity: edges that belong to exactly one bad triangle.
		edgeCount := make(map[[2]int]int)
		edgeDir := make(map[[2]int][2]int)
		for _, i := range bad {
			t := tris[i]
			for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
				key := edgeKey(e[0], e[1])
				edgeCount[key]++
				edgeDir[key] = e
			}
		}

		// Remove bad triangles, highest index first.
		sort.Sort(sort.Reverse(sort.IntSlice(bad)))
		for _, i := range bad {
			tris[i] = tris[len(tris)-1]
			tris = tris[:len(tris)-1]
		}

		// Re-triangulate the cavity.
		keys := make([][2]int, 0, len(edgeCount))
		for key, count := range edgeCount {
			if count == 1 {
				keys = append(keys, key)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i][0] != keys[j][0] {
				return keys[i][0] < keys[j][0]
			}
			return keys[i][1] < keys[j][1]
		})
		for _, key := range keys {
			e := edgeDir[key]
			tris = append(tris, orient(pts, Triangle{A: e[0], B: e[1], C: p}))
		}
	}

	// Drop everything touching the super-triangle.
	out := tris[:0]
	for _, t := range tris {
		if t.A < n && t.B < n && t.C < n {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, boundary.Executionf("triangulation produced no triangles; input may be collinear")
	}
	return out, nil
}

// Circumcenter returns the circumcircle center of the xy projection of a
// triangle, with z = 0. The triangle must not be degenerate.
func Circumcenter(a, b, c r3.Vec) r3.Vec {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if d == 0 {
		return r3.Vec{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	return r3.Vec{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
}

// Adjacency maps every undirected triangle edge to the triangles sharing
// it. Hull edges map to a single triangle.
func Adjacency(tris []Triangle) map[[2]int][]int {
	adj := make(map[[2]int][]int, len(tris)*3/2)
	for i, t := range tris {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			key := edgeKey(e[0], e[1])
			adj[key] = append(adj[key], i)
		}
	}
	return adj
}

func edgeKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

func orient(pts []r3.Vec, t Triangle) Triangle {
	if cross2(pts[t.A], pts[t.B], pts[t.C]) < 0 {
		t.B, t.C = t.C, t.B
	}
	return t
}

// cross2 is the z component of (b-a)×(c-a) in the xy plane.
func cross2(a, b, c r3.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inCircumcircle reports whether p lies strictly inside the circumcircle
// of the CCW triangle abc, via the standard 3×3 determinant.
func inCircumcircle(a, b, c, p r3.Vec) bool {
	if cross2(a, b, c) < 0 {
		b, c = c, b
	}
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y
	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)
	return det > 0
}
