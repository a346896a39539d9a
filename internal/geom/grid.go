package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// HeightGrid is a uniform xy bucket index over a triangle list, built once
// per call to answer "highest surface point under a tool footprint"
// queries during toolpath generation.
type HeightGrid struct {
	verts []r3.Vec
	tris  []uint32

	minX, minY float64
	cell       float64
	nx, ny     int
	cells      [][]int
}

// NewHeightGrid indexes tris (a triangle list into verts) with the given
// cell size. cell must be positive.
func NewHeightGrid(verts []r3.Vec, tris []uint32, cell float64) *HeightGrid {
	box := BoundingBox(verts)
	g := &HeightGrid{
		verts: verts,
		tris:  tris,
		minX:  box.Min.X,
		minY:  box.Min.Y,
		cell:  cell,
	}
	size := Size(box)
	g.nx = int(size.X/cell) + 1
	g.ny = int(size.Y/cell) + 1
	g.cells = make([][]int, g.nx*g.ny)

	for t := 0; t*3 < len(tris); t++ {
		a, b, c := verts[tris[t*3]], verts[tris[t*3+1]], verts[tris[t*3+2]]
		x0, x1 := g.clampX(math.Min(a.X, math.Min(b.X, c.X))), g.clampX(math.Max(a.X, math.Max(b.X, c.X)))
		y0, y1 := g.clampY(math.Min(a.Y, math.Min(b.Y, c.Y))), g.clampY(math.Max(a.Y, math.Max(b.Y, c.Y)))
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				g.cells[cy*g.nx+cx] = append(g.cells[cy*g.nx+cx], t)
			}
		}
	}
	return g
}

func (g *HeightGrid) clampX(x float64) int {
	i := int((x - g.minX) / g.cell)
	return clampInt(i, 0, g.nx-1)
}

func (g *HeightGrid) clampY(y float64) int {
	i := int((y - g.minY) / g.cell)
	return clampInt(i, 0, g.ny-1)
}

func clampInt(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// trianglesNear returns the ids of triangles whose cells intersect the
// disc, sorted for deterministic evaluation order.
func (g *HeightGrid) trianglesNear(x, y, r float64) []int {
	x0, x1 := g.clampX(x-r), g.clampX(x+r)
	y0, y1 := g.clampY(y-r), g.clampY(y+r)
	seen := make(map[int]bool)
	var ids []int
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			for _, t := range g.cells[cy*g.nx+cx] {
				if !seen[t] {
					seen[t] = true
					ids = append(ids, t)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// Drop lowers a tool of radius r onto the surface at (x,y) and returns
// the tip height. ball selects a ball-nose contact model; otherwise the
// tool is flat-ended. floor is returned when nothing is under the tool.
//
// The drop is evaluated on a candidate set per triangle: vertices inside
// the footprint, edge/footprint clip points, the point straight under the
// center and the steepest-ascent point of the footprint rim. For a flat
// tool on piecewise-planar geometry this covers every maximum.
func (g *HeightGrid) Drop(x, y, r float64, ball bool, floor float64) float64 {
	tip := math.Inf(-1)
	lift := func(q r3.Vec) float64 {
		dx, dy := q.X-x, q.Y-y
		d2 := dx*dx + dy*dy
		if d2 > r*r {
			return math.Inf(-1)
		}
		if !ball {
			return q.Z
		}
		return q.Z + math.Sqrt(r*r-d2) - r
	}

	for _, t := range g.trianglesNear(x, y, r) {
		a, b, c := g.verts[g.tris[t*3]], g.verts[g.tris[t*3+1]], g.verts[g.tris[t*3+2]]
		for _, q := range triangleCandidates(a, b, c, x, y, r) {
			if z := lift(q); z > tip {
				tip = z
			}
		}
	}
	if math.IsInf(tip, -1) || tip < floor {
		return floor
	}
	return tip
}

// triangleCandidates collects the surface points of triangle abc that can
// realize the maximum tool lift within the xy disc (cx,cy,r).
func triangleCandidates(a, b, c r3.Vec, cx, cy, r float64) []r3.Vec {
	out := make([]r3.Vec, 0, 10)
	out = append(out, a, b, c)

	// Per edge: the point closest to the tool center (where a ball tool
	// contacts an interior edge) and the disc-rim intersections.
	for _, e := range [3][2]r3.Vec{{a, b}, {b, c}, {c, a}} {
		dx, dy := e[1].X-e[0].X, e[1].Y-e[0].Y
		fx, fy := e[0].X-cx, e[0].Y-cy
		qa := dx*dx + dy*dy
		if qa == 0 {
			continue
		}
		s := -(fx*dx + fy*dy) / qa
		s = math.Max(0, math.Min(1, s))
		out = append(out, r3.Add(e[0], r3.Scale(s, r3.Sub(e[1], e[0]))))

		qb := 2 * (fx*dx + fy*dy)
		qc := fx*fx + fy*fy - r*r
		disc := qb*qb - 4*qa*qc
		if disc < 0 {
			continue
		}
		sq := math.Sqrt(disc)
		for _, s := range [2]float64{(-qb - sq) / (2 * qa), (-qb + sq) / (2 * qa)} {
			if s >= 0 && s <= 1 {
				out = append(out, r3.Add(e[0], r3.Scale(s, r3.Sub(e[1], e[0]))))
			}
		}
	}

	// Point straight under the tool center, and the steepest-ascent point
	// of the rim, when they land inside the triangle.
	if z, ok := planeZ(a, b, c, cx, cy); ok {
		out = append(out, r3.Vec{X: cx, Y: cy, Z: z})
	}
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if n.Z != 0 {
		gx, gy := -n.X/n.Z, -n.Y/n.Z
		gn := math.Hypot(gx, gy)
		if gn > 0 {
			px, py := cx+r*gx/gn, cy+r*gy/gn
			if z, ok := planeZ(a, b, c, px, py); ok {
				out = append(out, r3.Vec{X: px, Y: py, Z: z})
			}
		}
	}
	return out
}

// planeZ evaluates the triangle plane at (x,y) and reports whether the
// point lies inside the triangle's xy projection.
func planeZ(a, b, c r3.Vec, x, y float64) (float64, bool) {
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det == 0 {
		return 0, false
	}
	l1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	l2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	l3 := 1 - l1 - l2
	const eps = 1e-12
	if l1 < -eps || l2 < -eps || l3 < -eps {
		return 0, false
	}
	return l1*a.Z + l2*b.Z + l3*c.Z, true
}
