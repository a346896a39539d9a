package ops

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("voronoi_diagram", voronoiDiagram{}) }

// maxDimensionDefault guards against sites so far apart that the clipped
// diagram loses all float precision.
const maxDimensionDefault = 200000.0

// voronoiDiagram emits the Voronoi diagram of a point cloud as edges,
// built as the dual of the Delaunay triangulation. Edges of unbounded
// cells are clipped against the padded site bounding box.
type voronoiDiagram struct{}

func (voronoiDiagram) Validate(cfg boundary.Config) error {
	if v, ok, err := cfg.Float("max_dimension"); err != nil {
		return err
	} else if ok && v <= 0 {
		return boundary.Validationf("max_dimension", "max_dimension must be positive, got %v", v)
	}
	return nil
}

func (voronoiDiagram) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	maxDim := maxDimensionDefault
	if v, ok, _ := cfg.Float("max_dimension"); ok {
		maxDim = v
	}

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	sites := weldSites(model.Vertices, 0)
	if len(sites) < 2 {
		return boundary.Result{}, boundary.Executionf("voronoi_diagram needs at least 2 distinct sites, got %d", len(sites))
	}
	box := geom.BoundingBox(sites)
	if geom.LongestAxis(box) > maxDim {
		return boundary.Result{}, boundary.Executionf("site extent %v exceeds max_dimension %v", geom.LongestAxis(box), maxDim)
	}
	clip := geom.Pad(box, math.Max(geom.LongestAxis(box)/2, 1))

	result := boundary.Result{
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	dedup := geom.NewDeduplicator(len(sites))

	if len(sites) == 2 {
		if err := bisectorEdge(&result, dedup, sites[0], sites[1], clip); err != nil {
			return boundary.Result{}, err
		}
		result.Vertices = dedup.Vertices
		return result, nil
	}

	tris, err := geom.Delaunay(sites)
	if err != nil {
		return boundary.Result{}, err
	}
	centers := make([]r3.Vec, len(tris))
	for i, t := range tris {
		centers[i] = geom.Circumcenter(sites[t.A], sites[t.B], sites[t.C])
	}
	adjacency := geom.Adjacency(tris)

	for i, t := range tris {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			partner := -1
			for _, j := range adjacency[voronoiEdgeKey(e[0], e[1])] {
				if j != i {
					partner = j
				}
			}
			switch {
			case partner > i:
				if err := voronoiSegment(&result, dedup, centers[i], centers[partner]); err != nil {
					return boundary.Result{}, err
				}
			case partner < 0:
				// Hull edge: the dual edge is a ray from the circumcenter
				// away from the triangle interior.
				dir := outwardNormal(sites[e[0]], sites[e[1]], sites[opposite(t, e[0], e[1])])
				far, ok := clipRay(centers[i], dir, clip)
				if !ok {
					continue
				}
				if err := voronoiSegment(&result, dedup, centers[i], far); err != nil {
					return boundary.Result{}, err
				}
			}
		}
	}
	result.Vertices = dedup.Vertices
	if len(result.Indices) == 0 {
		return boundary.Result{}, boundary.Executionf("voronoi diagram is empty")
	}
	return result, nil
}

func voronoiSegment(result *boundary.Result, dedup *geom.Deduplicator, a, b r3.Vec) error {
	ia, err := dedup.Index(a)
	if err != nil {
		return err
	}
	ib, err := dedup.Index(b)
	if err != nil {
		return err
	}
	if ia == ib {
		return nil
	}
	result.Indices = append(result.Indices, ia, ib)
	return nil
}

// bisectorEdge handles the two-site diagram: one perpendicular bisector
// clipped at both ends.
func bisectorEdge(result *boundary.Result, dedup *geom.Deduplicator, a, b r3.Vec, clip r3.Box) error {
	mid := r3.Scale(0.5, r3.Add(a, b))
	d := r3.Sub(b, a)
	dir := r3.Vec{X: -d.Y, Y: d.X}
	p0, ok0 := clipRay(mid, dir, clip)
	p1, ok1 := clipRay(mid, r3.Scale(-1, dir), clip)
	if !ok0 || !ok1 {
		return boundary.Executionf("bisector does not intersect the clip region")
	}
	return voronoiSegment(result, dedup, p0, p1)
}

func voronoiEdgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// opposite returns the triangle vertex not on edge (a,b).
func opposite(t geom.Triangle, a, b int) int {
	for _, v := range [3]int{t.A, t.B, t.C} {
		if v != a && v != b {
			return v
		}
	}
	return t.A
}

// outwardNormal is the xy normal of edge (a,b) pointing away from inner.
func outwardNormal(a, b, inner r3.Vec) r3.Vec {
	d := r3.Sub(b, a)
	n := r3.Vec{X: -d.Y, Y: d.X}
	toInner := r3.Sub(inner, a)
	if n.X*toInner.X+n.Y*toInner.Y > 0 {
		n = r3.Scale(-1, n)
	}
	return n
}

// clipRay intersects the xy ray origin + t*dir (t >= 0) with box and
// returns the exit point. ok is false when the ray misses the box.
func clipRay(origin, dir r3.Vec, box r3.Box) (r3.Vec, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	for _, axis := range [2][3]float64{
		{origin.X, dir.X, 0},
		{origin.Y, dir.Y, 1},
	} {
		o, d := axis[0], axis[1]
		lo, hi := box.Min.X, box.Max.X
		if axis[2] == 1 {
			lo, hi = box.Min.Y, box.Max.Y
		}
		if d == 0 {
			if o < lo || o > hi {
				return r3.Vec{}, false
			}
			continue
		}
		t0, t1 := (lo-o)/d, (hi-o)/d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
	}
	if tMax < tMin {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(tMax, dir)), true
}
