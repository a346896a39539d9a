package ops

import (
	"math"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

func init() { Register("centerline", centerline{}) }

// centerline derives a topological skeleton from a closed planar boundary
// loop. The skeleton is the interior part of the Voronoi diagram of the
// boundary vertices: circumcenters of the Delaunay triangulation connected
// across adjacent triangles, with each interior circumcenter also tied to
// its projection on the boundary edges of its triangle. Skeleton chains
// are simplified with the tolerance parameter.
type centerline struct{}

func (centerline) Validate(cfg boundary.Config) error {
	tolerance, err := cfg.MandatoryFloat("tolerance")
	if err != nil {
		return err
	}
	if tolerance <= 0 {
		return boundary.Validationf("tolerance", "tolerance must be positive, got %v", tolerance)
	}
	if _, err := cfg.Bool("keep_input", false); err != nil {
		return err
	}
	if _, err := cfg.Bool("encode_radius", false); err != nil {
		return err
	}
	return nil
}

func (centerline) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	tolerance, _ := cfg.MandatoryFloat("tolerance")
	keepInput, _ := cfg.Bool("keep_input", false)
	encodeRadius, _ := cfg.Bool("encode_radius", false)

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	loop, err := boundaryLoop(model)
	if err != nil {
		return boundary.Result{}, err
	}

	// The loop repeats its start; triangulate the distinct vertices.
	sites := make([]r3.Vec, len(loop)-1)
	for i, idx := range loop[:len(loop)-1] {
		sites[i] = model.Vertices[idx]
	}
	tris, err := geom.Delaunay(sites)
	if err != nil {
		return boundary.Result{}, err
	}

	// Boundary edges of the loop, keyed on site indices.
	boundaryEdges := make(map[[2]int]bool, len(sites))
	for i := 0; i < len(sites); i++ {
		j := (i + 1) % len(sites)
		boundaryEdges[siteEdgeKey(i, j)] = true
	}
	siteLoop := make([]uint32, len(loop))
	for i := range loop[:len(loop)-1] {
		siteLoop[i] = uint32(i)
	}
	siteLoop[len(loop)-1] = 0

	centers := make([]r3.Vec, len(tris))
	interior := make([]bool, len(tris))
	for i, t := range tris {
		centers[i] = geom.Circumcenter(sites[t.A], sites[t.B], sites[t.C])
		interior[i] = geom.PointInLoop(centers[i], sites, siteLoop)
	}

	dedup := geom.NewDeduplicator(len(tris) * 2)
	var edges []uint32
	pushEdge := func(a, b r3.Vec) error {
		ia, err := dedup.Index(a)
		if err != nil {
			return err
		}
		ib, err := dedup.Index(b)
		if err != nil {
			return err
		}
		if ia != ib {
			edges = append(edges, ia, ib)
		}
		return nil
	}

	// Voronoi edges between adjacent interior circumcenters. Triangles
	// are visited in order so the output is reproducible.
	adjacency := geom.Adjacency(tris)
	for i, t := range tris {
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			for _, j := range adjacency[siteEdgeKey(e[0], e[1])] {
				if j <= i || !interior[i] || !interior[j] {
					continue
				}
				if err := pushEdge(centers[i], centers[j]); err != nil {
					return boundary.Result{}, err
				}
			}
		}
	}
	// Ties from interior circumcenters to their boundary projections.
	for i, t := range tris {
		if !interior[i] {
			continue
		}
		for _, e := range [3][2]int{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
			if !boundaryEdges[siteEdgeKey(e[0], e[1])] {
				continue
			}
			proj := projectOntoSegment(centers[i], sites[e[0]], sites[e[1]])
			if err := pushEdge(centers[i], proj); err != nil {
				return boundary.Result{}, err
			}
		}
	}
	if len(edges) == 0 {
		return boundary.Result{}, boundary.Executionf("boundary produced an empty skeleton")
	}

	vertices, edges := simplifySkeleton(dedup.Vertices, edges, tolerance)

	if encodeRadius {
		for i, v := range vertices {
			vertices[i].Z = -clearance(v, sites, siteLoop)
		}
	}

	result := boundary.Result{
		Vertices: vertices,
		Indices:  edges,
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	if keepInput {
		base := uint32(len(result.Vertices))
		result.Vertices = append(result.Vertices, sites...)
		for i := 0; i < len(sites); i++ {
			result.Indices = append(result.Indices, base+uint32(i), base+uint32((i+1)%len(sites)))
		}
	}
	return result, nil
}

// boundaryLoop reconstructs the single closed loop the operation requires
// and checks the input is planar in z.
func boundaryLoop(model *boundary.Model) ([]uint32, error) {
	if len(model.Indices)%2 != 0 {
		return nil, boundary.Executionf("boundary must be an edge list, got %d indices", len(model.Indices))
	}
	chains, err := geom.Chains(model.Indices)
	if err != nil {
		return nil, err
	}
	if len(chains) != 1 || !geom.IsLoop(chains[0]) {
		return nil, boundary.Executionf("input must be a single closed boundary loop, got %d chains", len(chains))
	}

	box := geom.BoundingBox(model.Vertices)
	if geom.Size(box).Z > 1e-6*math.Max(1, geom.LongestAxis(box)) {
		return nil, boundary.Executionf("boundary is not planar in z")
	}
	return chains[0], nil
}

// simplifySkeleton splits the skeleton into paths between junctions and
// endpoints, simplifies each path with RDP and rebuilds a compact mesh.
func simplifySkeleton(vertices []r3.Vec, edges []uint32, tolerance float64) ([]r3.Vec, []uint32) {
	degree := make(map[uint32]int)
	adjacency := make(map[uint32][]uint32)
	for i := 0; i < len(edges); i += 2 {
		a, b := edges[i], edges[i+1]
		degree[a]++
		degree[b]++
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}

	visited := make(map[[2]uint32]bool, len(edges)/2)
	edgeSeen := func(a, b uint32) bool {
		if a > b {
			a, b = b, a
		}
		if visited[[2]uint32{a, b}] {
			return true
		}
		visited[[2]uint32{a, b}] = true
		return false
	}

	dedup := geom.NewDeduplicator(len(vertices))
	var outEdges []uint32
	emit := func(path []uint32) {
		path = geom.SimplifyChain(vertices, path, tolerance, false)
		for i := 0; i+1 < len(path); i++ {
			ia, _ := dedup.Index(vertices[path[i]])
			ib, _ := dedup.Index(vertices[path[i+1]])
			if ia != ib {
				outEdges = append(outEdges, ia, ib)
			}
		}
	}

	// Walk paths starting at every non-degree-2 node.
	for a := uint32(0); int(a) < len(vertices); a++ {
		if degree[a] == 2 || degree[a] == 0 {
			continue
		}
		for _, b := range adjacency[a] {
			if edgeSeen(a, b) {
				continue
			}
			path := []uint32{a, b}
			for degree[path[len(path)-1]] == 2 {
				last, prev := path[len(path)-1], path[len(path)-2]
				for _, n := range adjacency[last] {
					if n != prev {
						path = append(path, n)
						break
					}
				}
				edgeSeen(last, path[len(path)-1])
			}
			emit(path)
		}
	}
	// Whatever remains is pure cycles of degree-2 nodes.
	for a := uint32(0); int(a) < len(vertices); a++ {
		for _, b := range adjacency[a] {
			if edgeSeen(a, b) {
				continue
			}
			path := []uint32{a, b}
			for path[len(path)-1] != a {
				last, prev := path[len(path)-1], path[len(path)-2]
				for _, n := range adjacency[last] {
					if n != prev {
						path = append(path, n)
						break
					}
				}
				edgeSeen(path[len(path)-2], path[len(path)-1])
			}
			emit(path)
		}
	}
	return dedup.Vertices, outEdges
}

func siteEdgeKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

func projectOntoSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	den := r3.Dot(ab, ab)
	if den == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / den
	t = math.Max(0, math.Min(1, t))
	return r3.Add(a, r3.Scale(t, ab))
}

// clearance is the distance from p to the nearest boundary segment.
func clearance(p r3.Vec, sites []r3.Vec, loop []uint32) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(loop); i++ {
		q := projectOntoSegment(p, sites[loop[i]], sites[loop[i+1]])
		if d := math.Hypot(p.X-q.X, p.Y-q.Y); d < best {
			best = d
		}
	}
	return best
}
