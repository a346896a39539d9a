package ops

import (
	"math"
	"runtime"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
	"github.com/soypat/sdf"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// netsMesh is the surface-nets output plus the sampling slabs, kept for
// the debug-chunk diagnostics.
type netsMesh struct {
	vertices []r3.Vec
	tris     []uint32
	slabs    []r3.Box
}

// surfaceNets meshes the iso-surface of field on a uniform grid with
// resolution cells along the longest bounding-box axis. Sampling is
// spread over worker goroutines, one z-slab each, all joined before the
// mesh is assembled; assembly itself is sequential so the output is
// reproducible.
func surfaceNets(field sdf.SDF3, resolution int, iso float64) (*netsMesh, error) {
	bounds := field.Bounds()
	if !geom.Valid(bounds) {
		return nil, boundary.Executionf("field has an empty bounding box")
	}
	cell := geom.LongestAxis(bounds) / float64(resolution)
	if cell <= 0 {
		return nil, boundary.Executionf("field is degenerate: zero extent")
	}
	// Margin keeps every crossing away from the grid faces, so the quad
	// pass can skip the outermost edge planes. A positive iso value
	// pushes the surface outside the field bounds by that distance.
	bounds = geom.Pad(bounds, 2*cell+math.Max(iso, 0))
	size := geom.Size(bounds)
	nx := int(size.X/cell) + 1
	ny := int(size.Y/cell) + 1
	nz := int(size.Z/cell) + 1

	samples := make([]float64, (nx+1)*(ny+1)*(nz+1))
	sampleAt := func(x, y, z int) float64 {
		return samples[(z*(ny+1)+y)*(nx+1)+x]
	}
	pos := func(x, y, z int) r3.Vec {
		return r3.Vec{
			X: bounds.Min.X + float64(x)*cell,
			Y: bounds.Min.Y + float64(y)*cell,
			Z: bounds.Min.Z + float64(z)*cell,
		}
	}

	// Sample the grid, one slab of z planes per worker.
	workers := runtime.GOMAXPROCS(0)
	if workers > nz+1 {
		workers = nz + 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	slabSize := (nz + workers) / workers
	var slabs []r3.Box
	for z0 := 0; z0 <= nz; z0 += slabSize {
		z0 := z0
		z1 := z0 + slabSize
		if z1 > nz+1 {
			z1 = nz + 1
		}
		slabs = append(slabs, r3.Box{
			Min: pos(0, 0, z0),
			Max: pos(nx, ny, z1-1),
		})
		g.Go(func() error {
			for z := z0; z < z1; z++ {
				for y := 0; y <= ny; y++ {
					for x := 0; x <= nx; x++ {
						samples[(z*(ny+1)+y)*(nx+1)+x] = field.Evaluate(pos(x, y, z)) - iso
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// One vertex per cell containing a sign change: the centroid of its
	// edge crossings.
	cellVertex := make([]int32, nx*ny*nz)
	for i := range cellVertex {
		cellVertex[i] = -1
	}
	cellAt := func(x, y, z int) int { return (z*ny+y)*nx + x }

	mesh := &netsMesh{slabs: slabs}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				var sum r3.Vec
				crossings := 0
				for _, e := range cellEdges {
					s0 := sampleAt(x+e[0][0], y+e[0][1], z+e[0][2])
					s1 := sampleAt(x+e[1][0], y+e[1][1], z+e[1][2])
					if (s0 < 0) == (s1 < 0) {
						continue
					}
					t := s0 / (s0 - s1)
					p0 := pos(x+e[0][0], y+e[0][1], z+e[0][2])
					p1 := pos(x+e[1][0], y+e[1][1], z+e[1][2])
					sum = r3.Add(sum, r3.Add(p0, r3.Scale(t, r3.Sub(p1, p0))))
					crossings++
				}
				if crossings == 0 {
					continue
				}
				cellVertex[cellAt(x, y, z)] = int32(len(mesh.vertices))
				mesh.vertices = append(mesh.vertices, r3.Scale(1/float64(crossings), sum))
			}
		}
	}

	// One quad per sign-changing grid edge, joining the four cells that
	// share it.
	quad := func(a, b, c, d int32, flip bool) {
		if a < 0 || b < 0 || c < 0 || d < 0 {
			return
		}
		if flip {
			a, b, c, d = d, c, b, a
		}
		mesh.tris = append(mesh.tris,
			uint32(a), uint32(b), uint32(c),
			uint32(a), uint32(c), uint32(d),
		)
	}
	for z := 1; z < nz; z++ {
		for y := 1; y < ny; y++ {
			for x := 1; x < nx; x++ {
				here := sampleAt(x, y, z) < 0
				// Edge along x.
				if (sampleAt(x+1, y, z) < 0) != here {
					quad(
						cellVertex[cellAt(x, y-1, z-1)],
						cellVertex[cellAt(x, y, z-1)],
						cellVertex[cellAt(x, y, z)],
						cellVertex[cellAt(x, y-1, z)],
						here,
					)
				}
				// Edge along y.
				if (sampleAt(x, y+1, z) < 0) != here {
					quad(
						cellVertex[cellAt(x-1, y, z-1)],
						cellVertex[cellAt(x-1, y, z)],
						cellVertex[cellAt(x, y, z)],
						cellVertex[cellAt(x, y, z-1)],
						here,
					)
				}
				// Edge along z.
				if (sampleAt(x, y, z+1) < 0) != here {
					quad(
						cellVertex[cellAt(x-1, y-1, z)],
						cellVertex[cellAt(x, y-1, z)],
						cellVertex[cellAt(x, y, z)],
						cellVertex[cellAt(x-1, y, z)],
						here,
					)
				}
			}
		}
	}

	if len(mesh.tris) == 0 {
		return nil, boundary.Executionf("iso-surface does not intersect the sampling grid")
	}
	return mesh, nil
}

// cellEdges enumerates the 12 edges of a unit cell as corner offsets.
var cellEdges = [12][2][3]int{
	{{0, 0, 0}, {1, 0, 0}}, {{0, 1, 0}, {1, 1, 0}}, {{0, 0, 1}, {1, 0, 1}}, {{0, 1, 1}, {1, 1, 1}},
	{{0, 0, 0}, {0, 1, 0}}, {{1, 0, 0}, {1, 1, 0}}, {{0, 0, 1}, {0, 1, 1}}, {{1, 0, 1}, {1, 1, 1}},
	{{0, 0, 0}, {0, 0, 1}}, {{1, 0, 0}, {1, 0, 1}}, {{0, 1, 0}, {0, 1, 1}}, {{1, 1, 0}, {1, 1, 1}},
}
