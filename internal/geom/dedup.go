package geom

import (
	"math"

	"github.com/chiselgeo/chisel/internal/boundary"
	"gonum.org/v1/gonum/spatial/r3"
)

// Deduplicator merges bit-identical vertices while assigning indices.
// Keys are the raw float bits, so only values identical in every bit
// merge; +0 normalization removes the -0.0 special case.
type Deduplicator struct {
	set      map[[3]uint64]uint32
	Vertices []r3.Vec
}

// NewDeduplicator returns a deduplicator with room for capacity vertices.
func NewDeduplicator(capacity int) *Deduplicator {
	return &Deduplicator{
		set:      make(map[[3]uint64]uint32, capacity),
		Vertices: make([]r3.Vec, 0, capacity),
	}
}

// Index returns the existing index of v, inserting it if unseen. Non-finite
// coordinates are rejected.
func (d *Deduplicator) Index(v r3.Vec) (uint32, error) {
	x, y, z := v.X+0, v.Y+0, v.Z+0
	if !finite(x) || !finite(y) || !finite(z) {
		return 0, boundary.Executionf("vertex is not finite (%v,%v,%v)", x, y, z)
	}
	key := [3]uint64{math.Float64bits(x), math.Float64bits(y), math.Float64bits(z)}
	if idx, ok := d.set[key]; ok {
		return idx, nil
	}
	idx := uint32(len(d.Vertices))
	d.set[key] = idx
	d.Vertices = append(d.Vertices, r3.Vec{X: x, Y: y, Z: z})
	return idx, nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
