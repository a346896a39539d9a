package boundary

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// identityMatrix is the 16-float row-major identity used wherever a model
// carries no explicit world orientation.
var identityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// IdentityMatrix returns a copy of the 4×4 identity.
func IdentityMatrix() [16]float32 { return identityMatrix }

// Model is one decoded input mesh: the host still owns the buffers this
// was copied from. Index semantics (triangle list, edge list, point list)
// are decided by the consuming operation, not the model. Vertices are in
// world space; WorldOrientation records the host transform Decode has
// already applied to them.
type Model struct {
	WorldOrientation [16]float32
	Vertices         []r3.Vec
	Indices          []uint32
}

// HasIdentityOrientation reports whether the world orientation is the
// identity within float32 rounding.
func (m *Model) HasIdentityOrientation() bool {
	for i, v := range m.WorldOrientation {
		if math.Abs(float64(v-identityMatrix[i])) > 1e-6 {
			return false
		}
	}
	return true
}

// transformVertices applies the row-major affine matrix m to every
// vertex, translation in the last column. The bottom row is ignored.
func transformVertices(m [16]float32, vs []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(vs))
	for i, v := range vs {
		out[i] = r3.Vec{
			X: float64(m[0])*v.X + float64(m[1])*v.Y + float64(m[2])*v.Z + float64(m[3]),
			Y: float64(m[4])*v.X + float64(m[5])*v.Y + float64(m[6])*v.Z + float64(m[7]),
			Z: float64(m[8])*v.X + float64(m[9])*v.Y + float64(m[10])*v.Z + float64(m[11]),
		}
	}
	return out
}

// Result owns the output of one operation before it is encoded for the
// host. Zero-length slices are valid partial results.
type Result struct {
	Vertices []r3.Vec
	Indices  []uint32
	Matrices []float32
	Config   Config
}

// FlatVertices returns the vertices as the 3×float32 layout of the ABI.
func (r *Result) FlatVertices() []float32 {
	out := make([]float32, 0, len(r.Vertices)*3)
	for _, v := range r.Vertices {
		out = append(out, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return out
}

// PushVertex appends a vertex and returns its index.
func (r *Result) PushVertex(v r3.Vec) uint32 {
	idx := uint32(len(r.Vertices))
	r.Vertices = append(r.Vertices, v)
	return idx
}

// PushSegment appends both endpoints of a segment as fresh vertices and
// indexes them as one line chunk.
func (r *Result) PushSegment(a, b r3.Vec) {
	r.Indices = append(r.Indices, r.PushVertex(a), r.PushVertex(b))
}
