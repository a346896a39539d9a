package ops

import (
	"math"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// capsule is the signed distance field of a segment swept by a sphere.
type capsule struct {
	a, b   r3.Vec
	radius float64
}

func (c capsule) Evaluate(p r3.Vec) float64 {
	ab := r3.Sub(c.b, c.a)
	ap := r3.Sub(p, c.a)
	den := r3.Dot(ab, ab)
	t := 0.0
	if den > 0 {
		t = math.Max(0, math.Min(1, r3.Dot(ap, ab)/den))
	}
	closest := r3.Add(c.a, r3.Scale(t, ab))
	return r3.Norm(r3.Sub(p, closest)) - c.radius
}

func (c capsule) Bounds() r3.Box {
	box := geomBox(c.a, c.b)
	r := r3.Vec{X: c.radius, Y: c.radius, Z: c.radius}
	return r3.Box{Min: r3.Sub(box.Min, r), Max: r3.Add(box.Max, r)}
}

// union composes fields by distance minimum.
type union struct {
	parts []sdf.SDF3
}

func (u union) Evaluate(p r3.Vec) float64 {
	d := math.Inf(1)
	for _, part := range u.parts {
		d = math.Min(d, part.Evaluate(p))
	}
	return d
}

func (u union) Bounds() r3.Box {
	box := u.parts[0].Bounds()
	for _, part := range u.parts[1:] {
		b := part.Bounds()
		box.Min.X = math.Min(box.Min.X, b.Min.X)
		box.Min.Y = math.Min(box.Min.Y, b.Min.Y)
		box.Min.Z = math.Min(box.Min.Z, b.Min.Z)
		box.Max.X = math.Max(box.Max.X, b.Max.X)
		box.Max.Y = math.Max(box.Max.Y, b.Max.Y)
		box.Max.Z = math.Max(box.Max.Z, b.Max.Z)
	}
	return box
}

// edgeField converts a line-chunk model into an implicit field: the union
// of capsules around every edge. Point-like edges become spheres.
func edgeField(model *boundary.Model, radius float64) (sdf.SDF3, error) {
	if len(model.Indices)%2 != 0 {
		return nil, boundary.Executionf("field input must be an edge list, got %d indices", len(model.Indices))
	}
	parts := make([]sdf.SDF3, 0, len(model.Indices)/2)
	for i := 0; i < len(model.Indices); i += 2 {
		parts = append(parts, capsule{
			a:      model.Vertices[model.Indices[i]],
			b:      model.Vertices[model.Indices[i+1]],
			radius: radius,
		})
	}
	if len(parts) == 0 {
		return nil, boundary.Executionf("field input has no edges")
	}
	return union{parts: parts}, nil
}

func geomBox(a, b r3.Vec) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}
