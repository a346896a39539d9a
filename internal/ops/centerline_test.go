package ops

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
)

func squareLoop() boundary.Model {
	return boundary.Model{
		Vertices: []r3.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		},
		Indices: []uint32{0, 1, 1, 2, 2, 3, 3, 0},
	}
}

func TestCenterlineSquare(t *testing.T) {
	op, ok := Lookup("centerline")
	if !ok {
		t.Fatal("centerline not registered")
	}
	cfg := boundary.Config{"tolerance": "0.01"}
	if err := op.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	result, err := op.Execute(cfg, []boundary.Model{squareLoop()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Config[boundary.MeshFormatKey]; got != boundary.FormatEdges {
		t.Fatalf("mesh format = %q, want %q", got, boundary.FormatEdges)
	}

	// The square's skeleton collapses to its center, tied to the
	// projection on each of the four boundary edges.
	if len(result.Vertices) != 5 {
		t.Fatalf("got %d vertices, want 5: %v", len(result.Vertices), result.Vertices)
	}
	if len(result.Indices) != 8 {
		t.Fatalf("got %d indices, want 8 (4 edges)", len(result.Indices))
	}
	center := -1
	for i, v := range result.Vertices {
		if math.Abs(v.X-0.5) < 1e-12 && math.Abs(v.Y-0.5) < 1e-12 {
			center = i
		}
	}
	if center < 0 {
		t.Fatalf("no vertex at the square center: %v", result.Vertices)
	}
	degree := 0
	for i := 0; i < len(result.Indices); i += 2 {
		a, b := result.Indices[i], result.Indices[i+1]
		other := -1
		if int(a) == center {
			other = int(b)
		} else if int(b) == center {
			other = int(a)
		}
		if other < 0 {
			t.Fatalf("edge %d-%d does not touch the center", a, b)
		}
		degree++
		v := result.Vertices[other]
		onBoundary := math.Abs(v.X) < 1e-12 || math.Abs(v.X-1) < 1e-12 ||
			math.Abs(v.Y) < 1e-12 || math.Abs(v.Y-1) < 1e-12
		if !onBoundary {
			t.Fatalf("skeleton endpoint %v is not on the boundary", v)
		}
	}
	if degree != 4 {
		t.Fatalf("center degree = %d, want 4", degree)
	}
}

func TestCenterlineEncodeRadius(t *testing.T) {
	op, _ := Lookup("centerline")
	cfg := boundary.Config{"tolerance": "0.01", "encode_radius": "true"}
	result, err := op.Execute(cfg, []boundary.Model{squareLoop()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, v := range result.Vertices {
		if v.Z > 0 {
			t.Fatalf("encoded radius must be non-positive z, got %v", v)
		}
		if math.Abs(v.X-0.5) < 1e-12 && math.Abs(v.Y-0.5) < 1e-12 && math.Abs(v.Z+0.5) > 1e-9 {
			t.Fatalf("center clearance = %v, want 0.5", -v.Z)
		}
	}
}

func TestCenterlineRejectsOpenChain(t *testing.T) {
	op, _ := Lookup("centerline")
	model := squareLoop()
	model.Indices = model.Indices[:6]
	_, err := op.Execute(boundary.Config{"tolerance": "0.01"}, []boundary.Model{model})
	if err == nil {
		t.Fatal("open chain must be rejected")
	}
	if boundary.KindOf(err) != boundary.KindExecution {
		t.Fatalf("kind = %v, want execution", boundary.KindOf(err))
	}
}

func TestCenterlineValidation(t *testing.T) {
	op, _ := Lookup("centerline")
	cases := []struct {
		name string
		cfg  boundary.Config
		key  string
	}{
		{"missing tolerance", boundary.Config{}, "tolerance"},
		{"negative tolerance", boundary.Config{"tolerance": "-1"}, "tolerance"},
		{"bad keep_input", boundary.Config{"tolerance": "0.1", "keep_input": "yes please"}, "keep_input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := op.Validate(tc.cfg)
			if err == nil {
				t.Fatal("want validation error")
			}
			var be *boundary.Error
			if !asBoundaryError(err, &be) || be.Key != tc.key {
				t.Fatalf("error %v not attributed to %q", err, tc.key)
			}
		})
	}
}
