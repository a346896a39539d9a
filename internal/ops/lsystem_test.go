package ops

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
)

func TestLSystemSeedPassthrough(t *testing.T) {
	op, ok := Lookup("lsystem")
	if !ok {
		t.Fatal("lsystem not registered")
	}
	seed := boundary.Model{
		Vertices: []r3.Vec{{X: -0.1}, {X: 0.1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	}
	cfg := boundary.Config{"grammar": "F", "iterations": "0", "seed": "1"}
	if err := op.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	result, err := op.Execute(cfg, []boundary.Model{seed})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(result.Vertices) != len(seed.Vertices) {
		t.Fatalf("seed vertices not passed through: %v", result.Vertices)
	}
	for i, v := range result.Vertices {
		if v != seed.Vertices[i] {
			t.Fatalf("vertex %d = %v, want %v", i, v, seed.Vertices[i])
		}
	}
	for i, idx := range result.Indices {
		if idx != seed.Indices[i] {
			t.Fatalf("index %d = %d, want %d", i, idx, seed.Indices[i])
		}
	}

	// A single unit step along the default heading is the identity
	// placement.
	identity := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if len(result.Matrices) != 16 {
		t.Fatalf("got %d matrix floats, want 16", len(result.Matrices))
	}
	for i, v := range result.Matrices {
		if math.Abs(float64(v-identity[i])) > 1e-6 {
			t.Fatalf("matrix[%d] = %v, want %v", i, v, identity[i])
		}
	}
}

func TestLSystemSeedFormats(t *testing.T) {
	op, _ := Lookup("lsystem")
	cfg := boundary.Config{"grammar": "F", "iterations": "0"}

	triangulated := boundary.Model{
		Vertices: []r3.Vec{{X: -0.1}, {X: 0.1}, {Y: 1}},
		Indices:  []uint32{0, 1, 2},
	}
	result, err := op.Execute(cfg, []boundary.Model{triangulated})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Config[boundary.MeshFormatKey]; got != boundary.FormatTriangulated {
		t.Errorf("indexed seed format = %q, want %q", got, boundary.FormatTriangulated)
	}

	cloud := boundary.Model{Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}}}
	result, err = op.Execute(cfg, []boundary.Model{cloud})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Config[boundary.MeshFormatKey]; got != boundary.FormatPoints {
		t.Errorf("point seed format = %q, want %q", got, boundary.FormatPoints)
	}
	if len(result.Indices) != 0 {
		t.Errorf("point seed should pass through without indices, got %v", result.Indices)
	}
}

func TestLSystemChunkExpansion(t *testing.T) {
	op, _ := Lookup("lsystem")
	cfg := boundary.Config{"grammar": "F", "rules": "F=F+F", "iterations": "3"}
	result, err := op.Execute(cfg, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Config[boundary.MeshFormatKey]; got != boundary.FormatChunks {
		t.Fatalf("mesh format = %q, want %q", got, boundary.FormatChunks)
	}
	// F doubles per iteration: 8 drawn segments after 3 iterations.
	if len(result.Indices) != 16 || len(result.Vertices) != 16 {
		t.Fatalf("got %d indices / %d vertices, want 16 / 16",
			len(result.Indices), len(result.Vertices))
	}
}

func TestLSystemBranching(t *testing.T) {
	op, _ := Lookup("lsystem")
	cfg := boundary.Config{"grammar": "F[+F][-F]", "angle": "30"}
	result, err := op.Execute(cfg, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Trunk plus two branches from the trunk tip.
	if len(result.Indices) != 6 {
		t.Fatalf("got %d indices, want 6", len(result.Indices))
	}
	tip := result.Vertices[1]
	for _, branchStart := range []r3.Vec{result.Vertices[2], result.Vertices[4]} {
		if r3.Norm(r3.Sub(branchStart, tip)) > 1e-9 {
			t.Fatalf("branch does not start at the trunk tip: %v vs %v", branchStart, tip)
		}
	}
}

func TestLSystemBracketUnderflow(t *testing.T) {
	op, _ := Lookup("lsystem")
	_, err := op.Execute(boundary.Config{"grammar": "F]"}, nil)
	if err == nil {
		t.Fatal("unbalanced pop must fail")
	}
	if boundary.KindOf(err) != boundary.KindExecution {
		t.Fatalf("kind = %v, want execution", boundary.KindOf(err))
	}
}

func TestLSystemValidation(t *testing.T) {
	op, _ := Lookup("lsystem")
	cases := []struct {
		name string
		cfg  boundary.Config
		key  string
	}{
		{"missing grammar", boundary.Config{}, "grammar"},
		{"blank grammar", boundary.Config{"grammar": "  "}, "grammar"},
		{"iterations out of range", boundary.Config{"grammar": "F", "iterations": "17"}, "iterations"},
		{"rule without equals", boundary.Config{"grammar": "F", "rules": "FFF"}, "rules"},
		{"duplicate rule", boundary.Config{"grammar": "F", "rules": "F=FF;F=F"}, "rules"},
		{"stochastic without seed", boundary.Config{"grammar": "F", "rules": "F=F|FF"}, "rules"},
		{"zero step", boundary.Config{"grammar": "F", "step": "0"}, "step"},
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

func TestLSystemStochasticDeterminism(t *testing.T) {
	op, _ := Lookup("lsystem")
	cfg := boundary.Config{"grammar": "F", "rules": "F=F+F|F-F", "iterations": "4", "seed": "42"}
	a, err := op.Execute(cfg, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	b, err := op.Execute(cfg, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(a.Vertices) != len(b.Vertices) {
		t.Fatalf("same seed produced %d vs %d vertices", len(a.Vertices), len(b.Vertices))
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("same seed diverged at vertex %d", i)
		}
	}
}
