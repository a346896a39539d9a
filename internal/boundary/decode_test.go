package boundary

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeStrideErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  RawInput
	}{
		{name: "vertex stride", raw: RawInput{Vertices: []float32{0, 0}}},
		{name: "matrix stride", raw: RawInput{Matrices: make([]float32, 17)}},
		{name: "index out of range", raw: RawInput{Vertices: []float32{0, 0, 0}, Indices: []uint32{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			var be *Error
			if !errors.As(err, &be) || be.Kind != KindDecode {
				t.Fatalf("Decode() error = %v, want decode error", err)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	models, err := Decode(RawInput{Config: Config{}})
	if err != nil {
		t.Fatalf("Decode(empty) error: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("got %d models, want 1", len(models))
	}
	if len(models[0].Vertices) != 0 || len(models[0].Indices) != 0 {
		t.Error("empty input should decode to an empty model")
	}
	if !models[0].HasIdentityOrientation() {
		t.Error("missing matrix should default to identity")
	}
}

func TestDecodeTwoModels(t *testing.T) {
	raw := RawInput{
		// 4 vertices: 2 for each model.
		Vertices: []float32{
			0, 0, 0, 1, 0, 0,
			5, 5, 5, 6, 5, 5,
		},
		// Buffer-global indices, one edge per model.
		Indices:  []uint32{0, 1, 2, 3},
		Matrices: append(identityAsSlice(), identityAsSlice()...),
		Config: Config{
			"first_vertex_model_1": "2",
			"first_index_model_1":  "2",
		},
	}
	models, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	for i, m := range models {
		if len(m.Vertices) != 2 {
			t.Errorf("model %d has %d vertices, want 2", i, len(m.Vertices))
		}
		// Indices must be rebased onto the model slice.
		if m.Indices[0] != 0 || m.Indices[1] != 1 {
			t.Errorf("model %d indices = %v, want [0 1]", i, m.Indices)
		}
	}
	if models[1].Vertices[0].X != 5 {
		t.Errorf("model 1 vertex 0 = %v, want x=5", models[1].Vertices[0])
	}
}

func TestDecodeCrossModelIndex(t *testing.T) {
	raw := RawInput{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 2, 0, 0},
		// Second model references a vertex of the first.
		Indices: []uint32{0, 1, 0},
		Config: Config{
			"first_vertex_model_1": "2",
			"first_index_model_1":  "2",
		},
	}
	_, err := Decode(raw)
	var be *Error
	if !errors.As(err, &be) || be.Kind != KindDecode {
		t.Fatalf("Decode() error = %v, want decode error", err)
	}
}

func TestDecodeAppliesWorldOrientation(t *testing.T) {
	raw := RawInput{
		Vertices: []float32{1, 2, 3},
		Matrices: []float32{
			2, 0, 0, 100,
			0, 2, 0, 100,
			0, 0, 2, 0,
			0, 0, 0, 1,
		},
		Config: Config{},
	}
	models, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	got := models[0].Vertices[0]
	if got.X != 102 || got.Y != 104 || got.Z != 6 {
		t.Errorf("world vertex = %v, want (102 104 6)", got)
	}
	if models[0].HasIdentityOrientation() {
		t.Error("original host transform should stay recorded on the model")
	}
}

func TestDecodeMatrixPerModel(t *testing.T) {
	// Two models but only one matrix: model 1 must not silently fall
	// back to identity.
	raw := RawInput{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 5, 5, 5, 6, 5, 5},
		Indices:  []uint32{0, 1, 2, 3},
		Matrices: identityAsSlice(),
		Config: Config{
			"first_vertex_model_1": "2",
			"first_index_model_1":  "2",
		},
	}
	_, err := Decode(raw)
	var be *Error
	if !errors.As(err, &be) || be.Kind != KindDecode {
		t.Fatalf("Decode() error = %v, want decode error", err)
	}
	if !strings.Contains(be.Msg, "model 1") {
		t.Errorf("error %q should name the model missing its matrix", be.Msg)
	}
}

func identityAsSlice() []float32 {
	m := IdentityMatrix()
	return m[:]
}
