package boundary

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// matrixStride is the float count of one world orientation matrix.
const matrixStride = 16

// RawInput is the boundary payload after the marshalling shim has turned
// every pointer+length pair into a plain slice. The slices still alias
// host memory; Decode copies out of them and never retains them past the
// call.
type RawInput struct {
	Vertices []float32 // 3 per vertex
	Indices  []uint32
	Matrices []float32 // 16 per model
	Config   Config
}

// Decode validates the raw buffers and slices them into per-model views
// according to the first_vertex_model_N / first_index_model_N config keys.
// Model 0 always exists and defaults to the whole buffer. When matrices
// are present every model must carry one, and each model's vertices are
// moved into world space by its matrix before any operation sees them.
func Decode(raw RawInput) ([]Model, error) {
	if len(raw.Vertices)%3 != 0 {
		return nil, Decodef("vertex buffer length %d is not a multiple of 3", len(raw.Vertices))
	}
	if len(raw.Matrices)%matrixStride != 0 {
		return nil, Decodef("matrix buffer length %d is not a multiple of %d", len(raw.Matrices), matrixStride)
	}
	vertexCount := len(raw.Vertices) / 3
	if vertexCount >= math.MaxUint32 {
		return nil, Decodef("no more than %d vertices are supported", uint32(math.MaxUint32))
	}
	if len(raw.Indices) >= math.MaxUint32 {
		return nil, Decodef("no more than %d indices are supported", uint32(math.MaxUint32))
	}
	for i, idx := range raw.Indices {
		if int(idx) >= vertexCount {
			return nil, Decodef("index %d at position %d references no vertex (vertex count %d)", idx, i, vertexCount)
		}
	}

	vertices := make([]r3.Vec, vertexCount)
	for i := range vertices {
		vertices[i] = r3.Vec{
			X: float64(raw.Vertices[i*3]),
			Y: float64(raw.Vertices[i*3+1]),
			Z: float64(raw.Vertices[i*3+2]),
		}
	}

	return collectModels(vertices, raw.Indices, raw.Matrices, raw.Config)
}

// collectModels splits the shared vertex/index buffers into models. The
// host concatenates all selected meshes into one pair of buffers and marks
// the boundaries with config keys; every model consumes one matrix.
func collectModels(vertices []r3.Vec, indices []uint32, matrices []float32, cfg Config) ([]Model, error) {
	var models []Model
	withMatrices := len(matrices) > 0
	for n := 0; ; n++ {
		vertexKey := fmt.Sprintf("%s%d", FirstVertexModelPrefix, n)
		if n > 0 && !cfg.Has(vertexKey) {
			break
		}

		firstVertex := 0
		firstIndex := 0
		if n > 0 {
			v, err := cfg.MandatoryInt(vertexKey)
			if err != nil {
				return nil, err
			}
			i, err := cfg.MandatoryInt(fmt.Sprintf("%s%d", FirstIndexModelPrefix, n))
			if err != nil {
				return nil, err
			}
			firstVertex, firstIndex = v, i
		}

		endVertex := len(vertices)
		if v, ok, err := cfg.Int(fmt.Sprintf("%s%d", FirstVertexModelPrefix, n+1)); err != nil {
			return nil, err
		} else if ok {
			endVertex = v
		}
		endIndex := len(indices)
		if i, ok, err := cfg.Int(fmt.Sprintf("%s%d", FirstIndexModelPrefix, n+1)); err != nil {
			return nil, err
		} else if ok {
			endIndex = i
		}

		if firstVertex < 0 || endVertex > len(vertices) || firstVertex > endVertex {
			return nil, Decodef("model %d vertex range [%d,%d) is outside the buffer", n, firstVertex, endVertex)
		}
		if firstIndex < 0 || endIndex > len(indices) || firstIndex > endIndex {
			return nil, Decodef("model %d index range [%d,%d) is outside the buffer", n, firstIndex, endIndex)
		}

		orientation := IdentityMatrix()
		if withMatrices {
			if len(matrices) < matrixStride {
				return nil, Decodef("model %d world orientation data missing", n)
			}
			copy(orientation[:], matrices[:matrixStride])
			matrices = matrices[matrixStride:]
		}

		model := Model{
			WorldOrientation: orientation,
			Vertices:         vertices[firstVertex:endVertex],
			Indices:          make([]uint32, endIndex-firstIndex),
		}
		// Indices are buffer-global; rebase them onto the model slice.
		for i, idx := range indices[firstIndex:endIndex] {
			if int(idx) < firstVertex || int(idx) >= endVertex {
				return nil, Decodef("model %d index %d is outside its vertex range [%d,%d)", n, idx, firstVertex, endVertex)
			}
			model.Indices[i] = idx - uint32(firstVertex)
		}
		if !model.HasIdentityOrientation() {
			model.Vertices = transformVertices(orientation, model.Vertices)
		}
		models = append(models, model)
	}
	return models, nil
}
