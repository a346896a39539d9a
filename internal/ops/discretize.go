package ops

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("discretize", discretize{}) }

// discretize subdivides every input edge until no segment is longer than
// a fraction of the model extent. discretize_length is a percentage of
// the longest bounding box axis.
type discretize struct{}

func (discretize) Validate(cfg boundary.Config) error {
	length, err := cfg.MandatoryFloat("discretize_length")
	if err != nil {
		return err
	}
	if length <= 0 {
		return boundary.Validationf("discretize_length", "discretize_length must be positive, got %v", length)
	}
	return nil
}

func (discretize) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	length, _ := cfg.MandatoryFloat("discretize_length")

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	if len(model.Indices) == 0 || len(model.Indices)%2 != 0 {
		return boundary.Result{}, boundary.Executionf("discretize needs an edge list, got %d indices", len(model.Indices))
	}
	target := geom.LongestAxis(geom.BoundingBox(model.Vertices)) * length / 100
	if target <= 0 {
		return boundary.Result{}, boundary.Executionf("model extent is zero, nothing to discretize")
	}

	result := boundary.Result{
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	dedup := geom.NewDeduplicator(len(model.Vertices))
	for i := 0; i+1 < len(model.Indices); i += 2 {
		a := model.Vertices[model.Indices[i]]
		b := model.Vertices[model.Indices[i+1]]
		steps := int(math.Ceil(r3.Norm(r3.Sub(b, a)) / target))
		if steps < 1 {
			steps = 1
		}
		prev, err := dedup.Index(a)
		if err != nil {
			return boundary.Result{}, err
		}
		for s := 1; s <= steps; s++ {
			p := r3.Add(a, r3.Scale(float64(s)/float64(steps), r3.Sub(b, a)))
			if s == steps {
				p = b
			}
			next, err := dedup.Index(p)
			if err != nil {
				return boundary.Result{}, err
			}
			result.Indices = append(result.Indices, prev, next)
			prev = next
		}
	}
	result.Vertices = dedup.Vertices
	return result, nil
}
