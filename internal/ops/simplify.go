package ops

import (
	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("simplify_rdp", simplifyRDP{}) }

// simplifyRDP runs Ramer-Douglas-Peucker over every chain reconstructed
// from the input edges. Distances are measured in the xy plane unless
// simplify_3d asks for true perpendicular distance.
type simplifyRDP struct{}

func (simplifyRDP) Validate(cfg boundary.Config) error {
	epsilon, err := cfg.MandatoryFloat("epsilon")
	if err != nil {
		return err
	}
	if epsilon <= 0 {
		return boundary.Validationf("epsilon", "epsilon must be positive, got %v", epsilon)
	}
	if _, err := cfg.Bool("simplify_3d", false); err != nil {
		return err
	}
	return nil
}

func (simplifyRDP) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	epsilon, _ := cfg.MandatoryFloat("epsilon")
	threeD, _ := cfg.Bool("simplify_3d", false)

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	chains, err := geom.Chains(model.Indices)
	if err != nil {
		return boundary.Result{}, err
	}
	if len(chains) == 0 {
		return boundary.Result{}, boundary.Executionf("simplify_rdp needs at least one edge chain")
	}

	result := boundary.Result{
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	dedup := geom.NewDeduplicator(len(model.Vertices))
	for _, chain := range chains {
		kept := geom.SimplifyChain(model.Vertices, chain, epsilon, threeD)
		for i := 1; i < len(kept); i++ {
			a, err := dedup.Index(model.Vertices[kept[i-1]])
			if err != nil {
				return boundary.Result{}, err
			}
			b, err := dedup.Index(model.Vertices[kept[i]])
			if err != nil {
				return boundary.Result{}, err
			}
			result.Indices = append(result.Indices, a, b)
		}
	}
	result.Vertices = dedup.Vertices
	return result, nil
}
