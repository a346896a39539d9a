package commands

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/chiselgeo/chisel"
	"github.com/chiselgeo/chisel/internal/boundary"
)

// Job describes one geometry operation invocation: the command, the
// input meshes in model order, the output path and the operation
// parameters. Parameters are kept as strings because that is what
// crosses the boundary.
type Job struct {
	Command string            `toml:"command"`
	Inputs  []string          `toml:"inputs"`
	Output  string            `toml:"output"`
	Params  map[string]string `toml:"params"`
}

// LoadJob reads and validates a TOML job file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var job Job
	if err := toml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if job.Command == "" {
		return nil, fmt.Errorf("%s: job has no command", path)
	}
	for key := range job.Params {
		switch key {
		case boundary.CommandKey, boundary.ErrorKey:
			return nil, fmt.Errorf("%s: params may not set the reserved key %q", path, key)
		}
	}
	return &job, nil
}

// Buffers flattens the job's input meshes into the concatenated
// boundary buffers plus the config map, with model split keys for every
// mesh after the first. Each model consumes one identity matrix, the
// same shape a host would send for untransformed objects.
func (j *Job) Buffers() ([]float32, []uint32, []float32, chisel.Config, error) {
	cfg := chisel.Config{chisel.CommandKey: j.Command}
	for k, v := range j.Params {
		cfg[k] = v
	}

	var vertices []float32
	var indices []uint32
	var matrices []float32
	for n, path := range j.Inputs {
		mesh, err := readOBJ(path)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if n > 0 {
			cfg[fmt.Sprintf("%s%d", boundary.FirstVertexModelPrefix, n)] = fmt.Sprintf("%d", len(vertices)/3)
			cfg[fmt.Sprintf("%s%d", boundary.FirstIndexModelPrefix, n)] = fmt.Sprintf("%d", len(indices))
		}
		base := uint32(len(vertices) / 3)
		vertices = append(vertices, mesh.vertices...)
		for _, idx := range mesh.indices {
			indices = append(indices, base+idx)
		}
		matrices = append(matrices,
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		)
	}
	return vertices, indices, matrices, cfg, nil
}
