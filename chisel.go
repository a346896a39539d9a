// Package chisel is the dispatch core of the chisel geometry extension.
// The host hands over flat vertex/index/matrix buffers plus a string
// config map; Process selects an operation by the command key, runs it
// and returns the resulting geometry. Failures of any kind come back as
// an empty result carrying a diagnostic under the error key, so the
// boundary never raises.
package chisel

import (
	"log"
	"time"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/ops"
)

// Re-exports of the boundary types for consumers that do not go through
// the C ABI, such as the command line tool.
type (
	Config = boundary.Config
	Model  = boundary.Model
	Result = boundary.Result
)

// Reserved config keys, re-exported from the boundary package.
const (
	CommandKey    = boundary.CommandKey
	ErrorKey      = boundary.ErrorKey
	MeshFormatKey = boundary.MeshFormatKey
)

// Operations returns the names of all registered operations, sorted.
func Operations() []string {
	return ops.Names()
}

// Process runs one geometry operation. vertices holds 3 floats per
// vertex, matrices 16 floats per model; cfg selects the operation via
// the command key and carries its parameters. The returned result is
// always structurally valid: on failure its geometry is empty and its
// config carries the diagnostic under ErrorKey.
func Process(vertices []float32, indices []uint32, matrices []float32, cfg Config) Result {
	start := time.Now()
	command, _ := cfg.Get(boundary.CommandKey)

	result, err := dispatch(vertices, indices, matrices, cfg)
	if err != nil {
		log.Printf("chisel: command %q failed (%s): %v", command, boundary.KindOf(err), err)
		return errorResult(err)
	}
	if result.Config == nil {
		result.Config = boundary.Config{}
	}
	log.Printf("chisel: command %q produced %d vertices, %d indices in %v",
		command, len(result.Vertices), len(result.Indices), time.Since(start))
	return result
}

func dispatch(vertices []float32, indices []uint32, matrices []float32, cfg Config) (result Result, err error) {
	if cfg == nil {
		cfg = boundary.Config{}
	}
	models, err := boundary.Decode(boundary.RawInput{
		Vertices: vertices,
		Indices:  indices,
		Matrices: matrices,
		Config:   cfg,
	})
	if err != nil {
		return Result{}, err
	}

	command, err := cfg.Mandatory(boundary.CommandKey)
	if err != nil {
		return Result{}, err
	}
	op, ok := ops.Lookup(command)
	if !ok {
		return Result{}, boundary.Dispatchf("unknown command %q", command)
	}
	if err := op.Validate(cfg); err != nil {
		return Result{}, err
	}

	// An operation panic must not unwind through the C boundary.
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = boundary.Executionf("command %q panicked: %v", command, r)
		}
	}()
	return op.Execute(cfg, models)
}

// errorResult wraps a failure into the empty-geometry error shape the
// host contract requires. The message is used verbatim; constructors in
// the boundary package already name the offending key where one exists.
func errorResult(err error) Result {
	return Result{
		Config: boundary.Config{boundary.ErrorKey: err.Error()},
	}
}
