package commands

import (
	"flag"
	"fmt"

	"github.com/chiselgeo/chisel"
	"github.com/chiselgeo/chisel/internal/host"
)

// Probe implements the 'chisel probe' command: run a job through a
// built libchisel shared library instead of in-process, exercising the
// full C boundary round trip.
func Probe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	libPath := fs.String("lib", "libchisel.so", "Path to the built shared library")
	jobFile := fs.String("job", "job.toml", "Path to the TOML job file")
	outFile := fs.String("out", "", "Output OBJ path (overrides the job file)")
	fs.Parse(args)

	job, err := LoadJob(*jobFile)
	if err != nil {
		return err
	}
	if *outFile != "" {
		job.Output = *outFile
	}

	vertices, indices, matrices, cfg, err := job.Buffers()
	if err != nil {
		return err
	}
	lib, err := host.Load(*libPath)
	if err != nil {
		return err
	}
	output, err := lib.Call(vertices, indices, matrices, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s via %s: %d vertices, %d indices, %d matrix floats\n",
		job.Command, *libPath, len(output.Vertices)/3, len(output.Indices), len(output.Matrices))
	if job.Output != "" {
		if err := writeOBJ(job.Output, output.Vertices, output.Indices, output.Config[chisel.MeshFormatKey]); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", job.Output)
	}
	return nil
}
