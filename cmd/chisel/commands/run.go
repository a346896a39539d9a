package commands

import (
	"flag"
	"fmt"
	"sort"

	"github.com/chiselgeo/chisel"
)

// Run implements the 'chisel run' command: load a job file, execute the
// operation in-process and write the result mesh.
func Run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
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
	if job.Output == "" {
		return fmt.Errorf("job has no output path; set output in the job file or pass -out")
	}

	vertices, indices, matrices, cfg, err := job.Buffers()
	if err != nil {
		return err
	}
	result := chisel.Process(vertices, indices, matrices, cfg)
	if msg, ok := result.Config[chisel.ErrorKey]; ok {
		return fmt.Errorf("%s: %s", job.Command, msg)
	}

	if err := writeOBJ(job.Output, result.FlatVertices(), result.Indices, result.Config[chisel.MeshFormatKey]); err != nil {
		return err
	}
	fmt.Printf("%s: %d vertices, %d indices -> %s\n",
		job.Command, len(result.Vertices), len(result.Indices), job.Output)
	reportExtras(result.Config)
	return nil
}

// Ops implements the 'chisel ops' command.
func Ops(args []string) error {
	for _, name := range chisel.Operations() {
		fmt.Println(name)
	}
	return nil
}

// reportExtras prints operation-specific output keys, such as debug
// counters.
func reportExtras(cfg chisel.Config) {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		if k != chisel.MeshFormatKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %s\n", k, cfg[k])
	}
}
