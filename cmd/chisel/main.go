package main

import (
	"fmt"
	"os"

	"github.com/chiselgeo/chisel/cmd/chisel/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = commands.Run(args)
	case "ops":
		err = commands.Ops(args)
	case "probe":
		err = commands.Probe(args)
	case "version", "-v", "--version":
		fmt.Printf("chisel version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chisel - geometry operation runner

Usage: chisel <command> [options]

Commands:
  run      Run a geometry operation described by a TOML job file
  ops      List the registered geometry operations
  probe    Run a job through a built libchisel shared library
  version  Print version information
  help     Show this help message

Examples:
  chisel ops                              List available operations
  chisel run -job job.toml                Run a job in-process
  chisel run -job job.toml -out out.obj   Override the job's output path
  chisel probe -lib libchisel.so -job job.toml`)
}
