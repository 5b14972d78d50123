// psrtim is a CLI tool for inspecting and flattening tempo2 TOA files.
package main

import (
	"fmt"
	"os"

	"github.com/psrutils/psrutils-go/cmd/psrtim/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "check":
		exitCode = commands.RunCheck(args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "stats":
		exitCode = commands.RunStats(args, os.Stdout, os.Stderr)
	case "flatten":
		exitCode = commands.RunFlatten(args, os.Stdout, os.Stderr)
	case "export":
		exitCode = commands.RunExport(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("psrtim version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`psrtim - tempo2 TOA file tool

Usage:
  psrtim <command> [options] <file>

Commands:
  check     Report malformed lines and include errors
  show      List TOAs as a table
  stats     Summarise TOAs by date, frequency, observatory and flag
  flatten   Resolve INCLUDE directives into a single file
  export    Write TOAs as JSON lines, CSV or CBOR

Common options:
  -commented          Include TOAs commented out with C
  -q                  Do not report skipped lines
  -config <file>      YAML configuration
  -log-level <level>  debug, info, warn, error
  -trace <file>       Write a binary read trace (see psrlog)

Examples:
  psrtim check J0437-4715.tim
  psrtim stats -par J0437-4715.par J0437-4715.tim
  psrtim flatten -o all.tim J0437-4715.tim

For command-specific help, run:
  psrtim <command> -help`)
}
