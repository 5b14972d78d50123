// psrpar is a CLI tool for validating, formatting and editing tempo2
// parameter files.
package main

import (
	"fmt"
	"os"

	"github.com/psrutils/psrutils-go/cmd/psrpar/commands"
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
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "format", "fmt":
		exitCode = commands.RunFormat(args, os.Stdout, os.Stderr)
	case "edit":
		exitCode = commands.RunEdit(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("psrpar version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`psrpar - tempo2 parameter file tool

Usage:
  psrpar <command> [options] [files...]

Commands:
  validate   Report malformed lines and missing or inconsistent parameters
  show       Display parameters as a table, JSON or YAML
  format     Rewrite a file with aligned columns
  edit       Edit a file interactively

Common options:
  -config <file>      YAML configuration
  -log-level <level>  debug, info, warn, error
  -trace <file>       Write a binary read trace (see psrlog)

Examples:
  psrpar validate J0437-4715.par
  psrpar show -format json J0437-4715.par
  psrpar format -w J0437-4715.par
  psrpar edit J0437-4715.par

For command-specific help, run:
  psrpar <command> -help`)
}
