// Package log captures a machine-readable trace of how parameter and TOA
// files were read.
//
// It is separate from operational logging (slog). A trace records every file
// opened, every INCLUDE followed, every record accepted and every diagnostic
// raised, so a surprising parse result can be explained after the fact.
//
// # Basic Usage
//
// Parsers accept a Logger:
//
//	// For development: trace to the console via slog
//	parser.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write a binary trace file
//	parser.Logger, _ = log.NewFileLogger("run.plog")
//
//	// Both: use MultiLogger
//	parser.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Sessions
//
// Each top-level Parse or Read call opens a Session, which stamps its
// events with a fresh session ID so traces from several runs can share one
// file.
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with the .plog extension.
// The psrlog tool views and summarizes them.
package log
