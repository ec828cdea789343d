// Package main hosts the stitch CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the pipeline
// runner with its hypothesis source, cache and report store, and renders
// results as text, JSON or YAML. Processing logic lives in the internal
// packages; commands here only wire and present it.
package main
