// Package main hosts the questionindex CLI entrypoint and command graph.
//
// The Cobra command tree reads CI inputs from the environment, runs the
// indexer over the changed paths, and exposes helpers for inspecting stores,
// run history, preflight checks, and configuration scaffolding. Configuration
// resolution and logger setup live here so the internal packages receive
// explicit inputs.
package main
