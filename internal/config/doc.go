// Package config loads, normalizes, and validates questionindex configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and collects the CI environment input
// (CHANGED_FILES, GITHUB_REPOSITORY). The Config type centralizes every knob
// the indexer and CLI need so store locations, URL construction and filtering
// rules are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extension lists, and clear validation errors.
package config
