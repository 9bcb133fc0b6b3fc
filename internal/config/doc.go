// Package config loads and validates the service manifest.
//
// The manifest is a YAML file (serverless.yml by default) declaring the
// service name, service-wide packaging configuration, and the functions
// with their optional per-function packaging overrides. Optional values are
// modeled explicitly: an unset Individually flag means "inherit", an unset
// list means "empty".
package config
