// Package artifact persists the record of a packaging run.
//
// The description is a YAML file stored next to the produced artifacts,
// mapping artifact names to their paths and SHA-512 checksums so downstream
// deployment steps can verify what was packaged.
package artifact
