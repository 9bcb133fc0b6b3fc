// Package packager decides how a service is split into artifacts and drives
// their creation.
//
// Each function's effective packaging mode is its own override when present,
// otherwise the service-wide default. Individually packaged functions get one
// artifact each; everything else shares a single combined artifact. Units are
// independent and packaged concurrently with join-all semantics. After a
// successful run the artifact checksums are recorded in a YAML description
// next to the artifacts.
package packager
