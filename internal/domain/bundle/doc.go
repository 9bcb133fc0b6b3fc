// Package bundle contains core domain types for the packaging business logic.
//
// It defines Service (the deployable whole), Function (a unit of compute
// that may opt into individual packaging), and Artifact (a produced archive),
// plus the conversion from the manifest configuration into the domain model.
package bundle
