// Package archiver writes zip artifacts from a source tree.
//
// File selection follows an ordered glob contract: a file is packaged unless
// an exclude pattern matches it, and an include pattern can re-admit a file
// that the excludes dropped. Pattern matching supports ** via
// github.com/moby/patternmatcher.
package archiver
