// Package storage implements the persistence gateway for package
// collections and stages.
//
// The Gateway interface is storage-agnostic: the Mongo type realizes it
// against a document database, and Memory realizes it in-process for tests
// and storage-less development. Business rules (the single-active-stage
// invariant, save ordering) live in the stage package, not here.
package storage
