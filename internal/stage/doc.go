// Package stage implements the stage lifecycle: saving new versions,
// promoting historical versions back to active, history and name queries,
// and loading a stage's snapshot into an interactive environment.
//
// The central guarantee is that for any (name, uri) pair at most one stage
// is active at a time.
package stage
