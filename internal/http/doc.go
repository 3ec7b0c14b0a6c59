// Package http exposes the launcher operations to the GUI shell over a
// local trusted HTTP surface.
package http
