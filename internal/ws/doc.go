// Package ws streams stage lifecycle events (saved, reverted, loaded) to
// the GUI shell over WebSocket so it can refresh without polling.
package ws
