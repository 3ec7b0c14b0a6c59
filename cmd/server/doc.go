// Package main is the entry point for the rez launcher backend server.
//
// This application backs the desktop launcher UI: it records versioned
// package collections, snapshots resolved environments into stages, and
// replays stages into interactive rez sessions on demand.
//
// Architecture:
//
//	Frontend (Tauri) → Go Backend → Document store (MongoDB)
//	                             → rez resolver (subprocess)
//
// The server provides:
//   - REST API for collections and stages
//   - WebSocket streaming of stage lifecycle events
//   - Prometheus metrics
//   - Rate limiting and CORS for the local UI
//
// Configuration:
//   - Environment variables (PORT, STORAGE_URI, RESOLVER_BIN, ...)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Against a local document store
//	./server -port 7900 -storage mongodb://localhost:27017
//
//	# Storage-less development run
//	./server -storage memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
