// Package handler implements the HTTP surface of the event display server.
//
// # Handlers
//
// EventHandler serves the current event (hits, MC hits, markers, particles
// and geometry, optionally restricted with ?dim=2D or ?dim=3D) and the stored
// event library under /api/events, including import and export.
//
// SessionHandler serves /ws. Each connection owns a 3D and a 2D view of the
// current event; the client sends actions such as
//
//	{"dimension": "3D", "action": "property", "name": "charge"}
//
// and receives the view snapshot together with any render groups built for
// the first time. Groups already sent are referenced by id in the visibility
// map only.
//
// Quit triggers a graceful shutdown.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Missing
// events map to 404 and events failing validation to 400.
//
// Chain composes middleware; see Recover, CORS and Logger.
package handler
