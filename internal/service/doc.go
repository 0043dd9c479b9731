// Package service implements the application logic of the hepevd server.
//
// # Services
//
// EventService owns the current event: the one every new viewer session is
// built from. It imports events through the codec package, persists them in
// the repository and makes them current, bumping a version number so that
// connected sessions know to rebuild their views.
//
// # Event System
//
// Services publish messages via EventBus; the server forwards them to
// browsers over Server-Sent Events. Message types are event_loaded,
// event_stored and event_deleted.
package service
