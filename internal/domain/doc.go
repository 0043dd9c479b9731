// Package domain defines the detector-event records the viewer works on.
//
// An Event is delivered as five flat collections: reconstructed hits, Monte
// Carlo hits, overlay markers, particles and the detector geometry. The records
// are immutable once loaded; every view derives its own state from them and
// never writes back.
//
// # Dimensions
//
// Hits and markers are either 2D (projected onto a readout plane, with the
// plane carried in HitType) or 3D. Each dimension gets its own view, so
// Event.ForDim splits an event into per-dimension slices. Particles are
// restricted the same way by ParticlesForDim, which keeps a particle while it
// or any descendant has hits in that projection. Child references can be left
// dangling when a child's whole subtree has none.
//
// # Properties
//
// A hit may carry a list of named properties. Their values are kept as raw
// JSON so that a malformed (non-numeric) value can still be loaded and later
// drawn with a flat colour instead of failing the whole event.
//
// # Identity
//
// Event.Fingerprint derives a stable id from the event content, which the
// repository uses as the primary key so re-importing the same file is a no-op.
package domain
