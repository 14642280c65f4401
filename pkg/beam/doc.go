// Package beam implements a single visibility beam: a convex region
// anchored at an origin and bounded by a planar frustum polygon.
//
// Each beam carries a local camera frame in which its frustum projects to
// a counter-clockwise image-plane polygon at depth -NearDistance. Scene
// faces are projected into that frame, clipped against the near plane and
// the frustum, and compared to find the largest face nothing else can
// hide. The splitter then partitions the frustum around that face into
// convex sibling regions.
//
// Nothing in this package prints or panics on geometric trouble. Numerical
// problems are returned as Anomaly values next to a best-effort result so
// the caller decides what to keep.
package beam
