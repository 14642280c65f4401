// Package geom is the geometry kernel used by the beam tracer: a 2D
// orientation predicate with configurable tolerance, parametric lines and
// planes, reflection across a plane, 4x4 affine transforms and convex
// polygon utilities. Points are sdfx vectors throughout.
package geom
