// Package graph defines the scene graph produced by evaluating a scene
// script: rooms, panels and explicit polygons, arranged under transform
// and group nodes, plus the emission source and trace settings. The graph
// is an immutable DAG; each evaluation produces a new one.
package graph
