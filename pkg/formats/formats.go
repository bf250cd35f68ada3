// Package formats encodes and decodes the room scan interchange files:
// the mesh text (mesh.go), the transform matrix arrays (matrices.go) and
// the per-sub-mesh placements (orientation.go).
//
// All functions work on fully buffered text and keep no state between
// calls, so they are safe to use from multiple goroutines. Opening files is
// left to callers such as package room.
package formats
