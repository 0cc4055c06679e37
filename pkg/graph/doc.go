// Package graph defines the construction tree for printparts.
// The construction tree is an append-only DAG of primitives, placements,
// booleans, edge features and arrays. Each node references its direct
// inputs by NodeID and is never mutated once added.
package graph
