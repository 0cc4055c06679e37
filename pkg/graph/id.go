package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID identifies a graph node by the SHA-256 of its construction path,
// not of its content. Two nodes with identical geometry get different ids
// when their paths differ.
type NodeID [32]byte

// NewNodeID derives a NodeID from a construction path such as
// "box/base#3".
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// String returns the full hex encoding.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex characters, for messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}

// MarshalText encodes the id as hex so reports stay readable.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}
