// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crdt

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// Ticket orders writes across replicas: by Lamport timestamp first, then by
// actor id. Two writes never share a ticket because an actor never reuses a
// timestamp.
type Ticket struct {
	Lamport uint64 `json:"l"`
	Actor   string `json:"a"`
}

// Compare returns -1, 0 or 1.
func (t Ticket) Compare(o Ticket) int {
	switch {
	case t.Lamport < o.Lamport:
		return -1
	case t.Lamport > o.Lamport:
		return 1
	}
	return strings.Compare(t.Actor, o.Actor)
}

// After reports whether t orders after o.
func (t Ticket) After(o Ticket) bool {
	return t.Compare(o) > 0
}

// NewActorID returns a fresh device actor id.
func NewActorID() string {
	return ulid.Make().String()
}

// ValidActorID reports whether id parses as a ULID.
func ValidActorID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
