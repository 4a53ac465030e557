// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crdt implements the mergeable document synced through the encrypted
// store: a last-writer-wins register per field plus positive-negative
// counters. Apply is associative, commutative and idempotent, so replicas
// converge regardless of the order in which they exchange state.
package crdt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// register is one LWW field. A removed field keeps its ticket as a tombstone
// so an older write cannot resurrect it.
type register struct {
	Value   json.RawMessage `json:"v,omitempty"`
	Removed bool            `json:"r,omitempty"`
	Ticket  Ticket          `json:"t"`
}

func (r register) wins(o register) bool {
	if c := r.Ticket.Compare(o.Ticket); c != 0 {
		return c > 0
	}
	// equal tickets only arise from corrupted replicas; order them anyway
	if r.Removed != o.Removed {
		return r.Removed
	}
	return bytes.Compare(r.Value, o.Value) > 0
}

// counterState holds per-actor increments and decrements.
type counterState struct {
	P uint64 `json:"p"`
	N uint64 `json:"n"`
}

type wireDocument struct {
	Clock    uint64                             `json:"clock"`
	Fields   map[string]register                `json:"fields"`
	Counters map[string]map[string]counterState `json:"counters"`
}

// Document is a mergeable map of JSON fields and counters. It is not safe for
// concurrent use.
type Document struct {
	actor    string
	clock    uint64
	fields   map[string]register
	counters map[string]map[string]counterState
}

// New returns an empty document written to as actor.
func New(actor string) *Document {
	return &Document{
		actor:    actor,
		fields:   make(map[string]register),
		counters: make(map[string]map[string]counterState),
	}
}

// Unmarshal decodes a document produced by [Document.Marshal] and assigns it
// to actor.
func Unmarshal(data []byte, actor string) (*Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}

	d := New(actor)
	d.clock = w.Clock
	for name, r := range w.Fields {
		if r.Ticket.Actor == "" {
			return nil, fmt.Errorf("%w: field %q has no actor", ErrCorruptDocument, name)
		}
		d.fields[name] = r
		d.clock = max(d.clock, r.Ticket.Lamport)
	}
	for name, byActor := range w.Counters {
		d.counters[name] = maps.Clone(byActor)
	}

	return d, nil
}

// Actor returns the id stamped on local writes.
func (d *Document) Actor() string {
	return d.actor
}

// Marshal encodes the document. Equal documents encode to equal bytes.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(wireDocument{
		Clock:    d.clock,
		Fields:   d.fields,
		Counters: d.counters,
	})
}

// Clone returns a deep copy with the same actor.
func (d *Document) Clone() *Document {
	c := New(d.actor)
	c.clock = d.clock
	for name, r := range d.fields {
		r.Value = bytes.Clone(r.Value)
		c.fields[name] = r
	}
	for name, byActor := range d.counters {
		c.counters[name] = maps.Clone(byActor)
	}
	return c
}

func (d *Document) tick() (Ticket, error) {
	if d.actor == "" {
		return Ticket{}, ErrNoActor
	}
	d.clock++
	return Ticket{Lamport: d.clock, Actor: d.actor}, nil
}

// Set writes the JSON encoding of v to field.
func (d *Document) Set(field string, v any) error {
	if field == "" {
		return ErrEmptyField
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncodeValue, field, err)
	}

	t, err := d.tick()
	if err != nil {
		return err
	}
	d.fields[field] = register{Value: raw, Ticket: t}
	return nil
}

// Remove deletes field.
func (d *Document) Remove(field string) error {
	if field == "" {
		return ErrEmptyField
	}
	if r, ok := d.fields[field]; !ok || r.Removed {
		return nil
	}

	t, err := d.tick()
	if err != nil {
		return err
	}
	d.fields[field] = register{Removed: true, Ticket: t}
	return nil
}

// Get decodes field into dst and reports whether it is present.
func (d *Document) Get(field string, dst any) (bool, error) {
	r, ok := d.fields[field]
	if !ok || r.Removed {
		return false, nil
	}
	if err := json.Unmarshal(r.Value, dst); err != nil {
		return true, fmt.Errorf("%w: %s: %w", ErrProjection, field, err)
	}
	return true, nil
}

// Increment adds delta to counter name. Negative deltas decrement.
func (d *Document) Increment(name string, delta int64) error {
	if name == "" {
		return ErrEmptyField
	}
	if d.actor == "" {
		return ErrNoActor
	}
	if delta == 0 {
		return nil
	}

	byActor, ok := d.counters[name]
	if !ok {
		byActor = make(map[string]counterState)
		d.counters[name] = byActor
	}

	s := byActor[d.actor]
	if delta > 0 {
		s.P += uint64(delta)
	} else {
		s.N += uint64(-delta)
	}
	byActor[d.actor] = s
	return nil
}

// Counter returns the current value of counter name.
func (d *Document) Counter(name string) int64 {
	var total int64
	for _, s := range d.counters[name] {
		total += int64(s.P) - int64(s.N)
	}
	return total
}

// Apply merges other into d. Field registers keep the later ticket; counters
// keep the per-actor maximum.
func (d *Document) Apply(other *Document) {
	if other == nil {
		return
	}

	d.clock = max(d.clock, other.clock)

	for name, theirs := range other.fields {
		ours, ok := d.fields[name]
		if !ok || theirs.wins(ours) {
			theirs.Value = bytes.Clone(theirs.Value)
			d.fields[name] = theirs
		}
	}

	for name, byActor := range other.counters {
		mine, ok := d.counters[name]
		if !ok {
			mine = make(map[string]counterState, len(byActor))
			d.counters[name] = mine
		}
		for actor, s := range byActor {
			cur := mine[actor]
			mine[actor] = counterState{P: max(cur.P, s.P), N: max(cur.N, s.N)}
		}
	}
}

// Equal reports whether both documents hold the same state. Actors are not
// compared.
func (d *Document) Equal(other *Document) bool {
	a, errA := d.Marshal()
	b, errB := other.Marshal()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Value projects the document into dst through JSON: every present field
// under its name and every counter under its name as a number. A counter
// shadows a field of the same name.
func (d *Document) Value(dst any) error {
	plain := make(map[string]json.RawMessage, len(d.fields)+len(d.counters))
	for name, r := range d.fields {
		if !r.Removed {
			plain[name] = r.Value
		}
	}
	for name := range d.counters {
		raw, err := json.Marshal(d.Counter(name))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProjection, err)
		}
		plain[name] = raw
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProjection, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrProjection, err)
	}
	return nil
}
