// Package ids issues the zero-padded, per-type identifiers used in every
// generated table.
package ids

import "fmt"

// Sequence issues monotonically increasing identifiers of the form
// <prefix>_<zero padded number>, starting at 1. A Sequence belongs to one
// generation context and is never reset.
type Sequence struct {
	prefix string
	width  int
	next   int
}

// NewSequence creates a sequence whose first identifier is prefix_00..01.
func NewSequence(prefix string, width int) *Sequence {
	return &Sequence{prefix: prefix, width: width, next: 1}
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	id := fmt.Sprintf("%s_%0*d", s.prefix, s.width, s.next)
	s.next++
	return id
}

// Issued returns how many identifiers have been handed out.
func (s *Sequence) Issued() int {
	return s.next - 1
}

// Sequences groups the per-type sequences owned by one simulation run.
type Sequences struct {
	Event       *Sequence
	Session     *Sequence
	Eligibility *Sequence
	Lead        *Sequence
	Purchase    *Sequence
}

// NewSequences creates a fresh set of simulation sequences.
func NewSequences() *Sequences {
	return &Sequences{
		Event:       NewSequence("e", 9),
		Session:     NewSequence("s", 9),
		Eligibility: NewSequence("el", 9),
		Lead:        NewSequence("l", 9),
		Purchase:    NewSequence("p", 9),
	}
}

// Customer and vehicle identifiers are positional within their population.
func CustomerID(i int) string { return fmt.Sprintf("c_%07d", i) }
func VehicleID(i int) string  { return fmt.Sprintf("v_%07d", i) }
