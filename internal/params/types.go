package params

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Schedule captures the Poseidon2 round schedule.
type Schedule struct {
	Width         int
	FullRounds    int
	PartialRounds int
	Degree        int
}

// Default is the t=2 schedule every other package is built around.
var Default = Schedule{
	Width:         2,
	FullRounds:    8,
	PartialRounds: 56,
	Degree:        5,
}

// String returns the domain-separated seed the round constants are derived from.
func (s Schedule) String() string {
	return fmt.Sprintf("Poseidon2-BLS12_381[t=%d,rF=%d,rP=%d,d=%d]", s.Width, s.FullRounds, s.PartialRounds, s.Degree)
}

// Rounds is the total number of rounds, full and partial.
func (s Schedule) Rounds() int {
	return s.FullRounds + s.PartialRounds
}

// RoundKind tells full rounds (S-box on every lane) from partial ones (lane 0 only).
type RoundKind uint8

const (
	KindFull RoundKind = iota
	KindPartial
)

func (k RoundKind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindPartial:
		return "partial"
	default:
		return fmt.Sprintf("RoundKind(%d)", uint8(k))
	}
}

// Kind returns the kind of the given round. The first and last FullRounds/2
// rounds are full, everything in between is partial.
func (s Schedule) Kind(round int) RoundKind {
	if round < 0 || round >= s.Rounds() {
		panic(fmt.Sprintf("poseidon2: round %d out of range [0,%d)", round, s.Rounds()))
	}
	half := s.FullRounds / 2
	if round < half || round >= half+s.PartialRounds {
		return KindFull
	}
	return KindPartial
}

// RowWidth is the number of round constants consumed by the given round.
func (s Schedule) RowWidth(round int) int {
	if s.Kind(round) == KindFull {
		return s.Width
	}
	return 1
}

// Table holds the round constants, one row per round.
// It is never mutated after Derive returns and may be shared freely.
type Table struct {
	Schedule Schedule
	Rows     [][]fr.Element
}

// Flatten returns the constants in derivation order.
func (t *Table) Flatten() []fr.Element {
	n := 0
	for _, row := range t.Rows {
		n += len(row)
	}
	out := make([]fr.Element, 0, n)
	for _, row := range t.Rows {
		out = append(out, row...)
	}
	return out
}
