package params

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSchedule is returned for any schedule the permutation cannot run.
var ErrUnsupportedSchedule = errors.New("poseidon2: unsupported schedule")

// Validate checks that the schedule matches the hardcoded t=2 permutation.
func Validate(s Schedule) error {
	if s.Width != 2 {
		return fmt.Errorf("%w: width must be 2, got %d", ErrUnsupportedSchedule, s.Width)
	}
	if s.Degree != 5 {
		return fmt.Errorf("%w: sbox degree must be 5, got %d", ErrUnsupportedSchedule, s.Degree)
	}
	if s.FullRounds < 2 || s.FullRounds%2 != 0 {
		return fmt.Errorf("%w: full rounds must be even and positive, got %d", ErrUnsupportedSchedule, s.FullRounds)
	}
	if s.PartialRounds < 0 {
		return fmt.Errorf("%w: negative partial rounds %d", ErrUnsupportedSchedule, s.PartialRounds)
	}
	return nil
}

// Validate checks basic shape and sizes of the table against its schedule.
func (t *Table) Validate() error {
	if err := Validate(t.Schedule); err != nil {
		return err
	}
	if len(t.Rows) != t.Schedule.Rounds() {
		return fmt.Errorf("poseidon2: table has %d rows, schedule needs %d", len(t.Rows), t.Schedule.Rounds())
	}
	for r, row := range t.Rows {
		if want := t.Schedule.RowWidth(r); len(row) != want {
			return fmt.Errorf("poseidon2: %s round %d has %d constants, want %d", t.Schedule.Kind(r), r, len(row), want)
		}
	}
	return nil
}
