// Package poseidon2 is the in-circuit counterpart of the native Poseidon2 t=2
// compression function, for circuits defined over the BLS12-381 scalar field.
package poseidon2

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/vocdoni/poseidon2/internal/params"
)

// ErrInvalidSizeBuffer is returned when the state is not exactly two variables.
var ErrInvalidSizeBuffer = errors.New("poseidon2: state must hold exactly 2 variables")

// Hasher emits Poseidon2 constraints.
type Hasher struct {
	api      frontend.API
	schedule params.Schedule
	rc       [][]*big.Int
}

// NewHasher builds a gadget with the default schedule's round constants.
func NewHasher(api frontend.API) (*Hasher, error) {
	table, err := params.DefaultTable()
	if err != nil {
		return nil, err
	}
	rc := make([][]*big.Int, len(table.Rows))
	for r, row := range table.Rows {
		rc[r] = make([]*big.Int, len(row))
		for i := range row {
			rc[r][i] = row[i].BigInt(new(big.Int))
		}
	}
	return &Hasher{api: api, schedule: table.Schedule, rc: rc}, nil
}

// Permutation applies the permutation to the state in place.
func (h *Hasher) Permutation(state []frontend.Variable) error {
	if len(state) != h.schedule.Width {
		return ErrInvalidSizeBuffer
	}
	h.mixExternal(state)
	for r := 0; r < h.schedule.Rounds(); r++ {
		switch h.schedule.Kind(r) {
		case params.KindFull:
			state[0] = h.api.Add(state[0], h.rc[r][0])
			state[1] = h.api.Add(state[1], h.rc[r][1])
			state[0] = h.sbox(state[0])
			state[1] = h.sbox(state[1])
			h.mixExternal(state)
		case params.KindPartial:
			state[0] = h.api.Add(state[0], h.rc[r][0])
			state[0] = h.sbox(state[0])
			h.mixInternal(state)
		}
	}
	return nil
}

// Compress returns perm(left, right)[1] + right.
func (h *Hasher) Compress(left, right frontend.Variable) frontend.Variable {
	state := []frontend.Variable{left, right}
	if err := h.Permutation(state); err != nil {
		panic(err) // the state always has width 2
	}
	return h.api.Add(state[1], right)
}

// Sum folds values with Compress starting from zero.
func (h *Hasher) Sum(values ...frontend.Variable) frontend.Variable {
	var acc frontend.Variable = 0
	for _, v := range values {
		acc = h.Compress(acc, v)
	}
	return acc
}

func (h *Hasher) sbox(x frontend.Variable) frontend.Variable {
	sq := h.api.Mul(x, x)
	quad := h.api.Mul(sq, sq)
	return h.api.Mul(quad, x)
}

func (h *Hasher) mixExternal(state []frontend.Variable) {
	sum := h.api.Add(state[0], state[1])
	state[0] = h.api.Add(state[0], sum)
	state[1] = h.api.Add(state[1], sum)
}

func (h *Hasher) mixInternal(state []frontend.Variable) {
	sum := h.api.Add(state[0], state[1])
	state[0] = h.api.Add(state[0], sum)
	state[1] = h.api.Add(h.api.Mul(state[1], 2), sum)
}
