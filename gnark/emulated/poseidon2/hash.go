// Package poseidon2 computes the Poseidon2 t=2 compression function over an
// emulated BLS12-381 scalar field, for circuits on any host curve.
package poseidon2

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"

	"github.com/vocdoni/poseidon2/internal/params"
)

// Compress returns perm(left, right)[1] + right, reduced.
func Compress(api frontend.API, left, right emulated.Element[FrParams]) (emulated.Element[FrParams], error) {
	field, err := emulated.NewField[FrParams](api)
	if err != nil {
		var zero emulated.Element[FrParams]
		return zero, err
	}
	schedule, rc, err := roundConstants(field)
	if err != nil {
		var zero emulated.Element[FrParams]
		return zero, err
	}

	r := field.NewElement(right)
	state := [2]*emulated.Element[FrParams]{field.NewElement(left), r}
	permute(field, schedule, rc, &state)

	// Ensure canonical output.
	out := field.Reduce(field.Add(state[1], r))
	return *out, nil
}

// Sum folds values with Compress starting from zero.
func Sum(api frontend.API, values ...emulated.Element[FrParams]) (emulated.Element[FrParams], error) {
	acc := emulated.ValueOf[FrParams](0)
	for _, v := range values {
		var err error
		if acc, err = Compress(api, acc, v); err != nil {
			return acc, err
		}
	}
	return acc, nil
}

// permute mutates the state in place. Additions are left unreduced; the
// emulated field tracks limb overflow and reduces in Mul when needed.
func permute(field *emulated.Field[FrParams], s params.Schedule, rc [][]*emulated.Element[FrParams], state *[2]*emulated.Element[FrParams]) {
	mixExternal(field, state)
	for r := range s.Rounds() {
		switch s.Kind(r) {
		case params.KindFull:
			state[0] = field.Add(state[0], rc[r][0])
			state[1] = field.Add(state[1], rc[r][1])
			state[0] = sbox(field, state[0])
			state[1] = sbox(field, state[1])
			mixExternal(field, state)
		case params.KindPartial:
			state[0] = field.Add(state[0], rc[r][0])
			state[0] = sbox(field, state[0])
			mixInternal(field, state)
		}
	}
}

func sbox(field *emulated.Field[FrParams], x *emulated.Element[FrParams]) *emulated.Element[FrParams] {
	sq := field.Mul(x, x)
	quad := field.Mul(sq, sq)
	return field.Mul(quad, x)
}

func mixExternal(field *emulated.Field[FrParams], state *[2]*emulated.Element[FrParams]) {
	sum := field.Add(state[0], state[1])
	state[0] = field.Add(state[0], sum)
	state[1] = field.Add(state[1], sum)
}

func mixInternal(field *emulated.Field[FrParams], state *[2]*emulated.Element[FrParams]) {
	sum := field.Add(state[0], state[1])
	state[0] = field.Add(state[0], sum)
	state[1] = field.Add(field.Add(state[1], state[1]), sum)
}
