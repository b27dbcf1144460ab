package program

import (
	"errors"
	"fmt"
)

// ErrInvalidProgram is returned by Verify.
var ErrInvalidProgram = errors.New("program: invalid program")

// Verify re-derives the bound of every register from the instruction stream
// and checks it against the declared tags:
//
//	mod(any)           -> canonical
//	addmod(any, any)   -> canonical
//	mulmod(c, c)       -> canonical
//	add(c, c)          -> lazy
//
// It rejects reads of unwritten registers, constants outside [0, p) and a
// non-canonical output.
func Verify(p *Program) error {
	for i := range p.Constants {
		if !p.Constants[i].Lt(Modulus) {
			return fmt.Errorf("%w: constant %d is not canonical", ErrInvalidProgram, i)
		}
	}

	var (
		bounds  [NumRegs]Bound
		written [NumRegs]bool
	)
	for pc, ins := range p.Code {
		if int(ins.Dst) >= NumRegs {
			return fmt.Errorf("%w: %d: bad destination %s", ErrInvalidProgram, pc, ins.Dst)
		}
		args := ins.Args[:ins.Op.Arity()]
		for _, a := range args {
			var actual Bound
			switch a.Kind {
			case KindRegister:
				if a.Index < 0 || a.Index >= NumRegs || !written[a.Index] {
					return fmt.Errorf("%w: %d: %s reads undefined register", ErrInvalidProgram, pc, ins)
				}
				actual = bounds[a.Index]
			case KindConstant:
				if a.Index < 0 || a.Index >= len(p.Constants) {
					return fmt.Errorf("%w: %d: %s reads missing constant", ErrInvalidProgram, pc, ins)
				}
				actual = Canonical
			case KindInput:
				if a.Index != 0 && a.Index != 1 {
					return fmt.Errorf("%w: %d: %s reads missing input", ErrInvalidProgram, pc, ins)
				}
				actual = Word
			default:
				return fmt.Errorf("%w: %d: unknown operand kind %d", ErrInvalidProgram, pc, a.Kind)
			}
			if a.Bound != actual {
				return fmt.Errorf("%w: %d: %s tags %s as %s, it is %s", ErrInvalidProgram, pc, ins, a, a.Bound, actual)
			}
		}

		var result Bound
		switch ins.Op {
		case OpAdd:
			if args[0].Bound != Canonical || args[1].Bound != Canonical {
				return fmt.Errorf("%w: %d: %s adds a non-canonical value without reduction", ErrInvalidProgram, pc, ins)
			}
			result = Lazy
		case OpMulMod:
			if args[0].Bound != Canonical || args[1].Bound != Canonical {
				return fmt.Errorf("%w: %d: %s multiplies a non-canonical value", ErrInvalidProgram, pc, ins)
			}
			result = Canonical
		case OpAddMod, OpMod:
			result = Canonical
		default:
			return fmt.Errorf("%w: %d: unknown opcode %s", ErrInvalidProgram, pc, ins.Op)
		}
		if ins.Result != result {
			return fmt.Errorf("%w: %d: %s declares %s, it is %s", ErrInvalidProgram, pc, ins, ins.Result, result)
		}
		bounds[ins.Dst] = result
		written[ins.Dst] = true
	}

	if int(p.Output) >= NumRegs || !written[p.Output] {
		return fmt.Errorf("%w: output %s is never written", ErrInvalidProgram, p.Output)
	}
	if bounds[p.Output] != Canonical {
		return fmt.Errorf("%w: output %s is %s", ErrInvalidProgram, p.Output, bounds[p.Output])
	}
	return nil
}
