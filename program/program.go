// Package program lowers the Poseidon2 t=2 compression function to a flat
// sequence of 256-bit word operations (add, addmod, mulmod, mod), the shape a
// code emitter for a word-oriented execution target needs.
//
// Every operand and result carries a Bound: Canonical values are below the
// field modulus p, Lazy values are below 2p. Two canonical values may be added
// without reduction because 2p-2 fits in 256 bits; three may not, since 3p
// does not.
package program

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/holiman/uint256"
)

// Modulus is the BLS12-381 scalar field order.
var Modulus = uint256.MustFromBig(fr.Modulus())

func init() {
	if _, overflow := new(uint256.Int).AddOverflow(Modulus, Modulus); overflow {
		panic("program: 2p does not fit in a 256-bit word")
	}
}

// Opcode is a primitive word operation.
type Opcode uint8

const (
	// OpAdd is a plain 256-bit addition. Only emitted for two canonical
	// operands, so the result is below 2p and never wraps.
	OpAdd Opcode = iota + 1
	OpAddMod
	OpMulMod
	OpMod
)

func (op Opcode) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpAddMod:
		return "addmod"
	case OpMulMod:
		return "mulmod"
	case OpMod:
		return "mod"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
}

// Arity is the number of operands the opcode reads.
func (op Opcode) Arity() int {
	if op == OpMod {
		return 1
	}
	return 2
}

// Reg names one slot of the register file.
type Reg uint8

const (
	RegS0 Reg = iota
	RegS1
	RegSum
	RegTmp
	// RegRight holds the reduced right input until the feed-forward.
	RegRight

	NumRegs = int(RegRight) + 1
)

func (r Reg) String() string {
	switch r {
	case RegS0:
		return "s0"
	case RegS1:
		return "s1"
	case RegSum:
		return "sum"
	case RegTmp:
		return "tmp"
	case RegRight:
		return "right"
	default:
		return fmt.Sprintf("Reg(%d)", uint8(r))
	}
}

// Bound is what is known about the range of a value.
type Bound uint8

const (
	// Canonical values are in [0, p).
	Canonical Bound = iota
	// Lazy values are in [0, 2p).
	Lazy
	// Word values are arbitrary 256-bit words, as the inputs are.
	Word
)

func (b Bound) String() string {
	switch b {
	case Canonical:
		return "canonical"
	case Lazy:
		return "lazy"
	case Word:
		return "word"
	default:
		return fmt.Sprintf("Bound(%d)", uint8(b))
	}
}

// OperandKind tells where an operand is read from.
type OperandKind uint8

const (
	KindRegister OperandKind = iota
	KindConstant
	KindInput
)

// Operand references a register, a round constant or one of the two inputs.
type Operand struct {
	Kind OperandKind
	// Index is the register number, the index into Program.Constants, or 0
	// for the left input and 1 for the right one.
	Index int
	Bound Bound
}

func (o Operand) String() string {
	switch o.Kind {
	case KindRegister:
		return Reg(o.Index).String()
	case KindConstant:
		return fmt.Sprintf("c%d", o.Index)
	default:
		if o.Index == 0 {
			return "left"
		}
		return "right_in"
	}
}

// Instruction computes Dst = Op(Args...).
type Instruction struct {
	Op     Opcode
	Dst    Reg
	Args   [2]Operand
	Result Bound
	// Round is the permutation round the instruction belongs to, or -1 for
	// the input reduction, the initial linear layer and the feed-forward.
	Round int
}

func (ins Instruction) String() string {
	if ins.Op.Arity() == 1 {
		return fmt.Sprintf("%s = %s(%s) [%s]", ins.Dst, ins.Op, ins.Args[0], ins.Result)
	}
	return fmt.Sprintf("%s = %s(%s, %s) [%s]", ins.Dst, ins.Op, ins.Args[0], ins.Args[1], ins.Result)
}

// Mode selects how sums of canonical values are lowered.
type Mode uint8

const (
	// AlwaysReduce lowers every sum to addmod.
	AlwaysReduce Mode = iota
	// ElideReductions lowers the linear-layer sums of two canonical values
	// to plain adds and leaves the reduction to the addmod consuming them.
	ElideReductions
)

func (m Mode) String() string {
	switch m {
	case AlwaysReduce:
		return "reduce"
	case ElideReductions:
		return "elide"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "reduce":
		return AlwaysReduce, nil
	case "elide":
		return ElideReductions, nil
	}
	return 0, fmt.Errorf("program: unknown mode %q", s)
}

// Program is a straight-line lowering of the compression function.
type Program struct {
	Mode      Mode
	Constants []uint256.Int
	Code      []Instruction
	Output    Reg
}

// Count returns how many instructions use the opcode.
func (p *Program) Count(op Opcode) int {
	n := 0
	for _, ins := range p.Code {
		if ins.Op == op {
			n++
		}
	}
	return n
}

// Reductions is the number of modular reductions outside the S-boxes.
func (p *Program) Reductions() int {
	return p.Count(OpAddMod) + p.Count(OpMod)
}
