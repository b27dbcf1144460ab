package program

import (
	"fmt"

	"github.com/holiman/uint256"
)

type machine struct {
	prog *Program
	regs [NumRegs]uint256.Int
	in   [2]*uint256.Int
	// wrapped records whether the last add overflowed 256 bits.
	wrapped bool
}

func (m *machine) load(o Operand) *uint256.Int {
	switch o.Kind {
	case KindRegister:
		return &m.regs[o.Index]
	case KindConstant:
		return &m.prog.Constants[o.Index]
	default:
		return m.in[o.Index]
	}
}

func (m *machine) step(ins Instruction) {
	var r uint256.Int
	m.wrapped = false
	a := m.load(ins.Args[0])
	switch ins.Op {
	case OpAdd:
		_, m.wrapped = r.AddOverflow(a, m.load(ins.Args[1]))
	case OpAddMod:
		r.AddMod(a, m.load(ins.Args[1]), Modulus)
	case OpMulMod:
		r.MulMod(a, m.load(ins.Args[1]), Modulus)
	case OpMod:
		r.Mod(a, Modulus)
	default:
		panic(fmt.Sprintf("program: unknown opcode %s", ins.Op))
	}
	m.regs[ins.Dst] = r
}

// Eval runs the program on two 256-bit inputs and returns the canonical
// compression result.
func (p *Program) Eval(left, right *uint256.Int) uint256.Int {
	m := machine{prog: p, in: [2]*uint256.Int{left, right}}
	for _, ins := range p.Code {
		m.step(ins)
	}
	return m.regs[p.Output]
}

// Check runs the program like Eval and fails on the first value that does not
// satisfy the bound it is tagged with.
func (p *Program) Check(left, right *uint256.Int) (uint256.Int, error) {
	twoP, _ := new(uint256.Int).AddOverflow(Modulus, Modulus)

	m := machine{prog: p, in: [2]*uint256.Int{left, right}}
	for pc, ins := range p.Code {
		m.step(ins)
		if m.wrapped {
			return uint256.Int{}, fmt.Errorf("program: %d: %s overflowed 256 bits", pc, ins)
		}
		v := &m.regs[ins.Dst]
		switch ins.Result {
		case Canonical:
			if !v.Lt(Modulus) {
				return uint256.Int{}, fmt.Errorf("program: %d: %s produced %s, not below p", pc, ins, v.Hex())
			}
		case Lazy:
			if !v.Lt(twoP) {
				return uint256.Int{}, fmt.Errorf("program: %d: %s produced %s, not below 2p", pc, ins, v.Hex())
			}
		}
	}
	return m.regs[p.Output], nil
}
