package program

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vocdoni/poseidon2/internal/params"
)

// handle is a reference to a value produced while building. Register handles
// remember the write generation they were produced at, so reading a register
// that has since been overwritten is caught.
type handle struct {
	op  Operand
	gen uint32
}

func (h handle) ref() handle { return h }

// value is any handle that an addmod may consume.
type value interface{ ref() handle }

// clean values are canonical.
type clean struct{ handle }

// dirty values are below 2p and must go through addmod before any other use.
type dirty struct{ handle }

// word values are unreduced inputs.
type word struct{ handle }

type builder struct {
	table   *params.Table
	mode    Mode
	prog    *Program
	offsets []int
	gen     [NumRegs]uint32
	round   int
}

// Build lowers the permutation and feed-forward for the table's schedule.
func Build(table *params.Table, mode Mode) (*Program, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if mode != AlwaysReduce && mode != ElideReductions {
		return nil, fmt.Errorf("program: unknown mode %d", mode)
	}

	b := &builder{
		table: table,
		mode:  mode,
		prog:  &Program{Mode: mode},
		round: -1,
	}
	for _, row := range table.Rows {
		b.offsets = append(b.offsets, len(b.prog.Constants))
		for i := range row {
			b.prog.Constants = append(b.prog.Constants, *uint256.MustFromBig(row[i].BigInt(new(big.Int))))
		}
	}

	// Both inputs are reduced on entry; the right one stays in RegRight
	// for the feed-forward and is never written again.
	s0 := b.reduce(RegS0, b.input(0))
	right := b.reduce(RegRight, b.input(1))
	s0, s1 := b.mixExternal(s0, right)

	s := table.Schedule
	for r := 0; r < s.Rounds(); r++ {
		b.round = r
		switch s.Kind(r) {
		case params.KindFull:
			s0, s1 = b.fullRound(r, s0, s1)
		case params.KindPartial:
			s0, s1 = b.partialRound(r, s0, s1)
		}
	}
	b.round = -1

	out := b.addMod(RegS1, s1, right)
	b.prog.Output = Reg(out.op.Index)

	if err := Verify(b.prog); err != nil {
		return nil, err
	}
	return b.prog, nil
}

func (b *builder) live(h handle) {
	if h.op.Kind != KindRegister {
		return
	}
	if b.gen[h.op.Index] != h.gen {
		panic(fmt.Sprintf("program: read of %s after it was overwritten (round %d)", Reg(h.op.Index), b.round))
	}
}

func (b *builder) emit(op Opcode, dst Reg, result Bound, args ...value) handle {
	ins := Instruction{Op: op, Dst: dst, Result: result, Round: b.round}
	for i, a := range args {
		h := a.ref()
		b.live(h)
		ins.Args[i] = h.op
	}
	b.gen[dst]++
	b.prog.Code = append(b.prog.Code, ins)
	return handle{
		op:  Operand{Kind: KindRegister, Index: int(dst), Bound: result},
		gen: b.gen[dst],
	}
}

func (b *builder) input(i int) word {
	return word{handle{op: Operand{Kind: KindInput, Index: i, Bound: Word}}}
}

func (b *builder) constant(round, lane int) clean {
	return clean{handle{op: Operand{Kind: KindConstant, Index: b.offsets[round] + lane, Bound: Canonical}}}
}

func (b *builder) reduce(dst Reg, x value) clean {
	return clean{b.emit(OpMod, dst, Canonical, x)}
}

func (b *builder) addMod(dst Reg, x, y value) clean {
	return clean{b.emit(OpAddMod, dst, Canonical, x, y)}
}

func (b *builder) mulMod(dst Reg, x, y clean) clean {
	return clean{b.emit(OpMulMod, dst, Canonical, x, y)}
}

// add sums two canonical values without reduction: x+y <= 2p-2 < 2^256.
func (b *builder) add(dst Reg, x, y clean) dirty {
	return dirty{b.emit(OpAdd, dst, Lazy, x, y)}
}

// sum is where the two modes differ.
func (b *builder) sum(dst Reg, x, y clean) value {
	if b.mode == ElideReductions {
		return b.add(dst, x, y)
	}
	return b.addMod(dst, x, y)
}

func (b *builder) sbox(dst Reg, x clean) clean {
	sq := b.mulMod(RegTmp, x, x)
	quad := b.mulMod(RegTmp, sq, sq)
	return b.mulMod(dst, quad, x)
}

// mixExternal multiplies by [[2,1],[1,2]].
func (b *builder) mixExternal(s0, s1 clean) (clean, clean) {
	sum := b.sum(RegSum, s0, s1)
	n0 := b.addMod(RegS0, s0, sum)
	n1 := b.addMod(RegS1, s1, sum)
	return n0, n1
}

// mixInternal multiplies by [[2,1],[1,3]].
func (b *builder) mixInternal(s0, s1 clean) (clean, clean) {
	sum := b.sum(RegSum, s0, s1)
	n0 := b.addMod(RegS0, s0, sum)
	double := b.sum(RegS1, s1, s1)
	n1 := b.addMod(RegS1, double, sum)
	return n0, n1
}

func (b *builder) fullRound(r int, s0, s1 clean) (clean, clean) {
	s0 = b.addMod(RegS0, s0, b.constant(r, 0))
	s1 = b.addMod(RegS1, s1, b.constant(r, 1))
	s0 = b.sbox(RegS0, s0)
	s1 = b.sbox(RegS1, s1)
	return b.mixExternal(s0, s1)
}

func (b *builder) partialRound(r int, s0, s1 clean) (clean, clean) {
	s0 = b.addMod(RegS0, s0, b.constant(r, 0))
	s0 = b.sbox(RegS0, s0)
	return b.mixInternal(s0, s1)
}
