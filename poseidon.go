package poseidon2

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/vocdoni/poseidon2/internal/params"
	"github.com/vocdoni/poseidon2/program"
)

// Schedule is the Poseidon2 round schedule. Only width 2 and degree 5 are supported.
type Schedule = params.Schedule

// DefaultSchedule is t=2, rF=8, rP=56, d=5.
var DefaultSchedule = params.Default

// ErrUnsupportedSchedule is returned by New for schedules other than width 2, degree 5.
var ErrUnsupportedSchedule = params.ErrUnsupportedSchedule

// Engine computes the Poseidon2 t=2 compression function over BLS12-381 Fr.
// It is immutable once built and safe for concurrent use.
type Engine struct {
	table    *params.Table
	mode     program.Mode
	programs [2]*program.Program
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	schedule Schedule
	mode     program.Mode
	log      zerolog.Logger
}

// WithSchedule overrides the round schedule. Constants are re-derived from
// the schedule's seed.
func WithSchedule(s Schedule) Option {
	return func(o *options) { o.schedule = s }
}

// WithMode selects the program variant used by CompressBig and CompressString.
func WithMode(m program.Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New derives the round constants and lowers both program variants.
func New(opts ...Option) (*Engine, error) {
	o := options{
		schedule: DefaultSchedule,
		mode:     program.ElideReductions,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mode != program.AlwaysReduce && o.mode != program.ElideReductions {
		return nil, fmt.Errorf("poseidon2: unknown mode %d", o.mode)
	}

	var (
		table *params.Table
		err   error
	)
	if o.schedule == params.Default {
		table, err = params.DefaultTable()
	} else {
		table, err = params.Derive(o.schedule)
	}
	if err != nil {
		return nil, err
	}

	e := &Engine{table: table, mode: o.mode, log: o.log}
	for _, m := range []program.Mode{program.AlwaysReduce, program.ElideReductions} {
		p, err := program.Build(table, m)
		if err != nil {
			return nil, fmt.Errorf("poseidon2: lowering %s program: %w", m, err)
		}
		e.programs[m] = p
		e.log.Debug().
			Str("schedule", table.Schedule.String()).
			Stringer("mode", m).
			Int("instructions", len(p.Code)).
			Int("reductions", p.Reductions()).
			Int("lazyAdds", p.Count(program.OpAdd)).
			Msg("program lowered")
	}
	e.log.Debug().
		Str("schedule", table.Schedule.String()).
		Int("rounds", len(table.Rows)).
		Int("constants", len(e.programs[0].Constants)).
		Stringer("mode", o.mode).
		Msg("engine ready")
	return e, nil
}

// Schedule returns the engine's round schedule.
func (e *Engine) Schedule() Schedule {
	return e.table.Schedule
}

// Mode returns the program variant used by CompressBig and CompressString.
func (e *Engine) Mode() program.Mode {
	return e.mode
}

// Program returns the lowered program for the variant. It must not be modified.
func (e *Engine) Program(m program.Mode) *program.Program {
	return e.programs[m]
}

// RoundConstants returns a copy of the round constants grouped by round.
func (e *Engine) RoundConstants() [][]*big.Int {
	out := make([][]*big.Int, len(e.table.Rows))
	for r, row := range e.table.Rows {
		out[r] = make([]*big.Int, len(row))
		for i := range row {
			out[r][i] = row[i].BigInt(new(big.Int))
		}
	}
	return out
}

// Permute applies the Poseidon2 permutation to the state in place.
func (e *Engine) Permute(state *[2]fr.Element) {
	mixExternal(state)
	s := e.table.Schedule
	for r := 0; r < s.Rounds(); r++ {
		rc := e.table.Rows[r]
		switch s.Kind(r) {
		case params.KindFull:
			state[0].Add(&state[0], &rc[0])
			state[1].Add(&state[1], &rc[1])
			sbox(&state[0])
			sbox(&state[1])
			mixExternal(state)
		case params.KindPartial:
			state[0].Add(&state[0], &rc[0])
			sbox(&state[0])
			mixInternal(state)
		}
	}
}

// Compress returns perm(left, right)[1] + right.
func (e *Engine) Compress(left, right fr.Element) fr.Element {
	state := [2]fr.Element{left, right}
	e.Permute(&state)
	var out fr.Element
	out.Add(&state[1], &right)
	return out
}

// CompressWord evaluates the given program variant on two 256-bit words.
// Inputs need not be reduced.
func (e *Engine) CompressWord(m program.Mode, left, right *uint256.Int) uint256.Int {
	return e.programs[m].Eval(left, right)
}

// CompressBig reduces two non-negative integers of any size modulo the field
// order and compresses them with the engine's program variant.
func (e *Engine) CompressBig(left, right *big.Int) (*big.Int, error) {
	l, err := reduceWord(left)
	if err != nil {
		return nil, err
	}
	r, err := reduceWord(right)
	if err != nil {
		return nil, err
	}
	out := e.CompressWord(e.mode, l, r)
	return out.ToBig(), nil
}

// CompressString parses two integers (decimal, or hex with a 0x prefix) and
// returns the decimal compression result.
func (e *Engine) CompressString(left, right string) (string, error) {
	l, err := ParseElement(left)
	if err != nil {
		return "", err
	}
	r, err := ParseElement(right)
	if err != nil {
		return "", err
	}
	out, err := e.CompressBig(l, r)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// mixExternal multiplies the state by [[2,1],[1,2]].
func mixExternal(state *[2]fr.Element) {
	var sum fr.Element
	sum.Add(&state[0], &state[1])
	state[0].Add(&state[0], &sum)
	state[1].Add(&state[1], &sum)
}

// mixInternal multiplies the state by [[2,1],[1,3]].
func mixInternal(state *[2]fr.Element) {
	var sum fr.Element
	sum.Add(&state[0], &state[1])
	state[0].Add(&state[0], &sum)
	state[1].Double(&state[1])
	state[1].Add(&state[1], &sum)
}

var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	return New()
})

// Default returns the process-wide engine for DefaultSchedule.
func Default() (*Engine, error) {
	return defaultEngine()
}

// Compress applies the default engine to (left, right).
func Compress(left, right fr.Element) (fr.Element, error) {
	e, err := defaultEngine()
	if err != nil {
		return fr.Element{}, err
	}
	return e.Compress(left, right), nil
}
