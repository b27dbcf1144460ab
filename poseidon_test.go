package poseidon2

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	gcposeidon2 "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/poseidon2"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vocdoni/poseidon2/program"
)

func mustElement(t *testing.T, s string) fr.Element {
	t.Helper()
	var e fr.Element
	if _, err := e.SetString(s); err != nil {
		t.Fatalf("parse element: %v", err)
	}
	return e
}

func mustEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func randomElement(t *testing.T) fr.Element {
	t.Helper()
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		t.Fatal(err)
	}
	return e
}

var goldenVectors = []struct {
	name        string
	left, right string
	want        string
}{
	{
		name:  "zero",
		left:  "0",
		right: "0",
		want:  "22060256806233423917755486679258409085822371664674970941632105703972418209029",
	},
	{
		name:  "one-two",
		left:  "1",
		right: "2",
		want:  "49811913674299262887189971067871018265281061558635561979058378846051313606423",
	},
	{
		name:  "two-one",
		left:  "2",
		right: "1",
		want:  "3823109854881877758738840401363871238109433204157516017058277373209562829517",
	},
	{
		name:  "max",
		left:  "52435875175126190479447740508185965837690552500527637822603658699938581184512",
		right: "52435875175126190479447740508185965837690552500527637822603658699938581184512",
		want:  "14636090160399324478675294507675209139261874400242515375529391983267804135702",
	},
}

func TestGoldenVectors(t *testing.T) {
	e := mustEngine(t)
	reduced := mustEngine(t, WithMode(program.AlwaysReduce))

	for _, tc := range goldenVectors {
		t.Run(tc.name, func(t *testing.T) {
			want := mustElement(t, tc.want)
			got := e.Compress(mustElement(t, tc.left), mustElement(t, tc.right))
			if !got.Equal(&want) {
				t.Fatalf("native mismatch\nexpected %s\ngot      %s", want.String(), got.String())
			}

			for _, eng := range []*Engine{e, reduced} {
				s, err := eng.CompressString(tc.left, tc.right)
				if err != nil {
					t.Fatal(err)
				}
				if s != tc.want {
					t.Fatalf("%s program mismatch\nexpected %s\ngot      %s", eng.Mode(), tc.want, s)
				}
			}
		})
	}
}

func TestMaxVectorIsPMinusOne(t *testing.T) {
	pm1 := new(big.Int).Sub(Modulus(), big.NewInt(1))
	if pm1.String() != goldenVectors[3].left {
		t.Fatalf("p-1 is %s", pm1)
	}
}

func TestMatchesGnarkCryptoPermutation(t *testing.T) {
	e := mustEngine(t)
	ref := gcposeidon2.NewPermutation(2, 8, 56)

	for range 16 {
		state := [2]fr.Element{randomElement(t), randomElement(t)}
		want := state
		if err := ref.Permutation(want[:]); err != nil {
			t.Fatal(err)
		}
		e.Permute(&state)
		if !state[0].Equal(&want[0]) || !state[1].Equal(&want[1]) {
			t.Fatalf("permutation mismatch\nexpected (%s, %s)\ngot      (%s, %s)",
				want[0].String(), want[1].String(), state[0].String(), state[1].String())
		}
	}
}

func TestVariantsAgree(t *testing.T) {
	e := mustEngine(t)
	p := Modulus()

	check := func(l, r *big.Int) {
		t.Helper()
		var lf, rf fr.Element
		lf.SetBigInt(l)
		rf.SetBigInt(r)
		native := e.Compress(lf, rf)

		lw, err := reduceWord(l)
		if err != nil {
			t.Fatal(err)
		}
		rw, err := reduceWord(r)
		if err != nil {
			t.Fatal(err)
		}
		reduced := e.CompressWord(program.AlwaysReduce, lw, rw)
		elided := e.CompressWord(program.ElideReductions, lw, rw)
		if !reduced.Eq(&elided) {
			t.Fatalf("reduce/elide disagree on (%s, %s): %s vs %s", l, r, reduced.Dec(), elided.Dec())
		}
		if native.BigInt(new(big.Int)).Cmp(elided.ToBig()) != 0 {
			t.Fatalf("native/program disagree on (%s, %s): %s vs %s", l, r, native.String(), elided.Dec())
		}
	}

	for range 32 {
		l := randomElement(t)
		r := randomElement(t)
		lb, rb := l.BigInt(new(big.Int)), r.BigInt(new(big.Int))
		check(lb, rb)
		check(new(big.Int).Add(lb, p), rb)
		check(lb, new(big.Int).Add(rb, p))
	}

	allOnes := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	check(allOnes, allOnes)
	check(p, p)
	check(big.NewInt(0), new(big.Int).Sub(p, big.NewInt(1)))
}

func TestInputReduction(t *testing.T) {
	e := mustEngine(t)
	p := Modulus()
	l := big.NewInt(123456789)
	r := big.NewInt(987654321)

	base, err := e.CompressBig(l, r)
	if err != nil {
		t.Fatal(err)
	}
	shifted := []struct {
		name        string
		left, right *big.Int
	}{
		{"left+p", new(big.Int).Add(l, p), r},
		{"right+p", l, new(big.Int).Add(r, p)},
		{"left+p*2^300", new(big.Int).Add(l, new(big.Int).Lsh(p, 300)), r},
	}
	for _, tc := range shifted {
		got, err := e.CompressBig(tc.left, tc.right)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Cmp(base) != 0 {
			t.Fatalf("%s: expected %s, got %s", tc.name, base, got)
		}
	}
}

func TestNonCommutative(t *testing.T) {
	e := mustEngine(t)
	var a, b fr.Element
	a.SetUint64(1)
	b.SetUint64(2)
	ab := e.Compress(a, b)
	ba := e.Compress(b, a)
	if ab.Equal(&ba) {
		t.Fatalf("compress(1,2) == compress(2,1) == %s", ab.String())
	}
}

func TestSbox(t *testing.T) {
	p := Modulus()
	for range 8 {
		x := randomElement(t)
		want := new(big.Int).Exp(x.BigInt(new(big.Int)), big.NewInt(5), p)
		sbox(&x)
		if x.BigInt(new(big.Int)).Cmp(want) != 0 {
			t.Fatalf("sbox mismatch: expected %s, got %s", want, x.String())
		}
	}
}

func TestParseElement(t *testing.T) {
	valid := map[string]int64{
		"0":     0,
		"42":    42,
		"0x2a":  42,
		"0X2A":  42,
		"00017": 17,
	}
	for in, want := range valid {
		got, err := ParseElement(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got.Cmp(big.NewInt(want)) != 0 {
			t.Fatalf("%q: expected %d, got %s", in, want, got)
		}
	}

	for _, in := range []string{"", "0x", "-1", "+1", "1_000", "abc", "12a", "1.5", " 1"} {
		if _, err := ParseElement(in); !errors.Is(err, ErrInvalidFieldElement) {
			t.Fatalf("%q: expected ErrInvalidFieldElement, got %v", in, err)
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	e := mustEngine(t)
	if _, err := e.CompressBig(big.NewInt(-1), big.NewInt(1)); !errors.Is(err, ErrInvalidFieldElement) {
		t.Fatalf("negative left: %v", err)
	}
	if _, err := e.CompressBig(big.NewInt(1), nil); !errors.Is(err, ErrInvalidFieldElement) {
		t.Fatalf("nil right: %v", err)
	}
	if _, err := e.CompressString("1", "two"); !errors.Is(err, ErrInvalidFieldElement) {
		t.Fatalf("bad right: %v", err)
	}
}

func TestUnsupportedSchedule(t *testing.T) {
	s := DefaultSchedule
	s.Width = 3
	if _, err := New(WithSchedule(s)); !errors.Is(err, ErrUnsupportedSchedule) {
		t.Fatalf("expected ErrUnsupportedSchedule, got %v", err)
	}
	if _, err := New(WithMode(program.Mode(9))); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCustomSchedule(t *testing.T) {
	s := DefaultSchedule
	s.FullRounds = 6
	s.PartialRounds = 50
	e := mustEngine(t, WithSchedule(s))
	ref := gcposeidon2.NewPermutation(2, 6, 50)

	state := [2]fr.Element{randomElement(t), randomElement(t)}
	want := state
	if err := ref.Permutation(want[:]); err != nil {
		t.Fatal(err)
	}
	e.Permute(&state)
	if !state[1].Equal(&want[1]) {
		t.Fatalf("custom schedule mismatch: %s vs %s", state[1].String(), want[1].String())
	}

	got := e.CompressWord(program.ElideReductions, uint256.NewInt(1), uint256.NewInt(2))
	def := mustEngine(t).CompressWord(program.ElideReductions, uint256.NewInt(1), uint256.NewInt(2))
	if got.Eq(&def) {
		t.Fatal("different schedules gave the same output")
	}
}

func TestRoundConstantsAreCopies(t *testing.T) {
	e := mustEngine(t)
	rc := e.RoundConstants()
	if len(rc) != 64 || len(rc[0]) != 2 || len(rc[4]) != 1 {
		t.Fatalf("unexpected shape: %d rows", len(rc))
	}
	want := new(big.Int).Set(rc[0][0])
	rc[0][0].SetInt64(7)
	if again := e.RoundConstants(); again[0][0].Cmp(want) != 0 {
		t.Fatal("round constants were mutated through the returned slice")
	}
}

func TestConcurrentCompress(t *testing.T) {
	e := mustEngine(t)
	inputs := make([][2]fr.Element, 64)
	want := make([]fr.Element, len(inputs))
	for i := range inputs {
		inputs[i] = [2]fr.Element{randomElement(t), randomElement(t)}
		want[i] = e.Compress(inputs[i][0], inputs[i][1])
	}

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for i, in := range inputs {
				got := e.Compress(in[0], in[1])
				if !got.Equal(&want[i]) {
					return errors.New("concurrent compress mismatch")
				}
				w := e.CompressWord(program.ElideReductions,
					uint256.MustFromBig(in[0].BigInt(new(big.Int))),
					uint256.MustFromBig(in[1].BigInt(new(big.Int))))
				if w.ToBig().Cmp(want[i].BigInt(new(big.Int))) != 0 {
					return errors.New("concurrent program mismatch")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	mustEngine(t, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	out := buf.String()
	for _, want := range []string{`"message":"engine ready"`, `"mode":"elide"`, `"reductions":205`, `"reductions":326`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestDefaultCompress(t *testing.T) {
	var zero fr.Element
	got, err := Compress(zero, zero)
	if err != nil {
		t.Fatal(err)
	}
	want := mustElement(t, goldenVectors[0].want)
	if !got.Equal(&want) {
		t.Fatalf("expected %s, got %s", want.String(), got.String())
	}
	e, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if e.Schedule() != DefaultSchedule {
		t.Fatalf("default engine has schedule %s", e.Schedule())
	}
}
